// Package taxlots reconciles a securities trading history into matched
// acquisition and disposal pairs for capital gains reporting.
//
// Broker fills ([Row]) are grouped into orders by their broker order id, orders
// are grouped by instrument, and each [Instrument] matches its sell orders
// against its buy orders first-in first-out. Every matched chunk becomes a
// [DisposalRecord] carrying the realization and acquisition values and the
// share of both orders' commissions. Units that could not be matched are
// reported as [Residual] values rather than silently dropped.
//
// The package only deals with typed rows: reading broker exports lives in the
// degiro package and rendering the tax declaration in the irs package.
package taxlots
