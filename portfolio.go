package taxlots

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/google/uuid"
)

// ErrMissingInstrument is returned when a row has no instrument identifier.
var ErrMissingInstrument = errors.New("missing instrument identifier")

// Portfolio holds all the instruments and orders of a trading history.
type Portfolio struct {
	instruments []*Instrument          // in order of first appearance
	byISIN      map[string]*Instrument // instruments by isin
	orders      []*Order               // in order of first appearance
	byID        map[string]*Order      // orders by id
	registered  map[string]bool        // ids of orders registered into their instrument
}

// NewPortfolio creates an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		byISIN:     make(map[string]*Instrument),
		byID:       make(map[string]*Order),
		registered: make(map[string]bool),
	}
}

// Ingest merges rows into orders, then registers the new orders into their
// instrument.
//
// Rows without an order id become an order of their own, with a synthesized
// id, flagged as split. Ingest can be called several times: fills for an
// already known order id are merged into that order.
func (p *Portfolio) Ingest(rows []Row) error {
	// rows are all checked before any merge, a failed Ingest leaves p unchanged.
	for n, row := range rows {
		if row.ISIN == "" {
			return fmt.Errorf("row %d (%s %s): %w", n, row.Date, row.Name, ErrMissingInstrument)
		}
	}

	for _, row := range rows {
		tx := row.Transaction()

		id, split := row.OrderID, false
		if id == "" {
			log.Printf("warning: transaction without order id for %s[%s]: %s", row.Name, row.ISIN, tx)
			id, split = uuid.NewString(), true
		}

		order, exists := p.byID[id]
		if !exists {
			order = NewOrder(row.ISIN, row.Name, id, split)
			p.orders = append(p.orders, order)
			p.byID[id] = order
		}
		order.Merge(tx)
	}

	for _, order := range p.orders {
		if p.registered[order.ID()] {
			continue
		}
		p.register(order)
	}
	return nil
}

// register adds the order to its instrument, creating the instrument on first sight.
func (p *Portfolio) register(order *Order) {
	inst, exists := p.byISIN[order.ISIN()]
	if !exists {
		inst = NewInstrument(order.ISIN(), order.Name())
		p.instruments = append(p.instruments, inst)
		p.byISIN[order.ISIN()] = inst
	}
	inst.Register(order)
	p.registered[order.ID()] = true
}

// Instruments returns the instruments in order of first appearance.
func (p *Portfolio) Instruments() []*Instrument { return slices.Clone(p.instruments) }

// Instrument returns the instrument with this isin, or nil.
func (p *Portfolio) Instrument(isin string) *Instrument { return p.byISIN[isin] }

// Orders returns all the orders in order of first appearance.
func (p *Portfolio) Orders() []*Order { return slices.Clone(p.orders) }

// Order returns the order with this id, or nil.
func (p *Portfolio) Order(id string) *Order { return p.byID[id] }

// Declare matches every instrument and concatenates their disposal records
// and residuals, instruments in order of first appearance.
//
// The first invalid order aborts the whole declaration.
func (p *Portfolio) Declare() ([]DisposalRecord, []Residual, error) {
	var records []DisposalRecord
	var residuals []Residual
	for _, inst := range p.instruments {
		r, res, err := inst.Match()
		if err != nil {
			return nil, nil, err
		}
		records = append(records, r...)
		residuals = append(residuals, res...)
	}
	return records, residuals, nil
}
