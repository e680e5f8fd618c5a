package taxlots

import (
	"slices"
	"strings"

	"github.com/etnz/taxlots/date"
)

// Position is the net holding of an instrument.
type Position struct {
	ISIN  string
	Name  string
	Units Quantity
}

// OpenPositions returns the instruments with a positive net position, sorted
// by name regardless of case.
func OpenPositions(p *Portfolio) []Position {
	var positions []Position
	for _, inst := range p.Instruments() {
		units := inst.NetUnits()
		if !units.IsPositive() {
			continue
		}
		positions = append(positions, Position{ISIN: inst.ISIN(), Name: inst.Name(), Units: units})
	}
	slices.SortStableFunc(positions, func(a, b Position) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return positions
}

// OrderSummary describes an order in an instrument history.
type OrderSummary struct {
	ID           string
	Type         OrderType
	Date         date.Date
	Split        bool
	Transactions int
	Units        Quantity
	Value        Money
	Commission   Money
}

// InstrumentHistory lists the orders of an instrument in registration order.
type InstrumentHistory struct {
	ISIN     string
	Name     string
	NetUnits Quantity
	Orders   []OrderSummary
}

// History returns the order history of every instrument, in order of first
// appearance. It fails on the first invalid order.
func History(p *Portfolio) ([]InstrumentHistory, error) {
	var histories []InstrumentHistory
	for _, inst := range p.Instruments() {
		h := InstrumentHistory{ISIN: inst.ISIN(), Name: inst.Name(), NetUnits: inst.NetUnits()}
		for _, o := range inst.Orders() {
			typ, err := o.Type()
			if err != nil {
				return nil, err
			}
			h.Orders = append(h.Orders, OrderSummary{
				ID:           o.ID(),
				Type:         typ,
				Date:         o.Date(),
				Split:        o.IsSplit(),
				Transactions: len(o.Transactions()),
				Units:        o.Units(),
				Value:        o.Value(),
				Commission:   o.Commission(),
			})
		}
		histories = append(histories, h)
	}
	return histories, nil
}
