package taxlots

import (
	"fmt"
	"slices"
)

// Instrument holds all the orders of a single tradable instrument and matches
// its sell orders against its buy orders.
type Instrument struct {
	isin   string
	name   string
	orders []*Order          // in registration order
	index  map[string]*Order // orders by id
}

// NewInstrument creates an instrument with no orders.
func NewInstrument(isin, name string) *Instrument {
	return &Instrument{isin: isin, name: name, index: make(map[string]*Order)}
}

func (i *Instrument) ISIN() string { return i.isin }
func (i *Instrument) Name() string { return i.name }

// Orders returns the registered orders in registration order.
func (i *Instrument) Orders() []*Order { return slices.Clone(i.orders) }

// Order returns the order with this id, or nil.
func (i *Instrument) Order(id string) *Order { return i.index[id] }

// Register adds an order to the instrument.
func (i *Instrument) Register(o *Order) {
	i.orders = append(i.orders, o)
	i.index[o.ID()] = o
}

// NetUnits returns the sum of the net units of all orders.
func (i *Instrument) NetUnits() Quantity {
	var units Quantity
	for _, o := range i.orders {
		units = units.Add(o.Units())
	}
	return units
}

// Match matches sell orders against buy orders, oldest first, and returns one
// disposal record per matched chunk, plus the orders left with unmatched
// units: sells, then split sells (never matched), then buys.
//
// Every order's allocation is reset first, so Match can be called repeatedly
// on the same instrument with identical results.
func (i *Instrument) Match() ([]DisposalRecord, []Residual, error) {
	for _, o := range i.orders {
		o.reset()
	}
	sells, buys, splits, err := i.sides()
	if err != nil {
		return nil, nil, err
	}
	records, err := i.allocate(sells, buys)
	if err != nil {
		return nil, nil, err
	}

	var residuals []Residual
	for _, id := range sells {
		if o := i.index[id]; !o.IsAllocated() {
			residuals = append(residuals, newResidual(o, Sell))
		}
	}
	for _, id := range splits {
		residuals = append(residuals, newResidual(i.index[id], Sell))
	}
	for _, id := range buys {
		if o := i.index[id]; !o.IsAllocated() {
			residuals = append(residuals, newResidual(o, Buy))
		}
	}
	return records, residuals, nil
}

// sides returns the ids of the sell and buy orders sorted by order date.
// Ties keep the registration order. Sell orders with a synthesized id never
// act as the sell side, they are returned apart in splits.
func (i *Instrument) sides() (sells, buys, splits []string, err error) {
	sorted := slices.Clone(i.orders)
	slices.SortStableFunc(sorted, func(a, b *Order) int { return a.Date().Compare(b.Date()) })

	for _, o := range sorted {
		typ, err := o.Type()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("cannot match %s[%s]: %w", i.name, i.isin, err)
		}
		switch {
		case typ == Sell && o.IsSplit():
			splits = append(splits, o.ID())
		case typ == Sell:
			sells = append(sells, o.ID())
		case typ == Buy:
			buys = append(buys, o.ID())
		}
	}
	return sells, buys, splits, nil
}

// allocate runs the greedy FIFO matching from the current allocation state.
//
// Each chunk is the smaller of the two remaining quantities so it always
// exhausts at least one side, and each chunk yields exactly one record.
func (i *Instrument) allocate(sells, buys []string) ([]DisposalRecord, error) {
	var records []DisposalRecord
	for _, sid := range sells {
		sell := i.index[sid]
		if sell.IsAllocated() {
			continue
		}
		for _, bid := range buys {
			buy := i.index[bid]
			if buy.IsAllocated() {
				continue
			}
			chunk := sell.Remaining().Min(buy.Remaining())
			buy.allocate(chunk)
			sell.allocate(chunk)

			record, err := newDisposalRecord(sell, buy, i.isin, i.name, chunk)
			if err != nil {
				return nil, fmt.Errorf("cannot match %s[%s]: %w", i.name, i.isin, err)
			}
			records = append(records, record)

			if sell.IsAllocated() {
				break
			}
		}
	}
	return records, nil
}
