package taxlots

import (
	"errors"
	"fmt"

	"github.com/etnz/taxlots/date"
)

var (
	// ErrInvalidOrder is returned when the net units and net value of an order
	// match neither the buy nor the sell pattern.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrZeroUnits is returned when a unit price is requested on an order with no net units.
	ErrZeroUnits = errors.New("order has zero net units")
)

// OrderType is the side of an order.
type OrderType int

const (
	Buy OrderType = iota + 1
	Sell
)

func (t OrderType) String() string {
	switch t {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (t OrderType) MarshalJSON() ([]byte, error) { return []byte(`"` + t.String() + `"`), nil }

// Order groups all the fills sharing a broker order id.
//
// Units, Value and Commission are sums over the order's transactions. The
// remaining quantity is what the matching has not yet allocated to a counter
// order: it starts at the absolute net units and only ever decreases.
type Order struct {
	isin  string
	name  string
	id    string
	split bool // true when the id was synthesized for a fill without one.

	transactions []Transaction // in arrival order
	units        Quantity
	value        Money
	commission   Money
	remaining    Quantity
}

// NewOrder creates an empty order for an instrument.
func NewOrder(isin, name, id string, split bool) *Order {
	return &Order{isin: isin, name: name, id: id, split: split}
}

func (o *Order) ISIN() string        { return o.isin }
func (o *Order) Name() string        { return o.name }
func (o *Order) ID() string          { return o.id }
func (o *Order) IsSplit() bool       { return o.split }
func (o *Order) Units() Quantity     { return o.units }
func (o *Order) Value() Money        { return o.value }
func (o *Order) Commission() Money   { return o.commission }
func (o *Order) Remaining() Quantity { return o.remaining }

// Transactions returns a copy of the order's fills in arrival order.
func (o *Order) Transactions() []Transaction {
	return append([]Transaction(nil), o.transactions...)
}

// Merge appends a fill to the order and resets the remaining quantity.
func (o *Order) Merge(tx Transaction) {
	o.transactions = append(o.transactions, tx)
	o.units = o.units.Add(tx.Units())
	o.value = o.value.Add(tx.Value())
	o.commission = o.commission.Add(tx.Commission())
	o.remaining = o.units.Abs()
}

// Date is the date of the first fill merged into the order. This is the
// arrival order, not the earliest calendar date.
func (o *Order) Date() date.Date {
	if len(o.transactions) == 0 {
		return date.Date{}
	}
	return o.transactions[0].Date()
}

// Type classifies the order as a Buy or a Sell.
func (o *Order) Type() (OrderType, error) {
	switch {
	case o.units.IsPositive() && o.value.IsNegative():
		return Buy, nil
	case o.units.IsNegative() && o.value.IsPositive():
		return Sell, nil
	}
	return 0, fmt.Errorf("%w: order %q for %s[%s] has %s units for %s", ErrInvalidOrder, o.id, o.name, o.isin, o.units, o.value)
}

// UnitPrice returns the signed net value per unit.
func (o *Order) UnitPrice() (Money, error) {
	if o.units.IsZero() {
		return Money{}, fmt.Errorf("%w: order %q for %s[%s]", ErrZeroUnits, o.id, o.name, o.isin)
	}
	return o.value.Div(o.units), nil
}

// IsAllocated reports whether all the order's units have been matched.
func (o *Order) IsAllocated() bool { return o.remaining.IsZero() }

// CostFor returns the share of the order's commission attributed to 'units'.
//
// Once the order is fully allocated the residual share is returned instead of
// the flat proportional share, so that the slices of a single order add up to
// its whole commission.
func (o *Order) CostFor(units Quantity) Money {
	commission := o.commission.Abs()
	total := o.units.Abs()
	if total.IsZero() {
		return Money{cur: commission.cur}
	}
	if o.IsAllocated() {
		return commission.Sub(commission.Div(total).Mul(total.Sub(units)))
	}
	return commission.Div(total).Mul(units)
}

// allocate consumes units from the remaining quantity.
func (o *Order) allocate(units Quantity) {
	o.remaining = o.remaining.Sub(units)
	if o.remaining.IsNegative() {
		panic(fmt.Sprintf("order %q over allocated by %s", o.id, o.remaining.Neg()))
	}
}

// reset makes all the order's units available for matching again.
func (o *Order) reset() { o.remaining = o.units.Abs() }

func (o *Order) String() string {
	return fmt.Sprintf("order %s %s[%s]: %d txn, %s units, %s", o.id, o.name, o.isin, len(o.transactions), o.units, o.value)
}
