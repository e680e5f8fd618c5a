package taxlots

import (
	"fmt"

	"github.com/etnz/taxlots/date"
)

// Transaction is a single trade fill. It is immutable once created.
//
// A buy fill has a positive quantity and a negative value (cash goes out), a
// sell fill has a negative quantity and a positive value.
type Transaction struct {
	on         date.Date
	units      Quantity
	value      Money
	commission Money
}

// NewTransaction creates a Transaction. The commission is stored as an absolute amount.
func NewTransaction(on date.Date, units Quantity, value, commission Money) Transaction {
	return Transaction{on: on, units: units, value: value, commission: commission.Abs()}
}

func (t Transaction) Date() date.Date   { return t.on }
func (t Transaction) Units() Quantity   { return t.units }
func (t Transaction) Value() Money      { return t.value }
func (t Transaction) Commission() Money { return t.commission }

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s units for %s (commission %s)", t.on, t.units, t.value, t.commission)
}

// Row is one normalized line of a broker export, as produced by a row source.
type Row struct {
	OrderID    string // empty when the broker did not assign one.
	ISIN       string
	Name       string
	Date       date.Date
	Units      Quantity
	Value      Money
	Commission Money
}

// Transaction returns the trade fill described by the row.
func (r Row) Transaction() Transaction {
	return NewTransaction(r.Date, r.Units, r.Value, r.Commission)
}
