package taxlots

import "github.com/etnz/taxlots/date"

const (
	AAPL  = "US0378331005"
	GOOG  = "US38259P5089"
	IWDA  = "IE00B4L5Y983"
	apple = "Apple"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// fill is a helper for test to create a row.
func fill(id, isin, name, on string, units int, value, commission float64) Row {
	return Row{
		OrderID:    id,
		ISIN:       isin,
		Name:       name,
		Date:       date.MustParse(on),
		Units:      Q(units),
		Value:      EUR(value),
		Commission: EUR(commission),
	}
}

// newOrder is a helper for test to create an order from its fills.
func newOrder(id string, split bool, rows ...Row) *Order {
	o := NewOrder(rows[0].ISIN, rows[0].Name, id, split)
	for _, r := range rows {
		o.Merge(r.Transaction())
	}
	return o
}

// newTestInstrument is a helper for test to register orders into a fresh instrument.
func newTestInstrument(orders ...*Order) *Instrument {
	inst := NewInstrument(AAPL, apple)
	for _, o := range orders {
		inst.Register(o)
	}
	return inst
}
