package taxlots

import (
	"fmt"

	"github.com/etnz/taxlots/date"
)

// DisposalRecord is one matched chunk of a sell order against a buy order.
type DisposalRecord struct {
	ISIN  string
	Name  string
	Units Quantity // the matched chunk

	RealizationDate  date.Date
	RealizationValue Money
	AcquisitionDate  date.Date
	AcquisitionValue Money
	Expenses         Money // commission share of both sides

	Note string // "name[isin] chunk/sold"
}

// newDisposalRecord builds the record for 'units' of sell matched against buy.
// Both orders must already have been allocated.
func newDisposalRecord(sell, buy *Order, isin, name string, units Quantity) (DisposalRecord, error) {
	sellPrice, err := sell.UnitPrice()
	if err != nil {
		return DisposalRecord{}, err
	}
	buyPrice, err := buy.UnitPrice()
	if err != nil {
		return DisposalRecord{}, err
	}
	return DisposalRecord{
		ISIN:             isin,
		Name:             name,
		Units:            units,
		RealizationDate:  sell.Date(),
		RealizationValue: sellPrice.Abs().Mul(units),
		AcquisitionDate:  buy.Date(),
		AcquisitionValue: buyPrice.Abs().Mul(units),
		Expenses:         sell.CostFor(units).Add(buy.CostFor(units)),
		Note:             fmt.Sprintf("%s[%s] %s/%s", name, isin, units, sell.Units().Abs()),
	}, nil
}

// Gain returns the realized gain net of expenses.
func (r DisposalRecord) Gain() Money {
	return r.RealizationValue.Sub(r.AcquisitionValue).Sub(r.Expenses)
}

func (r DisposalRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("isin", r.ISIN)
	w.Append("name", r.Name)
	w.Append("units", r.Units)
	w.Append("realizationDate", r.RealizationDate)
	w.Append("realizationValue", r.RealizationValue)
	w.Append("acquisitionDate", r.AcquisitionDate)
	w.Append("acquisitionValue", r.AcquisitionValue)
	w.Append("expenses", r.Expenses)
	w.Optional("note", r.Note)
	return w.MarshalJSON()
}

// Residual is an order left with unmatched units at the end of a matching.
//
// A sell residual means the buy history is missing or incomplete. A buy
// residual is usually just an open position. A split sell is never matched,
// so it is always a residual.
type Residual struct {
	OrderID string
	ISIN    string
	Name    string
	Type    OrderType
	Split   bool // the order id was synthesized
	Date    date.Date
	Units   Quantity // still unallocated
	Total   Quantity // absolute net units of the order
}

func (r Residual) String() string {
	typ := r.Type.String()
	if r.Split {
		typ = "split " + typ
	}
	return fmt.Sprintf("%s order %s of %s[%s] on %s: %s/%s units unmatched", typ, r.OrderID, r.Name, r.ISIN, r.Date, r.Units, r.Total)
}

func (r Residual) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("orderId", r.OrderID)
	w.Append("isin", r.ISIN)
	w.Append("name", r.Name)
	w.Append("type", r.Type)
	w.Optional("split", r.Split)
	w.Append("date", r.Date)
	w.Append("units", r.Units)
	w.Append("total", r.Total)
	return w.MarshalJSON()
}

func newResidual(o *Order, typ OrderType) Residual {
	return Residual{
		OrderID: o.ID(),
		ISIN:    o.ISIN(),
		Name:    o.Name(),
		Type:    typ,
		Split:   o.IsSplit(),
		Date:    o.Date(),
		Units:   o.Remaining(),
		Total:   o.Units().Abs(),
	}
}
