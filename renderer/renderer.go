// Package renderer formats portfolio reports as markdown.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxlots"
	md "github.com/nao1215/markdown"
)

// PositionsMarkdown renders the open positions.
func PositionsMarkdown(positions []taxlots.Position) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Open Positions")
	if len(positions) == 0 {
		doc.PlainText("No open position.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Name", "ISIN", "Units"},
	}
	for _, p := range positions {
		table.Rows = append(table.Rows, []string{p.Name, p.ISIN, p.Units.String()})
	}
	doc.Table(table)
	return doc.String()
}

// HistoryMarkdown renders the order history, one section per instrument.
func HistoryMarkdown(histories []taxlots.InstrumentHistory) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Order History")
	for _, h := range histories {
		doc.H2(fmt.Sprintf("%s (%s): %s units", h.Name, h.ISIN, h.NetUnits))

		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignLeft,
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Date", "Order", "Type", "Fills", "Units", "Value", "Commission"},
		}
		for _, o := range h.Orders {
			typ := o.Type.String()
			if o.Split {
				typ += " (split)"
			}
			table.Rows = append(table.Rows, []string{
				o.Date.String(),
				o.ID,
				typ,
				fmt.Sprint(o.Transactions),
				o.Units.String(),
				o.Value.String(),
				o.Commission.String(),
			})
		}
		doc.Table(table)
	}
	return doc.String()
}

// DisposalsMarkdown renders the disposal records with their totals.
func DisposalsMarkdown(title string, records []taxlots.DisposalRecord) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	if len(records) == 0 {
		doc.PlainText("No disposal.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Security", "Units", "Sold", "Realization", "Bought", "Acquisition", "Expenses", "Gain"},
	}
	var realization, acquisition, expenses, gain taxlots.Money
	for _, r := range records {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%s (%s)", r.Name, r.ISIN),
			r.Units.String(),
			r.RealizationDate.String(),
			r.RealizationValue.String(),
			r.AcquisitionDate.String(),
			r.AcquisitionValue.String(),
			r.Expenses.String(),
			r.Gain().SignedString(),
		})
		realization = realization.Add(r.RealizationValue)
		acquisition = acquisition.Add(r.AcquisitionValue)
		expenses = expenses.Add(r.Expenses)
		gain = gain.Add(r.Gain())
	}
	table.Rows = append(table.Rows, []string{
		md.Bold("Total"),
		"",
		"",
		md.Bold(realization.String()),
		"",
		md.Bold(acquisition.String()),
		md.Bold(expenses.String()),
		md.Bold(gain.SignedString()),
	})
	doc.Table(table)
	return doc.String()
}

// ResidualsMarkdown renders the orders left with unmatched units.
func ResidualsMarkdown(residuals []taxlots.Residual) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Unmatched Orders")
	if len(residuals) == 0 {
		doc.PlainText("Every order is matched.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Date", "Security", "Order", "Type", "Unmatched"},
	}
	for _, r := range residuals {
		typ := r.Type.String()
		if r.Split {
			typ += " (split)"
		}
		table.Rows = append(table.Rows, []string{
			r.Date.String(),
			fmt.Sprintf("%s (%s)", r.Name, r.ISIN),
			r.OrderID,
			typ,
			fmt.Sprintf("%s/%s", r.Units, r.Total),
		})
	}
	doc.Table(table)
	return doc.String()
}
