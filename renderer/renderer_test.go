package renderer

import (
	"slices"
	"strings"
	"testing"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/date"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// parsedTable is a markdown table read back from a rendered report.
type parsedTable struct {
	header []string
	rows   [][]string
}

// tables parses the markdown and returns its tables and headings.
func tables(t *testing.T, doc string) ([]parsedTable, []string) {
	t.Helper()
	source := []byte(doc)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(source))

	var tables []parsedTable
	var headings []string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			headings = append(headings, content(n, source))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var tbl parsedTable
			for row := n.FirstChild(); row != nil; row = row.NextSibling() {
				var cells []string
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					cells = append(cells, content(cell, source))
				}
				if _, ok := row.(*east.TableHeader); ok {
					tbl.header = cells
				} else {
					tbl.rows = append(tbl.rows, cells)
				}
			}
			tables = append(tables, tbl)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("cannot walk the markdown: %v", err)
	}
	return tables, headings
}

// content concatenates the text under n.
func content(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
		case *ast.String:
			b.Write(c.Value)
		default:
			b.WriteString(content(c, source))
		}
	}
	return strings.TrimSpace(b.String())
}

func eur(v float64) taxlots.Money { return taxlots.M(v, "EUR") }

// single returns the only table of doc.
func single(t *testing.T, doc string) parsedTable {
	t.Helper()
	tbls, _ := tables(t, doc)
	if len(tbls) != 1 {
		t.Fatalf("got %d tables, want 1:\n%s", len(tbls), doc)
	}
	return tbls[0]
}

func checkRow(t *testing.T, name string, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("%s = %q, want %q", name, got, want)
	}
}

func TestPositionsMarkdown(t *testing.T) {
	doc := PositionsMarkdown([]taxlots.Position{
		{ISIN: "US0378331005", Name: "Apple", Units: taxlots.Q(10)},
		{ISIN: "IE00B4L5Y983", Name: "iShares World", Units: taxlots.Q(2.5)},
	})

	_, headings := tables(t, doc)
	checkRow(t, "headings", headings, []string{"Open Positions"})
	tbl := single(t, doc)
	checkRow(t, "header", tbl.header, []string{"Name", "ISIN", "Units"})
	if len(tbl.rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.rows))
	}
	checkRow(t, "row 0", tbl.rows[0], []string{"Apple", "US0378331005", "10"})
	checkRow(t, "row 1", tbl.rows[1], []string{"iShares World", "IE00B4L5Y983", "2.5"})
}

func TestPositionsMarkdown_Empty(t *testing.T) {
	doc := PositionsMarkdown(nil)
	if tbls, _ := tables(t, doc); len(tbls) != 0 {
		t.Errorf("got %d tables, want none", len(tbls))
	}
	if !strings.Contains(doc, "No open position.") {
		t.Errorf("PositionsMarkdown(nil) = %q, want a no position message", doc)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	doc := HistoryMarkdown([]taxlots.InstrumentHistory{{
		ISIN:     "US0378331005",
		Name:     "Apple",
		NetUnits: taxlots.Q(4),
		Orders: []taxlots.OrderSummary{
			{ID: "b1", Type: taxlots.Buy, Date: date.MustParse("2023-01-10"), Transactions: 2, Units: taxlots.Q(10), Value: eur(-1000), Commission: eur(5)},
			{ID: "s1", Type: taxlots.Sell, Date: date.MustParse("2023-06-01"), Split: true, Transactions: 1, Units: taxlots.Q(-6), Value: eur(900), Commission: eur(0)},
		},
	}})

	_, headings := tables(t, doc)
	checkRow(t, "headings", headings, []string{"Order History", "Apple (US0378331005): 4 units"})
	tbl := single(t, doc)
	checkRow(t, "header", tbl.header, []string{"Date", "Order", "Type", "Fills", "Units", "Value", "Commission"})
	if len(tbl.rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.rows))
	}
	checkRow(t, "row 0", tbl.rows[0][:5], []string{"2023-01-10", "b1", "buy", "2", "10"})
	if got, want := tbl.rows[0][5], eur(-1000).String(); got != want {
		t.Errorf("value = %q, want %q", got, want)
	}
	if got := tbl.rows[1][2]; got != "sell (split)" {
		t.Errorf("type = %q, want %q", got, "sell (split)")
	}
}

func TestDisposalsMarkdown(t *testing.T) {
	records := []taxlots.DisposalRecord{
		{
			ISIN: "US0378331005", Name: "Apple", Units: taxlots.Q(60),
			RealizationDate: date.MustParse("2023-06-01"), RealizationValue: eur(900),
			AcquisitionDate: date.MustParse("2023-01-10"), AcquisitionValue: eur(600),
			Expenses: eur(15),
		},
		{
			ISIN: "US0378331005", Name: "Apple", Units: taxlots.Q(40),
			RealizationDate: date.MustParse("2023-06-01"), RealizationValue: eur(600),
			AcquisitionDate: date.MustParse("2023-02-10"), AcquisitionValue: eur(800),
			Expenses: eur(10),
		},
	}
	doc := DisposalsMarkdown("Disposals 2023", records)

	_, headings := tables(t, doc)
	checkRow(t, "headings", headings, []string{"Disposals 2023"})
	tbl := single(t, doc)
	checkRow(t, "header", tbl.header, []string{"Security", "Units", "Sold", "Realization", "Bought", "Acquisition", "Expenses", "Gain"})
	// two records and the total
	if len(tbl.rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(tbl.rows))
	}

	cells := []struct {
		row, col int
		want     string
	}{
		{0, 0, "Apple (US0378331005)"},
		{0, 7, eur(285).SignedString()},
		{1, 7, eur(-210).SignedString()},
		{2, 0, "Total"},
		{2, 3, eur(1500).String()},
		{2, 5, eur(1400).String()},
		{2, 6, eur(25).String()},
		{2, 7, eur(75).SignedString()},
	}
	for _, c := range cells {
		if got := tbl.rows[c.row][c.col]; got != c.want {
			t.Errorf("cell [%d][%d] = %q, want %q", c.row, c.col, got, c.want)
		}
	}
}

func TestDisposalsMarkdown_Empty(t *testing.T) {
	if doc := DisposalsMarkdown("Disposals", nil); !strings.Contains(doc, "No disposal.") {
		t.Errorf("DisposalsMarkdown(nil) = %q, want a no disposal message", doc)
	}
}

func TestResidualsMarkdown(t *testing.T) {
	tbl := single(t, ResidualsMarkdown([]taxlots.Residual{
		{OrderID: "s1", ISIN: "US0378331005", Name: "Apple", Type: taxlots.Sell, Date: date.MustParse("2023-06-01"), Units: taxlots.Q(30), Total: taxlots.Q(100)},
		{OrderID: "x1", ISIN: "US0378331005", Name: "Apple", Type: taxlots.Sell, Split: true, Date: date.MustParse("2023-07-01"), Units: taxlots.Q(5), Total: taxlots.Q(5)},
	}))
	if len(tbl.rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.rows))
	}
	checkRow(t, "row 0", tbl.rows[0], []string{"2023-06-01", "Apple (US0378331005)", "s1", "sell", "30/100"})
	checkRow(t, "row 1", tbl.rows[1], []string{"2023-07-01", "Apple (US0378331005)", "x1", "sell (split)", "5/5"})

	if doc := ResidualsMarkdown(nil); !strings.Contains(doc, "Every order is matched.") {
		t.Errorf("ResidualsMarkdown(nil) = %q, want an all matched message", doc)
	}
}
