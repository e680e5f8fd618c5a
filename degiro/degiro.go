// Package degiro reads the "Transactions" CSV export of the Degiro broker into
// rows ready to be ingested by a taxlots.Portfolio.
//
// Both the Portuguese and the English exports are supported. Column headers
// are matched after normalization (accents removed, spaces replaced by '_',
// lower case), so "Custos de transação" is read as "custos_de_transacao".
package degiro

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/date"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the layout of the date column.
const DateLayout = "02-01-2006"

// DefaultCurrency is used when the export has no currency column for the value.
const DefaultCurrency = "EUR"

// ErrMalformedRow is wrapped by the error returned when some rows could not be
// parsed. Those rows are skipped, the others are still returned.
var ErrMalformedRow = errors.New("malformed row")

// ErrMissingColumn is returned when a required column is not in the header.
var ErrMissingColumn = errors.New("missing column")

type column int

const (
	orderID column = iota
	isin
	product
	day
	clock
	quantity
	value
	costs
)

var columnNames = map[column]string{
	orderID:  "order id",
	isin:     "isin",
	product:  "product",
	day:      "date",
	clock:    "time",
	quantity: "quantity",
	value:    "value",
	costs:    "transaction costs",
}

// aliases maps normalized headers to columns.
var aliases = map[string]column{
	"id_da_ordem":              orderID,
	"order_id":                 orderID,
	"isin":                     isin,
	"produto":                  product,
	"product":                  product,
	"data":                     day,
	"date":                     day,
	"hora":                     clock,
	"time":                     clock,
	"quantidade":               quantity,
	"quantity":                 quantity,
	"valor":                    value,
	"value":                    value,
	"custos_de_transacao":      costs,
	"transaction_costs":        costs,
	"transaction_and/or_third": costs,
}

// required columns, time is optional.
var required = []column{orderID, isin, product, day, quantity, value}

const emptyField = "empty_field"

// fold removes accents.
var fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the normalized form of a column header.
func Normalize(header string) string {
	header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if header == "" {
		return emptyField
	}
	folded, _, err := transform.String(fold, header)
	if err != nil {
		folded = header
	}
	return strings.ToLower(strings.ReplaceAll(folded, " ", "_"))
}

// layout locates the columns in a record.
type layout struct {
	index    map[column]int
	currency int // index of the value currency column, -1 when absent
}

func newLayout(header []string) (layout, error) {
	l := layout{index: make(map[column]int), currency: -1}
	for i, h := range header {
		name := Normalize(h)
		col, ok := aliases[name]
		if !ok {
			continue
		}
		if _, seen := l.index[col]; seen {
			continue // first occurrence wins
		}
		l.index[col] = i
		// The value currency is the unnamed column right after the value.
		if col == value && i+1 < len(header) && Normalize(header[i+1]) == emptyField {
			l.currency = i + 1
		}
	}
	var errs error
	for _, col := range required {
		if _, ok := l.index[col]; !ok {
			errs = errors.Join(errs, fmt.Errorf("%w %q", ErrMissingColumn, columnNames[col]))
		}
	}
	return l, errs
}

func (l layout) get(rec []string, col column) string {
	i, ok := l.index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// entry is a parsed record with its sort keys.
type entry struct {
	row   taxlots.Row
	clock string
	key   string
}

func (l layout) parse(rec []string) (entry, error) {
	on, err := parseDate(l.get(rec, day))
	if err != nil {
		return entry{}, err
	}
	units, err := parseDecimal(l.get(rec, quantity))
	if err != nil {
		return entry{}, fmt.Errorf("invalid quantity: %w", err)
	}
	val, err := parseDecimal(l.get(rec, value))
	if err != nil {
		return entry{}, fmt.Errorf("invalid value: %w", err)
	}
	commission, err := parseDecimal(l.get(rec, costs))
	if err != nil {
		return entry{}, fmt.Errorf("invalid transaction costs: %w", err)
	}
	cur := DefaultCurrency
	if l.currency >= 0 && l.currency < len(rec) && strings.TrimSpace(rec[l.currency]) != "" {
		cur = strings.TrimSpace(rec[l.currency])
	}

	return entry{
		row: taxlots.Row{
			OrderID:    l.get(rec, orderID),
			ISIN:       l.get(rec, isin),
			Name:       l.get(rec, product),
			Date:       on,
			Units:      taxlots.Q(units),
			Value:      taxlots.M(val, cur),
			Commission: taxlots.M(commission.Abs(), cur),
		},
		clock: l.get(rec, clock),
		key:   strings.Join(rec, "\x1f"),
	}, nil
}

// parseDate reads the broker date format, and ISO dates as a fallback.
func parseDate(s string) (date.Date, error) {
	on, err := date.ParseLayout(DateLayout, s)
	if err == nil {
		return on, nil
	}
	if iso, isoErr := date.Parse(s); isoErr == nil {
		return iso, nil
	}
	return date.Date{}, err
}

// parseDecimal reads a number written with either '.' or ',' as decimal separator.
// An empty string is zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "") // thousands separator
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// reader accumulates entries from several files, skipping duplicates.
type reader struct {
	entries []entry
	seen    map[string]bool
	errs    error
}

func newReader() *reader { return &reader{seen: make(map[string]bool)} }

func (rd *reader) read(name string, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("cannot read header of %s: %w", name, err)
	}
	l, err := newLayout(header)
	if err != nil {
		return fmt.Errorf("invalid header in %s: %w", name, err)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", name, err)
		}
		e, err := l.parse(rec)
		if err != nil {
			log.Printf("warning: skipping %s:%d: %v", name, line, err)
			rd.errs = errors.Join(rd.errs, fmt.Errorf("%w %s:%d: %w", ErrMalformedRow, name, line, err))
			continue
		}
		if rd.seen[e.key] {
			continue
		}
		rd.seen[e.key] = true
		rd.entries = append(rd.entries, e)
	}
}

// rows returns the rows in chronological order. Rows on the same date and time
// are ordered by their raw content so the order does not depend on the files.
func (rd *reader) rows() []taxlots.Row {
	slices.SortStableFunc(rd.entries, func(a, b entry) int {
		return cmp.Or(
			a.row.Date.Compare(b.row.Date),
			strings.Compare(a.clock, b.clock),
			strings.Compare(a.key, b.key),
		)
	})
	rows := make([]taxlots.Row, 0, len(rd.entries))
	for _, e := range rd.entries {
		rows = append(rows, e.row)
	}
	return rows
}

// Read reads a single export.
//
// When some rows are malformed they are skipped, and the returned error wraps
// ErrMalformedRow: the valid rows are returned anyway.
func Read(r io.Reader) ([]taxlots.Row, error) {
	rd := newReader()
	if err := rd.read("input", r); err != nil {
		return nil, err
	}
	return rd.rows(), rd.errs
}

// ReadDir reads all the "*.csv" exports in dir. Rows present in several files
// are read once.
//
// Like Read, malformed rows are skipped and reported with an error wrapping
// ErrMalformedRow.
func ReadDir(dir string) ([]taxlots.Row, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no csv file in %s: %w", dir, os.ErrNotExist)
	}
	slices.Sort(files)

	rd := newReader()
	for _, file := range files {
		if err := readFile(rd, file); err != nil {
			return nil, err
		}
	}
	return rd.rows(), rd.errs
}

func readFile(rd *reader, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return rd.read(filepath.Base(file), f)
}
