// Package irs fills the Portuguese IRS Modelo 3 declaration with disposal
// records: Anexo J, quadro 9.2 (capital gains obtained abroad).
//
// The declaration is an XML document exported from the tax portal. It is
// loaded as a template, completed, and written back.
package irs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/beevik/etree"
	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/date"
	"github.com/shopspring/decimal"
)

// namespaces of the known versions of the form.
var namespaces = map[string]int{
	"http://www.dgci.gov.pt/2009/Modelo3IRSv2024": 2024,
	"http://www.dgci.gov.pt/2009/Modelo3IRSv2025": 2025,
}

var (
	// ErrUnknownVersion is returned for a template with an unknown namespace.
	ErrUnknownVersion = errors.New("unknown form version")
	// ErrMissingElement is returned when the template lacks a required element.
	ErrMissingElement = errors.New("missing element")
	// ErrUnknownCountry is returned when an ISIN prefix has no country code.
	ErrUnknownCountry = errors.New("unknown country")
)

const (
	tableTag = "AnexoJq092AT01"
	lineTag  = "AnexoJq092AT01-Linha"
)

// Form is a Modelo 3 declaration.
type Form struct {
	doc     *etree.Document
	version int
	cfg     Config
}

// ReadForm reads a declaration template.
func ReadForm(r io.Reader, cfg Config) (*Form, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("cannot parse form: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: root", ErrMissingElement)
	}
	ns := root.NamespaceURI()
	version, ok := namespaces[ns]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, ns)
	}
	return &Form{doc: doc, version: version, cfg: cfg}, nil
}

// LoadForm reads a declaration template from a file.
func LoadForm(path string, cfg Config) (*Form, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	form, err := ReadForm(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return form, nil
}

// Version returns the form version, from its namespace.
func (f *Form) Version() int { return f.version }

// Totals are the sums written at the bottom of the table.
type Totals struct {
	Lines       int
	Realization decimal.Decimal
	Acquisition decimal.Decimal
	Expenses    decimal.Decimal
}

// Declare writes one line per record realized during fiscalYear, replacing
// any line already in the table, and updates the totals.
//
// Lines are numbered consecutively from the configured first line. Values are
// rounded to cents, and totals are sums of the rounded values.
func (f *Form) Declare(records []taxlots.DisposalRecord, fiscalYear int) (Totals, error) {
	anexo := f.doc.FindElement("//AnexoJ")
	if anexo == nil {
		return Totals{}, fmt.Errorf("%w: AnexoJ", ErrMissingElement)
	}
	table := anexo.FindElement(".//" + tableTag)
	if table == nil {
		return Totals{}, fmt.Errorf("%w: %s", ErrMissingElement, tableTag)
	}
	quadro := anexo.FindElement(".//Quadro09")
	if quadro == nil {
		return Totals{}, fmt.Errorf("%w: Quadro09", ErrMissingElement)
	}

	for _, old := range table.SelectElements(lineTag) {
		table.RemoveChild(old)
	}

	year := date.Year(fiscalYear)
	var totals Totals
	for _, r := range records {
		if !year.Contains(r.RealizationDate) {
			continue
		}
		country, err := f.country(r.ISIN)
		if err != nil {
			return Totals{}, fmt.Errorf("cannot declare %s: %w", r.Note, err)
		}
		n := f.cfg.FirstLine + totals.Lines
		realization := cents(r.RealizationValue)
		acquisition := cents(r.AcquisitionValue)
		expenses := cents(r.Expenses)

		line := child(table, lineTag, "")
		line.CreateAttr("numero", strconv.Itoa(n))
		child(line, "NLinha", strconv.Itoa(n))
		child(line, "CodPais", strconv.Itoa(country))
		child(line, "Codigo", f.cfg.Code)
		child(line, "AnoRealizacao", strconv.Itoa(r.RealizationDate.Year()))
		child(line, "MesRealizacao", strconv.Itoa(int(r.RealizationDate.Month())))
		child(line, "DiaRealizacao", strconv.Itoa(r.RealizationDate.Day()))
		child(line, "ValorRealizacao", realization.StringFixed(2))
		child(line, "AnoAquisicao", strconv.Itoa(r.AcquisitionDate.Year()))
		child(line, "MesAquisicao", strconv.Itoa(int(r.AcquisitionDate.Month())))
		child(line, "DiaAquisicao", strconv.Itoa(r.AcquisitionDate.Day()))
		child(line, "ValorAquisicao", acquisition.StringFixed(2))
		child(line, "DespesasEncargos", expenses.StringFixed(2))
		child(line, "CodPaisContraparte", strconv.Itoa(f.cfg.Counterparty))

		totals.Lines++
		totals.Realization = totals.Realization.Add(realization)
		totals.Acquisition = totals.Acquisition.Add(acquisition)
		totals.Expenses = totals.Expenses.Add(expenses)
	}

	set(quadro, tableTag+"SomaC01", totals.Realization.StringFixed(2))
	set(quadro, tableTag+"SomaC02", totals.Acquisition.StringFixed(2))
	set(quadro, tableTag+"SomaC03", totals.Expenses.StringFixed(2))
	set(quadro, tableTag+"SomaC04", decimal.Zero.StringFixed(2))
	return totals, nil
}

// country returns the numeric country code of the ISIN issuer.
func (f *Form) country(isin string) (int, error) {
	prefix, err := taxlots.IssuerCountry(isin)
	if err != nil {
		return 0, err
	}
	code, ok := f.cfg.Countries[prefix]
	if !ok {
		return 0, fmt.Errorf("%w %q for %s", ErrUnknownCountry, prefix, isin)
	}
	return code, nil
}

func cents(m taxlots.Money) decimal.Decimal { return m.Decimal().Round(2) }

// child appends a new element in the parent's namespace.
func child(parent *etree.Element, tag, text string) *etree.Element {
	if parent.Space != "" {
		tag = parent.Space + ":" + tag
	}
	e := parent.CreateElement(tag)
	if text != "" {
		e.SetText(text)
	}
	return e
}

// set updates the text of the parent's tag element, creating it if needed.
func set(parent *etree.Element, tag, text string) {
	if e := parent.SelectElement(tag); e != nil {
		e.SetText(text)
		return
	}
	child(parent, tag, text)
}

// WriteTo writes the declaration, one element per line.
func (f *Form) WriteTo(w io.Writer) (int64, error) {
	if len(f.doc.Child) == 0 || !isDeclaration(f.doc.Child[0]) {
		f.doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
	}
	f.doc.Indent(0)
	return f.doc.WriteTo(w)
}

func isDeclaration(t etree.Token) bool {
	p, ok := t.(*etree.ProcInst)
	return ok && p.Target == "xml"
}

// Save writes the declaration into a file.
func (f *Form) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return out.Close()
}
