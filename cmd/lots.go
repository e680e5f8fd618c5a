package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/date"
	"github.com/etnz/taxlots/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	year     int
	json     bool
	residual bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the matched lots" }
func (*lotsCmd) Usage() string {
	return `irsj [-data <dir>] [-tax-id <nif>] lots [-y <year>] [-r] [-json]

  Lists the disposal records: each chunk of a sell matched against a buy,
  with its share of the commissions.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Only list lots realized during this year (0 for all)")
	f.BoolVar(&c.residual, "r", false, "Also list the orders left with unmatched units")
	f.BoolVar(&c.json, "json", false, "Print JSON instead of markdown")
}

// lotsReport is the JSON output of the lots command.
type lotsReport struct {
	Records   []taxlots.DisposalRecord `json:"records"`
	Residuals []taxlots.Residual       `json:"residuals,omitempty"`
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := DecodePortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	records, residuals, err := declare(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error matching orders: %v\n", err)
		return subcommands.ExitFailure
	}

	title := "Disposals"
	if c.year != 0 {
		title = fmt.Sprintf("Disposals %d", c.year)
		records = inYear(records, c.year)
	}
	if !c.residual {
		residuals = nil
	}

	if c.json {
		report := lotsReport{Records: records, Residuals: residuals}
		if report.Records == nil {
			report.Records = []taxlots.DisposalRecord{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding lots: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	md := renderer.DisposalsMarkdown(title, records)
	if c.residual {
		md += "\n" + renderer.ResidualsMarkdown(residuals)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// inYear keeps the records realized during year.
func inYear(records []taxlots.DisposalRecord, year int) []taxlots.DisposalRecord {
	r := date.Year(year)
	var kept []taxlots.DisposalRecord
	for _, rec := range records {
		if r.Contains(rec.RealizationDate) {
			kept = append(kept, rec)
		}
	}
	return kept
}
