package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/taxlots/date"
	"github.com/etnz/taxlots/irs"
	"github.com/google/subcommands"
)

type declareCmd struct {
	input  string
	output string
	year   int
	config string
}

func (*declareCmd) Name() string     { return "declare" }
func (*declareCmd) Synopsis() string { return "fill the IRS declaration with the disposals of a fiscal year" }
func (*declareCmd) Usage() string {
	return `irsj [-data <dir>] [-tax-id <nif>] declare -i <template.xml> [-o <output.xml>] [-y <year>] [-config <irs.yaml>]

  Matches the sells of the account against its buys, first in first out, and
  writes one line per matched lot realized during the fiscal year into Anexo J,
  quadro 9.2 of the declaration.
`
}

func (c *declareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Path to the pre-filled declaration exported from the tax portal")
	f.StringVar(&c.output, "o", filepath.Join("output", "output.xml"), "Path to the completed declaration")
	f.IntVar(&c.year, "y", date.Today().Year()-1, "Fiscal year of the declaration")
	f.StringVar(&c.config, "config", "", "Path to a YAML file overriding the declaration settings")
}

func (c *declareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		fmt.Fprintln(os.Stderr, "-i is required")
		return subcommands.ExitUsageError
	}

	cfg := irs.DefaultConfig()
	if c.config != "" {
		var err error
		if cfg, err = irs.LoadConfig(c.config); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	form, err := irs.LoadForm(c.input, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading declaration: %v\n", err)
		return subcommands.ExitFailure
	}

	p, err := DecodePortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	records, _, err := declare(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error matching orders: %v\n", err)
		return subcommands.ExitFailure
	}

	totals, err := form.Declare(records, c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error filling declaration: %v\n", err)
		return subcommands.ExitFailure
	}

	if dir := filepath.Dir(c.output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output folder: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if err := form.Save(c.output); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving declaration: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "Declared %d lines for %d into %s: realization %s, acquisition %s, expenses %s\n",
		totals.Lines, c.year, c.output,
		totals.Realization.StringFixed(2), totals.Acquisition.StringFixed(2), totals.Expenses.StringFixed(2))
	return subcommands.ExitSuccess
}
