// Package cmd implements the CLI application to declare the capital gains of
// a broker account.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/degiro"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

// Commands lists the subcommands, in the order of the help message.
var Commands = []subcommands.Command{
	&declareCmd{},
	&lotsCmd{},
	&positionsCmd{},
	&historyCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataDir = flag.String("data", "data", "Path to the folder of broker exports, one sub folder per tax id")
var taxID = flag.String("tax-id", "", "Tax identification number (NIF), the sub folder of -data to read")

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// accountDir returns the folder of the broker exports.
func accountDir() string {
	if *taxID == "" {
		return *dataDir
	}
	return filepath.Join(*dataDir, *taxID)
}

// DecodePortfolio reads the broker exports of the selected account into a portfolio.
//
// Malformed rows are logged and skipped.
func DecodePortfolio() (*taxlots.Portfolio, error) {
	dir := accountDir()
	rows, err := degiro.ReadDir(dir)
	if errors.Is(err, degiro.ErrMalformedRow) {
		log.Printf("warning: some rows of %s were skipped", dir)
		err = nil
	}
	if err != nil {
		return nil, err
	}

	p := taxlots.NewPortfolio()
	if err := p.Ingest(rows); err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", dir, err)
	}
	return p, nil
}

// declare matches the portfolio and logs the sell residuals: they are sells
// whose buy history is missing.
func declare(p *taxlots.Portfolio) ([]taxlots.DisposalRecord, []taxlots.Residual, error) {
	records, residuals, err := p.Declare()
	if err != nil {
		return nil, nil, err
	}
	for _, r := range residuals {
		if r.Type == taxlots.Sell {
			log.Printf("warning: %s", r)
		}
	}
	return records, residuals, nil
}

// printMarkdown prints the markdown, styled when printing to a terminal.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
