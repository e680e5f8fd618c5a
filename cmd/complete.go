package cmd

import (
	"flag"
	"os"

	"github.com/etnz/taxlots/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors of the flag values, by flag name. Flags missing here accept any value.
var predictors = map[string]complete.Predictor{
	"data":   predict.Dirs("*"),
	"tax-id": complete.PredictFunc(taxIDs),
	"i":      predict.Files("*.xml"),
	"o":      predict.Files("*.xml"),
	"config": predict.Files("*.yaml"),
}

// taxIDs predicts the sub folders of the data folder.
func taxIDs(prefix string) []string {
	entries, err := os.ReadDir(*dataDir)
	if err != nil {
		return nil
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids
}

// Completion returns the shell completion of the CLI, from the global flags and
// the flags of every command.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(global),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}
	if topics, err := docs.All(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = nil // no value
			return
		}
		if p, ok := predictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}
