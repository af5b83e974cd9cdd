// Command popstool drives one POPS train or predict run end to end: load
// a binary feature corpus, derive level-2 features, fit or apply a
// gradient-boosted-tree stager, and (on predict) run the elapsed-sleep
// prior, SOAP, and channel-equivalence refinements before emitting a
// stratified report. Grounded on original_source/pops/pops.cpp and
// indiv.cpp's train/predict drivers, and structured in the style of the
// teacher's cmd/bio-pamtool subcommand dispatch.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/remnrem/luna-core/annot"
	"github.com/remnrem/luna-core/annot/ioannot"
	"github.com/remnrem/luna-core/config"
	fspec "github.com/remnrem/luna-core/feature/spec"
	"github.com/remnrem/luna-core/pops"
	"github.com/remnrem/luna-core/sink"
)

func classOrder(n int) ([]pops.Stage, error) {
	switch n {
	case 5:
		return pops.ClassOrder5, nil
	case 3:
		return pops.ClassOrder3, nil
	default:
		return nil, fmt.Errorf("classes must be 3 or 5, got %d", n)
	}
}

func loadSpec(path string) (*fspec.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sp, err := fspec.Parse(f)
	if err != nil {
		return nil, err
	}
	if err := sp.Compile(); err != nil {
		return nil, err
	}
	return sp, nil
}

func newCmdTrain() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "train",
		Short:    "Fit a POPS staging model from a binary feature corpus",
		ArgsName: "datafile",
	}
	features := cmd.Flags.String("features", "", "Feature specification file")
	model := cmd.Flags.String("model", "", "Output model file")
	opts := cmd.Flags.String("options", "", "POPS option tokens, e.g. \"iter=200 ranges=EEG_MEAN config=.\"")
	classes := cmd.Flags.Int("classes", 5, "Number of staging classes (5 or 3)")
	rangesStats := cmd.Flags.String("ranges-stats", "", "Where to save computed feature-range-gate statistics")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("train takes one datafile argument, got %v", argv)
		}
		if *features == "" || *model == "" {
			return fmt.Errorf("-features and -model are required")
		}
		order, err := classOrder(*classes)
		if err != nil {
			return err
		}
		sp, err := loadSpec(*features)
		if err != nil {
			return err
		}
		o, err := config.Parse(strings.Fields(*opts))
		if err != nil {
			return err
		}
		return runTrain(argv[0], *model, *rangesStats, sp, o, order)
	})
	return cmd
}

func newCmdPredict() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "predict",
		Short:    "Stage a recording (or a set of channel equivalents) with a trained POPS model",
		ArgsName: "datafile [equivalent-datafile ...]",
	}
	features := cmd.Flags.String("features", "", "Feature specification file")
	model := cmd.Flags.String("model", "", "Input model file")
	opts := cmd.Flags.String("options", "", "POPS option tokens, e.g. \"soap es-priors=priors.txt conf=0.5 geo\"")
	classes := cmd.Flags.Int("classes", 5, "Number of staging classes (5 or 3), must match the trained model")
	rangesStats := cmd.Flags.String("ranges-stats", "", "Feature-range-gate statistics saved during training")
	outPath := cmd.Flags.String("out", "", "Output report path (default stdout)")
	annotOut := cmd.Flags.String("annot-out", "", "Write a text annotation dump of the predicted stages here")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("predict takes at least one datafile argument")
		}
		if *features == "" || *model == "" {
			return fmt.Errorf("-features and -model are required")
		}
		order, err := classOrder(*classes)
		if err != nil {
			return err
		}
		sp, err := loadSpec(*features)
		if err != nil {
			return err
		}
		o, err := config.Parse(strings.Fields(*opts))
		if err != nil {
			return err
		}

		w := os.Stdout
		if *outPath != "" {
			f, err := os.Create(*outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		out := sink.NewTabWriter(w)
		store := annot.NewStore(annot.Options{})

		if err := runPredict(argv, *model, *rangesStats, sp, o, order, out, store); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
		if *annotOut != "" {
			f, err := os.Create(*annotOut)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := ioannot.WriteTabular(f, store, ioannot.DefaultWriteOptions()); err != nil {
				return err
			}
		}
		return nil
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:  "popstool",
		Short: "Train and run the POPS gradient-boosted-tree sleep stager",
		Children: []*cmdline.Command{
			newCmdTrain(),
			newCmdPredict(),
		},
	})
}
