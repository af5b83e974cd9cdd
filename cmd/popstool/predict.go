package main

import (
	"os"

	"github.com/grailbio/base/log"

	"github.com/remnrem/luna-core/annot"
	"github.com/remnrem/luna-core/config"
	fspec "github.com/remnrem/luna-core/feature/spec"
	"github.com/remnrem/luna-core/pops"
	"github.com/remnrem/luna-core/pops/refine"
	"github.com/remnrem/luna-core/sink"
	"github.com/remnrem/luna-core/tick"
)

const epochSeconds = 30.0

// runPredict implements original_source/pops/indiv.cpp's predict-apply
// SOAP-apply es-priors-summarize driver for one or more channel
// equivalents of a recording, emitting a stratified table of per-epoch
// posteriors and hard calls plus an annot.Store carrying the same
// result as scored events.
func runPredict(dataPaths []string, modelPath, rangesStatsPath string, sp *fspec.Spec, o *config.Options, order []pops.Stage, out *sink.TabWriter, store *annot.Store) error {
	model, err := pops.Load(modelPath, order)
	if err != nil {
		return err
	}

	var rangeGate *refine.RangeGate
	if o.Ranges != "" && rangesStatsPath != "" {
		stats, err := loadRangeStats(rangesStatsPath)
		if err != nil {
			return err
		}
		rangeGate, err = refine.NewRangeGate(stats, o.RangesTh, o.RangesProp)
		if err != nil {
			return err
		}
	}

	var esPriors *refine.ESPriors
	if o.ESPriors != "" {
		f, err := os.Open(o.ESPriors)
		if err != nil {
			return err
		}
		esPriors, err = refine.ParseESPriors(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	var solutions []refine.Solution
	for _, path := range dataPaths {
		sol, err := predictOne(path, model, sp, o, order, rangeGate, esPriors)
		if err != nil {
			return err
		}
		solutions = append(solutions, *sol)
	}

	final := solutions[0]
	if len(solutions) > 1 {
		combined, err := refine.Combine(solutions, o.CombineMethod(), o.ConfThreshold)
		if err != nil {
			return err
		}
		final = *combined
		log.Printf("combined %d equivalence channels by %v", len(solutions), o.CombineMethod())
	}

	writeSolution(out, store, final)
	return nil
}

// predictOne runs the model and the optional refine passes over a
// single corpus file (one channel's worth of level-1 features for
// potentially several individuals), returning the per-epoch solution.
func predictOne(path string, model *pops.Model, sp *fspec.Spec, o *config.Options, order []pops.Stage, rangeGate *refine.RangeGate, esPriors *refine.ESPriors) (*refine.Solution, error) {
	ds, err := readCorpus(path, sp)
	if err != nil {
		return nil, err
	}

	full := expandToFull(ds.X, sp)
	if err := applyLevel2(sp, full, ds.Blocks, false); err != nil {
		return nil, err
	}
	if rangeGate != nil {
		if masked := rangeGate.Apply(full); len(masked) > 0 {
			log.Printf("%s: range-gate masked %d columns: %v", path, len(masked), masked)
		}
	}

	sel := sp.Select(stringKeys(o.IncVars), stringKeys(o.ExcVars))
	testX := full.SelectColumns(sel)

	posteriors, err := model.Predict(testX)
	if err != nil {
		return nil, err
	}

	if o.SOAPEnabled {
		result, err := refine.SOAP(testX.Data, posteriors.P, order, refine.SOAPOptions{
			NC:        defaultSOAPComponents(testX.NCols()),
			Threshold: o.SOAPThreshold,
			MinCount:  5,
		})
		if err != nil {
			log.Printf("%s: SOAP skipped: %v", path, err)
		} else {
			posteriors.P = result.Posteriors
			log.Printf("%s: SOAP revised %d of %d epochs", path, len(result.Changed), testX.NRows())
		}
	}

	if esPriors != nil && len(order) == 5 {
		hard := posteriors.Hard()
		if err := esPriors.Apply(posteriors.P, hard); err != nil {
			return nil, err
		}
	}

	logKappaIfManualStagesPresent(path, ds.Stage, posteriors.Hard(), order)

	return &refine.Solution{Epochs: ds.Epoch, Posteriors: posteriors.P, Order: order}, nil
}

// logKappaIfManualStagesPresent reports agreement against the corpus's
// own stage column when it carries real manual labels rather than
// placeholder Unknown/Unscored epochs, matching
// original_source/pops/indiv.cpp's "stats.kappa"/"stats3.kappa" summary
// line (original_source/pops/eval-stages.cpp's evaluation report).
func logKappaIfManualStagesPresent(path string, rawStages []int, predicted []pops.Stage, order []pops.Stage) {
	manual := make([]pops.Stage, len(rawStages))
	known := 0
	for i, raw := range rawStages {
		var ok bool
		if len(order) == 3 {
			manual[i], ok = pops.Stage(raw).Collapse3()
		} else {
			manual[i], ok = pops.Stage(raw).Collapse5()
		}
		if ok {
			known++
		}
	}
	if known < len(manual)/2 {
		return
	}
	report, err := pops.Evaluate(predicted, manual, order)
	if err != nil {
		log.Printf("%s: kappa evaluation skipped: %v", path, err)
		return
	}
	log.Printf("%s: kappa = %.3f over %d/%d manually scored epochs", path, report.Kappa, known, len(manual))
}

func defaultSOAPComponents(nf int) int {
	if nf < 10 {
		return nf
	}
	return 10
}

func writeSolution(out *sink.TabWriter, store *annot.Store, sol refine.Solution) {
	nr, _ := sol.Posteriors.Dims()
	for r := 0; r < nr; r++ {
		epoch := sol.Epochs[r]
		row := sol.Posteriors.RawRowView(r)
		best, bestV := 0, -1.0
		for c, v := range row {
			if v > bestV {
				bestV, best = v, c
			}
		}
		hard := sol.Order[best]

		out.Epoch(epoch)
		for c, st := range sol.Order {
			out.Value("PP_"+st.String(), row[c])
		}
		out.Value("PRED", hard.String())
		out.Value("CONF", bestV)
		out.Unepoch()

		iv := tick.NewInterval(tick.Seconds(float64(epoch)*epochSeconds), tick.Seconds(float64(epoch+1)*epochSeconds))
		inst, err := store.Add("POPS_STAGE", "", iv, "")
		if err != nil {
			continue
		}
		inst.Meta["stage"] = annot.NewText(hard.String())
		inst.Meta["conf"] = annot.NewNum(bestV)
	}
}
