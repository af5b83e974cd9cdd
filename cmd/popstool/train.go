package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"

	"github.com/remnrem/luna-core/config"
	fspec "github.com/remnrem/luna-core/feature/spec"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/lgbm"
	"github.com/remnrem/luna-core/pops"
)

// runTrain implements original_source/pops/pops.cpp's make_level2_library
// + fit_model: load a level-1 corpus, derive level-2 features, fit a
// booster over it, and save the model (and, if the spec declares an
// SVD block, its projection basis alongside).
func runTrain(dataPath, modelPath, rangesStatsPath string, sp *fspec.Spec, o *config.Options, order []pops.Stage) error {
	ds, err := readCorpus(dataPath, sp)
	if err != nil {
		return err
	}
	log.Printf("loaded %d epochs across %d individuals", ds.X.NRows(), len(ds.Blocks))

	full := expandToFull(ds.X, sp)
	if err := applyLevel2(sp, full, ds.Blocks, true); err != nil {
		return err
	}

	if o.Ranges != "" {
		refCols := strings.Split(o.Ranges, ",")
		for i := range refCols {
			refCols[i] = strings.TrimSpace(refCols[i])
		}
		stats := computeRangeStats(full, refCols)
		if rangesStatsPath != "" {
			if err := saveRangeStats(rangesStatsPath, stats); err != nil {
				return err
			}
		}
	}

	sel := sp.Select(stringKeys(o.IncVars), stringKeys(o.ExcVars))
	trainX := full.SelectColumns(sel)

	stages := make([]pops.Stage, len(ds.Stage))
	dropped := 0
	for i, raw := range ds.Stage {
		var ok bool
		if len(order) == 3 {
			stages[i], ok = pops.Stage(raw).Collapse3()
		} else {
			stages[i], ok = pops.Stage(raw).Collapse5()
		}
		if !ok {
			stages[i] = pops.Unknown
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("dropping %d epochs with no %d-class target", dropped, len(order))
	}

	params, err := lgbmConfig(o.Config, lgbm.DefaultPOPSConfig(len(order)))
	if err != nil {
		return err
	}

	train, dropped, err := pops.NewTrainingData(trainX, stages, order, params)
	if err != nil {
		return err
	}
	if dropped > 0 {
		log.Printf("%d epochs dropped for having no %d-class target", dropped, len(order))
	}

	if o.WeightFile != "" || o.BlockWeightFile != "" {
		perObservation, err := readWeightFile(o.WeightFile, full.NRows())
		if err != nil {
			return err
		}
		blockWeights, err := readWeightFile(o.BlockWeightFile, len(ds.Blocks))
		if err != nil {
			return err
		}
		if err := train.AttachWeights(stages, nil, perObservation, ds.Blocks, blockWeights); err != nil {
			return err
		}
		log.Printf("attached per-observation/per-block training weights")
	}

	var validation *lgbm.Dataset
	if o.ValidationFile != "" {
		valDS, err := readCorpus(o.ValidationFile, sp)
		if err != nil {
			return err
		}
		valFull := expandToFull(valDS.X, sp)
		if err := applyLevel2(sp, valFull, valDS.Blocks, false); err != nil {
			return err
		}
		valX := valFull.SelectColumns(sel)
		valStages := make([]pops.Stage, len(valDS.Stage))
		for i, raw := range valDS.Stage {
			if len(order) == 3 {
				valStages[i], _ = pops.Stage(raw).Collapse3()
			} else {
				valStages[i], _ = pops.Stage(raw).Collapse5()
			}
		}
		validation, err = pops.AttachValidation(valX, valStages, order, params)
		if err != nil {
			return err
		}
		log.Printf("attached validation set: %d epochs", valX.NRows())
	}

	model, err := pops.TrainDataset(train, validation, order, o.Iterations, params)
	if err != nil {
		return err
	}
	log.Printf("trained %d-class model over %d boosting iterations", len(order), model.Iterations)

	return model.Save(modelPath)
}

// readWeightFile loads one float64 per line from path, erroring if the
// count disagrees with want. An empty path returns nil (no weighting).
func readWeightFile(path string, want int) ([]float64, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) != want {
		return nil, errs.New(errs.ConstraintViolation, "popstool:", path, "has", len(out), "weights, want", want)
	}
	return out, nil
}
