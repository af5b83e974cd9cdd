// Package config parses POPS run options: the key=value vocabulary a
// caller uses to drive one train/test/refine run, enumerated in
// spec.md §6 (`train`, `test`, `model`, `config`, `iter`, `ranges`,
// `ranges-th`, `ranges-prop`, `es-priors`, `soap`, `equiv`, `conf`,
// `mean`, `geo`, `inc-vars`, `exc-vars`, `SHAP`, `epoch-SHAP`,
// `verbose`). Grounded on original_source/pops/options.cpp's
// pops_opt_t::set_options, which reads the same key set out of a
// param_t.
package config

import (
	"strconv"
	"strings"

	"github.com/remnrem/luna-core/internal/errs"
)

// Params is an unordered key=value option bag, the Go analog of the
// original's param_t: a key may be present with no value (a boolean
// flag), present with a value, or absent.
type Params map[string]string

// ParseParams splits "key=value" / bare "key" tokens the way Luna's
// command files do, one token per field.
func ParseParams(tokens []string) Params {
	p := make(Params, len(tokens))
	for _, tok := range tokens {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) == 2 {
			p[kv[0]] = kv[1]
		} else {
			p[kv[0]] = ""
		}
	}
	return p
}

func (p Params) has(key string) bool      { _, ok := p[key]; return ok }
func (p Params) value(key string) string  { return p[key] }
func (p Params) empty(key string) bool    { v, ok := p[key]; return ok && v == "" }

func (p Params) float(key string, def float64) (float64, error) {
	if !p.has(key) {
		return def, nil
	}
	v, err := strconv.ParseFloat(p.value(key), 64)
	if err != nil {
		return 0, errs.New(errs.MalformedInput, "config: bad", key, "=", p.value(key))
	}
	return v, nil
}

func (p Params) int(key string, def int) (int, error) {
	if !p.has(key) {
		return def, nil
	}
	v, err := strconv.Atoi(p.value(key))
	if err != nil {
		return 0, errs.New(errs.MalformedInput, "config: bad", key, "=", p.value(key))
	}
	return v, nil
}

func (p Params) set(key string) map[string]bool {
	if !p.has(key) {
		return nil
	}
	out := map[string]bool{}
	for _, v := range strings.Split(p.value(key), ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out[v] = true
		}
	}
	return out
}

// EquivMethod is the consensus method for channel-equivalence combining
// (spec.md §4.7's "Equivalence combining").
type EquivMethod int

const (
	MostConfident EquivMethod = iota
	GeometricMean
	ConfidenceWeightedMean
)

// Options is one resolved POPS run configuration: every option named in
// spec.md §6, defaulted the way the original's set_options defaults
// them.
type Options struct {
	// Mode
	Train bool   // this run trains a model rather than predicting
	Test  string // path to a test/predict target, if any

	// Model/config artifacts
	Model  string // saved booster file
	Config string // LightGBM parameter file

	// Training
	Iterations int

	// Weighting and validation (spec.md §7's "attach a validation
	// dataset" and "multiplicative composition of label-level weights,
	// per-observation weight files, and per-individual block weights")
	WeightFile      string // per-observation weight, one float per corpus epoch in file order
	BlockWeightFile string // per-individual block weight, one float per corpus block in file order
	ValidationFile  string // held-out corpus used to build a validation lgbm.Dataset

	// Feature-range gate (spec.md §4.7 "Feature-range gate")
	Ranges      string
	RangesTh    float64
	RangesProp  float64

	// Elapsed-sleep priors
	ESPriors string

	// SOAP refinement; SOAPEnabled distinguishes "soap" absent from
	// "soap" present with no value (which defaults the threshold below),
	// matching the original's param.has/param.empty pairing.
	SOAPEnabled   bool
	SOAPThreshold float64

	// Channel equivalence
	Equiv []string

	// Equivalence-combination parameters
	ConfThreshold float64     // "conf": minimum confidence for geometric-mean inclusion
	Mean          bool        // "mean": use confidence-weighted arithmetic mean
	Geo           bool        // "geo": use geometric mean

	IncVars map[string]bool
	ExcVars map[string]bool

	SHAP      bool
	EpochSHAP bool
	Verbose   bool
}

// Default values from original_source/pops/options.cpp.
const (
	defaultRangesTh   = 4.0
	defaultRangesProp = 0.33
	defaultSOAPThresh = 0.5
)

// Parse resolves Options from a token list (e.g. split from a command
// file's option line). Unrecognized keys are ignored, matching the
// original's tolerant param_t (keys belonging to other modules coexist
// in the same bag).
func Parse(tokens []string) (*Options, error) {
	return FromParams(ParseParams(tokens))
}

// FromParams resolves Options from an already-parsed Params bag.
func FromParams(p Params) (*Options, error) {
	o := &Options{}
	o.Train = p.has("train")
	o.Test = p.value("test")
	o.Model = p.value("model")
	o.Config = p.value("config")

	var err error
	if o.Iterations, err = p.int("iter", 100); err != nil {
		return nil, err
	}

	o.Ranges = p.value("ranges")
	if o.RangesTh, err = p.float("ranges-th", defaultRangesTh); err != nil {
		return nil, err
	}
	if o.RangesTh < 0 {
		return nil, errs.New(errs.ConstraintViolation, "config: ranges-th should be positive")
	}
	if o.RangesProp, err = p.float("ranges-prop", defaultRangesProp); err != nil {
		return nil, err
	}
	if o.RangesProp < 0 || o.RangesProp > 1 {
		return nil, errs.New(errs.ConstraintViolation, "config: ranges-prop should be 0-1")
	}

	o.WeightFile = p.value("weights")
	o.BlockWeightFile = p.value("block-weights")
	o.ValidationFile = p.value("validation")

	o.ESPriors = p.value("es-priors")

	o.SOAPEnabled = p.has("soap")
	if p.empty("soap") {
		o.SOAPThreshold = defaultSOAPThresh
	} else if o.SOAPEnabled {
		if o.SOAPThreshold, err = p.float("soap", defaultSOAPThresh); err != nil {
			return nil, err
		}
	}

	if p.has("equiv") {
		o.Equiv = splitList(p.value("equiv"))
	}

	if o.ConfThreshold, err = p.float("conf", defaultSOAPThresh); err != nil {
		return nil, err
	}
	o.Mean = p.has("mean")
	o.Geo = p.has("geo")
	if o.Mean && o.Geo {
		return nil, errs.New(errs.ConstraintViolation, "config: mean and geo are mutually exclusive equivalence-combination methods")
	}

	o.IncVars = p.set("inc-vars")
	o.ExcVars = p.set("exc-vars")
	if len(o.IncVars) > 0 && len(o.ExcVars) > 0 {
		return nil, errs.New(errs.ConstraintViolation, "config: inc-vars and exc-vars are mutually exclusive")
	}

	o.SHAP = p.has("SHAP")
	o.EpochSHAP = p.has("epoch-SHAP")
	o.Verbose = p.has("verbose")

	return o, nil
}

// CombineMethod resolves the equivalence-consensus method selected by
// Mean/Geo, defaulting to most-confident (spec.md §4.7).
func (o *Options) CombineMethod() EquivMethod {
	switch {
	case o.Geo:
		return GeometricMean
	case o.Mean:
		return ConfidenceWeightedMean
	default:
		return MostConfident
	}
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
