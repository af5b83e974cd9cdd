// Package pops wraps the gradient-boosted-tree sleep stager: attach or
// train a model, predict per-epoch posterior probabilities, and compute
// SHAP attributions (spec.md §3 module 8, "POPS stager"). Grounded on
// original_source/pops/pops.h's pops_t and pops_stage_t, and on
// original_source/pops/pops.cpp's training/prediction driver.
package pops

import "strings"

// Stage is one of Luna's closed set of sleep/scoring labels (spec.md
// §2's Stage type). The five-class POPS model predicts over
// {W,R,N1,N2,N3}; the three-class model collapses N1/N2/N3 into NR.
type Stage int

const (
	Wake Stage = iota
	REM
	N1
	N2
	N3
	N4
	Movement
	LightsOn
	Unscored
	Unknown
	Gap
)

func (s Stage) String() string {
	switch s {
	case Wake:
		return "W"
	case REM:
		return "R"
	case N1:
		return "N1"
	case N2:
		return "N2"
	case N3:
		return "N3"
	case N4:
		return "N4"
	case Movement:
		return "M"
	case LightsOn:
		return "L"
	case Unscored:
		return "U"
	case Gap:
		return "GAP"
	default:
		return "?"
	}
}

// ParseStage maps a label token (case-insensitive) back to a Stage.
func ParseStage(s string) Stage {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "W", "WAKE":
		return Wake
	case "R", "REM":
		return REM
	case "N1":
		return N1
	case "N2":
		return N2
	case "N3":
		return N3
	case "N4":
		return N4
	case "M", "MOVEMENT":
		return Movement
	case "L", "LIGHTS-ON", "LIGHTSON":
		return LightsOn
	case "U", "UNSCORED":
		return Unscored
	case "GAP":
		return Gap
	default:
		return Unknown
	}
}

// Collapse5 maps any stage onto the five POPS training classes
// (W,R,N1,N2,N3), folding N4 into N3 (spec.md §2: "NREM4 collapses to
// N3 for the 5-class model"). Non-sleep labels (M, L, U, GAP, Unknown)
// have no 5-class target and the second return value is false.
func (s Stage) Collapse5() (Stage, bool) {
	switch s {
	case Wake, REM, N1, N2:
		return s, true
	case N3, N4:
		return N3, true
	default:
		return Unknown, false
	}
}

// Collapse3 maps any stage onto the three POPS training classes
// (W,R,NR), folding N1/N2/N3/N4 into a single NR label (spec.md §2:
// "N1+N2+N3 collapse to a single NR label for the 3-class model").
// ClassOrder3's NR id is reused here so Collapse3's output lines up
// directly with the 3-class model's label ids.
func (s Stage) Collapse3() (Stage, bool) {
	switch s {
	case Wake, REM:
		return s, true
	case N1, N2, N3, N4:
		return N1, true // N1 doubles as the NR class id in 3-class mode
	default:
		return Unknown, false
	}
}

// ClassOrder5 is the canonical label-id ordering the 5-class model
// trains and predicts over, matching original_source/pops/pops.h's
// pops_stage_t enum (POPS_WAKE=0, POPS_REM=1, POPS_N1=2, POPS_N2=3,
// POPS_N3=4).
var ClassOrder5 = []Stage{Wake, REM, N1, N2, N3}

// ClassOrder3 is the canonical label-id ordering the 3-class model
// trains and predicts over: W=0, R=1, NR=2 (Collapse3's N1 standing in
// for NR).
var ClassOrder3 = []Stage{Wake, REM, N1}

// ClassID returns s's 0-based position in order, or -1 if absent.
func ClassID(order []Stage, s Stage) int {
	for i, c := range order {
		if c == s {
			return i
		}
	}
	return -1
}
