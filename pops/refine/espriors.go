package refine

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/pops"
)

// epochDurationMins and nonNREMAllowanceMin are hard-coded in
// original_source/pops/espriors.cpp's apply_espriors (it assumes 30 s
// epochs and a fixed 5-minute non-NREM allowance when scanning
// backward for "recent NREM").
const (
	epochDurationMins   = 0.5
	nonNREMAllowanceMin = 5.0
	esBinWidth          = 20.0
	esBinCap            = 360.0
	nrBinWidth          = 10.0
	nrBinCap            = 60.0
)

// esKey identifies one (elapsed-sleep-bin, recent-NREM-bin) row.
type esKey struct{ esMin, nrMin int }

// ESPriors is the elapsed-sleep/recent-NREM prior table: P(ES, recent
// NREM | stage), one column per pops.ClassOrder5 stage, each column
// normalized to sum to 1 across bins (spec.md §6's "Elapsed-sleep prior
// file" format).
type ESPriors struct {
	rows map[esKey][5]float64 // column order: W,R,N1,N2,N3 (pops.ClassOrder5)
}

// ParseESPriors reads the tab/space-delimited table with header
// "ES RECENT_NR PP(N1) PP(N2) PP(N3) PP(R) PP(W)", normalizing each
// probability column to sum to 1 across rows, matching
// original_source/pops/espriors.cpp's loader.
func ParseESPriors(r io.Reader) (*ESPriors, error) {
	sc := bufio.NewScanner(r)
	var esMin, nrMin []int
	var n1, n2, n3, rr, w []float64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 7 {
			return nil, errs.New(errs.MalformedInput, "refine: es-priors row must have 7 fields")
		}
		if fields[0] == "ES" {
			continue // header
		}
		vals := make([]float64, 7)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errs.New(errs.MalformedInput, "refine: bad es-priors value", f)
			}
			vals[i] = v
		}
		esMin = append(esMin, int(vals[0]))
		nrMin = append(nrMin, int(vals[1]))
		n1 = append(n1, vals[2])
		n2 = append(n2, vals[3])
		n3 = append(n3, vals[4])
		rr = append(rr, vals[5])
		w = append(w, vals[6])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(esMin) == 0 {
		return nil, errs.New(errs.MalformedInput, "refine: es-priors file has no data rows")
	}
	normalize(n1)
	normalize(n2)
	normalize(n3)
	normalize(rr)
	normalize(w)

	p := &ESPriors{rows: make(map[esKey][5]float64, len(esMin))}
	for i := range esMin {
		// column order W,R,N1,N2,N3 to match pops.ClassOrder5.
		p.rows[esKey{esMin[i], nrMin[i]}] = [5]float64{w[i], rr[i], n1[i], n2[i], n3[i]}
	}
	return p, nil
}

func normalize(xs []float64) {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	if sum <= 0 {
		return
	}
	for i := range xs {
		xs[i] /= sum
	}
}

// Apply revises a 5-class posterior matrix given the sequence of hard
// stage calls used to derive elapsed sleep and recent NREM, multiplying
// each row by the matching prior bin and renormalizing. Grounded on
// original_source/pops/espriors.cpp's apply_espriors, except its
// posterior update ("revised(i,c) *= revised(i,c) * prior(i,c)", which
// squares the prior posterior before multiplying) is treated as a
// transcription bug rather than intended behavior — spec.md doesn't fix
// an exact update formula, only that refinement "blends model output
// with domain priors", so this uses the direct Bayesian form
// posterior *= prior, then renormalizes.
func (p *ESPriors) Apply(posteriors *mat.Dense, stages []pops.Stage) error {
	nr, nc := posteriors.Dims()
	if nc != 5 {
		return errs.New(errs.ConstraintViolation, "refine: ES priors require a 5-class posterior matrix")
	}
	if len(stages) != nr {
		return errs.New(errs.ConstraintViolation, "refine: stages length", len(stages), "!= posterior rows", nr)
	}

	elapsedSleep := 0.0
	for i := 0; i < nr; i++ {
		esMin := esBin(elapsedSleep) * esBinWidth
		nrMin := nrBin(recentNREMMinutes(stages, i)) * nrBinWidth
		prior, ok := p.rows[esKey{int(esMin), int(nrMin)}]
		if !ok {
			return errs.New(errs.DegenerateNumerics, "refine: no ES-prior bin for", esMin, nrMin)
		}
		row := posteriors.RawRowView(i)
		for c := 0; c < 5; c++ {
			row[c] *= prior[c]
		}
		renormalizeRow(row)

		if stages[i] != pops.Wake {
			elapsedSleep += epochDurationMins
		}
	}
	return nil
}

func esBin(mins float64) float64 {
	if mins > esBinCap {
		mins = esBinCap
	}
	return math.Floor(mins / esBinWidth)
}

func nrBin(mins float64) float64 {
	if mins > nrBinCap {
		mins = nrBinCap
	}
	return math.Floor(mins / nrBinWidth)
}

// recentNREMMinutes scans backward from epoch i, accumulating NREM
// epoch duration until the cumulative run of non-NREM epochs since the
// first NREM epoch exceeds nonNREMAllowanceMin, matching the original's
// backward scan.
func recentNREMMinutes(stages []pops.Stage, i int) float64 {
	allowance := int(nonNREMAllowanceMin / epochDurationMins)
	firstNREM := false
	nremEpochs := 0
	nonNREM := 0
	for j := i - 1; j >= 0; j-- {
		isNREM := stages[j] == pops.N1 || stages[j] == pops.N2 || stages[j] == pops.N3
		if isNREM {
			firstNREM = true
			nremEpochs++
		} else if firstNREM {
			nonNREM++
		}
		if nonNREM > allowance {
			break
		}
	}
	return float64(nremEpochs) * epochDurationMins
}

func renormalizeRow(row []float64) {
	sum := 0.0
	for _, v := range row {
		sum += v
	}
	if sum < 1e-10 {
		uniform := 1.0 / float64(len(row))
		for c := range row {
			row[c] = uniform
		}
		return
	}
	for c := range row {
		row[c] /= sum
	}
}
