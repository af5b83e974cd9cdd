// Package spec parses and compiles a feature specification: the
// declarative document naming which per-epoch features to extract from
// which channels (SPEC_FULL.md §4.4, spec.md §4.4). It produces the column
// layout (declared feature order, and the final2orig map used to compact
// unused columns after level-2 processing) consumed by feature/extract and
// feature/post.
package spec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/remnrem/luna-core/internal/errs"
)

// Kind enumerates a feature block's computation.
type Kind int

const (
	LogPSD Kind = iota
	RelPSD
	CVPSD
	Bands
	RBands
	VBands
	Slope
	Skew
	Kurtosis
	Mean
	FD
	Hjorth
	PE
	Covar
	Smooth
	Denoise
	Norm
	SVD
	EpochOutlier
)

func (k Kind) String() string {
	switch k {
	case LogPSD:
		return "LOGPSD"
	case RelPSD:
		return "RELPSD"
	case CVPSD:
		return "CVPSD"
	case Bands:
		return "BANDS"
	case RBands:
		return "RBANDS"
	case VBands:
		return "VBANDS"
	case Slope:
		return "SLOPE"
	case Skew:
		return "SKEW"
	case Kurtosis:
		return "KURTOSIS"
	case Mean:
		return "MEAN"
	case FD:
		return "FD"
	case Hjorth:
		return "HJORTH"
	case PE:
		return "PE"
	case Covar:
		return "COVAR"
	case Smooth:
		return "SMOOTH"
	case Denoise:
		return "DENOISE"
	case Norm:
		return "NORM"
	case SVD:
		return "SVD"
	case EpochOutlier:
		return "EPOCH_OUTLIER"
	default:
		return "UNKNOWN"
	}
}

// ParseKind maps a spec line's upper-cased feature-kind token to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOGPSD":
		return LogPSD, nil
	case "RELPSD":
		return RelPSD, nil
	case "CVPSD":
		return CVPSD, nil
	case "BANDS":
		return Bands, nil
	case "RBANDS":
		return RBands, nil
	case "VBANDS":
		return VBands, nil
	case "SLOPE":
		return Slope, nil
	case "SKEW":
		return Skew, nil
	case "KURTOSIS":
		return Kurtosis, nil
	case "MEAN":
		return Mean, nil
	case "FD":
		return FD, nil
	case "HJORTH":
		return Hjorth, nil
	case "PE":
		return PE, nil
	case "COVAR":
		return Covar, nil
	case "SMOOTH":
		return Smooth, nil
	case "DENOISE":
		return Denoise, nil
	case "NORM":
		return Norm, nil
	case "SVD":
		return SVD, nil
	case "EPOCH_OUTLIER":
		return EpochOutlier, nil
	default:
		return 0, fmt.Errorf("unknown feature kind %q", s)
	}
}

// Level reports whether k is a level-1 (single-epoch) or level-2
// (temporal/cross-epoch) feature.
func (k Kind) Level() int {
	switch k {
	case Smooth, Denoise, Norm, SVD, EpochOutlier:
		return 2
	default:
		return 1
	}
}

// Block is one parsed line of a feature specification.
type Block struct {
	Kind    Kind
	Name    string // the block's own label, default Kind.String()
	Channel string // "." for individual-level (COVAR)

	Lwr, Upr   float64
	ZLwr, ZUpr float64
	From, To   int
	HalfWindow int
	Lambda     float64
	Winsor     float64
	NC         int
	File       string
	Th         float64
	SourceBlock string // the "block" option: which earlier block a level-2 op applies to
	Vars       []string
}

// NumColumns returns the output arity of b per the table in spec.md §4.4.
func (b Block) NumColumns() (int, error) {
	switch b.Kind {
	case LogPSD, RelPSD:
		if b.Upr <= b.Lwr {
			return 0, errs.New(errs.ConstraintViolation, "spec: upr must exceed lwr in", b.Kind.String())
		}
		return int((b.Upr-b.Lwr)/0.25) + 1, nil
	case CVPSD:
		if b.Upr <= b.Lwr {
			return 0, errs.New(errs.ConstraintViolation, "spec: upr must exceed lwr in", b.Kind.String())
		}
		return int((b.Upr-b.Lwr)/0.25) + 1, nil
	case Bands, RBands, VBands:
		return 6, nil
	case Slope, Skew, Kurtosis, Mean, FD:
		return 1, nil
	case Hjorth:
		return 3, nil
	case PE:
		if b.To < b.From {
			return 0, errs.New(errs.ConstraintViolation, "spec: PE 'to' must be >= 'from'")
		}
		return b.To - b.From + 1, nil
	case Covar:
		return len(b.Vars), nil
	case EpochOutlier:
		return 0, nil
	case Smooth, Denoise, Norm:
		return -1, nil // same arity as SourceBlock; resolved by Compile
	case SVD:
		return b.NC, nil
	default:
		return 0, fmt.Errorf("spec: unhandled kind %v", b.Kind)
	}
}

// Column names one compiled output column: the block it came from and its
// 0-based position within that block's output.
type Column struct {
	Block    int
	Name     string
	SubIndex int
}

// Spec is a compiled feature specification.
type Spec struct {
	Blocks  []Block
	Columns []Column

	// final2orig maps a retained (compacted) column index to its index in
	// Columns, set by Select.
	final2orig []int
}

// Parse reads a feature specification: one block per non-blank, non-'#'
// line, "KIND key=val key=val ...", matching the option vocabulary of
// spec.md §6 (sig, nc, th, lwr, upr, z-lwr, z-upr, from, to, half-window,
// lambda, winsor, file, block).
func Parse(r io.Reader) (*Spec, error) {
	sc := bufio.NewScanner(r)
	s := &Spec{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := parseLine(line)
		if err != nil {
			return nil, errs.New(errs.MalformedInput, fmt.Sprintf("feature spec line %d", lineNo), err)
		}
		s.Blocks = append(s.Blocks, b)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseLine(line string) (Block, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Block{}, fmt.Errorf("empty spec line")
	}
	kind, err := ParseKind(fields[0])
	if err != nil {
		return Block{}, err
	}
	b := Block{Kind: kind, Name: fields[0], Channel: "."}
	for _, tok := range fields[1:] {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := kv[0], kv[1]
		switch key {
		case "sig":
			b.Channel = val
		case "nc":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Block{}, fmt.Errorf("bad nc=%q: %w", val, err)
			}
			b.NC = n
		case "th":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Block{}, fmt.Errorf("bad th=%q: %w", val, err)
			}
			b.Th = v
		case "lwr":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Block{}, fmt.Errorf("bad lwr=%q: %w", val, err)
			}
			b.Lwr = v
		case "upr":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Block{}, fmt.Errorf("bad upr=%q: %w", val, err)
			}
			b.Upr = v
		case "z-lwr":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Block{}, fmt.Errorf("bad z-lwr=%q: %w", val, err)
			}
			b.ZLwr = v
		case "z-upr":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Block{}, fmt.Errorf("bad z-upr=%q: %w", val, err)
			}
			b.ZUpr = v
		case "from":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Block{}, fmt.Errorf("bad from=%q: %w", val, err)
			}
			b.From = n
		case "to":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Block{}, fmt.Errorf("bad to=%q: %w", val, err)
			}
			b.To = n
		case "half-window":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Block{}, fmt.Errorf("bad half-window=%q: %w", val, err)
			}
			b.HalfWindow = n
		case "lambda":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Block{}, fmt.Errorf("bad lambda=%q: %w", val, err)
			}
			b.Lambda = v
		case "winsor":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Block{}, fmt.Errorf("bad winsor=%q: %w", val, err)
			}
			b.Winsor = v
		case "file":
			b.File = val
		case "block":
			b.SourceBlock = val
		case "var", "vars":
			b.Vars = strings.Split(val, ",")
		}
	}
	return b, nil
}

// Compile assigns column names/positions to every level-1 block, in
// declaration order, resolving level-2 block arities against their
// SourceBlock. It must be called once, after Parse, before extraction.
func (s *Spec) Compile() error {
	s.Columns = nil
	arity := map[string]int{} // block name -> its level-1 arity
	for bi, b := range s.Blocks {
		n, err := b.NumColumns()
		if err != nil {
			return err
		}
		if n < 0 {
			src, ok := arity[b.SourceBlock]
			if !ok {
				return errs.New(errs.ConstraintViolation, "spec:", b.Kind.String(), "references unknown block", b.SourceBlock)
			}
			n = src
		}
		if b.Kind.Level() == 1 {
			arity[b.Name] = n
		}
		if b.Kind == EpochOutlier {
			continue // flags rows; emits no columns
		}
		for i := 0; i < n; i++ {
			s.Columns = append(s.Columns, Column{Block: bi, Name: columnName(b, i), SubIndex: i})
		}
	}
	s.final2orig = identity(len(s.Columns))
	return nil
}

func columnName(b Block, i int) string {
	base := b.Name
	if b.Channel != "." && b.Channel != "" {
		base = base + "_" + b.Channel
	}
	switch b.Kind {
	case Bands, RBands, VBands:
		names := []string{"SLOW", "DELTA", "THETA", "ALPHA", "SIGMA", "BETA"}
		return base + "_" + names[i%len(names)]
	case Hjorth:
		names := []string{"ACTIVITY", "MOBILITY", "COMPLEXITY"}
		return base + "_" + names[i%len(names)]
	case Covar:
		if i < len(b.Vars) {
			return base + "_" + b.Vars[i]
		}
	}
	return fmt.Sprintf("%s_%d", base, i)
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Select compacts the column layout to the names in keep (or, if keep is
// empty, to every column not named in drop), producing final2orig: the
// ordered list of original Columns indices retained (spec.md §4.4's
// "shrinking X1 to nf columns").
func (s *Spec) Select(keep, drop []string) []int {
	if len(keep) == 0 && len(drop) == 0 {
		return s.final2orig
	}
	keepSet := toSet(keep)
	dropSet := toSet(drop)
	var out []int
	for i, c := range s.Columns {
		if len(keepSet) > 0 && !keepSet[c.Name] {
			continue
		}
		if dropSet[c.Name] {
			continue
		}
		out = append(out, i)
	}
	s.final2orig = out
	return out
}

func toSet(names []string) map[string]bool {
	m := map[string]bool{}
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Final2Orig returns the most recently computed compaction map.
func (s *Spec) Final2Orig() []int { return s.final2orig }

// NumColumns returns the number of declared (uncompacted) columns.
func (s *Spec) NumColumns() int { return len(s.Columns) }
