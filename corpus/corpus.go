// Package corpus implements the append-only binary training-corpus
// format of spec.md §4.9/§6: one block per individual, each holding that
// individual's epoch indices, sleep-stage labels, and level-1 feature
// rows. Concatenating two well-formed corpus files produces a file the
// reader treats as the union of both individuals' blocks.
package corpus

import (
	"encoding/binary"
	"io"

	"github.com/remnrem/luna-core/feature"
	"github.com/remnrem/luna-core/feature/post"
	"github.com/remnrem/luna-core/internal/errs"
)

// WriteBlock appends one individual's epochs to w: a length-prefixed id,
// epoch count, feature count, then per epoch (epoch index, stage, that
// row's nf features) — the exact binary layout of
// original_source/pops/io.cpp's save1. Feature identities are not stored
// in the file; the caller and every reader share the same feature
// specification (feature/spec.Spec) out of band, the same contract the
// original enforces by checking nf against the active spec at load time.
func WriteBlock(w io.Writer, id string, epochs, stages []int, x *feature.Matrix) error {
	if len(epochs) != len(stages) || len(epochs) != x.NRows() {
		return errs.New(errs.ConstraintViolation, "corpus: epochs/stages/matrix row counts disagree")
	}
	if len(id) > 255 {
		return errs.New(errs.ConstraintViolation, "corpus: id", id, "exceeds 255 bytes")
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(len(id))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, id); err != nil {
		return err
	}
	nf := x.NCols()
	if err := binary.Write(w, binary.LittleEndian, int32(len(epochs))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(nf)); err != nil {
		return err
	}
	for i := range epochs {
		if err := binary.Write(w, binary.LittleEndian, int32(epochs[i])); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(stages[i])); err != nil {
			return err
		}
		for c := 0; c < nf; c++ {
			if err := binary.Write(w, binary.LittleEndian, x.Data.At(i, c)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dataset is every block of a corpus file loaded into one concatenated
// feature.Matrix, with per-row stage/epoch labels and per-individual
// block boundaries for operations (SVD centering, smoothing) that must
// respect individual boundaries.
type Dataset struct {
	X      *feature.Matrix
	Stage  []int
	Epoch  []int
	IDs    []string
	Blocks []post.Block
}

// Read loads every block of r into a Dataset. columns names the nf
// feature columns (from the feature specification shared with the
// writer); every block's on-disk feature count must equal len(columns).
// The first pass counts total epochs and checks the shared-nf invariant
// (spec.md §6's "all blocks must share nFeatures"); the second allocates
// and loads, recording per-block [Start, Stop] row ranges.
func Read(r io.ReadSeeker, columns []string) (*Dataset, error) {
	nf := len(columns)
	total := 0
	for {
		id, err := readID(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ne, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		blockNF, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		if int(blockNF) != nf {
			return nil, errs.New(errs.ConstraintViolation, "corpus: block", id, "has", blockNF, "features, want", nf)
		}
		total += int(ne)
		skip := int64(ne) * (8 + int64(nf)*8)
		if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
			return nil, err
		}
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	ds := &Dataset{
		X:     feature.NewMatrix(total, columns),
		Stage: make([]int, total),
		Epoch: make([]int, total),
	}
	row := 0
	for {
		id, err := readID(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ne, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		if _, err := readInt32(r); err != nil { // nf, already validated
			return nil, err
		}
		start := row
		for i := 0; i < int(ne); i++ {
			e, err := readInt32(r)
			if err != nil {
				return nil, err
			}
			s, err := readInt32(r)
			if err != nil {
				return nil, err
			}
			ds.Epoch[row] = int(e)
			ds.Stage[row] = int(s)
			for c := 0; c < nf; c++ {
				v, err := readFloat64(r)
				if err != nil {
					return nil, err
				}
				ds.X.Data.Set(row, c, v)
			}
			row++
		}
		ds.IDs = append(ds.IDs, id)
		ds.Blocks = append(ds.Blocks, post.Block{Start: start, Stop: row - 1})
	}
	return ds, nil
}

func readID(r io.Reader) (string, error) {
	var n uint8
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readFloat64(r io.Reader) (float64, error) {
	var v float64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
