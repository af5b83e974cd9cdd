package corpus

import (
	"bytes"
	"testing"

	"github.com/remnrem/luna-core/feature"
)

func matrixOf(rows [][]float64, columns []string) *feature.Matrix {
	m := feature.NewMatrix(len(rows), columns)
	for r, row := range rows {
		for c, v := range row {
			m.Data.Set(r, c, v)
		}
	}
	return m
}

func TestWriteReadRoundTrip(t *testing.T) {
	columns := []string{"MEAN", "SKEW"}
	x := matrixOf([][]float64{{1, 2}, {3, 4}, {5, 6}}, columns)

	var buf bytes.Buffer
	if err := WriteBlock(&buf, "subject-1", []int{0, 1, 2}, []int{0, 0, 2}, x); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	ds, err := Read(bytes.NewReader(buf.Bytes()), columns)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ds.X.NRows() != 3 {
		t.Fatalf("rows = %d, want 3", ds.X.NRows())
	}
	if len(ds.Blocks) != 1 || ds.Blocks[0].Start != 0 || ds.Blocks[0].Stop != 2 {
		t.Fatalf("Blocks = %v, want a single [0,2] block", ds.Blocks)
	}
	if ds.IDs[0] != "subject-1" {
		t.Fatalf("IDs[0] = %q, want subject-1", ds.IDs[0])
	}
	for r, want := range [][]float64{{1, 2}, {3, 4}, {5, 6}} {
		for c, v := range want {
			if got := ds.X.Data.At(r, c); got != v {
				t.Fatalf("X[%d][%d] = %v, want %v", r, c, got, v)
			}
		}
	}
	if ds.Stage[2] != 2 || ds.Epoch[1] != 1 {
		t.Fatalf("stage/epoch mismatch: %v %v", ds.Stage, ds.Epoch)
	}
}

func TestConcatenationIsUnion(t *testing.T) {
	columns := []string{"MEAN"}
	xa := matrixOf([][]float64{{1}, {2}}, columns)
	xb := matrixOf([][]float64{{10}, {20}, {30}}, columns)

	var bufA, bufB bytes.Buffer
	if err := WriteBlock(&bufA, "a", []int{0, 1}, []int{0, 1}, xa); err != nil {
		t.Fatalf("WriteBlock a: %v", err)
	}
	if err := WriteBlock(&bufB, "b", []int{0, 1, 2}, []int{2, 2, 0}, xb); err != nil {
		t.Fatalf("WriteBlock b: %v", err)
	}

	dsA, err := Read(bytes.NewReader(bufA.Bytes()), columns)
	if err != nil {
		t.Fatalf("Read a: %v", err)
	}
	dsB, err := Read(bytes.NewReader(bufB.Bytes()), columns)
	if err != nil {
		t.Fatalf("Read b: %v", err)
	}

	var combined bytes.Buffer
	combined.Write(bufA.Bytes())
	combined.Write(bufB.Bytes())
	dsCombined, err := Read(bytes.NewReader(combined.Bytes()), columns)
	if err != nil {
		t.Fatalf("Read combined: %v", err)
	}

	if dsCombined.X.NRows() != dsA.X.NRows()+dsB.X.NRows() {
		t.Fatalf("combined rows = %d, want %d", dsCombined.X.NRows(), dsA.X.NRows()+dsB.X.NRows())
	}
	if len(dsCombined.Blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2", len(dsCombined.Blocks))
	}
	if dsCombined.Blocks[0].Start != 0 || dsCombined.Blocks[0].Stop != 1 {
		t.Fatalf("Blocks[0] = %v, want [0,1]", dsCombined.Blocks[0])
	}
	if dsCombined.Blocks[1].Start != 2 || dsCombined.Blocks[1].Stop != 4 {
		t.Fatalf("Blocks[1] = %v, want [2,4]", dsCombined.Blocks[1])
	}
	if dsCombined.IDs[0] != "a" || dsCombined.IDs[1] != "b" {
		t.Fatalf("IDs = %v, want [a b]", dsCombined.IDs)
	}
}

func TestReadRejectsMismatchedFeatureCount(t *testing.T) {
	xa := matrixOf([][]float64{{1, 2}}, []string{"MEAN", "SKEW"})
	xb := matrixOf([][]float64{{1}}, []string{"MEAN"})

	var buf bytes.Buffer
	if err := WriteBlock(&buf, "a", []int{0}, []int{0}, xa); err != nil {
		t.Fatalf("WriteBlock a: %v", err)
	}
	if err := WriteBlock(&buf, "b", []int{0}, []int{0}, xb); err != nil {
		t.Fatalf("WriteBlock b: %v", err)
	}

	if _, err := Read(bytes.NewReader(buf.Bytes()), []string{"MEAN", "SKEW"}); err == nil {
		t.Fatal("expected a ConstraintViolation for mismatched feature counts across blocks")
	}
}

func TestWriteBlockRejectsLengthMismatch(t *testing.T) {
	x := matrixOf([][]float64{{1}, {2}}, []string{"MEAN"})
	var buf bytes.Buffer
	if err := WriteBlock(&buf, "a", []int{0}, []int{0, 1}, x); err == nil {
		t.Fatal("expected an error when epochs/stages/matrix row counts disagree")
	}
}
