// +build cgo

package lgbm

import (
	"strings"
	"testing"
)

func TestNewDatasetRejectsDataLengthMismatch(t *testing.T) {
	if _, err := NewDataset([]float64{1, 2, 3}, 2, 2, []int32{0, 1}, ""); err == nil {
		t.Fatal("expected an error when data length disagrees with nr*nc")
	}
}

func TestNewDatasetRejectsLabelLengthMismatch(t *testing.T) {
	if _, err := NewDataset([]float64{1, 2, 3, 4}, 2, 2, []int32{0}, ""); err == nil {
		t.Fatal("expected an error when labels length disagrees with nr")
	}
}

func TestDefaultPOPSConfigNamesMulticlassObjective(t *testing.T) {
	cfg := DefaultPOPSConfig(5)
	if !strings.Contains(cfg, "objective=multiclass") || !strings.Contains(cfg, "num_class=5") {
		t.Fatalf("config missing expected fields: %q", cfg)
	}
}
