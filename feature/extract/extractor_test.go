package extract

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/remnrem/luna-core/edf"
	fspec "github.com/remnrem/luna-core/feature/spec"
	"github.com/remnrem/luna-core/tick"
)

func fakeSineSource(numEpochs int, hz int, toneHz float64) *edf.Fake {
	f := edf.NewFake(tick.Seconds(30), numEpochs)
	f.AddSignal("C3", hz, sineWave(toneHz, hz, 30*float64(numEpochs)))
	return f
}

func compile(t *testing.T, text string) *fspec.Spec {
	t.Helper()
	sp, err := fspec.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := sp.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return sp
}

func TestRunProducesOneRowPerEpoch(t *testing.T) {
	src := fakeSineSource(4, 128, 10)
	sp := compile(t, "BANDS sig=C3\n")
	ex := &Extractor{}
	m, err := ex.Run(context.Background(), src, sp)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.NRows() != 4 {
		t.Fatalf("rows = %d, want 4", m.NRows())
	}
	if m.NCols() != 6 {
		t.Fatalf("cols = %d, want 6", m.NCols())
	}
	for r := 0; r < m.NRows(); r++ {
		for c := 0; c < m.NCols(); c++ {
			if math.IsNaN(m.Data.At(r, c)) {
				t.Fatalf("row %d col %d is NaN, want a real value for a clean sine input", r, c)
			}
		}
	}
}

func TestRunMissingChannelReportsMissingResource(t *testing.T) {
	src := fakeSineSource(2, 128, 10)
	sp := compile(t, "BANDS sig=F4\n")
	ex := &Extractor{}
	_, err := ex.Run(context.Background(), src, sp)
	if err == nil {
		t.Fatal("expected an error for an absent channel")
	}
}

func TestRunCovarBlockUsesExtractorCovariates(t *testing.T) {
	src := edf.NewFake(tick.Seconds(30), 2)
	sp := compile(t, "COVAR var=age,bmi\n")
	ex := &Extractor{Covariates: map[string]float64{"age": 57, "bmi": 24.5}}
	m, err := ex.Run(context.Background(), src, sp)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := m.Data.At(0, m.ColumnIndex("COVAR_age")); got != 57 {
		t.Fatalf("COVAR_age = %v, want 57", got)
	}
	if got := m.Data.At(1, m.ColumnIndex("COVAR_bmi")); got != 24.5 {
		t.Fatalf("COVAR_bmi = %v, want 24.5", got)
	}
}

func TestSuggestChannelFindsClosestLabel(t *testing.T) {
	src := fakeSineSource(1, 128, 10)
	src.AddSignal("C4", 128, sineWave(10, 128, 30))
	got := SuggestChannel(src, "C3x")
	if got != "C3" {
		t.Fatalf("SuggestChannel(%q) = %q, want C3", "C3x", got)
	}
}

func TestRunContextCancellation(t *testing.T) {
	src := fakeSineSource(4, 128, 10)
	sp := compile(t, "BANDS sig=C3\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &Extractor{}
	if _, err := ex.Run(ctx, src, sp); err == nil {
		t.Fatal("expected context.Canceled to propagate")
	}
}
