package extract

import (
	"context"
	"testing"

	"github.com/remnrem/luna-core/edf"
	"github.com/remnrem/luna-core/tick"
)

func TestRunEquivalenceSkipsAbsentCandidates(t *testing.T) {
	src := edf.NewFake(tick.Seconds(30), 2)
	src.AddSignal("C3", 128, sineWave(10, 128, 60))
	src.AddSignal("C4", 128, sineWave(10, 128, 60))
	sp := compile(t, "BANDS sig=C3\n")
	ex := &Extractor{}

	results := ex.RunEquivalence(context.Background(), src, sp, "C3", []string{"C4", "O1"})
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1 (O1 absent from src)", len(results))
	}
	if results[0].Channel != "C4" {
		t.Fatalf("results[0].Channel = %q, want C4", results[0].Channel)
	}
	if results[0].Err != nil {
		t.Fatalf("results[0].Err = %v, want nil", results[0].Err)
	}
	if results[0].Matrix.NRows() != 2 {
		t.Fatalf("rows = %d, want 2", results[0].Matrix.NRows())
	}
}

func TestRunEquivalenceSubstitutesChannelOnly(t *testing.T) {
	src := edf.NewFake(tick.Seconds(30), 1)
	src.AddSignal("C3", 128, sineWave(10, 128, 30))
	src.AddSignal("C4", 128, sineWave(2, 128, 30))
	sp := compile(t, "BANDS sig=C3\n")
	ex := &Extractor{}

	results := ex.RunEquivalence(context.Background(), src, sp, "C3", []string{"C4"})
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	// C4 carries a delta-band tone; its ALPHA column should be lower than
	// a direct extraction against the alpha-heavy C3 signal.
	direct, err := ex.Run(context.Background(), src, sp)
	if err != nil {
		t.Fatalf("direct Run: %v", err)
	}
	directAlpha := direct.Data.At(0, direct.ColumnIndex("BANDS_C3_ALPHA"))
	substitutedAlpha := results[0].Matrix.Data.At(0, results[0].Matrix.ColumnIndex("BANDS_C4_ALPHA"))
	if substitutedAlpha >= directAlpha {
		t.Fatalf("expected the C4 (delta-tone) run to have less alpha power than the C3 (alpha-tone) run")
	}
}
