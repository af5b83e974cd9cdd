package spec

import (
	"strings"
	"testing"
)

func TestLogPSDColumnCount(t *testing.T) {
	s, err := Parse(strings.NewReader("LOGPSD sig=C3 lwr=0.5 upr=45\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := s.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := s.NumColumns(); got != 179 {
		t.Fatalf("NumColumns = %d, want 179 (scenario 4 of spec.md §8)", got)
	}
}

func TestBandsSixColumns(t *testing.T) {
	s, err := Parse(strings.NewReader("BANDS sig=C3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	if got := s.NumColumns(); got != 6 {
		t.Fatalf("NumColumns = %d, want 6", got)
	}
	if s.Columns[0].Name != "BANDS_C3_SLOW" {
		t.Fatalf("first column name = %q", s.Columns[0].Name)
	}
}

func TestSmoothInheritsSourceArity(t *testing.T) {
	s, err := Parse(strings.NewReader("BANDS sig=C3\nSMOOTH block=BANDS half-window=2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	if got := s.NumColumns(); got != 12 {
		t.Fatalf("NumColumns = %d, want 12 (6 BANDS + 6 SMOOTH)", got)
	}
}

func TestEpochOutlierEmitsNoColumns(t *testing.T) {
	s, err := Parse(strings.NewReader("BANDS sig=C3\nEPOCH_OUTLIER block=BANDS th=3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	if got := s.NumColumns(); got != 6 {
		t.Fatalf("NumColumns = %d, want 6", got)
	}
}

func TestSelectCompacts(t *testing.T) {
	s, _ := Parse(strings.NewReader("BANDS sig=C3\n"))
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	keep := s.Select([]string{"BANDS_C3_SLOW", "BANDS_C3_DELTA"}, nil)
	if len(keep) != 2 {
		t.Fatalf("Select kept %d columns, want 2", len(keep))
	}
}
