package pops

import "testing"

func TestCollapse5FoldsN4IntoN3(t *testing.T) {
	s, ok := N4.Collapse5()
	if !ok || s != N3 {
		t.Fatalf("Collapse5(N4) = %v, %v, want N3, true", s, ok)
	}
}

func TestCollapse5RejectsNonSleepStages(t *testing.T) {
	for _, s := range []Stage{Movement, LightsOn, Unscored, Gap, Unknown} {
		if _, ok := s.Collapse5(); ok {
			t.Fatalf("Collapse5(%v) unexpectedly ok", s)
		}
	}
}

func TestCollapse3FoldsNremIntoNR(t *testing.T) {
	for _, s := range []Stage{N1, N2, N3, N4} {
		nr, ok := s.Collapse3()
		if !ok || nr != N1 {
			t.Fatalf("Collapse3(%v) = %v, %v, want N1, true", s, nr, ok)
		}
	}
	if w, ok := Wake.Collapse3(); !ok || w != Wake {
		t.Fatalf("Collapse3(Wake) = %v, %v", w, ok)
	}
}

func TestClassIDFindsPositionOrMinusOne(t *testing.T) {
	if id := ClassID(ClassOrder5, N2); id != 3 {
		t.Fatalf("ClassID(N2) = %d, want 3", id)
	}
	if id := ClassID(ClassOrder5, Gap); id != -1 {
		t.Fatalf("ClassID(Gap) = %d, want -1", id)
	}
}

func TestParseStageRoundTripsLabels(t *testing.T) {
	for _, s := range []Stage{Wake, REM, N1, N2, N3, N4, Movement, LightsOn, Unscored, Gap} {
		if got := ParseStage(s.String()); got != s {
			t.Fatalf("ParseStage(%q) = %v, want %v", s.String(), got, s)
		}
	}
}
