package tick

import "testing"

func TestOverlapsBoundary(t *testing.T) {
	a := NewInterval(10, 20)
	b := NewInterval(20, 30)
	if a.Overlaps(b) {
		t.Fatalf("half-open interval [10,20) must not overlap [20,30)")
	}
	c := NewInterval(19, 25)
	if !a.Overlaps(c) {
		t.Fatalf("expected overlap between [10,20) and [19,25)")
	}
}

func TestZeroDurationKeptAsPoint(t *testing.T) {
	p := NewInterval(5, 5)
	if !p.Empty() {
		t.Fatalf("expected zero-duration interval to be Empty")
	}
	if p.Duration() != 0 {
		t.Fatalf("expected zero duration")
	}
}

func TestContains(t *testing.T) {
	outer := NewInterval(0, 100)
	inner := NewInterval(10, 20)
	if !outer.Contains(inner) {
		t.Fatalf("expected outer to contain inner")
	}
	if outer.Contains(NewInterval(90, 110)) {
		t.Fatalf("partial overlap must not count as contained")
	}
}

func TestWindowClampsAtZero(t *testing.T) {
	iv := NewInterval(5, 10)
	w := iv.Window(20, 5)
	if w.Start != 0 {
		t.Fatalf("expected window start clamp to 0, got %d", w.Start)
	}
	if w.Stop != 15 {
		t.Fatalf("expected window stop 15, got %d", w.Stop)
	}
}

func TestSecondsRoundTrip(t *testing.T) {
	s := Seconds(30.5)
	if s != Tick(30_500_000_000) {
		t.Fatalf("unexpected tick count: %d", s)
	}
	if got := s.ToSeconds(); got != 30.5 {
		t.Fatalf("unexpected seconds: %v", got)
	}
}
