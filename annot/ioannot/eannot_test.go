package ioannot

import (
	"strings"
	"testing"

	"github.com/remnrem/luna-core/annot"
	"github.com/remnrem/luna-core/edf"
	"github.com/remnrem/luna-core/tick"
)

func fakeEpochSource(n int, continuous bool) *edf.Fake {
	f := edf.NewFake(tick.Seconds(30), n)
	f.IsContinuous = continuous
	return f
}

func TestReadEannotOnePerEpoch(t *testing.T) {
	text := "W\nW\nN1\nN2\nN2\nR\n"
	src := fakeEpochSource(6, true)
	s := annot.NewStore(annot.Options{})
	n, err := ReadEannot(strings.NewReader(text), s, src, tick.Seconds(30), 5)
	if err != nil {
		t.Fatalf("ReadEannot: %v", err)
	}
	if n != 6 {
		t.Fatalf("added = %d, want 6", n)
	}
	if got := len(s.Class("W").Instances()); got != 2 {
		t.Fatalf("class W has %d instances, want 2", got)
	}
	if got := len(s.Class("N2").Instances()); got != 2 {
		t.Fatalf("class N2 has %d instances, want 2", got)
	}
	r := s.Class("R").Instances()
	if len(r) != 1 || r[0].Interval != tick.NewInterval(tick.Seconds(150), tick.Seconds(180)) {
		t.Fatalf("unexpected R instance: %+v", r)
	}
}

func TestReadEannotRejectsDiscontinuous(t *testing.T) {
	src := fakeEpochSource(2, false)
	s := annot.NewStore(annot.Options{})
	if _, err := ReadEannot(strings.NewReader("W\nW\n"), s, src, tick.Seconds(30), 5); err == nil {
		t.Fatal("expected error for discontinuous recording")
	}
}

func TestReadEannotToleratesSmallMismatch(t *testing.T) {
	src := fakeEpochSource(5, true)
	s := annot.NewStore(annot.Options{})
	// 3 labels vs 5 expected epochs: within default tolerance of 5.
	if _, err := ReadEannot(strings.NewReader("W\nW\nN1\n"), s, src, tick.Seconds(30), 5); err != nil {
		t.Fatalf("expected tolerated mismatch, got %v", err)
	}
}

func TestReadEannotRejectsLargeMismatch(t *testing.T) {
	src := fakeEpochSource(100, true)
	s := annot.NewStore(annot.Options{})
	if _, err := ReadEannot(strings.NewReader("W\nW\n"), s, src, tick.Seconds(30), 2); err == nil {
		t.Fatal("expected error for out-of-tolerance mismatch")
	}
}

func TestParseEannotRejectsBlankLine(t *testing.T) {
	if _, err := ParseEannotLabels(strings.NewReader("W\n\nN1\n")); err == nil {
		t.Fatal("expected error for blank line in .eannot input")
	}
}
