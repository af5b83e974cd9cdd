package ioannot

import (
	"strings"
	"testing"

	"github.com/remnrem/luna-core/annot"
	"github.com/remnrem/luna-core/tick"
)

func TestWriteThenReadTabularRoundTrips(t *testing.T) {
	store := annot.NewStore(annot.Options{})
	iv := tick.NewInterval(tick.Seconds(30), tick.Seconds(60))
	inst, err := store.Add("AROUSAL", "", iv, "EEG")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	inst.Meta["conf"] = annot.NewNum(0.8)

	var buf strings.Builder
	if err := WriteTabular(&buf, store, DefaultWriteOptions()); err != nil {
		t.Fatalf("WriteTabular: %v", err)
	}

	got := annot.NewStore(annot.Options{})
	n, err := ReadTabular(strings.NewReader(buf.String()), got, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadTabular: %v\n%s", err, buf.String())
	}
	if n != 1 {
		t.Fatalf("ReadTabular added %d instances, want 1", n)
	}

	class := got.Class("AROUSAL")
	if class == nil {
		t.Fatal("expected an AROUSAL class after round-tripping")
	}
	insts := class.Instances()
	if len(insts) != 1 {
		t.Fatalf("got %d instances, want 1", len(insts))
	}
	if insts[0].Channel != "EEG" {
		t.Errorf("Channel = %q, want EEG", insts[0].Channel)
	}
	if insts[0].Interval.Start != iv.Start || insts[0].Interval.Stop != iv.Stop {
		t.Errorf("Interval = %+v, want %+v", insts[0].Interval, iv)
	}
}

func TestReadTabularThreeColumnForm(t *testing.T) {
	doc := "WAKE\t0\t30\n"
	s := annot.NewStore(annot.Options{})
	n, err := ReadTabular(strings.NewReader(doc), s, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadTabular: %v", err)
	}
	if n != 1 {
		t.Fatalf("added %d instances, want 1", n)
	}
	if s.Class("WAKE") == nil {
		t.Fatal("expected a WAKE class")
	}
}

func TestReadTabularAppliesAliases(t *testing.T) {
	aliases := NewAliasTable()
	if err := aliases.Add("N2", "Stage 2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	doc := "Stage 2\t0\t30\n"
	s := annot.NewStore(annot.Options{})
	if _, err := ReadTabular(strings.NewReader(doc), s, ReadOptions{Aliases: aliases}); err != nil {
		t.Fatalf("ReadTabular: %v", err)
	}
	if s.Class("N2") == nil {
		t.Fatal("expected the aliased class N2, not the raw label")
	}
	if s.Class("Stage 2") != nil {
		t.Error("the raw label should have been resolved away")
	}
}

func TestReadTabularRejectsWrongColumnCount(t *testing.T) {
	doc := "ONLYTWO\tcolumns\n"
	s := annot.NewStore(annot.Options{})
	if _, err := ReadTabular(strings.NewReader(doc), s, ReadOptions{}); err == nil {
		t.Fatal("expected an error for a 2-column data row")
	}
}
