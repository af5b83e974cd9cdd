package ioannot

import "testing"

func TestAliasTableResolveIsCaseInsensitiveOnOriginal(t *testing.T) {
	a := NewAliasTable()
	if err := a.Add("N2", "Stage 2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, in := range []string{"Stage 2", "stage 2", "STAGE 2"} {
		if got := a.Resolve(in); got != "N2" {
			t.Errorf("Resolve(%q) = %q, want N2", in, got)
		}
	}
}

func TestAliasTableResolveUnknownNamePassesThrough(t *testing.T) {
	a := NewAliasTable()
	if got := a.Resolve("Unmapped"); got != "Unmapped" {
		t.Errorf("Resolve(unmapped) = %q, want it unchanged", got)
	}
}

func TestAliasTableRejectsAliasingAnExistingCanonical(t *testing.T) {
	a := NewAliasTable()
	if err := a.Add("N2", "Stage 2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Add("Other", "N2"); err == nil {
		t.Fatal("expected an error aliasing an existing canonical name")
	}
}

func TestAliasTableRejectsConflictingSecondMapping(t *testing.T) {
	a := NewAliasTable()
	if err := a.Add("N2", "S2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Add("N3", "S2"); err == nil {
		t.Fatal("expected an error remapping the same original to a different canonical")
	}
}

func TestAliasTableAllowsRepeatingTheSameMapping(t *testing.T) {
	a := NewAliasTable()
	if err := a.Add("N2", "S2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Add("N2", "S2"); err != nil {
		t.Fatalf("repeating an identical mapping should not error: %v", err)
	}
}

func TestAliasTableRejectsCircularAlias(t *testing.T) {
	a := NewAliasTable()
	if err := a.Add("B", "A"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Add("A", "B"); err == nil {
		t.Fatal("expected an error for a circular alias A->B->A")
	}
}

func TestLoadDefaultsSeedsMultipleOriginalsPerCanonical(t *testing.T) {
	a := NewAliasTable()
	defaults := map[string][]string{
		"N2": {"Stage 2", "S2"},
		"N3": {"Stage 3", "S3", "Stage 4"},
	}
	if err := a.LoadDefaults(defaults); err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if got := a.Resolve("S2"); got != "N2" {
		t.Errorf("Resolve(S2) = %q, want N2", got)
	}
	if got := a.Resolve("Stage 4"); got != "N3" {
		t.Errorf("Resolve(Stage 4) = %q, want N3", got)
	}
}

func TestLoadDefaultsThenUserOverrideCanStillConflict(t *testing.T) {
	a := NewAliasTable()
	if err := a.LoadDefaults(map[string][]string{"N2": {"S2"}}); err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if err := a.Add("N3", "S2"); err == nil {
		t.Fatal("expected a user override of a default-mapped original to the same alias to conflict")
	}
}
