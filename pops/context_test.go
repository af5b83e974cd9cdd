package pops

import "testing"

func TestEnsureModelLoadsOnceAndCaches(t *testing.T) {
	c := NewContext()
	calls := 0
	load := func() (*Model, error) {
		calls++
		return &Model{Order: ClassOrder5}, nil
	}

	m1, err := c.EnsureModel(load)
	if err != nil {
		t.Fatalf("EnsureModel: %v", err)
	}
	m2, err := c.EnsureModel(load)
	if err != nil {
		t.Fatalf("EnsureModel (second call): %v", err)
	}
	if m1 != m2 {
		t.Error("EnsureModel should return the same cached instance")
	}
	if calls != 1 {
		t.Errorf("load was called %d times, want 1", calls)
	}
}

func TestSetModelOverridesContext(t *testing.T) {
	c := NewContext()
	want := &Model{Order: ClassOrder3}
	c.SetModel(want)
	if got := c.Model(); got != want {
		t.Error("Model() should return the model installed by SetModel")
	}
}

func TestModelIsNilBeforeAnyLoad(t *testing.T) {
	c := NewContext()
	if got := c.Model(); got != nil {
		t.Errorf("Model() = %v, want nil", got)
	}
}
