package errs

import (
	"testing"

	"github.com/grailbio/base/errors"
)

func TestNewWrapsKindAndMessage(t *testing.T) {
	err := New(ConstraintViolation, "annot: unknown channel", "EEG")
	if err == nil {
		t.Fatal("New returned nil")
	}
	if !errors.Is(ConstraintViolation, err) {
		t.Errorf("errors.Is(ConstraintViolation, err) = false, want true: %v", err)
	}
	if errors.Is(MissingResource, err) {
		t.Errorf("errors.Is(MissingResource, err) = true, want false: %v", err)
	}
}

func TestEachKindRoundTripsThroughIs(t *testing.T) {
	kinds := []errors.Kind{MalformedInput, ConstraintViolation, MissingResource, DegenerateNumerics, StateError}
	for _, k := range kinds {
		err := New(k, "boom")
		if !errors.Is(k, err) {
			t.Errorf("errors.Is(%v, New(%v, ...)) = false", k, k)
		}
	}
}
