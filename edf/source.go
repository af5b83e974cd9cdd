// Package edf describes the shape of the EDF/EDF+ collaborator that feature
// extraction and annotation attachment read signals and epoch boundaries
// from. The container format itself is out of scope (SPEC_FULL.md
// "Non-goals"); this package only fixes the interface real readers
// implement, plus an in-memory Fake for tests.
package edf

import (
	"fmt"

	"github.com/remnrem/luna-core/tick"
)

// Source is the EDF collaborator API required by feature extraction and
// annotation attachment.
type Source interface {
	// FirstEpoch returns the 0-based index of the first epoch, or -1 if the
	// recording carries no epoching.
	FirstEpoch() int

	// NextEpoch returns the next epoch index after the one most recently
	// returned by FirstEpoch/NextEpoch, or -1 once exhausted.
	//
	// REQUIRES: FirstEpoch has been called at least once.
	NextEpoch() int

	// Epoch returns the interval spanned by epoch i.
	Epoch(i int) tick.Interval

	// SamplingFreq returns signal's sample rate in Hz.
	//
	// REQUIRES: HasSignal(signal).
	SamplingFreq(signal string) int

	// NSamplesPerEpoch returns the number of samples of signal in one epoch.
	//
	// REQUIRES: HasSignal(signal).
	NSamplesPerEpoch(signal string) int

	// Read returns signal's samples over iv.
	//
	// REQUIRES: HasSignal(signal).
	Read(signal string, iv tick.Interval) ([]float64, error)

	// Resample replaces signal in place with a version sampled at hz.
	//
	// REQUIRES: HasSignal(signal).
	Resample(signal string, hz int) error

	// Rescale converts signal's physical units to unit in place.
	//
	// REQUIRES: HasSignal(signal).
	Rescale(signal, unit string) error

	// HasSignal reports whether the recording carries a signal labeled name.
	HasSignal(name string) bool

	// SignalLabel returns the label of the i'th signal.
	SignalLabel(i int) string

	// Continuous reports whether the recording is a single unbroken span
	// (EDF, not EDF+D). The .eannot format requires this.
	Continuous() bool

	// Seconds returns the recording's total duration.
	Seconds() float64
}

// ErrNoSignal is returned by Fake methods against an unknown signal label.
type ErrNoSignal struct{ Signal string }

func (e ErrNoSignal) Error() string { return fmt.Sprintf("edf: no such signal %q", e.Signal) }
