// Package ioannot implements Luna's annotation I/O: the tabular and XML
// file formats, the epoch-annotation (.eannot) format, and the alias remap
// table (SPEC_FULL.md §4.2).
package ioannot

import "time"

// ReadOptions configures a tabular or XML read.
type ReadOptions struct {
	// RecordingStart anchors clock-time encodings ("HH:MM:SS[.fff]") and
	// "dN-HH:MM:SS" encodings.
	RecordingStart time.Time
	// RecordingEnd resolves a trailing "..." on the final row.
	RecordingEnd time.Time
	// EpochSeconds/EpochIncrement resolve "e:N[:len[:inc]]" encodings when
	// not explicitly given on the reference itself.
	EpochSeconds   float64
	EpochIncrement float64

	// Aliases, if non-nil, is applied to every class name as it is read.
	Aliases *AliasTable

	// Validation mode: in ReadTabular, the first malformed row ends the
	// read without an error: ReadTabular returns the number of instances
	// added so far and a nil error. Instances added from earlier rows stay
	// in the Store. The XML readers do not consult this field.
	Validation bool

	// TabOnly disallows bare-space delimiters within a data line (Luna's
	// 'tab-only' hint), i.e. columns are split strictly on '\t'.
	TabOnly bool
}

// WriteOptions configures a tabular or XML write (spec.md §4.2's option
// enumeration). Collapse and TabMeta are carried but neither WriteTabular
// nor WriteXML reads them; WriteXML applies Annot but not Prefix.
type WriteOptions struct {
	HMS              bool // render clock times
	DHMS             bool // include date alongside clock time
	Collapse         bool // discontinuous -> elapsed, subtracting gaps (not applied by the writers)
	MinDurSeconds    float64
	TabMeta          bool // emit meta as extra tabular columns (not applied by the writers)
	Meta             bool // T/F: emit meta at all
	Remap            map[string]string
	OffsetSeconds    float64
	Prefix           string   // match classes by prefix
	Annot            []string // subset of class names to emit
	Set0DurAsEllipsis bool
	TimeFormatDP     int // decimal places for fractional seconds; default 3

	RecordingStart time.Time
}

// DefaultWriteOptions matches Luna's own defaults closely enough for the
// canonical round-trip law of SPEC_FULL.md §8 (no aliases, no offsets,
// time_format_dp = 3).
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Meta: true, TimeFormatDP: 3}
}
