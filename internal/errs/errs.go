// Package errs centralizes the error kinds used across the core, built on
// top of github.com/grailbio/base/errors the way the teacher packages
// build on it (see encoding/pam/fieldio/reader.go's use of errors.NotExist).
package errs

import (
	"github.com/grailbio/base/errors"
)

// The five error kinds from the core's error-handling design. Each maps
// onto a github.com/grailbio/base/errors.Kind so that callers can test with
// errors.Is/errors.E's own Kind field.
const (
	// MalformedInput: an annotation line fails column-count or numeric
	// parsing.
	MalformedInput = errors.Invalid
	// ConstraintViolation: duplicate class/alias, circular alias, stage
	// overlap, negative interval.
	ConstraintViolation = errors.Precondition
	// MissingResource: a required channel is absent and no alias matches.
	MissingResource = errors.NotExist
	// DegenerateNumerics: Welch bin <= 0, zero-variance LDA feature, SVD
	// rank deficiency, too few training rows.
	DegenerateNumerics = errors.Integrity
	// StateError: mutation of a sealed annotation class.
	StateError = errors.Precondition
)

// New builds a *errors.Error of the given kind, composing the same way
// errors.E(...) is used throughout the teacher (e.g. markduplicates,
// encoding/fastq).
func New(kind errors.Kind, args ...interface{}) error {
	all := make([]interface{}, 0, len(args)+1)
	all = append(all, kind)
	all = append(all, args...)
	return errors.E(all...)
}
