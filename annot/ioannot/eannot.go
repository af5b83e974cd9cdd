package ioannot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/remnrem/luna-core/annot"
	"github.com/remnrem/luna-core/edf"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/tick"
)

// ParseEannotLabels reads one label per line from an .eannot file. A blank
// line is malformed: the format has no record separators, unlike the
// tabular format (SPEC_FULL.md §4.2, grounded on original_source/annot's
// "no blank lines allowed for .eannot" check).
func ParseEannotLabels(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var labels []string
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			return nil, errs.New(errs.MalformedInput, fmt.Sprintf("eannot: blank line %d not allowed", lineNo))
		}
		labels = append(labels, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// ReconcileEpochCount checks got against expected within tolerance,
// matching original_source/annot.cpp's enforce_epoch_check: a mismatch
// within tolerance is a warning (the caller logs it), beyond tolerance a
// MalformedInput error.
func ReconcileEpochCount(got, expected, tolerance int) error {
	delta := got - expected
	if delta < 0 {
		delta = -delta
	}
	if delta > tolerance {
		return errs.New(errs.MalformedInput,
			fmt.Sprintf("eannot: expecting %d epochs but found %d (tolerance %d)", expected, got, tolerance))
	}
	return nil
}

// ReadEannot attaches one annotation class per distinct label in r, one
// instance per epoch of src, to s. It requires src to be a continuous
// recording (SPEC_FULL.md §4.2: ".eannot files cannot be used with
// discontinuous EDF+"), and allows the read label count to differ from
// src's epoch count by up to tolerance (default 5 when tolerance <= 0).
//
// Every label's instance carries no meta-data (annot.Flag), matching
// original_source/annot.cpp's a->type = A_FLAG_T.
func ReadEannot(r io.Reader, s *annot.Store, src edf.Source, epochLen tick.Tick, tolerance int) (int, error) {
	if !src.Continuous() {
		return 0, errs.New(errs.ConstraintViolation, "eannot: cannot attach to a discontinuous recording")
	}
	if tolerance <= 0 {
		tolerance = 5
	}
	labels, err := ParseEannotLabels(r)
	if err != nil {
		return 0, err
	}

	expected := int(src.Seconds() / epochLen.ToSeconds())
	if err := ReconcileEpochCount(len(labels), expected, tolerance); err != nil {
		return 0, err
	}

	added := 0
	for e, label := range labels {
		if label == "." || label == "" {
			continue
		}
		if e >= expected {
			break
		}
		start := tick.Tick(int64(e) * int64(epochLen))
		iv := tick.NewInterval(start, start+epochLen)
		if _, err := s.Add(label, label, iv, "."); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
