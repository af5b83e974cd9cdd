// Package algebra implements the interval set operations of
// SPEC_FULL.md §4.3: union, intersection, overlap keep/drop, flatten,
// complement, windowing, point reduction, epoch splitting, and pooling.
// All operations work on already-sorted slices of tick.Interval; Flatten
// itself does the sorting other operations assume of their inputs.
package algebra

import (
	"sort"

	"github.com/remnrem/luna-core/tick"
)

// Flatten merges overlapping or touching intervals. Idempotent:
// Flatten(Flatten(s)) == Flatten(s).
func Flatten(s []tick.Interval) []tick.Interval {
	if len(s) == 0 {
		return nil
	}
	cp := make([]tick.Interval, len(s))
	copy(cp, s)
	sort.Slice(cp, func(i, j int) bool { return tick.Less(cp[i], cp[j]) })

	out := make([]tick.Interval, 0, len(cp))
	cur := cp[0]
	for _, iv := range cp[1:] {
		if cur.Touches(iv) {
			if iv.Stop > cur.Stop {
				cur.Stop = iv.Stop
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}

// Union returns the flattened union of two already-flattened sets (A|B).
func Union(a, b []tick.Interval) []tick.Interval {
	merged := make([]tick.Interval, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return Flatten(merged)
}

// Intersect returns the pairwise intersection of every overlapping pair
// between flattened sets a and b (A*B).
func Intersect(a, b []tick.Interval) []tick.Interval {
	var out []tick.Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		x, y := a[i], b[j]
		if x.Overlaps(y) {
			start := x.Start
			if y.Start > start {
				start = y.Start
			}
			stop := x.Stop
			if y.Stop < stop {
				stop = y.Stop
			}
			out = append(out, tick.Interval{Start: start, Stop: stop})
		}
		if x.Stop <= y.Stop {
			i++
		} else {
			j++
		}
	}
	return out
}

// KeepIfOverlaps returns the members of a that overlap any member of
// flattened b (A+B). a need not be flattened; each member of a is returned
// verbatim (not clipped) if it overlaps anything in b.
func KeepIfOverlaps(a, b []tick.Interval) []tick.Interval {
	fb := Flatten(b)
	var out []tick.Interval
	for _, x := range a {
		if overlapsAny(x, fb) {
			out = append(out, x)
		}
	}
	return out
}

// DropIfOverlaps returns the members of a that overlap no member of
// flattened b (A-B). No interval returned overlaps any member of flattened
// b (testable property, SPEC_FULL.md §8).
func DropIfOverlaps(a, b []tick.Interval) []tick.Interval {
	fb := Flatten(b)
	var out []tick.Interval
	for _, x := range a {
		if !overlapsAny(x, fb) {
			out = append(out, x)
		}
	}
	return out
}

func overlapsAny(x tick.Interval, flattened []tick.Interval) bool {
	// flattened is sorted and disjoint; binary search for a candidate.
	idx := sort.Search(len(flattened), func(i int) bool { return flattened[i].Stop > x.Start })
	if idx < len(flattened) && flattened[idx].Overlaps(x) {
		return true
	}
	return false
}

// Complement returns the complement of flattened set s within [0, end).
func Complement(s []tick.Interval, end tick.Tick) []tick.Interval {
	fs := Flatten(s)
	var out []tick.Interval
	cursor := tick.Tick(0)
	for _, iv := range fs {
		if iv.Start > cursor {
			out = append(out, tick.Interval{Start: cursor, Stop: iv.Start})
		}
		if iv.Stop > cursor {
			cursor = iv.Stop
		}
	}
	if cursor < end {
		out = append(out, tick.Interval{Start: cursor, Stop: end})
	}
	return out
}

// Window expands every interval in s by wl ticks to the left and wr ticks
// to the right.
func Window(s []tick.Interval, wl, wr tick.Tick) []tick.Interval {
	out := make([]tick.Interval, len(s))
	for i, iv := range s {
		out[i] = iv.Window(wl, wr)
	}
	return out
}

// ReduceMode selects the degenerate point an interval is reduced to.
type ReduceMode int

const (
	ReduceMidpoint ReduceMode = iota
	ReduceStart
	ReduceStop
)

// Reduce replaces every interval in s with its zero-duration degenerate
// point per mode.
func Reduce(s []tick.Interval, mode ReduceMode) []tick.Interval {
	out := make([]tick.Interval, len(s))
	for i, iv := range s {
		switch mode {
		case ReduceStart:
			out[i] = iv.AtStart()
		case ReduceStop:
			out[i] = iv.AtStop()
		default:
			out[i] = iv.Midpoint()
		}
	}
	return out
}

// SplitByEpoch intersects every member of s with every epoch, returning
// only the non-empty intersections.
func SplitByEpoch(s []tick.Interval, epochs []tick.Interval) []tick.Interval {
	var out []tick.Interval
	for _, e := range epochs {
		for _, iv := range s {
			if iv.Overlaps(e) {
				start := iv.Start
				if e.Start > start {
					start = e.Start
				}
				stop := iv.Stop
				if e.Stop < stop {
					stop = e.Stop
				}
				out = append(out, tick.Interval{Start: start, Stop: stop})
			}
		}
	}
	return out
}

// Pool unions across any number of classes' interval sets.
func Pool(sets ...[]tick.Interval) []tick.Interval {
	var merged []tick.Interval
	for _, s := range sets {
		merged = append(merged, s...)
	}
	return Flatten(merged)
}

// Op identifies a binary class-algebra operator, for callers that want the
// A|B / A*B / A+B / A-B notation of spec.md §4.3 applied at the class
// level rather than calling the slice functions directly.
type Op int

const (
	OpUnion Op = iota
	OpIntersect
	OpKeepIfOverlaps
	OpDropIfOverlaps
)

// Combine flattens a and b and applies op.
func Combine(op Op, a, b []tick.Interval) []tick.Interval {
	fa, fb := Flatten(a), Flatten(b)
	switch op {
	case OpUnion:
		return Union(fa, fb)
	case OpIntersect:
		return Intersect(fa, fb)
	case OpKeepIfOverlaps:
		return KeepIfOverlaps(fa, fb)
	case OpDropIfOverlaps:
		return DropIfOverlaps(fa, fb)
	default:
		return nil
	}
}
