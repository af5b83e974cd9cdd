package annot

import (
	ivtree "github.com/biogo/store/interval"

	"github.com/remnrem/luna-core/tick"
)

// tickPos adapts tick.Tick to biogo/store/interval.Comparable so the
// augmented tree can order endpoints.
type tickPos tick.Tick

func (p tickPos) Compare(c ivtree.Comparable) int {
	o := c.(tickPos)
	switch {
	case p < o:
		return -1
	case p > o:
		return 1
	default:
		return 0
	}
}

// entry is the per-instance node stored in the interval tree; it carries
// enough information to recover the owning Instance without a second
// lookup.
type entry struct {
	iv   tick.Interval
	id   uintptr
	inst *Instance
}

func (e *entry) Overlap(r ivtree.Range) bool {
	start := tick.Tick(r.Start.(tickPos))
	stop := tick.Tick(r.End.(tickPos))
	return e.iv.Start < stop && e.iv.Stop > start
}

func (e *entry) ID() uintptr { return e.id }

func (e *entry) Range() ivtree.Range {
	return ivtree.Range{Start: tickPos(e.iv.Start), End: tickPos(e.iv.Stop)}
}

func (e *entry) String() string { return e.iv.String() }

// IntervalIndex is the lazy per-class interval index described in
// SPEC_FULL.md §4.1: built on first query, backed by
// github.com/biogo/store/interval's augmented interval tree. Its invariant
// is enforced by Class.sealed: once built, the owning Class must not be
// mutated.
type IntervalIndex struct {
	tree    ivtree.Tree
	built   bool
	nextID  uintptr
	indexed int // number of instances indexed, to check against len(instances) at build time
}

func (x *IntervalIndex) reset() {
	x.tree = ivtree.Tree{}
	x.built = false
	x.nextID = 0
	x.indexed = 0
}

// build inserts every instance in insts into the tree. Called at most once,
// on first query.
func (x *IntervalIndex) build(insts []*Instance) {
	for _, inst := range insts {
		e := &entry{iv: inst.Interval, id: x.nextID, inst: inst}
		x.nextID++
		// fast=true: ranges are adjusted once in bulk below.
		_ = x.tree.Insert(e, true)
	}
	x.tree.AdjustRanges()
	x.built = true
	x.indexed = len(insts)
}

// query returns every instance whose interval overlaps window under
// half-open semantics.
func (x *IntervalIndex) query(window tick.Interval) []*Instance {
	q := &entry{iv: window}
	hits := x.tree.Get(q)
	out := make([]*Instance, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*entry).inst)
	}
	return out
}

// queryContained returns every instance whose interval window fully spans.
func (x *IntervalIndex) queryContained(window tick.Interval) []*Instance {
	hits := x.query(window)
	out := make([]*Instance, 0, len(hits))
	for _, inst := range hits {
		if window.Contains(inst.Interval) {
			out = append(out, inst)
		}
	}
	return out
}

// Len returns the number of instances indexed, valid only once Built.
func (x *IntervalIndex) Len() int { return x.indexed }

// Built reports whether the tree has been constructed.
func (x *IntervalIndex) Built() bool { return x.built }
