// Package annot implements Luna's annotation/interval data model: classes
// of scored events (Instances) over a recording's timeline, a lazily-built
// per-class interval index, and the Store that owns them for the lifetime
// of one recording's analysis (SPEC_FULL.md §4.1).
package annot

import (
	"fmt"
	"time"

	"github.com/grailbio/base/log"

	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/tick"
)

// Options configures Store-wide behavior.
type Options struct {
	// FillMissingIDWithClock: when set, a null/empty id (or id == class
	// name) is replaced by interval.Start rendered as "HH:MM:SS.fff"
	// relative to RecordingStart.
	FillMissingIDWithClock bool
	RecordingStart         time.Time

	// KnownChannel, if non-nil, reports whether a channel label is known
	// to the EDF collaborator. A channel that is neither "." nor known is
	// a ConstraintViolation at Add time. A nil func disables the check
	// (used by tests and by callers composing annotations before the EDF
	// collaborator is available).
	KnownChannel func(name string) bool
}

// Store is a per-recording collection of annotation classes: the
// AnnotationSet of SPEC_FULL.md §3. Besides the class map, it carries the
// recording-level clock/epoch/offset metadata the spec attaches to
// AnnotationSet directly.
type Store struct {
	Opts    Options
	classes map[string]*Class
	// alias maps canonical class name back to the originally-requested
	// name, for diagnostics only; the actual remap table lives in
	// annot/ioannot.
	aliasOriginal map[string]string

	// StartClock/EndClock are the recording's wall-clock bounds, when
	// known.
	StartClock, EndClock time.Time
	// DurationSeconds/EpochSeconds describe the recording and its epoching.
	DurationSeconds float64
	EpochSeconds    float64
	// OffsetTicks/OffsetDirection implement a global time shift applied to
	// all intervals read from or written to external representations.
	// OffsetDirection is +1 or -1.
	OffsetTicks     tick.Tick
	OffsetDirection int
}

// NewStore returns an empty annotation store.
func NewStore(opts Options) *Store {
	return &Store{
		Opts:          opts,
		classes:       map[string]*Class{},
		aliasOriginal: map[string]string{},
	}
}

func (s *Store) classFor(name string) *Class {
	c, ok := s.classes[name]
	if !ok {
		c = newClass(name)
		s.classes[name] = c
	}
	return c
}

// Add is idempotent on the composite key (interval, class, channel, id): it
// returns the existing instance if the key is already present, otherwise
// creates one. When Opts.FillMissingIDWithClock is set, a null/empty id (or
// id == class) is replaced with interval.Start rendered as clock time.
func (s *Store) Add(class string, id string, iv tick.Interval, channel string) (*Instance, error) {
	if channel != "" && channel != "." && s.Opts.KnownChannel != nil && !s.Opts.KnownChannel(channel) {
		return nil, errs.New(errs.ConstraintViolation, "annot: unknown channel", channel, "for class", class)
	}
	if s.Opts.FillMissingIDWithClock && (id == "" || id == class) {
		id = clockString(s.Opts.RecordingStart, iv.Start)
	}
	c := s.classFor(class)
	inst := &Instance{Class: c, Interval: iv, ID: id, Channel: channel, Meta: map[string]Value{}}
	got, err := c.add(inst)
	if err != nil {
		return nil, err
	}
	return got, nil
}

func clockString(start time.Time, t tick.Tick) string {
	when := start.Add(time.Duration(t))
	return when.Format("15:04:05.000")
}

// Remove is a no-op if the instance's composite key is absent.
func (s *Store) Remove(class string, id string, iv tick.Interval, channel string) error {
	c, ok := s.classes[class]
	if !ok {
		return nil
	}
	return c.remove(Instance{Interval: iv, ID: id, Channel: channel})
}

// Extract returns every instance (across all classes, or within restrictTo
// if non-empty) whose interval overlaps window under half-open semantics.
// The first query against any given class seals it (SPEC_FULL.md §9).
func (s *Store) Extract(window tick.Interval, restrictTo ...string) map[string][]*Instance {
	return s.extract(window, false, restrictTo)
}

// ExtractFullyContained is as Extract, but only returns instances that
// window completely spans.
func (s *Store) ExtractFullyContained(window tick.Interval, restrictTo ...string) map[string][]*Instance {
	return s.extract(window, true, restrictTo)
}

func (s *Store) extract(window tick.Interval, contained bool, restrictTo []string) map[string][]*Instance {
	names := restrictTo
	if len(names) == 0 {
		names = s.Names()
	}
	out := map[string][]*Instance{}
	for _, name := range names {
		c, ok := s.classes[name]
		if !ok {
			continue
		}
		c.seal()
		var hits []*Instance
		if contained {
			hits = c.index.queryContained(window)
		} else {
			hits = c.index.query(window)
		}
		if len(hits) > 0 {
			out[name] = hits
		}
	}
	return out
}

// Names returns the class names currently in the store, sorted.
func (s *Store) Names() []string {
	return sortedClassNames(s.classes)
}

// Clear drops a single named class.
func (s *Store) Clear(name string) {
	delete(s.classes, name)
}

// ClearAll drops every class.
func (s *Store) ClearAll() {
	s.classes = map[string]*Class{}
}

// Clean drops every class with zero instances.
func (s *Store) Clean() {
	for name, c := range s.classes {
		if c.Empty() {
			delete(s.classes, name)
		}
	}
}

// Class returns the named class, or nil if absent.
func (s *Store) Class(name string) *Class {
	return s.classes[name]
}

// Summary logs a concise per-class instance count, matching the
// run-summary logging convention described in SPEC_FULL.md §7.
func (s *Store) Summary() {
	for _, name := range s.Names() {
		c := s.classes[name]
		log.Debug.Printf("annot: class %s: %d instances", name, len(c.instances))
	}
}

func (s *Store) String() string {
	return fmt.Sprintf("annot.Store{%d classes}", len(s.classes))
}
