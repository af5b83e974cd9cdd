// Package tick implements Luna's monotonic time model: a 64-bit tick
// counter at 1e-9 second resolution, and the half-open interval built on
// top of it.
package tick

import "fmt"

// Tick counts nanoseconds since a recording's start. 1e9 ticks equal one
// second.
type Tick uint64

// PerSecond is the number of ticks in one second.
const PerSecond Tick = 1_000_000_000

// Seconds converts a duration in seconds to a Tick count.
func Seconds(s float64) Tick {
	return Tick(s * float64(PerSecond))
}

// ToSeconds converts a tick count to seconds.
func (t Tick) ToSeconds() float64 {
	return float64(t) / float64(PerSecond)
}

// Interval is the half-open range [Start, Stop) in ticks. Zero-duration
// intervals (Start == Stop) are legal and distinct from 1-tick intervals.
type Interval struct {
	Start, Stop Tick
}

// NewInterval builds an Interval, asserting Start <= Stop.
func NewInterval(start, stop Tick) Interval {
	if stop < start {
		panic(fmt.Sprintf("tick: invalid interval [%d,%d)", start, stop))
	}
	return Interval{Start: start, Stop: stop}
}

// Duration returns Stop - Start, in ticks.
func (iv Interval) Duration() Tick {
	return iv.Stop - iv.Start
}

// Empty reports whether the interval has zero duration.
func (iv Interval) Empty() bool {
	return iv.Start == iv.Stop
}

// Overlaps reports whether iv and o share any tick under half-open
// semantics: iv overlaps o iff iv.Start < o.Stop && iv.Stop > o.Start.
// An interval is never considered to overlap a window that starts at the
// interval's own stop point.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.Stop && iv.Stop > o.Start
}

// Contains reports whether o lies entirely within iv (o is fully spanned).
func (iv Interval) Contains(o Interval) bool {
	return iv.Start <= o.Start && o.Stop <= iv.Stop
}

// Touches reports whether iv and o overlap or abut (iv.Stop == o.Start or
// o.Stop == iv.Start), the relation Flatten merges on.
func (iv Interval) Touches(o Interval) bool {
	return iv.Start <= o.Stop && o.Start <= iv.Stop
}

// Midpoint returns the zero-duration interval at iv's midpoint.
func (iv Interval) Midpoint() Interval {
	mid := iv.Start + (iv.Stop-iv.Start)/2
	return Interval{Start: mid, Stop: mid}
}

// AtStart returns the zero-duration interval at iv.Start.
func (iv Interval) AtStart() Interval {
	return Interval{Start: iv.Start, Stop: iv.Start}
}

// AtStop returns the zero-duration interval at iv.Stop.
func (iv Interval) AtStop() Interval {
	return Interval{Start: iv.Stop, Stop: iv.Stop}
}

// Window expands iv by wl ticks to the left and wr ticks to the right,
// clamping Start at zero.
func (iv Interval) Window(wl, wr Tick) Interval {
	start := Tick(0)
	if iv.Start > wl {
		start = iv.Start - wl
	}
	return Interval{Start: start, Stop: iv.Stop + wr}
}

// Before reports whether iv ends at or before o starts.
func (iv Interval) Before(o Interval) bool {
	return iv.Stop <= o.Start
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Start, iv.Stop)
}

// Less gives the canonical ordering used by composite keys: by Start, then
// by Stop.
func Less(a, b Interval) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.Stop < b.Stop
}
