package ioannot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/remnrem/luna-core/tick"
)

// Ellipsis is the sentinel returned by ParseStop when the stop column reads
// "...", meaning "until the next row's start (or recording end if last)".
const Ellipsis = "..."

// timeParser resolves the six time encodings of SPEC_FULL.md §4.2 against a
// given recording anchor.
type timeParser struct {
	start          time.Time
	end            time.Time
	epochSeconds   float64
	epochIncrement float64
}

func newTimeParser(o ReadOptions) *timeParser {
	epochSeconds := o.EpochSeconds
	if epochSeconds == 0 {
		epochSeconds = 30
	}
	epochIncrement := o.EpochIncrement
	if epochIncrement == 0 {
		epochIncrement = epochSeconds
	}
	return &timeParser{
		start:          o.RecordingStart,
		end:            o.RecordingEnd,
		epochSeconds:   epochSeconds,
		epochIncrement: epochIncrement,
	}
}

// ParseStart parses a start-column token.
func (p *timeParser) ParseStart(s string) (tick.Tick, error) {
	t, _, err := p.parse(s)
	return t, err
}

// ParseStop parses a stop-column token given the row's already-resolved
// start. If the token is "...", ok is false and the caller must resolve the
// stop against the following row (or recording end).
func (p *timeParser) ParseStop(s string, start tick.Tick) (t tick.Tick, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == Ellipsis || s == "-" {
		return 0, false, nil
	}
	if strings.HasPrefix(s, "+") {
		dur, derr := strconv.ParseFloat(s[1:], 64)
		if derr != nil {
			return 0, true, fmt.Errorf("bad +duration %q: %w", s, derr)
		}
		return start + tick.Seconds(dur), true, nil
	}
	v, _, err := p.parse(s)
	return v, true, err
}

// parse resolves one token of any of the non-ellipsis, non-"+duration"
// encodings. The second return value reports whether the token was an
// epoch reference (used by callers that also need the epoch number).
func (p *timeParser) parse(s string) (tick.Tick, bool, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "." || s == "":
		return 0, false, nil
	case strings.HasPrefix(s, "e:"):
		t, err := p.parseEpochRef(s)
		return t, true, err
	case strings.HasPrefix(s, "0+"):
		d, err := parseClockDuration(s[2:])
		if err != nil {
			return 0, false, err
		}
		return tick.Seconds(d), false, nil
	case len(s) > 1 && s[0] == 'd' && strings.Contains(s, "-"):
		t, err := p.parseDayOffset(s)
		return t, false, err
	case strings.Contains(s, ":"):
		t, err := p.parseClock(s)
		return t, false, err
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("bad time token %q: %w", s, err)
		}
		return tick.Seconds(v), false, nil
	}
}

// parseClock resolves "HH:MM:SS[.fff]" against the recording start date. If
// RecordingStart carries no date information (the zero date), the elapsed
// seconds since midnight are used directly; otherwise the clock time is
// placed on the recording's start date, advancing to the next day if it
// falls before RecordingStart ("assume next occurrence after start").
func (p *timeParser) parseClock(s string) (tick.Tick, error) {
	d, err := parseClockDuration(s)
	if err != nil {
		return 0, err
	}
	if p.start.IsZero() {
		return tick.Seconds(d), nil
	}
	candidate := time.Date(p.start.Year(), p.start.Month(), p.start.Day(), 0, 0, 0, 0, p.start.Location()).
		Add(time.Duration(d * float64(time.Second)))
	if candidate.Before(p.start) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return tick.Tick(candidate.Sub(p.start)), nil
}

// parseDayOffset resolves "dN-HH:MM:SS": start-date plus N-1 days, then the
// given clock time.
func (p *timeParser) parseDayOffset(s string) (tick.Tick, error) {
	dash := strings.Index(s, "-")
	if dash < 0 {
		return 0, fmt.Errorf("bad day-offset token %q", s)
	}
	nStr := strings.TrimPrefix(s[:dash], "d")
	n, err := strconv.Atoi(nStr)
	if err != nil {
		return 0, fmt.Errorf("bad day-offset token %q: %w", s, err)
	}
	d, err := parseClockDuration(s[dash+1:])
	if err != nil {
		return 0, err
	}
	base := time.Date(p.start.Year(), p.start.Month(), p.start.Day(), 0, 0, 0, 0, p.start.Location()).
		AddDate(0, 0, n-1)
	candidate := base.Add(time.Duration(d * float64(time.Second)))
	return tick.Tick(candidate.Sub(p.start)), nil
}

// parseEpochRef resolves "e:N[:len[:inc]]".
func (p *timeParser) parseEpochRef(s string) (tick.Tick, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("bad epoch reference %q", s)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad epoch number in %q: %w", s, err)
	}
	epochLen := p.epochSeconds
	inc := p.epochIncrement
	if len(parts) >= 3 {
		if v, err := strconv.ParseFloat(parts[2], 64); err == nil {
			epochLen = v
			inc = v
		}
	}
	if len(parts) >= 4 {
		if v, err := strconv.ParseFloat(parts[3], 64); err == nil {
			inc = v
		}
	}
	_ = epochLen
	return tick.Seconds(float64(n-1) * inc), nil
}

// parseClockDuration parses "HH:MM:SS[.fff]" into a number of seconds
// elapsed since midnight.
func parseClockDuration(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad clock token %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad clock token %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad clock token %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("bad clock token %q: %w", s, err)
	}
	return float64(h)*3600 + float64(m)*60 + sec, nil
}
