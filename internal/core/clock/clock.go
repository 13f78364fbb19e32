package clock

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTime is returned when a clock value falls outside the legal
// range for its quarter.
var ErrInvalidTime = errors.New("invalid match time")

// Quarter is one of the five ordered match segments, plus the MatchEnd
// sentinel for computations that run past the scheduled match.
type Quarter int

const (
	Q1 Quarter = iota
	Q2
	Q3
	Q4
	OT
	// MatchEnd is the saturating sentinel: a release or return that would
	// land beyond OT clamps here instead of failing.
	MatchEnd
)

var quarterNames = [...]string{"Q1", "Q2", "Q3", "Q4", "OT", "END"}

func (q Quarter) String() string {
	if q < Q1 || q > MatchEnd {
		return fmt.Sprintf("Quarter(%d)", int(q))
	}
	return quarterNames[q]
}

// ParseQuarter resolves "Q1".."Q4", "OT" (case-insensitive).
func ParseQuarter(s string) (Quarter, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Q1":
		return Q1, nil
	case "Q2":
		return Q2, nil
	case "Q3":
		return Q3, nil
	case "Q4":
		return Q4, nil
	case "OT":
		return OT, nil
	case "END":
		return MatchEnd, nil
	}
	return Q1, fmt.Errorf("unknown quarter %q", s)
}

func (q Quarter) Valid() bool { return q >= Q1 && q <= MatchEnd }

// Playable reports whether the quarter is an actual match segment.
func (q Quarter) Playable() bool { return q >= Q1 && q <= OT }

// NominalSeconds is the countdown length of the quarter: 15:00 for Q1-Q4,
// 10:00 for overtime.
func (q Quarter) NominalSeconds() int {
	switch {
	case q == OT:
		return 600
	case q.Playable():
		return 900
	}
	return 0
}

// Next returns the following quarter in match order. MatchEnd has no next.
func (q Quarter) Next() (Quarter, bool) {
	if q >= Q1 && q < OT {
		return q + 1, true
	}
	if q == OT {
		return MatchEnd, true
	}
	return MatchEnd, false
}

// FirstHalf reports whether the quarter buckets into the first half.
// The split is fixed: Q1/Q2 first, Q3/Q4/OT second, regardless of how many
// overtimes a match runs.
func (q Quarter) FirstHalf() bool { return q == Q1 || q == Q2 }

// baseOffset is the elapsed-seconds origin of the quarter.
func (q Quarter) baseOffset() int {
	switch q {
	case Q1:
		return 0
	case Q2:
		return 900
	case Q3:
		return 1800
	case Q4:
		return 2700
	case OT:
		return 3600
	}
	return 4200 // MatchEnd orders after every playable instant
}

func (q Quarter) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *Quarter) UnmarshalText(b []byte) error {
	parsed, err := ParseQuarter(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Point is a countdown value remaining within a quarter.
type Point struct {
	Min int
	Sec int
}

func (p Point) TotalSeconds() int { return p.Min*60 + p.Sec }

func (p Point) String() string { return fmt.Sprintf("%02d:%02d", p.Min, p.Sec) }

// PointFromSeconds converts a non-negative second count back to mm:ss.
func PointFromSeconds(s int) Point {
	if s < 0 {
		s = 0
	}
	return Point{Min: s / 60, Sec: s % 60}
}

// ParsePoint parses "mm:ss".
func ParsePoint(s string) (Point, error) {
	var m, sec int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &m, &sec); err != nil {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if m < 0 || sec < 0 || sec > 59 {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Point{Min: m, Sec: sec}, nil
}

func (p Point) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Point) UnmarshalText(b []byte) error {
	parsed, err := ParsePoint(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Stamp pairs a quarter with the countdown remaining in it — a single
// instant on the match clock.
type Stamp struct {
	Quarter   Quarter `json:"quarter"`
	Remaining Point   `json:"time"`
}

// Terminal reports whether the stamp is the end-of-match sentinel.
func (s Stamp) Terminal() bool { return s.Quarter == MatchEnd }

func (s Stamp) String() string {
	if s.Terminal() {
		return "END"
	}
	return s.Quarter.String() + " " + s.Remaining.String()
}

// Validate checks that the countdown sits inside [00:00, nominal length]
// for its quarter.
func (s Stamp) Validate() error {
	if !s.Quarter.Valid() {
		return fmt.Errorf("%w: quarter %d out of range", ErrInvalidTime, int(s.Quarter))
	}
	if s.Terminal() {
		if s.Remaining != (Point{}) {
			return fmt.Errorf("%w: end-of-match carries no countdown", ErrInvalidTime)
		}
		return nil
	}
	total := s.Remaining.TotalSeconds()
	if s.Remaining.Sec > 59 || total < 0 || total > s.Quarter.NominalSeconds() {
		return fmt.Errorf("%w: %s outside %s range", ErrInvalidTime, s.Remaining, s.Quarter)
	}
	return nil
}

// Elapsed maps the stamp onto the monotonic elapsed-seconds axis.
// Used only for ordering instants across quarters, never for display.
func (s Stamp) Elapsed() int {
	if s.Terminal() {
		return s.Quarter.baseOffset()
	}
	return s.Quarter.baseOffset() + (s.Quarter.NominalSeconds() - s.Remaining.TotalSeconds())
}

// Before reports whether s is strictly earlier than other on the match clock.
func (s Stamp) Before(other Stamp) bool { return s.Elapsed() < other.Elapsed() }

// StepBack advances the match clock by durationMinutes from start,
// rolling into following quarters as the countdown runs out. A duration
// that extends past the end of overtime saturates to the MatchEnd
// sentinel — the match simply ends with time still owed.
func StepBack(start Stamp, durationMinutes int) Stamp {
	if start.Terminal() {
		return Stamp{Quarter: MatchEnd}
	}
	rem := start.Remaining.TotalSeconds() - durationMinutes*60
	q := start.Quarter
	for rem < 0 {
		next, ok := q.Next()
		if !ok || next == MatchEnd {
			return Stamp{Quarter: MatchEnd}
		}
		q = next
		rem += q.NominalSeconds()
	}
	return Stamp{Quarter: q, Remaining: PointFromSeconds(rem)}
}
