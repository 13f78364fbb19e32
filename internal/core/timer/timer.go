// Package timer runs the interval countdowns between live play: quarter
// breaks, halftime, and team/media timeouts, with the horn cues the
// officials key off.
package timer

import (
	"context"
	"time"

	"github.com/dwolgast/matchlog/internal/core/clock"
)

// Kind selects the countdown profile.
type Kind string

const (
	KindQuarterBreak Kind = "quarter_break"
	KindHalftime     Kind = "halftime"
	KindMediaTimeout Kind = "media_timeout"
	KindTeamTimeout  Kind = "team_timeout"
)

// Interval lengths in seconds.
const (
	quarterBreakSeconds = 180
	halftimeSeconds     = 600
	mediaTimeoutSeconds = 90
	teamTimeoutSeconds  = 60

	// Timeouts keep counting 15 seconds past zero so the bench sees how
	// late they are returning to the field.
	timeoutOverrunSeconds = 15
)

// Seconds returns the countdown's nominal length.
func (k Kind) Seconds() int {
	switch k {
	case KindQuarterBreak:
		return quarterBreakSeconds
	case KindHalftime:
		return halftimeSeconds
	case KindMediaTimeout:
		return mediaTimeoutSeconds
	case KindTeamTimeout:
		return teamTimeoutSeconds
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case KindQuarterBreak:
		return "Quarter Break"
	case KindHalftime:
		return "Halftime"
	case KindMediaTimeout:
		return "Media Timeout"
	case KindTeamTimeout:
		return "Team Timeout"
	}
	return string(k)
}

func (k Kind) isTimeout() bool {
	return k == KindMediaTimeout || k == KindTeamTimeout
}

// BreakAfter selects the interval that follows the end of a quarter:
// halftime after the second, a standard break after the first and third.
// No timer runs after the fourth or overtime — whether play continues is
// the referee's decision.
func BreakAfter(q clock.Quarter) (Kind, bool) {
	switch q {
	case clock.Q1, clock.Q3:
		return KindQuarterBreak, true
	case clock.Q2:
		return KindHalftime, true
	}
	return "", false
}

// Cue is a horn instruction emitted at a threshold: one bell at thirty
// seconds, two at fifteen, four at zero.
type Cue struct {
	Bells     int
	Remaining int
}

// Countdown is one running interval. Tick is the unit of progress so the
// schedule is testable without a wall clock; Run drives it in real time.
type Countdown struct {
	kind      Kind
	remaining int
}

func New(kind Kind) *Countdown {
	return &Countdown{kind: kind, remaining: kind.Seconds()}
}

func (c *Countdown) Kind() Kind     { return c.kind }
func (c *Countdown) Remaining() int { return c.remaining }

// Overrun reports how far past zero a timeout has run.
func (c *Countdown) Overrun() int {
	if c.remaining >= 0 {
		return 0
	}
	return -c.remaining
}

// Tick advances one second. The returned cue, if any, is the horn to
// sound at the new reading; done reports the countdown is finished —
// immediately at zero for breaks, after the overrun window for timeouts.
func (c *Countdown) Tick() (*Cue, bool) {
	floor := 0
	if c.kind.isTimeout() {
		floor = -timeoutOverrunSeconds
	}
	if c.remaining <= floor {
		return nil, true
	}
	c.remaining--

	var cue *Cue
	switch c.remaining {
	case 30:
		cue = &Cue{Bells: 1, Remaining: 30}
	case 15:
		cue = &Cue{Bells: 2, Remaining: 15}
	case 0:
		cue = &Cue{Bells: 4, Remaining: 0}
	}
	return cue, c.remaining <= floor
}

// Run ticks the countdown once per second until it finishes or the
// context is canceled. onCue fires for each horn threshold.
func (c *Countdown) Run(ctx context.Context, onCue func(Cue)) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cue, done := c.Tick()
			if cue != nil && onCue != nil {
				onCue(*cue)
			}
			if done {
				return nil
			}
		}
	}
}
