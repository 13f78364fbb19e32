package match

import (
	"github.com/google/uuid"

	"github.com/dwolgast/matchlog/internal/core/clock"
)

// Kind discriminates the event union. Each kind populates exactly one of
// the detail pointers on Event.
type Kind string

const (
	KindGoal         Kind = "goal"
	KindFoul         Kind = "foul"
	KindTimePenalty  Kind = "time_penalty"
	KindInjury       Kind = "injury"
	KindTeamTimeout  Kind = "team_timeout"
	KindMediaTimeout Kind = "media_timeout"
	KindTeamWarning  Kind = "team_warning"
	KindPeriodMarker Kind = "period_marker"
)

// CardColor is the disciplinary card class of a time penalty.
type CardColor string

const (
	CardBlue   CardColor = "Blue"
	CardYellow CardColor = "Yellow"
	CardRed    CardColor = "Red"
)

// GoalDetail carries goal-only fields. A nil Assist means unassisted.
type GoalDetail struct {
	Assist      *Entity `json:"assist,omitempty"`
	PowerPlay   bool    `json:"power_play,omitempty"`
	Shootout    bool    `json:"shootout,omitempty"`
	PenaltyKick bool    `json:"penalty_kick,omitempty"`
}

// PenaltyDetail carries time-penalty fields.
//
// A zero-duration penalty is an administrative card against bench staff:
// it never populates Release and is never releasable.
//
// ServesForMajor marks the substitute-server half of a major penal pair.
// Release recomputation keys off this flag, not off the stored duration —
// the two must never be conflated or historical release times shift.
type PenaltyDetail struct {
	Color            CardColor    `json:"color"`
	Code             string       `json:"code"`
	Description      string       `json:"description,omitempty"`
	DurationMinutes  int          `json:"duration_minutes"`
	Releasable       bool         `json:"releasable"`
	Release          *clock.Stamp `json:"release,omitempty"`
	MajorRelease     *clock.Stamp `json:"major_release,omitempty"`
	ActualRelease    *clock.Stamp `json:"actual_release,omitempty"`
	ClearedFromBoard bool         `json:"cleared_from_board,omitempty"`
	ServedBy         *Player      `json:"served_by,omitempty"`
	ServesForMajor   bool         `json:"serves_for_major,omitempty"`
	// PairID links the two halves of a major penal pair to their common origin.
	PairID string `json:"pair_id,omitempty"`
}

// Resolved reports whether the penalty no longer needs board attention:
// either it never had a release schedule, it was released early, or the
// operator cleared it.
func (d *PenaltyDetail) Resolved() bool {
	return d.ClearedFromBoard || d.ActualRelease != nil ||
		(d.Release == nil && d.MajorRelease == nil)
}

// InjuryDetail carries the eligible-return schedule for an injury absence.
type InjuryDetail struct {
	EligibleReturn *clock.Stamp `json:"eligible_return,omitempty"`
	Cleared        bool         `json:"cleared,omitempty"`
}

// WarningDetail records the reason of a team warning.
type WarningDetail struct {
	Reason string `json:"reason"`
}

// PeriodDetail marks a quarter start or end, with the wall-clock time the
// official pressed the button.
type PeriodDetail struct {
	Action    string `json:"action"` // "Start" or "End"
	WallClock string `json:"wall_clock,omitempty"`
}

// Event is one entry in the match log. Identity is assigned at creation
// and never changes; edits overwrite fields in place because derived
// engines index by ID.
type Event struct {
	ID      string        `json:"id"`
	Team    Team          `json:"team"`
	Kind    Kind          `json:"kind"`
	Quarter clock.Quarter `json:"quarter"`
	// Time is the countdown at which the event occurred. Nil for fouls,
	// which are attributed retroactively without a clock reading, and for
	// period markers.
	Time   *clock.Point `json:"time,omitempty"`
	Entity Entity       `json:"entity"`

	Goal    *GoalDetail    `json:"goal,omitempty"`
	Penalty *PenaltyDetail `json:"penalty,omitempty"`
	Injury  *InjuryDetail  `json:"injury,omitempty"`
	Warning *WarningDetail `json:"warning,omitempty"`
	Period  *PeriodDetail  `json:"period,omitempty"`
}

// NewID mints a stable event identity.
func NewID() string { return uuid.NewString() }

// Stamp returns the event's position on the match clock. ok is false for
// events without a clock reading.
func (e Event) Stamp() (clock.Stamp, bool) {
	if e.Time == nil {
		return clock.Stamp{}, false
	}
	return clock.Stamp{Quarter: e.Quarter, Remaining: *e.Time}, true
}

// Clone deep-copies the event so snapshot edits never alias live details.
func (e Event) Clone() Event {
	out := e
	if e.Time != nil {
		t := *e.Time
		out.Time = &t
	}
	if e.Entity.Player != nil {
		p := *e.Entity.Player
		out.Entity.Player = &p
	}
	if e.Entity.Bench != nil {
		b := *e.Entity.Bench
		out.Entity.Bench = &b
	}
	if e.Goal != nil {
		g := *e.Goal
		if g.Assist != nil {
			a := *g.Assist
			g.Assist = &a
		}
		out.Goal = &g
	}
	if e.Penalty != nil {
		p := *e.Penalty
		p.Release = cloneStamp(p.Release)
		p.MajorRelease = cloneStamp(p.MajorRelease)
		p.ActualRelease = cloneStamp(p.ActualRelease)
		if p.ServedBy != nil {
			s := *p.ServedBy
			p.ServedBy = &s
		}
		out.Penalty = &p
	}
	if e.Injury != nil {
		i := *e.Injury
		i.EligibleReturn = cloneStamp(i.EligibleReturn)
		out.Injury = &i
	}
	if e.Warning != nil {
		w := *e.Warning
		out.Warning = &w
	}
	if e.Period != nil {
		p := *e.Period
		out.Period = &p
	}
	return out
}

func cloneStamp(s *clock.Stamp) *clock.Stamp {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
