// Package penalty computes time-penalty release schedules and injury
// return times from the match clock.
package penalty

import (
	"errors"
	"fmt"

	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/match"
)

// Rulebook codes with non-standard handling.
const (
	// CodeTeamPenalty (B1, too many men) is charged to the team but still a
	// real two-minute penalty served by a nominated player.
	CodeTeamPenalty = "B1"
	// CodeMajorPenal (Y6) splits into the 7-minute offender suspension plus
	// a 2-minute substitute-server suspension.
	CodeMajorPenal = "Y6"
	// CodeThirdPenalty and CodeSixFouls are ejection bookkeeping reds with
	// no suspension of their own.
	CodeThirdPenalty = "R8"
	CodeSixFouls     = "R9"
)

// Suspension durations in minutes.
const (
	minorMinutes  = 2
	yellowMinutes = 5
	majorMinutes  = 7
)

var ErrAlreadyResolved = errors.New("penalty already resolved")

// Schedule is the computed board schedule for one penalty event.
type Schedule struct {
	DurationMinutes int
	Releasable      bool
	Release         *clock.Stamp
	MajorRelease    *clock.Stamp
}

// Compute dispatches on color and code. benchStaff marks infractions
// attributed to bench personnel (or the Team/Bench sentinel), which carry
// an administrative card only — zero duration, no board presence — unless
// the code is the team penalty, which a player serves regardless.
//
// The Y6 major penal code is not handled here: it creates a linked pair of
// events via MajorPair.
func Compute(color match.CardColor, code string, benchStaff bool, start clock.Stamp) Schedule {
	if benchStaff && code != CodeTeamPenalty {
		return Schedule{}
	}

	var s Schedule
	switch color {
	case match.CardBlue:
		s.DurationMinutes = minorMinutes
		s.Releasable = true
	case match.CardYellow:
		s.DurationMinutes = yellowMinutes
	case match.CardRed:
		if code == CodeThirdPenalty || code == CodeSixFouls {
			return Schedule{}
		}
		s.DurationMinutes = minorMinutes
		s.Releasable = true
	default:
		return Schedule{}
	}

	rel := clock.StepBack(start, s.DurationMinutes)
	s.Release = &rel
	return s
}

// NeedsServer reports whether a substitute must serve the penalty on the
// offender's behalf: always for the major penal pair and the team
// penalty, and whenever the offender is a goalkeeper, who stays in goal.
func NeedsServer(offender match.Entity, code string) bool {
	if code == CodeMajorPenal || code == CodeTeamPenalty {
		return true
	}
	return offender.IsPlayer() && offender.Player.IsGoalkeeper
}

// MajorPair builds the two linked events of a Y6 major penal penalty:
// the offender serves seven non-releasable minutes, the nominated
// substitute serves two releasable minutes on their behalf. The events
// share a quarter, time, and pair identity — callers append both or
// neither.
func MajorPair(team match.Team, offender match.Entity, server match.Player, start clock.Stamp, description string) (match.Event, match.Event) {
	pairID := match.NewID()
	t := start.Remaining
	major := clock.StepBack(start, majorMinutes)
	serve := clock.StepBack(start, minorMinutes)

	offEv := match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindTimePenalty,
		Quarter: start.Quarter,
		Time:    &t,
		Entity:  offender,
		Penalty: &match.PenaltyDetail{
			Color:           match.CardYellow,
			Code:            CodeMajorPenal,
			Description:     description,
			DurationMinutes: majorMinutes,
			MajorRelease:    &major,
		},
	}

	srvTime := start.Remaining
	srvEv := match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindTimePenalty,
		Quarter: start.Quarter,
		Time:    &srvTime,
		Entity:  match.PlayerEntity(server),
		Penalty: &match.PenaltyDetail{
			Color:           match.CardYellow,
			Code:            CodeMajorPenal,
			Description:     description,
			DurationMinutes: minorMinutes,
			Releasable:      true,
			Release:         &serve,
			ServesForMajor:  true,
		},
	}
	offEv.Penalty.PairID = pairID
	srvEv.Penalty.PairID = pairID
	return offEv, srvEv
}

// Recompute refreshes a penalty's release fields after its quarter or time
// was corrected. Resolved penalties are history and are left untouched.
//
// For the major penal code the duration is reinferred from the
// server-linked flag — the 2-minute half recomputes a 2-minute release,
// the offender half a 7-minute one — never from the stored duration.
func Recompute(d *match.PenaltyDetail, start clock.Stamp) {
	if d == nil || d.ClearedFromBoard {
		return
	}
	if d.Code == CodeMajorPenal {
		if d.ServesForMajor {
			rel := clock.StepBack(start, minorMinutes)
			d.Release = &rel
		} else {
			rel := clock.StepBack(start, majorMinutes)
			d.MajorRelease = &rel
		}
		return
	}
	if d.DurationMinutes > 0 {
		rel := clock.StepBack(start, d.DurationMinutes)
		d.Release = &rel
	}
}

// Override sets an operator-supplied release time directly, bypassing the
// computed schedule. The stamp must still be a legal clock value, and a
// resolved penalty cannot be rescheduled.
func Override(d *match.PenaltyDetail, at clock.Stamp) error {
	if d.ClearedFromBoard {
		return ErrAlreadyResolved
	}
	if err := at.Validate(); err != nil {
		return fmt.Errorf("override release: %w", err)
	}
	d.Release = &at
	return nil
}

// InjuryReturn computes when an injured player may re-enter: two minutes
// of absence, except that an injury inside the final two minutes of a
// quarter carries to the start of the next one. Past overtime the return
// saturates to end of match.
func InjuryReturn(start clock.Stamp) clock.Stamp {
	if start.Terminal() {
		return clock.Stamp{Quarter: clock.MatchEnd}
	}
	if start.Remaining.TotalSeconds() <= 120 {
		next, ok := start.Quarter.Next()
		if !ok || next == clock.MatchEnd {
			return clock.Stamp{Quarter: clock.MatchEnd}
		}
		return clock.Stamp{Quarter: next, Remaining: clock.PointFromSeconds(next.NominalSeconds())}
	}
	return clock.Stamp{
		Quarter:   start.Quarter,
		Remaining: clock.PointFromSeconds(start.Remaining.TotalSeconds() - 120),
	}
}
