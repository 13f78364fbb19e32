package discipline

import (
	"fmt"

	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/match"
	"github.com/dwolgast/matchlog/internal/core/penalty"
)

// Tally is a player's foul and card accumulation, recomputed on demand
// from the event log — never cached, so edits and deletes can't leave it
// stale.
type Tally struct {
	Q1, Q2, Q3, Q4, OT int
	FirstHalf          int
	SecondHalf         int
	Total              int
	Cards              map[match.CardColor]int
}

// FoulTally buckets a player's fouls by quarter and half. Unattributed
// fouls belong to nobody and are excluded until assigned.
func FoulTally(log match.Log, team match.Team, playerID string) Tally {
	t := Tally{Cards: make(map[match.CardColor]int)}
	for _, e := range log {
		if e.Team != team || e.Entity.ID() != playerID || playerID == "" {
			continue
		}
		switch e.Kind {
		case match.KindFoul:
			switch e.Quarter {
			case clock.Q1:
				t.Q1++
			case clock.Q2:
				t.Q2++
			case clock.Q3:
				t.Q3++
			case clock.Q4:
				t.Q4++
			case clock.OT:
				t.OT++
			}
		case match.KindTimePenalty:
			if e.Penalty != nil && !e.Penalty.ServesForMajor {
				t.Cards[e.Penalty.Color]++
			}
		}
	}
	t.FirstHalf = t.Q1 + t.Q2
	t.SecondHalf = t.Q3 + t.Q4 + t.OT
	t.Total = t.FirstHalf + t.SecondHalf
	return t
}

// CheckFoul evaluates the foul thresholds immediately after a foul was
// appended to the log, using counts that include it. Only the single
// highest-priority signal fires for the triggering foul: a sixth foul is
// an ejection and suppresses everything below it, and fouls beyond the
// sixth fire nothing at all.
func CheckFoul(log match.Log, team match.Team, subject match.Entity, foulQuarter clock.Quarter) *Signal {
	if subject.Kind == match.EntityUnattributed || subject.ID() == "" {
		return nil
	}
	t := FoulTally(log, team, subject.ID())
	half := t.FirstHalf
	if !foulQuarter.FirstHalf() {
		half = t.SecondHalf
	}

	switch {
	case t.Total == 6:
		return &Signal{
			Kind: KindSixthFoul, Severity: SeverityEjection, Team: team, Subject: subject,
			Message: "6th foul of the game. Player must be ejected.",
		}
	case t.Total == 5:
		return &Signal{
			Kind: KindFifthFoul, Severity: SeverityWarning, Team: team, Subject: subject,
			Message: "Player has 5 total fouls. One foul away from ejection.",
		}
	case half == 4:
		return &Signal{
			Kind: KindFourthFoulHalf, Severity: SeverityBlueCard, Team: team, Subject: subject,
			Message: "4th foul in this half. Issue a Blue Card time penalty.",
		}
	case half == 3:
		return &Signal{
			Kind: KindThirdFoulHalf, Severity: SeverityWarning, Team: team, Subject: subject,
			Message: "Player has 3 fouls in this half.",
		}
	}
	return nil
}

// PenaltyPoints counts the accumulation weight of an individual's real
// time penalties. Substitute-server entries belong to the offender, not
// the server, and the major penal code weighs double.
func PenaltyPoints(log match.Log, team match.Team, personID string) int {
	if personID == "" {
		return 0
	}
	pts := 0
	for _, e := range log {
		if e.Kind != match.KindTimePenalty || e.Team != team || e.Penalty == nil {
			continue
		}
		if e.Entity.ID() != personID || e.Penalty.ServesForMajor {
			continue
		}
		if e.Penalty.Code == penalty.CodeMajorPenal {
			pts += 2
		} else {
			pts++
		}
	}
	return pts
}

// CheckPenalty evaluates the accumulation thresholds after a penalty was
// logged. Three points is an ejection; two is the one-away warning.
func CheckPenalty(log match.Log, team match.Team, subject match.Entity) *Signal {
	pts := PenaltyPoints(log, team, subject.ID())
	switch {
	case pts >= 3:
		return &Signal{
			Kind: KindThirdPenalty, Severity: SeverityEjection, Team: team, Subject: subject,
			Message: fmt.Sprintf("Accumulation of %d penalty points. Player must be ejected.", pts),
		}
	case pts == 2:
		return &Signal{
			Kind: KindSecondPenalty, Severity: SeverityWarning, Team: team, Subject: subject,
			Message: "Player has 2 penalty points. One penalty away from ejection.",
		}
	}
	return nil
}
