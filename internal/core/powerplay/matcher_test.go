package powerplay

import (
	"testing"

	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/match"
)

func stamp(q clock.Quarter, min, sec int) clock.Stamp {
	return clock.Stamp{Quarter: q, Remaining: clock.Point{Min: min, Sec: sec}}
}

func openPenalty(team match.Team, start, release clock.Stamp) match.Event {
	t := start.Remaining
	rel := release
	return match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindTimePenalty,
		Quarter: start.Quarter,
		Time:    &t,
		Entity:  match.PlayerEntity(match.Player{ID: match.NewID(), Number: "5", Name: "Moreau"}),
		Penalty: &match.PenaltyDetail{
			Color: match.CardBlue, Code: "B7",
			DurationMinutes: 2, Releasable: true, Release: &rel,
		},
	}
}

func ppGoal(team match.Team, at clock.Stamp) match.Event {
	t := at.Remaining
	return match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindGoal,
		Quarter: at.Quarter,
		Time:    &t,
		Entity:  match.PlayerEntity(match.Player{ID: "s1", Number: "10", Name: "Kato"}),
		Goal:    &match.GoalDetail{PowerPlay: true},
	}
}

func TestMatchInsideWindow(t *testing.T) {
	pen := openPenalty(match.TeamHome, stamp(clock.Q2, 2, 0), stamp(clock.Q2, 0, 0))
	l := match.Log{}.Prepend(pen)

	res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q2, 1, 0)))
	if res.NeedsManual || res.PenaltyID != pen.ID {
		t.Fatalf("result = %+v, want match on %s", res, pen.ID)
	}
}

func TestMatchWindowBoundsInclusive(t *testing.T) {
	pen := openPenalty(match.TeamHome, stamp(clock.Q2, 2, 0), stamp(clock.Q2, 0, 0))
	l := match.Log{}.Prepend(pen)

	for _, at := range []clock.Stamp{stamp(clock.Q2, 2, 0), stamp(clock.Q2, 0, 0)} {
		res := Match(l, ppGoal(match.TeamAway, at))
		if res.NeedsManual {
			t.Errorf("goal at %s should match the boundary", at)
		}
	}
	// One second before the penalty started.
	if res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q2, 2, 1))); !res.NeedsManual {
		t.Error("goal before the window matched")
	}
}

func TestMatchOutsideWindowNeedsManual(t *testing.T) {
	pen := openPenalty(match.TeamHome, stamp(clock.Q2, 2, 0), stamp(clock.Q2, 0, 0))
	l := match.Log{}.Prepend(pen)

	res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q1, 14, 0)))
	if !res.NeedsManual {
		t.Fatalf("result = %+v, want manual resolution", res)
	}
}

func TestMatchWindowCrossesQuarterBoundary(t *testing.T) {
	pen := openPenalty(match.TeamHome, stamp(clock.Q1, 1, 0), stamp(clock.Q2, 14, 0))
	l := match.Log{}.Prepend(pen)

	res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q2, 14, 30)))
	if res.NeedsManual || res.PenaltyID != pen.ID {
		t.Fatalf("result = %+v, want match across the boundary", res)
	}
}

func TestMatchPrefersNewestStart(t *testing.T) {
	older := openPenalty(match.TeamHome, stamp(clock.Q2, 5, 0), stamp(clock.Q2, 3, 0))
	newer := openPenalty(match.TeamHome, stamp(clock.Q2, 4, 0), stamp(clock.Q2, 2, 0))
	l := match.Log{}.Prepend(older).Prepend(newer)

	res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q2, 3, 30)))
	if res.PenaltyID != newer.ID {
		t.Fatalf("matched %s, want the newest-started penalty %s", res.PenaltyID, newer.ID)
	}
}

func TestMatchIdenticalWindowsFallBackToInsertionOrder(t *testing.T) {
	first := openPenalty(match.TeamHome, stamp(clock.Q2, 4, 0), stamp(clock.Q2, 2, 0))
	second := openPenalty(match.TeamHome, stamp(clock.Q2, 4, 0), stamp(clock.Q2, 2, 0))
	l := match.Log{}.Prepend(first).Prepend(second)

	res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q2, 3, 0)))
	if res.PenaltyID != second.ID {
		t.Fatalf("matched %s, want the most recently inserted %s", res.PenaltyID, second.ID)
	}
}

func TestMatchSkipsResolvedAndNonReleasable(t *testing.T) {
	resolved := openPenalty(match.TeamHome, stamp(clock.Q2, 4, 0), stamp(clock.Q2, 2, 0))
	rel := stamp(clock.Q2, 3, 45)
	resolved.Penalty.ActualRelease = &rel

	cleared := openPenalty(match.TeamHome, stamp(clock.Q2, 4, 0), stamp(clock.Q2, 2, 0))
	cleared.Penalty.ClearedFromBoard = true

	yellow := openPenalty(match.TeamHome, stamp(clock.Q2, 4, 0), stamp(clock.Q2, 2, 0))
	yellow.Penalty.Releasable = false

	l := match.Log{}.Prepend(resolved).Prepend(cleared).Prepend(yellow)
	if res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q2, 3, 0))); !res.NeedsManual {
		t.Fatalf("result = %+v, want manual — no live candidate", res)
	}
}

func TestMatchIgnoresOwnTeamPenalty(t *testing.T) {
	pen := openPenalty(match.TeamAway, stamp(clock.Q2, 4, 0), stamp(clock.Q2, 2, 0))
	l := match.Log{}.Prepend(pen)

	if res := Match(l, ppGoal(match.TeamAway, stamp(clock.Q2, 3, 0))); !res.NeedsManual {
		t.Fatal("scoring team's own penalty matched")
	}
}

func TestApplyClosesOnce(t *testing.T) {
	pen := openPenalty(match.TeamHome, stamp(clock.Q2, 2, 0), stamp(clock.Q2, 0, 0))
	l := match.Log{}.Prepend(pen)
	at := stamp(clock.Q2, 1, 0)

	l, ok := Apply(l, pen.ID, at)
	if !ok {
		t.Fatal("first apply failed")
	}
	got, _, _ := l.Find(pen.ID)
	if got.Penalty.ActualRelease == nil || *got.Penalty.ActualRelease != at {
		t.Fatalf("actual release = %v, want %s", got.Penalty.ActualRelease, at)
	}
	if !got.Penalty.ClearedFromBoard {
		t.Fatal("penalty still on the board after release")
	}

	if _, ok := Apply(l, pen.ID, stamp(clock.Q2, 0, 30)); ok {
		t.Fatal("penalty closed twice")
	}
	if _, ok := Apply(l, "missing", at); ok {
		t.Fatal("apply on an unknown id succeeded")
	}
}
