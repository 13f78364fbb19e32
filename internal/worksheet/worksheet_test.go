package worksheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/match"
)

var info = match.Info{AwayTeam: "Mariners", HomeTeam: "Pioneers", Venue: "Harbor Arena", City: "Norfolk"}

func stamp(q clock.Quarter, min, sec int) clock.Stamp {
	return clock.Stamp{Quarter: q, Remaining: clock.Point{Min: min, Sec: sec}}
}

func sampleLog() match.Log {
	goalTime := clock.Point{Min: 11, Sec: 30}
	rel := stamp(clock.Q2, 4, 0)
	penTime := clock.Point{Min: 6, Sec: 0}
	return match.Log{}.
		Prepend(match.Event{
			ID: "g1", Team: match.TeamAway, Kind: match.KindGoal, Quarter: clock.Q1, Time: &goalTime,
			Entity: match.PlayerEntity(match.Player{ID: "a7", Number: "7", Name: "Reyes"}),
			Goal:   &match.GoalDetail{PowerPlay: true},
		}).
		Prepend(match.Event{
			ID: "p1", Team: match.TeamHome, Kind: match.KindTimePenalty, Quarter: clock.Q2, Time: &penTime,
			Entity: match.PlayerEntity(match.Player{ID: "h10", Number: "10", Name: "Kato"}),
			Penalty: &match.PenaltyDetail{
				Color: match.CardBlue, Code: "B7", DurationMinutes: 2, Releasable: true, Release: &rel,
			},
		})
}

func TestTranscriptChronological(t *testing.T) {
	var buf bytes.Buffer
	Transcript(&buf, info, sampleLog())
	out := buf.String()

	goalIdx := strings.Index(out, "GOAL #7 Reyes")
	penIdx := strings.Index(out, "Blue Card B7 #10 Kato")
	if goalIdx < 0 || penIdx < 0 {
		t.Fatalf("transcript missing entries:\n%s", out)
	}
	// The goal happened first and must print first.
	if goalIdx > penIdx {
		t.Errorf("transcript not in match order:\n%s", out)
	}
	if !strings.Contains(out, "[PP]") {
		t.Errorf("power-play marker missing:\n%s", out)
	}
}

func TestDescribe(t *testing.T) {
	assist := match.PlayerEntity(match.Player{ID: "a3", Number: "3", Name: "Okafor"})
	goalTime := clock.Point{Min: 5, Sec: 0}
	goal := match.Event{
		Team: match.TeamAway, Kind: match.KindGoal, Quarter: clock.Q1, Time: &goalTime,
		Entity: match.PlayerEntity(match.Player{Number: "7", Name: "Reyes"}),
		Goal:   &match.GoalDetail{Assist: &assist},
	}
	if got := Describe(goal); !strings.Contains(got, "assist #3 Okafor") {
		t.Errorf("Describe(goal) = %q", got)
	}

	warning := match.Event{
		Kind: match.KindTeamWarning, Entity: match.TeamBench(),
		Warning: &match.WarningDetail{Reason: "Delay of Game"},
	}
	if got := Describe(warning); got != "Team Warning [Delay of Game]" {
		t.Errorf("Describe(warning) = %q", got)
	}

	marker := match.Event{
		Kind: match.KindPeriodMarker, Quarter: clock.Q2,
		Period: &match.PeriodDetail{Action: "End", WallClock: "19:58"},
	}
	if got := Describe(marker); got != "End of Q2 (19:58)" {
		t.Errorf("Describe(marker) = %q", got)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, info, sampleLog())
	if got := strings.TrimSpace(buf.String()); got != "Mariners 1 — 0 Pioneers" {
		t.Errorf("summary = %q", got)
	}
}

func TestAudit(t *testing.T) {
	l := sampleLog()
	issues := Audit(l)
	if len(issues) != 1 || !strings.Contains(issues[0], "open penalty") {
		t.Fatalf("issues = %v, want the open penalty", issues)
	}

	// Close the penalty and the sheet is ready.
	l, _ = l.Update("p1", func(e *match.Event) {
		e.Penalty.ClearedFromBoard = true
	})
	if issues := Audit(l); len(issues) != 0 {
		t.Fatalf("issues = %v, want none", issues)
	}

	// An unattributed foul blocks export again.
	l = l.Prepend(match.Event{
		ID: "f1", Team: match.TeamAway, Kind: match.KindFoul, Quarter: clock.Q3,
		Entity: match.Unattributed(),
	})
	issues = Audit(l)
	if len(issues) != 1 || !strings.Contains(issues[0], "unattributed foul") {
		t.Fatalf("issues = %v, want the unattributed foul", issues)
	}
}

func TestBoardListsOpenPenaltiesAndInjuries(t *testing.T) {
	ret := stamp(clock.Q1, 8, 0)
	injTime := clock.Point{Min: 10, Sec: 0}
	l := sampleLog().Prepend(match.Event{
		ID: "i1", Team: match.TeamAway, Kind: match.KindInjury, Quarter: clock.Q1, Time: &injTime,
		Entity: match.PlayerEntity(match.Player{Number: "9", Name: "Silva"}),
		Injury: &match.InjuryDetail{EligibleReturn: &ret},
	})

	var buf bytes.Buffer
	Board(&buf, info, l)
	out := buf.String()
	if !strings.Contains(out, "#10 Kato") || !strings.Contains(out, "Q2 04:00") {
		t.Errorf("board missing the open penalty:\n%s", out)
	}
	if !strings.Contains(out, "#9 Silva") || !strings.Contains(out, "Q1 08:00") {
		t.Errorf("board missing the injury:\n%s", out)
	}
}
