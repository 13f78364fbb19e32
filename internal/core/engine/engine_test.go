package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/dwolgast/matchlog/internal/config"
	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/discipline"
	"github.com/dwolgast/matchlog/internal/core/match"
	"github.com/dwolgast/matchlog/internal/core/penalty"
	"github.com/dwolgast/matchlog/internal/events"
)

func testRules() config.Rules {
	return config.Rules{
		PenaltyCodes: map[match.CardColor][]config.PenaltyCode{
			match.CardBlue: {
				{Code: "B1", Desc: "Too Many Men"},
				{Code: "B7", Desc: "Trip"},
			},
			match.CardYellow: {
				{Code: "Y1", Desc: "Dissent"},
				{Code: "Y6", Desc: "Major Penal Penalty"},
			},
			match.CardRed: {{Code: "R1", Desc: "Violent Conduct"}},
		},
		WarningReasons: []string{"Delay of Game", "Encroachment"},
	}
}

func testEngine() *Engine {
	return New(testRules(), events.NewBus(), nil)
}

func stamp(q clock.Quarter, min, sec int) clock.Stamp {
	return clock.Stamp{Quarter: q, Remaining: clock.Point{Min: min, Sec: sec}}
}

var (
	scorer   = match.PlayerEntity(match.Player{ID: "s1", Number: "10", Name: "Kato"})
	offender = match.PlayerEntity(match.Player{ID: "o1", Number: "5", Name: "Moreau"})
	server   = match.Player{ID: "v1", Number: "4", Name: "Okafor"}
)

func TestLogGoalRejectsSelfAssist(t *testing.T) {
	e := testEngine()
	self := scorer
	_, err := e.LogGoal(match.TeamAway, stamp(clock.Q1, 10, 0), scorer, &self, GoalFlags{})
	if !errors.Is(err, ErrScorerIsAssister) {
		t.Fatalf("err = %v, want ErrScorerIsAssister", err)
	}
	if len(e.Log()) != 0 {
		t.Fatal("rejected goal still entered the log")
	}
}

func TestLogGoalScore(t *testing.T) {
	e := testEngine()
	if _, err := e.LogGoal(match.TeamAway, stamp(clock.Q1, 10, 0), scorer, nil, GoalFlags{}); err != nil {
		t.Fatal(err)
	}
	if e.Score(match.TeamAway) != 1 || e.Score(match.TeamHome) != 0 {
		t.Fatalf("score %d-%d, want 1-0", e.Score(match.TeamAway), e.Score(match.TeamHome))
	}
}

func TestPowerPlayGoalClosesPenalty(t *testing.T) {
	e := testEngine()
	created, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q2, 2, 0), match.CardBlue, "B7", offender, nil)
	if err != nil {
		t.Fatal(err)
	}
	penID := created[0].ID

	goalAt := stamp(clock.Q2, 1, 0)
	if _, err := e.LogGoal(match.TeamAway, goalAt, scorer, nil, GoalFlags{PowerPlay: true}); err != nil {
		t.Fatal(err)
	}

	got, _, _ := e.Log().Find(penID)
	if got.Penalty.ActualRelease == nil || *got.Penalty.ActualRelease != goalAt {
		t.Fatalf("penalty not released at the goal: %+v", got.Penalty)
	}
	if !got.Penalty.ClearedFromBoard {
		t.Fatal("released penalty still on the board")
	}
}

func TestPowerPlayGoalOutsideWindowNeedsManual(t *testing.T) {
	bus := events.NewBus()
	var manual int
	bus.Subscribe(events.TypeManualReleaseRequired, func(events.Notification) error {
		manual++
		return nil
	})
	e := New(testRules(), bus, nil)

	created, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q2, 2, 0), match.CardBlue, "B7", offender, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.LogGoal(match.TeamAway, stamp(clock.Q1, 14, 0), scorer, nil, GoalFlags{PowerPlay: true}); err != nil {
		t.Fatal(err)
	}
	if manual != 1 {
		t.Fatalf("manual requests = %d, want 1", manual)
	}

	// Operator resolves by hand.
	at := stamp(clock.Q2, 1, 30)
	if err := e.ResolvePenaltyManually(created[0].ID, at); err != nil {
		t.Fatal(err)
	}
	got, _, _ := e.Log().Find(created[0].ID)
	if got.Penalty.ActualRelease == nil || *got.Penalty.ActualRelease != at {
		t.Fatalf("manual release lost: %+v", got.Penalty)
	}
	// A second resolution must not rewrite history.
	if err := e.ResolvePenaltyManually(created[0].ID, stamp(clock.Q2, 1, 0)); !errors.Is(err, penalty.ErrAlreadyResolved) {
		t.Fatalf("double resolve = %v, want ErrAlreadyResolved", err)
	}
}

func TestLogTimePenaltyMajorPairAtomic(t *testing.T) {
	e := testEngine()
	created, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 12, 0), match.CardYellow, "Y6", offender, &server)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d events, want the linked pair", len(created))
	}
	if len(e.Log()) != 2 {
		t.Fatalf("log has %d events, want 2", len(e.Log()))
	}
	off, srv := created[0], created[1]
	if off.Penalty.PairID == "" || off.Penalty.PairID != srv.Penalty.PairID {
		t.Fatal("pair halves not linked")
	}
	if !srv.Penalty.ServesForMajor {
		t.Fatal("second half is not the server entry")
	}
}

func TestLogTimePenaltyMajorWithoutServerRejected(t *testing.T) {
	e := testEngine()
	_, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 12, 0), match.CardYellow, "Y6", offender, nil)
	if !errors.Is(err, ErrServerRequired) {
		t.Fatalf("err = %v, want ErrServerRequired", err)
	}
	if len(e.Log()) != 0 {
		t.Fatal("partial pair reached the log")
	}
}

func TestLogTimePenaltyServerRequiredForGoalkeeperAndTeamPenalty(t *testing.T) {
	e := testEngine()
	gk := match.PlayerEntity(match.Player{ID: "g1", Number: "1", Name: "Dube", IsGoalkeeper: true})

	_, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 12, 0), match.CardBlue, "B7", gk, nil)
	if !errors.Is(err, ErrServerRequired) {
		t.Fatalf("goalkeeper without server = %v, want ErrServerRequired", err)
	}
	_, _, err = e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 12, 0), match.CardBlue, "B1", match.TeamBench(), nil)
	if !errors.Is(err, ErrServerRequired) {
		t.Fatalf("team penalty without server = %v, want ErrServerRequired", err)
	}

	created, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 12, 0), match.CardBlue, "B1", match.TeamBench(), &server)
	if err != nil {
		t.Fatal(err)
	}
	d := created[0].Penalty
	if d.DurationMinutes != 2 || d.ServedBy == nil || d.ServedBy.ID != server.ID {
		t.Fatalf("team penalty = %+v, want 2 minutes served by the nominee", d)
	}
}

func TestLogTimePenaltyUnknownCode(t *testing.T) {
	e := testEngine()
	_, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 12, 0), match.CardBlue, "B99", offender, nil)
	if !errors.Is(err, ErrUnknownCode) {
		t.Fatalf("err = %v, want ErrUnknownCode", err)
	}
}

func TestLogFoulSignalsThreshold(t *testing.T) {
	e := testEngine()
	var sig *discipline.Signal
	for _, q := range []clock.Quarter{clock.Q1, clock.Q1, clock.Q1} {
		var err error
		_, sig, err = e.LogFoul(match.TeamAway, q, offender)
		if err != nil {
			t.Fatal(err)
		}
	}
	if sig == nil || sig.Kind != discipline.KindThirdFoulHalf {
		t.Fatalf("third foul signal = %+v", sig)
	}
}

func TestAttributeFoulRechecksThresholds(t *testing.T) {
	e := testEngine()
	e.LogFoul(match.TeamAway, clock.Q1, offender)
	e.LogFoul(match.TeamAway, clock.Q1, offender)
	ev, _, err := e.LogFoul(match.TeamAway, clock.Q1, match.Unattributed())
	if err != nil {
		t.Fatal(err)
	}

	sig, err := e.AttributeFoul(ev.ID, offender)
	if err != nil {
		t.Fatal(err)
	}
	if sig == nil || sig.Kind != discipline.KindThirdFoulHalf {
		t.Fatalf("attribution signal = %+v, want third-foul warning", sig)
	}
	if e.Log().UnattributedFouls(clock.Q1) != 0 {
		t.Fatal("foul still unattributed")
	}
}

func TestLogWarningRepeatEscalates(t *testing.T) {
	e := testEngine()
	if _, sig, err := e.LogWarning(match.TeamHome, stamp(clock.Q1, 9, 0), "Delay of Game"); err != nil || sig != nil {
		t.Fatalf("first warning: sig=%+v err=%v", sig, err)
	}
	_, sig, err := e.LogWarning(match.TeamHome, stamp(clock.Q2, 9, 0), "Delay of Game")
	if err != nil {
		t.Fatal(err)
	}
	if sig == nil || sig.Kind != discipline.KindRepeatedWarning {
		t.Fatalf("repeat signal = %+v", sig)
	}

	if _, _, err := e.LogWarning(match.TeamHome, stamp(clock.Q2, 8, 0), "Made Up Reason"); !errors.Is(err, ErrUnknownReason) {
		t.Fatalf("unknown reason = %v", err)
	}
}

func TestEditEventTimeRecomputesOpenPenalty(t *testing.T) {
	e := testEngine()
	created, _, err := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 10, 0), match.CardBlue, "B7", offender, nil)
	if err != nil {
		t.Fatal(err)
	}
	id := created[0].ID

	if err := e.EditEventTime(id, stamp(clock.Q3, 5, 0)); err != nil {
		t.Fatal(err)
	}
	got, _, _ := e.Log().Find(id)
	if got.Quarter != clock.Q3 || got.Time.String() != "05:00" {
		t.Fatalf("event time = %s %s", got.Quarter, got.Time)
	}
	want := stamp(clock.Q3, 3, 0)
	if got.Penalty.Release == nil || *got.Penalty.Release != want {
		t.Fatalf("release = %v, want %s", got.Penalty.Release, want)
	}
}

func TestEditEventTimeLeavesClearedPenaltyAlone(t *testing.T) {
	e := testEngine()
	created, _, _ := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 10, 0), match.CardBlue, "B7", offender, nil)
	id := created[0].ID
	origRelease := *created[0].Penalty.Release

	if err := e.ExpirePenalty(id); err != nil {
		t.Fatal(err)
	}
	if err := e.EditEventTime(id, stamp(clock.Q2, 5, 0)); err != nil {
		t.Fatal(err)
	}
	got, _, _ := e.Log().Find(id)
	if *got.Penalty.Release != origRelease {
		t.Fatalf("cleared penalty rescheduled to %v", got.Penalty.Release)
	}
}

func TestEditInjuryRecomputesReturn(t *testing.T) {
	e := testEngine()
	ev, err := e.LogInjury(match.TeamAway, stamp(clock.Q1, 10, 0), offender)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.EditEventTime(ev.ID, stamp(clock.Q1, 1, 0)); err != nil {
		t.Fatal(err)
	}
	got, _, _ := e.Log().Find(ev.ID)
	want := stamp(clock.Q2, 15, 0)
	if got.Injury.EligibleReturn == nil || *got.Injury.EligibleReturn != want {
		t.Fatalf("return = %v, want %s", got.Injury.EligibleReturn, want)
	}

	// Once cleared, edits stop touching the schedule.
	if err := e.ClearInjury(ev.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.EditEventTime(ev.ID, stamp(clock.Q3, 10, 0)); err != nil {
		t.Fatal(err)
	}
	got, _, _ = e.Log().Find(ev.ID)
	if *got.Injury.EligibleReturn != want {
		t.Fatalf("cleared injury rescheduled to %v", got.Injury.EligibleReturn)
	}
}

func TestPeriodLifecycle(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 14, 19, 5, 0, 0, time.UTC)

	if _, err := e.StartPeriod(now); err != nil {
		t.Fatal(err)
	}
	if !e.Running() {
		t.Fatal("period not running after start")
	}
	if _, err := e.StartPeriod(now); err == nil {
		t.Fatal("double start accepted")
	}

	e.LogFoul(match.TeamAway, clock.Q1, match.Unattributed())

	_, unattributed, err := e.EndPeriod(now.Add(16 * time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if unattributed != 1 {
		t.Fatalf("unattributed count = %d, want 1", unattributed)
	}
	if e.Running() {
		t.Fatal("still running after end")
	}
	if e.Quarter() != clock.Q2 {
		t.Fatalf("quarter = %s, want Q2", e.Quarter())
	}
}

func TestEndPeriodQ4NeedsManualOvertimeDecision(t *testing.T) {
	e := testEngine()
	if err := e.SetQuarter(clock.Q4); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	if _, err := e.StartPeriod(now); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.EndPeriod(now); err != nil {
		t.Fatal(err)
	}
	if e.Quarter() != clock.Q4 {
		t.Fatalf("quarter = %s, want Q4 until the referee calls overtime", e.Quarter())
	}
	if err := e.SetQuarter(clock.OT); err != nil {
		t.Fatal(err)
	}
	if e.Quarter() != clock.OT {
		t.Fatalf("quarter = %s after the manual switch", e.Quarter())
	}
}

func TestDeleteEventRemovesContribution(t *testing.T) {
	e := testEngine()
	ev, _, err := e.LogFoul(match.TeamAway, clock.Q1, offender)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteEvent(ev.ID); err != nil {
		t.Fatal(err)
	}
	if len(e.Log()) != 0 {
		t.Fatal("event survived deletion")
	}
	if err := e.DeleteEvent(ev.ID); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("second delete = %v, want ErrUnknownEvent", err)
	}
}

func TestOverrideRelease(t *testing.T) {
	e := testEngine()
	created, _, _ := e.LogTimePenalty(match.TeamHome, stamp(clock.Q1, 10, 0), match.CardBlue, "B7", offender, nil)
	id := created[0].ID

	at := stamp(clock.Q1, 7, 15)
	if err := e.OverrideRelease(id, at); err != nil {
		t.Fatal(err)
	}
	got, _, _ := e.Log().Find(id)
	if got.Penalty.Release == nil || *got.Penalty.Release != at {
		t.Fatalf("release = %v, want %s", got.Penalty.Release, at)
	}
}
