// Package engine is the synchronous action handler: every operator action
// runs one method to completion before the next is accepted. Methods
// derive from the current log snapshot, append or mutate exactly one
// event (the major penal pair and the single-target power-play close are
// the two stated exceptions), persist, and notify the bus.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/dwolgast/matchlog/internal/config"
	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/discipline"
	"github.com/dwolgast/matchlog/internal/core/match"
	"github.com/dwolgast/matchlog/internal/core/penalty"
	"github.com/dwolgast/matchlog/internal/core/powerplay"
	"github.com/dwolgast/matchlog/internal/events"
	"github.com/dwolgast/matchlog/internal/store"
	"github.com/dwolgast/matchlog/internal/telemetry"
)

var (
	ErrScorerIsAssister = errors.New("the goal scorer cannot also be credited with the assist")
	ErrUnknownEvent     = errors.New("no event with that identity")
	ErrUnknownCode      = errors.New("penalty code not in catalog")
	ErrUnknownReason    = errors.New("warning reason not in catalog")
	ErrServerRequired   = errors.New("major penal penalty requires a substitute server")
)

// GoalFlags mark how a goal was scored.
type GoalFlags struct {
	PowerPlay   bool
	Shootout    bool
	PenaltyKick bool
}

// Engine holds the live match state. There is exactly one logical writer
// — the operator's action handler — so no locking discipline is needed;
// the break timer only ever reads the immutable quarter value.
type Engine struct {
	info    match.Info
	away    match.Roster
	home    match.Roster
	log     match.Log
	quarter clock.Quarter
	running bool

	rules config.Rules
	bus   *events.Bus
	store *store.Store // nil in tests that don't exercise persistence
}

// New builds an engine with empty state.
func New(rules config.Rules, bus *events.Bus, st *store.Store) *Engine {
	return &Engine{rules: rules, bus: bus, store: st, quarter: clock.Q1}
}

// Rehydrate restores engine state from the store's snapshot.
func Rehydrate(rules config.Rules, bus *events.Bus, st *store.Store) (*Engine, error) {
	e := New(rules, bus, st)
	if st == nil {
		return e, nil
	}
	snap, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("rehydrate: %w", err)
	}
	e.info = snap.Info
	e.away = snap.AwayRoster
	e.home = snap.HomeRoster
	e.log = snap.Events
	e.quarter = snap.Quarter
	e.running = snap.Running
	return e, nil
}

// Log returns the current snapshot. Callers must treat it as immutable.
func (e *Engine) Log() match.Log         { return e.log }
func (e *Engine) Quarter() clock.Quarter { return e.quarter }
func (e *Engine) Running() bool          { return e.running }
func (e *Engine) Info() match.Info       { return e.info }
func (e *Engine) SetInfo(i match.Info)   { e.info = i; e.persist() }

// Roster returns the mutable roster for a side.
func (e *Engine) Roster(t match.Team) *match.Roster {
	if t == match.TeamAway {
		return &e.away
	}
	return &e.home
}

// SetQuarter moves the live quarter, e.g. the manual switch into overtime.
func (e *Engine) SetQuarter(q clock.Quarter) error {
	if !q.Playable() {
		return fmt.Errorf("set quarter: %w", clock.ErrInvalidTime)
	}
	e.quarter = q
	e.persist()
	return nil
}

func (e *Engine) Score(t match.Team) int { return e.log.Goals(t) }

// LogGoal finalizes a goal. A power-play goal is matched against the
// opposing team's open releasable penalties; when one fits it is closed
// at the goal's time, otherwise the bus carries a manual-resolution
// request for the operator.
func (e *Engine) LogGoal(team match.Team, at clock.Stamp, scorer match.Entity, assist *match.Entity, flags GoalFlags) (match.Event, error) {
	if err := at.Validate(); err != nil {
		return match.Event{}, err
	}
	if assist != nil && assist.ID() != "" && assist.ID() == scorer.ID() {
		return match.Event{}, ErrScorerIsAssister
	}
	t := at.Remaining
	ev := match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindGoal,
		Quarter: at.Quarter,
		Time:    &t,
		Entity:  scorer,
		Goal: &match.GoalDetail{
			Assist:      assist,
			PowerPlay:   flags.PowerPlay,
			Shootout:    flags.Shootout,
			PenaltyKick: flags.PenaltyKick,
		},
	}
	e.log = e.log.Prepend(ev)

	if flags.PowerPlay {
		res := powerplay.Match(e.log, ev)
		if res.NeedsManual {
			telemetry.Metrics.PowerPlayManual.Inc()
			e.publish(events.TypeManualReleaseRequired, team, ev)
		} else {
			e.log, _ = powerplay.Apply(e.log, res.PenaltyID, at)
			telemetry.Metrics.PowerPlayAutoMatch.Inc()
			telemetry.Infof("penalty %s released on power-play goal at %s", res.PenaltyID, at)
			e.publish(events.TypeBoardChanged, team.Opponent(), res.PenaltyID)
		}
	}

	e.logged(ev)
	return ev, nil
}

// ResolvePenaltyManually closes a releasable penalty at an
// operator-supplied time when no goal matched automatically.
func (e *Engine) ResolvePenaltyManually(penaltyID string, at clock.Stamp) error {
	if err := at.Validate(); err != nil {
		return err
	}
	updated, ok := powerplay.Apply(e.log, penaltyID, at)
	if !ok {
		if _, _, found := e.log.Find(penaltyID); !found {
			return ErrUnknownEvent
		}
		return penalty.ErrAlreadyResolved
	}
	e.log = updated
	e.publish(events.TypeBoardChanged, match.TeamSystem, penaltyID)
	e.edited(penaltyID)
	return nil
}

// LogFoul records a foul. Fouls carry no clock reading and may be left
// unattributed for later assignment. The returned signal, if any, is the
// single highest-priority escalation the foul triggered.
func (e *Engine) LogFoul(team match.Team, quarter clock.Quarter, entity match.Entity) (match.Event, *discipline.Signal, error) {
	if !quarter.Playable() {
		return match.Event{}, nil, fmt.Errorf("log foul: %w", clock.ErrInvalidTime)
	}
	ev := match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindFoul,
		Quarter: quarter,
		Entity:  entity,
	}
	e.log = e.log.Prepend(ev)
	sig := discipline.CheckFoul(e.log, team, entity, quarter)
	e.logged(ev)
	e.signal(sig)
	return ev, sig, nil
}

// LogTimePenalty records a time penalty. The Y6 major penal code creates
// the linked offender/server pair atomically — both events or neither.
// Other codes produce a single event, optionally served by a substitute.
func (e *Engine) LogTimePenalty(team match.Team, at clock.Stamp, color match.CardColor, code string, offender match.Entity, server *match.Player) ([]match.Event, *discipline.Signal, error) {
	if err := at.Validate(); err != nil {
		return nil, nil, err
	}
	pc, ok := e.rules.Lookup(color, code)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s %s", ErrUnknownCode, color, code)
	}

	var created []match.Event
	if code == penalty.CodeMajorPenal {
		if server == nil {
			return nil, nil, ErrServerRequired
		}
		offEv, srvEv := penalty.MajorPair(team, offender, *server, at, pc.Desc)
		e.log = e.log.Prepend(offEv).Prepend(srvEv)
		created = []match.Event{offEv, srvEv}
	} else {
		if server == nil && penalty.NeedsServer(offender, code) {
			return nil, nil, ErrServerRequired
		}
		sched := penalty.Compute(color, code, e.Roster(team).IsBenchStaff(offender), at)
		t := at.Remaining
		ev := match.Event{
			ID:      match.NewID(),
			Team:    team,
			Kind:    match.KindTimePenalty,
			Quarter: at.Quarter,
			Time:    &t,
			Entity:  offender,
			Penalty: &match.PenaltyDetail{
				Color:           color,
				Code:            code,
				Description:     pc.Desc,
				DurationMinutes: sched.DurationMinutes,
				Releasable:      sched.Releasable,
				Release:         sched.Release,
				MajorRelease:    sched.MajorRelease,
				ServedBy:        server,
			},
		}
		e.log = e.log.Prepend(ev)
		created = []match.Event{ev}
	}

	sig := discipline.CheckPenalty(e.log, team, offender)
	for _, ev := range created {
		e.logged(ev)
	}
	e.signal(sig)
	return created, sig, nil
}

// LogInjury records an injury and its eligible-return time.
func (e *Engine) LogInjury(team match.Team, at clock.Stamp, player match.Entity) (match.Event, error) {
	if err := at.Validate(); err != nil {
		return match.Event{}, err
	}
	ret := penalty.InjuryReturn(at)
	t := at.Remaining
	ev := match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindInjury,
		Quarter: at.Quarter,
		Time:    &t,
		Entity:  player,
		Injury:  &match.InjuryDetail{EligibleReturn: &ret},
	}
	e.log = e.log.Prepend(ev)
	e.logged(ev)
	return ev, nil
}

// LogTimeout records a team or media timeout.
func (e *Engine) LogTimeout(team match.Team, at clock.Stamp, media bool) (match.Event, error) {
	if err := at.Validate(); err != nil {
		return match.Event{}, err
	}
	kind := match.KindTeamTimeout
	if media {
		kind = match.KindMediaTimeout
	}
	t := at.Remaining
	ev := match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    kind,
		Quarter: at.Quarter,
		Time:    &t,
		Entity:  match.TeamBench(),
	}
	e.log = e.log.Prepend(ev)
	e.logged(ev)
	return ev, nil
}

// LogWarning records a team warning. A repeat of the same (team, reason)
// pair raises the escalation signal requiring a disciplinary card against
// whoever committed the repeated offense.
func (e *Engine) LogWarning(team match.Team, at clock.Stamp, reason string) (match.Event, *discipline.Signal, error) {
	if err := at.Validate(); err != nil {
		return match.Event{}, nil, err
	}
	if !e.rules.ValidWarningReason(reason) {
		return match.Event{}, nil, fmt.Errorf("%w: %q", ErrUnknownReason, reason)
	}
	sig := discipline.CheckWarning(e.log, team, reason, "")
	t := at.Remaining
	ev := match.Event{
		ID:      match.NewID(),
		Team:    team,
		Kind:    match.KindTeamWarning,
		Quarter: at.Quarter,
		Time:    &t,
		Entity:  match.TeamBench(),
		Warning: &match.WarningDetail{Reason: reason},
	}
	e.log = e.log.Prepend(ev)
	e.logged(ev)
	e.signal(sig)
	return ev, sig, nil
}

// StartPeriod marks the live quarter as running.
func (e *Engine) StartPeriod(now time.Time) (match.Event, error) {
	if e.running {
		return match.Event{}, errors.New("period already running")
	}
	ev := e.periodMarker("Start", now)
	e.running = true
	e.log = e.log.Prepend(ev)
	e.logged(ev)
	e.publish(events.TypePeriodChanged, match.TeamSystem, ev)
	return ev, nil
}

// EndPeriod marks the quarter over and advances to the next one. The
// returned count is the quarter's unattributed fouls still needing a
// player before the worksheet can go out.
func (e *Engine) EndPeriod(now time.Time) (match.Event, int, error) {
	if !e.running {
		return match.Event{}, 0, errors.New("period not running")
	}
	ended := e.quarter
	ev := e.periodMarker("End", now)
	e.running = false
	e.log = e.log.Prepend(ev)

	unattributed := e.log.UnattributedFouls(ended)
	if unattributed > 0 {
		telemetry.Warnf("%d unattributed foul(s) in %s — assign them before generating the report", unattributed, ended)
	}
	// Q1-Q3 roll into the next quarter; whether Q4 continues into
	// overtime is the referee's call, made through SetQuarter.
	if ended < clock.Q4 {
		next, _ := ended.Next()
		e.quarter = next
	}
	e.logged(ev)
	e.publish(events.TypePeriodChanged, match.TeamSystem, ev)
	return ev, unattributed, nil
}

func (e *Engine) periodMarker(action string, now time.Time) match.Event {
	return match.Event{
		ID:      match.NewID(),
		Team:    match.TeamSystem,
		Kind:    match.KindPeriodMarker,
		Quarter: e.quarter,
		Entity:  match.TeamBench(),
		Period: &match.PeriodDetail{
			Action:    action,
			WallClock: now.Format("15:04"),
		},
	}
}

// EditEventTime corrects an event's quarter and clock time. Open
// penalties and uncleared injuries get fresh schedules from the corrected
// input; resolved history is never recomputed.
func (e *Engine) EditEventTime(id string, at clock.Stamp) error {
	if err := at.Validate(); err != nil {
		return err
	}
	updated, ok := e.log.Update(id, func(ev *match.Event) {
		ev.Quarter = at.Quarter
		t := at.Remaining
		ev.Time = &t
		if ev.Penalty != nil {
			penalty.Recompute(ev.Penalty, at)
		}
		if ev.Injury != nil && !ev.Injury.Cleared {
			ret := penalty.InjuryReturn(at)
			ev.Injury.EligibleReturn = &ret
		}
	})
	if !ok {
		return ErrUnknownEvent
	}
	e.log = updated
	e.edited(id)
	return nil
}

// AttributeFoul assigns (or reassigns) the player of a foul and re-runs
// the threshold check with the corrected attribution.
func (e *Engine) AttributeFoul(id string, entity match.Entity) (*discipline.Signal, error) {
	ev, _, found := e.log.Find(id)
	if !found {
		return nil, ErrUnknownEvent
	}
	if ev.Kind != match.KindFoul {
		return nil, fmt.Errorf("event %s is not a foul", id)
	}
	updated, _ := e.log.Update(id, func(ev *match.Event) {
		ev.Entity = entity
	})
	e.log = updated
	sig := discipline.CheckFoul(e.log, ev.Team, entity, ev.Quarter)
	e.edited(id)
	e.signal(sig)
	return sig, nil
}

// OverrideRelease sets a penalty's release time directly, bypassing the
// computed schedule, e.g. to correct a mis-clocked entry.
func (e *Engine) OverrideRelease(id string, at clock.Stamp) error {
	ev, _, found := e.log.Find(id)
	if !found || ev.Kind != match.KindTimePenalty || ev.Penalty == nil {
		return ErrUnknownEvent
	}
	var overrideErr error
	updated, _ := e.log.Update(id, func(ev *match.Event) {
		overrideErr = penalty.Override(ev.Penalty, at)
	})
	if overrideErr != nil {
		return overrideErr
	}
	e.log = updated
	e.edited(id)
	return nil
}

// ExpirePenalty clears a penalty from the board once its time is served.
// The flag is one-way: a cleared penalty never returns to the board.
func (e *Engine) ExpirePenalty(id string) error {
	ev, _, found := e.log.Find(id)
	if !found || ev.Kind != match.KindTimePenalty || ev.Penalty == nil {
		return ErrUnknownEvent
	}
	updated, _ := e.log.Update(id, func(ev *match.Event) {
		ev.Penalty.ClearedFromBoard = true
	})
	e.log = updated
	e.publish(events.TypeBoardChanged, ev.Team, id)
	e.edited(id)
	return nil
}

// ClearInjury acknowledges an injury return. One-way, like the board flag.
func (e *Engine) ClearInjury(id string) error {
	ev, _, found := e.log.Find(id)
	if !found || ev.Kind != match.KindInjury || ev.Injury == nil {
		return ErrUnknownEvent
	}
	updated, _ := e.log.Update(id, func(ev *match.Event) {
		ev.Injury.Cleared = true
	})
	e.log = updated
	e.edited(id)
	return nil
}

// DeleteEvent removes an event outright. Derived tallies lose its
// contribution on their next recomputation; nothing is retained.
func (e *Engine) DeleteEvent(id string) error {
	ev, _, found := e.log.Find(id)
	if !found {
		return ErrUnknownEvent
	}
	updated, _ := e.log.Delete(id)
	e.log = updated
	telemetry.Metrics.EventsDeleted.Inc()
	e.publish(events.TypeEventDeleted, ev.Team, ev)
	e.persist()
	return nil
}

// Snapshot assembles the durable state for persistence.
func (e *Engine) Snapshot() store.Snapshot {
	return store.Snapshot{
		Info:       e.info,
		Quarter:    e.quarter,
		Running:    e.running,
		AwayRoster: e.away,
		HomeRoster: e.home,
		Events:     e.log,
	}
}

func (e *Engine) logged(ev match.Event) {
	telemetry.Metrics.EventsLogged.Inc()
	e.publish(events.TypeEventLogged, ev.Team, ev)
	e.persist()
}

func (e *Engine) edited(id string) {
	telemetry.Metrics.EventsEdited.Inc()
	ev, _, _ := e.log.Find(id)
	e.publish(events.TypeEventEdited, ev.Team, ev)
	e.persist()
}

func (e *Engine) signal(sig *discipline.Signal) {
	if sig == nil {
		return
	}
	telemetry.Metrics.SignalsRaised.Inc()
	e.publish(events.TypeSignalRaised, sig.Team, *sig)
}

func (e *Engine) publish(t events.Type, team match.Team, payload any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.Notification{
		ID:        match.NewID(),
		Type:      t,
		Team:      team,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (e *Engine) persist() {
	if e.store == nil {
		return
	}
	if err := e.store.Save(e.Snapshot()); err != nil {
		telemetry.Errorf("persist match state: %v", err)
	}
}
