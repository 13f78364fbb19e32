package match

import "github.com/dwolgast/matchlog/internal/core/clock"

// Log is the match event log in display order: index 0 is the most
// recently inserted event. Operations return new slices — callers treat a
// Log as an immutable snapshot, which keeps every derivation a pure
// function of the log it was handed.
type Log []Event

// Prepend inserts a freshly finalized event at the head.
func (l Log) Prepend(e Event) Log {
	out := make(Log, 0, len(l)+1)
	out = append(out, e)
	return append(out, l...)
}

// Find looks an event up by identity. The returned index is the display
// position.
func (l Log) Find(id string) (Event, int, bool) {
	for i, e := range l {
		if e.ID == id {
			return e, i, true
		}
	}
	return Event{}, -1, false
}

// Update applies fn to a deep copy of the identified event and returns a
// new log with the copy in place. Identity is preserved; only fields change.
func (l Log) Update(id string, fn func(*Event)) (Log, bool) {
	_, idx, ok := l.Find(id)
	if !ok {
		return l, false
	}
	out := make(Log, len(l))
	copy(out, l)
	ev := out[idx].Clone()
	fn(&ev)
	ev.ID = id
	out[idx] = ev
	return out, true
}

// Delete removes an event outright. No soft delete: the next recomputation
// of any derived state simply no longer sees it.
func (l Log) Delete(id string) (Log, bool) {
	_, idx, ok := l.Find(id)
	if !ok {
		return l, false
	}
	out := make(Log, 0, len(l)-1)
	out = append(out, l[:idx]...)
	return append(out, l[idx+1:]...), true
}

// Filter returns the events satisfying pred, preserving display order.
func (l Log) Filter(pred func(Event) bool) Log {
	var out Log
	for _, e := range l {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Goals counts goals credited to a team. Derived on demand, never stored.
func (l Log) Goals(team Team) int {
	n := 0
	for _, e := range l {
		if e.Kind == KindGoal && e.Team == team {
			n++
		}
	}
	return n
}

// ActivePenalties returns a team's penalties still occupying the board:
// not cleared, with a scheduled release or offender release pending.
func (l Log) ActivePenalties(team Team) Log {
	return l.Filter(func(e Event) bool {
		return e.Kind == KindTimePenalty && e.Team == team &&
			e.Penalty != nil && !e.Penalty.ClearedFromBoard &&
			(e.Penalty.Release != nil || e.Penalty.MajorRelease != nil)
	})
}

// UnattributedFouls counts fouls in a quarter still awaiting a player.
func (l Log) UnattributedFouls(q clock.Quarter) int {
	n := 0
	for _, e := range l {
		if e.Kind == KindFoul && e.Entity.Kind == EntityUnattributed && e.Quarter == q {
			n++
		}
	}
	return n
}
