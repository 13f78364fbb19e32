// Package powerplay matches a power-play goal to the opposing team's
// active releasable penalty and closes it early.
package powerplay

import (
	"sort"

	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/match"
)

// Result of attempting to resolve a power-play goal.
type Result struct {
	// PenaltyID is the penalty the goal releases; empty when no candidate
	// matched.
	PenaltyID string
	// NeedsManual is set when no open penalty fits the goal's window and
	// the operator must supply the release time by hand.
	NeedsManual bool
}

// Match searches the scoring team's opponents for the releasable penalty
// a power-play goal ends. Candidates are open penalties (releasable, not
// yet resolved) whose window [start, scheduled release] contains the
// goal; the newest-started penalty wins, and penalties with identical
// windows fall back to log insertion order — an artifact of entry order,
// not a rulebook tie-break, but the convention is to free the newest
// man-down penalty first.
//
// A penalty missing its release schedule can't bound the window and is
// skipped outright.
func Match(log match.Log, goal match.Event) Result {
	goalStamp, ok := goal.Stamp()
	if !ok {
		return Result{NeedsManual: true}
	}
	goalElapsed := goalStamp.Elapsed()
	opp := goal.Team.Opponent()

	type candidate struct {
		id      string
		start   int
		logPos  int
	}
	var cands []candidate
	for i, e := range log {
		if e.Kind != match.KindTimePenalty || e.Team != opp || e.Penalty == nil {
			continue
		}
		d := e.Penalty
		if !d.Releasable || d.ActualRelease != nil || d.ClearedFromBoard {
			continue
		}
		st, ok := e.Stamp()
		if !ok || d.Release == nil {
			continue
		}
		start := st.Elapsed()
		release := d.Release.Elapsed()
		if goalElapsed < start || goalElapsed > release {
			continue
		}
		cands = append(cands, candidate{id: e.ID, start: start, logPos: i})
	}
	if len(cands) == 0 {
		return Result{NeedsManual: true}
	}
	// Newest start first; stable keeps lower log positions (most recent
	// insertions) ahead on ties.
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].start > cands[j].start })
	return Result{PenaltyID: cands[0].id}
}

// Apply closes exactly one penalty at the given stamp, setting its actual
// release and removing it from the board. A penalty already resolved is
// never closed twice; ok is false and the log is returned unchanged.
func Apply(log match.Log, penaltyID string, at clock.Stamp) (match.Log, bool) {
	ev, _, found := log.Find(penaltyID)
	if !found || ev.Kind != match.KindTimePenalty || ev.Penalty == nil {
		return log, false
	}
	if ev.Penalty.ActualRelease != nil || ev.Penalty.ClearedFromBoard {
		return log, false
	}
	return log.Update(penaltyID, func(e *match.Event) {
		rel := at
		e.Penalty.ActualRelease = &rel
		e.Penalty.ClearedFromBoard = true
	})
}
