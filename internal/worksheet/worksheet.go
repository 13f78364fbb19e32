// Package worksheet renders the official match paperwork from the event
// log: the chronological transcript, the foul summary grid, the live
// penalty board, and the export-readiness audit.
package worksheet

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/discipline"
	"github.com/dwolgast/matchlog/internal/core/match"
)

// Header prints the worksheet masthead from the match info.
func Header(w io.Writer, info match.Info) {
	fmt.Fprintf(w, "%s at %s\n", info.TeamName(match.TeamAway), info.TeamName(match.TeamHome))
	if info.Venue != "" || info.City != "" {
		fmt.Fprintf(w, "%s, %s", info.Venue, info.City)
		if info.Date != "" {
			fmt.Fprintf(w, " — %s", info.Date)
		}
		fmt.Fprintln(w)
	}
	if info.CrewChief != "" {
		fmt.Fprintf(w, "Crew Chief: %s", info.CrewChief)
		if info.Referee != "" {
			fmt.Fprintf(w, "  Referee: %s", info.Referee)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// Summary prints the score line.
func Summary(w io.Writer, info match.Info, log match.Log) {
	fmt.Fprintf(w, "%s %d — %d %s\n",
		info.TeamName(match.TeamAway), log.Goals(match.TeamAway),
		log.Goals(match.TeamHome), info.TeamName(match.TeamHome))
}

// Transcript prints the log in match order, oldest first. The log keeps
// newest-first display order, so the walk runs back to front.
func Transcript(w io.Writer, info match.Info, log match.Log) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTEAM\tENTRY")
	for i := len(log) - 1; i >= 0; i-- {
		e := log[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", stampCell(e), teamCell(e, info), Describe(e))
	}
	tw.Flush()
}

func stampCell(e match.Event) string {
	if st, ok := e.Stamp(); ok {
		return st.String()
	}
	return e.Quarter.String() + " --:--"
}

func teamCell(e match.Event, info match.Info) string {
	if e.Team == match.TeamSystem {
		return "—"
	}
	return info.TeamName(e.Team)
}

// Describe renders one event the way it appears on the worksheet.
func Describe(e match.Event) string {
	switch e.Kind {
	case match.KindGoal:
		var b strings.Builder
		b.WriteString("GOAL ")
		b.WriteString(e.Entity.Label())
		if e.Goal != nil {
			if e.Goal.Assist != nil {
				fmt.Fprintf(&b, " (assist %s)", e.Goal.Assist.Label())
			}
			if e.Goal.PowerPlay {
				b.WriteString(" [PP]")
			}
			if e.Goal.PenaltyKick {
				b.WriteString(" [PK]")
			}
			if e.Goal.Shootout {
				b.WriteString(" [SO]")
			}
		}
		return b.String()
	case match.KindFoul:
		return "Foul " + e.Entity.Label()
	case match.KindTimePenalty:
		if e.Penalty == nil {
			return "Time Penalty " + e.Entity.Label()
		}
		d := e.Penalty
		var b strings.Builder
		fmt.Fprintf(&b, "%s Card %s %s", d.Color, d.Code, e.Entity.Label())
		if d.ServesForMajor {
			b.WriteString(" (serving)")
		}
		switch {
		case d.ActualRelease != nil:
			fmt.Fprintf(&b, " — released %s", d.ActualRelease)
		case d.Release != nil:
			fmt.Fprintf(&b, " — out %s", d.Release)
		case d.MajorRelease != nil:
			fmt.Fprintf(&b, " — out %s", d.MajorRelease)
		}
		return b.String()
	case match.KindInjury:
		s := "Injury " + e.Entity.Label()
		if e.Injury != nil && e.Injury.EligibleReturn != nil {
			s += fmt.Sprintf(" — return %s", e.Injury.EligibleReturn)
		}
		return s
	case match.KindTeamTimeout:
		return "Team Timeout"
	case match.KindMediaTimeout:
		return "Media Timeout"
	case match.KindTeamWarning:
		if e.Warning != nil {
			return "Team Warning [" + e.Warning.Reason + "]"
		}
		return "Team Warning"
	case match.KindPeriodMarker:
		if e.Period != nil {
			s := e.Period.Action + " of " + e.Quarter.String()
			if e.Period.WallClock != "" {
				s += " (" + e.Period.WallClock + ")"
			}
			return s
		}
	}
	return string(e.Kind)
}

// FoulSummary prints the per-player foul grid for one team: quarter
// buckets, half totals, and cards, recomputed straight from the log.
func FoulSummary(w io.Writer, info match.Info, log match.Log, team match.Team, roster match.Roster) {
	fmt.Fprintf(w, "%s fouls\n", info.TeamName(team))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tQ1\tQ2\tQ3\tQ4\tOT\t1ST\t2ND\tTOT\tCARDS")
	for _, p := range roster.Players {
		t := discipline.FoulTally(log, team, p.ID)
		if t.Total == 0 && len(cards(t)) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			p.Number, p.Name, t.Q1, t.Q2, t.Q3, t.Q4, t.OT,
			t.FirstHalf, t.SecondHalf, t.Total, cards(t))
	}
	tw.Flush()
}

func cards(t discipline.Tally) string {
	var parts []string
	for _, c := range []match.CardColor{match.CardBlue, match.CardYellow, match.CardRed} {
		if n := t.Cards[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%c", n, c[0]))
		}
	}
	return strings.Join(parts, " ")
}

// Board prints the penalties still occupying the board and injuries
// awaiting a return, both sides.
func Board(w io.Writer, info match.Info, log match.Log) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEAM\tPLAYER\tCARD\tOUT")
	for _, team := range []match.Team{match.TeamAway, match.TeamHome} {
		for _, e := range log.ActivePenalties(team) {
			out := ""
			switch {
			case e.Penalty.Release != nil:
				out = e.Penalty.Release.String()
			case e.Penalty.MajorRelease != nil:
				out = e.Penalty.MajorRelease.String()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n",
				info.TeamName(team), e.Entity.Label(), e.Penalty.Color, e.Penalty.Code, out)
		}
	}
	tw.Flush()

	injuries := log.Filter(func(e match.Event) bool {
		return e.Kind == match.KindInjury && e.Injury != nil && !e.Injury.Cleared
	})
	if len(injuries) > 0 {
		fmt.Fprintln(w, "\nInjured, awaiting return:")
		for _, e := range injuries {
			ret := "—"
			if e.Injury.EligibleReturn != nil {
				ret = e.Injury.EligibleReturn.String()
			}
			fmt.Fprintf(w, "  %s %s — eligible %s\n", info.TeamName(e.Team), e.Entity.Label(), ret)
		}
	}
}

// Audit lists everything blocking the worksheet from going out: fouls
// still unattributed and penalties still open on the board. An empty
// slice means the paperwork is export-ready.
func Audit(log match.Log) []string {
	var issues []string
	for _, q := range []clock.Quarter{clock.Q1, clock.Q2, clock.Q3, clock.Q4, clock.OT} {
		if n := log.UnattributedFouls(q); n > 0 {
			issues = append(issues, fmt.Sprintf("%d unattributed foul(s) in %s", n, q))
		}
	}
	for _, team := range []match.Team{match.TeamAway, match.TeamHome} {
		if open := log.ActivePenalties(team); len(open) > 0 {
			issues = append(issues, fmt.Sprintf("%d open penalty(ies) for %s", len(open), team))
		}
	}
	for _, e := range log {
		if e.Kind == match.KindInjury && e.Injury != nil && !e.Injury.Cleared {
			issues = append(issues, fmt.Sprintf("injury for %s not cleared", e.Entity.Label()))
		}
	}
	return issues
}
