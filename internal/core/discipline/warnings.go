package discipline

import (
	"fmt"

	"github.com/dwolgast/matchlog/internal/core/match"
)

// CheckWarning reports whether a team warning for the given reason is a
// repeat offense. excludeID skips the event currently being edited so an
// edit of a lone warning can't escalate against itself.
func CheckWarning(log match.Log, team match.Team, reason, excludeID string) *Signal {
	for _, e := range log {
		if e.ID == excludeID {
			continue
		}
		if e.Kind == match.KindTeamWarning && e.Team == team &&
			e.Warning != nil && e.Warning.Reason == reason {
			return &Signal{
				Kind:     KindRepeatedWarning,
				Severity: SeverityYellowCard,
				Team:     team,
				Subject:  match.TeamBench(),
				Message: fmt.Sprintf(
					"Second warning given for [%s]. Issue a 5-minute Yellow Card to the player or coach who committed the offense.",
					reason),
			}
		}
	}
	return nil
}
