// Package discipline derives foul and penalty accumulation state from the
// event log and raises card and ejection recommendations. It only reports
// — carding or ejecting a player remains an officiating decision recorded
// as subsequent events.
package discipline

import "github.com/dwolgast/matchlog/internal/core/match"

// Severity orders signals by the action the crew must take.
type Severity string

const (
	SeverityWarning    Severity = "warning"
	SeverityBlueCard   Severity = "blue_card"
	SeverityYellowCard Severity = "yellow_card"
	SeverityEjection   Severity = "ejection"
)

// Kind names the rule that fired.
type Kind string

const (
	KindSixthFoul       Kind = "sixth_foul"
	KindFifthFoul       Kind = "fifth_foul"
	KindFourthFoulHalf  Kind = "fourth_foul_half"
	KindThirdFoulHalf   Kind = "third_foul_half"
	KindThirdPenalty    Kind = "third_penalty"
	KindSecondPenalty   Kind = "second_penalty"
	KindRepeatedWarning Kind = "repeated_warning"
)

// Signal is a discrete recommendation handed back to the caller, rendered
// by the UI layer as a modal prompt.
type Signal struct {
	Kind     Kind
	Severity Severity
	Team     match.Team
	Subject  match.Entity
	Message  string
}
