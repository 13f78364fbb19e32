package events

import (
	"time"

	"github.com/dwolgast/matchlog/internal/core/match"
)

// Notification is the envelope that flows through the bus. Every engine
// output — a logged event, a raised signal, a board change — is wrapped
// in one for the UI and storage collaborators to render or persist.
type Notification struct {
	ID        string
	Type      Type
	Team      match.Team
	Timestamp time.Time
	Payload   any
}

type Type string

const (
	// Log mutations.
	TypeEventLogged  Type = "event_logged"
	TypeEventEdited  Type = "event_edited"
	TypeEventDeleted Type = "event_deleted"
	// Officiating recommendations (payload: discipline.Signal).
	TypeSignalRaised Type = "signal_raised"
	// Period lifecycle (payload: the period marker event).
	TypePeriodChanged Type = "period_changed"
	// Penalty board changes: release, expiry, clear.
	TypeBoardChanged Type = "board_changed"
	// A power-play goal found no open penalty to close; the operator must
	// supply the release time (payload: the goal event).
	TypeManualReleaseRequired Type = "manual_release_required"
)
