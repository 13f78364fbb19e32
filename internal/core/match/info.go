package match

// Info is the worksheet header: venue, teams, and officiating crew.
// Stored as independent key-value fields and rehydrated verbatim.
type Info struct {
	Date           string `json:"date"`
	ScheduledKO    string `json:"scheduled_ko,omitempty"`
	Venue          string `json:"venue"`
	City           string `json:"city"`
	AwayTeam       string `json:"away_team"`
	AwayColor      string `json:"away_color,omitempty"`
	HomeTeam       string `json:"home_team"`
	HomeColor      string `json:"home_color,omitempty"`
	CrewChief      string `json:"crew_chief,omitempty"`
	Referee        string `json:"referee,omitempty"`
	AssistantRef   string `json:"assistant_ref,omitempty"`
	FourthOfficial string `json:"fourth_official,omitempty"`
}

// TeamName resolves the display name for a side, falling back to the
// team identifier when setup left it blank.
func (i Info) TeamName(t Team) string {
	switch t {
	case TeamAway:
		if i.AwayTeam != "" {
			return i.AwayTeam
		}
	case TeamHome:
		if i.HomeTeam != "" {
			return i.HomeTeam
		}
	}
	return string(t)
}
