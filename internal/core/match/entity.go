package match

// Team identifies the owning side of an event. SYSTEM owns period markers
// and media timeouts.
type Team string

const (
	TeamAway   Team = "AWAY"
	TeamHome   Team = "HOME"
	TeamSystem Team = "SYSTEM"
)

// Opponent returns the other bench. SYSTEM has no opponent.
func (t Team) Opponent() Team {
	switch t {
	case TeamAway:
		return TeamHome
	case TeamHome:
		return TeamAway
	}
	return TeamSystem
}

// Player is a rostered skater or goalkeeper.
type Player struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	Name         string `json:"name"`
	IsGoalkeeper bool   `json:"is_goalkeeper,omitempty"`
	IsStarter    bool   `json:"is_starter,omitempty"`
	IsCaptain    bool   `json:"is_captain,omitempty"`
}

// BenchPerson is non-playing team personnel (coaches, trainers).
type BenchPerson struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type EntityKind string

const (
	EntityPlayer       EntityKind = "player"
	EntityBench        EntityKind = "bench"
	EntityOwnGoal      EntityKind = "own_goal"
	EntityUnattributed EntityKind = "unattributed"
	EntityTeamBench    EntityKind = "team_bench"
)

// Entity is the subject of an event: a roster player, a bench person, or
// one of the sentinel attributions. Exactly one of Player/Bench is set for
// the corresponding kind; sentinels carry neither.
type Entity struct {
	Kind   EntityKind   `json:"kind"`
	Player *Player      `json:"player,omitempty"`
	Bench  *BenchPerson `json:"bench,omitempty"`
}

func PlayerEntity(p Player) Entity     { return Entity{Kind: EntityPlayer, Player: &p} }
func BenchEntity(b BenchPerson) Entity { return Entity{Kind: EntityBench, Bench: &b} }
func OwnGoal() Entity                  { return Entity{Kind: EntityOwnGoal} }
func Unattributed() Entity             { return Entity{Kind: EntityUnattributed} }
func TeamBench() Entity                { return Entity{Kind: EntityTeamBench} }

func (e Entity) IsPlayer() bool { return e.Kind == EntityPlayer && e.Player != nil }
func (e Entity) IsBench() bool  { return e.Kind == EntityBench && e.Bench != nil }

// IsSentinel reports whether the entity is one of the non-person values.
func (e Entity) IsSentinel() bool {
	return e.Kind == EntityOwnGoal || e.Kind == EntityUnattributed || e.Kind == EntityTeamBench
}

// ID returns the stable person identity, or "" for sentinels.
func (e Entity) ID() string {
	switch {
	case e.IsPlayer():
		return e.Player.ID
	case e.IsBench():
		return e.Bench.ID
	}
	return ""
}

// Label renders the entity for transcripts and prompts.
func (e Entity) Label() string {
	switch e.Kind {
	case EntityPlayer:
		if e.Player != nil {
			return "#" + e.Player.Number + " " + e.Player.Name
		}
	case EntityBench:
		if e.Bench != nil {
			return e.Bench.Name + " (" + e.Bench.Role + ")"
		}
	case EntityOwnGoal:
		return "Own Goal"
	case EntityUnattributed:
		return "Unattributed"
	case EntityTeamBench:
		return "Team / Bench"
	}
	return "?"
}
