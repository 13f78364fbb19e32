package match

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// League roster limits.
const (
	MaxRosterSize     = 17
	MaxFieldPlayers   = 15
	MaxStartingGK     = 1
	MaxStartingField  = 5
	MaxBenchPersonnel = 5
)

var (
	ErrRosterFull      = errors.New("roster full")
	ErrDuplicateNumber = errors.New("jersey number already exists")
	ErrDuplicateRole   = errors.New("role already filled")
)

// Roster holds one team's players and bench personnel.
type Roster struct {
	Players []Player      `json:"players"`
	Bench   []BenchPerson `json:"bench"`
}

// AddPlayer validates the league roster limits and inserts the player,
// keeping the list sorted by jersey number.
func (r *Roster) AddPlayer(p Player) error {
	if p.Number == "" || p.Name == "" {
		return errors.New("player needs both a jersey number and a name")
	}
	if len(r.Players) >= MaxRosterSize {
		return fmt.Errorf("%w: max %d total players", ErrRosterFull, MaxRosterSize)
	}
	if !p.IsGoalkeeper && r.countField() >= MaxFieldPlayers {
		return fmt.Errorf("%w: max %d field players", ErrRosterFull, MaxFieldPlayers)
	}
	for _, ex := range r.Players {
		if ex.Number == p.Number {
			return fmt.Errorf("%w: #%s", ErrDuplicateNumber, p.Number)
		}
	}
	if p.IsStarter {
		if p.IsGoalkeeper && r.countStarters(true) >= MaxStartingGK {
			return fmt.Errorf("%w: only %d starting goalkeeper", ErrRosterFull, MaxStartingGK)
		}
		if !p.IsGoalkeeper && r.countStarters(false) >= MaxStartingField {
			return fmt.Errorf("%w: max %d starting field players", ErrRosterFull, MaxStartingField)
		}
	}
	if p.IsCaptain {
		for _, ex := range r.Players {
			if ex.IsCaptain {
				return fmt.Errorf("%w: captain", ErrDuplicateRole)
			}
		}
	}
	if p.ID == "" {
		p.ID = NewID()
	}
	r.Players = append(r.Players, p)
	sort.Slice(r.Players, func(i, j int) bool {
		a, _ := strconv.Atoi(r.Players[i].Number)
		b, _ := strconv.Atoi(r.Players[j].Number)
		return a < b
	})
	return nil
}

// AddBench validates and inserts a bench person.
func (r *Roster) AddBench(b BenchPerson) error {
	if b.Name == "" {
		return errors.New("bench person needs a name")
	}
	if len(r.Bench) >= MaxBenchPersonnel {
		return fmt.Errorf("%w: max %d bench personnel", ErrRosterFull, MaxBenchPersonnel)
	}
	if b.Role == "Head Coach" {
		for _, ex := range r.Bench {
			if ex.Role == "Head Coach" {
				return fmt.Errorf("%w: head coach", ErrDuplicateRole)
			}
		}
	}
	if b.ID == "" {
		b.ID = NewID()
	}
	r.Bench = append(r.Bench, b)
	return nil
}

// RemovePlayer deletes by identity; returns false if absent.
func (r *Roster) RemovePlayer(id string) bool {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveBench deletes by identity; returns false if absent.
func (r *Roster) RemoveBench(id string) bool {
	for i, b := range r.Bench {
		if b.ID == id {
			r.Bench = append(r.Bench[:i], r.Bench[i+1:]...)
			return true
		}
	}
	return false
}

// FindPlayer looks a player up by identity.
func (r *Roster) FindPlayer(id string) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// FindBench looks a bench person up by identity.
func (r *Roster) FindBench(id string) (BenchPerson, bool) {
	for _, b := range r.Bench {
		if b.ID == id {
			return b, true
		}
	}
	return BenchPerson{}, false
}

// IsBenchStaff reports whether the entity is bench personnel for this
// roster (including the Team/Bench sentinel, which attributes to the bench).
func (r *Roster) IsBenchStaff(e Entity) bool {
	if e.Kind == EntityTeamBench {
		return true
	}
	if !e.IsBench() {
		return false
	}
	_, ok := r.FindBench(e.Bench.ID)
	return ok
}

// Search filters players by a jersey-number prefix or a normalized name
// fragment, the way the logging keypad narrows the selection grid.
func (r *Roster) Search(query string) []Player {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.Players
	}
	var out []Player
	nq := NormalizeName(query)
	for _, p := range r.Players {
		if strings.HasPrefix(p.Number, query) || strings.Contains(NormalizeName(p.Name), nq) {
			out = append(out, p)
		}
	}
	return out
}

// Starters returns the starting lineup, goalkeeper first, then by number.
func (r *Roster) Starters() []Player {
	var out []Player
	for _, p := range r.Players {
		if p.IsStarter {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsGoalkeeper != out[j].IsGoalkeeper {
			return out[i].IsGoalkeeper
		}
		a, _ := strconv.Atoi(out[i].Number)
		b, _ := strconv.Atoi(out[j].Number)
		return a < b
	})
	return out
}

func (r *Roster) countField() int {
	n := 0
	for _, p := range r.Players {
		if !p.IsGoalkeeper {
			n++
		}
	}
	return n
}

func (r *Roster) countStarters(gk bool) int {
	n := 0
	for _, p := range r.Players {
		if p.IsStarter && p.IsGoalkeeper == gk {
			n++
		}
	}
	return n
}
