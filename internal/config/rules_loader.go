package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dwolgast/matchlog/internal/core/match"
)

// PenaltyCode is one rulebook infraction under a card color.
type PenaltyCode struct {
	Code string `yaml:"code"`
	Desc string `yaml:"desc"`
}

// Rules is the officiating catalog: the card-code table, the team warning
// reasons, and the recognized bench roles. Durations and escalation
// thresholds are fixed by the rulebook and live in code; the catalog is
// data that changes season to season.
type Rules struct {
	PenaltyCodes   map[match.CardColor][]PenaltyCode `yaml:"penalty_codes"`
	WarningReasons []string                          `yaml:"warning_reasons"`
	BenchRoles     []string                          `yaml:"bench_roles"`
}

func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules catalog: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules catalog: %w", err)
	}

	return r, nil
}

// Lookup resolves a card code under a color.
func (r Rules) Lookup(color match.CardColor, code string) (PenaltyCode, bool) {
	for _, pc := range r.PenaltyCodes[color] {
		if pc.Code == code {
			return pc, true
		}
	}
	return PenaltyCode{}, false
}

// ValidWarningReason reports whether the reason is in the catalog.
func (r Rules) ValidWarningReason(reason string) bool {
	for _, w := range r.WarningReasons {
		if w == reason {
			return true
		}
	}
	return false
}
