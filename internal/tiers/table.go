// Package tiers maps roles to concrete models per capability tier and
// swaps the active tier atomically.
package tiers

import (
	"errors"
	"fmt"
	"slices"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// ErrUnknownTier is returned when a tier is not defined in the table.
var ErrUnknownTier = errors.New("unknown tier")

// UnresolvedRoleError means a tier's mapping omits a role.
// It is a configuration-integrity fault and is never retried.
type UnresolvedRoleError struct {
	Role models.Role
	Tier models.Tier
}

func (e *UnresolvedRoleError) Error() string {
	return fmt.Sprintf("no model configured for role %s at tier %d (%s)", e.Role, int(e.Tier), e.Tier)
}

// TierSpec is one tier's role-to-model mapping.
type TierSpec struct {
	Level   models.Tier            `mapstructure:"level" yaml:"level"`
	Name    string                 `mapstructure:"name" yaml:"name"`
	Models  map[models.Role]string `mapstructure:"models" yaml:"models"`
	SizesGB map[string]float64     `mapstructure:"sizes_gb" yaml:"sizes_gb"`
}

// Table is the full tiered role-to-model configuration.
type Table struct {
	Tiers []TierSpec `mapstructure:"tiers" yaml:"tiers"`
}

// Get returns the spec for a tier.
func (t Table) Get(tier models.Tier) (TierSpec, bool) {
	for _, spec := range t.Tiers {
		if spec.Level == tier {
			return spec, true
		}
	}
	return TierSpec{}, false
}

// Levels returns the defined tiers in ascending order.
func (t Table) Levels() []models.Tier {
	levels := make([]models.Tier, 0, len(t.Tiers))
	for _, spec := range t.Tiers {
		levels = append(levels, spec.Level)
	}
	slices.Sort(levels)
	return levels
}

// Validate enforces total coverage: every tier maps every role.
func (t Table) Validate() error {
	if len(t.Tiers) == 0 {
		return errors.New("tier table is empty")
	}
	seen := make(map[models.Tier]bool)
	for _, spec := range t.Tiers {
		if !spec.Level.Valid() {
			return fmt.Errorf("invalid tier level %d", int(spec.Level))
		}
		if seen[spec.Level] {
			return fmt.Errorf("tier %d defined twice", int(spec.Level))
		}
		seen[spec.Level] = true
		for _, role := range models.AllRoles() {
			if spec.Models[role] == "" {
				return &UnresolvedRoleError{Role: role, Tier: spec.Level}
			}
		}
	}
	return nil
}

// Declared lists every model in the table with the roles and lowest tier that use it.
func (t Table) Declared() []models.Model {
	index := make(map[string]*models.Model)
	var order []string
	for _, level := range t.Levels() {
		spec, _ := t.Get(level)
		for _, role := range models.AllRoles() {
			id := spec.Models[role]
			if id == "" {
				continue
			}
			m, ok := index[id]
			if !ok {
				m = &models.Model{ID: id, Tier: level, SizeGB: spec.SizesGB[id]}
				index[id] = m
				order = append(order, id)
			}
			if !m.Serves(role) {
				m.Roles = append(m.Roles, role)
			}
		}
	}
	out := make([]models.Model, 0, len(order))
	for _, id := range order {
		out = append(out, *index[id])
	}
	return out
}

func (t Table) clone() Table {
	c := Table{Tiers: make([]TierSpec, len(t.Tiers))}
	for i, spec := range t.Tiers {
		cs := TierSpec{Level: spec.Level, Name: spec.Name, Models: make(map[models.Role]string, len(spec.Models))}
		for r, id := range spec.Models {
			cs.Models[r] = id
		}
		if spec.SizesGB != nil {
			cs.SizesGB = make(map[string]float64, len(spec.SizesGB))
			for id, gb := range spec.SizesGB {
				cs.SizesGB[id] = gb
			}
		}
		c.Tiers[i] = cs
	}
	return c
}

// DefaultTable returns the built-in three-tier table of local Ollama models.
func DefaultTable() Table {
	return Table{Tiers: []TierSpec{
		{
			Level: models.TierEfficient,
			Name:  "efficient",
			Models: map[models.Role]string{
				models.RoleReasoning: "dolphin-mistral:7b",
				models.RoleUniversal: "llama2-uncensored:7b",
				models.RoleCoding:    "deepseek-coder:7b",
				models.RoleCreative:  "dolphin3:8b",
			},
			SizesGB: map[string]float64{
				"dolphin-mistral:7b":   4.1,
				"llama2-uncensored:7b": 3.8,
				"deepseek-coder:7b":    3.8,
				"dolphin3:8b":          4.7,
			},
		},
		{
			Level: models.TierPowerhouse,
			Name:  "powerhouse",
			Models: map[models.Role]string{
				models.RoleReasoning: "dolphin-mixtral:8x7b",
				models.RoleUniversal: "wizard-vicuna-uncensored:13b",
				models.RoleCoding:    "deepseek-coder:33b",
				models.RoleCreative:  "dolphin-mistral:7b",
			},
			SizesGB: map[string]float64{
				"dolphin-mixtral:8x7b":         26,
				"wizard-vicuna-uncensored:13b": 7.4,
				"deepseek-coder:33b":           19,
				"dolphin-mistral:7b":           4.1,
			},
		},
		{
			Level: models.TierUltra,
			Name:  "ultra",
			Models: map[models.Role]string{
				models.RoleReasoning: "deepseek-r1:14b",
				models.RoleUniversal: "dolphin-mixtral:8x22b",
				models.RoleCoding:    "deepseek-coder-v2:16b",
				models.RoleCreative:  "dolphin3:8b",
			},
			SizesGB: map[string]float64{
				"deepseek-r1:14b":       8.5,
				"dolphin-mixtral:8x22b": 87,
				"deepseek-coder-v2:16b": 9.1,
				"dolphin3:8b":           4.7,
			},
		},
	}}
}
