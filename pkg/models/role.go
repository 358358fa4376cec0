package models

import "strings"

// Role is a functional task category served by a backing model.
type Role string

const (
	// RoleReasoning covers strategy, analysis, and architecture work.
	RoleReasoning Role = "reasoning"
	// RoleCoding covers implementation and debugging.
	RoleCoding Role = "coding"
	// RoleCreative covers visual design and writing.
	RoleCreative Role = "creative"
	// RoleUniversal is the general-purpose role.
	RoleUniversal Role = "universal"
)

// AllRoles returns every role in declaration order.
func AllRoles() []Role {
	return []Role{RoleReasoning, RoleCoding, RoleCreative, RoleUniversal}
}

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleReasoning, RoleCoding, RoleCreative, RoleUniversal:
		return true
	default:
		return false
	}
}

// roleAliases maps legacy model-slot names onto roles.
var roleAliases = map[string]Role{
	"reasoning_titan":  RoleReasoning,
	"code_virtuoso":    RoleCoding,
	"creative_master":  RoleCreative,
	"universal_genius": RoleUniversal,
	"code":             RoleCoding,
	"general":          RoleUniversal,
}

// ParseRole parses a role name, accepting legacy aliases.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r := Role(s); r.Valid() {
		return r, true
	}
	r, ok := roleAliases[s]
	return r, ok
}
