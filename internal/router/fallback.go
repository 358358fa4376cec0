package router

import "github.com/SharminSirajudeen/nova/pkg/models"

// FallbackTable lists, per role, the other roles to try in order when the
// role's model is missing or fails.
type FallbackTable map[models.Role][]models.Role

// DefaultFallback is the declared fallback order. Each entry names the other three roles.
var DefaultFallback = FallbackTable{
	models.RoleReasoning: {models.RoleUniversal, models.RoleCoding, models.RoleCreative},
	models.RoleCoding:    {models.RoleReasoning, models.RoleUniversal, models.RoleCreative},
	models.RoleCreative:  {models.RoleUniversal, models.RoleCoding, models.RoleReasoning},
	models.RoleUniversal: {models.RoleReasoning, models.RoleCreative, models.RoleCoding},
}

// Chain returns the full try order for a role: the role itself, then its fallbacks.
func (t FallbackTable) Chain(role models.Role) []models.Role {
	chain := make([]models.Role, 0, 1+len(t[role]))
	chain = append(chain, role)
	return append(chain, t[role]...)
}

// FallbackChain returns the declared fallbacks for a role, excluding the role itself.
func FallbackChain(role models.Role) []models.Role {
	return append([]models.Role(nil), DefaultFallback[role]...)
}
