package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is an ordinal capability level selecting which models back each role.
type Tier int

const (
	// TierEfficient runs small models on modest hardware.
	TierEfficient Tier = 1
	// TierPowerhouse runs mid-size models.
	TierPowerhouse Tier = 2
	// TierUltra runs the most capable models.
	TierUltra Tier = 3
)

var tierNames = map[Tier]string{
	TierEfficient:  "efficient",
	TierPowerhouse: "powerhouse",
	TierUltra:      "ultra",
}

// Valid returns true if the tier is a positive ordinal.
func (t Tier) Valid() bool {
	return t >= 1
}

// String returns the built-in tier name, or "tierN" for custom levels.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier%d", int(t))
}

// ParseTier accepts "3", "tier3", or a built-in name such as "ultra".
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range tierNames {
		if s == name {
			return t, nil
		}
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "tier"))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid tier %q", s)
	}
	return Tier(n), nil
}
