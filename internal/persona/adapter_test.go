package persona

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]models.Persona{
		{
			Key: "tess", Name: "Tess", Title: "QA", Role: models.RoleUniversal,
			Description: "Finds bugs.",
			Profile:     models.Profile{Tone: "dry", Influences: []string{"a", "b"}},
		},
		{Key: "r", Name: "R", Role: models.RoleReasoning},
		{Key: "c", Name: "C", Role: models.RoleCoding},
		{Key: "w", Name: "W", Role: models.RoleCreative},
	}, map[string]Influence{
		"a": {Name: "Ada", ThinkingStyle: "Precise", Principles: []string{"a1", "a2", "a3"}},
		"b": {Name: "Bob", ThinkingStyle: "Loose", Principles: []string{"b1", "a1", "b3"}},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func TestTieredAdapter_Golden(t *testing.T) {
	c := testCatalog(t)
	a := NewTieredAdapter(c)
	tess, _ := c.Lookup("tess")

	tests := []struct {
		name string
		tier models.Tier
		want string
	}{
		{
			name: "tier 1 is concise",
			tier: models.TierEfficient,
			want: "You are Tess (QA). Finds bugs.\n\n" +
				"Think like: Ada, Bob\n" +
				"Principles: a1; b1; a2; a3\n" +
				"Tone: dry\n\n" +
				"Task: Check login\n\n" +
				"Be direct, practical, and actionable. Give one clear answer.",
		},
		{
			name: "tier 2 is balanced",
			tier: models.TierPowerhouse,
			want: "You are Tess (QA). Finds bugs.\n\n" +
				"Channel these legendary minds:\n- Ada: Precise\n- Bob: Loose\n" +
				"Key principles:\n- a1\n- b1\n- a2\n- a3\n- b3\n" +
				"Tone: dry\n\n" +
				"Task: Check login\n\n" +
				"Be insightful, strategic, and practical. Explain the key trade-offs briefly.",
		},
		{
			name: "tier 3 invites deep analysis",
			tier: models.TierUltra,
			want: "You are Tess (QA). Finds bugs.\n\n" +
				"Embody the combined wisdom of:\n- Ada (Precise)\n- Bob (Loose)\n" +
				"Core principles:\n- a1\n- b1\n- a2\n- a3\n- b3\n" +
				"Tone: dry\n\n" +
				"Task: Check login\n\n" +
				"Provide deep analysis: examine the problem from multiple perspectives, " +
				"weigh trade-offs and risks, and consider long-term implications. " +
				"Finish with concrete recommendations.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Adapt(tess, tt.tier, "  Check login ")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Adapt() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTieredAdapter_Deterministic(t *testing.T) {
	c := DefaultCatalog()
	a := NewTieredAdapter(c)
	for _, p := range c.List() {
		for tier := models.TierEfficient; tier <= models.TierUltra; tier++ {
			first := a.Adapt(p, tier, "Design the billing flow")
			if second := a.Adapt(p, tier, "Design the billing flow"); first != second {
				t.Fatalf("Adapt(%s, %d) is not deterministic", p.Key, tier)
			}
		}
	}
}

func TestTieredAdapter_LengthGrowsWithTier(t *testing.T) {
	c := DefaultCatalog()
	a := NewTieredAdapter(c)
	kai, _ := c.Lookup("kai_nakamura")

	low := a.Adapt(kai, models.TierEfficient, "Add pagination")
	high := a.Adapt(kai, models.TierUltra, "Add pagination")
	if len(high) <= len(low) {
		t.Errorf("tier 3 prompt (%d bytes) should be longer than tier 1 (%d bytes)", len(high), len(low))
	}
	if !strings.Contains(high, "multiple perspectives") {
		t.Error("tier 3 prompt should invite multiple perspectives")
	}
	if strings.Contains(low, "multiple perspectives") {
		t.Error("tier 1 prompt should stay concise")
	}
}

func TestDepth_ClampsBias(t *testing.T) {
	tests := []struct {
		bias int
		tier models.Tier
		want int
	}{
		{0, models.TierEfficient, 1},
		{-1, models.TierEfficient, 1},
		{1, models.TierEfficient, 2},
		{1, models.TierUltra, 3},
		{-1, models.TierUltra, 2},
		{0, models.Tier(5), 3},
	}
	for _, tt := range tests {
		p := models.Persona{Profile: models.Profile{DepthBias: tt.bias}}
		if got := Depth(p, tt.tier); got != tt.want {
			t.Errorf("Depth(bias=%d, tier=%d) = %d, want %d", tt.bias, tt.tier, got, tt.want)
		}
	}
}

func TestTieredAdapter_UnknownInfluenceIsHumanized(t *testing.T) {
	a := NewTieredAdapter(DefaultCatalog())
	p := models.Persona{Key: "x", Name: "X", Role: models.RoleCoding,
		Profile: models.Profile{Influences: []string{"grace_hopper"}}}

	got := a.Adapt(p, models.TierEfficient, "t")
	if !strings.Contains(got, "Think like: Grace Hopper") {
		t.Errorf("Adapt() = %q, want humanized influence name", got)
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"grace_hopper", "Grace Hopper"},
		{"élodie_durand", "Élodie Durand"},
		{"ümit__öz", "Ümit Öz"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := humanize(tt.key); got != tt.want {
			t.Errorf("humanize(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
