package persona

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

func TestDefaultCatalog_EveryPersonaHasOneStableRole(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())

	for _, p := range c.List() {
		first, err := c.RoleOf(p.Key)
		require.NoError(t, err)
		assert.True(t, first.Valid(), "persona %s role %q", p.Key, first)

		for i := 0; i < 3; i++ {
			again, err := c.RoleOf(p.Key)
			require.NoError(t, err)
			assert.Equal(t, first, again, "RoleOf(%s) changed between calls", p.Key)
		}
	}
}

func TestDefaultCatalog_InfluencesResolve(t *testing.T) {
	c := DefaultCatalog()
	for _, p := range c.List() {
		for _, key := range p.Profile.Influences {
			_, ok := c.Influence(key)
			assert.True(t, ok, "persona %s references unknown influence %s", p.Key, key)
		}
	}
}

func TestLookup(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		query   string
		wantKey string
	}{
		{"kai_nakamura", "kai_nakamura"},
		{"KAI_NAKAMURA", "kai_nakamura"},
		{"Kai Nakamura", "kai_nakamura"},
		{"CTO", "alexandra_sterling"},
		{"qa engineer", "qa_engineer"},
		{"Full-Stack Developer", "fullstack_developer"},
		{"Dr. Aisha Patel", "dr_aisha_patel"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, err := c.Lookup(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, p.Key)
		})
	}

	_, err := c.Lookup("chief vibes officer")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLead(t *testing.T) {
	c := DefaultCatalog()
	want := map[models.Role]string{
		models.RoleReasoning: "alexandra_sterling",
		models.RoleCoding:    "kai_nakamura",
		models.RoleCreative:  "luna_chen",
		models.RoleUniversal: "david_park",
	}
	for role, key := range want {
		p, err := c.Lead(role)
		require.NoError(t, err)
		assert.Equal(t, key, p.Key, "Lead(%s)", role)

		staff := c.ForRole(role)
		require.NotEmpty(t, staff)
		assert.Equal(t, key, staff[0].Key)
	}
}

func TestNewCatalog_RejectsUnstaffedRole(t *testing.T) {
	_, err := NewCatalog([]models.Persona{
		{Key: "only", Name: "Only", Role: models.RoleCoding},
	}, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]models.Persona{
		{Key: "bad", Role: models.Role("poet")},
	}, nil)
	assert.Error(t, err)
}

func TestLoadCatalog_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	data := []byte(`
influences:
  grace_hopper:
    name: Grace Hopper
    thinking_style: Practical, inventive
    principles: ["It's easier to ask forgiveness", "Ship it"]
personas:
  - key: kai_nakamura
    name: Kai Nakamura
    title: Principal Engineer
    role: code_virtuoso
    profile:
      tone: terse
      depth_bias: 1
      influences: [grace_hopper]
  - key: data_engineer
    name: Rhea Kapoor
    title: Data Engineer
    role: coding
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	kai, err := c.Lookup("kai_nakamura")
	require.NoError(t, err)
	assert.Equal(t, "Principal Engineer", kai.Title)
	assert.Equal(t, models.RoleCoding, kai.Role)
	assert.Equal(t, []string{"grace_hopper"}, kai.Profile.Influences)

	rhea, err := c.Lookup("Data Engineer")
	require.NoError(t, err)
	assert.Equal(t, "data_engineer", rhea.Key)

	_, ok := c.Influence("grace_hopper")
	assert.True(t, ok)
	assert.Len(t, c.List(), len(defaultPersonas())+1)
}

func TestParseCatalog_KeysAreNormalized(t *testing.T) {
	c, err := ParseCatalog([]byte(`
personas:
  - key: Kai_Nakamura
    name: Kai Nakamura
    title: Staff Engineer
    role: coding
  - key: Data-Engineer
    name: Rhea Kapoor
    title: Pipelines
    role: coding
`))
	require.NoError(t, err)

	kai, err := c.Lookup("kai_nakamura")
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", kai.Title, "mixed-case key overrides the built-in persona")
	assert.Equal(t, "kai_nakamura", kai.Key)

	rhea, err := c.Lookup("data_engineer")
	require.NoError(t, err)
	assert.Equal(t, "data_engineer", rhea.Key)
	assert.Len(t, c.List(), len(defaultPersonas())+1)
}

func TestLoadCatalog_UnknownRole(t *testing.T) {
	_, err := ParseCatalog([]byte("personas:\n  - key: x\n    role: juggler\n"))
	assert.Error(t, err)
}
