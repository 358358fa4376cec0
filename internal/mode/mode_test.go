package mode

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

func TestNew_StartsPersonal(t *testing.T) {
	c := New(models.TierPowerhouse)
	assert.Equal(t, models.ModePersonal, c.Get())
	assert.Equal(t, models.TierPowerhouse, c.Tier())
	assert.Empty(t, c.ActiveProject())
}

func TestSwitchTo_PreservesActiveProject(t *testing.T) {
	c := New(models.TierUltra)

	require.NoError(t, c.SwitchTo(models.ModeCompany))
	c.SetActiveProject("a1b2c3d4")
	c.AppendTurn(models.Turn{Role: "user", Content: "build a todo app"})

	require.NoError(t, c.SwitchTo(models.ModePersonal))
	assert.Equal(t, "a1b2c3d4", c.ActiveProject())

	require.NoError(t, c.SwitchTo(models.ModeCompany))
	assert.Equal(t, models.ModeCompany, c.Get())
	assert.Equal(t, "a1b2c3d4", c.ActiveProject())
	assert.Equal(t, models.TierUltra, c.Tier())
	assert.Len(t, c.Conversation(), 1)
}

func TestSwitchTo_SameMode(t *testing.T) {
	c := New(models.TierEfficient)
	require.NoError(t, c.SwitchTo(models.ModePersonal))
	assert.Equal(t, models.ModePersonal, c.Get())
}

func TestSwitchTo_Invalid(t *testing.T) {
	c := New(models.TierEfficient)
	err := c.SwitchTo(models.Mode("startup"))
	assert.True(t, errors.Is(err, ErrInvalidMode), "got %v", err)
	assert.Equal(t, models.ModePersonal, c.Get())
}

func TestAppendTurn_StampsTime(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(models.TierEfficient, WithClock(func() time.Time { return fixed }))

	c.AppendTurn(models.Turn{Role: "user", Content: "hi"})
	turns := c.Conversation()
	require.Len(t, turns, 1)
	assert.Equal(t, fixed, turns[0].At)

	turns[0].Content = "changed"
	assert.Equal(t, "hi", c.Conversation()[0].Content, "Conversation must return a copy")
}

func TestRestore(t *testing.T) {
	c := New(models.TierPowerhouse)
	c.Restore(models.SessionState{
		Mode:          models.ModeCompany,
		ActiveProject: "deadbeef",
		Conversation:  []models.Turn{{Role: "user", Content: "hello"}},
	})

	s := c.State()
	assert.Equal(t, models.ModeCompany, s.Mode)
	assert.Equal(t, "deadbeef", s.ActiveProject)
	assert.Equal(t, models.TierPowerhouse, s.Tier, "zero tier keeps the current one")
	assert.Len(t, s.Conversation, 1)

	c.Restore(models.SessionState{Mode: "bogus", Tier: models.TierUltra})
	assert.Equal(t, models.ModePersonal, c.Get())
	assert.Equal(t, models.TierUltra, c.Tier())
}

func TestOnChange(t *testing.T) {
	c := New(models.TierEfficient)
	var got []models.SessionState
	c.OnChange(func(s models.SessionState) { got = append(got, s) })

	require.NoError(t, c.SwitchTo(models.ModeCompany))
	c.SetActiveProject("p1")
	c.SetTier(models.TierUltra)
	require.Error(t, c.SwitchTo("nope"))

	require.Len(t, got, 3)
	assert.Equal(t, models.ModeCompany, got[0].Mode)
	assert.Equal(t, "p1", got[1].ActiveProject)
	assert.Equal(t, models.TierUltra, got[2].Tier)
}
