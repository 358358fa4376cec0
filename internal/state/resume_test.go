package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/registry"
	"github.com/SharminSirajudeen/nova/internal/router"
	"github.com/SharminSirajudeen/nova/internal/runtime/runtimetest"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

func newProjectManager(t *testing.T, store project.Store) (*project.Manager, *runtimetest.Fake) {
	t.Helper()
	table := tiers.DefaultTable()
	tm, err := tiers.NewManager(table, models.TierPowerhouse)
	require.NoError(t, err)
	fake := runtimetest.New()
	reg := registry.New(fake, table.Declared())
	catalog := persona.DefaultCatalog()
	r := router.New(router.RequiredConfig{Tiers: tm, Registry: reg, Catalog: catalog, Invoker: fake})
	return project.New(project.RequiredConfig{Router: r, Catalog: catalog, Store: store}), fake
}

// A project interrupted mid-run is picked up by a new manager over the same
// database file and finishes without repeating completed work.
func TestResumeFromDatabase(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := tempDBPath(t)
	ctx := context.Background()

	db, err := Open(path, DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.SaveProject(ctx, sampleProject("a1b2c3d4", time.Now())))
	require.NoError(t, db.Close())

	db, err = Open(path, DriverSQLite)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	interrupted, err := db.CheckForInterrupted(ctx)
	require.NoError(t, err)
	require.Len(t, interrupted, 1)

	mgr, fake := newProjectManager(t, db)
	defer mgr.Close()

	ids, err := mgr.Resume(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a1b2c3d4"}, ids)

	p, err := mgr.Wait(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, p.State, p.FailureReason)
	assert.Len(t, fake.Calls(), 2, "only the interrupted and pending sub-tasks run")

	stored, err := db.GetProject(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, stored.State)
	assert.Equal(t, "three services", stored.SubTasks[0].Output)
	for _, st := range stored.SubTasks {
		assert.Equal(t, models.SubTaskCompleted, st.Status, st.Title)
	}
	assert.Len(t, stored.Deliverables, 4)
}
