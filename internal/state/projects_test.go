package state

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

func sampleProject(id string, created time.Time) *models.Project {
	started := created.Add(time.Minute)
	done := created.Add(2 * time.Minute)
	return &models.Project{
		ID:        id,
		Name:      "Todo Pro",
		Brief:     `Build "Todo Pro"`,
		State:     models.ProjectInProgress,
		CreatedAt: created,
		UpdatedAt: done,
		SubTasks: []models.SubTask{
			{
				Index: 0, Title: "Architecture", Description: "Plan it", Role: models.RoleReasoning,
				Persona: "alexandra_sterling", Status: models.SubTaskCompleted, Model: "deepseek-r1:14b",
				Tier: models.TierUltra, Attempts: 1, Output: "three services", StartedAt: &started, CompletedAt: &done,
			},
			{
				Index: 1, Title: "API", Role: models.RoleCoding, Persona: "kai_nakamura",
				DependsOn: []int{0}, Status: models.SubTaskRunning, StartedAt: &done,
			},
			{
				Index: 2, Title: "Docs", Role: models.RoleCreative, Persona: "luna_chen",
				DependsOn: []int{0, 1}, Optional: true, Status: models.SubTaskPending,
			},
		},
		Deliverables: []models.Deliverable{
			{SubTask: -1, Persona: "alexandra_sterling", Model: "deepseek-r1:14b", Kind: models.DeliverableNote, Content: "Decomposed into 3 sub-tasks (json)", At: created},
			{SubTask: 0, Persona: "alexandra_sterling", Model: "deepseek-r1:14b", Kind: models.DeliverableResult, Content: "three services", At: done},
		},
	}
}

func TestSaveAndGetProject(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverSQLite3} {
		t.Run(driver, func(t *testing.T) {
			db := setupTestDB(t, driver)
			ctx := context.Background()
			created := time.Date(2025, 5, 1, 9, 30, 0, 123, time.UTC)
			want := sampleProject("a1b2c3d4", created)

			require.NoError(t, db.SaveProject(ctx, want))
			got, err := db.GetProject(ctx, want.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("GetProject() mismatch (-want +got):\n%s", diff)
			}

			// Saving again rewrites children rather than appending.
			want.SubTasks = want.SubTasks[:1]
			want.Deliverables = want.Deliverables[:1]
			want.State = models.ProjectFailed
			want.FailureReason = "cancelled"
			require.NoError(t, db.SaveProject(ctx, want))
			got, err = db.GetProject(ctx, want.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("GetProject() after update mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetProject_NotFound(t *testing.T) {
	db := setupTestDB(t, DriverSQLite)
	p, err := db.GetProject(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestListProjects(t *testing.T) {
	db := setupTestDB(t, DriverSQLite)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	second := sampleProject("bbbb0002", base.Add(time.Hour))
	first := sampleProject("aaaa0001", base)
	finished := sampleProject("cccc0003", base.Add(2*time.Hour))
	finished.State = models.ProjectCompleted
	for _, p := range []*models.Project{second, first, finished} {
		require.NoError(t, db.SaveProject(ctx, p))
	}

	all, err := db.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"aaaa0001", "bbbb0002", "cccc0003"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Len(t, all[0].SubTasks, 3, "children are loaded for listed projects")

	active, err := db.ListActiveProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestDeleteProject_Cascades(t *testing.T) {
	db := setupTestDB(t, DriverSQLite)
	ctx := context.Background()
	require.NoError(t, db.SaveProject(ctx, sampleProject("dead0001", time.Now())))

	require.NoError(t, db.DeleteProject(ctx, "dead0001"))

	for _, table := range []string{"subtasks", "deliverables"} {
		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count, table)
	}
}

func TestPurgeFinishedProjects(t *testing.T) {
	db := setupTestDB(t, DriverSQLite)
	ctx := context.Background()

	old := sampleProject("old00001", time.Now().Add(-72*time.Hour))
	old.UpdatedAt = time.Now().Add(-48 * time.Hour)
	old.State = models.ProjectCompleted
	oldActive := sampleProject("old00002", time.Now().Add(-72*time.Hour))
	oldActive.UpdatedAt = time.Now().Add(-48 * time.Hour)
	recent := sampleProject("new00001", time.Now())
	recent.UpdatedAt = time.Now()
	recent.State = models.ProjectFailed
	for _, p := range []*models.Project{old, oldActive, recent} {
		require.NoError(t, db.SaveProject(ctx, p))
	}

	n, err := db.PurgeFinishedProjects(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, err := db.GetProject(ctx, "old00002")
	require.NoError(t, err)
	assert.NotNil(t, p, "active projects are never purged")
}

func TestSession(t *testing.T) {
	db := setupTestDB(t, DriverSQLite)
	ctx := context.Background()

	s, err := db.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	want := models.SessionState{
		Mode:          models.ModeCompany,
		ActiveProject: "a1b2c3d4",
		Tier:          models.TierUltra,
		Conversation: []models.Turn{
			{Role: "user", Content: "hi", At: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Role: "assistant", Persona: "david_park", Content: "hello", At: time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)},
		},
	}
	require.NoError(t, db.SaveSession(ctx, want))
	want.Mode = models.ModePersonal
	require.NoError(t, db.SaveSession(ctx, want))

	got, err := db.LoadSession(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("LoadSession() mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckForInterrupted(t *testing.T) {
	db := setupTestDB(t, DriverSQLite)
	ctx := context.Background()
	require.NoError(t, db.SaveProject(ctx, sampleProject("a1b2c3d4", time.Now())))
	done := sampleProject("e5f6a7b8", time.Now())
	done.State = models.ProjectCompleted
	require.NoError(t, db.SaveProject(ctx, done))

	got, err := db.CheckForInterrupted(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1b2c3d4", got[0].ID)
	assert.Equal(t, 1, got[0].Running)
	assert.Equal(t, 1, got[0].Pending)
}
