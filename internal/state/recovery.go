package state

import (
	"context"
	"fmt"
	"time"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// InterruptedProject describes a project a previous process left unfinished.
type InterruptedProject struct {
	ID           string
	Name         string
	State        models.ProjectState
	Running      int
	Pending      int
	LastActivity time.Time
}

// CheckForInterrupted lists non-terminal projects, counting sub-tasks that were
// mid-call when the previous process stopped.
func (db *DB) CheckForInterrupted(ctx context.Context) ([]InterruptedProject, error) {
	projects, err := db.ListActiveProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("check interrupted: %w", err)
	}

	var out []InterruptedProject
	for _, p := range projects {
		ip := InterruptedProject{ID: p.ID, Name: p.Name, State: p.State, LastActivity: p.UpdatedAt}
		for _, st := range p.SubTasks {
			switch st.Status {
			case models.SubTaskRunning:
				ip.Running++
			case models.SubTaskPending:
				ip.Pending++
			}
			if st.StartedAt != nil && st.StartedAt.After(ip.LastActivity) {
				ip.LastActivity = *st.StartedAt
			}
		}
		out = append(out, ip)
	}
	return out, nil
}
