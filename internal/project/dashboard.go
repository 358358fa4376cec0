package project

import (
	"context"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// ProjectsPerPersona is how many concurrent projects one persona is
// counted as able to carry when computing utilization.
const ProjectsPerPersona = 2

// Summary is one dashboard row.
type Summary struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	State    models.ProjectState `json:"state"`
	Progress float64             `json:"progress"`
	Health   string              `json:"health"`
	TeamSize int                 `json:"team_size"`
}

// Dashboard is a read-only view of company activity.
type Dashboard struct {
	Active      int       `json:"active_projects"`
	Completed   int       `json:"completed_projects"`
	Failed      int       `json:"failed_projects"`
	TotalAgents int       `json:"total_agents"`
	Utilization float64   `json:"utilization"`
	Projects    []Summary `json:"projects"`
}

// Dashboard summarizes every project. Utilization is active projects over
// team capacity, capped at 1.
func (m *Manager) Dashboard(ctx context.Context) (Dashboard, error) {
	projects, err := m.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{TotalAgents: len(m.catalog.List())}
	for _, p := range projects {
		switch p.State {
		case models.ProjectCompleted:
			d.Completed++
		case models.ProjectFailed:
			d.Failed++
		default:
			d.Active++
		}
		d.Projects = append(d.Projects, Summarize(p))
	}
	d.Utilization = Utilization(d.Active, d.TotalAgents)
	return d, nil
}

// Summarize builds the dashboard row for a project.
func Summarize(p *models.Project) Summary {
	return Summary{
		ID:       p.ID,
		Name:     p.Name,
		State:    p.State,
		Progress: p.Progress(),
		Health:   p.Health(),
		TeamSize: len(p.Team()),
	}
}

// Utilization is active / (team × ProjectsPerPersona), capped at 1.
func Utilization(active, team int) float64 {
	capacity := team * ProjectsPerPersona
	if capacity <= 0 {
		return 0
	}
	return min(1, float64(active)/float64(capacity))
}
