package models

import "testing"

func TestProject_Progress(t *testing.T) {
	p := &Project{
		State: ProjectInProgress,
		SubTasks: []SubTask{
			{Index: 0, Status: SubTaskCompleted},
			{Index: 1, Status: SubTaskRunning},
			{Index: 2, Status: SubTaskFailed},
			{Index: 3, Status: SubTaskPending},
		},
	}

	if got := p.Progress(); got != 50 {
		t.Errorf("Progress() = %v, want 50", got)
	}
	if got := p.Health(); got != "Good - on track" {
		t.Errorf("Health() = %q, want %q", got, "Good - on track")
	}

	p.State = ProjectCompleted
	if got := p.Progress(); got != 100 {
		t.Errorf("Progress() on completed project = %v, want 100", got)
	}
}

func TestProject_HealthThresholds(t *testing.T) {
	tests := []struct {
		done int
		want string
	}{
		{0, "At Risk - requires immediate review"},
		{1, "Fair - needs attention"},
		{3, "Good - on track"},
		{4, "Excellent - nearing completion"},
	}

	for _, tt := range tests {
		p := &Project{State: ProjectInProgress}
		for i := 0; i < 5; i++ {
			status := SubTaskPending
			if i < tt.done {
				status = SubTaskCompleted
			}
			p.SubTasks = append(p.SubTasks, SubTask{Index: i, Status: status})
		}
		if got := p.Health(); got != tt.want {
			t.Errorf("Health() with %d/5 done = %q, want %q", tt.done, got, tt.want)
		}
	}
}

func TestProject_TeamIsDistinct(t *testing.T) {
	p := &Project{SubTasks: []SubTask{
		{Persona: "kai_nakamura"},
		{Persona: "emma_thompson"},
		{Persona: "kai_nakamura"},
		{Persona: ""},
	}}

	team := p.Team()
	if len(team) != 2 || team[0] != "kai_nakamura" || team[1] != "emma_thompson" {
		t.Errorf("Team() = %v, want [kai_nakamura emma_thompson]", team)
	}
}

func TestProject_CloneIsDeep(t *testing.T) {
	p := &Project{
		ID:           "abc",
		SubTasks:     []SubTask{{Index: 1, DependsOn: []int{0}}},
		Deliverables: []Deliverable{{Content: "x"}},
	}
	c := p.Clone()
	c.SubTasks[0].DependsOn[0] = 9
	c.SubTasks[0].Status = SubTaskFailed
	c.Deliverables[0].Content = "y"

	if p.SubTasks[0].DependsOn[0] != 0 {
		t.Error("Clone shares DependsOn backing array")
	}
	if p.SubTasks[0].Status != "" {
		t.Error("Clone shares SubTasks backing array")
	}
	if p.Deliverables[0].Content != "x" {
		t.Error("Clone shares Deliverables backing array")
	}
}

func TestSubTaskStatus_Terminal(t *testing.T) {
	tests := []struct {
		status SubTaskStatus
		want   bool
	}{
		{SubTaskPending, false},
		{SubTaskRunning, false},
		{SubTaskCompleted, true},
		{SubTaskFailed, true},
		{SubTaskSkipped, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("SubTaskStatus(%q).Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
