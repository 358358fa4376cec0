package models

import (
	"slices"
	"time"
)

// ProjectState is the lifecycle state of a company-mode project.
type ProjectState string

const (
	ProjectCreated    ProjectState = "created"
	ProjectDecomposed ProjectState = "decomposed"
	ProjectInProgress ProjectState = "in_progress"
	ProjectCompleted  ProjectState = "completed"
	ProjectFailed     ProjectState = "failed"
)

// Valid returns true if the state is a known value.
func (s ProjectState) Valid() bool {
	switch s {
	case ProjectCreated, ProjectDecomposed, ProjectInProgress, ProjectCompleted, ProjectFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true for Completed and Failed.
func (s ProjectState) Terminal() bool {
	return s == ProjectCompleted || s == ProjectFailed
}

// DeliverableKind classifies an entry in the deliverable log.
type DeliverableKind string

const (
	DeliverableResult  DeliverableKind = "result"
	DeliverableFailure DeliverableKind = "failure"
	DeliverableNote    DeliverableKind = "note"
)

// Deliverable is one entry in a project's deliverable log.
type Deliverable struct {
	SubTask int             `json:"subtask"`
	Persona string          `json:"persona,omitempty"`
	Model   string          `json:"model,omitempty"`
	Kind    DeliverableKind `json:"kind"`
	Content string          `json:"content"`
	At      time.Time       `json:"at"`
}

// Project is a multi-sub-task unit of company-mode work.
type Project struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Brief         string        `json:"brief"`
	State         ProjectState  `json:"state"`
	SubTasks      []SubTask     `json:"subtasks"`
	Deliverables  []Deliverable `json:"deliverables,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// Progress returns the percentage of sub-tasks in a terminal state.
func (p *Project) Progress() float64 {
	if p.State == ProjectCompleted {
		return 100
	}
	if len(p.SubTasks) == 0 {
		return 0
	}
	done := 0
	for _, st := range p.SubTasks {
		if st.Status.Terminal() {
			done++
		}
	}
	return float64(done) * 100 / float64(len(p.SubTasks))
}

// Health summarizes progress in words.
func (p *Project) Health() string {
	switch progress := p.Progress(); {
	case progress >= 80:
		return "Excellent - nearing completion"
	case progress >= 50:
		return "Good - on track"
	case progress >= 20:
		return "Fair - needs attention"
	default:
		return "At Risk - requires immediate review"
	}
}

// Team returns the distinct persona keys assigned to sub-tasks, in order of first use.
func (p *Project) Team() []string {
	var team []string
	for _, st := range p.SubTasks {
		if st.Persona != "" && !slices.Contains(team, st.Persona) {
			team = append(team, st.Persona)
		}
	}
	return team
}

// Clone returns a deep copy safe to hand to other goroutines.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.SubTasks = make([]SubTask, len(p.SubTasks))
	for i, st := range p.SubTasks {
		st.DependsOn = slices.Clone(st.DependsOn)
		c.SubTasks[i] = st
	}
	c.Deliverables = slices.Clone(p.Deliverables)
	return &c
}
