package models

import "time"

// Task is a single user request. It is not persisted unless attached to a project.
type Task struct {
	// Goal is the free-text request.
	Goal string `json:"goal"`
	// Hint is an optional explicit role for the task.
	Hint Role `json:"hint,omitempty"`
	// Persona is an optional explicit persona key.
	Persona string `json:"persona,omitempty"`
	// Mode is the mode the task originated in.
	Mode Mode `json:"mode"`
	// Context carries prior deliverables or conversation the prompt should include.
	Context string `json:"context,omitempty"`
}

// SubTaskStatus is the per-sub-task execution state.
type SubTaskStatus string

const (
	// SubTaskPending has not started.
	SubTaskPending SubTaskStatus = "pending"
	// SubTaskRunning is waiting on a model call.
	SubTaskRunning SubTaskStatus = "running"
	// SubTaskCompleted produced a deliverable.
	SubTaskCompleted SubTaskStatus = "completed"
	// SubTaskFailed exhausted its fallback chain.
	SubTaskFailed SubTaskStatus = "failed"
	// SubTaskSkipped was abandoned because the project failed or was cancelled.
	SubTaskSkipped SubTaskStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s SubTaskStatus) Valid() bool {
	switch s {
	case SubTaskPending, SubTaskRunning, SubTaskCompleted, SubTaskFailed, SubTaskSkipped:
		return true
	default:
		return false
	}
}

// Terminal returns true once the sub-task will not change again.
func (s SubTaskStatus) Terminal() bool {
	return s == SubTaskCompleted || s == SubTaskFailed || s == SubTaskSkipped
}

// SubTask is one decomposed unit of project work.
// Dependencies reference other sub-tasks by index in the owning project.
type SubTask struct {
	Index       int           `json:"index"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Role        Role          `json:"role"`
	Persona     string        `json:"persona"`
	DependsOn   []int         `json:"depends_on,omitempty"`
	Optional    bool          `json:"optional,omitempty"`
	Status      SubTaskStatus `json:"status"`
	// Model is the backing model that produced the output, set once resolved.
	Model string `json:"model,omitempty"`
	// Tier is the tier the model was resolved at.
	Tier        Tier       `json:"tier,omitempty"`
	Attempts    int        `json:"attempts"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
