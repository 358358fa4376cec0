package router

import (
	"fmt"
	"strings"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Outcome describes what happened to one candidate in the fallback chain.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeMissing     Outcome = "missing"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeFailed      Outcome = "failed"
	OutcomeDuplicate   Outcome = "already_tried"
)

// Attempt records one step of the fallback chain.
type Attempt struct {
	Role    models.Role `json:"role"`
	Model   string      `json:"model"`
	Outcome Outcome     `json:"outcome"`
	Tries   int         `json:"tries,omitempty"`
	Err     string      `json:"error,omitempty"`
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s:%s(%s)", a.Role, a.Model, a.Outcome)
}

// ModelUnavailableError means a model could not serve a request and the
// chain moved on. It is recoverable.
type ModelUnavailableError struct {
	Role  models.Role
	Model string
	Err   error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s for role %s unavailable: %v", e.Model, e.Role, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// NoModelAvailableError means every role in the fallback chain was exhausted.
// It is fatal for the task and names the whole sequence attempted.
type NoModelAvailableError struct {
	Role      models.Role
	Tier      models.Tier
	Attempted []Attempt
	// Failures holds the ModelUnavailableErrors collected along the chain.
	Failures []error
}

func (e *NoModelAvailableError) Error() string {
	steps := make([]string, len(e.Attempted))
	for i, a := range e.Attempted {
		steps[i] = a.String()
	}
	return fmt.Sprintf("no model available for role %s at tier %d; attempted %s",
		e.Role, int(e.Tier), strings.Join(steps, " -> "))
}

func (e *NoModelAvailableError) Unwrap() []error {
	return e.Failures
}
