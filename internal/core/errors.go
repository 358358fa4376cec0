package core

import (
	"errors"
	"fmt"

	"github.com/SharminSirajudeen/nova/internal/mode"
	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/router"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Code classifies a CommandError for callers and for --json output.
type Code string

const (
	CodeInvalidArgument  Code = "invalid_argument"
	CodeNotFound         Code = "not_found"
	CodeModeRequired     Code = "mode_required"
	CodeUnresolvedRole   Code = "unresolved_role"
	CodeNoModelAvailable Code = "no_model_available"
	CodeInternal         Code = "internal"
)

// CommandError is the only error type returned by Core operations.
type CommandError struct {
	Code      Code             `json:"code"`
	Message   string           `json:"message"`
	Role      models.Role      `json:"role,omitempty"`
	Model     string           `json:"model,omitempty"`
	Attempted []router.Attempt `json:"attempted,omitempty"`
	Err       error            `json:"-"`
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// commandError maps a lower-level error onto a CommandError.
func commandError(err error) error {
	if err == nil {
		return nil
	}

	var ce *CommandError
	if errors.As(err, &ce) {
		return ce
	}

	out := &CommandError{Code: CodeInternal, Message: err.Error(), Err: err}

	var unresolved *tiers.UnresolvedRoleError
	var noModel *router.NoModelAvailableError
	switch {
	case errors.As(err, &noModel):
		out.Code = CodeNoModelAvailable
		out.Role = noModel.Role
		out.Attempted = noModel.Attempted
	case errors.As(err, &unresolved):
		out.Code = CodeUnresolvedRole
		out.Role = unresolved.Role
	case errors.Is(err, project.ErrNotFound), errors.Is(err, persona.ErrNotFound):
		out.Code = CodeNotFound
	case errors.Is(err, tiers.ErrUnknownTier),
		errors.Is(err, mode.ErrInvalidMode),
		errors.Is(err, project.ErrEmptyBrief),
		errors.Is(err, project.ErrProjectTerminal),
		errors.Is(err, project.ErrInvalidState),
		errors.Is(err, project.ErrAlreadyRunning):
		out.Code = CodeInvalidArgument
	}
	return out
}
