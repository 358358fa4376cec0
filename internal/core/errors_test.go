package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SharminSirajudeen/nova/internal/mode"
	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/router"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

func TestCommandError(t *testing.T) {
	noModel := &router.NoModelAvailableError{
		Role: models.RoleCreative,
		Tier: models.TierUltra,
		Attempted: []router.Attempt{
			{Role: models.RoleCreative, Model: "dolphin3:8b", Outcome: router.OutcomeMissing},
		},
	}

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"no model", fmt.Errorf("execute: %w", noModel), CodeNoModelAvailable},
		{"unresolved", &tiers.UnresolvedRoleError{Role: models.RoleCoding, Tier: 2}, CodeUnresolvedRole},
		{"project not found", fmt.Errorf("get: %w", project.ErrNotFound), CodeNotFound},
		{"persona not found", persona.ErrNotFound, CodeNotFound},
		{"unknown tier", fmt.Errorf("%w: 9", tiers.ErrUnknownTier), CodeInvalidArgument},
		{"invalid mode", mode.ErrInvalidMode, CodeInvalidArgument},
		{"terminal project", project.ErrProjectTerminal, CodeInvalidArgument},
		{"other", errors.New("disk full"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := commandError(tt.err)
			var ce *CommandError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CommandError, got %T", err)
			}
			if ce.Code != tt.want {
				t.Errorf("code = %s, want %s", ce.Code, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("CommandError should unwrap to the cause")
			}
		})
	}
}

func TestCommandError_CarriesRouteDetails(t *testing.T) {
	noModel := &router.NoModelAvailableError{
		Role:      models.RoleCreative,
		Attempted: []router.Attempt{{Role: models.RoleCreative, Model: "dolphin3:8b", Outcome: router.OutcomeMissing}},
	}
	var ce *CommandError
	if !errors.As(commandError(noModel), &ce) {
		t.Fatal("expected *CommandError")
	}
	if ce.Role != models.RoleCreative || len(ce.Attempted) != 1 {
		t.Errorf("route details lost: %+v", ce)
	}
}

func TestCommandError_NilAndPassthrough(t *testing.T) {
	if commandError(nil) != nil {
		t.Error("nil should map to nil")
	}
	orig := invalid("bad %s", "input")
	if got := commandError(fmt.Errorf("wrapped: %w", orig)); got != error(orig) {
		t.Errorf("existing CommandError should pass through, got %v", got)
	}
}
