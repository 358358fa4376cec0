package models

import (
	"slices"
	"time"
)

// ModelStatus is the install/availability status of a backing model.
type ModelStatus string

const (
	// ModelAvailable means the runtime reports the model as installed.
	ModelAvailable ModelStatus = "available"
	// ModelMissing means the model is not installed or not reachable.
	ModelMissing ModelStatus = "missing"
)

// Valid returns true if the status is a known value.
func (s ModelStatus) Valid() bool {
	return s == ModelAvailable || s == ModelMissing
}

// Model is a backing language model known to the registry.
type Model struct {
	// ID is the runtime identifier, e.g. "deepseek-coder:33b".
	ID string `json:"id"`
	// Tier is the lowest tier that declares this model. Zero if undeclared.
	Tier Tier `json:"tier"`
	// Roles lists the roles this model is declared to serve.
	Roles []Role `json:"roles,omitempty"`
	// Status is refreshed by the registry.
	Status ModelStatus `json:"status"`
	// Provider is the runtime that serves the model ("ollama", "anthropic").
	Provider string `json:"provider,omitempty"`
	// SizeGB is the approximate download size, if known.
	SizeGB float64 `json:"size_gb,omitempty"`
	// LastChecked is when the status was last refreshed.
	LastChecked time.Time `json:"last_checked,omitempty"`
}

// Serves returns true if the model declares the given role.
func (m Model) Serves(r Role) bool {
	return slices.Contains(m.Roles, r)
}
