package models

import (
	"slices"
	"time"
)

// Turn is one exchange in the personal-mode conversation.
type Turn struct {
	Role    string    `json:"role"`
	Persona string    `json:"persona,omitempty"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// SessionState is the process-wide mode/tier state that survives restarts.
type SessionState struct {
	Mode          Mode   `json:"mode"`
	ActiveProject string `json:"active_project,omitempty"`
	Tier          Tier   `json:"tier"`
	Conversation  []Turn `json:"conversation,omitempty"`
}

// Clone returns a copy that does not share the conversation slice.
func (s SessionState) Clone() SessionState {
	s.Conversation = slices.Clone(s.Conversation)
	return s
}
