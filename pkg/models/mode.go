package models

import "strings"

// Mode is the process-wide operating mode.
type Mode string

const (
	// ModePersonal routes requests straight back to the caller.
	ModePersonal Mode = "personal"
	// ModeCompany runs multi-persona projects.
	ModeCompany Mode = "company"
)

// Valid returns true if the mode is a known value.
func (m Mode) Valid() bool {
	return m == ModePersonal || m == ModeCompany
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}
