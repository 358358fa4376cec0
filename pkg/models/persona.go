package models

// Profile controls how prompts are adapted for a persona.
type Profile struct {
	// Tone is a short description of the persona's voice.
	Tone string `json:"tone" yaml:"tone"`
	// DepthBias shifts the effective prompt depth relative to the tier.
	// Negative values favor concise framing, positive values deeper analysis.
	DepthBias int `json:"depth_bias" yaml:"depth_bias"`
	// Temperature is the sampling temperature requested from the runtime.
	Temperature float64 `json:"temperature" yaml:"temperature"`
	// Influences are keys into the influence table, in priority order.
	Influences []string `json:"influences" yaml:"influences"`
}

// Persona is a named agent identity backed by exactly one role.
type Persona struct {
	// Key is the stable lookup key, e.g. "kai_nakamura".
	Key string `json:"key" yaml:"key"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Title is the job-like title, e.g. "CTO".
	Title string `json:"title" yaml:"title"`
	// Role is the single functional role this persona maps to.
	Role Role `json:"role" yaml:"role"`
	// Description summarizes the persona.
	Description string `json:"description" yaml:"description"`
	// Profile is the prompt-adaptation profile.
	Profile Profile `json:"profile" yaml:"profile"`
}

// Label returns "Name (Title)", or just the name when no title is set.
func (p Persona) Label() string {
	if p.Title == "" {
		return p.Name
	}
	return p.Name + " (" + p.Title + ")"
}
