package persona

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Adapter turns a persona, a tier, and a task into the final prompt.
// Implementations must be pure.
type Adapter interface {
	Adapt(p models.Persona, tier models.Tier, task string) string
}

// Depth levels of prompt framing.
const (
	DepthConcise  = 1
	DepthBalanced = 2
	DepthDeep     = 3
)

// principlesPerDepth caps the principles listed at each depth.
var principlesPerDepth = map[int]int{
	DepthConcise:  4,
	DepthBalanced: 6,
	DepthDeep:     8,
}

// TieredAdapter scales prompt depth with the tier. Low tiers get short,
// directive framing; high tiers are invited to reason from several perspectives.
type TieredAdapter struct {
	influences map[string]Influence
}

// NewTieredAdapter creates an adapter backed by the catalog's influence table.
func NewTieredAdapter(c *Catalog) *TieredAdapter {
	return &TieredAdapter{influences: c.Influences()}
}

// Depth returns the effective depth for a persona at a tier, clamped to 1..3.
func Depth(p models.Persona, tier models.Tier) int {
	d := int(tier) + p.Profile.DepthBias
	return max(DepthConcise, min(DepthDeep, d))
}

// Adapt builds the prompt.
func (a *TieredAdapter) Adapt(p models.Persona, tier models.Tier, task string) string {
	depth := Depth(p, tier)
	minds := a.minds(p)
	principles := a.principles(p, principlesPerDepth[depth])

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.", p.Label())
	if p.Description != "" {
		fmt.Fprintf(&b, " %s.", strings.TrimSuffix(p.Description, "."))
	}
	b.WriteString("\n\n")

	switch depth {
	case DepthConcise:
		names := make([]string, len(minds))
		for i, m := range minds {
			names[i] = m.Name
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, "Think like: %s\n", strings.Join(names, ", "))
		}
		if len(principles) > 0 {
			fmt.Fprintf(&b, "Principles: %s\n", strings.Join(principles, "; "))
		}
	case DepthBalanced:
		if len(minds) > 0 {
			b.WriteString("Channel these legendary minds:\n")
			for _, m := range minds {
				fmt.Fprintf(&b, "- %s: %s\n", m.Name, m.ThinkingStyle)
			}
		}
		writeList(&b, "Key principles:", principles)
	default:
		if len(minds) > 0 {
			b.WriteString("Embody the combined wisdom of:\n")
			for _, m := range minds {
				fmt.Fprintf(&b, "- %s (%s)\n", m.Name, m.ThinkingStyle)
			}
		}
		writeList(&b, "Core principles:", principles)
	}
	if p.Profile.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", p.Profile.Tone)
	}

	fmt.Fprintf(&b, "\nTask: %s\n\n", strings.TrimSpace(task))

	switch depth {
	case DepthConcise:
		b.WriteString("Be direct, practical, and actionable. Give one clear answer.")
	case DepthBalanced:
		b.WriteString("Be insightful, strategic, and practical. Explain the key trade-offs briefly.")
	default:
		b.WriteString("Provide deep analysis: examine the problem from multiple perspectives, " +
			"weigh trade-offs and risks, and consider long-term implications. " +
			"Finish with concrete recommendations.")
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading + "\n")
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func (a *TieredAdapter) minds(p models.Persona) []Influence {
	out := make([]Influence, 0, len(p.Profile.Influences))
	for _, key := range p.Profile.Influences {
		if inf, ok := a.influences[key]; ok {
			out = append(out, inf)
			continue
		}
		out = append(out, Influence{Name: humanize(key)})
	}
	return out
}

// principles interleaves the influences' principles so every mind is represented
// before any contributes a second one.
func (a *TieredAdapter) principles(p models.Persona, limit int) []string {
	minds := a.minds(p)
	var out []string
	for round := 0; len(out) < limit; round++ {
		added := false
		for _, m := range minds {
			if round >= len(m.Principles) {
				continue
			}
			added = true
			if pr := m.Principles[round]; !slices.Contains(out, pr) {
				out = append(out, pr)
				if len(out) == limit {
					break
				}
			}
		}
		if !added {
			break
		}
	}
	return out
}

func humanize(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
