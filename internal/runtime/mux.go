package runtime

import (
	"context"
	"errors"
	"strings"
)

// Mux routes requests to the Anthropic runtime for claude-* models and to Ollama otherwise.
type Mux struct {
	ollama    *Ollama
	anthropic *Anthropic
}

// NewMux creates a Mux. Either runtime may be nil.
func NewMux(ollama *Ollama, anthropic *Anthropic) *Mux {
	return &Mux{ollama: ollama, anthropic: anthropic}
}

// Provider names the runtime that serves a model identifier.
func Provider(model string) string {
	if strings.HasPrefix(strings.ToLower(model), AnthropicPrefix) {
		return "anthropic"
	}
	return "ollama"
}

// Invoke dispatches to the runtime that owns the model.
func (m *Mux) Invoke(ctx context.Context, req Request) (string, error) {
	switch Provider(req.Model) {
	case "anthropic":
		if m.anthropic == nil {
			return "", Unavailable(req.Model, ErrNotConfigured)
		}
		return m.anthropic.Invoke(ctx, req)
	default:
		if m.ollama == nil {
			return "", Unavailable(req.Model, errors.New("ollama runtime not configured"))
		}
		return m.ollama.Invoke(ctx, req)
	}
}

// ListModels merges the model lists of both runtimes.
// It only fails when every configured runtime fails.
func (m *Mux) ListModels(ctx context.Context) ([]string, error) {
	var (
		names []string
		errs  []error
		tried int
	)
	if m.ollama != nil {
		tried++
		got, err := m.ollama.ListModels(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		names = append(names, got...)
	}
	if m.anthropic != nil && m.anthropic.Configured() {
		tried++
		got, err := m.anthropic.ListModels(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		names = append(names, got...)
	}
	if tried > 0 && len(errs) == tried {
		return nil, errors.Join(errs...)
	}
	return names, nil
}
