// Package router selects a persona for a task, resolves it to a model through
// the active tier, and walks a fixed fallback chain when models fail.
package router

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/registry"
	"github.com/SharminSirajudeen/nova/internal/runtime"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

// RequiredConfig holds the collaborators a Router cannot work without.
type RequiredConfig struct {
	Tiers    *tiers.Manager
	Registry *registry.Registry
	Catalog  *persona.Catalog
	Invoker  runtime.Invoker
}

// Option configures a Router.
type Option func(*Router)

// WithClassifier replaces the keyword classifier.
func WithClassifier(c Classifier) Option {
	return func(r *Router) { r.classifier = c }
}

// WithAdapter replaces the tiered prompt adapter.
func WithAdapter(a persona.Adapter) Option {
	return func(r *Router) { r.adapter = a }
}

// WithFallback replaces the fallback table.
func WithFallback(t FallbackTable) Option {
	return func(r *Router) { r.fallback = t }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// Router is safe for concurrent use. It holds no per-task state.
type Router struct {
	tiers      *tiers.Manager
	registry   *registry.Registry
	catalog    *persona.Catalog
	invoker    runtime.Invoker
	classifier Classifier
	adapter    persona.Adapter
	fallback   FallbackTable
	logger     *zap.Logger
}

// New creates a Router.
func New(cfg RequiredConfig, opts ...Option) *Router {
	r := &Router{
		tiers:      cfg.Tiers,
		registry:   cfg.Registry,
		catalog:    cfg.Catalog,
		invoker:    cfg.Invoker,
		classifier: NewKeywordClassifier(),
		fallback:   DefaultFallback,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.adapter == nil {
		r.adapter = persona.NewTieredAdapter(cfg.Catalog)
	}
	return r
}

// Decision is the outcome of routing a task.
type Decision struct {
	Persona models.Persona `json:"persona"`
	// Role is the persona's role. The model may belong to a fallback role.
	Role models.Role `json:"role"`
	// ServedBy is the role whose model was selected.
	ServedBy        models.Role    `json:"served_by"`
	Model           string         `json:"model"`
	Prompt          string         `json:"-"`
	Tier            models.Tier    `json:"tier"`
	SnapshotVersion uint64         `json:"snapshot_version"`
	Classification  Classification `json:"-"`
	Attempted       []Attempt      `json:"attempted"`
}

// Result is a routed and executed task.
type Result struct {
	Decision
	Output string `json:"output"`
}

// Classify exposes the router's classifier.
func (r *Router) Classify(text string) Classification {
	return r.classifier.Classify(text)
}

type selection struct {
	persona models.Persona
	class   Classification
}

// selectPersona applies, in order: explicit persona, explicit role hint, classifier.
func (r *Router) selectPersona(task models.Task) (selection, error) {
	if task.Persona != "" {
		p, err := r.catalog.Lookup(task.Persona)
		if err != nil {
			return selection{}, err
		}
		return selection{persona: p, class: Classification{Role: p.Role}}, nil
	}

	class := Classification{Role: task.Hint}
	if !task.Hint.Valid() {
		class = r.classifier.Classify(task.Goal)
		if class.Ambiguous() {
			r.logger.Debug("classification ambiguous, using universal", zap.String("goal", truncate(task.Goal, 80)))
		}
	}
	p, err := r.catalog.Lead(class.Role)
	if err != nil {
		return selection{}, err
	}
	return selection{persona: p, class: class}, nil
}

// Route selects a persona and the first available model in its fallback chain
// without invoking anything.
func (r *Router) Route(task models.Task) (Decision, error) {
	snap := r.tiers.Snapshot()
	sel, err := r.selectPersona(task)
	if err != nil {
		return Decision{}, err
	}

	d := r.newDecision(snap, sel, task)
	for _, role := range r.fallback.Chain(sel.persona.Role) {
		model, err := snap.Resolve(role, snap.Active)
		if err != nil {
			return Decision{}, err
		}
		if !r.registry.Available(model) {
			d.Attempted = append(d.Attempted, Attempt{Role: role, Model: model, Outcome: OutcomeMissing})
			continue
		}
		d.ServedBy, d.Model = role, model
		return d, nil
	}
	return Decision{}, &NoModelAvailableError{Role: sel.persona.Role, Tier: snap.Active, Attempted: d.Attempted}
}

// Execute routes the task and invokes the model, walking the fallback chain on failure.
// Unavailable models are marked missing. Timeouts and other failures are retried
// once on the same model before moving on.
func (r *Router) Execute(ctx context.Context, task models.Task) (Result, error) {
	snap := r.tiers.Snapshot()
	sel, err := r.selectPersona(task)
	if err != nil {
		return Result{}, err
	}

	d := r.newDecision(snap, sel, task)
	var failures []error
	tried := make(map[string]bool)

	for _, role := range r.fallback.Chain(sel.persona.Role) {
		model, err := snap.Resolve(role, snap.Active)
		if err != nil {
			return Result{}, err
		}
		if tried[model] {
			d.Attempted = append(d.Attempted, Attempt{Role: role, Model: model, Outcome: OutcomeDuplicate})
			continue
		}
		if !r.registry.Available(model) {
			d.Attempted = append(d.Attempted, Attempt{Role: role, Model: model, Outcome: OutcomeMissing})
			continue
		}
		tried[model] = true

		out, tries, err := r.invoke(ctx, model, d.Prompt, sel.persona.Profile.Temperature)
		if err == nil {
			d.Attempted = append(d.Attempted, Attempt{Role: role, Model: model, Outcome: OutcomeOK, Tries: tries})
			d.ServedBy, d.Model = role, model
			r.logger.Debug("task executed",
				zap.String("persona", sel.persona.Key),
				zap.String("role", string(role)),
				zap.String("model", model),
				zap.Int("fallbacks", len(d.Attempted)-1))
			return Result{Decision: d, Output: out}, nil
		}

		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("execute %s: %w", sel.persona.Key, ctx.Err())
		}

		attempt := Attempt{Role: role, Model: model, Tries: tries, Err: err.Error()}
		switch runtime.KindOf(err) {
		case runtime.KindUnavailable:
			attempt.Outcome = OutcomeUnavailable
			r.registry.MarkMissing(model)
		case runtime.KindTimeout:
			attempt.Outcome = OutcomeTimeout
		default:
			attempt.Outcome = OutcomeFailed
		}
		d.Attempted = append(d.Attempted, attempt)
		failures = append(failures, &ModelUnavailableError{Role: role, Model: model, Err: err})
		r.logger.Warn("model failed, falling back",
			zap.String("role", string(role)),
			zap.String("model", model),
			zap.String("outcome", string(attempt.Outcome)),
			zap.Error(err))
	}

	return Result{}, &NoModelAvailableError{
		Role:      sel.persona.Role,
		Tier:      snap.Active,
		Attempted: d.Attempted,
		Failures:  failures,
	}
}

func (r *Router) invoke(ctx context.Context, model, prompt string, temp float64) (string, int, error) {
	req := runtime.Request{Model: model, Prompt: prompt, Temperature: temp}
	out, err := r.invoker.Invoke(ctx, req)
	if err == nil || runtime.KindOf(err) == runtime.KindUnavailable || ctx.Err() != nil {
		return out, 1, err
	}
	out, err = r.invoker.Invoke(ctx, req)
	return out, 2, err
}

// newDecision builds the prompt once, from the originally selected persona.
// Fallback changes the backing model, never the persona's voice.
func (r *Router) newDecision(snap *tiers.Snapshot, sel selection, task models.Task) Decision {
	return Decision{
		Persona:         sel.persona,
		Role:            sel.persona.Role,
		Tier:            snap.Active,
		SnapshotVersion: snap.Version,
		Classification:  sel.class,
		Prompt:          r.adapter.Adapt(sel.persona, snap.Active, promptText(task)),
	}
}

func promptText(task models.Task) string {
	if strings.TrimSpace(task.Context) == "" {
		return task.Goal
	}
	return task.Goal + "\n\nContext from earlier work:\n" + task.Context
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
