// Package registry tracks the backing models and whether the runtime has them installed.
package registry

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/runtime"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Registry holds every model ever seen. Entries are never removed,
// only marked missing.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*models.Model
	lister runtime.Lister
	logger *zap.Logger
	now    func() time.Time
	// refreshErr is the runtime error from the last Refresh, if any.
	refreshErr error
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates a registry seeded with the declared models.
// Declared models start available until a refresh says otherwise.
func New(lister runtime.Lister, declared []models.Model, opts ...Option) *Registry {
	r := &Registry{
		models: make(map[string]*models.Model),
		lister: lister,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Declare(declared...)
	return r
}

// Declare adds models that are not yet known and merges the roles of known ones.
func (r *Registry) Declare(declared ...models.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range declared {
		existing, ok := r.models[m.ID]
		if !ok {
			c := m
			c.Roles = slices.Clone(m.Roles)
			if c.Status == "" {
				c.Status = models.ModelAvailable
			}
			if c.Provider == "" {
				c.Provider = runtime.Provider(c.ID)
			}
			r.models[c.ID] = &c
			continue
		}
		for _, role := range m.Roles {
			if !existing.Serves(role) {
				existing.Roles = append(existing.Roles, role)
			}
		}
		if existing.Tier == 0 || (m.Tier != 0 && m.Tier < existing.Tier) {
			existing.Tier = m.Tier
		}
		if existing.SizeGB == 0 {
			existing.SizeGB = m.SizeGB
		}
	}
}

// List returns a copy of every model, sorted by tier then ID.
func (r *Registry) List() []models.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Model, 0, len(r.models))
	for _, m := range r.models {
		c := *m
		c.Roles = slices.Clone(m.Roles)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Model) int {
		if a.Tier != b.Tier {
			return int(a.Tier) - int(b.Tier)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Status returns the status of a model. Unknown models are missing.
func (r *Registry) Status(id string) models.ModelStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[id]; ok {
		return m.Status
	}
	return models.ModelMissing
}

// Available is shorthand for Status(id) == available.
func (r *Registry) Available(id string) bool {
	return r.Status(id) == models.ModelAvailable
}

// MarkMissing records that a model could not be used. Unknown IDs are added.
func (r *Registry) MarkMissing(id string) {
	r.setStatus(id, models.ModelMissing)
}

// MarkAvailable records that a model answered.
func (r *Registry) MarkAvailable(id string) {
	r.setStatus(id, models.ModelAvailable)
}

func (r *Registry) setStatus(id string, status models.ModelStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.models[id]
	if !ok {
		m = &models.Model{ID: id, Provider: runtime.Provider(id)}
		r.models[id] = m
	}
	if m.Status != status {
		r.logger.Info("model status changed",
			zap.String("model", id),
			zap.String("from", string(m.Status)),
			zap.String("to", string(status)))
	}
	m.Status = status
	m.LastChecked = r.now()
}

// Refresh re-queries the runtime. It never fails: if the runtime cannot be
// reached every model is marked missing and the error is logged.
func (r *Registry) Refresh(ctx context.Context) error {
	var (
		installed []string
		err       error
	)
	if r.lister != nil {
		installed, err = r.lister.ListModels(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	r.refreshErr = err
	if err != nil {
		r.logger.Warn("model refresh failed, marking all models missing", zap.Error(err))
		for _, m := range r.models {
			m.Status = models.ModelMissing
			m.LastChecked = now
		}
		return nil
	}

	for _, m := range r.models {
		if Installed(m.ID, installed) {
			m.Status = models.ModelAvailable
		} else {
			m.Status = models.ModelMissing
		}
		m.LastChecked = now
	}

	for _, name := range installed {
		if _, ok := r.models[name]; ok || r.matchesKnown(name) {
			continue
		}
		r.models[name] = &models.Model{
			ID:          name,
			Status:      models.ModelAvailable,
			Provider:    runtime.Provider(name),
			LastChecked: now,
		}
	}

	r.logger.Debug("model refresh complete", zap.Int("installed", len(installed)), zap.Int("known", len(r.models)))
	return nil
}

// RefreshError returns the runtime error absorbed by the last Refresh.
func (r *Registry) RefreshError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshErr
}

func (r *Registry) matchesKnown(name string) bool {
	for id := range r.models {
		if Installed(id, []string{name}) {
			return true
		}
	}
	return false
}

// Installed reports whether id appears in the installed list, either exactly
// or as a tag variant sharing the same base name and size.
// "deepseek-coder:33b" matches "deepseek-coder:33b-instruct-q4_0".
// A bare name such as "dolphin3" matches any installed tag of it.
func Installed(id string, installed []string) bool {
	base, tag, hasTag := strings.Cut(id, ":")
	for _, name := range installed {
		if name == id {
			return true
		}
		nameBase, nameTag, _ := strings.Cut(name, ":")
		if nameBase != base {
			continue
		}
		if !hasTag || tag == "latest" || strings.HasPrefix(nameTag, tag) {
			return true
		}
	}
	return false
}
