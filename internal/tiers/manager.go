package tiers

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Snapshot is an immutable, versioned view of the table and active tier.
// Routing decisions hold one snapshot for their whole duration.
type Snapshot struct {
	Version uint64
	Active  models.Tier
	table   Table
}

// Resolve returns the model for a role at a tier.
func (s *Snapshot) Resolve(role models.Role, tier models.Tier) (string, error) {
	spec, ok := s.table.Get(tier)
	if !ok {
		return "", &UnresolvedRoleError{Role: role, Tier: tier}
	}
	id := spec.Models[role]
	if id == "" {
		return "", &UnresolvedRoleError{Role: role, Tier: tier}
	}
	return id, nil
}

// ResolveActive resolves a role at the snapshot's active tier.
func (s *Snapshot) ResolveActive(role models.Role) (string, error) {
	return s.Resolve(role, s.Active)
}

// Table returns a copy of the snapshot's table.
func (s *Snapshot) Table() Table {
	return s.table.clone()
}

// Manager owns the process-wide active tier. Readers load the current
// snapshot without locking; writers serialize on mu and publish a new one.
type Manager struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	subs    []func(*Snapshot)
	logger  *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager validates the table and activates the given tier.
func NewManager(table Table, active models.Tier, opts ...Option) (*Manager, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validate tier table: %w", err)
	}
	if _, ok := table.Get(active); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(active))
	}
	m := &Manager{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(&Snapshot{Version: 1, Active: active, table: table.clone()})
	return m, nil
}

// Snapshot returns the current snapshot. It never blocks.
func (m *Manager) Snapshot() *Snapshot {
	return m.current.Load()
}

// Active returns the currently active tier.
func (m *Manager) Active() models.Tier {
	return m.Snapshot().Active
}

// SetActiveTier swaps the active tier. Tasks that already hold a snapshot
// keep using it; new routing decisions see the new tier immediately.
// Nothing is downloaded, and missing models are left to the router's fallback chain.
func (m *Manager) SetActiveTier(tier models.Tier) (*Snapshot, error) {
	m.mu.Lock()
	old := m.current.Load()
	if _, ok := old.table.Get(tier); !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(tier))
	}
	next := &Snapshot{Version: old.Version + 1, Active: tier, table: old.table}
	m.current.Store(next)
	subs := append([]func(*Snapshot){}, m.subs...)
	m.mu.Unlock()

	m.logger.Info("active tier changed",
		zap.Int("from", int(old.Active)),
		zap.Int("to", int(tier)),
		zap.Uint64("version", next.Version))
	for _, fn := range subs {
		fn(next)
	}
	return next, nil
}

// ReplaceTable installs a new table, keeping the active tier when it still exists
// and falling back to the lowest defined tier otherwise.
func (m *Manager) ReplaceTable(table Table) (*Snapshot, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validate tier table: %w", err)
	}

	m.mu.Lock()
	old := m.current.Load()
	active := old.Active
	if _, ok := table.Get(active); !ok {
		active = table.Levels()[0]
	}
	next := &Snapshot{Version: old.Version + 1, Active: active, table: table.clone()}
	m.current.Store(next)
	subs := append([]func(*Snapshot){}, m.subs...)
	m.mu.Unlock()

	m.logger.Info("tier table replaced", zap.Int("tiers", len(table.Tiers)), zap.Uint64("version", next.Version))
	for _, fn := range subs {
		fn(next)
	}
	return next, nil
}

// Subscribe registers fn to be called after every swap.
func (m *Manager) Subscribe(fn func(*Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
