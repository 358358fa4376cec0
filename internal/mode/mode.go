// Package mode tracks whether nova is acting as a personal assistant or as a
// company of personas, along with the session state that survives switches.
package mode

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// ErrInvalidMode is returned when switching to an unknown mode.
var ErrInvalidMode = errors.New("invalid mode")

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller holds the session state. Switching modes never clears the active
// project, the tier or the conversation.
type Controller struct {
	mu        sync.RWMutex
	state     models.SessionState
	listeners []func(models.SessionState)
	logger    *zap.Logger
	now       func() time.Time
}

// New returns a Controller in personal mode at the given tier.
func New(tier models.Tier, opts ...Option) *Controller {
	c := &Controller{
		state:  models.SessionState{Mode: models.ModePersonal, Tier: tier},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current mode.
func (c *Controller) Get() models.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Mode
}

// SwitchTo changes mode. Any mode may switch to any mode, including itself.
func (c *Controller) SwitchTo(m models.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}
	c.update(func(s *models.SessionState) {
		if s.Mode != m {
			c.logger.Info("mode switched",
				zap.String("from", string(s.Mode)),
				zap.String("to", string(m)),
				zap.String("active_project", s.ActiveProject))
		}
		s.Mode = m
	})
	return nil
}

// ActiveProject returns the id of the project the session is focused on.
func (c *Controller) ActiveProject() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.ActiveProject
}

// SetActiveProject focuses the session on a project. An empty id clears it.
func (c *Controller) SetActiveProject(id string) {
	c.update(func(s *models.SessionState) { s.ActiveProject = id })
}

// Tier returns the tier recorded in the session.
func (c *Controller) Tier() models.Tier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Tier
}

// SetTier records the active tier so it is restored with the session.
func (c *Controller) SetTier(t models.Tier) {
	c.update(func(s *models.SessionState) { s.Tier = t })
}

// AppendTurn adds to the conversation. A zero At is stamped with the clock.
func (c *Controller) AppendTurn(turn models.Turn) {
	if turn.At.IsZero() {
		turn.At = c.now()
	}
	c.update(func(s *models.SessionState) { s.Conversation = append(s.Conversation, turn) })
}

// Conversation returns a copy of the conversation so far.
func (c *Controller) Conversation() []models.Turn {
	return c.State().Conversation
}

// State returns a snapshot copy of the session.
func (c *Controller) State() models.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Restore replaces the session with persisted state. An invalid mode falls
// back to personal; a zero tier keeps the current one.
func (c *Controller) Restore(s models.SessionState) {
	s = s.Clone()
	c.mu.Lock()
	if !s.Mode.Valid() {
		s.Mode = models.ModePersonal
	}
	if !s.Tier.Valid() {
		s.Tier = c.state.Tier
	}
	c.state = s
	c.mu.Unlock()
}

// OnChange registers fn to receive a copy of the state after every mutation.
// Restore does not notify.
func (c *Controller) OnChange(fn func(models.SessionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) update(fn func(*models.SessionState)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.state.Clone()
	listeners := append([]func(models.SessionState){}, c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
