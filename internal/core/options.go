package core

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/config"
	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/registry"
	"github.com/SharminSirajudeen/nova/internal/router"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

// DefaultContextTurns is how many recent conversation turns Ask passes as context.
const DefaultContextTurns = 6

// RequiredConfig contains the collaborators a Core cannot work without.
type RequiredConfig struct {
	Tiers    *tiers.Manager
	Registry *registry.Registry
	Catalog  *persona.Catalog
	Router   *router.Router
	Projects *project.Manager
	Sessions SessionStore
}

// Archive is project housekeeping offered by the state database.
type Archive interface {
	CheckForInterrupted(ctx context.Context) ([]state.InterruptedProject, error)
	PurgeFinishedProjects(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Option configures a Core. Use With* functions to create Options.
type Option func(*coreOptions)

type coreOptions struct {
	logger       *zap.Logger
	initialMode  models.Mode
	contextTurns int
	closers      []io.Closer
	now          func() time.Time
	archive      Archive
	keySource    config.KeySource
	totalMemory  func(context.Context) (uint64, error)
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *coreOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithInitialMode sets the mode used when no session has been saved yet.
func WithInitialMode(m models.Mode) Option {
	return func(o *coreOptions) {
		if m.Valid() {
			o.initialMode = m
		}
	}
}

// WithContextTurns sets how much conversation history Ask sends.
func WithContextTurns(n int) Option {
	return func(o *coreOptions) {
		if n >= 0 {
			o.contextTurns = n
		}
	}
}

// WithClosers registers resources closed by Close, in order, after the project manager.
func WithClosers(c ...io.Closer) Option {
	return func(o *coreOptions) { o.closers = append(o.closers, c...) }
}

// WithClock sets the time source for conversation turns.
func WithClock(now func() time.Time) Option {
	return func(o *coreOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithArchive enables the interrupted-project listing and purging.
func WithArchive(a Archive) Option {
	return func(o *coreOptions) { o.archive = a }
}

// WithKeySource records where Anthropic credentials come from, for the
// models report.
func WithKeySource(src config.KeySource) Option {
	return func(o *coreOptions) { o.keySource = src }
}

// WithTotalMemory replaces the host RAM lookup used by TierRecommend.
func WithTotalMemory(fn func(context.Context) (uint64, error)) Option {
	return func(o *coreOptions) {
		if fn != nil {
			o.totalMemory = fn
		}
	}
}
