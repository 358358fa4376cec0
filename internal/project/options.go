package project

import (
	"time"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/router"
)

// DefaultMaxParallel bounds concurrent sub-task execution per project.
const DefaultMaxParallel = 3

// RequiredConfig contains the collaborators a Manager cannot run without.
type RequiredConfig struct {
	// Router executes decomposition and sub-task work.
	Router *router.Router
	// Catalog supplies the lead persona for each sub-task role.
	Catalog *persona.Catalog
	// Store persists every project mutation.
	Store Store
}

// Option configures a Manager. Use With* functions to create Options.
type Option func(*managerOptions)

type managerOptions struct {
	maxParallel int
	logger      *zap.Logger
	events      *EventEmitter
	classifier  Classifier
	now         func() time.Time
	newID       func() string
}

// WithMaxParallel sets how many sub-tasks of one project may run at once.
func WithMaxParallel(n int) Option {
	return func(o *managerOptions) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *managerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEvents enables event emission. Without it no events are produced.
func WithEvents(e *EventEmitter) Option {
	return func(o *managerOptions) { o.events = e }
}

// WithClassifier overrides how sub-tasks without a role are classified.
// The default uses the router's classifier.
func WithClassifier(c Classifier) Option {
	return func(o *managerOptions) { o.classifier = c }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) { o.now = now }
}

// WithIDGenerator overrides project id generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *managerOptions) { o.newID = fn }
}
