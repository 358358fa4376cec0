// Package project runs company-mode projects: a brief is decomposed into
// sub-tasks by the reasoning lead, then executed by a gated dispatcher that
// starts each sub-task once its dependencies are terminal.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/router"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

var (
	// ErrNotFound is returned for unknown project ids.
	ErrNotFound = errors.New("project not found")
	// ErrProjectTerminal is returned when acting on a completed or failed project.
	ErrProjectTerminal = errors.New("project already finished")
	// ErrInvalidState is returned when an operation does not apply to the project's state.
	ErrInvalidState = errors.New("invalid project state")
	// ErrAlreadyRunning is returned when a project already has an active run.
	ErrAlreadyRunning = errors.New("project already running")
	// ErrEmptyBrief is returned by Create for a blank brief.
	ErrEmptyBrief = errors.New("project brief is empty")
)

// CancelledReason is the failure reason recorded by Cancel.
const CancelledReason = "cancelled"

// Manager owns project lifecycles. Project mutation is serialized by one mutex;
// model calls run outside it.
type Manager struct {
	router      *router.Router
	catalog     *persona.Catalog
	store       Store
	classify    Classifier
	maxParallel int
	events      *EventEmitter
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string

	mu       sync.Mutex
	projects map[string]*models.Project
	runs     map[string]*run

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Manager. Call Close to stop background runs.
func New(cfg RequiredConfig, opts ...Option) *Manager {
	o := &managerOptions{
		maxParallel: DefaultMaxParallel,
		logger:      zap.NewNop(),
		now:         time.Now,
		newID:       func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.classifier == nil {
		o.classifier = ClassifierFunc(func(text string) models.Role {
			return cfg.Router.Classify(text).Role
		})
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		router:      cfg.Router,
		catalog:     cfg.Catalog,
		store:       cfg.Store,
		classify:    o.classifier,
		maxParallel: o.maxParallel,
		events:      o.events,
		logger:      o.logger,
		now:         o.now,
		newID:       o.newID,
		projects:    make(map[string]*models.Project),
		runs:        make(map[string]*run),
		baseCtx:     ctx,
		stop:        stop,
	}
}

// Events returns the event channel, or nil when events are disabled.
func (m *Manager) Events() <-chan Event {
	if m.events == nil {
		return nil
	}
	return m.events.Events()
}

// Create stores a new project in the Created state.
func (m *Manager) Create(ctx context.Context, brief string) (*models.Project, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, ErrEmptyBrief
	}

	m.mu.Lock()
	now := m.now()
	p := &models.Project{
		ID:        m.uniqueIDLocked(),
		Name:      ProjectName(brief),
		Brief:     brief,
		State:     models.ProjectCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.SaveProject(ctx, p); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("save project: %w", err)
	}
	m.projects[p.ID] = p
	out := p.Clone()
	m.mu.Unlock()

	m.logger.Info("project created", zap.String("project", p.ID), zap.String("name", p.Name))
	m.emit(Event{Type: EventProjectCreated, ProjectID: p.ID, SubTask: -1, Title: p.Name})
	return out, nil
}

func (m *Manager) uniqueIDLocked() string {
	for {
		id := m.newID()
		if _, taken := m.projects[id]; !taken {
			return id
		}
	}
}

// Decompose asks the reasoning lead to split the brief into sub-tasks.
// A router failure or a cyclic decomposition fails the project.
func (m *Manager) Decompose(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	p, err := m.loadLocked(ctx, id)
	if err == nil {
		err = expectState(p, models.ProjectCreated)
	}
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	brief := p.Brief
	m.mu.Unlock()

	res, execErr := m.router.Execute(ctx, models.Task{
		Goal: fmt.Sprintf(decompositionPrompt, brief),
		Hint: models.RoleReasoning,
		Mode: models.ModeCompany,
	})

	m.mu.Lock()
	out, ev, err := m.applyDecompositionLocked(ctx, p, res, execErr)
	m.mu.Unlock()
	if ev != nil {
		m.emit(*ev)
	}
	return out, err
}

func (m *Manager) applyDecompositionLocked(ctx context.Context, p *models.Project, res router.Result, execErr error) (*models.Project, *Event, error) {
	id, brief := p.ID, p.Brief
	if p.State != models.ProjectCreated {
		return p.Clone(), nil, fmt.Errorf("decompose %s: %w", id, ErrProjectTerminal)
	}
	if execErr != nil {
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("decompose %s: %w", id, ctx.Err())
		}
		m.failLocked(ctx, p, "decomposition failed: "+execErr.Error())
		return p.Clone(), m.failedEvent(p), fmt.Errorf("decompose %s: %w", id, execErr)
	}

	subtasks, format, parseErr := ParseDecomposition(res.Output, brief, m.classify)
	if parseErr != nil {
		m.logger.Debug("decomposition not JSON, using fallback",
			zap.String("project", id),
			zap.String("format", string(format)),
			zap.Error(parseErr))
	}
	for i := range subtasks {
		lead, err := m.catalog.Lead(subtasks[i].Role)
		if err != nil {
			m.failLocked(ctx, p, err.Error())
			return p.Clone(), m.failedEvent(p), fmt.Errorf("decompose %s: %w", id, err)
		}
		subtasks[i].Persona = lead.Key
	}
	if _, err := BuildGraph(subtasks); err != nil {
		m.failLocked(ctx, p, "invalid decomposition: "+err.Error())
		return p.Clone(), m.failedEvent(p), fmt.Errorf("decompose %s: %w", id, err)
	}

	p.SubTasks = subtasks
	p.State = models.ProjectDecomposed
	p.Deliverables = append(p.Deliverables, models.Deliverable{
		SubTask: -1,
		Persona: res.Persona.Key,
		Model:   res.Model,
		Kind:    models.DeliverableNote,
		Content: fmt.Sprintf("Decomposed into %d sub-tasks (%s)", len(subtasks), format),
		At:      m.now(),
	})
	m.saveLocked(ctx, p)

	m.logger.Info("project decomposed",
		zap.String("project", id),
		zap.Int("subtasks", len(subtasks)),
		zap.String("format", string(format)))
	return p.Clone(), &Event{Type: EventProjectDecomposed, ProjectID: id, SubTask: -1, Title: p.Name, Model: res.Model}, nil
}

// Run executes a decomposed project until it completes, fails, is cancelled
// or ctx ends. When ctx ends first the project stays resumable.
// Run returns the project's final state; a Failed project is not an error.
func (m *Manager) Run(ctx context.Context, id string) (*models.Project, error) {
	ctx, done, err := m.track(ctx, id)
	if err != nil {
		return nil, err
	}
	defer done()
	return m.execute(ctx, id)
}

type dispatch struct {
	index int
	title string
	task  models.Task
}

type outcome struct {
	index    int
	result   router.Result
	err      error
	attempts int
}

func (m *Manager) execute(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	p, err := m.loadLocked(ctx, id)
	if err == nil {
		err = expectState(p, models.ProjectDecomposed, models.ProjectInProgress)
	}
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	g, err := BuildGraph(p.SubTasks)
	if err != nil {
		m.failLocked(ctx, p, "invalid decomposition: "+err.Error())
		out, ev := p.Clone(), m.failedEvent(p)
		m.mu.Unlock()
		m.emit(*ev)
		return out, nil
	}
	resetRunning(p)
	p.State = models.ProjectInProgress
	m.saveLocked(ctx, p)
	n := len(p.SubTasks)
	m.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, gctx := errgroup.WithContext(runCtx)
	eg.SetLimit(m.maxParallel)

	results := make(chan outcome, n)
	inflight := 0
	for {
		var batch []dispatch
		m.mu.Lock()
		if !p.State.Terminal() && gctx.Err() == nil {
			now := m.now()
			for _, i := range g.Ready(p.SubTasks) {
				if inflight+len(batch) >= m.maxParallel {
					break
				}
				st := &p.SubTasks[i]
				st.Status = models.SubTaskRunning
				st.StartedAt = &now
				batch = append(batch, dispatch{index: i, title: st.Title, task: m.taskFor(p, g, i)})
			}
			if len(batch) > 0 {
				m.saveLocked(ctx, p)
			}
		}
		m.mu.Unlock()

		for _, d := range batch {
			inflight++
			m.emit(Event{Type: EventSubTaskStarted, ProjectID: id, SubTask: d.index, Title: d.title, Persona: d.task.Persona})
			eg.Go(func() error {
				results <- m.runSubTask(gctx, d)
				return nil
			})
		}
		if inflight == 0 {
			break
		}

		o := <-results
		inflight--
		m.mu.Lock()
		events := m.applyLocked(ctx, p, o, cancel)
		m.mu.Unlock()
		m.emit(events...)
	}
	_ = eg.Wait()

	m.mu.Lock()
	if !p.State.Terminal() && ctx.Err() != nil {
		resetRunning(p)
		m.saveLocked(ctx, p)
		out := p.Clone()
		m.mu.Unlock()
		m.logger.Info("project run interrupted", zap.String("project", id))
		return out, ctx.Err()
	}
	var final []Event
	if !p.State.Terminal() {
		final = append(final, m.finishLocked(ctx, p))
	}
	out := p.Clone()
	m.mu.Unlock()
	m.emit(final...)
	return out, nil
}

// taskFor builds the routed task for a sub-task, passing completed
// dependency outputs as context.
func (m *Manager) taskFor(p *models.Project, g *Graph, i int) models.Task {
	st := p.SubTasks[i]
	goal := st.Title
	if st.Description != "" {
		goal += "\n\n" + st.Description
	}
	goal += "\n\nThis is part of the project " + p.Name + ": " + p.Brief

	var b strings.Builder
	for _, dep := range g.Dependencies(i) {
		d := p.SubTasks[dep]
		if d.Status != models.SubTaskCompleted {
			continue
		}
		fmt.Fprintf(&b, "## %s (%s)\n%s\n\n", d.Title, d.Persona, strings.TrimSpace(d.Output))
	}
	return models.Task{
		Goal:    goal,
		Hint:    st.Role,
		Persona: st.Persona,
		Mode:    models.ModeCompany,
		Context: strings.TrimSpace(b.String()),
	}
}

// runSubTask routes one sub-task. A failure gets one more pass through the
// router before it is final.
func (m *Manager) runSubTask(ctx context.Context, d dispatch) outcome {
	res, err := m.router.Execute(ctx, d.task)
	if err == nil || ctx.Err() != nil {
		return outcome{index: d.index, result: res, err: err, attempts: 1}
	}
	m.logger.Warn("sub-task failed, retrying", zap.Int("subtask", d.index), zap.Error(err))
	res, err = m.router.Execute(ctx, d.task)
	return outcome{index: d.index, result: res, err: err, attempts: 2}
}

func (m *Manager) applyLocked(ctx context.Context, p *models.Project, o outcome, cancel context.CancelFunc) []Event {
	st := &p.SubTasks[o.index]
	st.Attempts += o.attempts
	now := m.now()

	switch {
	case p.State.Terminal():
		// Results arriving after cancellation or failure are discarded.
		st.Status = models.SubTaskSkipped
		st.CompletedAt = &now
		m.saveLocked(ctx, p)
		return nil

	case o.err != nil && ctx.Err() != nil:
		st.Status = models.SubTaskPending
		st.StartedAt = nil
		return nil

	case o.err == nil:
		st.Status = models.SubTaskCompleted
		st.Model = o.result.Model
		st.Tier = o.result.Tier
		st.Output = o.result.Output
		st.Error = ""
		st.CompletedAt = &now
		p.Deliverables = append(p.Deliverables, models.Deliverable{
			SubTask: o.index,
			Persona: st.Persona,
			Model:   st.Model,
			Kind:    models.DeliverableResult,
			Content: st.Output,
			At:      now,
		})
		m.saveLocked(ctx, p)
		m.logger.Debug("sub-task completed",
			zap.String("project", p.ID),
			zap.Int("subtask", o.index),
			zap.String("model", st.Model),
			zap.Int("tier", int(st.Tier)))
		return []Event{{Type: EventSubTaskCompleted, ProjectID: p.ID, SubTask: o.index, Title: st.Title, Persona: st.Persona, Model: st.Model}}
	}

	st.Status = models.SubTaskFailed
	st.Error = o.err.Error()
	st.CompletedAt = &now
	var noModel *router.NoModelAvailableError
	if errors.As(o.err, &noModel) {
		st.Tier = noModel.Tier
	}
	p.Deliverables = append(p.Deliverables, models.Deliverable{
		SubTask: o.index,
		Persona: st.Persona,
		Kind:    models.DeliverableFailure,
		Content: st.Error,
		At:      now,
	})
	events := []Event{{Type: EventSubTaskFailed, ProjectID: p.ID, SubTask: o.index, Title: st.Title, Persona: st.Persona, Err: o.err}}

	if st.Optional {
		m.logger.Warn("optional sub-task failed",
			zap.String("project", p.ID),
			zap.Int("subtask", o.index),
			zap.Error(o.err))
		m.saveLocked(ctx, p)
		return events
	}

	m.failLocked(ctx, p, fmt.Sprintf("sub-task %d (%s) failed: %v", o.index, st.Title, o.err))
	cancel()
	return append(events, *m.failedEvent(p))
}

func (m *Manager) finishLocked(ctx context.Context, p *models.Project) Event {
	for _, st := range p.SubTasks {
		if !st.Optional && st.Status != models.SubTaskCompleted {
			m.failLocked(ctx, p, fmt.Sprintf("sub-task %d (%s) ended %s", st.Index, st.Title, st.Status))
			return *m.failedEvent(p)
		}
	}
	now := m.now()
	p.State = models.ProjectCompleted
	p.CompletedAt = &now
	m.saveLocked(ctx, p)
	m.logger.Info("project completed", zap.String("project", p.ID), zap.Int("subtasks", len(p.SubTasks)))
	return Event{Type: EventProjectCompleted, ProjectID: p.ID, SubTask: -1, Title: p.Name}
}

func (m *Manager) failedEvent(p *models.Project) *Event {
	return &Event{Type: EventProjectFailed, ProjectID: p.ID, SubTask: -1, Title: p.Name, Message: p.FailureReason}
}

// failLocked marks the project failed and skips every sub-task not yet started.
// Running sub-tasks are skipped when their results arrive.
func (m *Manager) failLocked(ctx context.Context, p *models.Project, reason string) {
	now := m.now()
	p.State = models.ProjectFailed
	p.FailureReason = reason
	p.CompletedAt = &now
	for i := range p.SubTasks {
		if p.SubTasks[i].Status == models.SubTaskPending {
			p.SubTasks[i].Status = models.SubTaskSkipped
		}
	}
	m.saveLocked(ctx, p)
	m.logger.Warn("project failed", zap.String("project", p.ID), zap.String("reason", reason))
}

// Start creates the project and decomposes and runs it in the background.
// The background work outlives ctx and stops on Cancel or Close.
func (m *Manager) Start(ctx context.Context, brief string) (*models.Project, error) {
	p, err := m.Create(ctx, brief)
	if err != nil {
		return nil, err
	}
	if err := m.background(p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *Manager) background(id string) error {
	runCtx, done, err := m.track(m.baseCtx, id)
	if err != nil {
		return err
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer done()
		m.drive(runCtx, id)
	}()
	return nil
}

// drive takes a project from wherever it is to a terminal state.
func (m *Manager) drive(ctx context.Context, id string) {
	p, err := m.Get(ctx, id)
	if err != nil {
		m.logger.Error("load project", zap.String("project", id), zap.Error(err))
		return
	}
	if p.State == models.ProjectCreated {
		if _, err := m.Decompose(ctx, id); err != nil {
			m.logger.Warn("decomposition ended", zap.String("project", id), zap.Error(err))
			return
		}
	}
	if _, err := m.execute(ctx, id); err != nil {
		m.logger.Warn("run ended", zap.String("project", id), zap.Error(err))
	}
}

func (m *Manager) track(ctx context.Context, id string) (context.Context, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.runs[id]; busy {
		return nil, nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, id)
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}
	m.runs[id] = r
	return ctx, func() {
		cancel()
		m.mu.Lock()
		delete(m.runs, id)
		m.mu.Unlock()
		close(r.done)
	}, nil
}

// Wait blocks until the project's active run, if any, has ended.
func (m *Manager) Wait(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	r := m.runs[id]
	m.mu.Unlock()
	if r != nil {
		select {
		case <-r.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Get(ctx, id)
}

// Cancel fails a non-terminal project with reason "cancelled" and stops its
// run. Calls already in flight finish but their results are discarded.
func (m *Manager) Cancel(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	p, err := m.loadLocked(ctx, id)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if p.State.Terminal() {
		m.mu.Unlock()
		return nil, fmt.Errorf("cancel %s: %w", id, ErrProjectTerminal)
	}
	r := m.runs[id]
	if r == nil {
		// Nothing is in flight, so running sub-tasks were left by a previous process.
		resetRunning(p)
	}
	m.failLocked(ctx, p, CancelledReason)
	out := p.Clone()
	m.mu.Unlock()

	if r != nil {
		r.cancel()
	}
	m.emit(*m.failedEvent(out))
	return out, nil
}

// Resume restarts every non-terminal project found in the store in the
// background and returns their ids. Sub-tasks left running by a previous
// process are retried.
func (m *Manager) Resume(ctx context.Context) ([]string, error) {
	stored, err := m.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var resumed []string
	for _, sp := range stored {
		if sp.State.Terminal() {
			continue
		}
		m.mu.Lock()
		p, ok := m.projects[sp.ID]
		if !ok {
			p = sp
			m.projects[p.ID] = p
		}
		_, busy := m.runs[p.ID]
		if !busy && resetRunning(p) {
			m.saveLocked(ctx, p)
		}
		m.mu.Unlock()
		if busy {
			continue
		}

		if err := m.background(p.ID); err != nil {
			continue
		}
		resumed = append(resumed, p.ID)
		m.logger.Info("project resumed", zap.String("project", p.ID), zap.String("state", string(p.State)))
	}
	return resumed, nil
}

// Get returns a copy of the project.
func (m *Manager) Get(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// List returns every stored project, oldest first.
func (m *Manager) List(ctx context.Context) ([]*models.Project, error) {
	stored, err := m.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range stored {
		if live, ok := m.projects[p.ID]; ok {
			stored[i] = live.Clone()
		}
	}
	return stored, nil
}

// Close stops background runs and waits for them. Interrupted projects stay
// resumable.
func (m *Manager) Close() {
	m.stop()
	m.wg.Wait()
}

func (m *Manager) loadLocked(ctx context.Context, id string) (*models.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	p, err := m.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.projects[id] = p
	return p, nil
}

// saveLocked persists the project. Save failures are logged; the in-memory
// project stays authoritative for the rest of the run.
func (m *Manager) saveLocked(ctx context.Context, p *models.Project) {
	p.UpdatedAt = m.now()
	if err := m.store.SaveProject(context.WithoutCancel(ctx), p); err != nil {
		m.logger.Error("save project", zap.String("project", p.ID), zap.Error(err))
	}
}

func (m *Manager) emit(events ...Event) {
	for _, ev := range events {
		m.events.Emit(ev)
	}
}

func expectState(p *models.Project, want ...models.ProjectState) error {
	for _, s := range want {
		if p.State == s {
			return nil
		}
	}
	if p.State.Terminal() {
		return fmt.Errorf("project %s: %w", p.ID, ErrProjectTerminal)
	}
	return fmt.Errorf("%w: project %s is %s", ErrInvalidState, p.ID, p.State)
}

func resetRunning(p *models.Project) bool {
	changed := false
	for i := range p.SubTasks {
		if p.SubTasks[i].Status == models.SubTaskRunning {
			p.SubTasks[i].Status = models.SubTaskPending
			p.SubTasks[i].StartedAt = nil
			changed = true
		}
	}
	return changed
}
