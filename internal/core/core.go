// Package core is the command surface shared by the CLI and the interactive
// shell. Every operation returns plain result values or a *CommandError.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/config"
	"github.com/SharminSirajudeen/nova/internal/mode"
	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/registry"
	"github.com/SharminSirajudeen/nova/internal/router"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/internal/sysinfo"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

// SessionStore persists the process-wide session state.
type SessionStore interface {
	SaveSession(ctx context.Context, s models.SessionState) error
	LoadSession(ctx context.Context) (*models.SessionState, error)
}

// Core wires the session, tier, routing and project components together.
type Core struct {
	tiers    *tiers.Manager
	registry *registry.Registry
	catalog  *persona.Catalog
	router   *router.Router
	projects *project.Manager
	sessions SessionStore
	mode     *mode.Controller

	opts   coreOptions
	logger *zap.Logger
}

// New restores the saved session, or starts a fresh one in the initial mode.
func New(ctx context.Context, cfg RequiredConfig, opts ...Option) (*Core, error) {
	o := coreOptions{
		logger:       zap.NewNop(),
		initialMode:  models.ModePersonal,
		contextTurns: DefaultContextTurns,
		now:          time.Now,
		totalMemory:  sysinfo.TotalMemory,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Core{
		tiers:    cfg.Tiers,
		registry: cfg.Registry,
		catalog:  cfg.Catalog,
		router:   cfg.Router,
		projects: cfg.Projects,
		sessions: cfg.Sessions,
		mode: mode.New(cfg.Tiers.Active(),
			mode.WithLogger(o.logger),
			mode.WithClock(o.now)),
		opts:   o,
		logger: o.logger,
	}

	saved, err := c.sessions.LoadSession(ctx)
	if err != nil {
		return nil, commandError(fmt.Errorf("load session: %w", err))
	}
	if saved != nil {
		c.mode.Restore(*saved)
		if tier := c.mode.Tier(); tier != c.tiers.Active() {
			if _, err := c.tiers.SetActiveTier(tier); err != nil {
				c.logger.Warn("saved tier not in table, keeping active tier",
					zap.Int("saved", int(tier)),
					zap.Int("active", int(c.tiers.Active())),
					zap.Error(err))
			}
		}
	}

	c.mode.OnChange(c.persist)
	c.tiers.Subscribe(func(s *tiers.Snapshot) {
		if c.mode.Tier() != s.Active {
			c.mode.SetTier(s.Active)
		}
	})

	if saved == nil {
		// First start: record the initial mode and tier.
		if err := c.mode.SwitchTo(o.initialMode); err != nil {
			return nil, commandError(err)
		}
	} else if c.mode.Tier() != c.tiers.Active() {
		c.mode.SetTier(c.tiers.Active())
	}
	return c, nil
}

func (c *Core) persist(s models.SessionState) {
	if err := c.sessions.SaveSession(context.Background(), s); err != nil {
		c.logger.Error("failed to persist session", zap.Error(err))
	}
}

// Session returns a copy of the current session state.
func (c *Core) Session() models.SessionState {
	return c.mode.State()
}

// ModeInfo describes the current session.
type ModeInfo struct {
	Mode          models.Mode `json:"mode"`
	ActiveProject string      `json:"active_project,omitempty"`
	Tier          models.Tier `json:"tier"`
}

// ModeGet returns the current mode.
func (c *Core) ModeGet() ModeInfo {
	s := c.mode.State()
	return ModeInfo{Mode: s.Mode, ActiveProject: s.ActiveProject, Tier: s.Tier}
}

// ModeSet switches mode. The active project and conversation are kept.
func (c *Core) ModeSet(name string) (ModeInfo, error) {
	m, ok := models.ParseMode(name)
	if !ok {
		return ModeInfo{}, invalid("invalid mode %q: expected personal or company", name)
	}
	if err := c.mode.SwitchTo(m); err != nil {
		return ModeInfo{}, commandError(err)
	}
	return c.ModeGet(), nil
}

func (c *Core) requireMode(m models.Mode, op string) error {
	if current := c.mode.Get(); current != m {
		return &CommandError{
			Code:    CodeModeRequired,
			Message: fmt.Sprintf("%s requires %s mode (current mode: %s)", op, m, current),
		}
	}
	return nil
}

// ProjectCreate starts a project in the background and focuses the session on it.
func (c *Core) ProjectCreate(ctx context.Context, brief string) (*models.Project, error) {
	if err := c.requireMode(models.ModeCompany, "project create"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(brief) == "" {
		return nil, invalid("project brief is empty")
	}
	p, err := c.projects.Start(ctx, brief)
	if err != nil {
		return nil, commandError(err)
	}
	c.mode.SetActiveProject(p.ID)
	return p, nil
}

// ProjectWait blocks until the project reaches a terminal state or ctx ends.
func (c *Core) ProjectWait(ctx context.Context, id string) (*models.Project, error) {
	id, err := c.projectID(id)
	if err != nil {
		return nil, err
	}
	p, err := c.projects.Wait(ctx, id)
	return p, commandError(err)
}

// ProjectList summarizes every project.
func (c *Core) ProjectList(ctx context.Context) ([]project.Summary, error) {
	projects, err := c.projects.List(ctx)
	if err != nil {
		return nil, commandError(err)
	}
	out := make([]project.Summary, 0, len(projects))
	for _, p := range projects {
		out = append(out, project.Summarize(p))
	}
	return out, nil
}

// ProjectShow returns a project. An empty id means the active project.
func (c *Core) ProjectShow(ctx context.Context, id string) (*models.Project, error) {
	id, err := c.projectID(id)
	if err != nil {
		return nil, err
	}
	p, err := c.projects.Get(ctx, id)
	if err != nil {
		return nil, commandError(err)
	}
	return p, nil
}

// ProjectCancel cancels a project. An empty id means the active project.
func (c *Core) ProjectCancel(ctx context.Context, id string) (*models.Project, error) {
	id, err := c.projectID(id)
	if err != nil {
		return nil, err
	}
	p, err := c.projects.Cancel(ctx, id)
	if err != nil {
		return nil, commandError(err)
	}
	return p, nil
}

// ProjectResume restarts interrupted projects in the background.
func (c *Core) ProjectResume(ctx context.Context) ([]string, error) {
	ids, err := c.projects.Resume(ctx)
	if err != nil {
		return nil, commandError(err)
	}
	return ids, nil
}

// ProjectInterrupted lists projects a previous process left unfinished. Call
// it before ProjectResume, which makes them active again.
func (c *Core) ProjectInterrupted(ctx context.Context) ([]state.InterruptedProject, error) {
	if c.opts.archive == nil {
		return nil, nil
	}
	list, err := c.opts.archive.CheckForInterrupted(ctx)
	if err != nil {
		return nil, commandError(err)
	}
	return list, nil
}

// ProjectPurge deletes completed and failed projects not updated within
// olderThan and returns how many were removed.
func (c *Core) ProjectPurge(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, invalid("purge age must be positive, got %s", olderThan)
	}
	if c.opts.archive == nil {
		return 0, &CommandError{Code: CodeInternal, Message: "project purge needs the state database"}
	}
	n, err := c.opts.archive.PurgeFinishedProjects(ctx, olderThan)
	if err != nil {
		return 0, commandError(err)
	}
	c.logger.Info("purged finished projects", zap.Int64("count", n), zap.Duration("older_than", olderThan))
	return n, nil
}

func (c *Core) projectID(id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		return id, nil
	}
	if active := c.mode.ActiveProject(); active != "" {
		return active, nil
	}
	return "", invalid("no project id given and no active project")
}

// TeamMember is one persona with the model currently backing it.
type TeamMember struct {
	Key    string             `json:"key"`
	Name   string             `json:"name"`
	Title  string             `json:"title"`
	Role   models.Role        `json:"role"`
	Model  string             `json:"model"`
	Status models.ModelStatus `json:"status"`
}

// Team lists personas, optionally only those of one role.
func (c *Core) Team(role string) ([]TeamMember, error) {
	personas := c.catalog.List()
	if role != "" {
		r, ok := models.ParseRole(role)
		if !ok {
			return nil, invalid("invalid role %q", role)
		}
		personas = c.catalog.ForRole(r)
	}

	snap := c.tiers.Snapshot()
	out := make([]TeamMember, 0, len(personas))
	for _, p := range personas {
		model, err := snap.ResolveActive(p.Role)
		if err != nil {
			return nil, commandError(err)
		}
		out = append(out, TeamMember{
			Key:    p.Key,
			Name:   p.Name,
			Title:  p.Title,
			Role:   p.Role,
			Model:  model,
			Status: c.registry.Status(model),
		})
	}
	return out, nil
}

// TierInfo describes the active tier.
type TierInfo struct {
	Active  models.Tier            `json:"active"`
	Name    string                 `json:"name"`
	Version uint64                 `json:"version"`
	Models  map[models.Role]string `json:"models"`
	Levels  []models.Tier          `json:"levels"`
}

// TierGet returns the active tier and its role mapping.
func (c *Core) TierGet() TierInfo {
	return tierInfo(c.tiers.Snapshot())
}

func tierInfo(s *tiers.Snapshot) TierInfo {
	table := s.Table()
	spec, _ := table.Get(s.Active)
	name := spec.Name
	if name == "" {
		name = s.Active.String()
	}
	return TierInfo{
		Active:  s.Active,
		Name:    name,
		Version: s.Version,
		Models:  spec.Models,
		Levels:  table.Levels(),
	}
}

// TierSet switches the active tier. The new tier is saved with the session.
func (c *Core) TierSet(value string) (TierInfo, error) {
	tier, err := models.ParseTier(value)
	if err != nil {
		return TierInfo{}, invalid("%v", err)
	}
	snap, err := c.tiers.SetActiveTier(tier)
	if err != nil {
		return TierInfo{}, commandError(err)
	}
	return tierInfo(snap), nil
}

// TierRecommend suggests a tier for this machine's memory.
func (c *Core) TierRecommend(ctx context.Context) (tiers.Recommendation, error) {
	n, err := c.opts.totalMemory(ctx)
	if err != nil {
		return tiers.Recommendation{}, commandError(fmt.Errorf("read total memory: %w", err))
	}
	return c.tiers.Snapshot().Table().Recommend(float64(n) / (1 << 30)), nil
}

// TierPlan reports what switching to another tier would need.
func (c *Core) TierPlan(value string) (tiers.MigrationPlan, error) {
	tier, err := models.ParseTier(value)
	if err != nil {
		return tiers.MigrationPlan{}, invalid("%v", err)
	}
	snap := c.tiers.Snapshot()
	plan, err := snap.Plan(snap.Active, tier, c.registry.Available)
	if err != nil {
		return tiers.MigrationPlan{}, commandError(err)
	}
	return plan, nil
}

// ModelsReport lists known models. Warning is set when the runtime could
// not be reached and every model was marked missing.
type ModelsReport struct {
	Models  []models.Model `json:"models"`
	Warning string         `json:"warning,omitempty"`
	// Credentials says where Anthropic credentials come from, when known.
	Credentials config.KeySource `json:"anthropic_credentials,omitempty"`
}

// Models lists the registry, refreshing availability first when asked.
func (c *Core) Models(ctx context.Context, refresh bool) ModelsReport {
	report := ModelsReport{Credentials: c.opts.keySource}
	if refresh {
		_ = c.registry.Refresh(ctx)
		if err := c.registry.RefreshError(); err != nil {
			report.Warning = fmt.Sprintf("model runtime unreachable: %v", err)
		}
	}
	report.Models = c.registry.List()
	return report
}

// Events streams project progress. It is nil when the project manager was
// built without an event emitter.
func (c *Core) Events() <-chan project.Event {
	return c.projects.Events()
}

// Dashboard summarizes company activity.
func (c *Core) Dashboard(ctx context.Context) (project.Dashboard, error) {
	d, err := c.projects.Dashboard(ctx)
	if err != nil {
		return project.Dashboard{}, commandError(err)
	}
	return d, nil
}

// AskResult is a routed personal-mode answer.
type AskResult struct {
	Persona   string           `json:"persona"`
	Name      string           `json:"name"`
	Role      models.Role      `json:"role"`
	ServedBy  models.Role      `json:"served_by"`
	Model     string           `json:"model"`
	Tier      models.Tier      `json:"tier"`
	Output    string           `json:"output"`
	Attempted []router.Attempt `json:"attempted"`
}

// Ask routes a personal-mode request and records both sides of the exchange.
func (c *Core) Ask(ctx context.Context, goal, personaKey string) (*AskResult, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, invalid("goal is empty")
	}
	if err := c.requireMode(models.ModePersonal, "ask"); err != nil {
		return nil, err
	}

	task := models.Task{
		Goal:    goal,
		Persona: personaKey,
		Mode:    models.ModePersonal,
		Context: conversationContext(c.mode.Conversation(), c.opts.contextTurns),
	}
	res, err := c.router.Execute(ctx, task)
	if err != nil {
		return nil, commandError(err)
	}

	c.mode.AppendTurn(models.Turn{Role: "user", Content: goal})
	c.mode.AppendTurn(models.Turn{Role: "assistant", Persona: res.Persona.Key, Content: res.Output})

	return &AskResult{
		Persona:   res.Persona.Key,
		Name:      res.Persona.Name,
		Role:      res.Role,
		ServedBy:  res.ServedBy,
		Model:     res.Model,
		Tier:      res.Tier,
		Output:    res.Output,
		Attempted: res.Attempted,
	}, nil
}

func conversationContext(turns []models.Turn, n int) string {
	if n == 0 || len(turns) == 0 {
		return ""
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	var b strings.Builder
	for _, t := range turns {
		speaker := t.Role
		if t.Persona != "" {
			speaker = t.Persona
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, t.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Close stops project runs and releases resources. Interrupted projects
// stay resumable.
func (c *Core) Close() error {
	c.projects.Close()
	var errs []error
	for _, cl := range c.opts.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
