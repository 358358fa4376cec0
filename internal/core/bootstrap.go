package core

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/config"
	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/registry"
	"github.com/SharminSirajudeen/nova/internal/router"
	"github.com/SharminSirajudeen/nova/internal/runtime"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/internal/tiers"
)

// eventBuffer holds project events until the shell reads them. One-shot CLI
// commands never read; events past the buffer are dropped.
const eventBuffer = 256

// Open builds a Core from configuration: model runtimes, the tier table
// (watched for changes when loaded from a file), the persona catalog, the
// state database and the project manager.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Core, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := config.LoadTierTable(cfg.TiersFile)
	if err != nil {
		return nil, commandError(err)
	}
	active := cfg.DefaultTier()
	if _, ok := table.Get(active); !ok {
		active = table.Levels()[0]
	}
	tierMgr, err := tiers.NewManager(table, active, tiers.WithLogger(logger.Named("tiers")))
	if err != nil {
		return nil, commandError(err)
	}

	catalog := persona.DefaultCatalog()
	if cfg.PersonasFile != "" {
		if catalog, err = persona.LoadCatalog(cfg.PersonasFile); err != nil {
			return nil, commandError(err)
		}
	}

	declared := table.Declared()
	var claude []string
	for _, m := range declared {
		if runtime.Provider(m.ID) == "anthropic" {
			claude = append(claude, m.ID)
		}
	}
	apiKey, _ := config.GetAPIKey(cfg)
	invoker := runtime.NewMux(
		runtime.NewOllama(cfg.Runtime.OllamaHost, runtime.WithTimeout(cfg.Runtime.Timeout)),
		runtime.NewAnthropic(ctx, runtime.AnthropicConfig{
			APIKey:     apiKey,
			UseBedrock: cfg.Anthropic.UseBedrock,
			Region:     cfg.Anthropic.Region,
			Profile:    cfg.Anthropic.Profile,
			MaxTokens:  cfg.Anthropic.MaxTokens,
			Models:     claude,
		}),
	)

	reg := registry.New(invoker, declared, registry.WithLogger(logger.Named("registry")))
	tierMgr.Subscribe(func(s *tiers.Snapshot) {
		t := s.Table()
		reg.Declare(t.Declared()...)
	})

	r := router.New(router.RequiredConfig{
		Tiers:    tierMgr,
		Registry: reg,
		Catalog:  catalog,
		Invoker:  invoker,
	}, router.WithLogger(logger.Named("router")))

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = state.DefaultPath()
	}
	db, err := state.Open(dbPath, cfg.Storage.Driver)
	if err != nil {
		return nil, commandError(fmt.Errorf("open state database: %w", err))
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, commandError(fmt.Errorf("migrate state database: %w", err))
	}

	events := project.NewEventEmitter(eventBuffer, logger.Named("events"))
	projects := project.New(project.RequiredConfig{
		Router:  r,
		Catalog: catalog,
		Store:   db,
	},
		project.WithMaxParallel(cfg.Company.MaxParallel),
		project.WithLogger(logger.Named("project")),
		project.WithEvents(events),
	)

	// The emitter closes after the manager has stopped its runs.
	closers := []io.Closer{events, db}
	if cfg.TiersFile != "" {
		w := config.WatchTiers(cfg.TiersFile, tierMgr, logger.Named("config"))
		closers = append([]io.Closer{w}, closers...)
	}

	c, err := New(ctx, RequiredConfig{
		Tiers:    tierMgr,
		Registry: reg,
		Catalog:  catalog,
		Router:   r,
		Projects: projects,
		Sessions: db,
	},
		WithLogger(logger.Named("core")),
		WithInitialMode(cfg.DefaultMode()),
		WithClosers(closers...),
		WithArchive(db),
		WithKeySource(config.GetAPIKeySource(cfg)),
	)
	if err != nil {
		projects.Close()
		for _, cl := range closers {
			cl.Close()
		}
		return nil, err
	}

	logger.Info("nova started",
		zap.String("db", db.Path()),
		zap.String("driver", db.Driver()),
		zap.Int("tier", int(tierMgr.Active())),
		zap.Int("personas", len(catalog.List())),
		zap.Int("models", len(declared)),
	)
	return c, nil
}
