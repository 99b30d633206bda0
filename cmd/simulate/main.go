package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Rim-SeungJae/eternal-survival/internal/ai"
	"github.com/Rim-SeungJae/eternal-survival/internal/config"
	"github.com/Rim-SeungJae/eternal-survival/internal/data"
	"github.com/Rim-SeungJae/eternal-survival/internal/db"
	"github.com/Rim-SeungJae/eternal-survival/internal/pattern"
	"github.com/Rim-SeungJae/eternal-survival/internal/sim"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Per-tick AI logs are only worth their cost at debug level
	ai.EnableDebugLogging(cfg.Debug && logLevel == slog.LevelDebug)

	slog.Info("simulation starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate,
		"ticks", cfg.Ticks,
		"catalog_source", cfg.Catalog.Source)

	source, scripts, closeSource, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	s, err := sim.New(ctx, sim.Options{
		Config:  cfg,
		Catalog: source,
		Scripts: scripts,
	})
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)
	defer stopWatch()

	g.Go(func() error {
		defer stopWatch()
		slog.Info("starting tick loop", "rate", cfg.TickRate, "realtime", cfg.Realtime)
		if err := s.Run(gctx); err != nil {
			return fmt.Errorf("tick loop: %w", err)
		}
		return nil
	})

	if cfg.Catalog.Watch && cfg.Catalog.Source == config.SourceYAML {
		w, err := data.NewWatcher(cfg.Catalog.Debounce, filepath.Dir(cfg.Catalog.Path), cfg.Catalog.ScriptDir)
		if err != nil {
			s.Stop()
			_ = g.Wait()
			return fmt.Errorf("starting catalog watcher: %w", err)
		}
		g.Go(func() error {
			slog.Info("watching catalog", "path", cfg.Catalog.Path, "scripts", cfg.Catalog.ScriptDir)
			return w.Run(watchCtx, func(paths []string) {
				slog.Info("catalog change detected", "paths", paths)
				s.ScheduleReload(watchCtx)
			})
		})
	}

	err = g.Wait()
	s.Report().Log()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("simulation error: %w", err)
	}
	return nil
}

// openCatalog returns the catalog source and script loader selected by cfg.
func openCatalog(ctx context.Context, cfg config.Simulation) (data.Source, pattern.ScriptLoader, func(), error) {
	if cfg.Catalog.Source != config.SourcePostgres {
		return data.FileSource(cfg.Catalog.Path), data.DirScripts(cfg.Catalog.ScriptDir), func() {}, nil
	}

	dsn := cfg.Database.DSN()
	database, err := db.New(ctx, dsn, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	migrated, err := db.RunMigrations(ctx, dsn)
	if err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied", "schema_version", migrated.Version, "new", len(migrated.Applied))

	repo := db.NewActionRepository(database.Pool())
	if cfg.Catalog.Seed {
		if err := seedCatalog(ctx, repo, cfg.Catalog); err != nil {
			database.Close()
			return nil, nil, nil, err
		}
	}
	if err := checkStoredActor(ctx, repo, cfg.Boss.Actor); err != nil {
		database.Close()
		return nil, nil, nil, err
	}
	return repo, repo.Scripts(ctx), database.Close, nil
}

// actorStore is the part of the catalog store checked at startup.
type actorStore interface {
	Actors(ctx context.Context) ([]string, error)
	LoadActor(ctx context.Context, actor string) (data.ActorCatalog, error)
}

// checkStoredActor fails fast when the database holds no actions for the
// boss actor, listing the actors it does hold.
func checkStoredActor(ctx context.Context, store actorStore, actor string) error {
	names, err := store.Actors(ctx)
	if err != nil {
		return fmt.Errorf("checking stored catalog: %w", err)
	}
	a, err := store.LoadActor(ctx, actor)
	if err != nil {
		return fmt.Errorf("checking stored catalog: %w", err)
	}
	if len(a.Actions) == 0 {
		return fmt.Errorf("stored catalog has no actions for boss actor %q (stored actors: %v)", actor, names)
	}
	slog.Info("stored catalog found", "actors", names, "boss_actions", len(a.Actions))
	return nil
}

// seedCatalog copies the YAML catalog and the script dir into the database.
func seedCatalog(ctx context.Context, repo *db.ActionRepository, cfg config.CatalogConfig) error {
	c, err := data.LoadCatalog(cfg.Path)
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	if err := repo.SaveCatalog(ctx, c); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	if cfg.ScriptDir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(cfg.ScriptDir, "*"+data.ScriptExt))
	if err != nil {
		return fmt.Errorf("seeding scripts: %w", err)
	}
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("seeding scripts: %w", err)
		}
		name := filepath.Base(f)
		name = name[:len(name)-len(data.ScriptExt)]
		if err := pattern.CompileScript(src); err != nil {
			return fmt.Errorf("seeding script %s: %w", name, err)
		}
		if err := repo.SaveScript(ctx, name, src); err != nil {
			return err
		}
	}
	slog.Info("catalog seeded", "actors", len(c.Actors), "scripts", len(files))
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
