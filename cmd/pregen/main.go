package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/pregen/internal/config"
	"github.com/udisondev/pregen/internal/db"
	"github.com/udisondev/pregen/internal/pregen"
	"github.com/udisondev/pregen/internal/world"
)

const ConfigPath = "config/pregen.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(ctx, sigCh); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sigCh <-chan os.Signal) error {
	cfgPath := ConfigPath
	if p := os.Getenv("PREGEN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadPregen(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("pregen starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"tick_interval", cfg.TickInterval,
		"store", cfg.Store.Driver)

	recorder, closeStore, err := openRecorder(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	worlds, err := buildWorlds(cfg.Worlds)
	if err != nil {
		return err
	}
	slog.Info("worlds initialized", "worlds", worlds.Names())

	ticker := pregen.NewIntervalTicker(cfg.TickInterval)
	driver := pregen.NewDriver(worlds, ticker, recorder, cfg.Limits())

	jobs := submitRequests(ctx, driver, cfg.Requests)
	if len(jobs) == 0 {
		slog.Info("nothing to generate")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ticker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("generation ticker: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer ticker.Stop()
		return waitJobs(gctx, driver, sigCh, cfg.ShutdownTimeout, cfg.ProgressEvery)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("pregen error: %w", err)
	}

	return summarize(jobs)
}

// openRecorder opens the configured job history store. The returned close
// func is never nil on success.
func openRecorder(ctx context.Context, store config.StoreConfig) (pregen.Recorder, func(), error) {
	switch store.Driver {
	case config.StoreSQLite:
		sqlDB, err := db.OpenSQLite(ctx, store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening job store: %w", err)
		}
		slog.Info("job store opened", "driver", store.Driver, "path", store.SQLitePath)
		return db.NewSQLiteJobRepository(sqlDB), func() { sqlDB.Close() }, nil

	case config.StorePostgres:
		dsn := store.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := db.RunMigrations(ctx, dsn); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("job store opened", "driver", store.Driver, "host", store.Database.Host)
		return db.NewJobRepository(database.Pool()), database.Close, nil

	default:
		return nil, func() {}, nil
	}
}

// buildWorlds creates the in-memory worlds and pins their configured cells.
func buildWorlds(cfgs []config.WorldConfig) (*world.Manager, error) {
	mgr := world.NewManager()
	for _, wc := range cfgs {
		w := world.NewWorld(wc.Name, world.HashGenerator{Seed: wc.Seed}, wc.MaxHeight)
		if err := mgr.Add(w); err != nil {
			return nil, fmt.Errorf("building worlds: %w", err)
		}
		for _, p := range wc.Pinned {
			w.Pin(world.CellPos(p))
		}
		slog.Debug("world created",
			"world", wc.Name,
			"seed", wc.Seed,
			"max_height", w.MaxHeight(),
			"pinned", len(wc.Pinned))
	}
	return mgr, nil
}

// submitRequests queues the startup requests. Rejected ones are logged and
// skipped.
func submitRequests(ctx context.Context, d *pregen.Driver, reqs []config.RequestConfig) []*pregen.Job {
	var jobs []*pregen.Job
	for i, rc := range reqs {
		req, err := rc.Request()
		if err != nil {
			slog.Error("invalid request", "index", i, "err", err)
			continue
		}
		job, err := d.Submit(ctx, req)
		if err != nil {
			slog.Error("request not accepted", "index", i, "world", rc.World, "err", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// waitJobs blocks until the queue drains. On a signal it cancels generation
// and waits up to timeout for the loaded cells to be released.
func waitJobs(ctx context.Context, d *pregen.Driver, sigCh <-chan os.Signal, timeout, progressEvery time.Duration) error {
	idle := make(chan error, 1)
	go func() { idle <- d.WaitIdle(ctx) }()

	var progress <-chan time.Time
	if progressEvery > 0 {
		t := time.NewTicker(progressEvery)
		defer t.Stop()
		progress = t.C
	}

	for {
		select {
		case err := <-idle:
			return err

		case <-progress:
			logProgress(d)

		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig)
			d.Cancel(ctx)
			return drain(ctx, d, timeout)
		}
	}
}

func drain(ctx context.Context, d *pregen.Driver, timeout time.Duration) error {
	drainCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.WaitIdle(drainCtx); err != nil {
		if p, ok := d.Progress(); ok {
			slog.Warn("shutdown timeout, cells left resident",
				"pending_lighting", p.PendingLighting,
				"pending_cleanup", p.PendingCleanup)
		}
		return nil
	}
	slog.Info("generation drained")
	return nil
}

func logProgress(d *pregen.Driver) {
	job := d.Active()
	p, ok := d.Progress()
	if job == nil || !ok {
		return
	}
	slog.Info("generation progress",
		"job", job.ID(),
		"world", job.World(),
		"tiles", fmt.Sprintf("%d/%d", p.TilesDone, p.TilesTotal),
		"loaded", p.CellsLoaded,
		"lit", p.CellsLit,
		"released", p.CellsReleased,
		"pending_cleanup", p.PendingCleanup,
		"queued", d.Queued())
}

// summarize собирает ошибки упавших заданий в одну.
func summarize(jobs []*pregen.Job) error {
	var errs []error
	for _, job := range jobs {
		if job.State() == pregen.StateFailed {
			errs = append(errs, fmt.Errorf("job %s: %w", job.ID(), job.Err()))
		}
	}
	return errors.Join(errs...)
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
