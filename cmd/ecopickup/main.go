package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/ecopickup/ecopickup/cmd/ecopickup/cli"
	"github.com/ecopickup/ecopickup/internal/app"
	"github.com/ecopickup/ecopickup/internal/auth"
	"github.com/ecopickup/ecopickup/internal/dashboard"
	"github.com/ecopickup/ecopickup/internal/gate"
	"github.com/ecopickup/ecopickup/internal/i18n"
	"github.com/ecopickup/ecopickup/internal/kv"
	"github.com/ecopickup/ecopickup/internal/observability"
	"github.com/ecopickup/ecopickup/internal/pickup"
	"github.com/ecopickup/ecopickup/internal/seed"
	"github.com/ecopickup/ecopickup/internal/shared"
	"github.com/ecopickup/ecopickup/internal/view"
	"github.com/ecopickup/ecopickup/jobs"
)

const usage = `usage: ecopickup [command]

commands:
  serve                    run the HTTP server (default)
  seed [-json]             seed demo data into empty slots
  reset [-json]            clear and re-seed demo data
  jobs trigger <task>      enqueue a background task (demo:reset)
  jobs stats               print default queue statistics
`

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "seed", "reset":
		os.Exit(runSeed(ctx, cfg, logger, cmd == "reset", args))
	case "jobs":
		err = runJobs(ctx, cfg, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(cmd, slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	backends, err := app.OpenBackends(ctx, cfg, logger, true)
	if err != nil {
		return fmt.Errorf("open backends: %w", err)
	}
	defer backends.Close()

	metrics := observability.NewMetrics()
	seeder := seed.NewSeeder(backends.Store, logger, metrics, seed.Config{AccountThreshold: seed.Threshold(cfg.SeedAccountThreshold)})
	if cfg.SeedOnStart {
		if _, err := seeder.Seed(ctx); err != nil {
			// Malformed slots are left untouched; the server still starts.
			logger.Warn("seed on start", slog.Any("error", err))
		}
	}

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	placeholders := gate.NewPlaceholders(templates, i18n.New(cfg.DefaultLang), logger)
	gates := gate.Middleware{
		Loading:  placeholders.Loading(),
		Denied:   placeholders.Denied(),
		Recorder: metrics,
		Logger:   logger,
	}

	sessionManager := shared.NewSessionManager(backends.Redis, "ecopickup_session", cfg.StorePrefix+":session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	repo := pickup.NewRepository(backends.Store)
	authHandler := auth.NewHandler(logger, auth.NewService(repo), sessionManager)

	redisOpts := app.AsynqRedisOpts(cfg)
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		DashboardHandler: dashboard.NewHandler(logger, repo, seeder, asyncResets(cfg, jobClient), gates),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// asyncResets returns nil for the memory driver: a worker process cannot reach this
// process's map, so queued resets would never apply.
func asyncResets(cfg *app.Config, client *jobs.Client) dashboard.ResetEnqueuer {
	if client == nil || cfg.StoreDriver == kv.DriverMemory {
		return nil
	}
	return client
}

func runSeed(ctx context.Context, cfg *app.Config, logger *slog.Logger, reset bool, args []string) int {
	name := "seed"
	if reset {
		name = "reset"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return cli.ExitFailure
	}
	if cfg.StoreDriver == kv.DriverMemory {
		logger.Warn("memory store is process local; seeded data is discarded on exit")
	}

	backends, err := app.OpenBackends(ctx, cfg, logger, false)
	if err != nil {
		logger.Error("open backends", slog.Any("error", err))
		return cli.ExitFailure
	}
	defer backends.Close()

	seeder := seed.NewSeeder(backends.Store, logger, nil, seed.Config{AccountThreshold: seed.Threshold(cfg.SeedAccountThreshold)})
	seedCLI, err := cli.NewSeedCLI(seeder)
	if err != nil {
		logger.Error("seed cli", slog.Any("error", err))
		return cli.ExitFailure
	}
	return seedCLI.Run(ctx, cli.SeedOptions{Reset: reset, JSONOutput: *jsonOut})
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("jobs: missing subcommand")
	}
	jobsCLI, err := cli.NewJobsCLI(app.AsynqRedisOpts(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return errors.New("jobs trigger: task name required")
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	default:
		return fmt.Errorf("jobs: unknown subcommand %q", args[0])
	}
	return nil
}
