package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"diet-agent/internal/coach"
	"diet-agent/internal/config"
	"diet-agent/internal/logger"
	"diet-agent/internal/notify"
	"diet-agent/internal/planner"
	"diet-agent/internal/scheduler"
	"diet-agent/internal/server"
	"diet-agent/internal/storage"
	"diet-agent/internal/tracker"
)

var serveOpts struct {
	host        string
	port        int
	dbPath      string
	noScheduler bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(nil)
		if cmd.Flags().Changed("host") {
			cfg.Host = serveOpts.host
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = serveOpts.port
		}
		if cmd.Flags().Changed("db-path") {
			cfg.DBPath = serveOpts.dbPath
		}

		log, err := logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, !serveOpts.noScheduler, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, withScheduler bool, log *logger.Logger) error {
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	p := planner.FromConfig(cfg, log)
	svc := coach.New(store, p, tracker.Config{
		OnTrackTolerance: cfg.OnTrackTolerance,
		MinMealsLogged:   cfg.OnTrackMinMeals,
	}, cfg.Location(), log)

	var notifier notify.Notifier = notify.NewLog(log)
	if cfg.TelegramBotToken != "" {
		notifier = notify.NewTelegram(cfg.TelegramBotToken)
	}

	srv := server.NewDietServer(&server.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		SyncAPIKey: cfg.SyncAPIKey,
	}, svc, store, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })

	if withScheduler {
		sched := scheduler.New(svc, notifier, scheduler.ConfigFrom(cfg), cfg.Location(), log)
		if err := sched.Register(); err != nil {
			return fmt.Errorf("failed to register jobs: %w", err)
		}
		g.Go(func() error { return sched.Run(gctx) })
	}

	log.Info("Diet agent started",
		"address", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		"db_path", cfg.DBPath,
		"ai_provider", p.ProviderName(),
		"timezone", cfg.Timezone,
		"scheduler", withScheduler)
	return g.Wait()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveOpts.host, "host", "0.0.0.0", "Host address (overrides HOST)")
	serveCmd.Flags().IntVar(&serveOpts.port, "port", 8011, "Port for HTTP transport (overrides PORT)")
	serveCmd.Flags().StringVar(&serveOpts.dbPath, "db-path", "/data/diet-agent.db", "Database path (overrides DB_PATH)")
	serveCmd.Flags().BoolVar(&serveOpts.noScheduler, "no-scheduler", false, "Serve requests without sending reminders")
}
