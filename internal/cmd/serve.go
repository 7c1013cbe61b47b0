package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectpleasure/pleasure/internal/aggregator"
	"github.com/projectpleasure/pleasure/internal/analytics"
	"github.com/projectpleasure/pleasure/internal/config"
	"github.com/projectpleasure/pleasure/internal/db"
	"github.com/projectpleasure/pleasure/internal/logger"
	"github.com/projectpleasure/pleasure/internal/server"
	"github.com/projectpleasure/pleasure/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr   string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analytics HTTP API",
	Long: `Run the JSON API. Configuration comes from the environment and an
optional .env file; flags override the listen address and database path.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides SERVER_ADDR)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "DuckDB file path (overrides DB_PATH, empty keeps it in memory)")
}

// loadConfig applies the shared flag overrides on top of the environment.
func loadConfig(cmd *cobra.Command, dbPath string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.Path = dbPath
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func openService(ctx context.Context, cfg *config.Config) (*analytics.Service, *store.Store, func(), error) {
	database, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, err
	}

	st := store.New(database)
	svc := analytics.NewService(st, aggregator.NewAggregator(aggregator.DefaultConfig()))
	closeFn := func() {
		if err := database.Close(); err != nil {
			logger.Logger.Error("failed to close database", "error", err)
		}
	}
	return svc, st, closeFn, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, serveDBPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, st, closeDB, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	srv := server.New(cfg, svc, st)

	dbLabel := cfg.Database.Path
	if dbLabel == "" {
		dbLabel = "in-memory"
	}
	logger.Logger.Info("starting server", "address", cfg.Server.Addr, "database", dbLabel)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Logger.Info("shutting down server")
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	logger.Logger.Info("server exited")
	return nil
}
