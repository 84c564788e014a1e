package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"biolinks/internal/clicks"
	"biolinks/internal/config"
	"biolinks/internal/db"
	"biolinks/internal/links"
	"biolinks/internal/logging"
	"biolinks/internal/metrics"
	"biolinks/internal/platforms"
	"biolinks/internal/profiles"
	"biolinks/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg)

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		fatal(logger, "failed to load config file", err)
	}

	catalog, err := platformCatalog(yamlCfg)
	if err != nil {
		fatal(logger, "invalid platform catalog", err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: cfg.DatabaseMaxConnLife,
	})
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		fatal(logger, "failed to run migrations", err)
	}
	logger.Info("migrations completed")

	if cfg.MetricsEnabled {
		metrics.Init(database)
	}

	recorder := clicks.NewRecorder(database, cfg.ClickQueueSize, cfg.ClickWorkers, logger)
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	var recorderDone sync.WaitGroup
	recorderDone.Add(1)
	go func() {
		defer recorderDone.Done()
		recorder.Start(recorderCtx)
	}()

	linkService := links.NewService(database, database, clicks.NewCounter(database), catalog, logger)
	profileService := profiles.NewService(database, yamlCfg.GetReservedSlugs(), logger)

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, server.Deps{
		DB:        database,
		Users:     database,
		Clicks:    database,
		Recorder:  recorder,
		Links:     linkService,
		Profiles:  profileService,
		Platforms: catalog,
	}); err != nil {
		fatal(logger, "failed to register routes", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	// Queued clicks are written before the pool closes.
	stopRecorder()
	recorderDone.Wait()

	logger.Info("server exited")
}

// platformCatalog builds the catalog from config.yaml, falling back to the
// built-in platforms when none are configured.
func platformCatalog(yamlCfg *config.YAMLConfig) (*platforms.Catalog, error) {
	configured := yamlCfg.GetPlatforms()
	if len(configured) == 0 {
		return platforms.Default(), nil
	}

	defs := make([]platforms.Definition, len(configured))
	for i, p := range configured {
		defs[i] = platforms.Definition{
			ID:          p.ID,
			Name:        p.Name,
			Pattern:     p.Pattern,
			Placeholder: p.Placeholder,
			BaseURL:     p.BaseURL,
			Color:       p.Color,
		}
	}
	return platforms.New(defs)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
