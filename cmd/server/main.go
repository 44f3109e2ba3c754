package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/chain-sentry/internal/config"
	"github.com/aristath/chain-sentry/internal/database"
	"github.com/aristath/chain-sentry/internal/modules/optimizer"
	"github.com/aristath/chain-sentry/internal/modules/scenarios"
	"github.com/aristath/chain-sentry/internal/modules/scoring"
	"github.com/aristath/chain-sentry/internal/modules/settings"
	"github.com/aristath/chain-sentry/internal/scheduler"
	"github.com/aristath/chain-sentry/internal/server"
	"github.com/aristath/chain-sentry/internal/services"
	"github.com/aristath/chain-sentry/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "error"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Chain Sentry")

	db, err := database.New(database.Config{
		Path:    cfg.DataDir + "/sentry.db",
		Profile: database.ProfileStandard,
		Name:    "sentry",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Repositories
	unitsRepo := scoring.NewRepository(db.Conn(), log)
	settingsRepo := settings.NewRepository(db.Conn(), log)
	scenariosRepo := scenarios.NewRepository(db.Conn(), log)

	// Engine service with the production optimizer configuration
	opt := optimizer.New(optimizer.DefaultConfig(), log)
	engine := services.NewEngine(unitsRepo, scenariosRepo, settingsRepo, opt, log)

	// Scheduler with the daily re-optimization job
	sched := scheduler.New(log)
	reoptimizeJob := scheduler.NewReoptimizeJob(engine, log)
	if err := sched.AddJob(cfg.ReoptimizeSchedule, reoptimizeJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register reoptimize job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:           log,
		DB:            db,
		Config:        cfg,
		Scheduler:     sched,
		Engine:        engine,
		UnitsRepo:     unitsRepo,
		SettingsRepo:  settingsRepo,
		ScenariosRepo: scenariosRepo,
		ReoptimizeJob: reoptimizeJob,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
