package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Neo52000/ma-papeterie-sub003/internal/config"
	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/router"
	"github.com/Neo52000/ma-papeterie-sub003/internal/worker"
)

func main() {
	// Structured logger: pretty console in dev, JSON in production
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	metrics := infra.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, deps := router.New(cfg, db, rdb, metrics)

	// Worker pool: background simulations and report notifications. Wired
	// here (composition root) so the workers share the same service graph as
	// the HTTP layer.
	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	simWorker := worker.NewSimulationWorker(deps.Simulations, deps.Dispatcher, cfg.NotifyEmail)
	notifyWorker := worker.NewNotifyWorker(deps.Simulations, mailer, smtpCB)
	pool := worker.NewPool(rdb, metrics, simWorker, notifyWorker)
	pool.Start(ctx, cfg.WorkerPoolSize)

	if cfg.ScheduleEnabled {
		worker.StartScheduler(ctx, worker.SchedulerConfig{
			Rulesets:   deps.Rulesets,
			Dispatcher: deps.Dispatcher,
			Interval:   time.Duration(cfg.ScheduleIntervalHours) * time.Hour,
		})
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("pricing engine listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
