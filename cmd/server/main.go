// Command server runs the garage management API.
//
// Startup order: env + config, logging, database (migrate + seed), tracing,
// router, then an http.Server with sane timeouts and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-garage-backend/internal/config"
	httpapi "github.com/tbourn/go-garage-backend/internal/http"
	"github.com/tbourn/go-garage-backend/internal/observability"
	"github.com/tbourn/go-garage-backend/internal/repo"
	"github.com/tbourn/go-garage-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if err := repo.Seed(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("seed slots and catalog")
	}

	// Tracing (no-op unless OTEL_ENABLED). CI can stamp the build via
	// SERVICE_VERSION without a recompile.
	ver := sysutil.FirstNonEmpty(os.Getenv("SERVICE_VERSION"), version)
	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if shutdownOTel != nil {
		if err := shutdownOTel(ctx); err != nil {
			log.Error().Err(err).Msg("tracer shutdown failed")
		}
	}
	log.Info().Msg("bye")
}
