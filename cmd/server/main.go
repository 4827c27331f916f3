// Command server runs the onboarding intake API.
//
// Boot order: env file → config → logging → data directories → database →
// tracing → exporter selection → router → HTTP server with graceful shutdown.
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
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-onboarding-backend/internal/config"
	"github.com/tbourn/go-onboarding-backend/internal/export"
	httpapi "github.com/tbourn/go-onboarding-backend/internal/http"
	"github.com/tbourn/go-onboarding-backend/internal/observability"
	"github.com/tbourn/go-onboarding-backend/internal/repo"
	"github.com/tbourn/go-onboarding-backend/internal/sysutil"
)

func main() {
	// Optional .env for local development; production uses real env vars.
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		sysutil.UsePrettyLogging()
	}

	version := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), "dev")

	for _, dir := range []string{cfg.UploadDir, cfg.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("create data directory")
		}
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	var exp export.Exporter
	switch cfg.Export.Mode {
	case "s3":
		exp, err = export.NewS3Exporter(cfg.Export)
		if err != nil {
			log.Fatal().Err(err).Msg("setup s3 exporter")
		}
		log.Info().Str("bucket", cfg.Export.S3Bucket).Msg("exporting submissions to object store")
	default:
		local := export.NewLocalExporter(cfg.ExportDir)
		exp = local
		log.Info().Str("path", local.Path()).Msg("exporting submissions to local workbook")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, exp, cfg)

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
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Msg("onboarding API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(ctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}

	log.Info().Msg("server exited")
}
