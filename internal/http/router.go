// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-onboarding-backend/internal/badge"
	"github.com/tbourn/go-onboarding-backend/internal/config"
	"github.com/tbourn/go-onboarding-backend/internal/domain"
	"github.com/tbourn/go-onboarding-backend/internal/export"
	"github.com/tbourn/go-onboarding-backend/internal/geocode"
	"github.com/tbourn/go-onboarding-backend/internal/http/handlers"
	"github.com/tbourn/go-onboarding-backend/internal/http/middleware"
	"github.com/tbourn/go-onboarding-backend/internal/repo"
	"github.com/tbourn/go-onboarding-backend/internal/services"
)

// submissionRepoShim adapts the repository free functions to the
// services.SubmissionRepo interface expected by SubmissionService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type submissionRepoShim struct{}

// Create proxies repo.CreateSubmission.
func (submissionRepoShim) Create(ctx context.Context, db *gorm.DB, s *domain.Submission) error {
	return repo.CreateSubmission(ctx, db, s)
}

// EmailExists proxies repo.EmailExists.
func (submissionRepoShim) EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	return repo.EmailExists(ctx, db, email)
}

// CountByName proxies repo.CountByName.
func (submissionRepoShim) CountByName(ctx context.Context, db *gorm.DB, firstName, lastName string) (int64, error) {
	return repo.CountByName(ctx, db, firstName, lastName)
}

// Count proxies repo.CountSubmissions.
func (submissionRepoShim) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountSubmissions(ctx, db)
}

// List proxies repo.ListSubmissions.
func (submissionRepoShim) List(ctx context.Context, db *gorm.DB) ([]domain.Submission, error) {
	return repo.ListSubmissions(ctx, db)
}

// NextSequence proxies repo.NextSequence (identifier counters).
func (submissionRepoShim) NextSequence(ctx context.Context, db *gorm.DB, key string) (int64, error) {
	return repo.NextSequence(ctx, db, key)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// intake API.
//
// The exporter is injected because its construction depends on deployment
// mode (local workbook vs S3-compatible object store) and may fail; main
// decides and reports that before routes are mounted.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (generous: multipart photo uploads)
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, exp export.Exporter, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (10 MiB: the submit endpoint carries a photo)
	r.Use(limitBody(10 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Hello") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: service ← repo/db/geocoder/badges/exporter
	cities := geocode.NewClient(cfg.Geocode)
	badges := badge.NewRenderer(cfg.UploadDir, cfg.BadgeFontPath)
	svc := services.NewSubmissionService(db, submissionRepoShim{}, cities, badges, exp)
	h := handlers.New(svc, cfg.UploadDir)

	// Uploaded photos and generated badges are publicly served.
	r.Static("/uploads", cfg.UploadDir)

	// Intake API
	r.POST("/submit", h.Submit)
	api := r.Group("/api")
	{
		api.POST("/generate-email", h.GenerateEmail)
		api.GET("/generate-empid", h.GenerateEmpID)
		api.POST("/check-email", h.CheckEmail)
		api.POST("/validate-city", h.ValidateCity)
		api.GET("/download-employees-excel", h.DownloadEmployeesExcel)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
