package httpapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-onboarding-backend/internal/config"
	"github.com/tbourn/go-onboarding-backend/internal/domain"
	"github.com/tbourn/go-onboarding-backend/internal/export"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:routerdb?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// schema so handlers don't explode on preview endpoints
	if err := db.AutoMigrate(&domain.Submission{}, &domain.Counter{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		UploadDir: t.TempDir(),
		ExportDir: t.TempDir(),
		RateRPS:   100,
		RateBurst: 10,
		CORS:      config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:  config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:      config.OTELConfig{ServiceName: "test-svc"},
	}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig(t)
	db := newTestDB(t)

	RegisterRoutes(r, db, export.NewLocalExporter(cfg.ExportDir), cfg)

	// / is the plain-text liveness probe
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "Hello" {
		t.Fatalf("GET / = %d %q", w.Code, w.Body.String())
	}

	// /health works
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("expected not_found envelope, got %s", w.Body.String())
	}

	// NoMethod → 405 (DELETE /submit)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/submit", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /submit expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_IntakeEndpointsWired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig(t)
	db := newTestDB(t)

	RegisterRoutes(r, db, export.NewLocalExporter(cfg.ExportDir), cfg)

	// generate-empid hits the real service and empty DB → first ID
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/generate-empid", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/generate-empid = %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "FAC-EMP-000") {
		t.Fatalf("expected first employee id, got %s", w.Body.String())
	}

	// generate-email previews the suffix for an unseen name
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/generate-email",
		strings.NewReader(`{"firstName":"Jane","lastName":"Doe"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/generate-email = %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "jane.doe00@faucek.com") {
		t.Fatalf("expected previewed email, got %s", w.Body.String())
	}

	// check-email against the empty DB
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/check-email",
		strings.NewReader(`{"email":"jane@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"exists":false`) {
		t.Fatalf("POST /api/check-email = %d (%s)", w.Code, w.Body.String())
	}

	// the workbook download streams a non-empty attachment
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/download-employees-excel", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /api/download-employees-excel = %d len=%d", w.Code, w.Body.Len())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "employees.xlsx") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
}

func TestRegisterRoutes_UploadsStaticServing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig(t)
	db := newTestDB(t)

	if err := os.WriteFile(filepath.Join(cfg.UploadDir, "badge-x.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	RegisterRoutes(r, db, export.NewLocalExporter(cfg.ExportDir), cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/uploads/badge-x.png", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Fatalf("GET /uploads/badge-x.png = %d %q", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_CORSAllowlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig(t)
	cfg.CORS.AllowedOrigins = []string{"https://intake.faucek.com"}
	db := newTestDB(t)

	RegisterRoutes(r, db, export.NewLocalExporter(cfg.ExportDir), cfg)

	// Allowed origin is echoed
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://intake.faucek.com")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://intake.faucek.com" {
		t.Fatalf("expected echoed origin, got %q", got)
	}

	// Unknown origin gets nothing
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no ACAO for unknown origin, got %q", got)
	}
}

func TestRegisterRoutes_RateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig(t)
	cfg.RateRPS = 1
	cfg.RateBurst = 1
	db := newTestDB(t)

	RegisterRoutes(r, db, export.NewLocalExporter(cfg.ExportDir), cfg)

	addr := "203.0.113.77:40000"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = addr
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = addr
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d; want 429", w.Code)
	}
}
