package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable the loader reads so defaults apply.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "MAX_HEADER_BYTES", "GIN_MODE",
		"LOG_LEVEL", "LOG_PRETTY",
		"DB_PATH", "UPLOAD_DIR", "EXPORT_DIR", "BADGE_FONT_PATH",
		"GEOCODE_BASE_URL", "GEOCODE_USER_AGENT", "GEOCODE_TIMEOUT",
		"EXPORT_MODE", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_BUCKET", "S3_USE_SSL",
		"RATE_RPS", "RATE_BURST", "CORS_ALLOWED_ORIGINS",
		"ENABLE_HSTS", "HSTS_MAX_AGE",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME",
		"OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port default = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode default = %q", cfg.GinMode)
	}
	if cfg.DBPath != "onboarding.db" {
		t.Errorf("DBPath default = %q", cfg.DBPath)
	}
	if cfg.UploadDir != "uploads" || cfg.ExportDir != "exports" {
		t.Errorf("dirs default = %q / %q", cfg.UploadDir, cfg.ExportDir)
	}
	if cfg.Geocode.BaseURL != "https://nominatim.openstreetmap.org" {
		t.Errorf("Geocode.BaseURL default = %q", cfg.Geocode.BaseURL)
	}
	if cfg.Geocode.UserAgent != "EmployeeBadgeApp/1.0" {
		t.Errorf("Geocode.UserAgent default = %q", cfg.Geocode.UserAgent)
	}
	if cfg.Geocode.Timeout != 10*time.Second {
		t.Errorf("Geocode.Timeout default = %v", cfg.Geocode.Timeout)
	}
	if cfg.Export.Mode != "local" {
		t.Errorf("Export.Mode default = %q", cfg.Export.Mode)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate defaults = %v / %d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.OTEL.Enabled {
		t.Errorf("OTEL should default to disabled")
	}
}

func TestLoad_NormalizesWarningLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want warn", cfg.LogLevel)
	}
}

func TestLoad_InvalidGinModeFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIN_MODE", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release", cfg.GinMode)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"zero timeout", "READ_TIMEOUT", "0s", "timeouts"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"bad export mode", "EXPORT_MODE", "ftp", "EXPORT_MODE"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "2", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.val)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_S3ModeRequiresEndpointAndBucket(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXPORT_MODE", "s3")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for s3 mode without endpoint/bucket")
	}

	t.Setenv("S3_ENDPOINT", "minio:9000")
	t.Setenv("S3_BUCKET", "onboarding")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Mode != "s3" || cfg.Export.S3Bucket != "onboarding" {
		t.Errorf("unexpected export config: %+v", cfg.Export)
	}
}

func TestLoad_SplitsCORSOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.CORS.AllowedOrigins
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %#v", got)
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", " ")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = MustLoad()
}
