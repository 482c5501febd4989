package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// containsErr reports whether err's message contains want.
func containsErr(err error, want string) bool {
	return err != nil && strings.Contains(err.Error(), want)
}

// Keep a clean slate so tests don't leak env between each other.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // rejected by Load
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_DefaultsAreValid(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on defaults, got: %v", r)
		}
	}()
	if cfg := MustLoad(); cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // unknown modes normalize to release

	t.Setenv("LOG_LEVEL", "warning") // alias of warn
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/v1/") // gains leading slash, loses trailing

	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("CACHE_TTL", "10s")

	// Unparseable rate settings fall back to defaults rather than failing.
	t.Setenv("RATE_RPS", "x")
	t.Setenv("RATE_BURST", "nope")

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	t.Setenv("IDEMPOTENCY_TTL", "48h")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging fields unexpected: %+v", cfg)
	}
	if cfg.DBPath != "db.sqlite" || cfg.CacheTTL != 10*time.Second {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate fallback unexpected: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("idempotency ttl unexpected: %v", cfg.IdempotencyTTL)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PATH", "db.sqlite")
	// API_BASE_PATH and CACHE_TTL deliberately left unset.

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.CacheTTL != 5*time.Second {
		t.Fatalf("CacheTTL default = %v, want 5s", cfg.CacheTTL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	// Each case trips exactly one validation rule. API_BASE_PATH has no
	// failing case: normalizeBasePath always yields a leading slash.
	cases := []struct {
		name, key, val, wantSub string
	}{
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"blank PORT", "PORT", "   ", "PORT must not be empty"},
		{"zero READ_TIMEOUT", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"zero MAX_HEADER_BYTES", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"blank DB_PATH", "DB_PATH", "   ", "DB_PATH must not be empty"},
		{"negative CACHE_TTL", "CACHE_TTL", "-1s", "CACHE_TTL"},
		{"negative RATE_RPS", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero RATE_BURST", "RATE_BURST", "0", "RATE_BURST"},
		{"negative HSTS_MAX_AGE", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"zero IDEMPOTENCY_TTL", "IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"sampler ratio above 1", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil || !containsErr(err, tc.wantSub) {
				t.Fatalf("expected error mentioning %q, got: %v", tc.wantSub, err)
			}
		})
	}
}

func Test_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("empty var should fall back to default")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("set var should win over default")
	}
}

func Test_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	t.Setenv("F_BAD", "nope")
	if getfloat("F_VALID", 0) != 3.14 || getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat parse/fallback failed")
	}

	t.Setenv("I_VALID", "42")
	t.Setenv("I_BAD", "x")
	if getint("I_VALID", 0) != 42 || getint("I_BAD", 7) != 7 {
		t.Fatalf("getint parse/fallback failed")
	}

	t.Setenv("D_VALID", "150ms")
	t.Setenv("D_BAD", "zzz")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond || getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur parse/fallback failed")
	}
}

func Test_getbool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		k := "B_T_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false, want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		k := "B_F_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true, want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("empty var should return the default")
	}
}

func Test_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV(\"\") = %#v, want nil", out)
	}
	want := []string{"a", "b", "c"}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV = %#v, want %#v", got, want)
	}

	for in, want := range map[string]string{
		"":     "/",
		"v1":   "/v1",
		"/v1/": "/v1",
		" / ":  "/",
	} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
