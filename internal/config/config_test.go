package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "TIMEZONE", "API_TIMEOUT", "SCHEDULE_CACHE_TTL_MINUTES", "API_INFORMACION_URL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.Timezone != "America/Lima" {
		t.Fatalf("expected default timezone, got %s", cfg.Timezone)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Fatalf("expected 10s api timeout, got %s", cfg.APITimeout)
	}
	if cfg.ScheduleCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %s", cfg.ScheduleCacheTTL)
	}
	if cfg.InformationURL != defaultInformationURL {
		t.Fatalf("expected default information url, got %s", cfg.InformationURL)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("TIMEZONE", "America/Bogota")
	t.Setenv("API_TIMEOUT", "3")
	t.Setenv("SCHEDULE_CACHE_TTL_MINUTES", "15")
	t.Setenv("API_AGENDAR_REUNION_URL", "http://booking.local/write")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := Load()
	if cfg.Port != "9090" || cfg.Env != "production" {
		t.Fatalf("unexpected port/env %s/%s", cfg.Port, cfg.Env)
	}
	if cfg.Timezone != "America/Bogota" {
		t.Fatalf("expected timezone override, got %s", cfg.Timezone)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.APITimeout)
	}
	if cfg.ScheduleCacheTTL != 15*time.Minute {
		t.Fatalf("expected 15m ttl, got %s", cfg.ScheduleCacheTTL)
	}
	if cfg.BookingURL != "http://booking.local/write" {
		t.Fatalf("expected booking url override, got %s", cfg.BookingURL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 4 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestAPITimeoutAcceptsDuration(t *testing.T) {
	t.Setenv("API_TIMEOUT", "1500ms")
	if got := Load().APITimeout; got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %s", got)
	}
	t.Setenv("API_TIMEOUT", "nonsense")
	if got := Load().APITimeout; got != 10*time.Second {
		t.Fatalf("expected fallback to default, got %s", got)
	}
}
