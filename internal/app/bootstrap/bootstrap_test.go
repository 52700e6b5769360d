package bootstrap

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/booking-engine/internal/config"
	"github.com/wolfman30/booking-engine/internal/observability/metrics"
	"github.com/wolfman30/booking-engine/pkg/logging"
)

func TestBuildRedisClientDisabledReturnsNil(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
	if store := BuildProfileStore(nil); store != nil {
		t.Fatalf("expected nil store without redis")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	t.Cleanup(func() { _ = client.Close() })
	if BuildProfileStore(client) == nil {
		t.Fatalf("expected profile store")
	}

	mr.Close()
	if down := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); down != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildEngineRequiresConfig(t *testing.T) {
	if _, err := BuildEngine(nil, logging.New("error"), nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildEngineFallsBackToUTC(t *testing.T) {
	cfg := &appconfig.Config{
		Timezone:         "Mars/Olympus_Mons",
		APITimeout:       2 * time.Second,
		ScheduleCacheTTL: time.Minute,
	}

	engine, err := BuildEngine(cfg, logging.New("error"), metrics.NewEngineMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.Location != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", engine.Location)
	}
	if engine.Cache.TTL() != time.Minute {
		t.Fatalf("expected configured cache ttl, got %s", engine.Cache.TTL())
	}
	if engine.Validator.Location() != time.UTC {
		t.Fatalf("expected validator to share the engine location")
	}
}

func TestBuildEngineUsesConfiguredZone(t *testing.T) {
	engine, err := BuildEngine(&appconfig.Config{Timezone: "America/Lima"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.Location.String() != "America/Lima" {
		t.Fatalf("expected America/Lima, got %s", engine.Location)
	}
	if engine.Confirmer == nil || engine.Prevalidator == nil || engine.Schedule == nil {
		t.Fatalf("expected every component to be wired")
	}
}

func TestWriteTimeoutOutlastsBookingBudget(t *testing.T) {
	tests := []struct {
		api  time.Duration
		want time.Duration
	}{
		{10 * time.Second, 35 * time.Second},
		{time.Second, 15 * time.Second},
		{0, 35 * time.Second},
	}
	for _, tt := range tests {
		got := WriteTimeout(tt.api)
		if got != tt.want {
			t.Fatalf("WriteTimeout(%s) = %s, want %s", tt.api, got, tt.want)
		}
		if got <= 3*tt.api {
			t.Fatalf("WriteTimeout(%s) = %s does not cover three upstream calls", tt.api, got)
		}
	}
	if BookingBudget(2*time.Second) != 7*time.Second {
		t.Fatalf("unexpected booking budget: %s", BookingBudget(2*time.Second))
	}
}
