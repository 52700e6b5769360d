package bootstrap

import (
	"fmt"
	"time"

	"github.com/wolfman30/booking-engine/internal/booking"
	appconfig "github.com/wolfman30/booking-engine/internal/config"
	"github.com/wolfman30/booking-engine/internal/observability/metrics"
	"github.com/wolfman30/booking-engine/internal/schedule"
	"github.com/wolfman30/booking-engine/internal/upstream"
	"github.com/wolfman30/booking-engine/pkg/logging"
)

// bookingUpstreamCalls is the longest chain of sequential upstream calls one
// request makes: hours fetch, availability check, booking write.
const bookingUpstreamCalls = 3

// minWriteTimeout is the floor for the server write deadline.
const minWriteTimeout = 15 * time.Second

// BookingBudget is the worst-case time a /v1/bookings request spends
// upstream when every call runs to apiTimeout, plus half a call of slack.
func BookingBudget(apiTimeout time.Duration) time.Duration {
	if apiTimeout <= 0 {
		apiTimeout = upstream.DefaultTimeout
	}
	return bookingUpstreamCalls*apiTimeout + apiTimeout/2
}

// WriteTimeout is the HTTP server write deadline. It always outlasts
// BookingBudget so a booking written upstream is reported to the caller.
func WriteTimeout(apiTimeout time.Duration) time.Duration {
	return max(BookingBudget(apiTimeout), minWriteTimeout)
}

// Engine is the wired validation and confirmation pipeline.
type Engine struct {
	Location     *time.Location
	Cache        *schedule.Cache
	Schedule     *schedule.Client
	Validator    *schedule.Validator
	Confirmer    *booking.Confirmer
	Prevalidator *booking.Prevalidator
}

// BuildEngine wires the upstream transport, schedule cache, validator and
// confirmer from cfg. An unknown TIMEZONE falls back to UTC with a warning.
// m may be nil.
func BuildEngine(cfg *appconfig.Config, logger *logging.Logger, m *metrics.EngineMetrics) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	loc, err := schedule.Location(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	transport := upstream.New(cfg.APITimeout, logger, upstream.WithObserver(m))
	cache := schedule.NewCache(cfg.ScheduleCacheTTL, schedule.WithCacheObserver(m))
	client := schedule.NewClient(transport, cache, schedule.ClientConfig{
		InformationURL: cfg.InformationURL,
		BookingURL:     cfg.BookingURL,
		Location:       loc,
	}, logger)

	logger.Info("booking engine configured",
		"timezone", loc.String(),
		"api_timeout", transport.Timeout().String(),
		"schedule_cache_ttl", cache.TTL().String(),
	)

	return &Engine{
		Location:     loc,
		Cache:        cache,
		Schedule:     client,
		Validator:    schedule.NewValidator(client, loc, logger, schedule.WithPipelineObserver(m)),
		Confirmer:    booking.NewConfirmer(transport, cfg.BookingURL, logger, booking.WithObserver(m)),
		Prevalidator: booking.NewPrevalidator(loc, nil),
	}, nil
}
