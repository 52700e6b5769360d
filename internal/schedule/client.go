package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/booking-engine/internal/upstream"
	"github.com/wolfman30/booking-engine/pkg/logging"
)

// Upstream operation codes.
const (
	OpGetHours          = "OBTENER_HORARIO_REUNIONES"
	OpCheckAvailability = "CONSULTAR_DISPONIBILIDAD"
	OpSuggestSlots      = "SUGERIR_HORARIOS"
)

var scheduleTracer = otel.Tracer("booking-engine.internal.schedule")

// Source is everything the validator needs from the upstream scheduler.
type Source interface {
	// FetchBusinessHours returns false when the document is unknown.
	FetchBusinessHours(ctx context.Context, tenantID int) (*BusinessHours, bool)
	// CheckAvailability never fails; upstream trouble yields a degraded "available".
	CheckAvailability(ctx context.Context, q AvailabilityQuery) AvailabilityResult
	SuggestSlots(ctx context.Context, q SuggestQuery) (*Suggestions, error)
}

// AvailabilityQuery asks whether [Start, End) is free.
type AvailabilityQuery struct {
	TenantID       int
	Start          time.Time
	End            time.Time
	SlotMinutes    int
	AssignToUser   bool
	AssignToBranch bool
	Location       string
}

// AvailabilityResult carries the live answer. Degraded means the upstream
// could not be consulted and Available is an assumption.
type AvailabilityResult struct {
	Available bool
	Degraded  bool
}

// SuggestQuery requests open slots near an optional date and time.
type SuggestQuery struct {
	TenantID        int
	Date            string
	Time            string
	DurationMinutes int
	SlotMinutes     int
	AssignToUser    bool
	AssignToBranch  bool
	Location        string
}

// OpenSlot describes one candidate interval.
type OpenSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// Suggestions is the upstream's list of candidate slots.
type Suggestions struct {
	Slots   []OpenSlot
	Total   int
	Message string
}

// ClientConfig holds the upstream endpoints.
type ClientConfig struct {
	// InformationURL serves the weekly business hours.
	InformationURL string
	// BookingURL serves availability and suggestions.
	BookingURL string
	Location   *time.Location
}

// Client reads schedules from the upstream through the cache.
type Client struct {
	transport      *upstream.Client
	cache          *Cache
	informationURL string
	bookingURL     string
	loc            *time.Location
	logger         *logging.Logger
}

// NewClient wires the schedule reads to transport and cache.
func NewClient(transport *upstream.Client, cache *Cache, cfg ClientConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if cache == nil {
		cache = NewCache(DefaultCacheTTL)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		transport:      transport,
		cache:          cache,
		informationURL: cfg.InformationURL,
		bookingURL:     cfg.BookingURL,
		loc:            loc,
		logger:         logger,
	}
}

type hoursResponse struct {
	upstream.Envelope
	Hours map[string]json.RawMessage `json:"horario_reuniones"`
}

type availabilityResponse struct {
	upstream.Envelope
	Available upstream.Bool `json:"disponible"`
}

type suggestionWire struct {
	Start     string         `json:"fecha_inicio"`
	End       string         `json:"fecha_fin"`
	Available *upstream.Bool `json:"disponible"`
}

type suggestionsResponse struct {
	upstream.Envelope
	Suggestions []suggestionWire `json:"sugerencias"`
	Total       int              `json:"total"`
}

// FetchBusinessHours returns the tenant's weekly document, from the cache
// when fresh. Any upstream failure yields (nil, false).
func (c *Client) FetchBusinessHours(ctx context.Context, tenantID int) (*BusinessHours, bool) {
	if doc, ok := c.cache.Get(tenantID); ok {
		return doc, true
	}

	ctx, span := scheduleTracer.Start(ctx, "schedule.fetch_business_hours")
	defer span.End()
	span.SetAttributes(attribute.Int("tenant_id", tenantID))

	payload := map[string]any{
		"codOpe":     OpGetHours,
		"id_empresa": tenantID,
	}
	var resp hoursResponse
	if err := c.transport.Post(ctx, OpGetHours, c.informationURL, payload, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.logger.Error("schedule fetch failed", "tenant_id", tenantID, "error", err)
		return nil, false
	}
	if !resp.Success || len(resp.Hours) == 0 {
		span.SetStatus(codes.Error, "no schedule in response")
		c.logger.Warn("schedule response without hours", "tenant_id", tenantID, "message", resp.Text())
		return nil, false
	}

	doc, skipped := decodeBusinessHours(resp.Hours)
	if skipped > 0 {
		c.logger.Warn("skipped unreadable blocked intervals", "tenant_id", tenantID, "skipped", skipped)
	}
	c.cache.Put(tenantID, doc)
	c.logger.Info("schedule fetched and cached", "tenant_id", tenantID, "blocked", len(doc.Blocked))
	return doc, true
}

func decodeBusinessHours(raw map[string]json.RawMessage) (*BusinessHours, int) {
	doc := &BusinessHours{}
	for i, field := range dayFields {
		var v string
		if err := json.Unmarshal(raw[field], &v); err == nil {
			doc.Days[i] = v
		}
	}
	var skipped int
	doc.Blocked, skipped = ParseBlockedIntervals(raw["horarios_bloqueados"])
	return doc, skipped
}

// CheckAvailability asks the upstream whether the interval is free.
func (c *Client) CheckAvailability(ctx context.Context, q AvailabilityQuery) AvailabilityResult {
	ctx, span := scheduleTracer.Start(ctx, "schedule.check_availability")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tenant_id", q.TenantID),
		attribute.String("start", q.Start.Format(WireLayout)),
	)

	payload := map[string]any{
		"codOpe":           OpCheckAvailability,
		"id_empresa":       q.TenantID,
		"fecha_inicio":     q.Start.In(c.loc).Format(WireLayout),
		"fecha_fin":        q.End.In(c.loc).Format(WireLayout),
		"slots":            q.SlotMinutes,
		"agendar_usuario":  upstream.Flag(q.AssignToUser),
		"agendar_sucursal": upstream.Flag(q.AssignToBranch),
	}
	if branch := strings.TrimSpace(q.Location); branch != "" {
		payload["sucursal"] = branch
	}

	var resp availabilityResponse
	if err := c.transport.Post(ctx, OpCheckAvailability, c.bookingURL, payload, &resp); err != nil {
		span.RecordError(err)
		c.logger.Warn("availability check failed, assuming available", "tenant_id", q.TenantID, "error", err)
		return AvailabilityResult{Available: true, Degraded: true}
	}
	if !resp.Success {
		c.logger.Warn("availability check unsuccessful, assuming available", "tenant_id", q.TenantID, "message", resp.Text())
		return AvailabilityResult{Available: true, Degraded: true}
	}
	span.SetAttributes(attribute.Bool("available", bool(resp.Available)))
	return AvailabilityResult{Available: bool(resp.Available)}
}

// SuggestSlots asks the upstream for open slots around today and tomorrow.
func (c *Client) SuggestSlots(ctx context.Context, q SuggestQuery) (*Suggestions, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.suggest_slots")
	defer span.End()
	span.SetAttributes(attribute.Int("tenant_id", q.TenantID))

	duration := time.Duration(q.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = DefaultDuration
	}

	payload := map[string]any{
		"codOpe":           OpSuggestSlots,
		"id_empresa":       q.TenantID,
		"duracion":         int(duration / time.Minute),
		"slots":            q.SlotMinutes,
		"agendar_usuario":  upstream.Flag(q.AssignToUser),
		"agendar_sucursal": upstream.Flag(q.AssignToBranch),
	}
	if d := strings.TrimSpace(q.Date); d != "" {
		payload["fecha_solicitada"] = d
	}
	if t := strings.TrimSpace(q.Time); t != "" {
		payload["hora_solicitada"] = t
	}
	if branch := strings.TrimSpace(q.Location); branch != "" {
		payload["sucursal"] = branch
	}

	var resp suggestionsResponse
	if err := c.transport.Post(ctx, OpSuggestSlots, c.bookingURL, payload, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "suggest failed")
		return nil, fmt.Errorf("schedule: suggest slots: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("schedule: suggest slots rejected: %s", resp.Text())
	}

	out := &Suggestions{Message: resp.Text(), Total: resp.Total}
	for _, s := range resp.Suggestions {
		start, err := time.ParseInLocation(WireLayout, strings.TrimSpace(s.Start), c.loc)
		if err != nil {
			c.logger.Debug("skipping unreadable suggestion", "tenant_id", q.TenantID, "fecha_inicio", s.Start)
			continue
		}
		end, err := time.ParseInLocation(WireLayout, strings.TrimSpace(s.End), c.loc)
		if err != nil || !end.After(start) {
			end = start.Add(duration)
		}
		available := s.Available == nil || bool(*s.Available)
		out.Slots = append(out.Slots, OpenSlot{Start: start, End: end, Available: available})
	}
	if out.Total <= 0 {
		out.Total = len(out.Slots)
	}
	span.SetAttributes(attribute.Int("suggestions", len(out.Slots)))
	return out, nil
}
