// Package booking records confirmed appointments with the upstream system of
// record and pre-validates the customer data that goes with them.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/booking-engine/internal/schedule"
	"github.com/wolfman30/booking-engine/internal/upstream"
	"github.com/wolfman30/booking-engine/pkg/logging"
)

const (
	// OpCreateBooking is the upstream operation code for a booking write.
	OpCreateBooking = "AGENDAR_REUNION"

	// NoLocation is sent when the request names no branch.
	NoLocation = "No hay sucursal registrada"

	defaultSuccessMessage = "Booking confirmed"
	defaultErrorMessage   = "Unknown error"
)

// Error kinds reported in Outcome.ErrorKind. Transport failures use the
// upstream classification (timeout, http_status_<code>, connection_error,
// unknown_error).
const (
	KindInvalidDatetime = "invalid_datetime"
	KindAPIError        = "api_error"
)

var bookingTracer = otel.Tracer("booking-engine.internal.booking")

// Request is a booking the caller has decided to commit.
type Request struct {
	TenantID        int    `json:"tenant_id" validate:"required,gt=0"`
	ProspectID      int    `json:"prospect_id"`
	FullName        string `json:"customer_name" validate:"required,min=2,max=100,person_name"`
	Contact         string `json:"customer_contact" validate:"required,contact"`
	Service         string `json:"service" validate:"required,min=2,max=200"`
	Date            string `json:"date" validate:"required,booking_date"`
	Time            string `json:"time" validate:"required,booking_time"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	AssignToUser    bool   `json:"assign_to_user"`
	AssignToBranch  bool   `json:"assign_to_branch"`
	Location        string `json:"location"`
}

// Outcome is the result of a confirmation attempt. It is a value, never an
// error: every failure is classified into ErrorKind.
type Outcome struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Observer receives booking attempt and result events.
type Observer interface {
	ObserveBookingAttempt()
	ObserveBookingResult(success bool, reason string)
}

// Confirmer submits bookings. It never retries: the upstream create is not
// idempotent.
type Confirmer struct {
	transport *upstream.Client
	url       string
	logger    *logging.Logger
	observer  Observer
}

// ConfirmerOption configures a Confirmer.
type ConfirmerOption func(*Confirmer)

// WithObserver attaches booking metrics.
func WithObserver(o Observer) ConfirmerOption {
	return func(c *Confirmer) {
		c.observer = o
	}
}

// NewConfirmer creates a confirmer posting to url.
func NewConfirmer(transport *upstream.Client, url string, logger *logging.Logger, opts ...ConfirmerOption) *Confirmer {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Confirmer{
		transport: transport,
		url:       url,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createResponse struct {
	upstream.Envelope
}

// Window returns the upstream start and end timestamps for req.
func Window(req Request) (start, end string, err error) {
	day, err := schedule.ParseDate(req.Date, time.UTC)
	if err != nil {
		return "", "", err
	}
	tod, err := schedule.ParseTimeOfDay(req.Time)
	if err != nil {
		return "", "", err
	}
	duration := time.Duration(req.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = schedule.DefaultDuration
	}
	from := schedule.At(day, tod, time.UTC)
	return from.Format(schedule.WireLayout), from.Add(duration).Format(schedule.WireLayout), nil
}

// Confirm writes the booking upstream and classifies the result.
func (c *Confirmer) Confirm(ctx context.Context, req Request) Outcome {
	ctx, span := bookingTracer.Start(ctx, "booking.confirm")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tenant_id", req.TenantID),
		attribute.Int("prospect_id", req.ProspectID),
		attribute.String("date", req.Date),
		attribute.String("time", req.Time),
	)

	c.attempt()

	start, end, err := Window(req)
	if err != nil {
		c.logger.Warn("booking rejected: invalid date or time", "tenant_id", req.TenantID, "date", req.Date, "time", req.Time)
		return c.finish(span, Outcome{
			Message:   "Invalid date or time format",
			ErrorKind: KindInvalidDatetime,
			Error:     err.Error(),
		})
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = NoLocation
	}
	payload := map[string]any{
		"codOpe":           OpCreateBooking,
		"id_empresa":       req.TenantID,
		"titulo":           fmt.Sprintf("Meeting for user: %s", strings.TrimSpace(req.FullName)),
		"fecha_inicio":     start,
		"fecha_fin":        end,
		"id_prospecto":     req.ProspectID,
		"agendar_usuario":  upstream.Flag(req.AssignToUser),
		"agendar_sucursal": upstream.Flag(req.AssignToBranch),
		"sucursal":         location,
	}

	var resp createResponse
	if err := c.transport.Post(ctx, OpCreateBooking, c.url, payload, &resp); err != nil {
		span.RecordError(err)
		kind := upstream.Classify(err)
		c.logger.Error("booking write failed", "tenant_id", req.TenantID, "kind", kind, "error", err)
		return c.finish(span, Outcome{
			Message:   transportMessage(err, kind),
			ErrorKind: kind,
			Error:     kind,
		})
	}

	if !resp.Success {
		msg := resp.Text()
		if msg == "" {
			msg = strings.TrimSpace(string(resp.Error))
		}
		if msg == "" {
			msg = defaultErrorMessage
		}
		c.logger.Warn("booking rejected upstream", "tenant_id", req.TenantID, "message", msg)
		return c.finish(span, Outcome{Message: msg, ErrorKind: KindAPIError, Error: msg})
	}

	msg := resp.Text()
	if msg == "" {
		msg = defaultSuccessMessage
	}
	c.logger.Info("booking confirmed", "tenant_id", req.TenantID, "prospect_id", req.ProspectID, "start", start)
	return c.finish(span, Outcome{Success: true, Message: msg})
}

func (c *Confirmer) attempt() {
	if c.observer != nil {
		c.observer.ObserveBookingAttempt()
	}
}

func (c *Confirmer) finish(span trace.Span, out Outcome) Outcome {
	span.SetAttributes(attribute.Bool("success", out.Success))
	if !out.Success {
		span.SetAttributes(attribute.String("error_kind", out.ErrorKind))
		span.SetStatus(codes.Error, out.ErrorKind)
	}
	if c.observer != nil {
		c.observer.ObserveBookingResult(out.Success, out.ErrorKind)
	}
	return out
}

func transportMessage(err error, kind string) string {
	switch kind {
	case upstream.KindTimeout:
		return "The booking service took too long to respond"
	case upstream.KindConnection:
		return "Could not connect to the booking service"
	case upstream.KindUnknown:
		return "Unexpected error while confirming the booking"
	}
	if strings.HasPrefix(kind, "http_status_") {
		return fmt.Sprintf("Booking service error (%s)", strings.TrimPrefix(kind, "http_status_"))
	}
	return err.Error()
}
