package schedule

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/booking-engine/pkg/logging"
)

// Defaults applied when a request leaves a field at zero.
const (
	DefaultDuration    = 60 * time.Minute
	DefaultSlotMinutes = 60
)

// Reason identifies why a slot was rejected.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonBadDateFormat  Reason = "bad_date_format"
	ReasonBadTimeFormat  Reason = "bad_time_format"
	ReasonInThePast      Reason = "in_the_past"
	ReasonNoHoursForDay  Reason = "no_hours_for_day"
	ReasonClosedThatDay  Reason = "closed_that_day"
	ReasonBeforeOpening  Reason = "before_opening"
	ReasonAfterClosing   Reason = "after_closing"
	ReasonExceedsClosing Reason = "exceeds_closing"
	ReasonBlockedSlot    Reason = "blocked_slot"
	ReasonSlotTaken      Reason = "slot_taken"
)

// SlotRequest is one candidate appointment.
type SlotRequest struct {
	TenantID        int
	Date            string
	Time            string
	DurationMinutes int
	SlotMinutes     int
	AssignToUser    bool
	AssignToBranch  bool
	Location        string
}

func (r SlotRequest) duration() time.Duration {
	if r.DurationMinutes <= 0 {
		return DefaultDuration
	}
	return time.Duration(r.DurationMinutes) * time.Minute
}

func (r SlotRequest) slotMinutes() int {
	if r.SlotMinutes <= 0 {
		return DefaultSlotMinutes
	}
	return r.SlotMinutes
}

// Verdict is the outcome of Validate. Degraded marks a pass that was granted
// because the upstream could not be consulted.
type Verdict struct {
	Valid    bool   `json:"valid"`
	Reason   Reason `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// PipelineObserver receives one event per Validate call.
type PipelineObserver interface {
	ObserveValidation(outcome string, seconds float64)
}

// Validator decides whether a slot can be booked.
type Validator struct {
	source   Source
	loc      *time.Location
	now      Clock
	observer PipelineObserver
	logger   *logging.Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock overrides the "now" baseline.
func WithClock(c Clock) ValidatorOption {
	return func(v *Validator) {
		if c != nil {
			v.now = c
		}
	}
}

// WithPipelineObserver attaches an instrumentation hook.
func WithPipelineObserver(o PipelineObserver) ValidatorOption {
	return func(v *Validator) {
		v.observer = o
	}
}

// NewValidator creates a validator operating in loc.
func NewValidator(source Source, loc *time.Location, logger *logging.Logger, opts ...ValidatorOption) *Validator {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	v := &Validator{
		source: source,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Location returns the operating time zone.
func (v *Validator) Location() *time.Location {
	return v.loc
}

// Validate runs the ordered checks; the first failing one decides the verdict.
// Unknown or unreadable schedules and unreachable availability checks pass
// with Degraded set.
func (v *Validator) Validate(ctx context.Context, req SlotRequest) Verdict {
	start := time.Now()
	ctx, span := scheduleTracer.Start(ctx, "schedule.validate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tenant_id", req.TenantID),
		attribute.String("date", req.Date),
		attribute.String("time", req.Time),
	)

	verdict := v.validate(ctx, req)

	outcome := string(verdict.Reason)
	switch {
	case verdict.Valid && verdict.Degraded:
		outcome = "degraded"
	case verdict.Valid:
		outcome = "valid"
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	if v.observer != nil {
		v.observer.ObserveValidation(outcome, time.Since(start).Seconds())
	}
	v.logger.Info("slot validated",
		"tenant_id", req.TenantID,
		"date", req.Date,
		"time", req.Time,
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return verdict
}

func (v *Validator) validate(ctx context.Context, req SlotRequest) Verdict {
	day, err := ParseDate(req.Date, v.loc)
	if err != nil {
		return reject(ReasonBadDateFormat, "Invalid date format. Use YYYY-MM-DD (for example 2026-01-25).")
	}

	tod, err := ParseTimeOfDay(req.Time)
	if err != nil {
		return reject(ReasonBadTimeFormat, "Invalid time format. Use HH:MM AM/PM (for example 10:30 AM).")
	}

	slotStart := At(day, tod, v.loc)
	if !slotStart.After(NowIn(v.loc, v.now)) {
		return reject(ReasonInThePast, "The selected date and time has already passed. Please choose a future date and time.")
	}

	doc, ok := v.source.FetchBusinessHours(ctx, req.TenantID)
	if !ok {
		v.logger.Warn("business hours unknown, allowing slot", "tenant_id", req.TenantID)
		return Verdict{Valid: true, Degraded: true}
	}

	weekday := day.Weekday()
	dayName := weekday.String()
	hours := doc.ForDay(weekday)
	if hours == "" {
		return reject(ReasonNoHoursForDay, fmt.Sprintf("There are no hours available on %s. Please choose another day.", dayName))
	}
	if IsClosedMarker(hours) {
		return reject(ReasonClosedThatDay, fmt.Sprintf("We are closed on %s. Please choose another day.", dayName))
	}

	opens, closes, err := ParseHoursRange(hours)
	if err != nil {
		v.logger.Warn("unreadable hours for day, allowing slot", "tenant_id", req.TenantID, "day", dayName, "hours", hours)
		return Verdict{Valid: true, Degraded: true}
	}
	window := fmt.Sprintf("%s hours are %s to %s.", dayName, opens.Kitchen(), closes.Kitchen())

	if tod.Minutes() < opens.Minutes() {
		return reject(ReasonBeforeOpening, "The selected time is before opening. "+window)
	}
	if tod.Minutes() >= closes.Minutes() {
		return reject(ReasonAfterClosing, "The selected time is after closing. "+window)
	}

	duration := req.duration()
	slotEnd := slotStart.Add(duration)
	if slotEnd.After(At(day, closes, v.loc)) {
		return reject(ReasonExceedsClosing, fmt.Sprintf(
			"A %d-minute booking would run past closing (%s). %s Please choose an earlier time.",
			int(duration/time.Minute), closes.Kitchen(), window))
	}

	if IsBlocked(slotStart, doc.Blocked) {
		return reject(ReasonBlockedSlot, "The selected time is blocked. Please choose another time.")
	}

	avail := v.source.CheckAvailability(ctx, AvailabilityQuery{
		TenantID:       req.TenantID,
		Start:          slotStart,
		End:            slotEnd,
		SlotMinutes:    req.slotMinutes(),
		AssignToUser:   req.AssignToUser,
		AssignToBranch: req.AssignToBranch,
		Location:       req.Location,
	})
	if !avail.Available {
		return reject(ReasonSlotTaken, "The selected time is already taken. Please choose another time or date.")
	}

	return Verdict{Valid: true, Degraded: avail.Degraded}
}

func reject(reason Reason, msg string) Verdict {
	return Verdict{Valid: false, Reason: reason, Message: msg}
}
