package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/booking-engine/internal/booking"
	"github.com/wolfman30/booking-engine/internal/schedule"
	"github.com/wolfman30/booking-engine/internal/tenant"
	"github.com/wolfman30/booking-engine/internal/upstream"
	"github.com/wolfman30/booking-engine/pkg/logging"
)

// SlotChecker validates candidate slots and recommends open ones.
type SlotChecker interface {
	Validate(ctx context.Context, req schedule.SlotRequest) schedule.Verdict
	Recommend(ctx context.Context, req schedule.RecommendRequest) schedule.Recommendation
}

// BookingConfirmer commits a booking upstream.
type BookingConfirmer interface {
	Confirm(ctx context.Context, req booking.Request) booking.Outcome
}

// BookingPrevalidator runs the structural checks that precede slot validation.
type BookingPrevalidator interface {
	Check(req booking.Request) (bool, string)
	Normalize(req booking.Request) booking.Request
}

// SlotsHandler serves the slot validation, recommendation and booking
// endpoints.
type SlotsHandler struct {
	slots        SlotChecker
	confirmer    BookingConfirmer
	prevalidator BookingPrevalidator
	profiles     tenant.Reader
	logger       *logging.Logger
}

// NewSlotsHandler creates a slots handler. profiles may be nil, in which case
// every tenant gets the default booking profile.
func NewSlotsHandler(slots SlotChecker, confirmer BookingConfirmer, prevalidator BookingPrevalidator, profiles tenant.Reader, logger *logging.Logger) *SlotsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotsHandler{
		slots:        slots,
		confirmer:    confirmer,
		prevalidator: prevalidator,
		profiles:     profiles,
		logger:       logger,
	}
}

// Routes returns a chi router with the slot and booking routes.
func (h *SlotsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/slots/validate", h.ValidateSlot)
	r.Post("/slots/recommend", h.RecommendSlots)
	r.Post("/bookings", h.CreateBooking)
	return r
}

// SlotParams are the slot fields shared by every endpoint. Unset fields are
// filled from the tenant's booking profile.
type SlotParams struct {
	TenantID        int    `json:"tenant_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	SlotMinutes     int    `json:"slot_minutes,omitempty"`
	AssignToUser    *bool  `json:"assign_to_user,omitempty"`
	AssignToBranch  *bool  `json:"assign_to_branch,omitempty"`
	Location        string `json:"location,omitempty"`
}

// BookingRequest is the body of POST /v1/bookings.
type BookingRequest struct {
	SlotParams
	ProspectID      int    `json:"prospect_id"`
	CustomerName    string `json:"customer_name"`
	CustomerContact string `json:"customer_contact"`
	Service         string `json:"service"`
}

// BookingResponse carries the slot verdict and, when the booking was
// submitted, the upstream outcome.
type BookingResponse struct {
	Verdict *schedule.Verdict `json:"verdict,omitempty"`
	Outcome *booking.Outcome  `json:"outcome,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type resolvedParams struct {
	SlotParams
	assignToUser   bool
	assignToBranch bool
}

func (h *SlotsHandler) resolve(ctx context.Context, p SlotParams) resolvedParams {
	profile := h.profile(ctx, p.TenantID)
	out := resolvedParams{SlotParams: p}
	out.DurationMinutes = profile.Duration(p.DurationMinutes)
	if out.SlotMinutes <= 0 {
		out.SlotMinutes = profile.SlotMinutes
	}
	out.Location = profile.Branch(p.Location)
	out.assignToUser = profile.AssignToUser
	if p.AssignToUser != nil {
		out.assignToUser = *p.AssignToUser
	}
	out.assignToBranch = profile.AssignToBranch
	if p.AssignToBranch != nil {
		out.assignToBranch = *p.AssignToBranch
	}
	return out
}

// profile never fails: a store outage falls back to the defaults.
func (h *SlotsHandler) profile(ctx context.Context, tenantID int) *tenant.Profile {
	if h.profiles == nil {
		return tenant.DefaultProfile(tenantID)
	}
	p, err := h.profiles.Get(ctx, tenantID)
	if err != nil || p == nil {
		h.logger.Warn("tenant profile unavailable, using defaults", "tenant_id", tenantID, "error", err)
		return tenant.DefaultProfile(tenantID)
	}
	return p
}

func (p resolvedParams) slotRequest() schedule.SlotRequest {
	return schedule.SlotRequest{
		TenantID:        p.TenantID,
		Date:            p.Date,
		Time:            p.Time,
		DurationMinutes: p.DurationMinutes,
		SlotMinutes:     p.SlotMinutes,
		AssignToUser:    p.assignToUser,
		AssignToBranch:  p.assignToBranch,
		Location:        p.Location,
	}
}

// ValidateSlot runs the validation pipeline for one candidate slot. A
// rejected slot is still a 200: the verdict is the answer.
// POST /v1/slots/validate
func (h *SlotsHandler) ValidateSlot(w http.ResponseWriter, r *http.Request) {
	var req SlotParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.TenantID <= 0 {
		http.Error(w, `{"error": "tenant_id required"}`, http.StatusBadRequest)
		return
	}

	verdict := h.slots.Validate(r.Context(), h.resolve(r.Context(), req).slotRequest())
	writeJSON(w, http.StatusOK, verdict)
}

// RecommendSlots answers what is open. Date and time are optional.
// POST /v1/slots/recommend
func (h *SlotsHandler) RecommendSlots(w http.ResponseWriter, r *http.Request) {
	var req SlotParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.TenantID <= 0 {
		http.Error(w, `{"error": "tenant_id required"}`, http.StatusBadRequest)
		return
	}

	p := h.resolve(r.Context(), req)
	rec := h.slots.Recommend(r.Context(), schedule.RecommendRequest{
		TenantID:        p.TenantID,
		Date:            p.Date,
		Time:            p.Time,
		DurationMinutes: p.DurationMinutes,
		SlotMinutes:     p.SlotMinutes,
		AssignToUser:    p.assignToUser,
		AssignToBranch:  p.assignToBranch,
		Location:        p.Location,
	})
	writeJSON(w, http.StatusOK, rec)
}

// CreateBooking pre-validates the request, validates the slot and, when both
// pass, submits the booking upstream.
// POST /v1/bookings
func (h *SlotsHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if body.TenantID <= 0 {
		http.Error(w, `{"error": "tenant_id required"}`, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	p := h.resolve(ctx, body.SlotParams)
	req := booking.Request{
		TenantID:        p.TenantID,
		ProspectID:      body.ProspectID,
		FullName:        body.CustomerName,
		Contact:         body.CustomerContact,
		Service:         body.Service,
		Date:            p.Date,
		Time:            p.Time,
		DurationMinutes: p.DurationMinutes,
		AssignToUser:    p.assignToUser,
		AssignToBranch:  p.assignToBranch,
		Location:        p.Location,
	}

	if ok, msg := h.prevalidator.Check(req); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, BookingResponse{Error: msg})
		return
	}
	req = h.prevalidator.Normalize(req)

	verdict := h.slots.Validate(ctx, p.slotRequest())
	if !verdict.Valid {
		writeJSON(w, http.StatusConflict, BookingResponse{Verdict: &verdict})
		return
	}

	outcome := h.confirmer.Confirm(ctx, req)
	h.logger.Info("booking processed",
		"tenant_id", req.TenantID,
		"success", outcome.Success,
		"error_kind", outcome.ErrorKind,
		"degraded", verdict.Degraded,
	)
	writeJSON(w, bookingStatus(outcome), BookingResponse{Verdict: &verdict, Outcome: &outcome})
}

func bookingStatus(out booking.Outcome) int {
	if out.Success {
		return http.StatusCreated
	}
	switch out.ErrorKind {
	case booking.KindInvalidDatetime:
		return http.StatusUnprocessableEntity
	case booking.KindAPIError:
		return http.StatusConflict
	case upstream.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
