package tenant

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/booking-engine/pkg/logging"
)

// ProfileStore is what the admin handler needs from Store.
type ProfileStore interface {
	Reader
	Set(ctx context.Context, p *Profile) error
}

// Handler provides admin endpoints for tenant profiles.
type Handler struct {
	store  ProfileStore
	logger *logging.Logger
}

// NewHandler creates a tenant profile handler.
func NewHandler(store ProfileStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Routes returns a chi router with tenant admin routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{tenantID}/profile", h.GetProfile)
	r.Put("/{tenantID}/profile", h.UpdateProfile)
	return r
}

func tenantIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "tenantID"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GetProfile returns the booking profile for a tenant.
// GET /admin/tenants/{tenantID}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(r)
	if !ok {
		http.Error(w, `{"error": "valid tenant_id required"}`, http.StatusBadRequest)
		return
	}

	profile, err := h.store.Get(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to get tenant profile", "tenant_id", tenantID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		h.logger.Error("failed to encode tenant profile", "tenant_id", tenantID, "error", err)
	}
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
type UpdateProfileRequest struct {
	SlotMinutes            *int    `json:"slot_minutes,omitempty"`
	AssignToUser           *bool   `json:"assign_to_user,omitempty"`
	AssignToBranch         *bool   `json:"assign_to_branch,omitempty"`
	DefaultDurationMinutes *int    `json:"default_duration_minutes,omitempty"`
	Location               *string `json:"location,omitempty"`
}

// UpdateProfile creates or updates a tenant's booking profile.
// PUT /admin/tenants/{tenantID}/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(r)
	if !ok {
		http.Error(w, `{"error": "valid tenant_id required"}`, http.StatusBadRequest)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if (req.SlotMinutes != nil && *req.SlotMinutes <= 0) ||
		(req.DefaultDurationMinutes != nil && *req.DefaultDurationMinutes <= 0) {
		http.Error(w, `{"error": "minutes must be positive"}`, http.StatusBadRequest)
		return
	}

	profile, err := h.store.Get(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to get tenant profile", "tenant_id", tenantID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	if req.SlotMinutes != nil {
		profile.SlotMinutes = *req.SlotMinutes
	}
	if req.AssignToUser != nil {
		profile.AssignToUser = *req.AssignToUser
	}
	if req.AssignToBranch != nil {
		profile.AssignToBranch = *req.AssignToBranch
	}
	if req.DefaultDurationMinutes != nil {
		profile.DefaultDurationMinutes = *req.DefaultDurationMinutes
	}
	if req.Location != nil {
		profile.Location = strings.TrimSpace(*req.Location)
	}

	if err := h.store.Set(r.Context(), profile); err != nil {
		h.logger.Error("failed to save tenant profile", "tenant_id", tenantID, "error", err)
		http.Error(w, `{"error": "failed to save profile"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("tenant profile updated", "tenant_id", tenantID)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		h.logger.Error("failed to encode tenant profile", "tenant_id", tenantID, "error", err)
	}
}
