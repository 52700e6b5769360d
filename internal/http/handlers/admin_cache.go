package handlers

import (
	"net/http"

	"github.com/wolfman30/booking-engine/pkg/logging"
)

// ScheduleCache is the part of the schedule cache the admin endpoint drives.
type ScheduleCache interface {
	Len() int
	Clear()
}

// AdminCacheHandler exposes operator controls for the business-hours cache.
type AdminCacheHandler struct {
	cache  ScheduleCache
	logger *logging.Logger
}

// NewAdminCacheHandler creates the cache admin handler.
func NewAdminCacheHandler(cache ScheduleCache, logger *logging.Logger) *AdminCacheHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminCacheHandler{cache: cache, logger: logger}
}

// ClearScheduleCache drops every cached business-hours document so the next
// read goes upstream.
// POST /admin/schedule-cache/clear
func (h *AdminCacheHandler) ClearScheduleCache(w http.ResponseWriter, r *http.Request) {
	n := h.cache.Len()
	h.cache.Clear()
	h.logger.Info("schedule cache cleared", "entries", n)
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

// HealthCheck returns a simple health check response.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
