package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/booking-engine/internal/booking"
	"github.com/wolfman30/booking-engine/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/booking-engine/internal/http/middleware"
	"github.com/wolfman30/booking-engine/internal/schedule"
	"github.com/wolfman30/booking-engine/internal/tenant"
	"github.com/wolfman30/booking-engine/pkg/logging"
)

const testSecret = "router-secret"

type stubSource struct {
	hours *schedule.BusinessHours
}

func (s stubSource) FetchBusinessHours(context.Context, int) (*schedule.BusinessHours, bool) {
	return s.hours, s.hours != nil
}

func (stubSource) CheckAvailability(context.Context, schedule.AvailabilityQuery) schedule.AvailabilityResult {
	return schedule.AvailabilityResult{Available: true}
}

func (stubSource) SuggestSlots(context.Context, schedule.SuggestQuery) (*schedule.Suggestions, error) {
	return &schedule.Suggestions{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *schedule.Cache) {
	t.Helper()

	logger := logging.Default()
	loc := time.FixedZone("PET", -5*3600)
	now := func() time.Time { return time.Date(2025, 1, 6, 8, 0, 0, 0, loc) }

	hours := &schedule.BusinessHours{}
	for i := 0; i < 5; i++ {
		hours.Days[i] = "09:00-18:00"
	}
	validator := schedule.NewValidator(stubSource{hours: hours}, loc, logger, schedule.WithClock(now))

	mr := miniredis.RunT(t)
	store := tenant.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	cache := schedule.NewCache(time.Minute)

	cfg := &Config{
		Logger:          logger,
		SlotsHandler:    handlers.NewSlotsHandler(validator, booking.NewConfirmer(nil, "", logger), booking.NewPrevalidator(loc, now), store, logger),
		AdminCache:      handlers.NewAdminCacheHandler(cache, logger),
		TenantHandler:   tenant.NewHandler(store, logger),
		AdminAuthSecret: testSecret,
		RateLimitRPS:    100,
		RateLimitBurst:  100,
	}
	return New(cfg), cache
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := httpmiddleware.AdminClaims{
		Scope: httpmiddleware.AdminScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
	if rr.Header().Get(httpmiddleware.RequestIDHeader) == "" {
		t.Errorf("expected request id header")
	}
}

func TestRouterValidateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{"tenant_id": 7, "date": "2025-01-06", "time": "07:00 PM"})
	req := httptest.NewRequest(http.MethodPost, "/v1/slots/validate", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var verdict schedule.Verdict
	if err := json.NewDecoder(rr.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if verdict.Valid || verdict.Reason != schedule.ReasonAfterClosing {
		t.Fatalf("expected after_closing rejection, got %+v", verdict)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/schedule-cache/clear", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterAdminClearsCache(t *testing.T) {
	router, cache := newTestRouter(t)
	cache.Put(7, &schedule.BusinessHours{})

	req := httptest.NewRequest(http.MethodPost, "/admin/schedule-cache/clear", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected cache to be empty, got %d entries", cache.Len())
	}
}

func TestRouterTenantProfileRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)
	token := adminToken(t)

	put := httptest.NewRequest(http.MethodPut, "/admin/tenants/7/profile", bytes.NewBufferString(`{"slot_minutes": 30}`))
	put.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, put)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	get := httptest.NewRequest(http.MethodGet, "/admin/tenants/7/profile", nil)
	get.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, get)

	var profile tenant.Profile
	if err := json.NewDecoder(rr.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.SlotMinutes != 30 || profile.DefaultDurationMinutes != 60 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestRouterAdminDisabledWithoutSecret(t *testing.T) {
	router := New(&Config{Logger: logging.Default()})

	req := httptest.NewRequest(http.MethodPost, "/admin/schedule-cache/clear", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
