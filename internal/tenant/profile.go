// Package tenant stores per-tenant booking defaults: slot granularity,
// assignment policy, default duration and branch.
package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Profile holds the booking policy applied when a request leaves a field
// unset.
type Profile struct {
	TenantID               int       `json:"tenant_id"`
	SlotMinutes            int       `json:"slot_minutes"`
	AssignToUser           bool      `json:"assign_to_user"`
	AssignToBranch         bool      `json:"assign_to_branch"`
	DefaultDurationMinutes int       `json:"default_duration_minutes"`
	Location               string    `json:"location,omitempty"`
	UpdatedAt              time.Time `json:"updated_at,omitempty"`
}

// DefaultProfile returns the policy for a tenant with nothing stored.
func DefaultProfile(tenantID int) *Profile {
	return &Profile{
		TenantID:               tenantID,
		SlotMinutes:            60,
		AssignToUser:           true,
		AssignToBranch:         false,
		DefaultDurationMinutes: 60,
	}
}

// Duration returns requested when positive, else the profile default.
func (p *Profile) Duration(requested int) int {
	if requested > 0 {
		return requested
	}
	return p.DefaultDurationMinutes
}

// Branch returns requested when set, else the profile location.
func (p *Profile) Branch(requested string) string {
	if requested != "" {
		return requested
	}
	return p.Location
}

// Reader is the read side of Store.
type Reader interface {
	Get(ctx context.Context, tenantID int) (*Profile, error)
}

// Store persists profiles in redis as JSON.
type Store struct {
	redis *redis.Client
	now   func() time.Time
}

// NewStore creates a profile store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient, now: time.Now}
}

func (s *Store) key(tenantID int) string {
	return fmt.Sprintf("tenant:profile:%d", tenantID)
}

// Get retrieves a profile, returning the default if none is stored.
func (s *Store) Get(ctx context.Context, tenantID int) (*Profile, error) {
	data, err := s.redis.Get(ctx, s.key(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultProfile(tenantID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("tenant: get profile: %w", err)
	}

	profile := DefaultProfile(tenantID)
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("tenant: unmarshal profile: %w", err)
	}
	profile.TenantID = tenantID
	return profile, nil
}

// Set saves a profile.
func (s *Store) Set(ctx context.Context, p *Profile) error {
	if p == nil || p.TenantID <= 0 {
		return fmt.Errorf("tenant: invalid profile")
	}
	p.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("tenant: marshal profile: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(p.TenantID), data, 0).Err(); err != nil {
		return fmt.Errorf("tenant: set profile: %w", err)
	}
	return nil
}
