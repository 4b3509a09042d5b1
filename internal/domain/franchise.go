package domain

import "time"

type PlaybackOrder string

const (
	PlaybackSequential PlaybackOrder = "sequential"
	PlaybackRandom     PlaybackOrder = "random"
)

type FranchiseStatus string

const (
	StatusOnline  FranchiseStatus = "online"
	StatusOffline FranchiseStatus = "offline"
)

const MaskedToken = "***MASKED***"

// Franchise is a registered playback device/location (aka "partner").
// Token is the bearer credential devices authenticate with; it is shown in
// plaintext exactly once, at creation or regeneration.
type Franchise struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Location      string          `json:"location"`
	DeviceID      string          `json:"deviceId"`
	Token         string          `json:"token"`
	Phone         string          `json:"phone,omitempty"`
	Status        FranchiseStatus `json:"status"`
	PlaybackOrder PlaybackOrder   `json:"playbackOrder,omitempty"`
	AuthMethod    string          `json:"authMethod,omitempty"`
	LastSync      *time.Time      `json:"lastSync"`
	LastLogin     *time.Time      `json:"lastLogin,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

// Masked returns a copy safe for listings: the token is never exposed past
// the creation/regeneration response.
func (f Franchise) Masked() Franchise {
	f.Token = MaskedToken
	return f
}

// EffectivePlaybackOrder defaults franchises created before the playback
// order migration to sequential.
func (f Franchise) EffectivePlaybackOrder() PlaybackOrder {
	if f.PlaybackOrder == "" {
		return PlaybackSequential
	}
	return f.PlaybackOrder
}

// OnlineWindow is how recent a heartbeat must be for a device to count as
// online in admin-facing reads.
const OnlineWindow = 5 * time.Minute

// EffectiveStatus derives online/offline from heartbeat recency so a stale
// stored status never reaches the dashboard.
func (f Franchise) EffectiveStatus(now time.Time) FranchiseStatus {
	if f.LastSync != nil && now.Sub(*f.LastSync) < OnlineWindow {
		return StatusOnline
	}
	return StatusOffline
}

type CreateFranchiseRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Location string `json:"location" validate:"required,min=2,max=200"`
	DeviceID string `json:"deviceId" validate:"required,min=3,max=64"`
}

type UpdateFranchiseRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Location *string `json:"location" validate:"omitempty,min=2,max=200"`
}
