package domain

import "time"

// AnalyticsEvent is one playback report from a device. The collection is
// append-only and capped; the oldest entries are dropped first.
type AnalyticsEvent struct {
	DeviceID    string    `json:"deviceId"`
	FranchiseID string    `json:"franchiseId"`
	ContentID   string    `json:"contentId"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    float64   `json:"duration,omitempty"`
}

const MaxAnalyticsEvents = 10000

type PlaybackReportRequest struct {
	ContentID string     `json:"contentId" validate:"required"`
	Action    string     `json:"action" validate:"required,oneof=play complete skip error"`
	Timestamp *time.Time `json:"timestamp"`
	Duration  float64    `json:"duration"`
}

type FranchiseStats struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
}

type ContentStats struct {
	Total     int   `json:"total"`
	Videos    int   `json:"videos"`
	Images    int   `json:"images"`
	TotalSize int64 `json:"totalSize"`
}

type AssignmentStats struct {
	DevicesWithContent int `json:"totalDevicesWithContent"`
	TotalAssignments   int `json:"totalAssignments"`
}

type AnalyticsStats struct {
	TotalEvents int `json:"totalEvents"`
	TotalPlays  int `json:"totalPlays"`
}

type SystemStats struct {
	Franchises  FranchiseStats  `json:"franchises"`
	Content     ContentStats    `json:"content"`
	Assignments AssignmentStats `json:"assignments"`
	Analytics   AnalyticsStats  `json:"analytics"`
}
