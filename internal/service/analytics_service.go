package service

import (
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
)

// AnalyticsService collects playback reports from devices and aggregates
// the dashboard stats. Devices report in bursts after reconnecting, so
// writes go through the retrying transaction path.
type AnalyticsService struct {
	store *store.Store
}

func NewAnalyticsService(st *store.Store) *AnalyticsService {
	return &AnalyticsService{store: st}
}

// Report appends a playback event for the franchise. The event log is
// capped; once full the oldest entries fall off.
func (s *AnalyticsService) Report(franchise *domain.Franchise, req *domain.PlaybackReportRequest) error {
	timestamp := time.Now().UTC()
	if req.Timestamp != nil {
		timestamp = req.Timestamp.UTC()
	}

	event := domain.AnalyticsEvent{
		DeviceID:    franchise.DeviceID,
		FranchiseID: franchise.ID,
		ContentID:   req.ContentID,
		Action:      req.Action,
		Timestamp:   timestamp,
		Duration:    req.Duration,
	}

	_, err := s.store.TransactRetry(func(doc *domain.Document) (*store.MutationResult, error) {
		doc.Analytics = append(doc.Analytics, event)
		if excess := len(doc.Analytics) - domain.MaxAnalyticsEvents; excess > 0 {
			doc.Analytics = doc.Analytics[excess:]
		}
		return &store.MutationResult{}, nil
	})
	return err
}

// Stats aggregates the dashboard overview from a single document read.
func (s *AnalyticsService) Stats() (*domain.SystemStats, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	stats := &domain.SystemStats{}
	now := time.Now()

	stats.Franchises.Total = len(doc.Franchises)
	for _, f := range doc.Franchises {
		if f.EffectiveStatus(now) == domain.StatusOnline {
			stats.Franchises.Online++
		}
	}
	stats.Franchises.Offline = stats.Franchises.Total - stats.Franchises.Online

	stats.Content.Total = len(doc.Content)
	for _, c := range doc.Content {
		switch c.Type {
		case domain.ContentVideo:
			stats.Content.Videos++
		case domain.ContentImage:
			stats.Content.Images++
		}
		stats.Content.TotalSize += c.Size
	}

	for _, items := range doc.Assignments {
		if len(items) > 0 {
			stats.Assignments.DevicesWithContent++
		}
		stats.Assignments.TotalAssignments += len(items)
	}

	stats.Analytics.TotalEvents = len(doc.Analytics)
	for _, e := range doc.Analytics {
		if e.Action == "play" {
			stats.Analytics.TotalPlays++
		}
	}

	return stats, nil
}
