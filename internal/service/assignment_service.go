package service

import (
	"fmt"
	"log"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
	"franchiseos-backend/internal/websocket"
)

type AssignmentService struct {
	store   *store.Store
	monitor *websocket.Manager
}

func NewAssignmentService(st *store.Store, monitor *websocket.Manager) *AssignmentService {
	return &AssignmentService{store: st, monitor: monitor}
}

// Update replaces a device's assignment list. Items referencing missing
// content/folders are dropped and reported back rather than failing the
// whole request. Only the tagged item form is ever written.
func (s *AssignmentService) Update(req *domain.UpdateAssignmentsRequest) (*domain.UpdateAssignmentsResult, error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		franchise := doc.FranchiseByDeviceID(req.DeviceID)
		if franchise == nil {
			return nil, fmt.Errorf("partner: %w", ErrNotFound)
		}

		if req.PlaybackOrder != "" {
			franchise.PlaybackOrder = req.PlaybackOrder
		}

		valid := make([]domain.AssignmentItem, 0, len(req.Items))
		var invalid []domain.AssignmentItem
		for _, item := range req.Items {
			exists := false
			switch item.Type {
			case domain.ItemContent:
				exists = doc.ContentByID(item.ID) != nil
			case domain.ItemFolder:
				exists = doc.FolderByID(item.ID) != nil
			}
			if exists {
				valid = append(valid, item)
			} else {
				invalid = append(invalid, item)
			}
		}
		if len(invalid) > 0 {
			log.Printf("[Assignments] Ignoring %d invalid items for %s", len(invalid), req.DeviceID)
		}

		doc.Assignments[req.DeviceID] = valid

		return &store.MutationResult{
			Data: &domain.UpdateAssignmentsResult{
				DeviceID:      req.DeviceID,
				AssignedItems: valid,
				PlaybackOrder: franchise.EffectivePlaybackOrder(),
				InvalidItems:  invalid,
			},
			Audit: &store.AuditEntry{
				Action:  "UPDATE_ASSIGNMENTS",
				Details: map[string]any{"deviceId": req.DeviceID, "count": len(valid)},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	result := value.(*domain.UpdateAssignmentsResult)
	s.monitor.NotifyAssignmentUpdate(result.DeviceID, len(result.AssignedItems))
	return result, nil
}

// List returns every device's assignments enriched with franchise and item
// display metadata for the dashboard.
func (s *AssignmentService) List() ([]domain.DeviceAssignments, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	out := make([]domain.DeviceAssignments, 0, len(doc.Assignments))
	for deviceID, items := range doc.Assignments {
		entry := domain.DeviceAssignments{
			DeviceID: deviceID,
			Items:    enrichItems(doc, items),
		}
		entry.ItemCount = len(entry.Items)
		if franchise := doc.FranchiseByDeviceID(deviceID); franchise != nil {
			entry.Franchise = &domain.FranchiseSummary{
				ID:            franchise.ID,
				Name:          franchise.Name,
				Location:      franchise.Location,
				PlaybackOrder: franchise.EffectivePlaybackOrder(),
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *AssignmentService) Get(deviceID string) (*domain.DeviceAssignments, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	franchise := doc.FranchiseByDeviceID(deviceID)
	if franchise == nil {
		return nil, fmt.Errorf("partner: %w", ErrNotFound)
	}

	items := enrichItems(doc, doc.Assignments[deviceID])
	return &domain.DeviceAssignments{
		DeviceID: deviceID,
		Franchise: &domain.FranchiseSummary{
			ID:            franchise.ID,
			Name:          franchise.Name,
			Location:      franchise.Location,
			PlaybackOrder: franchise.EffectivePlaybackOrder(),
		},
		ItemCount: len(items),
		Items:     items,
	}, nil
}

func (s *AssignmentService) Clear(deviceID string) error {
	_, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		franchise := doc.FranchiseByDeviceID(deviceID)
		if franchise == nil {
			return nil, fmt.Errorf("partner: %w", ErrNotFound)
		}
		previous := len(doc.Assignments[deviceID])
		doc.Assignments[deviceID] = []domain.AssignmentItem{}
		return &store.MutationResult{
			Audit: &store.AuditEntry{
				Action:  "CLEAR_ASSIGNMENTS",
				Details: map[string]any{"deviceId": deviceID, "previousCount": previous},
			},
		}, nil
	})
	if err != nil {
		return err
	}
	s.monitor.NotifyAssignmentUpdate(deviceID, 0)
	return nil
}

// Add appends content items not already assigned. Unknown ids are skipped.
func (s *AssignmentService) Add(deviceID string, contentIDs []string) (added, total int, err error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		franchise := doc.FranchiseByDeviceID(deviceID)
		if franchise == nil {
			return nil, fmt.Errorf("partner: %w", ErrNotFound)
		}

		current := doc.Assignments[deviceID]
		assigned := make(map[string]bool, len(current))
		for _, item := range current {
			if item.Type == domain.ItemContent {
				assigned[item.ID] = true
			}
		}

		count := 0
		for _, id := range contentIDs {
			if assigned[id] || doc.ContentByID(id) == nil {
				continue
			}
			current = append(current, domain.AssignmentItem{Type: domain.ItemContent, ID: id})
			assigned[id] = true
			count++
		}
		doc.Assignments[deviceID] = current

		return &store.MutationResult{
			Data: [2]int{count, len(current)},
			Audit: &store.AuditEntry{
				Action:  "ADD_ASSIGNMENTS",
				Details: map[string]any{"deviceId": deviceID, "added": count},
			},
		}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	counts := value.([2]int)
	s.monitor.NotifyAssignmentUpdate(deviceID, counts[1])
	return counts[0], counts[1], nil
}

// Remove drops content items matching the given ids.
func (s *AssignmentService) Remove(deviceID string, contentIDs []string) (removed, total int, err error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		franchise := doc.FranchiseByDeviceID(deviceID)
		if franchise == nil {
			return nil, fmt.Errorf("partner: %w", ErrNotFound)
		}

		drop := make(map[string]bool, len(contentIDs))
		for _, id := range contentIDs {
			drop[id] = true
		}

		current := doc.Assignments[deviceID]
		kept := current[:0]
		for _, item := range current {
			if item.Type == domain.ItemContent && drop[item.ID] {
				continue
			}
			kept = append(kept, item)
		}
		count := len(current) - len(kept)
		doc.Assignments[deviceID] = kept

		return &store.MutationResult{
			Data: [2]int{count, len(kept)},
			Audit: &store.AuditEntry{
				Action:  "REMOVE_ASSIGNMENTS",
				Details: map[string]any{"deviceId": deviceID, "removed": count},
			},
		}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	counts := value.([2]int)
	s.monitor.NotifyAssignmentUpdate(deviceID, counts[1])
	return counts[0], counts[1], nil
}

func enrichItems(doc *domain.Document, items []domain.AssignmentItem) []domain.AssignedItemView {
	views := make([]domain.AssignedItemView, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case domain.ItemFolder:
			if folder := doc.FolderByID(item.ID); folder != nil {
				views = append(views, domain.AssignedItemView{
					Type:       item.Type,
					ID:         item.ID,
					Name:       folder.Name,
					ChildCount: len(folder.ContentIDs),
				})
			}
		case domain.ItemContent:
			if content := doc.ContentByID(item.ID); content != nil {
				views = append(views, domain.AssignedItemView{
					Type:        item.Type,
					ID:          item.ID,
					Name:        content.Name,
					ContentType: content.Type,
				})
			}
		}
	}
	return views
}
