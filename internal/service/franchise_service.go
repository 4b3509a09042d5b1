package service

import (
	"fmt"
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
	"franchiseos-backend/internal/websocket"

	"github.com/google/uuid"
)

type FranchiseService struct {
	store   *store.Store
	monitor *websocket.Manager
}

func NewFranchiseService(st *store.Store, monitor *websocket.Manager) *FranchiseService {
	return &FranchiseService{store: st, monitor: monitor}
}

// Register creates a franchise with a fresh bearer token. The response is
// the only place the token appears in plaintext.
func (s *FranchiseService) Register(req *domain.CreateFranchiseRequest) (*domain.Franchise, error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		if doc.FranchiseByDeviceID(req.DeviceID) != nil {
			return nil, fmt.Errorf("device ID already registered: %w", ErrConflict)
		}

		franchise := domain.Franchise{
			ID:            uuid.New().String(),
			Name:          req.Name,
			Location:      req.Location,
			DeviceID:      req.DeviceID,
			Token:         uuid.New().String(),
			Status:        domain.StatusOffline,
			PlaybackOrder: domain.PlaybackSequential,
			LastSync:      nil,
			CreatedAt:     time.Now().UTC(),
		}
		doc.Franchises = append(doc.Franchises, franchise)

		return &store.MutationResult{
			Data: franchise,
			Audit: &store.AuditEntry{
				Action:  "REGISTER_FRANCHISE",
				Details: map[string]string{"name": req.Name, "deviceId": req.DeviceID},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	franchise := value.(domain.Franchise)
	return &franchise, nil
}

// List returns all franchises with tokens masked and status derived from
// heartbeat recency.
func (s *FranchiseService) List() ([]domain.Franchise, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]domain.Franchise, 0, len(doc.Franchises))
	for _, f := range doc.Franchises {
		masked := f.Masked()
		masked.Status = f.EffectiveStatus(now)
		out = append(out, masked)
	}
	return out, nil
}

func (s *FranchiseService) Get(id string) (*domain.Franchise, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	franchise := doc.FranchiseByID(id)
	if franchise == nil {
		return nil, fmt.Errorf("franchise: %w", ErrNotFound)
	}
	masked := franchise.Masked()
	masked.Status = franchise.EffectiveStatus(time.Now())
	return &masked, nil
}

func (s *FranchiseService) Update(id string, req *domain.UpdateFranchiseRequest) (*domain.Franchise, error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		franchise := doc.FranchiseByID(id)
		if franchise == nil {
			return nil, fmt.Errorf("franchise: %w", ErrNotFound)
		}
		if req.Name != nil {
			franchise.Name = *req.Name
		}
		if req.Location != nil {
			franchise.Location = *req.Location
		}
		now := time.Now().UTC()
		franchise.UpdatedAt = &now

		return &store.MutationResult{
			Data: franchise.Masked(),
			Audit: &store.AuditEntry{
				Action:  "UPDATE_FRANCHISE",
				Details: map[string]string{"id": id},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	franchise := value.(domain.Franchise)
	return &franchise, nil
}

// Delete removes the franchise and its assignment list in one transaction.
func (s *FranchiseService) Delete(id string) error {
	_, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		for i := range doc.Franchises {
			if doc.Franchises[i].ID != id {
				continue
			}
			deviceID := doc.Franchises[i].DeviceID
			doc.Franchises = append(doc.Franchises[:i], doc.Franchises[i+1:]...)
			delete(doc.Assignments, deviceID)
			return &store.MutationResult{
				Audit: &store.AuditEntry{
					Action:  "DELETE_FRANCHISE",
					Details: map[string]string{"id": id, "deviceId": deviceID},
				},
			}, nil
		}
		return nil, fmt.Errorf("franchise: %w", ErrNotFound)
	})
	return err
}

// RegenerateToken replaces the bearer token; the previous one stops working
// with the commit.
func (s *FranchiseService) RegenerateToken(id string) (string, error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		franchise := doc.FranchiseByID(id)
		if franchise == nil {
			return nil, fmt.Errorf("franchise: %w", ErrNotFound)
		}
		franchise.Token = uuid.New().String()
		return &store.MutationResult{
			Data: franchise.Token,
			Audit: &store.AuditEntry{
				Action:  "REGENERATE_TOKEN",
				Details: map[string]string{"id": id},
			},
		}, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Authenticate resolves a device bearer token to its franchise. Used by the
// device-auth middleware on every device request.
func (s *FranchiseService) Authenticate(token string) (*domain.Franchise, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	franchise := doc.FranchiseByToken(token)
	if franchise == nil {
		return nil, fmt.Errorf("device token: %w", ErrNotFound)
	}
	found := *franchise
	return &found, nil
}

// Heartbeat marks the franchise online and refreshes lastSync.
func (s *FranchiseService) Heartbeat(franchiseID string) (time.Time, error) {
	value, err := s.store.TransactRetry(func(doc *domain.Document) (*store.MutationResult, error) {
		franchise := doc.FranchiseByID(franchiseID)
		if franchise == nil {
			return nil, fmt.Errorf("franchise: %w", ErrNotFound)
		}
		now := time.Now().UTC()
		franchise.Status = domain.StatusOnline
		franchise.LastSync = &now
		return &store.MutationResult{Data: *franchise}, nil
	})
	if err != nil {
		return time.Time{}, err
	}
	franchise := value.(domain.Franchise)
	s.monitor.NotifyDeviceStatus(franchise.DeviceID, franchise.Name, string(domain.StatusOnline), franchise.LastSync)
	return *franchise.LastSync, nil
}
