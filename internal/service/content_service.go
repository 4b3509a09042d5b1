package service

import (
	"fmt"
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
	"franchiseos-backend/internal/websocket"

	"github.com/google/uuid"
)

type ContentService struct {
	store   *store.Store
	monitor *websocket.Manager
}

func NewContentService(st *store.Store, monitor *websocket.Manager) *ContentService {
	return &ContentService{store: st, monitor: monitor}
}

// NewContentMeta describes an already-stored upload; the handler owns the
// file write, the service owns the document record.
type NewContentMeta struct {
	Name     string
	Filename string
	MimeType string
	Size     int64
	URL      string
	Duration int
}

func (s *ContentService) Create(meta *NewContentMeta) (*domain.Content, error) {
	duration := meta.Duration
	if duration <= 0 {
		duration = domain.DefaultImageDuration
	}

	content := domain.Content{
		ID:         uuid.New().String(),
		Name:       meta.Name,
		Filename:   meta.Filename,
		Type:       domain.ContentTypeFromMime(meta.MimeType),
		MimeType:   meta.MimeType,
		Size:       meta.Size,
		URL:        meta.URL,
		Duration:   duration,
		UploadDate: time.Now().UTC(),
	}

	_, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		doc.Content = append(doc.Content, content)
		return &store.MutationResult{
			Audit: &store.AuditEntry{
				Action:  "UPLOAD_CONTENT",
				Details: map[string]string{"name": content.Name, "file": content.Filename},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.monitor.NotifyContentUpdate(content.ID, content.Name, "uploaded")
	return &content, nil
}

func (s *ContentService) List() ([]domain.Content, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Content, nil
}

func (s *ContentService) Get(id string) (*domain.Content, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	content := doc.ContentByID(id)
	if content == nil {
		return nil, fmt.Errorf("content: %w", ErrNotFound)
	}
	return content, nil
}

func (s *ContentService) Update(id string, req *domain.UpdateContentRequest) (*domain.Content, error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		content := doc.ContentByID(id)
		if content == nil {
			return nil, fmt.Errorf("content: %w", ErrNotFound)
		}
		if req.Name != nil {
			content.Name = *req.Name
		}
		if req.Duration != nil {
			content.Duration = *req.Duration
		}
		now := time.Now().UTC()
		content.UpdatedAt = &now

		return &store.MutationResult{
			Data: *content,
			Audit: &store.AuditEntry{
				Action:  "UPDATE_CONTENT",
				Details: map[string]string{"id": id},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	content := value.(domain.Content)
	return &content, nil
}

// Delete removes the record and strips direct references from every
// assignment list. Folder membership is left alone: dangling folder entries
// are filtered at resolution time, matching the tolerance the resolver
// guarantees. Returns the stored filename so the handler can unlink the
// file after the commit.
func (s *ContentService) Delete(id string) (string, error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		idx := -1
		for i := range doc.Content {
			if doc.Content[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("content: %w", ErrNotFound)
		}

		filename := doc.Content[idx].Filename
		name := doc.Content[idx].Name
		doc.Content = append(doc.Content[:idx], doc.Content[idx+1:]...)

		for deviceID, items := range doc.Assignments {
			kept := items[:0]
			for _, item := range items {
				if item.Type == domain.ItemContent && item.ID == id {
					continue
				}
				kept = append(kept, item)
			}
			doc.Assignments[deviceID] = kept
		}

		return &store.MutationResult{
			Data: filename,
			Audit: &store.AuditEntry{
				Action:  "DELETE_CONTENT",
				Details: map[string]string{"id": id, "filename": filename, "name": name},
			},
		}, nil
	})
	if err != nil {
		return "", err
	}
	s.monitor.NotifyContentUpdate(id, "", "deleted")
	return value.(string), nil
}
