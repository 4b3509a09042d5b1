package service

import (
	"fmt"
	"strings"
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"

	"github.com/google/uuid"
)

type FolderService struct {
	store *store.Store
}

func NewFolderService(st *store.Store) *FolderService {
	return &FolderService{store: st}
}

func (s *FolderService) List() ([]domain.Folder, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Folders, nil
}

func (s *FolderService) Create(req *domain.CreateFolderRequest) (*domain.Folder, error) {
	now := time.Now().UTC()
	folder := domain.Folder{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(req.Name),
		ContentIDs: req.ContentIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if folder.ContentIDs == nil {
		folder.ContentIDs = []string{}
	}

	_, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		doc.Folders = append(doc.Folders, folder)
		return &store.MutationResult{
			Audit: &store.AuditEntry{
				Action:  "CREATE_FOLDER",
				Details: map[string]string{"id": folder.ID, "name": folder.Name},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (s *FolderService) Update(id string, req *domain.UpdateFolderRequest) (*domain.Folder, error) {
	value, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		folder := doc.FolderByID(id)
		if folder == nil {
			return nil, fmt.Errorf("folder: %w", ErrNotFound)
		}
		if req.Name != nil {
			folder.Name = strings.TrimSpace(*req.Name)
		}
		if req.ContentIDs != nil {
			folder.ContentIDs = req.ContentIDs
		}
		folder.UpdatedAt = time.Now().UTC()

		return &store.MutationResult{
			Data: *folder,
			Audit: &store.AuditEntry{
				Action:  "UPDATE_FOLDER",
				Details: map[string]string{"id": id, "name": folder.Name},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	folder := value.(domain.Folder)
	return &folder, nil
}

// Delete removes the folder and strips folder items referencing it from
// every assignment list, in one transaction.
func (s *FolderService) Delete(id string) error {
	_, err := s.store.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		idx := -1
		for i := range doc.Folders {
			if doc.Folders[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("folder: %w", ErrNotFound)
		}

		name := doc.Folders[idx].Name
		doc.Folders = append(doc.Folders[:idx], doc.Folders[idx+1:]...)

		for deviceID, items := range doc.Assignments {
			kept := items[:0]
			for _, item := range items {
				if item.Type == domain.ItemFolder && item.ID == id {
					continue
				}
				kept = append(kept, item)
			}
			doc.Assignments[deviceID] = kept
		}

		return &store.MutationResult{
			Audit: &store.AuditEntry{
				Action:  "DELETE_FOLDER",
				Details: map[string]string{"id": id, "name": name},
			},
		}, nil
	})
	return err
}
