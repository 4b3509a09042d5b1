package domain

import "time"

// Folder groups content ids in playback order. Entries may dangle after a
// content delete; the resolver filters them, folder state is left as-is.
type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ContentIDs []string  `json:"contentIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateFolderRequest struct {
	Name       string   `json:"name" validate:"required,min=1,max=100"`
	ContentIDs []string `json:"contentIds"`
}

type UpdateFolderRequest struct {
	Name       *string  `json:"name" validate:"omitempty,min=1,max=100"`
	ContentIDs []string `json:"contentIds"`
}
