package domain

import (
	"strings"
	"time"
)

type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
)

// ContentTypeFromMime derives the coarse playback type from a MIME type.
func ContentTypeFromMime(mimeType string) ContentType {
	if strings.HasPrefix(mimeType, "video") {
		return ContentVideo
	}
	return ContentImage
}

// Content is one uploaded media item. Duration only governs images; a
// video plays for its own length.
type Content struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Filename   string      `json:"filename"`
	Type       ContentType `json:"type"`
	MimeType   string      `json:"mimeType"`
	Size       int64       `json:"size"`
	URL        string      `json:"url"`
	Duration   int         `json:"duration"`
	UploadDate time.Time   `json:"uploadDate"`
	UpdatedAt  *time.Time  `json:"updatedAt,omitempty"`
}

const DefaultImageDuration = 10

type UpdateContentRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Duration *int    `json:"duration" validate:"omitempty,min=1,max=3600"`
}
