package domain

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Document is the single root object the store persists. Every collection
// shares it, so every write to any collection serializes with all others.
type Document struct {
	Franchises  []Franchise                 `json:"franchises"`
	Content     []Content                   `json:"content"`
	Folders     []Folder                    `json:"folders"`
	Assignments map[string][]AssignmentItem `json:"assignments"`
	OTPTokens   map[string]OTPToken         `json:"otpTokens"`
	Analytics   []AnalyticsEvent            `json:"analytics"`
	Metadata    Metadata                    `json:"_metadata"`
}

type Metadata struct {
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

func NewDocument() *Document {
	return &Document{
		Franchises:  []Franchise{},
		Content:     []Content{},
		Folders:     []Folder{},
		Assignments: make(map[string][]AssignmentItem),
		OTPTokens:   make(map[string]OTPToken),
		Analytics:   []AnalyticsEvent{},
		Metadata: Metadata{
			Version:   0,
			CreatedAt: time.Now().UTC(),
		},
	}
}

// DecodeDocument parses a persisted document and backfills collections that
// older schema versions did not carry.
func DecodeDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc.normalize()
	return &doc, nil
}

// EncodeDocument renders the document the way the persisted file stores it.
func EncodeDocument(doc *Document) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}

// Clone returns a deep copy via a JSON round-trip, so no caller ever holds
// a reference into the persisted document's internals.
func (d *Document) Clone() (*Document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var copied Document
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, fmt.Errorf("failed to decode document copy: %w", err)
	}
	copied.normalize()
	return &copied, nil
}

// normalize backfills nil collections so callers can index maps without
// guarding. Documents written by early schema versions miss some of them.
func (d *Document) normalize() {
	if d.Franchises == nil {
		d.Franchises = []Franchise{}
	}
	if d.Content == nil {
		d.Content = []Content{}
	}
	if d.Folders == nil {
		d.Folders = []Folder{}
	}
	if d.Assignments == nil {
		d.Assignments = make(map[string][]AssignmentItem)
	}
	if d.OTPTokens == nil {
		d.OTPTokens = make(map[string]OTPToken)
	}
	if d.Analytics == nil {
		d.Analytics = []AnalyticsEvent{}
	}
}

// FranchiseByDeviceID returns a pointer into the document, valid only while
// the caller owns the copy (inside a transaction or on a cloned load).
func (d *Document) FranchiseByDeviceID(deviceID string) *Franchise {
	for i := range d.Franchises {
		if d.Franchises[i].DeviceID == deviceID {
			return &d.Franchises[i]
		}
	}
	return nil
}

func (d *Document) FranchiseByID(id string) *Franchise {
	for i := range d.Franchises {
		if d.Franchises[i].ID == id {
			return &d.Franchises[i]
		}
	}
	return nil
}

func (d *Document) FranchiseByPhone(phone string) *Franchise {
	for i := range d.Franchises {
		if d.Franchises[i].Phone == phone {
			return &d.Franchises[i]
		}
	}
	return nil
}

func (d *Document) FranchiseByToken(token string) *Franchise {
	for i := range d.Franchises {
		if d.Franchises[i].Token == token {
			return &d.Franchises[i]
		}
	}
	return nil
}

func (d *Document) ContentByID(id string) *Content {
	for i := range d.Content {
		if d.Content[i].ID == id {
			return &d.Content[i]
		}
	}
	return nil
}

func (d *Document) FolderByID(id string) *Folder {
	for i := range d.Folders {
		if d.Folders[i].ID == id {
			return &d.Folders[i]
		}
	}
	return nil
}
