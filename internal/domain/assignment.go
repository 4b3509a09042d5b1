package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

type ItemType string

const (
	ItemContent ItemType = "content"
	ItemFolder  ItemType = "folder"
)

// AssignmentItem is one entry in a device's assignment list: a direct
// content reference or a folder expanded inline at resolution time.
//
// Two persisted encodings exist: the current tagged object and a legacy
// bare content-id string. UnmarshalJSON is the only place that knows about
// the legacy shape; everything downstream sees the tagged form, and
// MarshalJSON only ever emits the tagged form.
type AssignmentItem struct {
	Type ItemType `json:"type"`
	ID   string   `json:"id"`
}

func (a *AssignmentItem) UnmarshalJSON(raw []byte) error {
	if len(raw) > 0 && raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("invalid assignment item: %w", err)
		}
		a.Type = ItemContent
		a.ID = id
		return nil
	}

	var tagged struct {
		Type ItemType `json:"type"`
		ID   string   `json:"id"`
	}
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return fmt.Errorf("invalid assignment item: %w", err)
	}
	if tagged.Type == "" {
		tagged.Type = ItemContent
	}
	a.Type = tagged.Type
	a.ID = tagged.ID
	return nil
}

func (a AssignmentItem) MarshalJSON() ([]byte, error) {
	type tagged struct {
		Type ItemType `json:"type"`
		ID   string   `json:"id"`
	}
	return json.Marshal(tagged{Type: a.Type, ID: a.ID})
}

type UpdateAssignmentsRequest struct {
	DeviceID      string           `json:"deviceId" validate:"required"`
	Items         []AssignmentItem `json:"items" validate:"required"`
	PlaybackOrder PlaybackOrder    `json:"playbackOrder" validate:"omitempty,oneof=sequential random"`
}

type ModifyAssignmentsRequest struct {
	ContentIDs []string `json:"contentIds" validate:"required"`
}

// AssignedItemView is an assignment item enriched with display metadata for
// the admin dashboard.
type AssignedItemView struct {
	Type        ItemType    `json:"type"`
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ContentType ContentType `json:"contentType,omitempty"`
	ChildCount  int         `json:"childCount,omitempty"`
}

type FranchiseSummary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Location      string        `json:"location"`
	PlaybackOrder PlaybackOrder `json:"playbackOrder"`
}

type DeviceAssignments struct {
	DeviceID  string             `json:"deviceId"`
	Franchise *FranchiseSummary  `json:"franchise"`
	ItemCount int                `json:"itemCount"`
	Items     []AssignedItemView `json:"items"`
}

type UpdateAssignmentsResult struct {
	DeviceID      string           `json:"deviceId"`
	AssignedItems []AssignmentItem `json:"assignedItems"`
	PlaybackOrder PlaybackOrder    `json:"playbackOrder"`
	InvalidItems  []AssignmentItem `json:"invalidItems,omitempty"`
}
