package domain

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestAssignmentItemUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType ItemType
		wantID   string
		wantErr  bool
	}{
		{
			name:     "tagged content item",
			raw:      `{"type":"content","id":"c1"}`,
			wantType: ItemContent,
			wantID:   "c1",
		},
		{
			name:     "tagged folder item",
			raw:      `{"type":"folder","id":"fo1"}`,
			wantType: ItemFolder,
			wantID:   "fo1",
		},
		{
			name:     "legacy bare string",
			raw:      `"c2"`,
			wantType: ItemContent,
			wantID:   "c2",
		},
		{
			name:     "object missing type defaults to content",
			raw:      `{"id":"c3"}`,
			wantType: ItemContent,
			wantID:   "c3",
		},
		{
			name:    "malformed payload",
			raw:     `42`,
			wantErr: true,
		},
		{
			name:    "truncated string",
			raw:     `"c4`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item AssignmentItem
			err := json.Unmarshal([]byte(tt.raw), &item)

			if tt.wantErr {
				if err == nil {
					t.Error("Unmarshal() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if tt.wantID == "" {
				return
			}
			if item.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", item.Type, tt.wantType)
			}
			if item.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", item.ID, tt.wantID)
			}
		})
	}
}

func TestAssignmentItemMarshalAlwaysTagged(t *testing.T) {
	items := []AssignmentItem{
		{Type: ItemContent, ID: "c1"},
		{Type: ItemFolder, ID: "fo1"},
	}

	raw, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got := string(raw)
	if !strings.Contains(got, `{"type":"content","id":"c1"}`) {
		t.Errorf("content item not tagged: %s", got)
	}
	if !strings.Contains(got, `{"type":"folder","id":"fo1"}`) {
		t.Errorf("folder item not tagged: %s", got)
	}
}

func TestAssignmentListMixedEncodings(t *testing.T) {
	raw := `["legacy-1",{"type":"folder","id":"fo1"},{"type":"content","id":"c1"}]`

	var items []AssignmentItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := []AssignmentItem{
		{Type: ItemContent, ID: "legacy-1"},
		{Type: ItemFolder, ID: "fo1"},
		{Type: ItemContent, ID: "c1"},
	}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %+v, want %+v", i, items[i], want[i])
		}
	}

	// Round-trip: the legacy form is gone after one write.
	out, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(out), `"legacy-1",`) && !strings.Contains(string(out), `"id":"legacy-1"`) {
		t.Errorf("legacy encoding survived a round-trip: %s", out)
	}
}

func TestDocumentDecodeBackfillsCollections(t *testing.T) {
	raw := `{"franchises":[{"id":"f1","name":"One"}]}`

	doc, err := DecodeDocument([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if doc.Assignments == nil || doc.OTPTokens == nil {
		t.Error("DecodeDocument() left nil maps")
	}
	if doc.Content == nil || doc.Folders == nil || doc.Analytics == nil {
		t.Error("DecodeDocument() left nil slices")
	}
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := NewDocument()
	doc.Assignments["DEV-1"] = []AssignmentItem{{Type: ItemContent, ID: "c1"}}
	doc.Folders = append(doc.Folders, Folder{ID: "fo1", ContentIDs: []string{"c1"}})

	clone, err := doc.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	clone.Assignments["DEV-1"][0].ID = "changed"
	clone.Folders[0].ContentIDs[0] = "changed"

	if doc.Assignments["DEV-1"][0].ID != "c1" {
		t.Error("Clone() shares assignment backing storage")
	}
	if doc.Folders[0].ContentIDs[0] != "c1" {
		t.Error("Clone() shares folder backing storage")
	}
}
