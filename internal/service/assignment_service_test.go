package service

import (
	"errors"
	"testing"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
)

func seedAssignmentFixture(t *testing.T, s *store.Store) {
	t.Helper()
	seed(t, s, func(doc *domain.Document) {
		doc.Franchises = append(doc.Franchises, domain.Franchise{
			ID:       "f1",
			Name:     "Store One",
			Location: "Mumbai",
			DeviceID: "DEV-1",
			Token:    "tok-1",
		})
		doc.Content = append(doc.Content,
			domain.Content{ID: "c1", Name: "Promo A", Type: domain.ContentVideo},
			domain.Content{ID: "c2", Name: "Promo B", Type: domain.ContentImage},
		)
		doc.Folders = append(doc.Folders, domain.Folder{
			ID:         "fo1",
			Name:       "Seasonal",
			ContentIDs: []string{"c1", "c2"},
		})
	})
}

func TestUpdateAssignmentsFiltersInvalid(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	svc := NewAssignmentService(s, nil)

	result, err := svc.Update(&domain.UpdateAssignmentsRequest{
		DeviceID: "DEV-1",
		Items: []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "c1"},
			{Type: domain.ItemContent, ID: "nope"},
			{Type: domain.ItemFolder, ID: "fo1"},
			{Type: domain.ItemFolder, ID: "ghost"},
		},
		PlaybackOrder: domain.PlaybackRandom,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if len(result.AssignedItems) != 2 {
		t.Errorf("assigned = %d, want 2", len(result.AssignedItems))
	}
	if len(result.InvalidItems) != 2 {
		t.Errorf("invalid = %d, want 2", len(result.InvalidItems))
	}
	if result.PlaybackOrder != domain.PlaybackRandom {
		t.Errorf("playbackOrder = %s, want random", result.PlaybackOrder)
	}

	doc, err := s.LoadFresh()
	if err != nil {
		t.Fatalf("LoadFresh() error = %v", err)
	}
	if len(doc.Assignments["DEV-1"]) != 2 {
		t.Errorf("persisted items = %d, want 2", len(doc.Assignments["DEV-1"]))
	}
	if doc.Franchises[0].PlaybackOrder != domain.PlaybackRandom {
		t.Error("playback order not persisted on the franchise")
	}
}

func TestUpdateAssignmentsUnknownDevice(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	svc := NewAssignmentService(s, nil)

	_, err := svc.Update(&domain.UpdateAssignmentsRequest{
		DeviceID: "DEV-UNKNOWN",
		Items:    []domain.AssignmentItem{},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestGetAssignmentsEnriched(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemFolder, ID: "fo1"},
			{Type: domain.ItemContent, ID: "c1"},
		}
	})
	svc := NewAssignmentService(s, nil)

	got, err := svc.Get("DEV-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Franchise == nil || got.Franchise.Name != "Store One" {
		t.Errorf("franchise summary = %+v, want Store One", got.Franchise)
	}
	if got.ItemCount != 2 {
		t.Fatalf("itemCount = %d, want 2", got.ItemCount)
	}
	if got.Items[0].Name != "Seasonal" || got.Items[0].ChildCount != 2 {
		t.Errorf("folder view = %+v, want Seasonal with 2 children", got.Items[0])
	}
	if got.Items[1].Name != "Promo A" || got.Items[1].ContentType != domain.ContentVideo {
		t.Errorf("content view = %+v, want Promo A video", got.Items[1])
	}
}

func TestAddAssignmentsDedupes(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "c1"},
		}
	})
	svc := NewAssignmentService(s, nil)

	added, total, err := svc.Add("DEV-1", []string{"c1", "c2", "missing"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1 (duplicate and unknown skipped)", added)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestRemoveAssignmentsKeepsFolders(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "c1"},
			{Type: domain.ItemFolder, ID: "fo1"},
			{Type: domain.ItemContent, ID: "c2"},
		}
	})
	svc := NewAssignmentService(s, nil)

	removed, total, err := svc.Remove("DEV-1", []string{"c1", "fo1"})
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1 (folder ids only match content items)", removed)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}

	doc, err := s.LoadFresh()
	if err != nil {
		t.Fatalf("LoadFresh() error = %v", err)
	}
	items := doc.Assignments["DEV-1"]
	if items[0].Type != domain.ItemFolder || items[0].ID != "fo1" {
		t.Errorf("folder item removed by content-id remove: %+v", items)
	}
}

func TestClearAssignments(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "c1"},
		}
	})
	svc := NewAssignmentService(s, nil)

	if err := svc.Clear("DEV-1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	doc, err := s.LoadFresh()
	if err != nil {
		t.Fatalf("LoadFresh() error = %v", err)
	}
	if len(doc.Assignments["DEV-1"]) != 0 {
		t.Errorf("assignments after clear = %+v, want empty", doc.Assignments["DEV-1"])
	}
}

func TestContentDeleteStripsDirectAssignmentsOnly(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "c1"},
			{Type: domain.ItemFolder, ID: "fo1"},
		}
	})
	svc := NewContentService(s, nil)

	if _, err := svc.Delete("c1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	doc, err := s.LoadFresh()
	if err != nil {
		t.Fatalf("LoadFresh() error = %v", err)
	}
	items := doc.Assignments["DEV-1"]
	if len(items) != 1 || items[0].Type != domain.ItemFolder {
		t.Errorf("assignments = %+v, want only the folder item", items)
	}
	// Folder membership dangles on purpose; the resolver filters it.
	if got := doc.Folders[0].ContentIDs; len(got) != 2 {
		t.Errorf("folder contentIds = %v, want untouched", got)
	}
}

func TestFolderDeleteStripsFolderAssignments(t *testing.T) {
	s := newTestStore(t)
	seedAssignmentFixture(t, s)
	seed(t, s, func(doc *domain.Document) {
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemFolder, ID: "fo1"},
			{Type: domain.ItemContent, ID: "c2"},
		}
	})
	svc := NewFolderService(s)

	if err := svc.Delete("fo1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	doc, err := s.LoadFresh()
	if err != nil {
		t.Fatalf("LoadFresh() error = %v", err)
	}
	items := doc.Assignments["DEV-1"]
	if len(items) != 1 || items[0].ID != "c2" {
		t.Errorf("assignments = %+v, want only content c2", items)
	}
	if len(doc.Folders) != 0 {
		t.Errorf("folders = %+v, want empty", doc.Folders)
	}
}
