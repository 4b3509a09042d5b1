package service

import (
	"errors"
	"testing"
	"time"

	"franchiseos-backend/internal/domain"
)

func TestRegisterFranchise(t *testing.T) {
	s := newTestStore(t)
	svc := NewFranchiseService(s, nil)

	franchise, err := svc.Register(&domain.CreateFranchiseRequest{
		Name:     "Store One",
		Location: "Mumbai",
		DeviceID: "DEV-1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if franchise.Token == "" || franchise.Token == domain.MaskedToken {
		t.Error("Register() must return the plaintext token once")
	}
	if franchise.Status != domain.StatusOffline {
		t.Errorf("status = %s, want offline before first heartbeat", franchise.Status)
	}

	_, err = svc.Register(&domain.CreateFranchiseRequest{
		Name:     "Duplicate",
		Location: "Pune",
		DeviceID: "DEV-1",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Register() error = %v, want ErrConflict", err)
	}
}

func TestListMasksTokensAndDerivesStatus(t *testing.T) {
	s := newTestStore(t)
	svc := NewFranchiseService(s, nil)

	recent := time.Now().Add(-time.Minute)
	stale := time.Now().Add(-10 * time.Minute)
	seed(t, s, func(doc *domain.Document) {
		doc.Franchises = append(doc.Franchises,
			domain.Franchise{ID: "f1", DeviceID: "DEV-1", Token: "secret-1", Status: domain.StatusOffline, LastSync: &recent},
			domain.Franchise{ID: "f2", DeviceID: "DEV-2", Token: "secret-2", Status: domain.StatusOnline, LastSync: &stale},
			domain.Franchise{ID: "f3", DeviceID: "DEV-3", Token: "secret-3"},
		)
	})

	list, err := svc.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List() = %d franchises, want 3", len(list))
	}

	for _, f := range list {
		if f.Token != domain.MaskedToken {
			t.Errorf("franchise %s token not masked: %s", f.ID, f.Token)
		}
	}

	// Recency wins over the stored status field.
	byID := map[string]domain.Franchise{}
	for _, f := range list {
		byID[f.ID] = f
	}
	if byID["f1"].Status != domain.StatusOnline {
		t.Error("recent heartbeat should read online")
	}
	if byID["f2"].Status != domain.StatusOffline {
		t.Error("stale heartbeat should read offline despite stored online")
	}
	if byID["f3"].Status != domain.StatusOffline {
		t.Error("never-synced device should read offline")
	}
}

func TestHeartbeatRefreshesSync(t *testing.T) {
	s := newTestStore(t)
	svc := NewFranchiseService(s, nil)

	seed(t, s, func(doc *domain.Document) {
		doc.Franchises = append(doc.Franchises, domain.Franchise{
			ID:       "f1",
			DeviceID: "DEV-1",
			Token:    "tok-1",
			Status:   domain.StatusOffline,
		})
	})

	before := time.Now().Add(-time.Second)
	lastSync, err := svc.Heartbeat("f1")
	if err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}
	if lastSync.Before(before) {
		t.Errorf("lastSync = %v, want recent", lastSync)
	}

	doc, err := s.LoadFresh()
	if err != nil {
		t.Fatalf("LoadFresh() error = %v", err)
	}
	if doc.Franchises[0].Status != domain.StatusOnline {
		t.Error("heartbeat did not mark franchise online")
	}
}

func TestRegenerateTokenInvalidatesOld(t *testing.T) {
	s := newTestStore(t)
	svc := NewFranchiseService(s, nil)

	seed(t, s, func(doc *domain.Document) {
		doc.Franchises = append(doc.Franchises, domain.Franchise{
			ID:       "f1",
			DeviceID: "DEV-1",
			Token:    "old-token",
		})
	})

	token, err := svc.RegenerateToken("f1")
	if err != nil {
		t.Fatalf("RegenerateToken() error = %v", err)
	}
	if token == "old-token" || token == "" {
		t.Errorf("RegenerateToken() = %q, want a fresh token", token)
	}

	if _, err := svc.Authenticate("old-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Authenticate(old) error = %v, want ErrNotFound", err)
	}
	franchise, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate(new) error = %v", err)
	}
	if franchise.ID != "f1" {
		t.Errorf("Authenticate() franchise = %s, want f1", franchise.ID)
	}
}

func TestDeleteFranchiseCascadesAssignments(t *testing.T) {
	s := newTestStore(t)
	svc := NewFranchiseService(s, nil)

	seed(t, s, func(doc *domain.Document) {
		doc.Franchises = append(doc.Franchises, domain.Franchise{
			ID:       "f1",
			DeviceID: "DEV-1",
			Token:    "tok-1",
		})
		doc.Assignments["DEV-1"] = []domain.AssignmentItem{
			{Type: domain.ItemContent, ID: "c1"},
		}
	})

	if err := svc.Delete("f1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	doc, err := s.LoadFresh()
	if err != nil {
		t.Fatalf("LoadFresh() error = %v", err)
	}
	if len(doc.Franchises) != 0 {
		t.Errorf("franchises = %+v, want empty", doc.Franchises)
	}
	if _, ok := doc.Assignments["DEV-1"]; ok {
		t.Error("assignment list survived franchise delete")
	}

	if err := svc.Delete("f1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
