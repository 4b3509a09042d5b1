package service

import (
	"path/filepath"
	"testing"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "database.json"), nil)
	if err := s.Recover(nil); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	return s
}

// seed applies a mutation outside the code under test.
func seed(t *testing.T, s *store.Store, mutate func(*domain.Document)) {
	t.Helper()
	_, err := s.Transact(func(doc *domain.Document) (*store.MutationResult, error) {
		mutate(doc)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("seed transaction error = %v", err)
	}
}
