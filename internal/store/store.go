package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"franchiseos-backend/internal/domain"
)

// ErrStoreBusy is returned by Transact when another mutation holds the
// store. Callers either surface it (503) or go through TransactRetry.
var ErrStoreBusy = errors.New("store is busy, try again later")

const (
	loadCacheTTL  = 2 * time.Second
	retryAttempts = 3
	retryBaseWait = 50 * time.Millisecond
)

// MutationResult is what a transaction callback hands back: an optional
// value returned to the caller and an optional audit entry logged after the
// commit succeeds.
type MutationResult struct {
	Data  any
	Audit *AuditEntry
}

// Store owns the persisted document's lifecycle. All mutations funnel
// through Transact, the single mutual-exclusion boundary for every
// collection in the document.
type Store struct {
	path  string
	audit *AuditLogger

	mu sync.Mutex // held for the whole load-mutate-commit cycle

	cacheMu  sync.Mutex
	cached   []byte
	cachedAt time.Time
}

func New(path string, audit *AuditLogger) *Store {
	return &Store{path: path, audit: audit}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns a deep copy of the persisted document, served from a
// short-lived byte cache. Reads never block on the mutation lock; callers
// tolerate state up to the cache TTL stale.
func (s *Store) Load() (*domain.Document, error) {
	s.cacheMu.Lock()
	raw := s.cached
	fresh := raw != nil && time.Since(s.cachedAt) < loadCacheTTL
	s.cacheMu.Unlock()

	if !fresh {
		var err error
		raw, err = os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read database: %w", err)
		}
		s.setCache(raw)
	}

	return domain.DecodeDocument(raw)
}

// LoadFresh bypasses the cache for callers that need the latest committed
// state, such as OTP verification spanning an external call.
func (s *Store) LoadFresh() (*domain.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	s.setCache(raw)
	return domain.DecodeDocument(raw)
}

// Transact runs mutate against a private copy of the persisted document and
// commits the copy atomically only if mutate returns nil. A non-nil error
// discards the copy; nothing partial is ever persisted. At most one
// mutation is in flight; a concurrent attempt fails fast with ErrStoreBusy.
func (s *Store) Transact(mutate func(*domain.Document) (*MutationResult, error)) (any, error) {
	if !s.mu.TryLock() {
		return nil, ErrStoreBusy
	}
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	doc, err := domain.DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database: %w", err)
	}

	result, err := mutate(doc)
	if err != nil {
		return nil, err
	}

	if err := s.write(doc); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if result == nil {
		return nil, nil
	}
	if result.Audit != nil && s.audit != nil {
		s.audit.Log(result.Audit.Action, result.Audit.Details)
	}
	return result.Data, nil
}

// TransactRetry retries a busy store a few times with linear backoff.
// Device-facing paths (heartbeats, reports, OTP) use it so polling bursts
// do not turn into client-visible 503s.
func (s *Store) TransactRetry(mutate func(*domain.Document) (*MutationResult, error)) (any, error) {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		value, err := s.Transact(mutate)
		if !errors.Is(err, ErrStoreBusy) {
			return value, err
		}
		lastErr = err
		time.Sleep(retryBaseWait * time.Duration(attempt+1))
	}
	return nil, lastErr
}

// write stamps lastModified and replaces the database file atomically via a
// temp file and rename, then refreshes the load cache so subsequent reads
// observe the commit immediately.
func (s *Store) write(doc *domain.Document) error {
	doc.Metadata.LastModified = time.Now().UTC()

	raw, err := domain.EncodeDocument(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".db-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace database file: %w", err)
	}

	s.setCache(raw)
	return nil
}

// writeInitial persists a document outside the transaction path. Recovery
// and migrations use it before the server accepts requests.
func (s *Store) writeInitial(doc *domain.Document) error {
	if err := s.write(doc); err != nil {
		return err
	}
	log.Printf("[DB] Database written (version %d)", doc.Metadata.Version)
	return nil
}

func (s *Store) setCache(raw []byte) {
	s.cacheMu.Lock()
	s.cached = raw
	s.cachedAt = time.Now()
	s.cacheMu.Unlock()
}
