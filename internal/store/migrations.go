package store

import (
	"fmt"
	"log"
	"time"

	"franchiseos-backend/internal/domain"
)

// Migration is one compiled-in schema upgrade step. Up mutates the document
// in place; the runner hands it a deep copy, so a failing step leaves no
// partial effects behind.
type Migration struct {
	Version int
	Name    string
	Up      func(*domain.Document) error
}

// migrations must stay in ascending version order. Steps are written to be
// idempotent: a re-run against an already-upgraded document is a no-op.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_metadata",
		Up: func(doc *domain.Document) error {
			if doc.Metadata.CreatedAt.IsZero() {
				doc.Metadata.CreatedAt = time.Now().UTC()
			}
			for i := range doc.Franchises {
				if doc.Franchises[i].CreatedAt.IsZero() {
					doc.Franchises[i].CreatedAt = time.Now().UTC()
				}
			}
			return nil
		},
	},
	{
		Version: 2,
		Name:    "playback_order_default",
		Up: func(doc *domain.Document) error {
			for i := range doc.Franchises {
				if doc.Franchises[i].PlaybackOrder == "" {
					doc.Franchises[i].PlaybackOrder = domain.PlaybackSequential
				}
			}
			return nil
		},
	},
	{
		Version: 3,
		Name:    "analytics_cap",
		Up: func(doc *domain.Document) error {
			if len(doc.Analytics) > domain.MaxAnalyticsEvents {
				doc.Analytics = doc.Analytics[len(doc.Analytics)-domain.MaxAnalyticsEvents:]
			}
			return nil
		},
	},
}

// Migrate applies every registered migration above the document's current
// version, ascending, then persists once. A failing step is logged and
// skipped without its effects, and the persisted version never advances
// past it, so the step is retried on the next startup. Later steps still
// run; because every step is idempotent, their re-run after the retry is
// harmless. Migration failure never aborts startup.
func (s *Store) Migrate() error {
	return s.runMigrations(migrations)
}

func (s *Store) runMigrations(steps []Migration) error {
	doc, err := s.LoadFresh()
	if err != nil {
		return fmt.Errorf("failed to load database for migration: %w", err)
	}

	current := doc.Metadata.Version
	applied := 0
	failed := 0

	for _, m := range steps {
		if m.Version <= current {
			continue
		}
		candidate, err := doc.Clone()
		if err != nil {
			return err
		}
		if err := m.Up(candidate); err != nil {
			log.Printf("[Migration] Failed to apply %03d_%s, skipping: %v", m.Version, m.Name, err)
			if failed == 0 {
				failed = m.Version
			}
			continue
		}
		log.Printf("[Migration] Applying %03d_%s", m.Version, m.Name)
		candidate.Metadata.Version = m.Version
		doc = candidate
		applied++
	}

	if failed != 0 && doc.Metadata.Version >= failed {
		doc.Metadata.Version = failed - 1
		log.Printf("[Migration] Holding version at %d until %03d succeeds", failed-1, failed)
	}

	if applied == 0 {
		return nil
	}
	if err := s.writeInitial(doc); err != nil {
		return fmt.Errorf("failed to persist migrated database: %w", err)
	}
	log.Printf("[Migration] Database schema updated to version %d", doc.Metadata.Version)
	return nil
}
