package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"franchiseos-backend/internal/domain"
)

// Recover makes sure a valid database file exists before any request is
// served. A missing file is restored from the newest valid snapshot or
// initialized empty; a corrupt file is first moved aside for forensics and
// then treated the same as missing. This is the only stage allowed to fail
// startup, and only when even an empty document cannot be written.
func (s *Store) Recover(backups *BackupManager) error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		log.Printf("[DB] Database file missing, attempting restoration")
		return s.restoreOrInit(backups)
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	if _, err := domain.DecodeDocument(raw); err != nil {
		log.Printf("[DB] Corrupted database detected: %v", err)
		corruptPath := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().Unix())
		if err := os.Rename(s.path, corruptPath); err != nil {
			return fmt.Errorf("failed to preserve corrupt database: %w", err)
		}
		log.Printf("[DB] Corrupt file moved to %s", corruptPath)
		return s.restoreOrInit(backups)
	}

	log.Printf("[DB] Database loaded successfully")
	return nil
}

func (s *Store) restoreOrInit(backups *BackupManager) error {
	if backups != nil {
		restored, err := backups.RestoreLatest()
		if err != nil {
			return err
		}
		if restored {
			log.Printf("[DB] Recovered from backup")
			return nil
		}
	}
	log.Printf("[DB] No backup found, initializing new database")
	return s.writeInitial(domain.NewDocument())
}
