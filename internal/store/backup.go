package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"franchiseos-backend/internal/domain"
)

// BackupManager snapshots the persisted database file into a backup
// directory. Snapshots are keyed by hour, so a second snapshot within the
// same hour overwrites the first, and rotation keeps the newest retain
// files by mtime.
//
// It reads the committed file directly and never takes the store's mutation
// lock, so a large document copy cannot stall writers.
type BackupManager struct {
	dir    string
	dbPath string
	retain int

	now func() time.Time
}

func NewBackupManager(dir, dbPath string, retain int) *BackupManager {
	return &BackupManager{
		dir:    dir,
		dbPath: dbPath,
		retain: retain,
		now:    time.Now,
	}
}

// Backup copies the current database file into an hour-stamped snapshot and
// rotates old ones. Missing database file is not an error; there is simply
// nothing to snapshot yet.
func (b *BackupManager) Backup() (string, error) {
	raw, err := os.ReadFile(b.dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Backup] Database file not found, skipping backup")
			return "", nil
		}
		return "", fmt.Errorf("failed to read database for backup: %w", err)
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("db-%s.json", b.now().UTC().Format("2006-01-02-15"))
	path := filepath.Join(b.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	log.Printf("[Backup] Snapshot created: %s", name)

	if err := b.Rotate(); err != nil {
		log.Printf("[Backup] Rotation failed: %v", err)
	}
	return path, nil
}

// Rotate deletes all but the retain newest snapshots, ordered by mtime.
func (b *BackupManager) Rotate() error {
	snapshots, err := b.list()
	if err != nil {
		return err
	}
	if len(snapshots) <= b.retain {
		return nil
	}
	for _, snap := range snapshots[b.retain:] {
		if err := os.Remove(snap.path); err != nil {
			log.Printf("[Backup] Failed to delete old backup %s: %v", snap.name, err)
			continue
		}
		log.Printf("[Backup] Rotated old backup: %s", snap.name)
	}
	return nil
}

// RestoreLatest promotes the newest snapshot that still parses as a valid
// document to the live database file. Unparseable snapshots are skipped in
// favor of the next-newest. Returns false when no valid snapshot exists.
func (b *BackupManager) RestoreLatest() (bool, error) {
	snapshots, err := b.list()
	if err != nil {
		return false, err
	}
	for _, snap := range snapshots {
		raw, err := os.ReadFile(snap.path)
		if err != nil {
			log.Printf("[Restore] Failed to read %s: %v", snap.name, err)
			continue
		}
		if _, err := domain.DecodeDocument(raw); err != nil {
			log.Printf("[Restore] Skipping invalid snapshot %s: %v", snap.name, err)
			continue
		}
		if err := os.WriteFile(b.dbPath, raw, 0o644); err != nil {
			return false, fmt.Errorf("failed to restore from %s: %w", snap.name, err)
		}
		log.Printf("[Restore] Restored database from %s", snap.name)
		return true, nil
	}
	return false, nil
}

// Schedule runs one immediate backup and then one per interval until stop
// is closed.
func (b *BackupManager) Schedule(interval time.Duration, stop <-chan struct{}) {
	if _, err := b.Backup(); err != nil {
		log.Printf("[Backup] Initial backup failed: %v", err)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			log.Printf("[Backup] Running scheduled backup")
			if _, err := b.Backup(); err != nil {
				log.Printf("[Backup] Scheduled backup failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

type snapshot struct {
	name  string
	path  string
	mtime time.Time
}

// list returns snapshots newest-first by mtime.
func (b *BackupManager) list() ([]snapshot, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snapshots []snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "db-") || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, snapshot{
			name:  entry.Name(),
			path:  filepath.Join(b.dir, entry.Name()),
			mtime: info.ModTime(),
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].mtime.After(snapshots[j].mtime)
	})
	return snapshots, nil
}
