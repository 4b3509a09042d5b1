package store

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// AuditEntry describes a committed mutation for the operational log.
type AuditEntry struct {
	Action  string
	Details any
}

// AuditLogger appends one line per committed mutation to an append-only
// file. Logging happens strictly after the commit and is best-effort: a
// full disk must never fail an already-committed transaction. There is no
// read API; the file exists for forensics.
type AuditLogger struct {
	path string
	mu   sync.Mutex
}

func NewAuditLogger(path string) *AuditLogger {
	return &AuditLogger{path: path}
}

func (a *AuditLogger) Log(action string, details any) {
	encoded, err := json.Marshal(details)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%q", fmt.Sprint(details)))
	}
	line := fmt.Sprintf("[%s] [%s] %s\n", time.Now().UTC().Format(time.RFC3339), action, encoded)

	a.mu.Lock()
	defer a.mu.Unlock()
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[Audit] Failed to open log: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		log.Printf("[Audit] Failed to write log: %v", err)
	}
}
