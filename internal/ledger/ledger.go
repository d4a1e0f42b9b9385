package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimestampFormat is the layout of Event.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Operation names.
const (
	OpUpload        = "upload"
	OpGrant         = "grant"
	OpRevoke        = "revoke"
	OpViewOpen      = "view_open"
	OpViewArmed     = "view_armed"
	OpViewLocked    = "view_locked"
	OpViolation     = "violation"
	OpTerminated    = "terminated"
	OpDecryptFailed = "decrypt_failed"
)

// Event is a single ledger entry.
type Event struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"`      // RFC3339 with microseconds.
	Account   string `json:"account"` // Acting wallet account, may be empty.
	Operation string `json:"op"`

	// Optional fields depending on operation.
	DocumentID    string `json:"document_id,omitempty"`
	DocumentName  string `json:"document_name,omitempty"`
	TargetAccount string `json:"target_account,omitempty"` // For grant/revoke.
	SessionID     string `json:"session_id,omitempty"`     // For view events.
	Violation     string `json:"violation,omitempty"`      // For violation.
	Count         int    `json:"count,omitempty"`          // Violations so far.
	DurationMS    int64  `json:"duration_ms,omitempty"`    // Viewing time, for view_locked/terminated.
	Detail        string `json:"detail,omitempty"`
}

// Time parses the event timestamp.
func (e Event) Time() (time.Time, error) {
	t, err := time.Parse(TimestampFormat, e.Timestamp)
	if err != nil {
		t, err = time.Parse(time.RFC3339, e.Timestamp)
	}
	return t, err
}

// Ledger is an append-only event sink.
type Ledger interface {
	Record(Event) error
}

// stamp fills in the ID and timestamp if unset.
func stamp(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}
	return e
}

// FileLedger appends events to a JSON Lines file.
type FileLedger struct {
	mu   sync.Mutex
	path string
}

// NewFileLedger returns a ledger writing to path. The file is created on
// first write.
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

// Path returns the ledger file path.
func (l *FileLedger) Path() string {
	return l.path
}

// Record appends e.
func (l *FileLedger) Record(e Event) error {
	e = stamp(e)
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode ledger event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	// #nosec G302 -- the ledger is shared with everyone who can read the vault.
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

// ReadEntries reads all events. It returns an empty slice if the file does
// not exist yet.
func (l *FileLedger) ReadEntries() ([]Event, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into events.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Event, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var events []Event
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var e Event
			if err := json.Unmarshal(line, &e); err != nil {
				continue
			}
			events = append(events, e)
		}
	}

	return events, nil
}

// MemoryLedger keeps events in memory.
type MemoryLedger struct {
	mu     sync.Mutex
	events []Event
}

func (l *MemoryLedger) Record(e Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, stamp(e))
	return nil
}

// Entries returns a copy of the recorded events.
func (l *MemoryLedger) Entries() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
