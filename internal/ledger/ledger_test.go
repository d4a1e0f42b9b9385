package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/docuvault/internal/viewer"
)

func TestRecord_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docuvault", "ledger.jsonl")
	l := NewFileLedger(path)

	if err := l.Record(Event{Account: "0xabc", Operation: OpUpload, DocumentID: "doc-1"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Ledger file was not created")
	}
}

func TestRecord_AppendsEntries(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "ledger.jsonl"))

	for _, op := range []string{OpUpload, OpGrant, OpRevoke} {
		if err := l.Record(Event{Account: "0xabc", Operation: op}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("Failed to read ledger: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestRecord_StampsEvents(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "ledger.jsonl"))
	if err := l.Record(Event{Operation: OpUpload}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := l.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.ID == "" {
		t.Error("ID should be auto-set")
	}
	if !strings.HasSuffix(e.Timestamp, "Z") || !strings.Contains(e.Timestamp, ".") {
		t.Errorf("Timestamp should be UTC with microseconds, got %s", e.Timestamp)
	}
	if _, err := e.Time(); err != nil {
		t.Errorf("Timestamp does not parse: %v", err)
	}
}

func TestRecord_OmitsEmptyFields(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "ledger.jsonl"))
	if err := l.Record(Event{Account: "0xabc", Operation: OpViewArmed}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("Failed to read ledger: %v", err)
	}
	line := strings.TrimSpace(string(data))

	for _, field := range []string{`"target_account"`, `"violation"`, `"duration_ms"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted", field)
		}
	}

	var parsed Event
	if err := json.Unmarshal([]byte(line), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}
}

func TestRecord_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	l := NewFileLedger(filepath.Join(blocker, "ledger.jsonl"))
	if err := l.Record(Event{Operation: OpUpload}); err == nil {
		t.Error("Expected an error writing beneath a regular file")
	}
}

func TestReadEntries_Missing(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "none.jsonl"))
	entries, err := l.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","account":"0xa","op":"upload"}
{"ts":"2024-01-15T10:35:00.456789Z","account":"0xb","op":"grant"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Account != "0xa" || entries[1].Account != "0xb" {
		t.Errorf("Unexpected accounts: %s, %s", entries[0].Account, entries[1].Account)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","account":"0xa","op":"upload"}
this is not valid json
{"ts":"2024-01-15T10:35:00.456789Z","account":"0xb","op":"grant"}`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}

func TestSessionObserver_RecordsViewing(t *testing.T) {
	mem := &MemoryLedger{}
	obs := &SessionObserver{
		Ledger: mem,
		Base:   Event{Account: "0xabc", DocumentID: "doc-1", SessionID: "s-1"},
		Viewed: func() time.Duration { return 2 * time.Second },
	}

	obs.StateChanged(viewer.Locked, viewer.Armed, 0)
	obs.ViolationRecorded(viewer.Violation{Kind: viewer.ViolationPrint, Detail: "Ctrl+P blocked"}, 1)
	obs.StateChanged(viewer.Armed, viewer.Blurred, 1)
	obs.StateChanged(viewer.Blurred, viewer.Armed, 1)
	obs.StateChanged(viewer.Armed, viewer.Locked, 1)
	obs.Terminated("session closed", 1500*time.Millisecond)

	entries := mem.Entries()
	var ops []string
	for _, e := range entries {
		ops = append(ops, e.Operation)
		if e.Account != "0xabc" || e.DocumentID != "doc-1" || e.SessionID != "s-1" {
			t.Errorf("Base fields not copied: %+v", e)
		}
	}

	want := []string{OpViewArmed, OpViolation, OpViewLocked, OpTerminated}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Fatalf("Expected %v, got %v", want, ops)
	}
	if entries[1].Violation != "print" || entries[1].Count != 1 {
		t.Errorf("Unexpected violation event: %+v", entries[1])
	}
	if entries[2].DurationMS != 2000 {
		t.Errorf("Expected view_locked to carry 2000ms, got %d", entries[2].DurationMS)
	}
	if entries[3].DurationMS != 1500 {
		t.Errorf("Expected 1500ms viewed, got %d", entries[3].DurationMS)
	}
}

type failingLedger struct{}

func (failingLedger) Record(Event) error { return os.ErrPermission }

func TestSessionObserver_ReportsErrors(t *testing.T) {
	var got error
	obs := &SessionObserver{Ledger: failingLedger{}, OnError: func(err error) { got = err }}

	obs.ViolationRecorded(viewer.Violation{Kind: viewer.ViolationCopy}, 1)

	if got != os.ErrPermission {
		t.Errorf("Expected OnError to receive the ledger error, got %v", got)
	}
}
