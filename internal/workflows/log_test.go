package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
)

func sampleEvents() []ledger.Event {
	return []ledger.Event{
		{Timestamp: "2024-01-01T10:00:00.000000Z", Account: "0xowner", Operation: ledger.OpUpload, DocumentID: "doc-1", DocumentName: "a.txt"},
		{Timestamp: "2024-01-02T10:00:00.000000Z", Account: "0xowner", Operation: ledger.OpGrant, DocumentID: "doc-1", TargetAccount: "0xbob"},
		{Timestamp: "2024-01-03T10:00:00.000000Z", Account: "0xbob", Operation: ledger.OpViewArmed, DocumentID: "doc-1", SessionID: "s-1"},
		{Timestamp: "2024-01-03T10:00:05.000000Z", Account: "0xbob", Operation: ledger.OpViolation, DocumentID: "doc-1", SessionID: "s-1", Violation: "copy", Count: 1},
		{Timestamp: "2024-01-04T10:00:00.000000Z", Account: "0xowner", Operation: ledger.OpUpload, DocumentID: "doc-2", DocumentName: "b.txt"},
	}
}

func ops(events []ledger.Event) string {
	var out []string
	for _, e := range events {
		out = append(out, e.Operation)
	}
	return strings.Join(out, ",")
}

func TestFilterEvents(t *testing.T) {
	tests := []struct {
		name string
		opts LogOptions
		want string
	}{
		{"no filters", LogOptions{}, "upload,grant,view_armed,violation,upload"},
		{"account matches actor or target", LogOptions{Account: "0xBOB"}, "grant,view_armed,violation"},
		{"document", LogOptions{DocumentID: "doc-2"}, "upload"},
		{"session", LogOptions{SessionID: "s-1"}, "view_armed,violation"},
		{"operations", LogOptions{Operations: "upload, VIOLATION"}, "upload,violation,upload"},
		{"since", LogOptions{Since: "2024-01-03"}, "view_armed,violation,upload"},
		{"until includes whole day", LogOptions{Until: "2024-01-03"}, "upload,grant,view_armed,violation"},
		{"limit keeps most recent", LogOptions{Limit: 2}, "violation,upload"},
		{"reverse with limit", LogOptions{Reverse: true, Limit: 2}, "upload,violation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterEvents(sampleEvents(), tt.opts)
			if err != nil {
				t.Fatalf("FilterEvents failed: %v", err)
			}
			if ops(got) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, ops(got))
			}
		})
	}
}

func TestFilterEvents_InvalidDate(t *testing.T) {
	for _, opts := range []LogOptions{{Since: "01/02/2024"}, {Until: "yesterday"}} {
		if _, err := FilterEvents(sampleEvents(), opts); !errors.Is(err, kerrors.ErrInvalidDateFormat) {
			t.Errorf("Expected ErrInvalidDateFormat for %+v, got %v", opts, err)
		}
	}
}

func TestFormatDetails(t *testing.T) {
	tests := []struct {
		event ledger.Event
		want  string
	}{
		{ledger.Event{Operation: ledger.OpUpload, DocumentName: "a.txt"}, "a.txt"},
		{ledger.Event{Operation: ledger.OpGrant, DocumentName: "a.txt", TargetAccount: "0x1234567890abcdef"}, "a.txt -> 0x1234...cdef"},
		{ledger.Event{Operation: ledger.OpViolation, Violation: "print", Count: 2}, "print #2"},
		{ledger.Event{Operation: ledger.OpTerminated, Detail: "session closed", DurationMS: 11000}, "session closed after 11s"},
		{ledger.Event{Operation: "unknown", Detail: "x"}, "x"},
	}
	for _, tt := range tests {
		if got := FormatDetails(tt.event); got != tt.want {
			t.Errorf("FormatDetails(%s) = %q, want %q", tt.event.Operation, got, tt.want)
		}
	}
}

func TestFormatDateTime(t *testing.T) {
	e := ledger.Event{Timestamp: "2024-01-15T10:30:00.123456Z"}
	if got := FormatDateTime(e); got != "2024-01-15 10:30:00" {
		t.Errorf("Expected 2024-01-15 10:30:00, got %s", got)
	}
	if got := FormatDateTime(ledger.Event{Timestamp: "bad"}); got != "bad" {
		t.Errorf("Expected raw timestamp fallback, got %s", got)
	}
}

func TestLog_ReadsVaultLedger(t *testing.T) {
	_, owner := setupVault(t)
	uploadSecret(t, owner)

	result, err := Log(context.Background(), LogOptions{Operations: "upload"})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Account != ownerAccount {
		t.Errorf("Unexpected entries: %+v", result.Entries)
	}
}
