package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
	"github.com/PolarWolf314/docuvault/internal/utils"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Account filters entries by acting or target account.
	Account string

	// DocumentID filters entries by document.
	DocumentID string

	// SessionID filters entries by viewing session.
	SessionID string

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered ledger entries.
	Entries []ledger.Event

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the vault ledger.
//
// Returns ErrVaultNotInitialized if there is no vault.
// Returns ErrInvalidDateFormat if the date format is invalid.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}

	entries, err := v.ledger.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
	}

	filtered, err := FilterEvents(entries, opts)
	if err != nil {
		return nil, err
	}
	result.Entries = filtered
	return result, nil
}

// FilterEvents applies the filters, ordering and limit of opts.
func FilterEvents(entries []ledger.Event, opts LogOptions) ([]ledger.Event, error) {
	var since, until time.Time
	if opts.Since != "" {
		t, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		since = t
	}
	if opts.Until != "" {
		t, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day by setting to end of day.
		until = t.Add(24*time.Hour - time.Nanosecond)
	}

	opSet := make(map[string]bool)
	if opts.Operations != "" {
		for _, op := range strings.Split(opts.Operations, ",") {
			if op = strings.TrimSpace(op); op != "" {
				opSet[strings.ToLower(op)] = true
			}
		}
	}

	filtered := make([]ledger.Event, 0, len(entries))
	for _, e := range entries {
		if opts.Account != "" && !strings.EqualFold(e.Account, opts.Account) && !strings.EqualFold(e.TargetAccount, opts.Account) {
			continue
		}
		if opts.DocumentID != "" && e.DocumentID != opts.DocumentID {
			continue
		}
		if opts.SessionID != "" && e.SessionID != opts.SessionID {
			continue
		}
		if len(opSet) > 0 && !opSet[strings.ToLower(e.Operation)] {
			continue
		}
		if !since.IsZero() || !until.IsZero() {
			t, err := e.Time()
			if err != nil {
				continue
			}
			if !since.IsZero() && t.Before(since) {
				continue
			}
			if !until.IsZero() && t.After(until) {
				continue
			}
		}
		filtered = append(filtered, e)
	}

	// Apply ordering.
	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	// Apply limit.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// When reversed, limit takes first N (most recent).
			filtered = filtered[:opts.Limit]
		} else {
			// When not reversed, limit takes last N (most recent).
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	return filtered, nil
}

// FormatDateTime formats an event timestamp as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(e ledger.Event) string {
	t, err := e.Time()
	if err != nil {
		if len(e.Timestamp) >= 19 {
			return e.Timestamp[:19]
		}
		return e.Timestamp
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails formats the operation-specific part of an event.
func FormatDetails(e ledger.Event) string {
	switch e.Operation {
	case ledger.OpUpload:
		return e.DocumentName
	case ledger.OpGrant, ledger.OpRevoke:
		return fmt.Sprintf("%s -> %s", e.DocumentName, utils.ShortAccount(e.TargetAccount))
	case ledger.OpViewOpen, ledger.OpViewArmed:
		return e.DocumentName
	case ledger.OpViewLocked:
		return fmt.Sprintf("%s, viewed %s", e.DocumentName, formatDuration(e.DurationMS))
	case ledger.OpViolation:
		return fmt.Sprintf("%s #%d", e.Violation, e.Count)
	case ledger.OpTerminated:
		return fmt.Sprintf("%s after %s", e.Detail, formatDuration(e.DurationMS))
	case ledger.OpDecryptFailed:
		return e.DocumentName
	default:
		return e.Detail
	}
}

func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}
