package ledger

import (
	"time"

	"github.com/PolarWolf314/docuvault/internal/viewer"
)

// SessionObserver records viewer session activity to a ledger. Fields of
// Base (account, document, session) are copied into every event. Record
// failures are passed to OnError and otherwise ignored.
type SessionObserver struct {
	viewer.NopObserver

	Ledger  Ledger
	Base    Event
	OnError func(error)

	// Viewed, if set, reports total viewing time for view_locked events.
	Viewed func() time.Duration
}

func (o *SessionObserver) record(e Event) {
	e.Account = o.Base.Account
	e.DocumentID = o.Base.DocumentID
	e.DocumentName = o.Base.DocumentName
	e.SessionID = o.Base.SessionID
	if err := o.Ledger.Record(e); err != nil && o.OnError != nil {
		o.OnError(err)
	}
}

func (o *SessionObserver) StateChanged(from, to viewer.State, violations int) {
	switch {
	case to == viewer.Armed && from == viewer.Locked:
		o.record(Event{Operation: OpViewArmed, Count: violations})
	case to == viewer.Locked:
		e := Event{Operation: OpViewLocked, Count: violations}
		if o.Viewed != nil {
			e.DurationMS = o.Viewed().Milliseconds()
		}
		o.record(e)
	}
}

func (o *SessionObserver) ViolationRecorded(v viewer.Violation, count int) {
	o.record(Event{
		Operation: OpViolation,
		Violation: string(v.Kind),
		Count:     count,
		Detail:    v.Detail,
	})
}

func (o *SessionObserver) Terminated(reason string, viewed time.Duration) {
	o.record(Event{
		Operation:  OpTerminated,
		DurationMS: viewed.Milliseconds(),
		Detail:     reason,
	})
}
