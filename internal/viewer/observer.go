package viewer

import "time"

// Observer receives session notifications. Calls are made outside the
// session lock and may call back into the Session. Notifications from a
// single event are delivered in order.
type Observer interface {
	// StateChanged reports a transition.
	StateChanged(from, to State, violations int)

	// ViolationRecorded reports every detected violation, including ones
	// coalesced into an existing blur.
	ViolationRecorded(v Violation, count int)

	// Warning reports a non-fatal condition the user should see.
	Warning(msg string)

	// Terminated reports the end of the session. Callers should navigate
	// away from the viewing surface.
	Terminated(reason string, viewed time.Duration)
}

// NopObserver ignores all notifications. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) StateChanged(State, State, int)   {}
func (NopObserver) ViolationRecorded(Violation, int) {}
func (NopObserver) Warning(string)                   {}
func (NopObserver) Terminated(string, time.Duration) {}

// MultiObserver fans notifications out to several observers.
type MultiObserver []Observer

func (m MultiObserver) StateChanged(from, to State, n int) {
	for _, o := range m {
		o.StateChanged(from, to, n)
	}
}

func (m MultiObserver) ViolationRecorded(v Violation, n int) {
	for _, o := range m {
		o.ViolationRecorded(v, n)
	}
}

func (m MultiObserver) Warning(msg string) {
	for _, o := range m {
		o.Warning(msg)
	}
}

func (m MultiObserver) Terminated(reason string, viewed time.Duration) {
	for _, o := range m {
		o.Terminated(reason, viewed)
	}
}

// Presenter acquires an exclusive, full-screen-like presentation surface.
type Presenter interface {
	Acquire() error
	Release()
}

type nopPresenter struct{}

func (nopPresenter) Acquire() error { return nil }
func (nopPresenter) Release()       {}
