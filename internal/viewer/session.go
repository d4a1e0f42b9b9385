package viewer

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

// Session is a secure viewing session over one decrypted document. All
// methods are safe for concurrent use; events are applied in the order they
// acquire the session.
type Session struct {
	mu sync.Mutex

	id          string
	state       State
	count       int
	violations  []Violation
	plaintext   []byte
	contentType ContentType

	policy    Policy
	clock     Clock
	monitor   Monitor
	presenter Presenter
	observer  Observer
	reverify  func() ([]byte, error)
	watermark Watermark

	// entering is set while EnterSecureMode runs its unlocked steps.
	entering bool

	// scope holds what was acquired on entry to Armed.
	scope    scope
	scopeGen uint64

	coolDown Timer
	coolGen  uint64
	grace    Timer
	graceGen uint64

	armedAt time.Time
	viewed  time.Duration
}

// scope is the set of resources held while the session is Armed or Blurred.
type scope struct {
	stop       Stop
	presenting bool
}

// Option configures a Session.
type Option func(*Session)

// WithPolicy sets the lockout policy. Zero fields fall back to DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(s *Session) { s.policy = p.withDefaults() }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithMonitor sets the monitor started on every entry to Armed.
func WithMonitor(m Monitor) Option {
	return func(s *Session) { s.monitor = m }
}

// WithPresenter sets the surface acquired on every entry to Armed.
func WithPresenter(p Presenter) Option {
	return func(s *Session) { s.presenter = p }
}

// WithObserver sets the notification sink.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithReverify sets a hook that re-decrypts the document on every entry to
// Armed. If the hook fails the session stays Locked.
func WithReverify(f func() ([]byte, error)) Option {
	return func(s *Session) { s.reverify = f }
}

// WithWatermark sets the identity overlaid on rendered content.
func WithWatermark(w Watermark) Option {
	return func(s *Session) { s.watermark = w }
}

// Open returns a Locked session owning plaintext.
func Open(plaintext []byte, opts ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		state:       Locked,
		plaintext:   plaintext,
		contentType: DetectContentType(plaintext),
		policy:      DefaultPolicy(),
		clock:       RealClock(),
		monitor:     nopMonitor{},
		presenter:   nopPresenter{},
		observer:    NopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.watermark.Issued.IsZero() {
		s.watermark.Issued = s.clock.Now()
	}
	return s
}

// ID returns the session identifier used in ledger events.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ViolationCount returns the number of violations recorded so far.
func (s *Session) ViolationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Violations returns a copy of the recorded violations in order.
func (s *Session) Violations() []Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Violation, len(s.violations))
	copy(out, s.violations)
	return out
}

// Viewed returns the total time spent Armed or Blurred.
func (s *Session) Viewed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewedLocked()
}

// EnterSecureMode moves a Locked session to Armed. It acquires the
// presenter and starts the monitor; failure of either is reported as a
// warning and the session still arms. When a reverify hook is set the
// document is decrypted again first, and any failure leaves the session
// Locked.
func (s *Session) EnterSecureMode() error {
	s.mu.Lock()
	if s.state != Locked || s.entering {
		from := s.state
		s.mu.Unlock()
		return fmt.Errorf("enter secure mode from %s: %w", from, kerrors.ErrInvalidTransition)
	}
	s.entering = true
	reverify := s.reverify
	s.mu.Unlock()

	var fresh []byte
	if reverify != nil {
		p, err := reverify()
		if err != nil {
			s.mu.Lock()
			s.entering = false
			s.mu.Unlock()
			return fmt.Errorf("failed to verify document: %w", err)
		}
		fresh = p
	}

	var notices []notice
	presenting := true
	if err := s.presenter.Acquire(); err != nil {
		presenting = false
		notices = append(notices, warning(fmt.Sprintf("Full-screen presentation unavailable: %v", err)))
	}

	s.mu.Lock()
	s.entering = false
	if s.state != Locked {
		// Disposed while verifying.
		from := s.state
		s.mu.Unlock()
		crypto.Wipe(fresh)
		if presenting {
			s.presenter.Release()
		}
		return fmt.Errorf("enter secure mode from %s: %w", from, kerrors.ErrInvalidTransition)
	}
	if fresh != nil {
		crypto.Wipe(s.plaintext)
		s.plaintext = fresh
		s.contentType = DetectContentType(fresh)
	}
	s.state = Armed
	s.armedAt = s.clock.Now()
	s.scopeGen++
	gen := s.scopeGen
	s.scope = scope{presenting: presenting}
	notices = append(notices, stateChanged(Locked, Armed, s.count))
	s.mu.Unlock()

	s.notify(notices)

	stop, err := s.monitor.Start(func(v Violation) { s.record(v, gen, true) })
	if err != nil {
		s.notify([]notice{warning(fmt.Sprintf("Violation monitor unavailable: %v", err))})
		return nil
	}

	s.mu.Lock()
	if s.scopeGen != gen {
		// Exited or terminated while starting.
		s.mu.Unlock()
		stop()
		return nil
	}
	s.scope.stop = stop
	s.mu.Unlock()
	return nil
}

// ViolationDetected records a violation of kind. It is ignored while Locked
// and after termination.
func (s *Session) ViolationDetected(kind ViolationKind) {
	s.record(Violation{Kind: kind}, 0, false)
}

// ExitSecureMode returns an Armed or Blurred session to Locked, releasing
// the presenter and stopping the monitor. The plaintext is kept. A pending
// termination still fires.
func (s *Session) ExitSecureMode() error {
	s.mu.Lock()
	from := s.state
	if from != Armed && from != Blurred {
		s.mu.Unlock()
		return fmt.Errorf("exit secure mode from %s: %w", from, kerrors.ErrInvalidTransition)
	}
	s.stopCoolDownLocked()
	s.viewed = s.viewedLocked()
	s.state = Locked
	sc := s.takeScopeLocked()
	notices := []notice{stateChanged(from, Locked, s.count)}
	s.mu.Unlock()

	s.release(sc)
	s.notify(notices)
	return nil
}

// Dispose terminates the session from any state. It is idempotent.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.state == Terminated {
		s.mu.Unlock()
		return
	}
	sc, notices := s.terminateLocked("session closed")
	s.mu.Unlock()

	s.release(sc)
	s.notify(notices)
}

// Render writes the current view to w. Document bytes are written only
// while Armed. w must not call back into the session.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Armed:
		return renderArmed(w, s.plaintext, s.contentType, s.watermark)
	case Blurred:
		return renderBlurred(w, s.count, s.policy.MaxViolations)
	case Locked:
		return renderLocked(w)
	default:
		return renderTerminated(w)
	}
}

func (s *Session) record(v Violation, gen uint64, scoped bool) {
	s.mu.Lock()
	if scoped && gen != s.scopeGen {
		s.mu.Unlock()
		return
	}
	if s.state != Armed && s.state != Blurred {
		s.mu.Unlock()
		return
	}

	if v.At.IsZero() {
		v.At = s.clock.Now()
	}
	s.count++
	s.violations = append(s.violations, v)
	count := s.count
	limit := s.policy.MaxViolations

	notices := []notice{violationRecorded(v, count)}
	if s.state == Armed {
		s.state = Blurred
		notices = append(notices, stateChanged(Armed, Blurred, count))
		s.coolGen++
		g := s.coolGen
		s.coolDown = s.clock.AfterFunc(s.policy.CoolDown, func() { s.coolDownElapsed(g) })
	}

	switch {
	case count >= limit && s.grace == nil:
		s.graceGen++
		g := s.graceGen
		s.grace = s.clock.AfterFunc(s.policy.TerminationGrace, func() { s.graceElapsed(g) })
		notices = append(notices, warning(fmt.Sprintf(
			"Maximum violations reached. This session will end in %s.", s.policy.TerminationGrace)))
	case count < limit:
		notices = append(notices, warning(fmt.Sprintf(
			"Security violation detected: %s (%d/%d).", v.Kind, count, limit)))
	}
	s.mu.Unlock()

	s.notify(notices)
}

func (s *Session) coolDownElapsed(gen uint64) {
	s.mu.Lock()
	if gen != s.coolGen || s.state != Blurred {
		s.mu.Unlock()
		return
	}
	s.coolDown = nil
	if s.count >= s.policy.MaxViolations {
		// Wait for the grace timer.
		s.mu.Unlock()
		return
	}
	s.state = Armed
	notices := []notice{stateChanged(Blurred, Armed, s.count)}
	s.mu.Unlock()

	s.notify(notices)
}

func (s *Session) graceElapsed(gen uint64) {
	s.mu.Lock()
	if gen != s.graceGen || s.state == Terminated {
		s.mu.Unlock()
		return
	}
	sc, notices := s.terminateLocked("too many security violations")
	s.mu.Unlock()

	s.release(sc)
	s.notify(notices)
}

// terminateLocked moves to Terminated and discards the plaintext. The
// returned scope must be released after unlocking.
func (s *Session) terminateLocked(reason string) (scope, []notice) {
	from := s.state
	s.stopCoolDownLocked()
	if s.grace != nil {
		s.grace.Stop()
		s.grace = nil
	}
	s.graceGen++
	s.viewed = s.viewedLocked()
	s.state = Terminated

	crypto.Wipe(s.plaintext)
	s.plaintext = nil

	sc := s.takeScopeLocked()
	return sc, []notice{
		stateChanged(from, Terminated, s.count),
		terminated(reason, s.viewed),
	}
}

func (s *Session) stopCoolDownLocked() {
	if s.coolDown != nil {
		s.coolDown.Stop()
		s.coolDown = nil
	}
	s.coolGen++
}

func (s *Session) takeScopeLocked() scope {
	sc := s.scope
	s.scope = scope{}
	s.scopeGen++
	return sc
}

func (s *Session) viewedLocked() time.Duration {
	if s.state == Armed || s.state == Blurred {
		return s.viewed + s.clock.Now().Sub(s.armedAt)
	}
	return s.viewed
}

func (s *Session) release(sc scope) {
	if sc.stop != nil {
		sc.stop()
	}
	if sc.presenting {
		s.presenter.Release()
	}
}

type notice func(Observer)

func stateChanged(from, to State, n int) notice {
	return func(o Observer) { o.StateChanged(from, to, n) }
}

func violationRecorded(v Violation, n int) notice {
	return func(o Observer) { o.ViolationRecorded(v, n) }
}

func warning(msg string) notice {
	return func(o Observer) { o.Warning(msg) }
}

func terminated(reason string, viewed time.Duration) notice {
	return func(o Observer) { o.Terminated(reason, viewed) }
}

func (s *Session) notify(notices []notice) {
	for _, n := range notices {
		s.deliver(n)
	}
}

// deliver isolates the session from a panicking observer.
func (s *Session) deliver(n notice) {
	defer func() { _ = recover() }()
	n(s.observer)
}

type nopMonitor struct{}

func (nopMonitor) Start(func(Violation)) (Stop, error) { return func() {}, nil }
