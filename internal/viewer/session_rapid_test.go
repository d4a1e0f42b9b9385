package viewer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// sessionModel mirrors the expected lockout behaviour under the default
// policy.
type sessionModel struct {
	h *harness

	state State
	count int
	now   time.Duration
	cool  time.Duration // zero when no cool-down is pending
	grace time.Duration // zero when no termination is pending
}

func (m *sessionModel) Enter(t *rapid.T) {
	err := m.h.session.EnterSecureMode()
	if m.state != Locked {
		if err == nil {
			t.Fatalf("EnterSecureMode from %s succeeded", m.state)
		}
		return
	}
	if err != nil {
		t.Fatalf("EnterSecureMode failed: %v", err)
	}
	m.state = Armed
}

func (m *sessionModel) Exit(t *rapid.T) {
	err := m.h.session.ExitSecureMode()
	if m.state != Armed && m.state != Blurred {
		if err == nil {
			t.Fatalf("ExitSecureMode from %s succeeded", m.state)
		}
		return
	}
	if err != nil {
		t.Fatalf("ExitSecureMode failed: %v", err)
	}
	m.state = Locked
	m.cool = 0
}

func (m *sessionModel) Violate(t *rapid.T) {
	m.h.session.ViolationDetected(ViolationCopy)
	if m.state != Armed && m.state != Blurred {
		return
	}
	m.count++
	if m.state == Armed {
		m.state = Blurred
		m.cool = m.now + 3*time.Second
	}
	if m.count >= 3 && m.grace == 0 {
		m.grace = m.now + 5*time.Second
	}
}

func (m *sessionModel) Advance(t *rapid.T) {
	d := time.Duration(rapid.IntRange(0, 4000).Draw(t, "ms")) * time.Millisecond
	m.h.clock.Advance(d)
	m.now += d

	if m.state == Terminated {
		return
	}
	if m.cool != 0 && m.cool <= m.now {
		m.cool = 0
		if m.state == Blurred && m.count < 3 {
			m.state = Armed
		}
	}
	if m.grace != 0 && m.grace <= m.now {
		m.state = Terminated
		m.cool, m.grace = 0, 0
	}
}

func (m *sessionModel) Dispose(t *rapid.T) {
	m.h.session.Dispose()
	m.state = Terminated
	m.cool, m.grace = 0, 0
}

func (m *sessionModel) Check(t *rapid.T) {
	s := m.h.session
	if got := s.State(); got != m.state {
		t.Fatalf("state = %s, want %s", got, m.state)
	}
	if got := s.ViolationCount(); got != m.count {
		t.Fatalf("count = %d, want %d", got, m.count)
	}

	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if shown := strings.Contains(buf.String(), secret); shown != (m.state == Armed) {
		t.Fatalf("plaintext shown=%v in state %s", shown, m.state)
	}

	scoped := m.state == Armed || m.state == Blurred
	if m.h.monitor.Active() != scoped {
		t.Fatalf("monitor active=%v in state %s", m.h.monitor.Active(), m.state)
	}
	if m.h.presenter.held() != scoped {
		t.Fatalf("presenter held=%v in state %s", m.h.presenter.held(), m.state)
	}
}

func TestProperty_SessionStateMachine(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := &sessionModel{h: newHarness(t), state: Locked}

		rt.Repeat(map[string]func(*rapid.T){
			"Enter": func(rt *rapid.T) {
				m.Enter(rt)
				m.Check(rt)
			},
			"Exit": func(rt *rapid.T) {
				m.Exit(rt)
				m.Check(rt)
			},
			"Violate": func(rt *rapid.T) {
				m.Violate(rt)
				m.Check(rt)
			},
			"Advance": func(rt *rapid.T) {
				m.Advance(rt)
				m.Check(rt)
			},
			"Dispose": func(rt *rapid.T) {
				if rapid.IntRange(0, 9).Draw(rt, "dispose") == 0 {
					m.Dispose(rt)
				}
				m.Check(rt)
			},
		})
	})
}
