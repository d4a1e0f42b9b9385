package viewer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

// Advance moves time forward and fires due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recorder struct {
	mu          sync.Mutex
	transitions []string
	violations  []int
	warnings    []string
	terminated  []string
	viewed      time.Duration
}

func (r *recorder) StateChanged(from, to State, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, fmt.Sprintf("%s->%s", from, to))
}

func (r *recorder) ViolationRecorded(_ Violation, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, count)
}

func (r *recorder) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

func (r *recorder) Terminated(reason string, viewed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminated = append(r.terminated, reason)
	r.viewed = viewed
}

func (r *recorder) count(transition string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, tr := range r.transitions {
		if tr == transition {
			n++
		}
	}
	return n
}

type fakePresenter struct {
	mu       sync.Mutex
	err      error
	acquired int
	released int
}

func (p *fakePresenter) Acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.acquired++
	return nil
}

func (p *fakePresenter) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *fakePresenter) held() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired > p.released
}

// captureMonitor keeps every report func it was started with.
type captureMonitor struct {
	mu      sync.Mutex
	reports []func(Violation)
	active  int
}

func (m *captureMonitor) Start(report func(Violation)) (Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	m.active++
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.active--
			m.mu.Unlock()
		})
	}, nil
}

type failingMonitor struct{}

func (failingMonitor) Start(func(Violation)) (Stop, error) {
	return nil, errors.New("no event source")
}

type panickingObserver struct {
	NopObserver
}

func (panickingObserver) StateChanged(State, State, int) {
	panic("observer bug")
}
