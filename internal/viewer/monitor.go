package viewer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Stop tears down an active monitor. It is safe to call more than once.
type Stop func()

// Monitor watches the environment while a session is armed. Start is called
// on entry to Armed; the returned Stop is called on every exit path.
type Monitor interface {
	Start(report func(Violation)) (Stop, error)
}

// ErrMonitorActive is returned when Start is called on a running monitor.
var ErrMonitorActive = errors.New("monitor already active")

// Event is a raw signal from the viewing environment.
type Event interface {
	event()
}

// KeyEvent is a key press. Key is lower case for letters and the key name
// otherwise ("F12", "PrintScreen").
type KeyEvent struct {
	Key  string
	Ctrl bool
	Meta bool
}

// ClipboardEvent is a copy, cut or paste attempt.
type ClipboardEvent struct {
	Action string
}

// ContextMenuEvent is a request for the context menu.
type ContextMenuEvent struct{}

// FocusEvent reports a focus or visibility change.
type FocusEvent struct {
	Focused bool
}

// ViewportEvent reports outer and inner viewport dimensions.
type ViewportEvent struct {
	OuterWidth, OuterHeight int
	InnerWidth, InnerHeight int
}

// DragEvent is a default drag or drop on viewer content.
type DragEvent struct {
	Drop bool
}

// SelectEvent is a text selection attempt.
type SelectEvent struct{}

func (KeyEvent) event()         {}
func (ClipboardEvent) event()   {}
func (ContextMenuEvent) event() {}
func (FocusEvent) event()       {}
func (ViewportEvent) event()    {}
func (DragEvent) event()        {}
func (SelectEvent) event()      {}

// Detector classifies an Event. It returns false when the event is not a
// violation.
type Detector func(Event) (Violation, bool)

// DefaultDetectors returns the detector set for p.
func DefaultDetectors(p Policy) []Detector {
	p = p.withDefaults()
	return []Detector{
		KeyboardDetector,
		ClipboardDetector,
		ContextMenuDetector,
		FocusDetector,
		DevToolsDetector(p.DevToolsThreshold),
		DragDetector,
		SelectDetector,
	}
}

var ctrlKeyViolations = map[string]ViolationKind{
	"c": ViolationCopy,
	"x": ViolationCut,
	"v": ViolationPaste,
	"a": ViolationSelectAll,
	"p": ViolationPrint,
	"s": ViolationSave,
	"u": ViolationViewSource,
}

// KeyboardDetector flags print, save, select-all, clipboard and inspection
// key combinations.
func KeyboardDetector(ev Event) (Violation, bool) {
	k, ok := ev.(KeyEvent)
	if !ok {
		return Violation{}, false
	}

	switch k.Key {
	case "PrintScreen":
		return Violation{Kind: ViolationCapture, Detail: "Print Screen key pressed"}, true
	case "F12":
		return Violation{Kind: ViolationDevTools, Detail: "F12 pressed"}, true
	}

	if !k.Ctrl && !k.Meta {
		return Violation{}, false
	}
	kind, ok := ctrlKeyViolations[strings.ToLower(k.Key)]
	if !ok {
		return Violation{}, false
	}
	return Violation{Kind: kind, Detail: fmt.Sprintf("Ctrl+%s blocked", strings.ToUpper(k.Key))}, true
}

// ClipboardDetector flags clipboard operations.
func ClipboardDetector(ev Event) (Violation, bool) {
	c, ok := ev.(ClipboardEvent)
	if !ok {
		return Violation{}, false
	}
	switch c.Action {
	case "copy":
		return Violation{Kind: ViolationCopy, Detail: "copy operation blocked"}, true
	case "cut":
		return Violation{Kind: ViolationCut, Detail: "cut operation blocked"}, true
	case "paste":
		return Violation{Kind: ViolationPaste, Detail: "paste operation blocked"}, true
	}
	return Violation{}, false
}

// ContextMenuDetector flags context menu requests.
func ContextMenuDetector(ev Event) (Violation, bool) {
	if _, ok := ev.(ContextMenuEvent); !ok {
		return Violation{}, false
	}
	return Violation{Kind: ViolationContextMenu, Detail: "context menu blocked"}, true
}

// FocusDetector flags loss of focus or visibility.
func FocusDetector(ev Event) (Violation, bool) {
	f, ok := ev.(FocusEvent)
	if !ok || f.Focused {
		return Violation{}, false
	}
	return Violation{Kind: ViolationFocusLost, Detail: "window lost focus"}, true
}

// DevToolsDetector flags a viewport whose outer and inner sizes differ by
// more than threshold, the signature of a docked inspection pane.
func DevToolsDetector(threshold int) Detector {
	return func(ev Event) (Violation, bool) {
		v, ok := ev.(ViewportEvent)
		if !ok {
			return Violation{}, false
		}
		if v.OuterWidth-v.InnerWidth > threshold || v.OuterHeight-v.InnerHeight > threshold {
			return Violation{Kind: ViolationDevTools, Detail: "developer tools detected"}, true
		}
		return Violation{}, false
	}
}

// DragDetector flags drag and drop on viewer content.
func DragDetector(ev Event) (Violation, bool) {
	d, ok := ev.(DragEvent)
	if !ok {
		return Violation{}, false
	}
	if d.Drop {
		return Violation{Kind: ViolationDrag, Detail: "drop blocked"}, true
	}
	return Violation{Kind: ViolationDrag, Detail: "drag blocked"}, true
}

// SelectDetector flags text selection.
func SelectDetector(ev Event) (Violation, bool) {
	if _, ok := ev.(SelectEvent); !ok {
		return Violation{}, false
	}
	return Violation{Kind: ViolationSelectAll, Detail: "text selection blocked"}, true
}

// Classify runs detectors in order and returns the first violation. A
// panicking detector counts as no violation.
func Classify(detectors []Detector, ev Event) (Violation, bool) {
	for _, d := range detectors {
		if v, ok := safeDetect(d, ev); ok {
			return v, true
		}
	}
	return Violation{}, false
}

func safeDetect(d Detector, ev Event) (v Violation, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = Violation{}, false
		}
	}()
	return d(ev)
}

// EventMonitor is a Monitor fed by an external event source. Dispatch
// classifies synchronously on the caller's goroutine, so events reach the
// session in delivery order.
type EventMonitor struct {
	mu        sync.Mutex
	detectors []Detector
	report    func(Violation)
}

// NewEventMonitor returns a monitor using detectors.
func NewEventMonitor(detectors ...Detector) *EventMonitor {
	return &EventMonitor{detectors: detectors}
}

// Start activates the monitor.
func (m *EventMonitor) Start(report func(Violation)) (Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.report != nil {
		return nil, ErrMonitorActive
	}
	m.report = report

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.report = nil
			m.mu.Unlock()
		})
	}, nil
}

// Active reports whether the monitor is started.
func (m *EventMonitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report != nil
}

// Dispatch delivers ev. It returns true if ev was reported as a violation.
// Events arriving while the monitor is stopped are dropped.
func (m *EventMonitor) Dispatch(ev Event) bool {
	m.mu.Lock()
	report := m.report
	m.mu.Unlock()

	if report == nil {
		return false
	}
	v, ok := Classify(m.detectors, ev)
	if !ok {
		return false
	}
	return safeReport(report, v)
}

func safeReport(report func(Violation), v Violation) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	report(v)
	return true
}
