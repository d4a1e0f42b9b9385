package viewer

import "time"

// State is the lifecycle state of a Session.
type State int

const (
	// Locked is the initial state: plaintext is held but never rendered.
	Locked State = iota
	// Armed renders plaintext with protections active.
	Armed
	// Blurred obscures content after a violation, protections still active.
	Blurred
	// Terminated is final: plaintext has been discarded.
	Terminated
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Armed:
		return "armed"
	case Blurred:
		return "blurred"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ViolationKind names a class of detected exfiltration attempt.
type ViolationKind string

const (
	ViolationCopy        ViolationKind = "copy"
	ViolationCut         ViolationKind = "cut"
	ViolationPaste       ViolationKind = "paste"
	ViolationContextMenu ViolationKind = "context_menu"
	ViolationPrint       ViolationKind = "print"
	ViolationSave        ViolationKind = "save"
	ViolationSelectAll   ViolationKind = "select_all"
	ViolationViewSource  ViolationKind = "view_source"
	ViolationFocusLost   ViolationKind = "focus_lost"
	ViolationDevTools    ViolationKind = "devtools"
	ViolationDrag        ViolationKind = "drag"
	ViolationCapture     ViolationKind = "screen_capture"
)

// Violation is a single detected attempt.
type Violation struct {
	Kind   ViolationKind
	Detail string
	At     time.Time
}

// Policy configures the lockout behaviour of a Session.
type Policy struct {
	// CoolDown is how long content stays blurred after entering Blurred.
	CoolDown time.Duration

	// TerminationGrace is the delay between reaching MaxViolations and termination.
	TerminationGrace time.Duration

	// MaxViolations is the violation count that schedules termination.
	MaxViolations int

	// DevToolsThreshold is the outer-minus-inner viewport delta that counts
	// as an open inspection pane.
	DevToolsThreshold int
}

// DefaultPolicy returns the reference lockout policy: a 3 second blur, a
// 5 second grace and termination on the third violation.
func DefaultPolicy() Policy {
	return Policy{
		CoolDown:          3 * time.Second,
		TerminationGrace:  5 * time.Second,
		MaxViolations:     3,
		DevToolsThreshold: 160,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.CoolDown <= 0 {
		p.CoolDown = d.CoolDown
	}
	if p.TerminationGrace <= 0 {
		p.TerminationGrace = d.TerminationGrace
	}
	if p.MaxViolations <= 0 {
		p.MaxViolations = d.MaxViolations
	}
	if p.DevToolsThreshold <= 0 {
		p.DevToolsThreshold = d.DevToolsThreshold
	}
	return p
}
