package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when an interactive terminal is required.
var ErrNotTerminal = errors.New("not a terminal")

const (
	enterAltScreen = "\x1b[?1049h"
	leaveAltScreen = "\x1b[?1049l"
	enableFocus    = "\x1b[?1004h"
	disableFocus   = "\x1b[?1004l"
	clearScreen    = "\x1b[H\x1b[2J"
)

// TerminalPresenter takes over the terminal with the alternate screen
// buffer and turns on xterm focus reporting.
type TerminalPresenter struct {
	Out *os.File
}

func (p *TerminalPresenter) Acquire() error {
	if p.Out == nil || !term.IsTerminal(int(p.Out.Fd())) {
		return ErrNotTerminal
	}
	_, err := io.WriteString(p.Out, enterAltScreen+enableFocus)
	return err
}

func (p *TerminalPresenter) Release() {
	if p.Out == nil {
		return
	}
	_, _ = io.WriteString(p.Out, disableFocus+leaveAltScreen)
}

var escapeEvents = []struct {
	seq string
	ev  Event
}{
	{"\x1b[I", FocusEvent{Focused: true}},
	{"\x1b[O", FocusEvent{Focused: false}},
	{"\x1b[24~", KeyEvent{Key: "F12"}},
	{"\x1b[200~", ClipboardEvent{Action: "paste"}},
}

// DecodeInput turns raw terminal input into events. Control bytes become
// Ctrl key events, known escape sequences become focus, F12 and paste
// events, and unknown CSI sequences are dropped.
func DecodeInput(b []byte) []Event {
	var events []Event
	for len(b) > 0 {
		if b[0] == 0x1b {
			ev, n := decodeEscape(b)
			if ev != nil {
				events = append(events, ev)
			}
			b = b[n:]
			continue
		}

		if b[0] >= 0x01 && b[0] <= 0x1a {
			events = append(events, KeyEvent{Key: string(rune('a' + b[0] - 1)), Ctrl: true})
			b = b[1:]
			continue
		}

		r, n := utf8.DecodeRune(b)
		b = b[n:]
		if r == utf8.RuneError || r < 0x20 || r == 0x7f {
			continue
		}
		events = append(events, KeyEvent{Key: string(r)})
	}
	return events
}

func decodeEscape(b []byte) (Event, int) {
	for _, e := range escapeEvents {
		if bytes.HasPrefix(b, []byte(e.seq)) {
			return e.ev, len(e.seq)
		}
	}
	if len(b) < 2 || b[1] != '[' {
		return nil, 1
	}
	// Skip parameters up to the CSI final byte.
	for i := 2; i < len(b); i++ {
		if b[i] >= 0x40 && b[i] <= 0x7e {
			return nil, i + 1
		}
	}
	return nil, len(b)
}

// Terminal runs a Session interactively: 'e' enters secure mode, 'q' exits
// it or quits from Locked, and every other input is dispatched to Monitor.
type Terminal struct {
	In      *os.File
	Out     *os.File
	Monitor *EventMonitor

	// PollInterval controls how often the window size and session state
	// are checked. Defaults to 250ms.
	PollInterval time.Duration
}

// Run drives s until it terminates, the user quits, or ctx is done.
func (t *Terminal) Run(ctx context.Context, s *Session) error {
	inFd := int(t.In.Fd())
	if !term.IsTerminal(inFd) {
		return ErrNotTerminal
	}
	oldState, err := term.MakeRaw(inFd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer func() { _ = term.Restore(inFd, oldState) }()

	interval := t.PollInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	done := make(chan struct{})
	defer close(done)
	_ = t.In.SetReadDeadline(time.Time{})
	defer unblockReader(t.In)
	events := make(chan Event, 16)
	go readEvents(t.In, events, done)

	out := &crlfWriter{w: t.Out}
	draw := func() {
		_, _ = io.WriteString(t.Out, clearScreen)
		_ = s.Render(out)
	}

	outFd := int(t.Out.Fd())
	var vp viewportWatch
	vp.reset(term.GetSize(outFd))
	lastState, lastCount := s.State(), s.ViolationCount()
	draw()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			dirty = true
			if k, isKey := ev.(KeyEvent); isKey && !k.Ctrl && !k.Meta {
				switch k.Key {
				case "e":
					if s.State() == Locked {
						if err := s.EnterSecureMode(); err != nil {
							return err
						}
						vp.reset(term.GetSize(outFd))
					}
				case "q":
					if s.State() == Locked {
						return nil
					}
					_ = s.ExitSecureMode()
				}
			} else if t.Monitor != nil {
				t.Monitor.Dispatch(ev)
			}

		case <-ticker.C:
			if w, h, err := term.GetSize(outFd); err == nil && t.Monitor != nil {
				vp.poll(w, h, t.Monitor.Dispatch)
			}
		}

		// Timers change state without input, so redraw on any change.
		st, n := s.State(), s.ViolationCount()
		if st != lastState || n != lastCount || dirty {
			lastState, lastCount, dirty = st, n, false
			draw()
		}
		if st == Terminated {
			return nil
		}
	}
}

// viewportWatch compares the window size with the size recorded at
// arming. Once a changed size has produced a violation it is not reported
// again until the window returns to the recorded size.
type viewportWatch struct {
	baseW, baseH int
	known        bool
	flagged      bool
}

func (v *viewportWatch) reset(w, h int, err error) {
	v.baseW, v.baseH, v.known, v.flagged = w, h, err == nil, false
}

// poll checks one size sample and passes a ViewportEvent to dispatch when
// the size differs from the base and no violation is outstanding.
func (v *viewportWatch) poll(w, h int, dispatch func(Event) bool) {
	if !v.known {
		v.reset(w, h, nil)
		return
	}
	if w == v.baseW && h == v.baseH {
		v.flagged = false
		return
	}
	if v.flagged {
		return
	}
	v.flagged = dispatch(ViewportEvent{
		OuterWidth: v.baseW, OuterHeight: v.baseH,
		InnerWidth: w, InnerHeight: h,
	})
}

// unblockReader ends a pending Read on f by expiring its deadline. Files
// without deadline support, such as a blocking stdin, keep the reader
// goroutine parked until the next byte of input arrives; it then exits
// without delivering anything.
func unblockReader(f *os.File) bool {
	return f.SetReadDeadline(time.Now()) == nil
}

func readEvents(r io.Reader, events chan<- Event, done <-chan struct{}) {
	defer close(events)
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		for _, ev := range DecodeInput(buf[:n]) {
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// crlfWriter translates LF to CRLF for a terminal in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
