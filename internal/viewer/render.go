package viewer

import (
	"bytes"
	"fmt"
	"io"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PolarWolf314/docuvault/internal/crypto"
)

// DeterrenceNotice is shown before a document is armed.
const DeterrenceNotice = "Screen capture cannot be prevented. Detected attempts " +
	"blur the document, repeated attempts end the session, and every attempt is recorded."

// Watermark identifies the viewer on every rendered page.
type Watermark struct {
	Account string
	Issued  time.Time
}

// String returns "<account> - <RFC3339 time>".
func (w Watermark) String() string {
	account := w.Account
	if account == "" {
		account = "anonymous"
	}
	return fmt.Sprintf("%s - %s", account, w.Issued.UTC().Format(time.RFC3339))
}

// ContentType is the detected format of a document.
type ContentType string

const (
	ContentText ContentType = "text"
	ContentHTML ContentType = "html"
	ContentPDF  ContentType = "pdf"
)

// DetectContentType sniffs b. Anything that is neither PDF nor HTML is text.
func DetectContentType(b []byte) ContentType {
	switch {
	case bytes.HasPrefix(b, []byte("%PDF")):
		return ContentPDF
	case bytes.Contains(b, []byte("<html")):
		return ContentHTML
	default:
		return ContentText
	}
}

func renderArmed(w io.Writer, plaintext []byte, ct ContentType, wm Watermark) error {
	banner := fmt.Sprintf("[ %s ]\n", wm)
	if _, err := io.WriteString(w, banner); err != nil {
		return err
	}

	if ct == ContentPDF {
		if _, err := fmt.Fprintf(w, "PDF document (%d bytes) cannot be shown in a terminal.\n", len(plaintext)); err != nil {
			return err
		}
	} else {
		text := sanitize(plaintext)
		defer crypto.Wipe(text)
		if _, err := w.Write(text); err != nil {
			return err
		}
		if len(text) > 0 && text[len(text)-1] != '\n' {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, banner)
	return err
}

// sanitize returns a copy of b in which every control character except
// newline and tab is dropped or made visible, so a document cannot emit
// escape sequences of its own.
func sanitize(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		r, n := utf8.DecodeRune(b)
		switch {
		case r == '\n' || r == '\t':
			out = append(out, byte(r))
		case r == '\r':
		case r < 0x20:
			out = append(out, '^', byte(r)+0x40)
		case r == 0x7f:
			out = append(out, '^', '?')
		case r == utf8.RuneError && n == 1, unicode.IsControl(r):
			out = utf8.AppendRune(out, utf8.RuneError)
		default:
			out = append(out, b[:n]...)
		}
		b = b[n:]
	}
	return out
}

func renderBlurred(w io.Writer, count, limit int) error {
	_, err := fmt.Fprintf(w, "Content hidden: security violation #%d of %d.\n", count, limit)
	return err
}

func renderLocked(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Press 'e' to enter secure mode, 'q' to quit.\n%s\n", DeterrenceNotice)
	return err
}

func renderTerminated(w io.Writer) error {
	_, err := io.WriteString(w, "Session terminated. The document is no longer available.\n")
	return err
}
