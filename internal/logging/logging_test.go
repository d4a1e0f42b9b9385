package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		logger    Logger
		wantInfo  bool
		wantDebug bool
		wantWarn  bool
	}{
		{"quiet", Logger{}, false, false, false},
		{"verbose", Logger{Verbose: true}, true, false, true},
		{"debug", Logger{Debug: true}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := tt.logger
			l.Out, l.Err = &out, &errOut

			l.Infof("info %d", 1)
			l.Debugf("debug %d", 2)
			l.Warnf("warn %d", 3)

			if got := strings.Contains(out.String(), "info 1"); got != tt.wantInfo {
				t.Errorf("info shown = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out.String(), "debug 2"); got != tt.wantDebug {
				t.Errorf("debug shown = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(errOut.String(), "warn 3"); got != tt.wantWarn {
				t.Errorf("warn shown = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestLogger_AlwaysShown(t *testing.T) {
	var errOut bytes.Buffer
	l := Logger{Err: &errOut}

	l.WarnfAlways("ledger unavailable")
	err := l.ErrorfAndReturn("failed to open %s", "doc")

	if !strings.Contains(errOut.String(), "ledger unavailable") {
		t.Error("WarnfAlways output missing")
	}
	if !strings.Contains(errOut.String(), "failed to open doc") {
		t.Error("ErrorfAndReturn output missing")
	}
	if err == nil || err.Error() != "failed to open doc" {
		t.Errorf("Unexpected returned error: %v", err)
	}
}

func TestLogger_Logrus(t *testing.T) {
	if got := (Logger{}).Logrus().GetLevel(); got != logrus.WarnLevel {
		t.Errorf("Expected warn level by default, got %s", got)
	}
	if got := (Logger{Verbose: true}).Logrus().GetLevel(); got != logrus.InfoLevel {
		t.Errorf("Expected info level with verbose, got %s", got)
	}
	if got := (Logger{Debug: true}).Logrus().GetLevel(); got != logrus.DebugLevel {
		t.Errorf("Expected debug level with debug, got %s", got)
	}
}
