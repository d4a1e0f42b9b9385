package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	Verbose bool
	Debug   bool

	// Out and Err default to stdout and stderr.
	Out io.Writer
	Err io.Writer
}

func (l Logger) out() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stdout
}

func (l Logger) err() io.Writer {
	if l.Err != nil {
		return l.Err
	}
	return os.Stderr
}

func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose || l.Debug {
		fmt.Fprintf(l.out(), color.GreenString("[info] ")+msg+"\n", args...)
	}
}

func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		fmt.Fprintf(l.out(), color.CyanString("[debug] ")+msg+"\n", args...)
	}
}

func (l Logger) Warnf(msg string, args ...any) {
	if l.Verbose || l.Debug {
		fmt.Fprintf(l.err(), color.YellowString("[warn] ")+msg+"\n", args...)
	}
}

func (l Logger) WarnfAlways(msg string, args ...any) {
	fmt.Fprintf(l.err(), color.YellowString("[warn] ")+msg+"\n", args...)
}

func (l Logger) Errorf(msg string, args ...any) {
	fmt.Fprintf(l.err(), color.RedString("[error] ")+msg+"\n", args...)
}

// ErrorfAndReturn logs the message and returns it as an error.
func (l Logger) ErrorfAndReturn(msg string, args ...any) error {
	l.Errorf(msg, args...)
	return fmt.Errorf(msg, args...)
}

// Logrus returns a logrus logger writing to the error stream at a level
// matching the flags: debug, info with --verbose, warn otherwise.
func (l Logger) Logrus() *logrus.Logger {
	lr := logrus.New()
	lr.SetOutput(l.err())
	lr.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !l.Debug})
	switch {
	case l.Debug:
		lr.SetLevel(logrus.DebugLevel)
	case l.Verbose:
		lr.SetLevel(logrus.InfoLevel)
	default:
		lr.SetLevel(logrus.WarnLevel)
	}
	return lr
}
