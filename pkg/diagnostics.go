package kscope

import (
	"fmt"
	"io"
	"os"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// DiagnosticSink receives every message the compiler emits. Formatting and
// routing are up to the implementation.
type DiagnosticSink interface {
	Report(sev Severity, msg string)
}

type discardSink struct{}

func (discardSink) Report(Severity, string) {}

// DiscardSink drops all diagnostics.
var DiscardSink DiagnosticSink = discardSink{}

// WriterSink prints info messages to Info and everything else to Err.
type WriterSink struct {
	Info  io.Writer
	Err   io.Writer
	Quiet bool
}

func NewStdSink() *WriterSink {
	return &WriterSink{
		Info: os.Stdout,
		Err:  os.Stderr,
	}
}

func (s *WriterSink) Report(sev Severity, msg string) {
	if sev == SeverityInfo {
		if s.Quiet || s.Info == nil {
			return
		}

		fmt.Fprintf(s.Info, "%s: %s\n", sev, msg)
		return
	}

	if s.Err != nil {
		fmt.Fprintf(s.Err, "%s: %s\n", sev, msg)
	}
}
