package process

import (
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output. Empty when Command.Stdout was set.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed or never started.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// Success reports whether the process exited with code 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// StderrTail returns the last max bytes of stderr, trimmed, for error messages.
func (r *Result) StderrTail(max int) string {
	if r == nil {
		return ""
	}
	s := strings.TrimSpace(string(r.Stderr))
	if max > 0 && len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
