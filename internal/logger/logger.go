// Package logger prints progress detail for vaultsync's long-running
// operations. Nothing is written unless verbose mode is switched on
// (the --verbose flag), at which point chunking, hashing and reconcile
// steps narrate themselves on stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var state = struct {
	sync.RWMutex
	verbose bool
	out     io.Writer
}{out: os.Stderr}

// SetVerbose switches verbose output on or off.
func SetVerbose(v bool) {
	state.Lock()
	state.verbose = v
	state.Unlock()
}

// IsVerbose reports whether verbose output is currently on.
func IsVerbose() bool {
	state.RLock()
	defer state.RUnlock()
	return state.verbose
}

// SetOutput redirects log output away from stderr. Tests use this to
// capture what a command would have printed.
func SetOutput(w io.Writer) {
	state.Lock()
	state.out = w
	state.Unlock()
}

// emit writes one prefixed line if verbose mode is on. The read lock
// covers the write itself so SetOutput never races a half-written line.
func emit(prefix, format string, args []any) {
	state.RLock()
	defer state.RUnlock()
	if !state.verbose {
		return
	}
	fmt.Fprintf(state.out, prefix+format+"\n", args...)
}

// Debug logs fine-grained pipeline detail, one line per step.
func Debug(format string, args ...any) {
	emit("[DEBUG] ", format, args)
}

// Info logs progress milestones such as reconcile totals.
func Info(format string, args ...any) {
	emit("[INFO] ", format, args)
}

// Warn logs recoverable problems, such as a note that failed to embed
// and was skipped.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args)
}

// Section prints a banner separating phases of a verbose run.
func Section(name string) {
	state.RLock()
	defer state.RUnlock()
	if !state.verbose {
		return
	}
	fmt.Fprintf(state.out, "\n=== %s ===\n", name)
}
