// Package monitoring holds the process-wide diagnostic logger. The
// analysis pipeline reports progress and data-quality counters through
// Logf so batch runs narrate themselves while tests can mute the noise.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Mute silences the logger and returns a function restoring whatever
// logger was installed before. Intended for tests that drive the whole
// pipeline and do not want its progress narration in the test output.
func Mute() func() {
	prev := Logf
	Logf = func(string, ...interface{}) {}
	return func() { Logf = prev }
}
