// Package monitoring holds the diagnostic logger shared by the analysis
// commands.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs a degraded-confidence condition that does not stop the run,
// such as an analysis window placed on the fallback anchor.
func Warnf(format string, v ...interface{}) {
	Logf("WARNING: "+format, v...)
}
