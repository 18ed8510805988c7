// Package util has a few things that don't belong anywhere else.
package util

import "log"

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf calls log.Printf.  Commands set it
// from their verbose flag.
var Logging = false

// Logf calls log.Printf if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}

// Warnf always logs, with a "warning: " prefix.
func Warnf(format string, args ...interface{}) {
	log.Printf("warning: "+format, args...)
}
