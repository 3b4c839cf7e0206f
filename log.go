package main

import "log"

// logf mirrors the teacher's own diagnostic style (plain fmt/log, no
// structured logging library) — see debug_monitor.go and main.go in the
// teacher repo, neither of which reaches for a logging framework.
func logf(format string, args ...interface{}) {
	log.Printf(format, args...)
}
