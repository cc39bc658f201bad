package core

import "time"

// Clock provides the current time in seconds since the Unix epoch.
// This interface enables dependency injection for deterministic testing.
type Clock interface {
	Now() int64
}

// systemClock wraps the wall clock for production use
type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().Unix()
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return systemClock{}
}
