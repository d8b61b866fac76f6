// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "time"

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to block for the duration of their work
// or spawn goroutines internally.
type Worker interface {
	Run()
}

// Sweeper is a store holding records that expire on their own: the janitor
// periodically asks each registered sweeper to drop everything expired at
// the given instant and report how much was removed.
type Sweeper interface {
	Sweep(now time.Time) int
}
