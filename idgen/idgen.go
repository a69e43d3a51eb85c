// Package idgen produces the identifiers stamped on lazy-load runs and
// events. Run IDs group every event emitted by one Loader.Initialize.
package idgen

import (
	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable, so events from one run sort in emission order.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is UUIDv7.
var Default Generator = UUIDv7()

// New produces an event ID using the Default generator.
func New() string {
	return Default()
}

// NewRun produces a run ID ("run_" + UUIDv7).
func NewRun() string {
	return Prefixed("run_", Default)()
}
