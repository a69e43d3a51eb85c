// Package sink defines output backends for lazy-load lifecycle events.
package sink

import (
	"context"

	"github.com/hazyhaar/lazyload/event"
)

// Sink is the output interface. Implementations deliver events to
// different backends (stdout, webhook, SQLite, in-process callback).
type Sink interface {
	Send(ctx context.Context, ev event.Event) error
	Close() error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Send(context.Context, event.Event) error { return nil }
func (Discard) Close() error                            { return nil }
