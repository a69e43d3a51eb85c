package lazyload

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hazyhaar/lazyload/dbopen"
	"github.com/hazyhaar/lazyload/event"
	"github.com/hazyhaar/lazyload/internal/sink"
)

// Sink is the output interface for loader lifecycle events.
type Sink = sink.Sink

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process sink calling fn for each event.
func NewCallbackSink(fn func(ctx context.Context, ev event.Event) error) Sink {
	return sink.NewCallback(fn)
}

// NewSQLiteSink records events into db, creating the events table if needed.
func NewSQLiteSink(db *sql.DB) (Sink, error) {
	s, err := sink.NewSQLite(db)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMultiSink fans every event out to all of sinks.
func NewMultiSink(logger *slog.Logger, sinks ...Sink) Sink {
	return sink.NewRouter(logger, sinks...)
}

// OpenSQLiteSink opens the database at path and records events into it.
// Close closes the database.
func OpenSQLiteSink(path string) (Sink, error) {
	return openSQLite(SinkConfig{Type: "sqlite", Path: path})
}

func openSQLite(sc SinkConfig) (Sink, error) {
	var opts []dbopen.Option
	if sc.BusyTimeout > 0 {
		opts = append(opts, dbopen.WithBusyTimeout(int(sc.BusyTimeout.Milliseconds())))
	}
	if sc.Synchronous != "" {
		opts = append(opts, dbopen.WithSynchronous(strings.ToUpper(sc.Synchronous)))
	}
	s, err := sink.OpenSQLite(sc.Path, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SinksFrom builds the configured sinks. With none configured, events go
// to stdout.
func SinksFrom(cfgs []SinkConfig, logger *slog.Logger) ([]Sink, error) {
	var sinks []Sink
	for _, sc := range cfgs {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink(nil))
		case "webhook":
			sinks = append(sinks, NewWebhookSink(sc.URL, logger))
		case "sqlite":
			s, err := openSQLite(sc)
			if err != nil {
				closeAll(sinks)
				return nil, err
			}
			sinks = append(sinks, s)
		default:
			closeAll(sinks)
			return nil, fmt.Errorf("lazyload: unknown sink type %q", sc.Type)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, NewStdoutSink(nil))
	}
	return sinks, nil
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		s.Close()
	}
}
