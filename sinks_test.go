package lazyload

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/lazyload/event"
)

func TestSinksFrom(t *testing.T) {
	dir := t.TempDir()
	sinks, err := SinksFrom([]SinkConfig{
		{Type: "stdout"},
		{Type: "sqlite", Path: filepath.Join(dir, "a", "events.db"), BusyTimeout: 3 * time.Second, Synchronous: "full"},
	}, quiet)
	if err != nil {
		t.Fatal(err)
	}
	defer closeAll(sinks)
	if len(sinks) != 2 {
		t.Fatalf("sinks: got %d, want 2", len(sinks))
	}
	if err := sinks[1].Send(context.Background(), event.Event{ID: "e1", RunID: "r1", Kind: event.KindScan}); err != nil {
		t.Errorf("sqlite Send: %v", err)
	}
}

func TestSinksFrom_DefaultAndUnknown(t *testing.T) {
	sinks, err := SinksFrom(nil, quiet)
	if err != nil || len(sinks) != 1 {
		t.Errorf("no config: got %d sinks, err %v, want one stdout sink", len(sinks), err)
	}
	if _, err := SinksFrom([]SinkConfig{{Type: "kafka"}}, quiet); err == nil {
		t.Error("unknown type: got nil error")
	}
}
