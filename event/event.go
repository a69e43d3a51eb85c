// Package event defines the lifecycle records emitted by the lazy loader.
// Sinks (stdout, webhook, SQLite, in-process callback) receive these; the
// loader itself never reads them back.
package event

import "time"

// Kind is the type of lifecycle step observed.
type Kind string

const (
	KindIndicators Kind = "indicators_installed" // loading icons swapped in
	KindLoaded     Kind = "content_loaded"       // real content installed on one element
	KindSkipped    Kind = "content_skipped"      // visible element whose content could not render
	KindScan       Kind = "scan"                 // one visibility pass finished
)

// Event is a single lifecycle record.
type Event struct {
	ID      string `json:"id"`                 // UUIDv7
	RunID   string `json:"run_id"`             // one per Loader.Initialize
	PageURL string `json:"page_url,omitempty"` // host page, when known
	Kind    Kind   `json:"kind"`
	Source  string `json:"source,omitempty"`  // data-lazy-load value
	Type    string `json:"type,omitempty"`    // img | iframe | offending type
	Trigger string `json:"trigger,omitempty"` // init | scroll | resize
	Count   int    `json:"count,omitempty"`   // elements considered
	Loaded  int    `json:"loaded,omitempty"`  // elements loaded during a scan
	Error   string `json:"error,omitempty"`
	At      int64  `json:"at"` // epoch milliseconds
}

// Now returns the current time in the Event.At unit.
func Now() int64 {
	return time.Now().UnixMilli()
}
