package rodpage

import (
	"strings"
	"testing"

	"github.com/hazyhaar/lazyload/document"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		payload string
		want    document.Trigger
		ok      bool
	}{
		{"scroll", document.TriggerScroll, true},
		{"resize", document.TriggerResize, true},
		{"click", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseTrigger(tt.payload)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseTrigger(%q): got %v, %v, want %v, %v", tt.payload, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSelector(t *testing.T) {
	if got := selector(document.AttrSource); got != "[data-lazy-load]" {
		t.Errorf("selector: got %q, want %q", got, "[data-lazy-load]")
	}
	want := "[data-lazy-load]:not([data-content-loaded]):not([data-content-skipped])"
	if got := pendingSelector(); got != want {
		t.Errorf("pendingSelector: got %q, want %q", got, want)
	}
}

func TestListenScriptsUseBinding(t *testing.T) {
	if !strings.Contains(listenJS, "window."+BindingName+"(kind)") {
		t.Error("listen script does not call the binding")
	}
	for _, ev := range []string{"'scroll'", "'resize'"} {
		if !strings.Contains(listenJS, ev) || !strings.Contains(unlistenJS, strings.Trim(ev, "'")) {
			t.Errorf("scripts do not handle %s", ev)
		}
	}
}
