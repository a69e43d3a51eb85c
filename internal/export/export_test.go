package export

import (
	"strings"
	"testing"
)

const loaded = `<html><body><h1>Gallery</h1>
<div data-lazy-load="real.jpg" data-content-loaded="true"><img alt="A sunset" src="real.jpg"></div>
<div data-lazy-load="later.jpg"><img src="img/loading.gif"></div>
</body></html>`

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatHTML, true},
		{"HTML", FormatHTML, true},
		{"md", FormatMarkdown, true},
		{"markdown", FormatMarkdown, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err == nil) != tt.ok {
			t.Errorf("ParseFormat(%q): got %q, %v", tt.in, got, err)
		}
	}
}

func TestRender_HTMLPassthrough(t *testing.T) {
	got, err := New().Render(loaded, "", FormatHTML)
	if err != nil {
		t.Fatal(err)
	}
	if got != loaded {
		t.Error("HTML render changed the snapshot")
	}
}

func TestRender_Markdown(t *testing.T) {
	got, err := New().Render(loaded, "https://example.com", FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "# Gallery") {
		t.Errorf("heading missing: %q", got)
	}
	if !strings.Contains(got, "![A sunset](") || !strings.Contains(got, "real.jpg)") {
		t.Errorf("loaded image missing: %q", got)
	}
	if !strings.Contains(got, "loading.gif") {
		t.Errorf("indicator for unloaded placeholder missing: %q", got)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if _, err := New().Render(loaded, "", Format("pdf")); err == nil {
		t.Error("Render(pdf): got nil error")
	}
}
