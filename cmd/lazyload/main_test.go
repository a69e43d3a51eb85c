package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/lazyload"
	"github.com/hazyhaar/lazyload/internal/export"
)

func TestResolve(t *testing.T) {
	base := "http://127.0.0.1:8080"
	tests := []struct{ in, want string }{
		{"", base + "/demo"},
		{"/a.html", base + "/a.html"},
		{"a.html", base + "/a.html"},
		{"https://example.com/x", "https://example.com/x"},
	}
	for _, tt := range tests {
		if got := resolve(base, tt.in); got != tt.want {
			t.Errorf("resolve(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunPrerender(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "page.html")
	page := `<html><body><div data-lazy-load="a.jpg" data-options="icon:big.gif">fallback</div><div data-lazy-load="b.jpg"></div></body></html>`
	if err := os.WriteFile(in, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out", "page.html")

	o := options{
		htmlPath: in,
		out:      out,
		format:   export.FormatHTML,
		settings: lazyload.SettingsConfig{Icon: "spin.gif"},
	}
	if err := runPrerender(context.Background(), o); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{`<img src="big.gif"/>`, `<img src="spin.gif"/>`, `data-icon-installed="true"`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %s:\n%s", want, got)
		}
	}
	if strings.Contains(got, "fallback") || strings.Contains(got, "data-content-loaded") {
		t.Errorf("prerender should only install indicators:\n%s", got)
	}
}

func TestFlagConfig(t *testing.T) {
	o := options{stealth: "plain", settings: lazyload.SettingsConfig{Offset: 200}}
	cfg, err := flagConfig(o, "http://x/page")
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.Pages[0]
	if p.URL != "http://x/page" || p.ID == "" || p.MaxScrolls != 50 || p.ScrollStep != 800 {
		t.Errorf("page: got %+v", p)
	}
	if cfg.PageSettings(p).Offset != 200 {
		t.Errorf("offset: got %d, want 200", cfg.PageSettings(p).Offset)
	}

	o.stealth = "headful"
	if _, err := flagConfig(o, "http://x"); err == nil {
		t.Error("flagConfig(headful): got nil error")
	}
}

func TestWatchPrerender(t *testing.T) {
	watchDelay = 20 * time.Millisecond
	dir := t.TempDir()
	in := filepath.Join(dir, "page.html")
	out := filepath.Join(dir, "dist", "page.html")
	if err := os.WriteFile(in, []byte(`<div data-lazy-load="a.jpg"></div>`), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	o := options{htmlPath: in, out: out, format: export.FormatHTML}
	go func() { done <- watchPrerender(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), o) }()

	waitForFile(t, out, `data-lazy-load="a.jpg"`)

	if err := os.WriteFile(in, []byte(`<div data-lazy-load="b.jpg"></div>`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForFile(t, out, `data-lazy-load="b.jpg"`)

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchPrerender: %v", err)
	}
}

func waitForFile(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("%s never contained %s", path, want)
}
