// Command lazyload runs the lazy loader against real pages or HTML files.
//
// Usage:
//
//	lazyload -url https://example.com/gallery -out gallery.html
//	lazyload -serve ./fixtures -url /page.html     # serve a directory and load from it
//	lazyload -serve ""                              # built-in demo gallery
//	lazyload -config lazyload.yaml -out snapshots/
//	lazyload -html page.html -icon spin.gif         # offline prerender
//	lazyload -html page.html -out dist/page.html -watch
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hazyhaar/lazyload"
	"github.com/hazyhaar/lazyload/document"
	"github.com/hazyhaar/lazyload/idgen"
	"github.com/hazyhaar/lazyload/internal/export"
	"github.com/hazyhaar/lazyload/internal/htmldoc"
	"github.com/hazyhaar/lazyload/internal/site"
)

type options struct {
	configPath string
	url        string
	serveDir   string
	serve      bool
	htmlPath   string
	watch      bool
	out        string
	format     export.Format
	dbPath     string
	webhook    string
	remote     string
	stealth    string
	settings   lazyload.SettingsConfig
	throttle   time.Duration
	maxScrolls int
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to lazyload.yaml config file")
	flag.StringVar(&o.url, "url", "", "load a single URL (relative to -serve when set)")
	flag.StringVar(&o.serveDir, "serve", "", "serve this directory locally and load -url from it (empty string: demo page only)")
	flag.StringVar(&o.htmlPath, "html", "", "prerender an HTML file: install loading indicators and print it")
	flag.BoolVar(&o.watch, "watch", false, "with -html: prerender again whenever the file changes")
	flag.StringVar(&o.out, "out", "", "write the final snapshot to this file (directory in -config mode)")
	format := flag.String("format", "html", "snapshot format: html, markdown")
	flag.StringVar(&o.dbPath, "db", "", "also record events into this SQLite database")
	flag.StringVar(&o.webhook, "webhook", "", "also POST events to this URL")
	flag.StringVar(&o.remote, "remote", "", "WebSocket URL of a running Chrome (default: launch one)")
	flag.StringVar(&o.stealth, "stealth", "headless", "browser mode: headless, plain")
	flag.StringVar(&o.settings.Icon, "icon", "", "loading indicator image (default "+lazyload.DefaultIcon+")")
	flag.IntVar(&o.settings.Offset, "offset", 0, "pixels below the viewport that still count as visible")
	flag.StringVar(&o.settings.Type, "type", "", "default content type: img, iframe")
	flag.BoolVar(&o.settings.Sanitize, "sanitize", false, "sanitize rendered content markup")
	flag.DurationVar(&o.throttle, "throttle", 0, "minimum delay between scroll-driven scans (default 66ms)")
	flag.IntVar(&o.maxScrolls, "max-scrolls", 0, "stop scrolling after this many steps (default 50)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "serve" {
			o.serve = true
		}
	})

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	f, err := export.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	o.format = f

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o); err != nil {
		logger.Error("lazyload: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, o options) error {
	switch {
	case o.htmlPath != "" && o.watch:
		return watchPrerender(ctx, logger, o)
	case o.htmlPath != "":
		return runPrerender(ctx, o)
	case o.configPath != "":
		return runConfig(ctx, logger, o)
	case o.url != "" || o.serve:
		return runSingle(ctx, logger, o)
	}

	fmt.Fprintln(os.Stderr, "usage: lazyload -url <url> | -serve <dir> [-url <path>] | -config <file> | -html <file>")
	os.Exit(2)
	return nil
}

// runPrerender installs indicators in a static file so it can be shipped
// with the loader script already applied. No layout exists offline, so no
// content is loaded.
func runPrerender(ctx context.Context, o options) error {
	f, err := os.Open(o.htmlPath)
	if err != nil {
		return fmt.Errorf("prerender: %w", err)
	}
	defer f.Close()

	doc, err := htmldoc.Parse(f)
	if err != nil {
		return fmt.Errorf("prerender: %w", err)
	}
	elems, err := doc.QueryAll(ctx, document.AttrSource)
	if err != nil {
		return fmt.Errorf("prerender: %w", err)
	}
	if err := lazyload.InstallIndicators(ctx, elems, lazyload.SettingsFrom(o.settings)); err != nil {
		return fmt.Errorf("prerender: %w", err)
	}

	out, err := export.New().Render(doc.String(), "", o.format)
	if err != nil {
		return err
	}
	return writeOut(o.out, out)
}

func runSingle(ctx context.Context, logger *slog.Logger, o options) error {
	pageURL := o.url
	if o.serve {
		srv, err := site.Start("", o.serveDir, site.WithLogger(logger))
		if err != nil {
			return err
		}
		defer srv.Close(context.WithoutCancel(ctx))
		pageURL = resolve(srv.URL, o.url)
	}

	cfg, err := flagConfig(o, pageURL)
	if err != nil {
		return err
	}

	r, err := startRunner(ctx, logger, cfg, o)
	if err != nil {
		return err
	}
	defer r.Stop()

	res, err := r.RunPage(ctx, cfg.Pages[0])
	if err != nil {
		return err
	}
	if o.out == "" {
		return nil
	}
	snap, err := r.Snapshot(res, o.format)
	if err != nil {
		return err
	}
	return writeOut(o.out, snap)
}

func runConfig(ctx context.Context, logger *slog.Logger, o options) error {
	cfg, err := lazyload.LoadConfigFile(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.remote != "" {
		cfg.Browser.Remote = o.remote
	}

	r, err := startRunner(ctx, logger, cfg, o)
	if err != nil {
		return err
	}
	defer r.Stop()

	results, runErr := r.RunAll(ctx)
	if o.out != "" {
		ext := ".html"
		if o.format == export.FormatMarkdown {
			ext = ".md"
		}
		for _, res := range results {
			snap, err := r.Snapshot(res, o.format)
			if err != nil {
				return err
			}
			if err := writeOut(filepath.Join(o.out, res.ID+ext), snap); err != nil {
				return err
			}
		}
	}
	return runErr
}

// flagConfig builds a configuration from flags alone, with the same
// defaults and validation as a file.
func flagConfig(o options, pageURL string) (*lazyload.Config, error) {
	cfg := &lazyload.Config{Settings: o.settings}
	cfg.Browser.Remote = o.remote
	cfg.Browser.Stealth = o.stealth
	cfg.Throttle.Delay = o.throttle
	cfg.Pages = []lazyload.PageConfig{{ID: idgen.New(), URL: pageURL}}
	return lazyload.NormalizeConfig(cfg)
}

func startRunner(ctx context.Context, logger *slog.Logger, cfg *lazyload.Config, o options) (*lazyload.Runner, error) {
	if o.maxScrolls > 0 {
		for i := range cfg.Pages {
			cfg.Pages[i].MaxScrolls = o.maxScrolls
		}
	}

	extra := cfg.Sinks
	if o.dbPath != "" {
		extra = append(extra, lazyload.SinkConfig{Type: "sqlite", Path: o.dbPath})
	}
	if o.webhook != "" {
		extra = append(extra, lazyload.SinkConfig{Type: "webhook", URL: o.webhook})
	}
	sinks, err := lazyload.SinksFrom(extra, logger)
	if err != nil {
		return nil, err
	}

	r, err := lazyload.NewRunner(cfg, logger, sinks...)
	if err != nil {
		for _, s := range sinks {
			s.Close()
		}
		return nil, err
	}
	if err := r.Start(ctx); err != nil {
		r.Stop()
		return nil, err
	}
	return r, nil
}

// resolve joins a path onto the fixture server; absolute URLs pass through
// and an empty path opens the demo page.
func resolve(base, u string) string {
	switch {
	case u == "":
		return base + site.DemoPath
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		return u
	case strings.HasPrefix(u, "/"):
		return base + u
	}
	return base + "/" + u
}

func writeOut(path, content string) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := io.WriteString(w, content)
	return err
}
