package lazyload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/lazyload/internal/browser"
	"github.com/hazyhaar/lazyload/internal/export"
	"github.com/hazyhaar/lazyload/internal/rodpage"
	"github.com/hazyhaar/lazyload/internal/sink"
)

// Runner drives configured pages in Chrome: open a tab, run a Loader on it,
// scroll until every placeholder has loaded, then snapshot the result.
type Runner struct {
	cfg    *Config
	mgr    *browser.Manager
	level  browser.StealthLevel
	sinkR  *sink.Router
	export *export.Exporter
	logger *slog.Logger
}

// PageResult summarises one page run.
type PageResult struct {
	ID       string
	URL      string
	RunID    string
	Scans    uint64
	Loaded   uint64
	Unloaded int // placeholders still without content at the end
	Scrolls  int
	HTML     string // final document
}

// NewRunner creates a Runner from configuration. Sinks receive the events
// of every page and are closed by Stop.
func NewRunner(cfg *Config, logger *slog.Logger, sinks ...Sink) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	level, err := browser.ParseStealth(cfg.Browser.Stealth)
	if err != nil {
		return nil, err
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Stealth:          level,
		Width:            cfg.Browser.Width,
		Height:           cfg.Browser.Height,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           logger,
	})

	return &Runner{
		cfg:    cfg,
		mgr:    mgr,
		level:  level,
		sinkR:  sink.NewRouter(logger, sinks...),
		export: export.New(),
		logger: logger,
	}, nil
}

// Start launches the browser.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := r.mgr.Start(ctx); err != nil {
		return fmt.Errorf("lazyload: start browser: %w", err)
	}
	return nil
}

// Stop closes the browser and the sinks.
func (r *Runner) Stop() error {
	return errors.Join(r.mgr.Close(), r.sinkR.Close())
}

// RunAll runs every configured page in order. A failing page is logged and
// does not stop the others.
func (r *Runner) RunAll(ctx context.Context) ([]*PageResult, error) {
	var results []*PageResult
	var errs []error
	for _, p := range r.cfg.Pages {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := r.RunPage(ctx, p)
		if err != nil {
			r.logger.Error("lazyload: page failed", "page", p.ID, "url", p.URL, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// RunPage loads one page to completion.
func (r *Runner) RunPage(ctx context.Context, p PageConfig) (*PageResult, error) {
	log := r.logger.With("page", p.ID)

	tab, err := browser.OpenTab(ctx, r.mgr, p.URL, p.ID, r.level)
	if err != nil {
		return nil, fmt.Errorf("lazyload: page %s: %w", p.ID, err)
	}
	defer tab.Close()

	doc := rodpage.New(tab.Page, rodpage.WithLogger(log))
	l := New(doc, SettingsFrom(r.cfg.PageSettings(p)),
		WithLogger(log),
		WithSink(r.sinkR),
		WithThrottle(r.cfg.Throttle.Delay),
		WithPageURL(p.URL),
	)
	if err := l.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("lazyload: page %s: %w", p.ID, err)
	}
	defer l.Dispose()

	// Give the throttled scan after the last scroll time to run.
	pause := max(p.ScrollPause, 2*r.cfg.Throttle.Delay)
	scrolls, unloaded, err := scrollUntilLoaded(ctx, doc, p.ScrollStep, p.MaxScrolls, pause)
	if err != nil {
		return nil, fmt.Errorf("lazyload: page %s: %w", p.ID, err)
	}

	html, err := tab.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("lazyload: page %s: %w", p.ID, err)
	}

	st := l.Stats()
	res := &PageResult{
		ID:       p.ID,
		URL:      p.URL,
		RunID:    st.RunID,
		Scans:    st.Scans,
		Loaded:   st.Loaded,
		Unloaded: unloaded,
		Scrolls:  scrolls,
		HTML:     html,
	}
	log.Info("lazyload: page done",
		"run_id", res.RunID, "loaded", res.Loaded, "unloaded", res.Unloaded,
		"scans", res.Scans, "scrolls", res.Scrolls)
	return res, nil
}

// Snapshot encodes a page result's HTML as f.
func (r *Runner) Snapshot(res *PageResult, f export.Format) (string, error) {
	return r.export.Render(res.HTML, res.URL, f)
}

// scroller is the part of a live page the scroll loop needs.
type scroller interface {
	Unloaded(ctx context.Context) (int, error)
	AtBottom(ctx context.Context) (bool, error)
	ScrollBy(ctx context.Context, dx, dy int) error
}

// scrollUntilLoaded scrolls down one step at a time, pausing after each,
// until nothing is left to load, the page ends or maxScrolls is reached.
// It returns the scrolls made and the placeholders still unloaded.
func scrollUntilLoaded(ctx context.Context, s scroller, step, maxScrolls int, pause time.Duration) (int, int, error) {
	scrolls := 0
	for {
		n, err := s.Unloaded(ctx)
		if err != nil {
			return scrolls, 0, err
		}
		if n == 0 || scrolls >= maxScrolls {
			return scrolls, n, nil
		}
		bottom, err := s.AtBottom(ctx)
		if err != nil {
			return scrolls, n, err
		}
		if bottom {
			return scrolls, n, nil
		}

		if err := s.ScrollBy(ctx, 0, step); err != nil {
			return scrolls, n, err
		}
		scrolls++

		select {
		case <-ctx.Done():
			return scrolls, n, ctx.Err()
		case <-time.After(pause):
		}
	}
}
