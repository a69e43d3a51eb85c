package lazyload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/lazyload/document"
	"github.com/hazyhaar/lazyload/event"
	"github.com/hazyhaar/lazyload/idgen"
	"github.com/hazyhaar/lazyload/internal/sink"
	"github.com/hazyhaar/lazyload/internal/throttle"
)

var (
	// ErrRunning is returned by Initialize on a Loader that is already running.
	ErrRunning = errors.New("lazyload: loader already running")
	// ErrNotRunning is returned by Refresh before Initialize or after Dispose.
	ErrNotRunning = errors.New("lazyload: loader not running")
)

// Loader drives one document: installs indicators, runs the initial scan,
// then re-scans on scroll and resize at most once per throttle delay.
// After Initialize every document access happens on the Loader's own
// goroutine, so element loads never race each other.
type Loader struct {
	doc      document.Document
	settings Settings
	logger   *slog.Logger
	sink     sink.Sink
	delay    time.Duration
	pageURL  string

	lifecycle sync.Mutex // serializes Initialize and Dispose

	mu      sync.Mutex
	running bool
	runID   string
	out     *sink.Async // per run; nil while stopped
	cancel  context.CancelFunc
	done    chan struct{}

	trigger chan document.Trigger
	refresh chan chan error

	scans  atomic.Uint64
	loaded atomic.Uint64
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a custom logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithSink sets where lifecycle events go. Default: discarded.
// Events are delivered from a queue so a slow sink never delays a scan;
// Dispose waits briefly for queued events before returning.
func WithSink(s Sink) Option {
	return func(ld *Loader) { ld.sink = s }
}

// WithThrottle sets the minimum delay between event-driven scans.
// Default: 66ms.
func WithThrottle(d time.Duration) Option {
	return func(ld *Loader) { ld.delay = d }
}

// WithPageURL stamps events with the host page URL.
func WithPageURL(u string) Option {
	return func(ld *Loader) { ld.pageURL = u }
}

// New creates a Loader for doc. Nothing happens until Initialize.
func New(doc document.Document, settings Settings, opts ...Option) *Loader {
	l := &Loader{
		doc:      doc,
		settings: settings,
		logger:   slog.Default(),
		sink:     sink.Discard{},
		delay:    throttle.DefaultDelay,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Stats is a point-in-time view of a Loader's counters.
type Stats struct {
	RunID  string
	Scans  uint64 // visibility passes, including the initial one
	Loaded uint64 // elements whose content was installed
}

// Stats returns the current counters.
func (l *Loader) Stats() Stats {
	l.mu.Lock()
	runID := l.runID
	l.mu.Unlock()
	return Stats{RunID: runID, Scans: l.scans.Load(), Loaded: l.loaded.Load()}
}

// Running reports whether the event loop is active.
func (l *Loader) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Initialize discovers every placeholder, installs loading indicators, loads
// whatever is already visible, then listens for scroll and resize.
//
// It returns nil without attaching anything when the host lacks the needed
// capabilities or has no placeholders. Cancelling ctx stops the loop like
// Dispose does.
func (l *Loader) Initialize(ctx context.Context) error {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	if l.Running() {
		return ErrRunning
	}

	if !l.doc.Supported(ctx) {
		l.logger.Debug("lazyload: host lacks required capabilities, skipping")
		return nil
	}

	elems, err := l.doc.QueryAll(ctx, document.AttrSource)
	if err != nil {
		return fmt.Errorf("lazyload: query placeholders: %w", err)
	}
	if len(elems) == 0 {
		l.logger.Debug("lazyload: no placeholders found")
		return nil
	}

	runID := idgen.NewRun()
	out := sink.NewAsync(l.sink, sink.WithAsyncLogger(l.logger))
	l.mu.Lock()
	l.runID = runID
	l.out = out
	l.mu.Unlock()
	l.scans.Store(0)
	l.loaded.Store(0)

	// Content already loaded by an earlier run keeps its content.
	var pending []document.Element
	for _, el := range elems {
		if !document.IsLoaded(el) {
			pending = append(pending, el)
		}
	}
	if len(pending) > 0 {
		if err := InstallIndicators(ctx, pending, l.passSettings(ctx, "init")); err != nil {
			l.reportErrors(ctx, "install indicators", "init", err)
		}
		l.emit(ctx, event.Event{Kind: event.KindIndicators, Trigger: "init", Count: len(pending)})
	}

	// Indicator installation mutated the tree; work from a fresh set.
	l.scan(ctx, "init")

	loopCtx, cancel := context.WithCancel(ctx)
	triggers := make(chan document.Trigger, 1)
	refresh := make(chan chan error)
	done := make(chan struct{})

	l.mu.Lock()
	l.trigger = triggers
	l.refresh = refresh
	l.cancel = cancel
	l.done = done
	l.running = true
	l.mu.Unlock()

	stop, err := l.doc.Listen(loopCtx, l.Notify)
	if err != nil {
		cancel()
		l.mu.Lock()
		l.running = false
		l.trigger = nil
		l.out = nil
		l.mu.Unlock()
		out.Close()
		close(done)
		return fmt.Errorf("lazyload: listen: %w", err)
	}

	go l.loop(loopCtx, stop, out, triggers, refresh, done)

	l.logger.Info("lazyload: initialized",
		"run_id", runID, "placeholders", len(elems), "loaded", l.loaded.Load())
	return nil
}

// Notify requests a throttled re-scan. Safe from any goroutine; never blocks.
// Scroll and resize listeners call it.
func (l *Loader) Notify(t document.Trigger) {
	l.mu.Lock()
	ch := l.trigger
	l.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- t:
	default:
		// A trigger is already queued; the loop will arm the throttle anyway.
	}
}

// Refresh picks up placeholders inserted after Initialize: it installs
// indicators on elements that have none yet, then runs an immediate scan.
// It executes on the Loader's goroutine and waits for completion.
func (l *Loader) Refresh(ctx context.Context) error {
	l.mu.Lock()
	running, ch, done := l.running, l.refresh, l.done
	l.mu.Unlock()
	if !running {
		return ErrNotRunning
	}

	reply := make(chan error, 1)
	select {
	case ch <- reply:
	case <-done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispose removes the scroll and resize listeners, cancels any pending
// throttled scan and stops the loop. Safe to call more than once.
func (l *Loader) Dispose() {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loader) loop(ctx context.Context, stop func(), out *sink.Async, triggers <-chan document.Trigger, refresh <-chan chan error, done chan struct{}) {
	thr := throttle.New(l.delay)
	last := document.TriggerScroll

	defer func() {
		stop()
		thr.Stop()
		l.mu.Lock()
		l.running = false
		l.trigger = nil
		l.out = nil
		l.mu.Unlock()
		if n := out.Dropped(); n > 0 {
			l.logger.Warn("lazyload: events dropped, sink too slow", "dropped", n)
		}
		out.Close()
		close(done)
		l.logger.Debug("lazyload: loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case t := <-triggers:
			last = t
			if thr.Arm() {
				l.logger.Debug("lazyload: scan scheduled", "trigger", t, "delay", thr.Delay())
			}

		case <-thr.C():
			thr.Fired()
			l.scan(ctx, last.String())

		case reply := <-refresh:
			reply <- l.refreshNow(ctx)
		}
	}
}

func (l *Loader) refreshNow(ctx context.Context) error {
	elems, err := l.doc.QueryAll(ctx, document.AttrSource)
	if err != nil {
		return fmt.Errorf("lazyload: query placeholders: %w", err)
	}

	var fresh []document.Element
	for _, el := range elems {
		if _, ok, _ := el.Attribute(document.AttrIconInstalled); !ok && !document.IsLoaded(el) && !document.IsSkipped(el) {
			fresh = append(fresh, el)
		}
	}
	if len(fresh) > 0 {
		if err := InstallIndicators(ctx, fresh, l.passSettings(ctx, "refresh")); err != nil {
			l.reportErrors(ctx, "install indicators", "refresh", err)
		}
		l.emit(ctx, event.Event{Kind: event.KindIndicators, Trigger: "refresh", Count: len(fresh)})
	}

	l.scan(ctx, "refresh")
	return nil
}

// scan re-queries the document and runs one visibility pass.
func (l *Loader) scan(ctx context.Context, trigger string) {
	start := time.Now()
	elems, err := l.doc.QueryAll(ctx, document.AttrSource)
	if err != nil {
		l.logger.Warn("lazyload: query placeholders failed", "trigger", trigger, "error", err)
		return
	}

	n, err := ScanAndLoad(ctx, l.doc, elems, l.passSettings(ctx, trigger))
	l.scans.Add(1)
	if err != nil {
		l.reportErrors(ctx, "scan", trigger, err)
	}

	l.emit(ctx, event.Event{Kind: event.KindScan, Trigger: trigger, Count: len(elems), Loaded: n})
	l.logger.Debug("lazyload: scan done",
		"trigger", trigger, "elements", len(elems), "loaded", n, "took", time.Since(start))
}

// passSettings returns the Loader's settings with a hook that counts a load
// and emits its event once the loaded marker is written.
func (l *Loader) passSettings(ctx context.Context, trigger string) Settings {
	s := l.settings
	s.committed = func(el document.Element, typ string) {
		l.loaded.Add(1)
		src, _, _ := el.Attribute(document.AttrSource)
		l.emit(ctx, event.Event{Kind: event.KindLoaded, Trigger: trigger, Source: src, Type: typ})
	}
	return s
}

func (l *Loader) reportErrors(ctx context.Context, op, trigger string, err error) {
	elemErrs := ElementErrors(err)
	if len(elemErrs) == 0 {
		l.logger.Warn("lazyload: "+op+" failed", "trigger", trigger, "error", err)
		return
	}
	for _, ee := range elemErrs {
		l.logger.Warn("lazyload: "+op+" failed for element",
			"trigger", trigger, "source", ee.Source, "error", ee.Err)
		if errors.Is(ee, ErrUnknownType) {
			l.emit(ctx, event.Event{
				Kind:    event.KindSkipped,
				Trigger: trigger,
				Source:  ee.Source,
				Error:   ee.Err.Error(),
			})
		}
	}
}

func (l *Loader) emit(ctx context.Context, ev event.Event) {
	l.mu.Lock()
	ev.RunID = l.runID
	out := l.out
	l.mu.Unlock()
	if out == nil {
		return
	}
	ev.ID = idgen.New()
	ev.PageURL = l.pageURL
	ev.At = event.Now()
	if err := out.Send(ctx, ev); err != nil {
		if errors.Is(err, sink.ErrQueueFull) {
			return // counted; reported when the loop stops
		}
		l.logger.Warn("lazyload: emit event failed", "kind", ev.Kind, "error", err)
	}
}
