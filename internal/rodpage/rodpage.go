// Package rodpage is a document.Document backed by a live Chrome page driven
// through Rod. Scroll and resize events reach Go through a CDP binding
// (Runtime.addBinding) that injected listeners call.
package rodpage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/lazyload/document"
	"github.com/hazyhaar/lazyload/viewport"
)

// BindingName is the window function injected listeners call.
const BindingName = "__lazyload_trigger"

const supportedJS = `() => typeof document.querySelectorAll === 'function' &&
	typeof window.addEventListener === 'function' &&
	typeof Element.prototype.getBoundingClientRect === 'function'`

const viewportJS = `() => ({
	width: window.innerWidth || document.documentElement.clientWidth,
	height: window.innerHeight || document.documentElement.clientHeight
})`

const listenJS = `() => {
	if (window.__lazyloadHandlers) return;
	const send = (kind) => {
		if (typeof window.` + BindingName + ` === 'function') window.` + BindingName + `(kind);
	};
	window.__lazyloadHandlers = { scroll: () => send('scroll'), resize: () => send('resize') };
	window.addEventListener('scroll', window.__lazyloadHandlers.scroll, { passive: true });
	window.addEventListener('resize', window.__lazyloadHandlers.resize);
}`

const unlistenJS = `() => {
	const h = window.__lazyloadHandlers;
	if (!h) return;
	window.removeEventListener('scroll', h.scroll);
	window.removeEventListener('resize', h.resize);
	delete window.__lazyloadHandlers;
}`

// Document adapts a *rod.Page.
type Document struct {
	page   *rod.Page
	logger *slog.Logger
}

var _ document.Document = (*Document)(nil)

// Option configures a Document.
type Option func(*Document)

// WithLogger sets a custom logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// New wraps page.
func New(page *rod.Page, opts ...Option) *Document {
	d := &Document{page: page, logger: slog.Default()}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Document) Supported(ctx context.Context) bool {
	res, err := d.page.Context(ctx).Eval(supportedJS)
	if err != nil {
		d.logger.Debug("rodpage: capability check failed", "error", err)
		return false
	}
	return res.Value.Bool()
}

func (d *Document) QueryAll(ctx context.Context, attr string) ([]document.Element, error) {
	els, err := d.page.Context(ctx).Elements(selector(attr))
	if err != nil {
		return nil, fmt.Errorf("rodpage: query %s: %w", attr, err)
	}
	out := make([]document.Element, len(els))
	for i, el := range els {
		out[i] = &Element{el: el.Context(ctx)}
	}
	return out, nil
}

func (d *Document) Viewport(ctx context.Context) (viewport.Size, error) {
	res, err := d.page.Context(ctx).Eval(viewportJS)
	if err != nil {
		return viewport.Size{}, fmt.Errorf("rodpage: viewport: %w", err)
	}
	return viewport.Size{
		Width:  res.Value.Get("width").Num(),
		Height: res.Value.Get("height").Num(),
	}, nil
}

// Listen installs window scroll and resize listeners that report through the
// CDP binding. The returned stop removes them and ends the event
// subscription; it is also triggered by ctx cancellation.
func (d *Document) Listen(ctx context.Context, fn func(document.Trigger)) (func(), error) {
	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(d.page); err != nil {
		d.logger.Warn("rodpage: addBinding failed (may already exist)", "error", err)
	}

	listenCtx, cancel := context.WithCancel(ctx)

	// Subscribe before injecting so no early event is missed.
	wait := d.page.Context(listenCtx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != BindingName {
			return
		}
		t, ok := parseTrigger(e.Payload)
		if !ok {
			d.logger.Debug("rodpage: unknown trigger payload", "payload", e.Payload)
			return
		}
		fn(t)
	})
	go wait()

	if _, err := d.page.Context(ctx).Eval(listenJS); err != nil {
		cancel()
		return nil, fmt.Errorf("rodpage: install listeners: %w", err)
	}

	stop := func() {
		cancel()
		// ctx may already be done; removal still has to reach the page.
		if _, err := d.page.Context(context.WithoutCancel(ctx)).Eval(unlistenJS); err != nil {
			d.logger.Debug("rodpage: remove listeners failed", "error", err)
		}
	}
	return stop, nil
}

// ScrollBy scrolls the window, firing the page's own scroll event.
func (d *Document) ScrollBy(ctx context.Context, dx, dy int) error {
	_, err := d.page.Context(ctx).Eval(`(x, y) => window.scrollBy(x, y)`, dx, dy)
	if err != nil {
		return fmt.Errorf("rodpage: scroll: %w", err)
	}
	return nil
}

// AtBottom reports whether the window is scrolled to the end of the document.
func (d *Document) AtBottom(ctx context.Context) (bool, error) {
	res, err := d.page.Context(ctx).Eval(`() =>
		Math.ceil(window.scrollY + window.innerHeight) >= document.documentElement.scrollHeight`)
	if err != nil {
		return false, fmt.Errorf("rodpage: scroll position: %w", err)
	}
	return res.Value.Bool(), nil
}

// Unloaded counts placeholders still waiting for their content. Skipped
// elements never load and are not counted.
func (d *Document) Unloaded(ctx context.Context) (int, error) {
	res, err := d.page.Context(ctx).Eval(`(sel) => document.querySelectorAll(sel).length`, pendingSelector())
	if err != nil {
		return 0, fmt.Errorf("rodpage: count unloaded: %w", err)
	}
	return res.Value.Int(), nil
}

func selector(attr string) string {
	return "[" + attr + "]"
}

func pendingSelector() string {
	return selector(document.AttrSource) +
		":not(" + selector(document.AttrLoaded) + ")" +
		":not(" + selector(document.AttrSkipped) + ")"
}

func parseTrigger(payload string) (document.Trigger, bool) {
	switch payload {
	case "scroll":
		return document.TriggerScroll, true
	case "resize":
		return document.TriggerResize, true
	}
	return 0, false
}

// Element adapts a *rod.Element.
type Element struct {
	el *rod.Element
}

func (e *Element) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("rodpage: attribute %s: %w", name, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *Element) SetAttribute(name, value string) error {
	if _, err := e.el.Eval(`(n, v) => this.setAttribute(n, v)`, name, value); err != nil {
		return fmt.Errorf("rodpage: set attribute %s: %w", name, err)
	}
	return nil
}

func (e *Element) SetInnerHTML(markup string) error {
	if _, err := e.el.Eval(`(h) => { this.innerHTML = h }`, markup); err != nil {
		return fmt.Errorf("rodpage: set inner html: %w", err)
	}
	return nil
}

func (e *Element) BoundingRect() (viewport.Rect, error) {
	res, err := e.el.Eval(`() => {
		const r = this.getBoundingClientRect();
		return { top: r.top, left: r.left, bottom: r.bottom, right: r.right };
	}`)
	if err != nil {
		return viewport.Rect{}, fmt.Errorf("rodpage: bounding rect: %w", err)
	}
	var r viewport.Rect
	if err := res.Value.Unmarshal(&r); err != nil {
		return viewport.Rect{}, fmt.Errorf("rodpage: decode rect: %w", err)
	}
	return r, nil
}
