// Package htmldoc is a document.Document backed by a golang.org/x/net/html
// tree. There is no layout engine: element geometry is supplied per id and a
// scroll position is tracked so ScrollBy moves every element like a browser
// would. Used for offline prerendering and as the test host.
package htmldoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/hazyhaar/lazyload/document"
	"github.com/hazyhaar/lazyload/viewport"
)

// ErrNoLayout is returned by BoundingRect for elements with no known box.
var ErrNoLayout = errors.New("htmldoc: no layout for element")

// DefaultViewport matches the browser default used by the CLI.
var DefaultViewport = viewport.Size{Width: 1280, Height: 800}

// Document is safe for concurrent use: the loader's goroutine and a test
// driving ScrollBy may run at the same time.
type Document struct {
	mu          sync.Mutex
	root        *html.Node
	rects       map[string]viewport.Rect // page coordinates, keyed by id
	scrollX     float64
	scrollY     float64
	size        viewport.Size
	unsupported bool

	listeners map[int]func(document.Trigger)
	nextID    int
}

// Option configures a Document.
type Option func(*Document)

// WithViewport sets the window size. Default: DefaultViewport.
func WithViewport(s viewport.Size) Option {
	return func(d *Document) { d.size = s }
}

// WithRects sets page-coordinate boxes keyed by element id.
func WithRects(rects map[string]viewport.Rect) Option {
	return func(d *Document) {
		for id, r := range rects {
			d.rects[id] = r
		}
	}
}

// Unsupported makes Supported report false, simulating a host without the
// required capabilities.
func Unsupported() Option {
	return func(d *Document) { d.unsupported = true }
}

// Parse reads an HTML document.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	d := &Document{
		root:      root,
		rects:     make(map[string]viewport.Rect),
		size:      DefaultViewport,
		listeners: make(map[int]func(document.Trigger)),
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

func (d *Document) Supported(_ context.Context) bool {
	return !d.unsupported
}

func (d *Document) QueryAll(ctx context.Context, attr string) ([]document.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []document.Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasAttr(n, attr) {
			out = append(out, &Element{doc: d, n: n})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out, nil
}

func (d *Document) Viewport(_ context.Context) (viewport.Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size, nil
}

func (d *Document) Listen(_ context.Context, fn func(document.Trigger)) (func(), error) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}, nil
}

// Listeners returns how many listeners are registered.
func (d *Document) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// SetRect sets (or replaces) the page-coordinate box for id.
func (d *Document) SetRect(id string, r viewport.Rect) {
	d.mu.Lock()
	d.rects[id] = r
	d.mu.Unlock()
}

// ScrollBy moves the window and fires a scroll event.
func (d *Document) ScrollBy(dx, dy float64) {
	d.mu.Lock()
	d.scrollX += dx
	d.scrollY += dy
	d.mu.Unlock()
	d.fire(document.TriggerScroll)
}

// Resize changes the window size and fires a resize event.
func (d *Document) Resize(s viewport.Size) {
	d.mu.Lock()
	d.size = s
	d.mu.Unlock()
	d.fire(document.TriggerResize)
}

func (d *Document) fire(t document.Trigger) {
	d.mu.Lock()
	fns := make([]func(document.Trigger), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(t)
	}
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && getAttr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	if found == nil {
		return nil
	}
	return &Element{doc: d, n: found}
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document, or returns "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Element wraps one *html.Node.
type Element struct {
	doc *Document
	n   *html.Node
}

func (e *Element) Attribute(name string) (string, bool, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true, nil
		}
	}
	return "", false, nil
}

func (e *Element) SetAttribute(name, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return nil
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

func (e *Element) SetInnerHTML(markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	parent := &html.Node{Type: html.ElementNode, Data: e.n.Data, DataAtom: e.n.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("htmldoc: parse fragment: %w", err)
	}

	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.n.AppendChild(n)
	}
	return nil
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

func (e *Element) BoundingRect() (viewport.Rect, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	id := getAttr(e.n, "id")
	r, ok := e.doc.rects[id]
	if id == "" || !ok {
		return viewport.Rect{}, fmt.Errorf("%w: <%s id=%q>", ErrNoLayout, e.n.Data, id)
	}
	return r.Translate(-e.doc.scrollX, -e.doc.scrollY), nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
