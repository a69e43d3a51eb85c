// Package document defines the host-document capabilities the lazy loader
// consumes. Backends (a parsed HTML tree, a live Chrome page, a wasm DOM)
// implement these interfaces; the loader never touches a DOM directly.
package document

import (
	"context"

	"github.com/hazyhaar/lazyload/viewport"
)

// Marker attributes read and written on trackable elements.
const (
	// AttrSource marks a trackable element and holds its content source.
	AttrSource = "data-lazy-load"
	// AttrOptions holds per-element "key:value;..." setting overrides.
	AttrOptions = "data-options"
	// AttrLoadAttributes holds "key:value;..." attributes for the real tag.
	AttrLoadAttributes = "data-load-attributes"
	// AttrLoaded is set once real content is installed.
	AttrLoaded = "data-content-loaded"
	// AttrIconInstalled is set once the loading indicator is installed.
	AttrIconInstalled = "data-icon-installed"
	// AttrSkipped is set on an element whose content type cannot render.
	// Scans leave it alone from then on.
	AttrSkipped = "data-content-skipped"
)

// Element is a handle to one node in the host document.
type Element interface {
	// Attribute returns the attribute value and whether it is present.
	Attribute(name string) (string, bool, error)
	SetAttribute(name, value string) error
	// SetInnerHTML clears the element's children and replaces them with markup.
	SetInnerHTML(markup string) error
	// BoundingRect returns the element's box relative to the viewport.
	BoundingRect() (viewport.Rect, error)
}

// Trigger identifies the window event that requested a re-scan.
type Trigger int

const (
	TriggerScroll Trigger = iota + 1
	TriggerResize
)

func (t Trigger) String() string {
	switch t {
	case TriggerScroll:
		return "scroll"
	case TriggerResize:
		return "resize"
	}
	return "unknown"
}

// Document is the host page.
type Document interface {
	// Supported reports whether the host offers the capabilities the loader
	// needs (element queries and event listeners).
	Supported(ctx context.Context) bool
	// QueryAll returns every element carrying attr, in document order.
	QueryAll(ctx context.Context, attr string) ([]Element, error)
	// Viewport returns the current window size.
	Viewport(ctx context.Context) (viewport.Size, error)
	// Listen registers fn for scroll and resize events. The returned stop
	// function removes the listeners.
	Listen(ctx context.Context, fn func(Trigger)) (func(), error)
}

// IsLoaded reports whether el already carries the loaded marker.
// Lookup errors count as not loaded.
func IsLoaded(el Element) bool {
	_, ok, err := el.Attribute(AttrLoaded)
	return err == nil && ok
}

// IsSkipped reports whether el was given up on because of its content type.
func IsSkipped(el Element) bool {
	_, ok, err := el.Attribute(AttrSkipped)
	return err == nil && ok
}
