// Package lazyload defers loading of images and embedded frames until their
// placeholder scrolls into (or near) the viewport.
//
// Page authors mark placeholders with data-lazy-load="<source>", optionally
// data-options="icon:spin.gif;type:iframe;offset:200" and
// data-load-attributes="class:hero;alt:Sunset". A Loader installs a loading
// icon in each, then swaps in the real tag once the element is fully inside
// the (offset-expanded) viewport. Each element is loaded at most once.
//
// The host page is reached through the document package interfaces, so the
// same logic runs against a parsed HTML tree, a live Chrome page, or a fake.
package lazyload

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/lazyload/dataopt"
	"github.com/hazyhaar/lazyload/document"
	"github.com/hazyhaar/lazyload/markup"
	"github.com/hazyhaar/lazyload/viewport"
)

var (
	// ErrUnknownType is returned when an element's content type is neither
	// img nor iframe. Nothing is rendered; the element gets the skipped
	// marker instead of the loaded one, so later scans pass over it.
	ErrUnknownType = errors.New("lazyload: unknown content type")

	// ErrAlreadyLoaded is returned by LoadContent for an element that
	// already carries the loaded marker.
	ErrAlreadyLoaded = errors.New("lazyload: content already loaded")
)

// ElementError ties a failure to the element it happened on.
type ElementError struct {
	Source string // data-lazy-load value
	Err    error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%v (source %q)", e.Err, e.Source)
}

func (e *ElementError) Unwrap() error { return e.Err }

func elementErr(el document.Element, err error) error {
	src, _, _ := el.Attribute(document.AttrSource)
	return &ElementError{Source: src, Err: err}
}

// ElementErrors flattens an error returned by InstallIndicators or
// ScanAndLoad into its per-element failures.
func ElementErrors(err error) []*ElementError {
	var out []*ElementError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ee, ok := e.(*ElementError); ok {
			out = append(out, ee)
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// InstallIndicators replaces the contents of every element with a loading
// icon. BeforeIcons and AfterIcons each run exactly once around the pass.
// Marker and override attributes are left in place for LoadContent.
// A failing element does not stop the others; failures are joined.
func InstallIndicators(ctx context.Context, elems []document.Element, s Settings) error {
	s.defaults()
	s.BeforeIcons(elems)

	var errs []error
	for _, el := range elems {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := installIndicator(el, s); err != nil {
			errs = append(errs, elementErr(el, err))
		}
	}

	s.AfterIcons(elems)
	return errors.Join(errs...)
}

func installIndicator(el document.Element, s Settings) error {
	overrides, err := overridesOf(el)
	if err != nil {
		return err
	}
	eff := s.Resolve(overrides)

	if err := el.SetInnerHTML(markup.Indicator(eff.Icon)); err != nil {
		return fmt.Errorf("lazyload: install indicator: %w", err)
	}
	if err := el.SetAttribute(document.AttrIconInstalled, "true"); err != nil {
		return fmt.Errorf("lazyload: mark indicator: %w", err)
	}
	return nil
}

// LoadContent swaps the element's indicator for its real content and marks
// it loaded. overrides may be nil, in which case the element's data-options
// are parsed.
func LoadContent(ctx context.Context, el document.Element, s Settings, overrides map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.defaults()
	if document.IsLoaded(el) {
		return ErrAlreadyLoaded
	}

	if overrides == nil {
		var err error
		if overrides, err = overridesOf(el); err != nil {
			return err
		}
	}
	eff := s.Resolve(overrides)

	typ, ok := markup.NormalizeType(eff.Type)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownType, eff.Type)
		if mErr := el.SetAttribute(document.AttrSkipped, "true"); mErr != nil {
			err = errors.Join(err, fmt.Errorf("lazyload: mark skipped: %w", mErr))
		}
		return err
	}

	src, _, err := el.Attribute(document.AttrSource)
	if err != nil {
		return fmt.Errorf("lazyload: read source: %w", err)
	}
	rawAttrs, _, err := el.Attribute(document.AttrLoadAttributes)
	if err != nil {
		return fmt.Errorf("lazyload: read load attributes: %w", err)
	}

	html := markup.Content(typ, src, dataopt.ParsePairs(rawAttrs))
	if s.Policy != nil {
		html = s.Policy.Sanitize(html)
	}

	s.BeforeContent(el)
	if err := el.SetInnerHTML(html); err != nil {
		return fmt.Errorf("lazyload: install content: %w", err)
	}
	s.AfterContent(el)

	if err := el.SetAttribute(document.AttrLoaded, "true"); err != nil {
		return fmt.Errorf("lazyload: mark loaded: %w", err)
	}
	if s.committed != nil {
		s.committed(el, typ)
	}
	return nil
}

// ScanAndLoad checks every element that is neither loaded nor skipped
// against the viewport and loads the visible ones, in the order given. It returns how many were
// loaded; per-element failures are joined and never abort the pass.
func ScanAndLoad(ctx context.Context, doc document.Document, elems []document.Element, s Settings) (int, error) {
	vp, err := doc.Viewport(ctx)
	if err != nil {
		return 0, fmt.Errorf("lazyload: viewport: %w", err)
	}
	s.defaults()

	loaded := 0
	var errs []error
	for _, el := range elems {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ok, err := scanOne(ctx, el, vp, s)
		if err != nil {
			errs = append(errs, elementErr(el, err))
		}
		if ok {
			loaded++
		}
	}
	return loaded, errors.Join(errs...)
}

func scanOne(ctx context.Context, el document.Element, vp viewport.Size, s Settings) (bool, error) {
	if document.IsLoaded(el) || document.IsSkipped(el) {
		return false, nil
	}
	overrides, err := overridesOf(el)
	if err != nil {
		return false, err
	}
	eff := s.Resolve(overrides)

	rect, err := el.BoundingRect()
	if err != nil {
		return false, fmt.Errorf("lazyload: bounding rect: %w", err)
	}
	if !viewport.Visible(rect, vp, eff.Offset) {
		return false, nil
	}

	if err := LoadContent(ctx, el, s, overrides); err != nil {
		return false, err
	}
	return true, nil
}

func overridesOf(el document.Element) (map[string]string, error) {
	raw, _, err := el.Attribute(document.AttrOptions)
	if err != nil {
		return nil, fmt.Errorf("lazyload: read options: %w", err)
	}
	return dataopt.Parse(raw), nil
}
