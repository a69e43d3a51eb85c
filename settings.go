package lazyload

import (
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/lazyload/document"
)

// Default setting values.
const (
	DefaultIcon   = "img/loading.gif"
	DefaultOffset = 0
	DefaultType   = "img"
)

// Settings configures indicator and content rendering. The zero value is
// usable: empty fields take the defaults above and nil callbacks do nothing.
// Settings is passed by value, so a call never observes another call's
// changes.
type Settings struct {
	// Icon is the loading indicator image source.
	Icon string
	// Offset expands the viewport's bottom edge, in pixels, so content
	// approaching from below loads early.
	Offset int
	// Type selects the real-content tag: "img" or "iframe".
	Type string

	// BeforeIcons runs once with every element before indicators go in.
	BeforeIcons func([]document.Element)
	// AfterIcons runs once with every element after indicators go in.
	AfterIcons func([]document.Element)
	// BeforeContent runs with the element before its content is installed.
	BeforeContent func(document.Element)
	// AfterContent runs with the element after its content is installed.
	AfterContent func(document.Element)

	// Policy, when set, sanitizes the real-content markup before it is
	// rendered. Nil writes extra attributes verbatim.
	Policy *bluemonday.Policy

	// committed runs once the loaded marker is on the element, with the
	// resolved tag name. Set by Loader for its counters and events.
	committed func(el document.Element, typ string)
}

func (s *Settings) defaults() {
	if s.Icon == "" {
		s.Icon = DefaultIcon
	}
	if s.Type == "" {
		s.Type = DefaultType
	}
	if s.BeforeIcons == nil {
		s.BeforeIcons = func([]document.Element) {}
	}
	if s.AfterIcons == nil {
		s.AfterIcons = func([]document.Element) {}
	}
	if s.BeforeContent == nil {
		s.BeforeContent = func(document.Element) {}
	}
	if s.AfterContent == nil {
		s.AfterContent = func(document.Element) {}
	}
}

// Effective is the per-element view of Settings after inline overrides.
type Effective struct {
	Icon   string
	Offset int
	Type   string
}

// Resolve layers an element's parsed data-options over s.
// An offset override that is not an integer is ignored.
func (s Settings) Resolve(overrides map[string]string) Effective {
	s.defaults()
	eff := Effective{Icon: s.Icon, Offset: s.Offset, Type: s.Type}

	if v := overrides["icon"]; v != "" {
		eff.Icon = v
	}
	if v := overrides["type"]; v != "" {
		eff.Type = v
	}
	if v := strings.TrimSpace(overrides["offset"]); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			eff.Offset = n
		}
	}
	return eff
}

// SanitizePolicy returns the bluemonday policy used when sanitizing is
// enabled in configuration: img and iframe with their common attributes.
func SanitizePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements("img", "iframe")
	p.AllowAttrs("src", "alt", "title", "class", "width", "height", "loading").OnElements("img")
	p.AllowAttrs("src", "title", "class", "width", "height", "allow", "allowfullscreen", "frameborder").OnElements("iframe")
	return p
}
