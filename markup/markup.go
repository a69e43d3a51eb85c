// Package markup builds the HTML fragments swapped into placeholders: the
// loading indicator and the real image or frame tag.
//
// Attribute values are written verbatim inside double quotes. Callers that
// accept untrusted attribute strings should sanitize the result (see
// lazyload.Settings.Policy).
package markup

import (
	"strings"

	"github.com/hazyhaar/lazyload/dataopt"
)

// Content types.
const (
	TypeImage  = "img"
	TypeIframe = "iframe"
)

// NormalizeType lowercases t and reports whether it is a known content type.
func NormalizeType(t string) (string, bool) {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case TypeImage, TypeIframe:
		return t, true
	}
	return t, false
}

// Indicator returns the loading indicator markup for icon.
func Indicator(icon string) string {
	return `<img src="` + icon + `">`
}

// Content returns the real-content markup for typ (already normalized).
// Extra attributes come first, in declaration order, then src.
// Unknown types return "".
func Content(typ, src string, attrs []dataopt.Pair) string {
	var sb strings.Builder
	switch typ {
	case TypeImage:
		sb.WriteString("<img")
		writeAttrs(&sb, attrs, src)
		sb.WriteString(">")
	case TypeIframe:
		sb.WriteString("<iframe")
		writeAttrs(&sb, attrs, src)
		sb.WriteString("></iframe>")
	default:
		return ""
	}
	return sb.String()
}

func writeAttrs(sb *strings.Builder, attrs []dataopt.Pair, src string) {
	for _, a := range attrs {
		if a.Name == "src" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(a.Value)
		sb.WriteByte('"')
	}
	sb.WriteString(` src="`)
	sb.WriteString(src)
	sb.WriteByte('"')
}
