// Package export renders a page snapshot after lazy loading, as HTML or as
// Markdown where loaded images become ![alt](src) links.
package export

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Format selects the snapshot encoding.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "html", "markdown" or "md". Empty means HTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Exporter converts snapshots. Safe for concurrent use.
type Exporter struct {
	md *converter.Converter
}

// New creates an Exporter.
func New() *Exporter {
	return &Exporter{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Render encodes html in format f. pageURL, when set, resolves relative
// links and image sources in Markdown output.
func (e *Exporter) Render(html, pageURL string, f Format) (string, error) {
	switch f {
	case FormatHTML, "":
		return html, nil
	case FormatMarkdown:
		var md string
		var err error
		if pageURL != "" {
			md, err = e.md.ConvertString(html, converter.WithDomain(pageURL))
		} else {
			md, err = e.md.ConvertString(html)
		}
		if err != nil {
			return "", fmt.Errorf("export: markdown: %w", err)
		}
		return strings.TrimSpace(md) + "\n", nil
	}
	return "", fmt.Errorf("export: unknown format %q", f)
}
