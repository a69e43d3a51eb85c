// Package viewport holds the geometry types shared by document backends and
// the visibility rule used to decide when a placeholder gets its content.
package viewport

// Rect is an element's bounding box relative to the viewport's top-left
// corner, as returned by getBoundingClientRect.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Translate returns r shifted by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{
		Top:    r.Top + dy,
		Left:   r.Left + dx,
		Bottom: r.Bottom + dy,
		Right:  r.Right + dx,
	}
}

// Size is the visible window area.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Visible reports whether r lies entirely inside the viewport, with the
// bottom edge pushed down by offset pixels. Top, left and right are never
// expanded. An element taller than the expanded viewport is never visible.
func Visible(r Rect, vp Size, offset int) bool {
	return r.Top >= 0 &&
		r.Left >= 0 &&
		r.Bottom <= vp.Height+float64(offset) &&
		r.Right <= vp.Width
}
