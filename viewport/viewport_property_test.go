package viewport

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestVisibleProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	vp := Size{Width: 1280, Height: 800}

	rect := func(top, left, h, w float64) Rect {
		return Rect{Top: top, Left: left, Bottom: top + h, Right: left + w}
	}
	coord := gen.Float64Range(-2000, 4000)
	extent := gen.Float64Range(0, 1500)

	// Growing the offset never hides a visible element.
	properties.Property("offset is monotonic", prop.ForAll(
		func(top, left, h, w float64, offset, extra int) bool {
			r := rect(top, left, h, w)
			return !Visible(r, vp, offset) || Visible(r, vp, offset+extra)
		},
		coord, coord, extent, extent, gen.IntRange(-500, 1000), gen.IntRange(0, 1000),
	))

	// Offset only moves the bottom bound: anything above or left of the
	// viewport stays invisible.
	properties.Property("offset never exposes top or left", prop.ForAll(
		func(top, left, h, w float64, offset int) bool {
			r := rect(top, left, h, w)
			if top >= 0 && left >= 0 {
				return true
			}
			return !Visible(r, vp, offset)
		},
		coord, coord, extent, extent, gen.IntRange(0, 100000),
	))

	// Scrolling a visible element out past the top hides it.
	properties.Property("scrolled past top is hidden", prop.ForAll(
		func(top, h float64, dy float64) bool {
			r := rect(top, 0, h, 100)
			if !Visible(r, vp, 0) {
				return true
			}
			return !Visible(r.Translate(0, -(top + dy)), vp, 0)
		},
		gen.Float64Range(0, 800), gen.Float64Range(0, 800), gen.Float64Range(0.5, 1000),
	))

	properties.TestingRun(t)
}
