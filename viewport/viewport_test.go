package viewport

import "testing"

func TestVisible(t *testing.T) {
	vp := Size{Width: 1024, Height: 768}

	tests := []struct {
		name   string
		r      Rect
		offset int
		want   bool
	}{
		{"inside", Rect{Top: 10, Left: 10, Bottom: 200, Right: 300}, 0, true},
		{"touching edges", Rect{Top: 0, Left: 0, Bottom: 768, Right: 1024}, 0, true},
		{"bottom exactly at height+offset", Rect{Top: 500, Left: 0, Bottom: 968, Right: 100}, 200, true},
		{"bottom one past height+offset", Rect{Top: 500, Left: 0, Bottom: 969, Right: 100}, 200, false},
		{"below fold", Rect{Top: 900, Left: 0, Bottom: 1100, Right: 100}, 0, false},
		{"below fold within offset", Rect{Top: 900, Left: 0, Bottom: 1100, Right: 100}, 400, true},
		{"scrolled past top", Rect{Top: -1, Left: 0, Bottom: 100, Right: 100}, 0, false},
		{"off left", Rect{Top: 0, Left: -5, Bottom: 100, Right: 100}, 0, false},
		{"wider than viewport", Rect{Top: 0, Left: 0, Bottom: 100, Right: 1025}, 0, false},
		{"offset does not widen right", Rect{Top: 0, Left: 0, Bottom: 100, Right: 1100}, 500, false},
		{"taller than viewport", Rect{Top: 0, Left: 0, Bottom: 2000, Right: 100}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.r, vp, tt.offset); got != tt.want {
				t.Errorf("Visible(%+v, offset=%d): got %v, want %v", tt.r, tt.offset, got, tt.want)
			}
		})
	}
}

func TestRectTranslate(t *testing.T) {
	r := Rect{Top: 100, Left: 10, Bottom: 200, Right: 50}.Translate(0, -40)
	if r.Top != 60 || r.Bottom != 160 || r.Left != 10 || r.Right != 50 {
		t.Errorf("Translate: got %+v", r)
	}
}
