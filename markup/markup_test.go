package markup

import (
	"testing"

	"github.com/hazyhaar/lazyload/dataopt"
)

func TestIndicator(t *testing.T) {
	if got := Indicator("img/loading.gif"); got != `<img src="img/loading.gif">` {
		t.Errorf("Indicator: got %q", got)
	}
}

func TestContent(t *testing.T) {
	tests := []struct {
		name  string
		typ   string
		src   string
		attrs string
		want  string
	}{
		{"plain image", TypeImage, "real.jpg", "", `<img src="real.jpg">`},
		{"image with attrs", TypeImage, "real.jpg", "class:hero;alt:A sunset",
			`<img class="hero" alt="A sunset" src="real.jpg">`},
		{"iframe", TypeIframe, "https://www.youtube.com/embed/x", "width:560;height:315",
			`<iframe width="560" height="315" src="https://www.youtube.com/embed/x"></iframe>`},
		{"src attr ignored", TypeImage, "real.jpg", "src:evil.jpg", `<img src="real.jpg">`},
		{"unknown type", "video", "clip.mp4", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Content(tt.typ, tt.src, dataopt.ParsePairs(tt.attrs))
			if got != tt.want {
				t.Errorf("Content: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"img", "img", true},
		{"IMG", "img", true},
		{" IFrame ", "iframe", true},
		{"video", "video", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeType(%q): got (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
