package dataopt

import "testing"

func TestParse_Basic(t *testing.T) {
	got := Parse("icon:a.gif;type:iframe")
	if len(got) != 2 {
		t.Fatalf("Parse: got %d entries, want 2", len(got))
	}
	if got["icon"] != "a.gif" {
		t.Errorf("icon: got %q, want %q", got["icon"], "a.gif")
	}
	if got["type"] != "iframe" {
		t.Errorf("type: got %q, want %q", got["type"], "iframe")
	}
}

func TestParse_EmptyNeverNil(t *testing.T) {
	for _, in := range []string{"", "   ", ";;", " ; "} {
		got := Parse(in)
		if got == nil {
			t.Fatalf("Parse(%q): got nil map", in)
		}
		if len(got) != 0 {
			t.Errorf("Parse(%q): got %v, want empty", in, got)
		}
	}
}

func TestParse_LastWins(t *testing.T) {
	got := Parse("a:1;a:2")
	if len(got) != 1 || got["a"] != "2" {
		t.Errorf("Parse: got %v, want map[a:2]", got)
	}
}

func TestParse_Trims(t *testing.T) {
	got := Parse("  icon :  spin.gif  ;   offset: 300 ; ")
	if got["icon"] != "spin.gif" {
		t.Errorf("icon: got %q", got["icon"])
	}
	if got["offset"] != "300" {
		t.Errorf("offset: got %q", got["offset"])
	}
}

func TestParse_SkipsMalformed(t *testing.T) {
	got := Parse("novalue;:orphan;type:img;alsobad")
	if len(got) != 1 {
		t.Fatalf("Parse: got %v, want only type", got)
	}
	if got["type"] != "img" {
		t.Errorf("type: got %q, want img", got["type"])
	}
}

func TestParse_ValueKeepsColons(t *testing.T) {
	got := Parse("icon:https://cdn.example.com/spin.gif")
	if got["icon"] != "https://cdn.example.com/spin.gif" {
		t.Errorf("icon: got %q", got["icon"])
	}
}

func TestParse_EmptyValue(t *testing.T) {
	got := Parse("alt:")
	v, ok := got["alt"]
	if !ok || v != "" {
		t.Errorf("alt: got %q (present=%v), want empty and present", v, ok)
	}
}

func TestParsePairs_Order(t *testing.T) {
	got := ParsePairs("class:hero;alt:Sunset;class:wide")
	want := []Pair{{"class", "wide"}, {"alt", "Sunset"}}
	if len(got) != len(want) {
		t.Fatalf("ParsePairs: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFormat(t *testing.T) {
	in := "icon:a.gif;type:iframe"
	if got := Format(ParsePairs(in)); got != in {
		t.Errorf("Format: got %q, want %q", got, in)
	}
}
