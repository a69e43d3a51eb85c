package document

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/lazyload/viewport"
)

type attrs map[string]string

func (a attrs) Attribute(name string) (string, bool, error) {
	v, ok := a[name]
	return v, ok, nil
}
func (a attrs) SetAttribute(name, value string) error { a[name] = value; return nil }
func (attrs) SetInnerHTML(string) error { return nil }
func (attrs) BoundingRect() (viewport.Rect, error) { return viewport.Rect{}, nil }

type broken struct{ attrs }

func (broken) Attribute(string) (string, bool, error) { return "", true, errors.New("detached") }

// page is the smallest host that satisfies Document.
type page struct{ elems []Element }

func (page) Supported(context.Context) bool { return true }
func (p page) QueryAll(context.Context, string) ([]Element, error) {
	return p.elems, nil
}
func (page) Viewport(context.Context) (viewport.Size, error) {
	return viewport.Size{Width: 1280, Height: 800}, nil
}
func (page) Listen(_ context.Context, fn func(Trigger)) (func(), error) {
	fn(TriggerResize)
	return func() {}, nil
}

var _ Document = page{}

func TestMarkers(t *testing.T) {
	el := attrs{AttrSource: "a.jpg"}
	if IsLoaded(el) || IsSkipped(el) {
		t.Fatalf("fresh element: loaded=%v skipped=%v", IsLoaded(el), IsSkipped(el))
	}
	el.SetAttribute(AttrSkipped, "true")
	if !IsSkipped(el) || IsLoaded(el) {
		t.Errorf("after skip: loaded=%v skipped=%v, want false true", IsLoaded(el), IsSkipped(el))
	}
	el.SetAttribute(AttrLoaded, "true")
	if !IsLoaded(el) {
		t.Error("after load: IsLoaded = false")
	}

	// Lookup errors count as neither.
	b := broken{attrs{}}
	if IsLoaded(b) || IsSkipped(b) {
		t.Error("broken element reported a marker")
	}
}

func TestListen(t *testing.T) {
	var got []Trigger
	stop, err := page{}.Listen(context.Background(), func(tr Trigger) { got = append(got, tr) })
	if err != nil {
		t.Fatal(err)
	}
	stop()
	if len(got) != 1 || got[0] != TriggerResize {
		t.Errorf("triggers: got %v, want [resize]", got)
	}
}

func TestTriggerString(t *testing.T) {
	tests := []struct {
		t    Trigger
		want string
	}{
		{TriggerScroll, "scroll"},
		{TriggerResize, "resize"},
		{Trigger(0), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("Trigger(%d).String() = %q, want %q", int(tt.t), got, tt.want)
		}
	}
}
