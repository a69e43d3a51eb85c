package lazyload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hazyhaar/lazyload/document"
	"github.com/hazyhaar/lazyload/internal/htmldoc"
	"github.com/hazyhaar/lazyload/internal/rodpage"
)

var _ scroller = (*rodpage.Document)(nil)

// pageScroller drives an htmldoc.Document like a browser window over a page
// of fixed height.
type pageScroller struct {
	doc        *htmldoc.Document
	height     int
	viewHeight int
	y          int
}

func (p *pageScroller) Unloaded(ctx context.Context) (int, error) {
	els, err := p.doc.QueryAll(ctx, document.AttrSource)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, el := range els {
		if !document.IsLoaded(el) && !document.IsSkipped(el) {
			n++
		}
	}
	return n, nil
}

func (p *pageScroller) AtBottom(context.Context) (bool, error) {
	return p.y+p.viewHeight >= p.height, nil
}

func (p *pageScroller) ScrollBy(_ context.Context, dx, dy int) error {
	p.y += dy
	p.doc.ScrollBy(float64(dx), float64(dy))
	return nil
}

func TestScrollUntilLoaded_StopsWhenLoaded(t *testing.T) {
	doc := newGallery(t)
	l := New(doc, Settings{}, WithLogger(quiet), WithThrottle(10*time.Millisecond))
	if err := l.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Dispose()

	ps := &pageScroller{doc: doc, height: 3000, viewHeight: 800}
	scrolls, unloaded, err := scrollUntilLoaded(context.Background(), ps, 800, 10, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	if !document.IsLoaded(doc.ElementByID("below")) {
		t.Error("below never loaded")
	}
	// odd has an unknown type and is skipped, so scrolling stops as soon as
	// below has loaded rather than running on to the page end.
	if scrolls != 2 || unloaded != 0 {
		t.Errorf("got scrolls=%d unloaded=%d, want 2 and 0", scrolls, unloaded)
	}
}

func TestScrollUntilLoaded_StopsAtBottom(t *testing.T) {
	doc := newGallery(t)
	ps := &pageScroller{doc: doc, height: 1000, viewHeight: 800}
	scrolls, unloaded, err := scrollUntilLoaded(context.Background(), ps, 800, 10, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if scrolls != 1 || unloaded != 4 {
		t.Errorf("got scrolls=%d unloaded=%d, want 1 and 4", scrolls, unloaded)
	}
}

func TestScrollUntilLoaded_NothingPending(t *testing.T) {
	doc, _ := htmldoc.ParseString(`<p>static</p>`)
	ps := &pageScroller{doc: doc, height: 10000, viewHeight: 800}
	scrolls, unloaded, err := scrollUntilLoaded(context.Background(), ps, 800, 10, time.Millisecond)
	if err != nil || scrolls != 0 || unloaded != 0 {
		t.Errorf("got scrolls=%d unloaded=%d err=%v, want no scrolling", scrolls, unloaded, err)
	}
}

func TestScrollUntilLoaded_MaxScrolls(t *testing.T) {
	doc := newGallery(t)
	ps := &pageScroller{doc: doc, height: 100000, viewHeight: 800}
	scrolls, unloaded, err := scrollUntilLoaded(context.Background(), ps, 10, 3, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if scrolls != 3 || unloaded != 4 {
		t.Errorf("got scrolls=%d unloaded=%d, want 3 and 4", scrolls, unloaded)
	}
}

func TestScrollUntilLoaded_Cancelled(t *testing.T) {
	doc := newGallery(t)
	ps := &pageScroller{doc: doc, height: 100000, viewHeight: 800}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := scrollUntilLoaded(ctx, ps, 10, 1000, time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want DeadlineExceeded", err)
	}
}

func TestNewRunner_BadStealth(t *testing.T) {
	cfg := &Config{}
	cfg.Browser.Stealth = "headful"
	if _, err := NewRunner(cfg, quiet); err == nil {
		t.Error("NewRunner: got nil error for unknown stealth mode")
	}
}
