package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hazyhaar/lazyload/internal/throttle"
)

// watchDelay coalesces the burst of events an editor save produces.
var watchDelay = 200 * time.Millisecond

// watchPrerender prerenders once, then again after every change to the
// input file, until ctx ends.
func watchPrerender(ctx context.Context, logger *slog.Logger, o options) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so watch its directory.
	if err := w.Add(filepath.Dir(o.htmlPath)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	target := filepath.Clean(o.htmlPath)

	render := func() {
		if err := runPrerender(ctx, o); err != nil {
			logger.Warn("lazyload: prerender failed", "file", o.htmlPath, "error", err)
			return
		}
		logger.Info("lazyload: prerendered", "file", o.htmlPath, "out", o.out)
	}
	render()

	thr := throttle.New(watchDelay)
	defer thr.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			thr.Arm()

		case <-thr.C():
			thr.Fired()
			render()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("lazyload: watch error", "error", err)
		}
	}
}
