package worker

import (
	"context"
	"time"

	"agora/internal/debuglog"
	"agora/internal/model"
	"agora/internal/refresh"
)

// Notifier receives the outcome of a refresh cycle that discovered new
// content. The api package's event hub satisfies it.
type Notifier interface {
	NotifyNewContent(count int, preview []*model.Post)
}

const previewSize = 5

// RefreshWorker refreshes every source on a fixed interval and notifies
// subscribers when a cycle discovers posts past the high-water marks.
type RefreshWorker struct {
	Refresher *refresh.Refresher
	Notifier  Notifier
	Interval  time.Duration
}

func (w *RefreshWorker) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RefreshWorker) runOnce(ctx context.Context) {
	result, err := w.Refresher.RefreshAll(ctx)
	if err != nil {
		debuglog.Errorf("refresh-worker: cycle error: %v", err)
	}
	if result == nil {
		return
	}

	debuglog.Infof("refresh-worker: %d sources updated, %d new posts",
		result.UpdatedCount, len(result.NewPosts))

	if result.NewContentFound && w.Notifier != nil {
		preview := result.NewPosts
		if len(preview) > previewSize {
			preview = preview[:previewSize]
		}
		w.Notifier.NotifyNewContent(len(result.NewPosts), preview)
	}
}
