package tui

import (
	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/infinite"
)

// scrollOptions tunes the trigger for line-based lists. Update already
// serialises events, so checks run synchronously.
func scrollOptions(metrics *api.Metrics) infinite.Options {
	opts := infinite.DefaultOptions()
	opts.Threshold = 3
	opts.RootMargin = 2
	opts.FrameInterval = 0
	opts.OnFire = func(source infinite.Source) {
		metrics.IncScrollTrigger(string(source))
	}
	return opts
}

// scrollList tracks the cursor and the visible window of a list and feeds
// both trigger detectors.
type scrollList struct {
	trigger  *infinite.Trigger
	listener *infinite.ScrollListener
	observer *infinite.SentinelObserver

	cursor int
	offset int
	height int
}

func newScrollList(trigger *infinite.Trigger) scrollList {
	return scrollList{
		trigger:  trigger,
		listener: trigger.Listen(),
		observer: trigger.Observe(),
		height:   10,
	}
}

// move shifts the cursor by delta within n items and keeps it visible.
func (l *scrollList) move(delta, n int) {
	l.cursor = max(0, min(l.cursor+delta, n-1))
	l.clamp(n)
}

func (l *scrollList) bottom(n int) {
	l.cursor = max(0, n-1)
	l.clamp(n)
}

func (l *scrollList) clamp(n int) {
	if n == 0 {
		l.cursor, l.offset = 0, 0
		return
	}
	l.cursor = min(l.cursor, n-1)
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
	l.offset = max(0, min(l.offset, max(0, n-l.height)))
}

func (l *scrollList) resize(height, n int) {
	l.height = max(1, height)
	l.clamp(n)
}

// notify reports the window over n rows to the scroll listener and the
// sentinel row after the last item to the observer.
func (l *scrollList) notify(n int) {
	l.listener.Notify(infinite.ScrollPosition{
		ScrollTop:      float64(l.offset),
		ViewportHeight: float64(l.height),
		DocumentHeight: float64(n),
	})
	sentinel := infinite.Rect{Y: float64(n - l.offset), Width: 1, Height: 1}
	l.observer.Check(sentinel, infinite.Rect{Width: 1, Height: float64(l.height)})
}

// window returns the index range of visible rows.
func (l *scrollList) window(n int) (int, int) {
	return l.offset, min(n, l.offset+l.height)
}
