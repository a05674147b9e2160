package infinite

import (
	"sync"
	"time"
)

// ScrollPosition is one scroll measurement of the list container.
type ScrollPosition struct {
	ScrollTop      float64
	ViewportHeight float64
	DocumentHeight float64
}

// NearBottom reports whether the viewport bottom is within threshold of
// the end of the document.
func (p ScrollPosition) NearBottom(threshold float64) bool {
	return p.ScrollTop+p.ViewportHeight >= p.DocumentHeight-threshold
}

// ScrollListener checks scroll positions against the trigger threshold,
// at most once per frame.
type ScrollListener struct {
	trigger *Trigger

	mu       sync.Mutex
	latest   ScrollPosition
	frame    *time.Timer
	detached bool
}

// Notify records a scroll event. With a positive frame interval only the
// last position of each frame is checked.
func (l *ScrollListener) Notify(pos ScrollPosition) {
	interval := l.trigger.opts.FrameInterval

	l.mu.Lock()
	if l.detached {
		l.mu.Unlock()
		return
	}
	if interval <= 0 {
		l.mu.Unlock()
		l.check(pos)
		return
	}
	l.latest = pos
	if l.frame == nil {
		l.frame = time.AfterFunc(interval, l.flush)
	}
	l.mu.Unlock()
}

// Detach stops the listener and drops a pending frame.
func (l *ScrollListener) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detached = true
	if l.frame != nil {
		l.frame.Stop()
		l.frame = nil
	}
}

func (l *ScrollListener) flush() {
	l.mu.Lock()
	pos, detached := l.latest, l.detached
	l.frame = nil
	l.mu.Unlock()

	if !detached {
		l.check(pos)
	}
}

func (l *ScrollListener) check(pos ScrollPosition) bool {
	if !pos.NearBottom(l.trigger.opts.Threshold) {
		return false
	}
	return l.trigger.Fire(SourceScroll)
}
