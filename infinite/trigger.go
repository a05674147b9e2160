// Package infinite decides when a scrolled list should load its next page.
// Two detectors, a scroll listener and a sentinel observer, feed one
// rate-limited fire function so a single scroll gesture loads one page.
package infinite

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Source names the detector that fired.
type Source string

const (
	SourceScroll   Source = "scroll"
	SourceSentinel Source = "sentinel"
	SourceManual   Source = "manual"
)

// Status reports whether more pages exist and whether one is loading.
type Status func() (hasMore, loading bool)

// Options tunes a Trigger. Start from DefaultOptions. Distances share
// whatever unit the caller measures in, pixels or terminal lines.
type Options struct {
	Threshold          float64       // distance from the bottom that counts as near
	RootMargin         float64       // growth of the viewport for sentinel checks
	VisibilityFraction float64       // visible share of the sentinel that fires
	MinInterval        time.Duration // minimum spacing of fires
	Cooldown           time.Duration // how long a fire blocks the next one
	FrameInterval      time.Duration // scroll coalescing window; <= 0 checks synchronously
	Now                func() time.Time
	OnFire             func(Source)
}

// DefaultOptions returns the browser-tuned defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:          200,
		RootMargin:         100,
		VisibilityFraction: 0.1,
		MinInterval:        time.Second,
		Cooldown:           1500 * time.Millisecond,
		FrameInterval:      16 * time.Millisecond,
		Now:                time.Now,
	}
}

// Trigger owns the shared fire state of both detectors.
type Trigger struct {
	status   Status
	loadMore func()
	opts     Options
	limiter  *rate.Limiter

	mu          sync.Mutex
	dispatching bool
	closed      bool
	cooldown    *time.Timer
	listener    *ScrollListener
	observer    *SentinelObserver
}

// NewTrigger returns a trigger calling loadMore when a detector fires and
// status allows it. loadMore runs on the detecting goroutine and should not
// block for long.
func NewTrigger(status Status, loadMore func(), opts Options) *Trigger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	return &Trigger{
		status:   status,
		loadMore: loadMore,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Listen returns the scroll listener bound to t.
func (t *Trigger) Listen() *ScrollListener {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		t.listener = &ScrollListener{trigger: t, detached: t.closed}
	}
	return t.listener
}

// Observe returns the sentinel observer bound to t.
func (t *Trigger) Observe() *SentinelObserver {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.observer == nil {
		t.observer = &SentinelObserver{trigger: t, detached: t.closed}
	}
	return t.observer
}

// Fire requests a page load from source. It reports whether loadMore ran.
func (t *Trigger) Fire(source Source) bool {
	hasMore, loading := t.status()

	t.mu.Lock()
	if t.closed || !hasMore || loading || t.dispatching {
		t.mu.Unlock()
		return false
	}
	if !t.limiter.AllowN(t.opts.Now(), 1) {
		t.mu.Unlock()
		return false
	}
	t.dispatching = true
	if t.opts.Cooldown > 0 {
		if t.cooldown != nil {
			t.cooldown.Stop()
		}
		t.cooldown = time.AfterFunc(t.opts.Cooldown, t.release)
	}
	onFire := t.opts.OnFire
	t.mu.Unlock()

	if onFire != nil {
		onFire(source)
	}
	t.loadMore()

	if t.opts.Cooldown <= 0 {
		t.release()
	}
	return true
}

// Dispatching reports whether a fire is still cooling down.
func (t *Trigger) Dispatching() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dispatching
}

// Close detaches both detectors and stops pending timers. Nothing fires
// afterwards.
func (t *Trigger) Close() {
	t.mu.Lock()
	t.closed = true
	if t.cooldown != nil {
		t.cooldown.Stop()
		t.cooldown = nil
	}
	t.dispatching = false
	listener, observer := t.listener, t.observer
	t.mu.Unlock()

	if listener != nil {
		listener.Detach()
	}
	if observer != nil {
		observer.Detach()
	}
}

func (t *Trigger) release() {
	t.mu.Lock()
	t.dispatching = false
	t.cooldown = nil
	t.mu.Unlock()
}
