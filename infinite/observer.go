package infinite

import "sync"

// Rect is an axis-aligned box in viewport coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Grow expands r by margin on every side.
func (r Rect) Grow(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Area is zero for empty or inverted boxes.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Intersect returns the overlap of r and o and whether they touch at all.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.Width, o.X+o.Width), min(r.Y+r.Height, o.Y+o.Height)
	if x1 < x0 || y1 < y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// VisibleFraction is the share of target inside root, in [0, 1]. A target
// without area counts as fully visible while it touches root.
func VisibleFraction(target, root Rect) float64 {
	overlap, ok := target.Intersect(root)
	if !ok {
		return 0
	}
	area := target.Area()
	if area == 0 {
		return 1
	}
	return overlap.Area() / area
}

// SentinelObserver watches a marker placed after the last list item and
// fires when the marker comes into view.
type SentinelObserver struct {
	trigger *Trigger

	mu       sync.Mutex
	visible  bool
	detached bool
}

// Check measures the sentinel against the viewport grown by the root
// margin. Like an intersection observer it fires on entry only, and only an
// entry that actually fired is consumed. While a load is in flight or
// nothing is left the observer re-arms, so a sentinel still visible once
// the load settles fires again.
func (o *SentinelObserver) Check(sentinel, viewport Rect) bool {
	opts := o.trigger.opts
	visible := VisibleFraction(sentinel, viewport.Grow(opts.RootMargin)) >= opts.VisibilityFraction
	hasMore, loading := o.trigger.status()

	o.mu.Lock()
	if o.detached {
		o.mu.Unlock()
		return false
	}
	if !visible || loading || !hasMore {
		o.visible = false
		o.mu.Unlock()
		return false
	}
	entered := !o.visible
	o.mu.Unlock()

	if !entered || !o.trigger.Fire(SourceSentinel) {
		return false
	}

	o.mu.Lock()
	o.visible = !o.detached
	o.mu.Unlock()
	return true
}

// Detach stops the observer.
func (o *SentinelObserver) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.detached = true
	o.visible = false
}
