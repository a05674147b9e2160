package infinite

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type loadCounter struct {
	calls   atomic.Int32
	hasMore atomic.Bool
	loading atomic.Bool
}

func newLoadCounter() *loadCounter {
	l := &loadCounter{}
	l.hasMore.Store(true)
	return l
}

func (l *loadCounter) status() (bool, bool) { return l.hasMore.Load(), l.loading.Load() }
func (l *loadCounter) load()                { l.calls.Add(1) }
func (l *loadCounter) count() int           { return int(l.calls.Load()) }

// syncOptions checks synchronously on a fake clock without cooldown.
func syncOptions(clock *fakeClock) Options {
	opts := DefaultOptions()
	opts.FrameInterval = 0
	opts.Cooldown = 0
	opts.Now = clock.Now
	return opts
}

func TestFiresWithinOneSecondLoadOnce(t *testing.T) {
	clock := newFakeClock()
	counter := newLoadCounter()
	trigger := NewTrigger(counter.status, counter.load, syncOptions(clock))
	defer trigger.Close()

	assert.True(t, trigger.Fire(SourceScroll))
	clock.Advance(400 * time.Millisecond)
	assert.False(t, trigger.Fire(SourceSentinel))
	assert.Equal(t, 1, counter.count())

	clock.Advance(700 * time.Millisecond)
	assert.True(t, trigger.Fire(SourceSentinel))
	assert.Equal(t, 2, counter.count())
}

func TestStatusGatesFire(t *testing.T) {
	clock := newFakeClock()
	counter := newLoadCounter()
	trigger := NewTrigger(counter.status, counter.load, syncOptions(clock))
	defer trigger.Close()

	counter.hasMore.Store(false)
	assert.False(t, trigger.Fire(SourceScroll))

	counter.hasMore.Store(true)
	counter.loading.Store(true)
	assert.False(t, trigger.Fire(SourceScroll))

	counter.loading.Store(false)
	assert.True(t, trigger.Fire(SourceScroll), "rejected fires do not spend the interval")
	assert.Equal(t, 1, counter.count())
}

func TestCooldownBlocksUntilExpiry(t *testing.T) {
	counter := newLoadCounter()
	opts := DefaultOptions()
	opts.MinInterval = 0
	opts.Cooldown = 40 * time.Millisecond
	trigger := NewTrigger(counter.status, counter.load, opts)
	defer trigger.Close()

	require.True(t, trigger.Fire(SourceScroll))
	assert.True(t, trigger.Dispatching())
	assert.False(t, trigger.Fire(SourceScroll))

	require.Eventually(t, func() bool { return !trigger.Dispatching() }, time.Second, 5*time.Millisecond)
	assert.True(t, trigger.Fire(SourceScroll))
	assert.Equal(t, 2, counter.count())
}

func TestOnFireReportsSource(t *testing.T) {
	clock := newFakeClock()
	counter := newLoadCounter()
	var sources []Source
	opts := syncOptions(clock)
	opts.OnFire = func(s Source) { sources = append(sources, s) }
	trigger := NewTrigger(counter.status, counter.load, opts)
	defer trigger.Close()

	trigger.Fire(SourceManual)
	clock.Advance(time.Second)
	trigger.Fire(SourceScroll)
	assert.Equal(t, []Source{SourceManual, SourceScroll}, sources)
}

func TestCloseStopsFiring(t *testing.T) {
	counter := newLoadCounter()
	opts := DefaultOptions()
	opts.FrameInterval = 10 * time.Millisecond
	trigger := NewTrigger(counter.status, counter.load, opts)

	listener := trigger.Listen()
	observer := trigger.Observe()
	listener.Notify(ScrollPosition{ScrollTop: 900, ViewportHeight: 100, DocumentHeight: 1000})
	trigger.Close()

	assert.False(t, trigger.Fire(SourceManual))
	assert.False(t, observer.Check(Rect{Y: 10, Width: 10, Height: 10}, Rect{Width: 100, Height: 100}))
	listener.Notify(ScrollPosition{ScrollTop: 900, ViewportHeight: 100, DocumentHeight: 1000})
	assert.Never(t, func() bool { return counter.count() > 0 }, 60*time.Millisecond, 5*time.Millisecond)

	late := NewTrigger(counter.status, counter.load, opts)
	late.Close()
	late.Listen().Notify(ScrollPosition{DocumentHeight: 10})
	assert.Equal(t, 0, counter.count())
}
