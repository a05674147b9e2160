package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFallbackProductsAreCopies(t *testing.T) {
	first := FallbackProducts()
	first[0].Name = "mutated"

	second := FallbackProducts()
	assert.Equal(t, "Britannia Good Day Cookies", second[0].Name)
	assert.Equal(t, []string{"1", "2"}, ids(second))
	assert.NotNil(t, second[1].Gallery)
}

func TestFallbackPagination(t *testing.T) {
	p := fallbackPagination(12)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 12, p.Limit)
	assert.False(t, p.HasMore())
}

func TestDebouncerCoalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	defer d.Stop()

	fired := make(chan int, 4)
	for i := 1; i <= 3; i++ {
		n := i
		d.Debounce(func() { fired <- n })
	}

	select {
	case n := <-fired:
		assert.Equal(t, 3, n)
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
	assert.Never(t, func() bool { return len(fired) > 0 }, 60*time.Millisecond, 10*time.Millisecond)
}

func TestDebouncerCancelAndStop(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	fired := make(chan struct{}, 2)

	d.Debounce(func() { fired <- struct{}{} })
	d.Cancel()
	d.Stop()
	d.Debounce(func() { fired <- struct{}{} })

	assert.Never(t, func() bool { return len(fired) > 0 }, 50*time.Millisecond, 10*time.Millisecond)
}
