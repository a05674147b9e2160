// Package history browses previously generated campaigns page by page.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrUnsuccessful is returned when the server answers with success=false.
var ErrUnsuccessful = errors.New("Failed to fetch campaign history")

// Lister fetches one page of campaign history. *api.Client implements it.
type Lister interface {
	ListCampaigns(ctx context.Context, page, limit int) (*models.HistoryResponse, error)
}

// State is a snapshot of the loaded history.
type State struct {
	Items          []*models.HistoryItem
	Loading        bool // appending a page
	InitialLoading bool // loading the first page
	HasMore        bool
	CurrentPage    int
	TotalCount     int
	Error          string
}

type cachedPage struct {
	resp      *models.HistoryResponse
	fetchedAt time.Time
}

// Browser holds the history list. Pages are cached for the configured TTL
// so revisiting the history view does not refetch.
type Browser struct {
	lister Lister
	limit  int
	ttl    time.Duration
	cache  *lru.Cache[int, cachedPage]
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	state State
	busy  bool
}

// NewBrowser builds a browser reading from lister.
func NewBrowser(lister Lister, cfg *config.Config) (*Browser, error) {
	cache, err := lru.New[int, cachedPage](cfg.HistoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("history cache: %w", err)
	}
	return &Browser{
		lister: lister,
		limit:  cfg.HistoryLimit,
		ttl:    cfg.HistoryCacheTTL,
		cache:  cache,
		now:    time.Now,
		logger: slog.Default(),
		state:  State{HasMore: true, InitialLoading: true, Items: []*models.HistoryItem{}},
	}, nil
}

// Load replaces the list with the first page.
func (b *Browser) Load(ctx context.Context) error {
	return b.load(ctx, 1, false)
}

// LoadMore appends the next page. It reports false without a request when
// a page is already loading or the server reported no next page.
func (b *Browser) LoadMore(ctx context.Context) (bool, error) {
	b.mu.Lock()
	if b.busy || !b.state.HasMore {
		b.mu.Unlock()
		return false, nil
	}
	next := b.state.CurrentPage + 1
	b.begin(true)
	b.mu.Unlock()

	return true, b.settle(ctx, next, true)
}

// Retry clears the list and cached pages, then reloads the first page.
func (b *Browser) Retry(ctx context.Context) error {
	b.cache.Purge()
	b.mu.Lock()
	b.state.Items = []*models.HistoryItem{}
	b.state.CurrentPage = 1
	b.state.HasMore = true
	b.mu.Unlock()
	return b.Load(ctx)
}

// Invalidate drops every cached page. Call it after a new campaign is
// generated.
func (b *Browser) Invalidate() {
	b.cache.Purge()
}

// Status reports (hasMore, loading) for a scroll trigger.
func (b *Browser) Status() (bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.HasMore, b.busy
}

// Snapshot returns a copy of the current state.
func (b *Browser) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.state
	out.Items = slices.Clone(b.state.Items)
	return out
}

func (b *Browser) load(ctx context.Context, page int, appendPage bool) error {
	b.mu.Lock()
	b.begin(appendPage)
	b.mu.Unlock()
	return b.settle(ctx, page, appendPage)
}

// begin marks a load in flight. Callers hold b.mu.
func (b *Browser) begin(appendPage bool) {
	b.busy = true
	if appendPage {
		b.state.Loading = true
	} else {
		b.state.InitialLoading = true
	}
	b.state.Error = ""
}

// settle fetches page and applies the result.
func (b *Browser) settle(ctx context.Context, page int, appendPage bool) error {
	resp, err := b.page(ctx, page)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false
	b.state.Loading = false
	b.state.InitialLoading = false

	if err != nil {
		b.state.Error = err.Error()
		if !appendPage {
			b.state.Items = []*models.HistoryItem{}
		}
		b.logger.Warn("campaign history load failed",
			slog.Int("page", page),
			slog.Bool("append", appendPage),
			slog.Any("error", err),
		)
		return err
	}

	if appendPage {
		b.state.Items = append(slices.Clip(b.state.Items), resp.Data...)
	} else {
		b.state.Items = slices.Clone(resp.Data)
	}
	if b.state.Items == nil {
		b.state.Items = []*models.HistoryItem{}
	}
	b.state.TotalCount = resp.TotalCount
	b.state.HasMore = resp.Pagination.HasNext
	b.state.CurrentPage = page
	return nil
}

// page returns page from the cache while it is fresh, otherwise from the
// lister. Unsuccessful answers are not cached.
func (b *Browser) page(ctx context.Context, page int) (*models.HistoryResponse, error) {
	if b.ttl > 0 {
		if hit, ok := b.cache.Get(page); ok && b.now().Sub(hit.fetchedAt) < b.ttl {
			b.logger.Debug("campaign history cache hit", slog.Int("page", page))
			return hit.resp, nil
		}
	}

	resp, err := b.lister.ListCampaigns(ctx, page, b.limit)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Success {
		return nil, ErrUnsuccessful
	}
	if b.ttl > 0 {
		b.cache.Add(page, cachedPage{resp: resp, fetchedAt: b.now()})
	}
	return resp, nil
}
