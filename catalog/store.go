// Package catalog owns the paginated product list behind the browse view:
// a reducer-driven state machine with append-on-scroll paging, debounced
// search resets, a duplicate fetch guard and a built-in fallback catalog.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/parser"
)

// CanceledMessage settles a fetch whose caller gave up.
const CanceledMessage = "Product request canceled."

// ProductSource fetches catalog pages. *api.Client implements it.
type ProductSource interface {
	GetProducts(ctx context.Context, q models.ProductsQuery) (*models.ProductsResponse, error)
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics records fallbacks and loaded products on m.
func WithMetrics(m *api.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is the single source of truth for the product list. Create one per
// view with NewStore, start it with Mount and release it with Close.
type Store struct {
	source      ProductSource
	limit       int
	initialPage int
	metrics     *api.Metrics
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex // guards state, subscribers, closed, stopMount
	state       State
	subscribers map[int]chan State
	nextSubID   int
	closed      bool
	stopMount   func() bool

	fetching  atomic.Bool
	search    *debouncer
	mountOnce sync.Once
}

// NewStore builds a store reading pages from source.
func NewStore(source ProductSource, cfg *config.Config, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		source:      source,
		limit:       cfg.PageLimit,
		initialPage: cfg.InitialPage,
		logger:      slog.Default(),
		ctx:         ctx,
		cancel:      cancel,
		state:       InitialState(),
		subscribers: make(map[int]chan State),
		search:      newDebouncer(cfg.SearchDebounce),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount performs the initial page fetch. Only the first call has an effect.
// The store closes itself once ctx is done.
func (s *Store) Mount(ctx context.Context) {
	s.mountOnce.Do(func() {
		if ctx != nil {
			stop := context.AfterFunc(ctx, s.Close)
			s.mu.Lock()
			s.stopMount = stop
			s.mu.Unlock()
		}
		s.FetchProducts(s.ctx, s.initialPage, false)
	})
}

// FetchProducts loads one page filtered by the current search query and
// either replaces or appends the products. It returns false without side
// effects when page is below 1, another fetch is in flight or the store is
// closed. Failed requests never surface as errors: the sample catalog is
// installed and an advisory message set before FetchProducts returns.
func (s *Store) FetchProducts(ctx context.Context, page int, appendPage bool) bool {
	if page < 1 {
		s.logger.Debug("ignoring fetch for invalid page", slog.Int("page", page))
		return false
	}
	if !s.fetching.CompareAndSwap(false, true) {
		return false
	}
	defer s.fetching.Store(false)

	if ctx == nil {
		ctx = s.ctx
	}

	_, started, ok := s.dispatch(FetchStart{})
	if !ok {
		return false
	}

	query := models.ProductsQuery{
		Page:   page,
		Limit:  s.limit,
		Search: strings.TrimSpace(started.SearchQuery),
	}
	resp, err := s.source.GetProducts(ctx, query)
	var (
		products   []models.Product
		pagination models.Pagination
	)
	if err == nil {
		products, pagination, err = s.decode(resp)
	}
	if err != nil {
		s.recover(query, err)
		return true
	}

	s.metrics.AddProducts(len(products))
	s.dispatch(FetchSuccess{Products: products, Pagination: pagination, Append: appendPage})
	s.logger.Debug("catalog page loaded",
		slog.Int("page", pagination.CurrentPage),
		slog.Int("total_pages", pagination.TotalPages),
		slog.Int("items", len(products)),
		slog.Bool("append", appendPage),
		slog.String("search", query.Search),
	)
	return true
}

// SetSearchQuery updates the query. A non-blank change schedules a reset
// and refetch after the debounce window; clearing the query while products
// are shown resets and refetches immediately.
func (s *Store) SetSearchQuery(query string) {
	prev, next, ok := s.dispatch(SetSearchQuery{Query: query})
	if !ok || prev.SearchQuery == next.SearchQuery {
		return
	}

	if strings.TrimSpace(query) != "" {
		s.search.Debounce(s.resetAndFetch)
		return
	}

	s.search.Cancel()
	if len(next.Products) == 0 {
		return
	}
	if _, _, ok := s.dispatch(ResetProducts{}); !ok {
		return
	}
	go s.FetchProducts(s.ctx, s.initialPage, false)
}

// LoadMore appends the next page when one exists and nothing is loading.
func (s *Store) LoadMore(ctx context.Context) bool {
	s.mu.Lock()
	hasMore, loading, cursor := s.state.HasMore, s.state.Loading, s.state.Pagination
	var next, total int
	if cursor != nil {
		next, total = cursor.CurrentPage+1, cursor.TotalPages
	}
	s.mu.Unlock()

	if !hasMore || loading || cursor == nil || s.fetching.Load() {
		return false
	}
	if next > total {
		return false
	}
	return s.FetchProducts(ctx, next, true)
}

// RefreshProducts clears the list and reloads the first page.
func (s *Store) RefreshProducts(ctx context.Context) bool {
	if _, _, ok := s.dispatch(ResetProducts{}); !ok {
		return false
	}
	return s.FetchProducts(ctx, s.initialPage, false)
}

// DismissError hides the advisory message.
func (s *Store) DismissError() {
	s.dispatch(DismissError{})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe returns a feed of state changes and a function that ends the
// subscription. The feed holds only the latest state; a slow reader skips
// intermediate states instead of blocking the store. The channel is closed
// on unsubscribe or Close.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.state.Clone()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Close discards the store. Fetches settling afterwards do not touch state.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	stop := s.stopMount
	s.mu.Unlock()

	s.search.Stop()
	s.cancel()
	if stop != nil {
		stop()
	}
}

func (s *Store) resetAndFetch() {
	if _, _, ok := s.dispatch(ResetProducts{}); !ok {
		return
	}
	s.FetchProducts(s.ctx, s.initialPage, false)
}

func (s *Store) decode(resp *models.ProductsResponse) ([]models.Product, models.Pagination, error) {
	if resp == nil || resp.Data == nil || resp.Data.Products == nil {
		return nil, models.Pagination{}, api.ErrMalformed{Err: errors.New("invalid API response structure")}
	}
	products := parser.TransformProducts(resp.Data.Products)
	return products, parser.NormalizePagination(resp.Data.Pagination, s.limit), nil
}

// recover settles a failed fetch. Canceled requests only settle; every
// other failure installs the sample catalog and then the advisory message.
func (s *Store) recover(query models.ProductsQuery, err error) {
	if errors.Is(err, context.Canceled) {
		s.dispatch(FetchError{Message: CanceledMessage})
		return
	}

	s.logger.Warn("product fetch failed, showing sample catalog",
		slog.Int("page", query.Page),
		slog.String("search", query.Search),
		slog.String("category", api.ErrorLabel(err)),
		slog.Any("error", err),
	)
	s.metrics.IncFallback()
	s.dispatch(FetchSuccess{Products: FallbackProducts(), Pagination: fallbackPagination(s.limit)})
	s.dispatch(FetchError{Message: FallbackMessage})
}

// dispatch applies action under the store lock and publishes the result.
// ok is false once the store is closed.
func (s *Store) dispatch(action Action) (prev, next State, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.state, s.state, false
	}
	prev = s.state
	s.state = Reduce(s.state, action)
	for _, ch := range s.subscribers {
		offer(ch, s.state.Clone())
	}
	return prev, s.state, true
}

// offer replaces whatever is buffered in ch with st. Callers hold the store
// lock, so there is never a competing sender.
func offer(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}
