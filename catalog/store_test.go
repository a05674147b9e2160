package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeSource struct {
	mu      sync.Mutex
	queries []models.ProductsQuery
	respond func(q models.ProductsQuery) (*models.ProductsResponse, error)
	entered chan struct{}
	release chan struct{}
}

func (f *fakeSource) GetProducts(ctx context.Context, q models.ProductsQuery) (*models.ProductsResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	respond := f.respond
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return respond(q)
}

func (f *fakeSource) calls() []models.ProductsQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ProductsQuery(nil), f.queries...)
}

// pagedCatalog serves total items split into pages of limit.
func pagedCatalog(total int) func(q models.ProductsQuery) (*models.ProductsResponse, error) {
	return func(q models.ProductsQuery) (*models.ProductsResponse, error) {
		pages := (total + q.Limit - 1) / q.Limit
		start := (q.Page - 1) * q.Limit
		end := min(start+q.Limit, total)
		items := make([]*models.APIProduct, 0, q.Limit)
		for i := start; i < end; i++ {
			items = append(items, &models.APIProduct{
				ID:   strconv.Itoa(i + 1),
				Name: fmt.Sprintf("%s item %d", q.Search, i+1),
			})
		}
		return &models.ProductsResponse{
			Success: true,
			Data: &models.ProductsData{
				Products:   items,
				Pagination: &models.Pagination{CurrentPage: q.Page, TotalPages: pages, Total: total, Limit: q.Limit},
			},
		}, nil
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.SearchDebounce = 30 * time.Millisecond
	return cfg
}

func newTestStore(t *testing.T, src ProductSource) *Store {
	t.Helper()
	s := NewStore(src, testConfig(), WithMetrics(api.NewMetrics()))
	t.Cleanup(s.Close)
	return s
}

func TestMountLoadsFirstPage(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)

	s.Mount(context.Background())
	s.Mount(context.Background())

	st := s.Snapshot()
	assert.Len(t, st.Products, 12)
	assert.True(t, st.HasMore)
	assert.False(t, st.Loading)
	assert.False(t, st.InitialLoading)
	require.NotNil(t, st.Pagination)
	assert.Equal(t, 1, st.Pagination.CurrentPage)
	assert.Len(t, src.calls(), 1, "mount must fetch once")
	assert.Equal(t, models.ProductsQuery{Page: 1, Limit: 12}, src.calls()[0])
}

func TestLoadMoreAppendsUntilExhausted(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	require.True(t, s.LoadMore(context.Background()))
	st := s.Snapshot()
	assert.Len(t, st.Products, 24)
	assert.Equal(t, 2, st.Pagination.CurrentPage)
	assert.True(t, st.HasMore)

	require.True(t, s.LoadMore(context.Background()))
	st = s.Snapshot()
	assert.Len(t, st.Products, 30)
	assert.False(t, st.HasMore)
	for i, p := range st.Products {
		assert.Equal(t, strconv.Itoa(i+1), p.ID, "products keep page order")
	}

	assert.False(t, s.LoadMore(context.Background()))
	assert.Len(t, src.calls(), 3)
}

func TestLoadMoreBeforeFirstPage(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)

	assert.False(t, s.LoadMore(context.Background()), "no cursor yet")
	assert.Empty(t, src.calls())
}

func TestMissingPaginationDefaults(t *testing.T) {
	src := &fakeSource{respond: func(q models.ProductsQuery) (*models.ProductsResponse, error) {
		return &models.ProductsResponse{Data: &models.ProductsData{
			Products: []*models.APIProduct{{ID: "a"}, {ID: ""}, {ID: "b", Name: "B"}},
		}}, nil
	}}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	st := s.Snapshot()
	require.NotNil(t, st.Pagination)
	assert.Equal(t, models.Pagination{CurrentPage: 1, TotalPages: 1, Total: 0, Limit: 12}, *st.Pagination)
	assert.False(t, st.HasMore)
	assert.Equal(t, []string{"a", "b"}, ids(st.Products), "items without id are dropped")
	assert.Equal(t, "Unnamed Product", st.Products[0].Name)
}

func TestFailureInstallsFallback(t *testing.T) {
	tests := []struct {
		name    string
		respond func(q models.ProductsQuery) (*models.ProductsResponse, error)
	}{
		{
			name: "transport error",
			respond: func(models.ProductsQuery) (*models.ProductsResponse, error) {
				return nil, api.ErrConnection{Err: errors.New("refused")}
			},
		},
		{
			name: "missing data",
			respond: func(models.ProductsQuery) (*models.ProductsResponse, error) {
				return &models.ProductsResponse{Success: true}, nil
			},
		},
		{
			name: "missing products array",
			respond: func(models.ProductsQuery) (*models.ProductsResponse, error) {
				return &models.ProductsResponse{Data: &models.ProductsData{}}, nil
			},
		},
		{
			name: "nil response",
			respond: func(models.ProductsQuery) (*models.ProductsResponse, error) {
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, &fakeSource{respond: tt.respond})
			s.Mount(context.Background())

			st := s.Snapshot()
			assert.Equal(t, FallbackProducts(), st.Products)
			assert.Equal(t, FallbackMessage, st.Error)
			assert.False(t, st.Loading)
			assert.False(t, st.HasMore)
			assert.Equal(t, 2, st.Pagination.Total)
		})
	}
}

func TestCanceledFetchSkipsFallback(t *testing.T) {
	src := &fakeSource{respond: func(models.ProductsQuery) (*models.ProductsResponse, error) {
		return nil, fmt.Errorf("get products page 1: %w", context.Canceled)
	}}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	st := s.Snapshot()
	assert.Empty(t, st.Products)
	assert.Equal(t, CanceledMessage, st.Error)
	assert.False(t, st.Loading)
}

func TestFetchRejectsInvalidPage(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(5)}
	s := newTestStore(t, src)

	assert.False(t, s.FetchProducts(context.Background(), 0, false))
	assert.Empty(t, src.calls())
	assert.False(t, s.Snapshot().Loading)
}

func TestConcurrentFetchIsDropped(t *testing.T) {
	src := &fakeSource{
		respond: pagedCatalog(30),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := newTestStore(t, src)

	done := make(chan bool)
	go func() { done <- s.FetchProducts(context.Background(), 1, false) }()
	<-src.entered

	assert.True(t, s.Snapshot().Loading)
	assert.False(t, s.FetchProducts(context.Background(), 1, false))
	assert.False(t, s.LoadMore(context.Background()))

	close(src.release)
	assert.True(t, <-done)
	assert.Len(t, src.calls(), 1)

	assert.True(t, s.LoadMore(context.Background()), "guard is cleared after settlement")
}

func TestSearchIsDebounced(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	s.SetSearchQuery("cookie")
	s.SetSearchQuery("cookies")
	assert.Len(t, src.calls(), 1, "nothing is fetched inside the window")

	require.Eventually(t, func() bool { return len(src.calls()) == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return !s.Snapshot().Loading }, waitFor, tick)
	assert.Never(t, func() bool { return len(src.calls()) > 2 }, 100*time.Millisecond, tick)

	last := src.calls()[1]
	assert.Equal(t, "cookies", last.Search)
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "cookies", s.Snapshot().SearchQuery)
	assert.Len(t, s.Snapshot().Products, 12)
}

func TestSearchQueryIsTrimmed(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(3)}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	s.SetSearchQuery("  marie ")
	require.Eventually(t, func() bool { return len(src.calls()) == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return !s.Snapshot().Loading }, waitFor, tick)
	assert.Equal(t, "marie", src.calls()[1].Search)
	assert.Equal(t, "  marie ", s.Snapshot().SearchQuery)
}

func TestClearingSearchRefetchesImmediately(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	s.SetSearchQuery("marie")
	require.Eventually(t, func() bool { return len(src.calls()) == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return len(s.Snapshot().Products) == 12 }, waitFor, tick)

	s.SetSearchQuery("")
	st := s.Snapshot()
	assert.Empty(t, st.Products, "reset happens before SetSearchQuery returns")
	assert.Nil(t, st.Pagination)

	require.Eventually(t, func() bool { return len(src.calls()) == 3 }, waitFor, tick)
	require.Eventually(t, func() bool { return len(s.Snapshot().Products) == 12 }, waitFor, tick)
	assert.Equal(t, "", src.calls()[2].Search)
}

func TestClearingSearchCancelsPendingSearch(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	s.SetSearchQuery("ma")
	s.SetSearchQuery("")

	require.Eventually(t, func() bool { return len(src.calls()) == 2 }, waitFor, tick)
	assert.Never(t, func() bool { return len(src.calls()) > 2 }, 100*time.Millisecond, tick)
	assert.Equal(t, "", src.calls()[1].Search)
}

func TestClearingEmptyCatalogDoesNotFetch(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(0)}
	s := newTestStore(t, src)
	s.Mount(context.Background())
	require.Empty(t, s.Snapshot().Products)

	s.SetSearchQuery("x")
	s.SetSearchQuery("")
	assert.Never(t, func() bool { return len(src.calls()) > 1 }, 100*time.Millisecond, tick)
}

func TestUnchangedQueryIsIgnored(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)
	s.Mount(context.Background())

	s.SetSearchQuery("")
	assert.Never(t, func() bool { return len(src.calls()) > 1 }, 80*time.Millisecond, tick)
}

func TestRefreshAndDismiss(t *testing.T) {
	fail := true
	var mu sync.Mutex
	src := &fakeSource{respond: func(q models.ProductsQuery) (*models.ProductsResponse, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, api.ErrTimeout{Err: context.DeadlineExceeded}
		}
		return pagedCatalog(4)(q)
	}}
	s := newTestStore(t, src)
	s.Mount(context.Background())
	require.Equal(t, FallbackMessage, s.Snapshot().Error)

	s.DismissError()
	st := s.Snapshot()
	assert.Empty(t, st.Error)
	assert.Len(t, st.Products, 2, "dismiss keeps the sample catalog")

	mu.Lock()
	fail = false
	mu.Unlock()
	require.True(t, s.RefreshProducts(context.Background()))
	st = s.Snapshot()
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(st.Products))
	assert.Empty(t, st.Error)
}

func TestSubscribeDeliversLatestState(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := newTestStore(t, src)

	updates, unsubscribe := s.Subscribe()
	first := <-updates
	assert.True(t, first.InitialLoading)

	s.Mount(context.Background())
	latest := <-updates
	assert.Len(t, latest.Products, 12)

	unsubscribe()
	_, open := <-updates
	assert.False(t, open)
	unsubscribe()
}

func TestCloseStopsUpdates(t *testing.T) {
	src := &fakeSource{
		respond: pagedCatalog(30),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := NewStore(src, testConfig())
	updates, _ := s.Subscribe()
	<-updates

	done := make(chan bool)
	go func() { done <- s.FetchProducts(context.Background(), 1, false) }()
	<-src.entered

	s.Close()
	_, open := <-updates
	assert.False(t, open)

	close(src.release)
	<-done
	st := s.Snapshot()
	assert.Empty(t, st.Products, "late results are discarded")
	assert.True(t, st.Loading)

	assert.False(t, s.FetchProducts(context.Background(), 1, false))
	s.SetSearchQuery("late")
	assert.Empty(t, s.Snapshot().SearchQuery)

	late, _ := s.Subscribe()
	_, open = <-late
	assert.False(t, open)
	s.Close()
}

func TestMountContextClosesStore(t *testing.T) {
	src := &fakeSource{respond: pagedCatalog(30)}
	s := NewStore(src, testConfig())
	updates, _ := s.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	s.Mount(ctx)
	cancel()

	require.Eventually(t, func() bool {
		for {
			select {
			case _, open := <-updates:
				if !open {
					return true
				}
			default:
				return false
			}
		}
	}, waitFor, tick)
	assert.False(t, s.LoadMore(context.Background()))
}

func TestStoreWithHTTPClient(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "http://example.test"
	cfg.MaxRetries = 0

	client, err := api.NewClient(cfg)
	require.NoError(t, err)
	transport := httpmock.NewMockTransport()
	client.WithTransport(transport)

	transport.RegisterResponder(http.MethodGet, "http://example.test/api/products",
		func(req *http.Request) (*http.Response, error) {
			page, _ := strconv.Atoi(req.URL.Query().Get("page"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"products": []map[string]any{
						{"_id": fmt.Sprintf("p%d", page), "name": "Bourbon", "images": map[string]any{"primary": "img.png"}},
					},
					"pagination": map[string]any{"currentPage": page, "totalPages": 2, "total": 2, "limit": 12},
				},
			})
		})

	s := NewStore(client, cfg, WithMetrics(client.Metrics))
	defer s.Close()
	s.Mount(context.Background())
	require.True(t, s.LoadMore(context.Background()))

	st := s.Snapshot()
	assert.Equal(t, []string{"p1", "p2"}, ids(st.Products))
	assert.Equal(t, "img.png", st.Products[0].Image)
	assert.False(t, st.HasMore)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestStoreWithHTTPClientFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "http://example.test"
	cfg.MaxRetries = 0

	client, err := api.NewClient(cfg)
	require.NoError(t, err)
	transport := httpmock.NewMockTransport()
	client.WithTransport(transport)
	transport.RegisterResponder(http.MethodGet, "http://example.test/api/products",
		httpmock.NewStringResponder(http.StatusInternalServerError, "down"))

	s := NewStore(client, cfg, WithMetrics(client.Metrics))
	defer s.Close()
	s.Mount(context.Background())

	st := s.Snapshot()
	assert.Equal(t, FallbackMessage, st.Error)
	assert.Len(t, st.Products, 2)
}
