// Package api is the HTTP client for the campaign service: product
// listing, campaign generation and campaign history.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
)

// Endpoint labels used for logging and metrics.
const (
	EndpointProducts = "products"
	EndpointGenerate = "generate"
	EndpointHistory  = "history"
)

// Client wraps colly collectors configured for the campaign API. Listing
// and history calls share one collector; generation uses a second one with
// the longer generation timeout.
type Client struct {
	cfg       *config.Config
	listing   *colly.Collector
	generator *colly.Collector
	Metrics   *Metrics
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	c := &Client{
		cfg:       cfg,
		listing:   newCollector(parsed.Hostname(), cfg, cfg.Timeout),
		generator: newCollector(parsed.Hostname(), cfg, cfg.GenerateTimeout),
		Metrics:   NewMetrics(),
	}
	c.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	return c, nil
}

func newCollector(host string, cfg *config.Config, timeout time.Duration) *colly.Collector {
	collector := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(timeout)
	collector.IgnoreRobotsTxt = true
	return collector
}

// WithTransport replaces the round tripper of every collector.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.listing.WithTransport(rt)
	c.generator.WithTransport(rt)
}

// GetProducts fetches one catalog page. Transient failures are retried
// with exponential backoff up to MaxRetries.
func (c *Client) GetProducts(ctx context.Context, q models.ProductsQuery) (*models.ProductsResponse, error) {
	if q.Page <= 0 {
		q.Page = c.cfg.InitialPage
	}
	if q.Limit <= 0 {
		q.Limit = c.cfg.PageLimit
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set("search", search)
	}
	target := c.cfg.Endpoint(c.cfg.ProductsPath) + "?" + params.Encode()

	var (
		body []byte
		err  error
	)
	for attempt := 1; ; attempt++ {
		body, err = c.do(ctx, c.listing, EndpointProducts, http.MethodGet, target, nil)
		if err == nil || attempt > c.cfg.MaxRetries || !retryable(err) {
			break
		}
		c.Metrics.IncRetries()
		delay := c.backoff(attempt)
		slog.Debug("retrying product listing",
			slog.Int("page", q.Page),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("get products page %d: %w", q.Page, err)
	}

	var resp models.ProductsResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("get products page %d: %w", q.Page, err)
	}
	return &resp, nil
}

// GenerateBranding requests generated campaign content. It is not retried:
// every call may synthesise a new image.
func (c *Client) GenerateBranding(ctx context.Context, req models.BrandingRequest) (*models.BrandingResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode branding request: %w", err)
	}

	body, err := c.do(ctx, c.generator, EndpointGenerate, http.MethodPost, c.cfg.Endpoint(c.cfg.GeneratePath), payload)
	if err != nil {
		return nil, fmt.Errorf("generate campaign: %w", err)
	}

	var resp models.BrandingResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("generate campaign: %w", err)
	}
	return &resp, nil
}

// ListCampaigns fetches one page of campaign history.
func (c *Client) ListCampaigns(ctx context.Context, page, limit int) (*models.HistoryResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = c.cfg.HistoryLimit
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, c.listing, EndpointHistory, http.MethodGet, c.cfg.Endpoint(c.cfg.HistoryPath)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("list campaigns page %d: %w", page, err)
	}

	var resp models.HistoryResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("list campaigns page %d: %w", page, err)
	}
	return &resp, nil
}

// do issues one request on a clone of base and returns the body of a 2xx
// response. The colly backend does not observe ctx; a request whose context
// ends while in flight completes and its result is discarded.
func (c *Client) do(ctx context.Context, base *colly.Collector, endpoint, method, target string, payload []byte) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		status  int
		body    []byte
		respErr error
	)
	requestID := uuid.NewString()

	collector := base.Clone()
	collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		slog.Debug("api request",
			slog.String("endpoint", endpoint),
			slog.String("method", r.Method),
			slog.String("url", r.URL.String()),
			slog.String("request_id", requestID),
		)
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			c.Metrics.ObserveDuration(endpoint, time.Since(start))
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		respErr = err
		if r != nil {
			status = r.StatusCode
			body = r.Body
		}
	})

	hdr := http.Header{}
	hdr.Set("Accept", "application/json")
	hdr.Set("User-Agent", c.cfg.UserAgent)
	hdr.Set("X-Request-ID", requestID)
	var reader io.Reader
	if payload != nil {
		hdr.Set("Content-Type", "application/json")
		reader = bytes.NewReader(payload)
	}

	c.Metrics.IncRequest(endpoint)
	if err := collector.Request(method, target, reader, nil, hdr); err != nil && respErr == nil {
		respErr = err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if classified := classifyError(respErr, status); classified != nil {
		category := ErrorLabel(classified)
		c.Metrics.IncError(category)
		slog.Warn("api request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", status),
			slog.String("category", category),
			slog.String("request_id", requestID),
			slog.Any("error", respErr),
		)
		return nil, classified
	}
	return body, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := c.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := c.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrMalformed{Err: fmt.Errorf("empty body")}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ErrMalformed{Err: err}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
