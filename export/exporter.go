// Package export writes the product catalog to disk: an exporter
// de-duplicates and batches products into CSV and JSONL sinks, fed by a
// walker that pages through the catalog store.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrClosed is returned by Add after Close.
	ErrClosed = errors.New("export: closed")
	// ErrDrainTimeout is returned when workers do not finish in time.
	ErrDrainTimeout = errors.New("export: drain timed out")
)

// drainTimeout bounds how long Close waits for workers.
var drainTimeout = 30 * time.Second

// Reason says why a product was left out.
type Reason string

const (
	ReasonMissingID Reason = "missing_id"
	ReasonDuplicate Reason = "duplicate_id"
)

// Stats counts what an exporter did.
type Stats struct {
	Written int64
	Skipped map[Reason]int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMetrics counts written and skipped products on m.
func WithMetrics(m *api.Metrics) Option {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// Exporter fans products out to a pool of workers that batch them into a
// sink. Workers stop at the first write error or when ctx ends.
type Exporter struct {
	sink      Sink
	batchSize int
	items     chan models.Product
	seen      *lru.Cache[string, struct{}] // bounded; evicted ids can repeat
	metrics   *api.Metrics

	ctx   context.Context
	group *errgroup.Group

	mu      sync.Mutex // guards closed, stats
	closed  bool
	stats   Stats
	pending sync.WaitGroup // Add calls that may still send on items
	seal    sync.Once
}

// NewExporter starts workers writing to sink. BatchSize, PipelineBuffer and
// DedupeMaxSize come from cfg.
func NewExporter(ctx context.Context, sink Sink, cfg *config.Config, workers int, opts ...Option) (*Exporter, error) {
	seen, err := lru.New[string, struct{}](cfg.DedupeMaxSize)
	if err != nil {
		return nil, fmt.Errorf("dedupe set: %w", err)
	}
	group, gctx := errgroup.WithContext(ctx)
	e := &Exporter{
		sink:      sink,
		batchSize: max(1, cfg.BatchSize),
		items:     make(chan models.Product, cfg.PipelineBuffer),
		seen:      seen,
		ctx:       gctx,
		group:     group,
		stats:     Stats{Skipped: map[Reason]int{}},
	}
	for _, opt := range opts {
		opt(e)
	}
	for i := 0; i < max(1, workers); i++ {
		group.Go(e.work)
	}
	return e, nil
}

// Add queues products. It blocks while the buffer is full and fails once
// the exporter is closed or its workers stopped.
func (e *Exporter) Add(products ...models.Product) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.pending.Add(1)
	e.mu.Unlock()
	defer e.pending.Done()

	for _, p := range products {
		if err := context.Cause(e.ctx); err != nil {
			return err
		}
		select {
		case e.items <- p:
		case <-e.ctx.Done():
			return context.Cause(e.ctx)
		}
	}
	return nil
}

// Close stops intake, waits for the workers to write what is queued and
// returns the final stats.
func (e *Exporter) Close() (Stats, error) {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.seal.Do(func() {
		go func() {
			e.pending.Wait()
			close(e.items)
		}()
	})

	done := make(chan error, 1)
	go func() { done <- e.group.Wait() }()
	select {
	case err := <-done:
		return e.Stats(), err
	case <-time.After(drainTimeout):
		return e.Stats(), fmt.Errorf("%w after %s", ErrDrainTimeout, drainTimeout)
	}
}

// Stats returns a copy of the counters so far.
func (e *Exporter) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{Written: e.stats.Written, Skipped: maps.Clone(e.stats.Skipped)}
}

func (e *Exporter) work() error {
	batch := make([]models.Product, 0, e.batchSize)
	for {
		select {
		case <-e.ctx.Done():
			return context.Cause(e.ctx)
		case p, ok := <-e.items:
			if !ok {
				return e.write(batch)
			}
			if p, ok = e.accept(p); !ok {
				continue
			}
			batch = append(batch, p)
			if len(batch) < e.batchSize {
				continue
			}
			if err := e.write(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
}

func (e *Exporter) accept(p models.Product) (models.Product, bool) {
	p.ID = strings.TrimSpace(p.ID)
	switch {
	case p.ID == "":
		e.skip(ReasonMissingID)
		return p, false
	case e.seenBefore(p.ID):
		e.skip(ReasonDuplicate)
		return p, false
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	return p, true
}

func (e *Exporter) seenBefore(id string) bool {
	found, _ := e.seen.ContainsOrAdd(id, struct{}{})
	return found
}

func (e *Exporter) skip(reason Reason) {
	e.mu.Lock()
	e.stats.Skipped[reason]++
	e.mu.Unlock()
	e.metrics.IncExportSkipped(string(reason))
}

func (e *Exporter) write(batch []models.Product) error {
	if len(batch) == 0 {
		return nil
	}
	if err := e.sink.Write(batch); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}

	e.mu.Lock()
	e.stats.Written += int64(len(batch))
	written := e.stats.Written
	e.mu.Unlock()

	e.metrics.AddExported(len(batch))
	slog.Debug("export batch written", slog.Int("items", len(batch)), slog.Int64("total", written))
	return nil
}
