package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-campaign-studio/catalog"
	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/models"
)

// ErrCatalogUnavailable is returned when the store could not reach the API
// and holds sample products or nothing at all.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Catalog is the part of *catalog.Store the walker drives.
type Catalog interface {
	Mount(ctx context.Context)
	LoadMore(ctx context.Context) bool
	Snapshot() catalog.State
}

// Walk mounts cat and loads pages until the catalog is exhausted, passing
// each newly appended slice of products to emit. It returns the number of
// pages loaded.
func Walk(ctx context.Context, cat Catalog, emit func(...models.Product) error) (int, error) {
	cat.Mount(ctx)
	st := cat.Snapshot()
	if st.Error != "" {
		return 0, fmt.Errorf("%w: %s", ErrCatalogUnavailable, st.Error)
	}

	pages, emitted := 0, 0
	for {
		if st.Pagination != nil {
			pages = st.Pagination.CurrentPage
		}
		if err := emit(st.Products[emitted:]...); err != nil {
			return pages, err
		}
		emitted = len(st.Products)
		slog.Debug("export page walked", slog.Int("page", pages), slog.Int("items", emitted))

		if !st.HasMore {
			return pages, nil
		}
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		if !cat.LoadMore(ctx) {
			return pages, nil
		}
		st = cat.Snapshot()
		if st.Error != "" {
			return pages, fmt.Errorf("%w: page %d: %s", ErrCatalogUnavailable, pages+1, st.Error)
		}
	}
}

// ErrIncomplete is returned when the sink holds fewer products than the
// exporter accepted.
var ErrIncomplete = errors.New("export incomplete")

// Summary describes a finished export.
type Summary struct {
	Stats
	Pages    int
	Duration time.Duration
}

// Run walks cat into sink and checks that every accepted product reached
// it. An empty catalog is a valid export of zero products. The sink is not
// closed.
func Run(ctx context.Context, cfg *config.Config, cat Catalog, sink Sink, workers int, opts ...Option) (Summary, error) {
	start := time.Now()
	e, err := NewExporter(ctx, sink, cfg, workers, opts...)
	if err != nil {
		return Summary{}, err
	}

	pages, walkErr := Walk(ctx, cat, e.Add)
	stats, closeErr := e.Close()
	summary := Summary{Stats: stats, Pages: pages, Duration: time.Since(start)}

	switch {
	case walkErr != nil:
		return summary, fmt.Errorf("walk catalog: %w", walkErr)
	case closeErr != nil:
		return summary, fmt.Errorf("drain exporter: %w", closeErr)
	case sink.Count() != stats.Written:
		return summary, fmt.Errorf("%w: %d of %d products in output", ErrIncomplete, sink.Count(), stats.Written)
	}
	slog.Info("catalog exported",
		slog.Int("pages", pages),
		slog.Int64("written", stats.Written),
		slog.Any("skipped", stats.Skipped),
	)
	return summary, nil
}
