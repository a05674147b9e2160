package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/models"
)

// Format selects the export file layout.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "json"
	FormatDual  Format = "dual" // CSV plus a .jsonl file beside it
)

// ParseFormat accepts csv, json or dual in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSONL, FormatDual:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Sink receives accepted products in batches.
type Sink interface {
	Write(batch []models.Product) error
	Close() error
	// Count is the number of products durably handed to the output.
	Count() int64
}

var csvColumns = []string{"id", "name", "category", "description", "image", "product_url", "slug", "gallery_count"}

func csvRecord(p models.Product) []string {
	return []string{
		p.ID, p.Name, p.Category, p.Description, p.Image, p.ProductURL, p.Slug,
		strconv.Itoa(len(p.Gallery)),
	}
}

// fileSink encodes products one at a time into a single file. flush pushes
// encoder buffers to the file after every batch.
type fileSink struct {
	path   string
	file   *os.File
	encode func(models.Product) error
	flush  func() error

	mu    sync.Mutex
	count int64
}

// NewCSVSink creates path with a header row. An export of an empty catalog
// leaves just the header.
func NewCSVSink(path string) (Sink, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	s := &fileSink{
		path:   path,
		file:   f,
		encode: func(p models.Product) error { return w.Write(csvRecord(p)) },
		flush: func() error {
			w.Flush()
			return w.Error()
		},
	}
	if err := w.Write(csvColumns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv header %s: %w", path, err)
	}
	return s, nil
}

// NewJSONLSink creates path and writes one JSON object per line.
func NewJSONLSink(path string) (Sink, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	return &fileSink{
		path:   path,
		file:   f,
		encode: func(p models.Product) error { return enc.Encode(p) },
		flush:  buf.Flush,
	}, nil
}

func (s *fileSink) Write(batch []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range batch {
		if err := s.encode(p); err != nil {
			return fmt.Errorf("encode %s into %s: %w", p.ID, s.path, err)
		}
	}
	if err := s.flush(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	s.count += int64(len(batch))
	return nil
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.flush(), s.file.Close())
}

func (s *fileSink) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// fanout writes every batch to each sink in order.
type fanout []Sink

func (f fanout) Write(batch []models.Product) error {
	for _, s := range f {
		if err := s.Write(batch); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) Close() error {
	errs := make([]error, 0, len(f))
	for _, s := range f {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Count is the number of products every sink has received.
func (f fanout) Count() int64 {
	if len(f) == 0 {
		return 0
	}
	n := f[0].Count()
	for _, s := range f[1:] {
		n = min(n, s.Count())
	}
	return n
}

// Open creates the sink configured by cfg.ExportFile and cfg.ExportFormat.
func Open(cfg *config.Config) (Sink, error) {
	format, err := ParseFormat(cfg.ExportFormat)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSONL:
		return NewJSONLSink(cfg.ExportFile)
	case FormatDual:
		csvSink, err := NewCSVSink(cfg.ExportFile)
		if err != nil {
			return nil, err
		}
		jsonPath := strings.TrimSuffix(cfg.ExportFile, filepath.Ext(cfg.ExportFile)) + ".jsonl"
		jsonSink, err := NewJSONLSink(jsonPath)
		if err != nil {
			_ = csvSink.Close()
			return nil, err
		}
		return fanout{csvSink, jsonSink}, nil
	default:
		return NewCSVSink(cfg.ExportFile)
	}
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}
	return f, nil
}
