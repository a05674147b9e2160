// Package campaign generates marketing content for a product.
package campaign

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/parser"
)

// Messages shown after a generation attempt.
const (
	SuccessMessage = "Campaign generated successfully!"
	FailureMessage = "Failed to generate campaign. Please try again."
)

// Generator calls the generation endpoint. *api.Client implements it.
type Generator interface {
	GenerateBranding(ctx context.Context, req models.BrandingRequest) (*models.BrandingResponse, error)
}

// Invalidator drops cached history. *history.Browser implements it.
type Invalidator interface {
	Invalidate()
}

// InvalidRequestError wraps a form validation failure. Its message is
// meant for the user as is.
type InvalidRequestError struct {
	Err error
}

func (e InvalidRequestError) Error() string {
	return e.Err.Error()
}

func (e InvalidRequestError) Unwrap() error {
	return e.Err
}

// Option configures a Service.
type Option func(*Service)

// WithHistory invalidates h after every successful generation.
func WithHistory(h Invalidator) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithMetrics counts generated campaigns on m.
func WithMetrics(m *api.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service validates form input and requests generated campaigns.
type Service struct {
	gen     Generator
	history Invalidator
	metrics *api.Metrics
}

// NewService builds a Service calling gen.
func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{gen: gen}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate validates req and returns the generated campaign. Validation
// problems come back as InvalidRequestError without calling the API.
func (s *Service) Generate(ctx context.Context, req models.BrandingRequest) (*models.Campaign, error) {
	if err := parser.ValidateBrandingRequest(req); err != nil {
		return nil, InvalidRequestError{Err: err}
	}

	start := time.Now()
	resp, err := s.gen.GenerateBranding(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Success {
		msg := FailureMessage
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return nil, errors.New(msg)
	}

	if s.history != nil {
		s.history.Invalidate()
	}
	s.metrics.IncCampaigns()
	slog.Info("campaign generated",
		slog.String("product", req.ProductName),
		slog.String("platform", string(req.Platform)),
		slog.Duration("elapsed", time.Since(start)),
	)

	campaign := resp.Data
	if campaign.ProductName == "" {
		campaign.ProductName = req.ProductName
	}
	if campaign.Platform == "" {
		campaign.Platform = string(req.Platform)
	}
	if campaign.Tone == "" {
		campaign.Tone = string(req.Tone)
	}
	if campaign.Style == "" {
		campaign.Style = string(req.Style)
	}
	return &campaign, nil
}
