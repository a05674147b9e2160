// Package parser normalises API payloads into client-side values and
// validates campaign form input.
package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-campaign-studio/models"
)

// Display fallbacks for products with missing fields.
const (
	FallbackName        = "Unnamed Product"
	FallbackCategory    = "Uncategorized"
	FallbackDescription = "No description available"
)

// ValidateProduct ensures the API item can enter client state.
func ValidateProduct(p *models.APIProduct) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product %q missing id", p.Name)
	}
	return nil
}

// TransformProduct maps an API item to a Product, applying display fallbacks.
func TransformProduct(p *models.APIProduct) models.Product {
	gallery := p.Images.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	return models.Product{
		ID:          p.ID,
		Name:        orDefault(p.Name, FallbackName),
		Image:       p.Images.Primary,
		Category:    orDefault(p.Category, FallbackCategory),
		Description: orDefault(p.Description, FallbackDescription),
		ProductURL:  p.ProductURL,
		Slug:        p.Slug,
		Gallery:     gallery,
	}
}

// TransformProducts drops invalid items and transforms the rest, keeping order.
func TransformProducts(items []*models.APIProduct) []models.Product {
	out := make([]models.Product, 0, len(items))
	for _, item := range items {
		if ValidateProduct(item) != nil {
			continue
		}
		out = append(out, TransformProduct(item))
	}
	return out
}

// NormalizePagination substitutes {1,1,0,limit} for a missing cursor and
// clamps out-of-range fields of a present one.
func NormalizePagination(p *models.Pagination, limit int) models.Pagination {
	if p == nil {
		return models.Pagination{CurrentPage: 1, TotalPages: 1, Total: 0, Limit: limit}
	}
	out := *p
	if out.CurrentPage < 1 {
		out.CurrentPage = 1
	}
	if out.TotalPages < 0 {
		out.TotalPages = 0
	}
	if out.Total < 0 {
		out.Total = 0
	}
	if out.Limit <= 0 {
		out.Limit = limit
	}
	return out
}

// ValidateBrandingRequest checks the campaign form and returns the
// user-facing message for the first problem found.
func ValidateBrandingRequest(req models.BrandingRequest) error {
	if strings.TrimSpace(req.ProductName) == "" {
		return fmt.Errorf("Please enter a product name")
	}
	if strings.TrimSpace(req.Flavor) == "" {
		return fmt.Errorf("Please enter a flavor/context")
	}
	if !contains(models.Tones, req.Tone) {
		return fmt.Errorf("unsupported tone %q", req.Tone)
	}
	if !contains(models.Platforms, req.Platform) {
		return fmt.Errorf("unsupported platform %q", req.Platform)
	}
	if !contains(models.Styles, req.Style) {
		return fmt.Errorf("unsupported style %q", req.Style)
	}
	return nil
}

// Capitalize upper-cases the first letter, as used in preview headers.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
