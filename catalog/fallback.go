package catalog

import "github.com/aluiziolira/go-campaign-studio/models"

// FallbackMessage is surfaced when the sample catalog replaces a failed fetch.
const FallbackMessage = "Unable to connect to server. Showing sample products."

var fallbackItems = []models.Product{
	{
		ID:          "1",
		Name:        "Britannia Good Day Cookies",
		Category:    "Cookies & Biscuits",
		Description: "Delicious butter cookies perfect for any time of day",
		ProductURL:  "#",
		Slug:        "good-day-cookies",
	},
	{
		ID:          "2",
		Name:        "Britannia Marie Gold",
		Category:    "Biscuits",
		Description: "Classic marie biscuits enriched with vitamins and minerals",
		ProductURL:  "#",
		Slug:        "marie-gold",
	},
}

// FallbackProducts returns a fresh copy of the built-in sample catalog.
func FallbackProducts() []models.Product {
	out := make([]models.Product, len(fallbackItems))
	for i, p := range fallbackItems {
		p.Gallery = []string{}
		out[i] = p
	}
	return out
}

func fallbackPagination(limit int) models.Pagination {
	return models.Pagination{CurrentPage: 1, TotalPages: 1, Total: len(fallbackItems), Limit: limit}
}
