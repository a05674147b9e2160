// Package models defines the wire and client data structures.
package models

// APIProduct is a catalog item as served by the products endpoint.
type APIProduct struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	ProductURL        string    `json:"productUrl"`
	Slug              string    `json:"slug"`
	Images            APIImages `json:"images"`
	ProductHighlights []string  `json:"productHighlights,omitempty"`
	Source            string    `json:"source,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         string    `json:"createdAt,omitempty"`
	UpdatedAt         string    `json:"updatedAt,omitempty"`
	ScrapedAt         string    `json:"scrapedAt,omitempty"`
}

// APIImages groups the image URLs of an APIProduct.
type APIImages struct {
	Primary    string   `json:"primary"`
	Gallery    []string `json:"gallery"`
	Thumbnails []string `json:"thumbnails"`
}

// Pagination is the server-reported page cursor.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
	Limit       int `json:"limit"`
}

// HasMore reports whether pages remain after the current one.
func (p Pagination) HasMore() bool {
	return p.CurrentPage < p.TotalPages
}

// Filters echoes the filters applied by the server.
type Filters struct {
	Category *string `json:"category"`
	Search   *string `json:"search"`
}

// ProductsData is the data block of a products response. A nil Products
// slice means the array was missing from the payload.
type ProductsData struct {
	Products   []*APIProduct `json:"products"`
	Pagination *Pagination   `json:"pagination"`
}

// ProductsResponse is the envelope returned by the products endpoint.
type ProductsResponse struct {
	Success   bool          `json:"success"`
	Data      *ProductsData `json:"data"`
	Filters   Filters       `json:"filters"`
	Timestamp string        `json:"timestamp"`
}

// ProductsQuery selects one page of the catalog.
type ProductsQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// Product is the client-side catalog item held in state.
type Product struct {
	ID          string   `csv:"id" json:"id"`
	Name        string   `csv:"name" json:"name"`
	Image       string   `csv:"image" json:"image"`
	Category    string   `csv:"category" json:"category"`
	Description string   `csv:"description" json:"description"`
	ProductURL  string   `csv:"product_url" json:"productUrl,omitempty"`
	Slug        string   `csv:"slug" json:"slug,omitempty"`
	Gallery     []string `csv:"-" json:"gallery,omitempty"`
}
