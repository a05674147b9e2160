package models

// Tone is the voice of a generated campaign.
type Tone string

const (
	ToneYouth        Tone = "youth"
	ToneFamily       Tone = "family"
	ToneProfessional Tone = "professional"
	ToneHealth       Tone = "health"
	ToneTraditional  Tone = "traditional"
)

// Platform is the channel a campaign is generated for.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformEmail     Platform = "email"
)

// Style is the visual direction of the generated image.
type Style string

const (
	StyleMinimalist Style = "minimalist"
	StyleVibrant    Style = "vibrant"
	StylePremium    Style = "premium"
	StylePlayful    Style = "playful"
)

// Tones lists every tone in form order.
var Tones = []Tone{ToneYouth, ToneFamily, ToneProfessional, ToneHealth, ToneTraditional}

// Platforms lists every platform in form order.
var Platforms = []Platform{PlatformInstagram, PlatformLinkedIn, PlatformEmail}

// Styles lists every style in form order.
var Styles = []Style{StyleMinimalist, StyleVibrant, StylePremium, StylePlayful}

// BrandingRequest is the body of a campaign generation call.
type BrandingRequest struct {
	ProductName string   `json:"productName"`
	Tone        Tone     `json:"tone"`
	Platform    Platform `json:"platform"`
	Style       Style    `json:"style"`
	Flavor      string   `json:"flavor"`
}

// NewBrandingRequest returns a request with the form defaults.
func NewBrandingRequest(productName string) BrandingRequest {
	return BrandingRequest{
		ProductName: productName,
		Tone:        ToneYouth,
		Platform:    PlatformInstagram,
		Style:       StyleMinimalist,
	}
}

// BrandingResponse is the envelope returned by the generate endpoint.
type BrandingResponse struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Data      Campaign `json:"data"`
	Timestamp string   `json:"timestamp"`
}

// Campaign is generated marketing content for one product and platform.
type Campaign struct {
	ID             string           `json:"_id"`
	ProductName    string           `json:"productName"`
	Tone           string           `json:"tone"`
	Platform       string           `json:"platform"`
	Style          string           `json:"style"`
	Flavor         string           `json:"flavor"`
	Caption        string           `json:"caption"`
	Tagline        string           `json:"tagline"`
	ImageURL       string           `json:"imageUrl"`
	LocalImagePath string           `json:"localImagePath"`
	Prompt         string           `json:"prompt"`
	Hashtags       []string         `json:"hashtags"`
	CTA            string           `json:"cta"`
	Metadata       CampaignMetadata `json:"metadata"`
	CreatedAt      string           `json:"createdAt"`
}

// CampaignMetadata describes the generated asset.
type CampaignMetadata struct {
	Dimensions     string          `json:"dimensions"`
	Format         string          `json:"format"`
	FreepikTaskID  string          `json:"freepikTaskId"`
	GeneratedAt    string          `json:"generatedAt,omitempty"`
	ContentDetails *ContentDetails `json:"contentDetails,omitempty"`
}

// ContentDetails carries text generation statistics.
type ContentDetails struct {
	Model            string `json:"model"`
	RelevantProducts int    `json:"relevantProducts"`
	WordCount        int    `json:"wordCount"`
	CharacterCount   int    `json:"characterCount"`
}

// HistoryItem is one past generation as listed by the history endpoint.
type HistoryItem struct {
	ID               string           `json:"_id"`
	ProductName      string           `json:"productName"`
	Platform         string           `json:"platform"`
	Tone             string           `json:"tone"`
	Style            string           `json:"style"`
	Flavor           string           `json:"flavor"`
	GeneratedCaption string           `json:"generatedCaption"`
	GeneratedTagline string           `json:"generatedTagline"`
	ImageURL         string           `json:"imageUrl"`
	LocalImagePath   string           `json:"localImagePath"`
	Prompt           string           `json:"prompt"`
	Metadata         CampaignMetadata `json:"metadata"`
	IsActive         bool             `json:"isActive"`
	CreatedAt        string           `json:"createdAt"`
	UpdatedAt        string           `json:"updatedAt"`
}

// Campaign converts the history entry into previewable content. History
// entries carry no hashtags or call to action.
func (h *HistoryItem) Campaign() *Campaign {
	return &Campaign{
		ID:             h.ID,
		ProductName:    h.ProductName,
		Tone:           h.Tone,
		Platform:       h.Platform,
		Style:          h.Style,
		Flavor:         h.Flavor,
		Caption:        h.GeneratedCaption,
		Tagline:        h.GeneratedTagline,
		ImageURL:       h.ImageURL,
		LocalImagePath: h.LocalImagePath,
		Prompt:         h.Prompt,
		Metadata:       h.Metadata,
		CreatedAt:      h.CreatedAt,
	}
}

// HistoryPagination is the cursor of the history endpoint.
type HistoryPagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Limit       int  `json:"limit"`
	Skip        int  `json:"skip"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// HistoryResponse is the envelope returned by the history endpoint.
type HistoryResponse struct {
	Success    bool              `json:"success"`
	Data       []*HistoryItem    `json:"data"`
	TotalCount int               `json:"totalCount"`
	Pagination HistoryPagination `json:"pagination"`
	Timestamp  string            `json:"timestamp"`
}
