package preview

import (
	"strings"
	"testing"

	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func sample(platform string) *models.Campaign {
	return &models.Campaign{
		ProductName: "Good Day",
		Platform:    platform,
		Tone:        "youth",
		Style:       "minimalist",
		Caption:     "Crunch into joy",
		Tagline:     "Good Day, every day",
		ImageURL:    "https://cdn.test/good-day.png",
		Hashtags:    []string{"#GoodDay", "#Britannia"},
		CTA:         "Shop now",
	}
}

func render(c *models.Campaign) string {
	return ansi.Strip(Render(c, Options{Width: 100}))
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "Instagram • Youth Tone • Minimalist Style", Header(sample("instagram")))
	assert.Equal(t, "Linkedin • Youth Tone • Minimalist Style", Header(sample("linkedin")))
}

func TestRenderPlatforms(t *testing.T) {
	tests := []struct {
		platform string
		want     []string
		notWant  []string
	}{
		{
			platform: "instagram",
			want:     []string{"britannia_official", "Sponsored", "Crunch into joy", "#GoodDay #Britannia", "Shop now"},
			notWant:  []string{"Follow us:"},
		},
		{
			platform: "linkedin",
			want:     []string{"Britannia Industries", "Promoted", "Crunch into joy", "#GoodDay", "Shop now"},
			notWant:  []string{"Sponsored"},
		},
		{
			platform: "email",
			want: []string{
				"Subject: Good Day, every day",
				"From: marketing@britannia.co.in",
				"Shop now",
				"Follow us: #GoodDay #Britannia",
				"subscribed to Britannia updates",
			},
		},
		{
			platform: "fax",
			want:     []string{"britannia_official", "Sponsored"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			out := render(sample(tt.platform))
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestRenderUsesBrand(t *testing.T) {
	out := ansi.Strip(Render(sample("instagram"), Options{Brand: "Acme", Width: 100}))
	assert.Contains(t, out, "acme_official")
}

func TestRenderHistoryEntry(t *testing.T) {
	item := &models.HistoryItem{ProductName: "Marie", Platform: "email", Tone: "family", Style: "premium", GeneratedCaption: "Tea time", GeneratedTagline: "Marie moments"}
	out := ansi.Strip(Render(item.Campaign(), Options{Width: 100}))
	assert.Contains(t, out, "Email • Family Tone • Premium Style")
	assert.Contains(t, out, "[no image]")
	assert.False(t, strings.Contains(out, "Follow us:"), "history entries carry no hashtags")
}
