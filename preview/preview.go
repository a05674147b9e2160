// Package preview renders generated campaigns as they would appear on
// their target platform.
package preview

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/parser"
	"github.com/charmbracelet/lipgloss"
)

// Options controls rendering.
type Options struct {
	Brand string // shown as the posting account; defaults to Britannia
	Width int    // card width in cells; defaults to 64
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("245")).
			Padding(0, 1)
	accountStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hashtagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	ctaStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	buttonStyle  = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 2)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("124"))
)

// Header is the one-line summary above a preview, for example
// "Instagram • Youth Tone • Minimalist Style".
func Header(c *models.Campaign) string {
	return fmt.Sprintf("%s • %s Tone • %s Style",
		parser.Capitalize(c.Platform), parser.Capitalize(c.Tone), parser.Capitalize(c.Style))
}

// Render returns the header and the platform card for c. Unknown platforms
// render as an Instagram post.
func Render(c *models.Campaign, opts Options) string {
	if opts.Brand == "" {
		opts.Brand = "Britannia"
	}
	if opts.Width <= 0 {
		opts.Width = 64
	}

	var body string
	switch models.Platform(c.Platform) {
	case models.PlatformLinkedIn:
		body = linkedIn(c, opts)
	case models.PlatformEmail:
		body = email(c, opts)
	default:
		body = instagram(c, opts)
	}

	card := cardStyle.Width(opts.Width).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render(Header(c)), card)
}

func instagram(c *models.Campaign, opts Options) string {
	handle := strings.ToLower(opts.Brand) + "_official"
	lines := []string{
		accountStyle.Render(handle) + " " + mutedStyle.Render("Sponsored"),
		"",
		image(c),
		"",
		accountStyle.Render(handle) + " " + c.Caption,
	}
	if tags := hashtags(c); tags != "" {
		lines = append(lines, tags)
	}
	if c.CTA != "" {
		lines = append(lines, "", ctaStyle.Render(c.CTA))
	}
	return strings.Join(lines, "\n")
}

func linkedIn(c *models.Campaign, opts Options) string {
	lines := []string{
		accountStyle.Render(opts.Brand + " Industries"),
		mutedStyle.Render("Food & Beverages • Promoted"),
		"",
		c.Caption,
	}
	if tags := hashtags(c); tags != "" {
		lines = append(lines, "", tags)
	}
	lines = append(lines, "", image(c))
	if c.CTA != "" {
		lines = append(lines, "", ctaStyle.Render(c.CTA))
	}
	return strings.Join(lines, "\n")
}

func email(c *models.Campaign, opts Options) string {
	lines := []string{
		mutedStyle.Render(fmt.Sprintf("From: marketing@%s.co.in", strings.ToLower(opts.Brand))),
		accountStyle.Render("Subject: " + c.Tagline),
		mutedStyle.Render("To: you@example.com"),
		"",
		image(c),
		"",
		accountStyle.Render(c.Tagline),
		c.Caption,
	}
	if c.CTA != "" {
		lines = append(lines, "", buttonStyle.Render(c.CTA))
	}
	lines = append(lines, "", accountStyle.Render(opts.Brand+" Industries"))
	if tags := hashtags(c); tags != "" {
		lines = append(lines, "Follow us: "+tags)
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("This email was sent to you because you subscribed to %s updates.", opts.Brand)))
	return strings.Join(lines, "\n")
}

func image(c *models.Campaign) string {
	if c.ImageURL == "" {
		return mutedStyle.Render("[no image]")
	}
	return mutedStyle.Render("[image] " + c.ImageURL)
}

func hashtags(c *models.Campaign) string {
	if len(c.Hashtags) == 0 {
		return ""
	}
	return hashtagStyle.Render(strings.Join(c.Hashtags, " "))
}
