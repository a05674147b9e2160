// Package tui is the terminal front-end: a searchable, infinitely scrolling
// product list, the campaign form, the generated preview and the history.
package tui

import "github.com/charmbracelet/lipgloss"

// Brand palette
var (
	BrandRed    = lipgloss.Color("#B71C1C")
	BrandGold   = lipgloss.Color("#F9A825")
	Muted       = lipgloss.Color("#8A8A8A")
	Warning     = lipgloss.Color("#FFC107")
	Destructive = lipgloss.Color("#E53935")
	Success     = lipgloss.Color("#8BC34A")
)

// Styles groups every style the screens use.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Muted    lipgloss.Style
	Skeleton lipgloss.Style
	Banner   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the brand styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(BrandRed),
		Subtitle: lipgloss.NewStyle().Foreground(BrandGold),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(BrandRed),
		Item:     lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(Muted),
		Skeleton: lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A")),
		Banner:   lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(Warning).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(Destructive),
		Success:  lipgloss.NewStyle().Foreground(Success),
		Label:    lipgloss.NewStyle().Width(10).Foreground(Muted),
		Focused:  lipgloss.NewStyle().Width(10).Bold(true).Foreground(BrandRed),
		Help:     lipgloss.NewStyle().Foreground(Muted).Italic(true),
	}
}
