package tui

import (
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/preview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// resultModel shows one campaign rendered for its platform.
type resultModel struct {
	brand    string
	campaign *models.Campaign
	banner   string
	viewport viewport.Model
	styles   Styles
}

func newResultModel(brand string) resultModel {
	return resultModel{
		brand:    brand,
		viewport: viewport.New(80, 20),
		styles:   DefaultStyles(),
	}
}

func (m resultModel) show(c *models.Campaign, banner string) resultModel {
	m.campaign = c
	m.banner = banner
	m.render()
	m.viewport.GotoTop()
	return m
}

func (m *resultModel) setSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(3, height-4)
	m.render()
}

func (m *resultModel) render() {
	if m.campaign == nil {
		m.viewport.SetContent("")
		return
	}
	width := min(72, max(30, m.viewport.Width-4))
	m.viewport.SetContent(preview.Render(m.campaign, preview.Options{Brand: m.brand, Width: width}))
}

func (m resultModel) update(msg tea.Msg) (resultModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "backspace":
			return m, func() tea.Msg { return backMsg{} }
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m resultModel) view() string {
	out := ""
	if m.banner != "" {
		out = m.styles.Success.Render(m.banner) + "\n"
	}
	out += m.viewport.View() + "\n"
	return out + m.styles.Help.Render("↑/↓ scroll • esc back")
}
