package tui

import (
	"context"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/campaign"
	"github.com/aluiziolira/go-campaign-studio/catalog"
	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/aluiziolira/go-campaign-studio/history"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenBrowse screen = iota
	screenForm
	screenResult
	screenHistory
)

// Deps are the services the front-end drives.
type Deps struct {
	Config    *config.Config
	Store     *catalog.Store
	Campaigns *campaign.Service
	History   *history.Browser
	Metrics   *api.Metrics
}

// Model is the root bubbletea model.
type Model struct {
	screen screen
	// where esc on the result screen returns to
	resultFrom screen

	browse  browseModel
	form    formModel
	result  resultModel
	history historyModel
}

// New builds the root model. Background work stops when ctx is done.
func New(ctx context.Context, deps Deps) Model {
	return Model{
		browse:  newBrowseModel(ctx, deps.Store, deps.Metrics),
		form:    newFormModel(ctx, deps.Campaigns),
		result:  newResultModel(deps.Config.BrandName),
		history: newHistoryModel(ctx, deps.History, deps.Metrics),
	}
}

// Init mounts the catalog.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.browse.init(), m.history.wait())
}

// Close detaches the scroll triggers and ends the catalog subscription.
func (m *Model) Close() {
	m.browse.close()
	m.history.close()
}

// Update routes messages to the active screen. Catalog and history
// updates are always applied so the lists stay current off-screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.browse.setSize(msg.Width, msg.Height)
		m.result.setSize(msg.Width, msg.Height)
		m.history.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenBrowse && !m.browse.search.Focused() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "h":
				m.screen = screenHistory
				return m, m.history.open()
			}
		}

	case catalogStateMsg:
		m.browse, cmd = m.browse.update(msg)
		return m, cmd

	case catalogClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var formCmd tea.Cmd
		m.browse, cmd = m.browse.update(msg)
		m.form, formCmd = m.form.update(msg)
		return m, tea.Batch(cmd, formCmd)

	case historyLoadedMsg:
		m.history, cmd = m.history.update(msg)
		return m, cmd

	case selectProductMsg:
		m.screen = screenForm
		m.form, cmd = m.form.reset(msg.product)
		return m, cmd

	case generatedMsg:
		m.form, cmd = m.form.update(msg)
		if msg.err == nil && msg.campaign != nil {
			m.result = m.result.show(msg.campaign, campaign.SuccessMessage)
			m.screen, m.resultFrom = screenResult, screenForm
		}
		return m, cmd

	case openCampaignMsg:
		m.result = m.result.show(msg.campaign, "")
		m.screen, m.resultFrom = screenResult, screenHistory
		return m, nil

	case backMsg:
		switch m.screen {
		case screenResult:
			m.screen = m.resultFrom
			if m.resultFrom == screenForm {
				m.screen = screenBrowse
			}
		default:
			m.screen = screenBrowse
		}
		return m, nil
	}

	switch m.screen {
	case screenForm:
		m.form, cmd = m.form.update(msg)
	case screenResult:
		m.result, cmd = m.result.update(msg)
	case screenHistory:
		m.history, cmd = m.history.update(msg)
	default:
		m.browse, cmd = m.browse.update(msg)
	}
	return m, cmd
}

// View renders the active screen.
func (m Model) View() string {
	switch m.screen {
	case screenForm:
		return m.form.view()
	case screenResult:
		return m.result.view()
	case screenHistory:
		return m.history.view()
	default:
		return m.browse.view()
	}
}
