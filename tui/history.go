package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/history"
	"github.com/aluiziolira/go-campaign-studio/infinite"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/parser"
	tea "github.com/charmbracelet/bubbletea"
)

type historyLoadedMsg struct{}

type openCampaignMsg struct {
	campaign *models.Campaign
}

// historyModel lists past campaigns, appending pages as the cursor nears
// the end.
type historyModel struct {
	ctx     context.Context
	browser *history.Browser
	loaded  chan struct{}

	list   scrollList
	state  history.State
	width  int
	styles Styles
}

func newHistoryModel(ctx context.Context, browser *history.Browser, metrics *api.Metrics) historyModel {
	loaded := make(chan struct{}, 1)
	signal := func() {
		select {
		case loaded <- struct{}{}:
		default:
		}
	}
	trigger := infinite.NewTrigger(browser.Status, func() {
		go func() {
			_, _ = browser.LoadMore(ctx)
			signal()
		}()
	}, scrollOptions(metrics))

	return historyModel{
		ctx:     ctx,
		browser: browser,
		loaded:  loaded,
		list:    newScrollList(trigger),
		state:   browser.Snapshot(),
		width:   80,
		styles:  DefaultStyles(),
	}
}

// open loads the first page, served from cache when fresh.
func (m historyModel) open() tea.Cmd {
	return m.run(m.browser.Load)
}

func (m historyModel) run(load func(context.Context) error) tea.Cmd {
	ctx, loaded := m.ctx, m.loaded
	return func() tea.Msg {
		_ = load(ctx)
		select {
		case loaded <- struct{}{}:
		default:
		}
		return nil
	}
}

// wait delivers the next load completion. Exactly one wait is pending at
// a time; update re-arms it.
func (m historyModel) wait() tea.Cmd {
	ctx, loaded := m.ctx, m.loaded
	return func() tea.Msg {
		select {
		case <-loaded:
			return historyLoadedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *historyModel) close() {
	m.list.trigger.Close()
}

func (m *historyModel) setSize(width, height int) {
	m.width = width
	m.list.resize(height-5, len(m.state.Items))
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.state = m.browser.Snapshot()
		m.list.clamp(len(m.state.Items))
		m.list.notify(len(m.state.Items))
		return m, m.wait()

	case tea.KeyMsg:
		n := len(m.state.Items)
		switch msg.String() {
		case "esc", "backspace":
			return m, func() tea.Msg { return backMsg{} }
		case "up", "k":
			m.list.move(-1, n)
		case "down", "j":
			m.list.move(1, n)
		case "end", "G":
			m.list.bottom(n)
			m.list.trigger.Fire(infinite.SourceManual)
			return m, nil
		case "r":
			m.list.cursor, m.list.offset = 0, 0
			return m, m.run(m.browser.Retry)
		case "enter":
			if n > 0 {
				item := m.state.Items[m.list.cursor]
				return m, func() tea.Msg { return openCampaignMsg{campaign: item.Campaign()} }
			}
			return m, nil
		default:
			return m, nil
		}
		m.list.notify(n)
	}
	return m, nil
}

func (m historyModel) view() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.Title.Render("Campaign history"))
	if m.state.TotalCount > 0 {
		b.WriteString(s.Muted.Render(fmt.Sprintf("  %d campaigns", m.state.TotalCount)))
	}
	b.WriteString("\n\n")

	switch {
	case m.state.InitialLoading:
		b.WriteString(s.Muted.Render("Loading campaign history..."))
		b.WriteString("\n")
	case m.state.Error != "" && len(m.state.Items) == 0:
		b.WriteString(s.Error.Render(m.state.Error + "  (r to retry)"))
		b.WriteString("\n")
	case len(m.state.Items) == 0:
		b.WriteString(s.Muted.Render("No campaigns generated yet"))
		b.WriteString("\n")
	default:
		from, to := m.list.window(len(m.state.Items))
		for i := from; i < to; i++ {
			b.WriteString(m.row(m.state.Items[i], i == m.list.cursor))
			b.WriteString("\n")
		}
	}

	switch {
	case m.state.Loading:
		b.WriteString(s.Muted.Render("Loading more campaigns..."))
	case m.state.Error != "" && len(m.state.Items) > 0:
		b.WriteString(s.Error.Render(m.state.Error))
	case !m.state.HasMore && len(m.state.Items) > 0:
		b.WriteString(s.Muted.Render("No more campaigns"))
	}
	b.WriteString("\n")
	b.WriteString(s.Help.Render("enter preview • r retry • esc back"))
	return b.String()
}

func (m historyModel) row(item *models.HistoryItem, selected bool) string {
	line := fmt.Sprintf("%s · %s · %s", item.ProductName, parser.Capitalize(item.Platform), item.CreatedAt)
	line = parser.Truncate(line, max(10, m.width-4))
	if selected {
		return m.styles.Selected.Render("> " + line)
	}
	return m.styles.Item.Render("  " + line)
}
