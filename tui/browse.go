package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/catalog"
	"github.com/aluiziolira/go-campaign-studio/infinite"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/parser"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const skeletonRows = 6

type catalogStateMsg catalog.State

type catalogClosedMsg struct{}

type selectProductMsg struct {
	product models.Product
}

// browseModel is the product grid with search.
type browseModel struct {
	ctx     context.Context
	store   *catalog.Store
	updates <-chan catalog.State
	stop    func()

	list    scrollList
	search  textinput.Model
	spinner spinner.Model
	state   catalog.State
	width   int
	styles  Styles
}

func newBrowseModel(ctx context.Context, store *catalog.Store, metrics *api.Metrics) browseModel {
	trigger := infinite.NewTrigger(
		func() (bool, bool) {
			st := store.Snapshot()
			return st.HasMore, st.Loading
		},
		func() { go store.LoadMore(ctx) },
		scrollOptions(metrics),
	)
	updates, stop := store.Subscribe()

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.Prompt = "/ "
	search.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return browseModel{
		ctx:     ctx,
		store:   store,
		updates: updates,
		stop:    stop,
		list:    newScrollList(trigger),
		search:  search,
		spinner: sp,
		state:   catalog.InitialState(),
		width:   80,
		styles:  DefaultStyles(),
	}
}

func (m browseModel) init() tea.Cmd {
	store, ctx := m.store, m.ctx
	return tea.Batch(
		waitForCatalog(m.updates),
		func() tea.Msg {
			store.Mount(ctx)
			return nil
		},
		m.spinner.Tick,
	)
}

func waitForCatalog(updates <-chan catalog.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return catalogClosedMsg{}
		}
		return catalogStateMsg(st)
	}
}

func (m *browseModel) close() {
	m.list.trigger.Close()
	m.stop()
}

func (m *browseModel) setSize(width, height int) {
	m.width = width
	// title, search, banner and footer rows
	m.list.resize(height-6, len(m.state.Products))
	m.search.Width = max(10, width-4)
}

func (m browseModel) update(msg tea.Msg) (browseModel, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogStateMsg:
		m.state = catalog.State(msg)
		m.list.clamp(len(m.state.Products))
		if !m.state.Loading {
			m.list.notify(len(m.state.Products))
		}
		return m, waitForCatalog(m.updates)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (browseModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "down":
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.list.cursor, m.list.offset = 0, 0
		m.store.SetSearchQuery(value)
	}
	return m, cmd
}

func (m browseModel) updateList(msg tea.KeyMsg) (browseModel, tea.Cmd) {
	n := len(m.state.Products)
	switch msg.String() {
	case "/":
		return m, m.search.Focus()
	case "up", "k":
		m.list.move(-1, n)
	case "down", "j":
		m.list.move(1, n)
	case "pgdown", "ctrl+d":
		m.list.move(m.list.height, n)
	case "pgup", "ctrl+u":
		m.list.move(-m.list.height, n)
	case "end", "G":
		m.list.bottom(n)
		m.list.trigger.Fire(infinite.SourceManual)
		return m, nil
	case "x":
		m.store.DismissError()
		return m, nil
	case "r":
		store, ctx := m.store, m.ctx
		return m, func() tea.Msg {
			store.RefreshProducts(ctx)
			return nil
		}
	case "enter":
		if n > 0 {
			product := m.state.Products[m.list.cursor]
			return m, func() tea.Msg { return selectProductMsg{product: product} }
		}
		return m, nil
	default:
		return m, nil
	}
	m.list.notify(n)
	return m, nil
}

func (m browseModel) view() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.Title.Render("Britannia product catalog"))
	if p := m.state.Pagination; p != nil && p.Total > 0 {
		b.WriteString(s.Muted.Render(fmt.Sprintf("  %d of %d products", len(m.state.Products), p.Total)))
	}
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")

	if m.state.Error != "" {
		b.WriteString(s.Banner.Render("! " + m.state.Error + "  (x to dismiss)"))
	}
	b.WriteString("\n")

	switch {
	case m.state.InitialLoading:
		for i := 0; i < skeletonRows; i++ {
			b.WriteString(s.Skeleton.Render(strings.Repeat("░", max(0, min(40, m.width-4)))))
			b.WriteString("\n")
		}
	case m.state.NoResults():
		b.WriteString(s.Muted.Render("No products found"))
		if q := strings.TrimSpace(m.state.SearchQuery); q != "" {
			b.WriteString(s.Muted.Render(fmt.Sprintf(" for %q. Try a different search.", q)))
		}
		b.WriteString("\n")
	default:
		from, to := m.list.window(len(m.state.Products))
		for i := from; i < to; i++ {
			b.WriteString(m.row(m.state.Products[i], i == m.list.cursor))
			b.WriteString("\n")
		}
	}

	switch {
	case m.state.Loading && len(m.state.Products) > 0:
		b.WriteString(m.spinner.View() + s.Muted.Render(" Loading more products..."))
	case !m.state.HasMore && len(m.state.Products) > 0:
		b.WriteString(s.Muted.Render("You've reached the end of the catalog"))
	}
	b.WriteString("\n")
	b.WriteString(s.Help.Render("/ search • enter create campaign • h history • r refresh • q quit"))
	return b.String()
}

func (m browseModel) row(p models.Product, selected bool) string {
	line := parser.Truncate(fmt.Sprintf("%s · %s", p.Name, p.Category), max(10, m.width-4))
	if selected {
		return m.styles.Selected.Render("> " + line)
	}
	return m.styles.Item.Render("  " + line)
}
