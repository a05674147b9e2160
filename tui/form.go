package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/campaign"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/parser"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField int

const (
	fieldName formField = iota
	fieldFlavor
	fieldTone
	fieldPlatform
	fieldStyle
	fieldCount
)

type generatedMsg struct {
	campaign *models.Campaign
	err      error
}

type backMsg struct{}

// formModel collects the branding request for one product.
type formModel struct {
	ctx     context.Context
	service *campaign.Service

	name    textinput.Model
	flavor  textinput.Model
	tone    int
	plat    int
	style   int
	focus   formField
	spinner spinner.Model

	submitting bool
	err        string
	styles     Styles
}

func newFormModel(ctx context.Context, service *campaign.Service) formModel {
	name := textinput.New()
	name.Placeholder = "Product name"
	name.CharLimit = 120
	name.Prompt = ""

	flavor := textinput.New()
	flavor.Placeholder = "Optional flavor, e.g. chocolate"
	flavor.CharLimit = 60
	flavor.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return formModel{
		ctx:     ctx,
		service: service,
		name:    name,
		flavor:  flavor,
		spinner: sp,
		styles:  DefaultStyles(),
	}
}

// reset prepares the form for product with the default selections.
func (m formModel) reset(product models.Product) (formModel, tea.Cmd) {
	m.name.SetValue(product.Name)
	m.flavor.SetValue("")
	m.tone, m.plat, m.style = 0, 0, 0
	m.focus = fieldName
	m.err = ""
	m.submitting = false
	m.flavor.Blur()
	return m, m.name.Focus()
}

func (m formModel) request() models.BrandingRequest {
	req := models.NewBrandingRequest(strings.TrimSpace(m.name.Value()))
	req.Flavor = strings.TrimSpace(m.flavor.Value())
	req.Tone = models.Tones[m.tone]
	req.Platform = models.Platforms[m.plat]
	req.Style = models.Styles[m.style]
	return req
}

func (m formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = formError(msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return backMsg{} }
		case "tab", "down":
			return m.setFocus((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case "enter", "ctrl+s":
			return m.submit()
		case "left", "right":
			if m.focus >= fieldTone {
				step := 1
				if msg.String() == "left" {
					step = -1
				}
				m.cycle(step)
				return m, nil
			}
		}

		var cmd tea.Cmd
		switch m.focus {
		case fieldName:
			m.name, cmd = m.name.Update(msg)
		case fieldFlavor:
			m.flavor, cmd = m.flavor.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m formModel) setFocus(f formField) (formModel, tea.Cmd) {
	m.focus = f
	m.name.Blur()
	m.flavor.Blur()
	switch f {
	case fieldName:
		return m, m.name.Focus()
	case fieldFlavor:
		return m, m.flavor.Focus()
	}
	return m, nil
}

func (m *formModel) cycle(step int) {
	wrap := func(i, n int) int { return (i + step + n) % n }
	switch m.focus {
	case fieldTone:
		m.tone = wrap(m.tone, len(models.Tones))
	case fieldPlatform:
		m.plat = wrap(m.plat, len(models.Platforms))
	case fieldStyle:
		m.style = wrap(m.style, len(models.Styles))
	}
}

func (m formModel) submit() (formModel, tea.Cmd) {
	req := m.request()
	if err := parser.ValidateBrandingRequest(req); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	m.submitting = true

	ctx, service := m.ctx, m.service
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		c, err := service.Generate(ctx, req)
		return generatedMsg{campaign: c, err: err}
	})
}

func (m formModel) view() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.Title.Render("Create campaign"))
	b.WriteString("\n\n")
	b.WriteString(m.label(fieldName, "Product") + m.name.View() + "\n")
	b.WriteString(m.label(fieldFlavor, "Flavor") + m.flavor.View() + "\n")
	b.WriteString(m.label(fieldTone, "Tone") + m.choice(fieldTone, string(models.Tones[m.tone])) + "\n")
	b.WriteString(m.label(fieldPlatform, "Platform") + m.choice(fieldPlatform, string(models.Platforms[m.plat])) + "\n")
	b.WriteString(m.label(fieldStyle, "Style") + m.choice(fieldStyle, string(models.Styles[m.style])) + "\n\n")

	switch {
	case m.submitting:
		b.WriteString(m.spinner.View() + s.Muted.Render(" Generating campaign... this can take a minute"))
	case m.err != "":
		b.WriteString(s.Error.Render(m.err))
	}
	b.WriteString("\n")
	b.WriteString(s.Help.Render("tab next field • ←/→ change option • enter generate • esc back"))
	return b.String()
}

func (m formModel) label(f formField, text string) string {
	if m.focus == f {
		return m.styles.Focused.Render(text)
	}
	return m.styles.Label.Render(text)
}

func (m formModel) choice(f formField, value string) string {
	value = parser.Capitalize(value)
	if m.focus == f {
		return m.styles.Selected.Render(fmt.Sprintf("‹ %s ›", value))
	}
	return "  " + value
}

// formError maps a generation failure to the message shown under the form.
// Transport failures collapse to the generic retry hint.
func formError(err error) string {
	var invalid campaign.InvalidRequestError
	if errors.As(err, &invalid) {
		return invalid.Err.Error()
	}
	if api.ErrorLabel(err) != "other" {
		return campaign.FailureMessage
	}
	return err.Error()
}
