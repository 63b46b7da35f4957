package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/cli/logger"
	"scrapectl/pkg/cli/tui/flow"
	"scrapectl/pkg/lifecycle"
	"scrapectl/pkg/models"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type formField int

const (
	fieldURL formField = iota
	fieldURLs
	fieldWhitelist
	fieldBlacklist
	fieldLimit
)

// operationModel selects an operation, collects its inputs, dispatches it and
// shows the shared result slot with view toggles and quick actions.
type operationModel struct {
	ctx     context.Context
	session *lifecycle.Session
	doer    lifecycle.Doer

	kinds    []actions.Kind
	selected int
	step     int

	urlInput       textinput.Model
	urlsInput      textarea.Model
	whitelistInput textinput.Model
	blacklistInput textinput.Model
	limitInput     textinput.Model
	focus          int

	// notice reports quick action and persistence problems without replacing the result.
	notice error

	width int
}

func newOperationModel(ctx context.Context, session *lifecycle.Session, doer lifecycle.Doer) *operationModel {
	urlInput := textinput.New()
	urlInput.Placeholder = "https://example.com"
	urlInput.CharLimit = 2048
	urlInput.Width = 60

	urlsInput := textarea.New()
	urlsInput.Placeholder = "https://a.example, https://b.example"
	urlsInput.SetWidth(60)
	urlsInput.SetHeight(3)
	urlsInput.CharLimit = 20000
	urlsInput.ShowLineNumbers = false

	whitelistInput := textinput.New()
	whitelistInput.Placeholder = "blog, news (optional)"
	whitelistInput.CharLimit = 1000
	whitelistInput.Width = 60

	blacklistInput := textinput.New()
	blacklistInput.Placeholder = "login, signup (optional)"
	blacklistInput.CharLimit = 1000
	blacklistInput.Width = 60

	limitInput := textinput.New()
	limitInput.Placeholder = strconv.Itoa(actions.DefaultLinkLimit)
	limitInput.CharLimit = 4
	limitInput.Width = 10

	m := &operationModel{
		ctx:            ctx,
		session:        session,
		doer:           doer,
		kinds:          actions.Kinds(),
		step:           flow.StepSelectKind,
		urlInput:       urlInput,
		urlsInput:      urlsInput,
		whitelistInput: whitelistInput,
		blacklistInput: blacklistInput,
		limitInput:     limitInput,
		width:          flow.DefaultWidth,
	}
	current := session.Form().Kind
	for i, k := range m.kinds {
		if k == current {
			m.selected = i
		}
	}
	return m
}

// NewOperationModel creates the operation flow wrapped with scrolling and help.
func NewOperationModel(ctx context.Context, session *lifecycle.Session, doer lifecycle.Doer) tea.Model {
	return wrapOperation(newOperationModel(ctx, session, doer))
}

func wrapOperation(m *operationModel) *ViewportWrapper {
	return NewViewportWrapper(m, ViewportConfig{
		Title:       "New Operation",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: OperationHelpContent,
		MinWidth:    60,
		MinHeight:   12,
	})
}

// showEntry places a history entry in the result slot and opens the result step.
func (m *operationModel) showEntry(entry models.HistoryEntry) {
	if err := m.session.SetKind(entry.Action); err == nil {
		m.selectKind(entry.Action)
		if entry.Action.UsesURLList() {
			m.session.SetURLs(entry.URL)
			m.urlsInput.SetValue(entry.URL)
		} else {
			m.session.SetURL(entry.URL)
			m.urlInput.SetValue(entry.URL)
		}
	}
	m.session.Show(entry.Action, entry.URL, entry.Data)
	m.notice = nil
	m.step = flow.StepResult
}

func (m *operationModel) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether keys belong to a text field.
func (m *operationModel) CapturingInput() bool {
	return m.step == flow.StepForm
}

func (m *operationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width == 0 {
			m.width = flow.DefaultWidth
		}
		return m, nil

	case flow.AttemptSettledMsg:
		if err := m.session.Settle(m.ctx, msg.Outcome); err != nil {
			m.notice = fmt.Errorf("result not saved to history: %w", err)
		} else if msg.Outcome.Attempt.Role == lifecycle.Primary {
			m.notice = nil
		}
		m.step = flow.StepResult
		return m, nil

	case tea.KeyMsg:
		switch m.step {
		case flow.StepSelectKind:
			return m.handleSelectKeys(msg)
		case flow.StepForm:
			return m.handleFormKeys(msg)
		case flow.StepResult:
			return m.handleResultKeys(msg)
		}
	}

	return m, nil
}

func (m *operationModel) handleSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if newSelected, handled := handleListNavigation(msg.String(), m.selected, len(m.kinds)); handled {
		m.selected = newSelected
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, func() tea.Msg { return flow.MenuNavigationMsg{} }
	case "enter":
		kind := m.kinds[m.selected]
		if err := m.session.SetKind(kind); err != nil {
			m.notice = err
			return m, nil
		}
		m.selectKind(kind)
		m.step = flow.StepForm
		return m, m.focusField(0)
	}
	return m, nil
}

func (m *operationModel) selectKind(kind actions.Kind) {
	for i, k := range m.kinds {
		if k == kind {
			m.selected = i
		}
	}
	// The session clears the input shape that no longer applies.
	form := m.session.Form()
	m.urlInput.SetValue(form.URL)
	m.urlsInput.SetValue(form.URLs)
}

func (m *operationModel) fields() []formField {
	kind := m.kinds[m.selected]
	fields := []formField{fieldURL}
	if kind.UsesURLList() {
		fields = []formField{fieldURLs}
	}
	if kind.RequiresFilters() {
		fields = append(fields, fieldWhitelist, fieldBlacklist, fieldLimit)
	}
	return fields
}

func (m *operationModel) focusField(i int) tea.Cmd {
	fields := m.fields()
	if i < 0 {
		i = len(fields) - 1
	}
	if i >= len(fields) {
		i = 0
	}
	m.focus = i
	m.blurAll()

	switch fields[i] {
	case fieldURL:
		return m.urlInput.Focus()
	case fieldURLs:
		return m.urlsInput.Focus()
	case fieldWhitelist:
		return m.whitelistInput.Focus()
	case fieldBlacklist:
		return m.blacklistInput.Focus()
	case fieldLimit:
		return m.limitInput.Focus()
	}
	return nil
}

func (m *operationModel) blurAll() {
	m.urlInput.Blur()
	m.urlsInput.Blur()
	m.whitelistInput.Blur()
	m.blacklistInput.Blur()
	m.limitInput.Blur()
}

func (m *operationModel) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.blurAll()
		m.step = flow.StepSelectKind
		return m, nil
	case "tab", "down":
		return m, m.focusField(m.focus + 1)
	case "shift+tab", "up":
		return m, m.focusField(m.focus - 1)
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	switch m.fields()[m.focus] {
	case fieldURL:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case fieldURLs:
		m.urlsInput, cmd = m.urlsInput.Update(msg)
	case fieldWhitelist:
		m.whitelistInput, cmd = m.whitelistInput.Update(msg)
	case fieldBlacklist:
		m.blacklistInput, cmd = m.blacklistInput.Update(msg)
	case fieldLimit:
		m.limitInput, cmd = m.limitInput.Update(msg)
	}
	return m, cmd
}

// syncForm copies the inputs into the session form.
func (m *operationModel) syncForm() {
	m.session.SetURL(m.urlInput.Value())
	// Line breaks in the list box act as separators too.
	m.session.SetURLs(strings.ReplaceAll(m.urlsInput.Value(), "\n", ","))
	m.session.SetWhitelist(m.whitelistInput.Value())
	m.session.SetBlacklist(m.blacklistInput.Value())
	limit, _ := strconv.Atoi(strings.TrimSpace(m.limitInput.Value()))
	m.session.SetLinkLimit(limit)
}

func (m *operationModel) submit() (tea.Model, tea.Cmd) {
	m.syncForm()
	attempt, err := m.session.Submit()
	if err != nil {
		if errors.Is(err, lifecycle.ErrBusy) {
			m.notice = err
		}
		// Validation errors are read back from the session.
		return m, nil
	}
	m.notice = nil
	m.blurAll()
	m.step = flow.StepResult
	logger.L().Debug("dispatched", zap.String("request_id", attempt.ID), zap.String("kind", string(attempt.Kind)))
	return m, m.execute(attempt)
}

// execute runs the attempt off the UI loop and reports its outcome.
func (m *operationModel) execute(a *lifecycle.Attempt) tea.Cmd {
	ctx, doer := m.ctx, m.doer
	return func() tea.Msg {
		return flow.AttemptSettledMsg{Outcome: a.Execute(ctx, doer)}
	}
}

func (m *operationModel) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "v", "tab":
		m.session.Toggle().Next()
		return m, nil
	case "f":
		return m.quick(m.session.QuickFetchURL)
	case "a":
		return m.quick(m.session.QuickFetchAll)
	case "n", "esc":
		m.step = flow.StepForm
		return m, m.focusField(0)
	case "b":
		m.step = flow.StepSelectKind
		return m, nil
	}
	return m, nil
}

func (m *operationModel) quick(dispatch func() (*lifecycle.Attempt, error)) (tea.Model, tea.Cmd) {
	attempt, err := dispatch()
	if err != nil {
		m.notice = err
		return m, nil
	}
	m.notice = nil
	return m, m.execute(attempt)
}

func (m *operationModel) View() string {
	switch m.step {
	case flow.StepSelectKind:
		return m.renderSelect()
	case flow.StepForm:
		return m.renderForm()
	case flow.StepResult:
		return m.renderResultView()
	}
	return ""
}

func (m *operationModel) renderSelect() string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("Choose an operation:") + "\n\n")
	for i, kind := range m.kinds {
		marker := " "
		style := entryTitleStyle
		if i == m.selected {
			marker = selectedMarkerStyle.Render("→")
			style = selectedStyle
		}
		b.WriteString(fmt.Sprintf("%s %s\n", marker, style.Render(kind.Label())))
	}
	b.WriteString("\n")
	if m.notice != nil {
		b.WriteString(renderInlineError(m.notice) + "\n\n")
	}
	b.WriteString(helpStyle.Render("(Use ↑/↓ or j/k to navigate, Enter to select, Esc for menu)") + "\n")
	return b.String()
}

func (m *operationModel) renderForm() string {
	kind := m.kinds[m.selected]

	var b strings.Builder
	b.WriteString(boldStyle.Render(kind.Label()) + "\n")
	b.WriteString(renderDivider(m.width - 2))
	b.WriteString("\n\n")

	for _, f := range m.fields() {
		switch f {
		case fieldURL:
			b.WriteString(fieldLabelStyle.Render("URL:") + "\n")
			b.WriteString(m.urlInput.View() + "\n\n")
		case fieldURLs:
			b.WriteString(fieldLabelStyle.Render("URLs (comma-separated):") + "\n")
			b.WriteString(m.urlsInput.View() + "\n\n")
		case fieldWhitelist:
			b.WriteString(fieldLabelStyle.Render("Whitelist keywords:") + "\n")
			b.WriteString(m.whitelistInput.View() + "\n\n")
		case fieldBlacklist:
			b.WriteString(fieldLabelStyle.Render("Blacklist keywords:") + "\n")
			b.WriteString(m.blacklistInput.View() + "\n\n")
		case fieldLimit:
			b.WriteString(fieldLabelStyle.Render(fmt.Sprintf("Link limit (%d-%d):", actions.MinLinkLimit, actions.MaxLinkLimit)) + "\n")
			b.WriteString(m.limitInput.View() + "\n\n")
		}
	}

	if err := m.session.ValidationErr(); err != nil {
		b.WriteString(renderError(err.Error()) + "\n\n")
	}
	if m.notice != nil {
		b.WriteString(renderInlineError(m.notice) + "\n\n")
	}
	if m.session.Busy(lifecycle.Primary) {
		b.WriteString(renderLoadingState("A request is still running..."))
	}
	b.WriteString(helpStyle.Render("(Enter to run, Tab to move between fields, Esc to go back)") + "\n")
	return b.String()
}

func (m *operationModel) renderResultView() string {
	var b strings.Builder

	if m.session.Busy(lifecycle.Primary) {
		b.WriteString(renderLoadingState(fmt.Sprintf("⏳ Running %s... (this may take a few seconds)", m.kinds[m.selected].Label())))
	}
	if m.session.Busy(lifecycle.Quick) {
		b.WriteString(renderLoadingState("⏳ Quick action running..."))
	}
	if m.notice != nil {
		b.WriteString(renderInlineError(m.notice) + "\n")
	}
	b.WriteString("\n")

	if _, ok := m.session.Current(); ok || m.hasFailure() {
		toggle := m.session.Toggle()
		b.WriteString(renderResult(toggle.Projection(), toggle.Mode(), m.width))
		b.WriteString("\n")
	} else if !m.session.Busy(lifecycle.Primary) && !m.session.Busy(lifecycle.Quick) {
		b.WriteString(mutedStyle.Render("No result yet.") + "\n\n")
	}

	b.WriteString(m.renderQuickActions())
	return b.String()
}

func (m *operationModel) hasFailure() bool {
	p, _ := m.session.Current()
	_, failed := p.ErrorMessage()
	return failed
}

func (m *operationModel) renderQuickActions() string {
	actionsLine := []string{"v view", "n edit", "b operations"}
	if _, ok := m.session.QuickTarget(); ok {
		actionsLine = append(actionsLine, "f fetch this URL")
	}
	if links, ok := m.session.QuickLinks(); ok {
		noun := "URLs"
		if len(links) == 1 {
			noun = "URL"
		}
		actionsLine = append(actionsLine, fmt.Sprintf("a fetch all %d %s", len(links), noun))
	}
	return helpStyle.Render("("+strings.Join(actionsLine, " • ")+")") + "\n"
}
