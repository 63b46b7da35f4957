package tui

import (
	"context"
	"strings"

	"scrapectl/pkg/cli/tui/flow"
	"scrapectl/pkg/history"
	"scrapectl/pkg/lifecycle"

	tea "github.com/charmbracelet/bubbletea"
)

// Deps are the shared dependencies of every flow.
type Deps struct {
	Session *lifecycle.Session
	Doer    lifecycle.Doer
	Store   *history.Store
}

// rootModel is the Bubble Tea model that acts as an app shell for multiple flows.
// It presents a simple menu and then hands control to a specific flow model.
type rootModel struct {
	ctx  context.Context
	deps Deps

	// The operation flow lives for the whole program so requests that
	// settle while another flow is shown still reach the session.
	operation *operationModel
	opView    *ViewportWrapper

	// Current active flow (when nil, we are in the main menu)
	current  tea.Model
	size     *tea.WindowSizeMsg
	showHelp bool
}

// NewRootModel constructs the root app-shell model that can launch multiple flows.
func NewRootModel(ctx context.Context, deps Deps) tea.Model {
	op := newOperationModel(ctx, deps.Session, deps.Doer)
	return &rootModel{
		ctx:       ctx,
		deps:      deps,
		operation: op,
		opView:    wrapOperation(op),
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewRootModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *rootModel) Init() tea.Cmd {
	return nil
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = &msg
		var cmd tea.Cmd
		if m.current != nil {
			m.current, cmd = m.current.Update(msg)
		}
		return m, cmd

	case flow.MenuNavigationMsg:
		m.current = nil
		return m, nil

	case flow.AttemptSettledMsg:
		// Always settle through the operation flow, whichever flow is showing.
		_, cmd := m.opView.Update(msg)
		return m, cmd

	case flow.OpenResultMsg:
		m.operation.showEntry(msg.Entry)
		return m, m.enter(m.opView)
	}

	// If we have an active flow, delegate all messages to it.
	if m.current != nil {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "ctrl+c", "q", "esc":
			if m.showHelp && msg.String() != "ctrl+c" {
				m.showHelp = false
				return m, nil
			}
			return m, tea.Quit
		case "1":
			return m, m.enter(m.opView)
		case "2":
			return m, m.enter(NewHistoryModel(m.ctx, m.deps.Store))
		}
	}

	return m, nil
}

// enter activates a flow and replays the last known window size to it.
func (m *rootModel) enter(model tea.Model) tea.Cmd {
	m.current = model
	cmds := []tea.Cmd{model.Init()}
	if m.size != nil {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(*m.size)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *rootModel) View() string {
	// When a flow is active, defer to its view.
	if m.current != nil {
		return m.current.View()
	}

	var b strings.Builder

	b.WriteString(renderTitle("Web Extraction"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("Select an action:") + "\n\n")
	b.WriteString("  " + selectedMarkerStyle.Render("1)") + " New operation\n")
	b.WriteString("  " + selectedMarkerStyle.Render("2)") + " History\n")
	b.WriteString("\n")
	if m.deps.Session.Busy(lifecycle.Primary) || m.deps.Session.Busy(lifecycle.Quick) {
		b.WriteString(infoStyle.Render("⏳ A request is running in the background.") + "\n\n")
	}
	if m.showHelp {
		b.WriteString(titleStyle.Render("Keyboard Shortcuts") + "\n")
		b.WriteString(RootMenuHelpContent() + "\n")
	}
	b.WriteString(helpStyle.Render("Press the number of an option, '?' for help, or 'q' / Esc to quit.") + "\n")

	return b.String()
}
