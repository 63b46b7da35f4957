package tui

import (
	"context"
	"fmt"
	"strings"

	"scrapectl/pkg/cli/logger"
	"scrapectl/pkg/cli/tui/flow"
	"scrapectl/pkg/history"
	"scrapectl/pkg/models"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// copyToClipboard is swapped in tests.
var copyToClipboard = clipboard.WriteAll

// historyModel lists history entries and lets the user see, copy, reopen,
// delete or clear them.
type historyModel struct {
	ctx   context.Context
	store *history.Store

	entries  []models.HistoryEntry
	selected int
	step     int
	err      error
	status   string
	ready    bool

	// For delete and clear confirmation
	confirm textinput.Model

	width int
}

func newHistoryModel(ctx context.Context, store *history.Store) *historyModel {
	confirm := textinput.New()
	confirm.Placeholder = "y/N"
	confirm.CharLimit = 3
	confirm.Width = 10

	return &historyModel{
		ctx:     ctx,
		store:   store,
		step:    flow.StepHistoryList,
		confirm: confirm,
		width:   flow.DefaultWidth,
	}
}

// NewHistoryModel creates the history browser wrapped with scrolling and help.
func NewHistoryModel(ctx context.Context, store *history.Store) tea.Model {
	return NewViewportWrapper(newHistoryModel(ctx, store), ViewportConfig{
		Title:       "History",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: HistoryHelpContent,
		MinWidth:    60,
		MinHeight:   10,
	})
}

func (m *historyModel) Init() tea.Cmd {
	return m.load()
}

func (m *historyModel) load() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		entries, err := store.Load(ctx)
		return flow.HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

// CapturingInput reports whether keys belong to the confirmation prompt.
func (m *historyModel) CapturingInput() bool {
	return m.step == flow.StepDeleteConfirm || m.step == flow.StepClearConfirm
}

func (m *historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width == 0 {
			m.width = flow.DefaultWidth
		}
		return m, nil

	case flow.HistoryLoadedMsg:
		m.ready = true
		if msg.Err != nil {
			m.err = msg.Err
		}
		m.entries = msg.Entries
		if m.selected >= len(m.entries) {
			m.selected = max(len(m.entries)-1, 0)
		}
		return m, nil

	case flow.HistoryChangedMsg:
		m.step = flow.StepHistoryList
		if msg.Err != nil {
			logger.LogError(msg.Err, "history change failed")
			m.status = ""
			m.err = msg.Err
			return m, m.load()
		}
		m.status = msg.Message
		return m, m.load()

	case flow.ClipboardMsg:
		if msg.Err != nil {
			m.status = ""
			m.err = fmt.Errorf("failed to copy to clipboard: %w", msg.Err)
			return m, nil
		}
		m.status = "Copied to clipboard"
		return m, nil

	case tea.KeyMsg:
		switch m.step {
		case flow.StepHistoryList:
			return m.handleListKeys(msg)
		case flow.StepHistoryDetail:
			return m.handleDetailKeys(msg)
		case flow.StepDeleteConfirm, flow.StepClearConfirm:
			return m.handleConfirmKeys(msg)
		}
	}

	return m, nil
}

func (m *historyModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		// Esc dismisses the error and goes back to the list.
		if msg.String() == "esc" || msg.String() == "b" {
			m.err = nil
		}
		return m, nil
	}
	if newSelected, handled := handleListNavigation(msg.String(), m.selected, len(m.entries)); handled {
		m.selected = newSelected
		return m, nil
	}
	switch msg.String() {
	case "esc", "b":
		return m, func() tea.Msg { return flow.MenuNavigationMsg{} }
	case "x":
		if len(m.entries) > 0 {
			return m, m.askConfirm(flow.StepClearConfirm)
		}
	}
	if len(m.entries) == 0 {
		return m, nil
	}
	return m.handleEntryKeys(msg)
}

func (m *historyModel) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b", "enter":
		m.step = flow.StepHistoryList
		return m, nil
	}
	return m.handleEntryKeys(msg)
}

// handleEntryKeys handles actions on the selected entry from the list or detail view.
func (m *historyModel) handleEntryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entry, ok := m.current()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "enter":
		m.status = ""
		m.step = flow.StepHistoryDetail
		return m, nil
	case "c":
		md := history.ExportMarkdown(entry)
		return m, func() tea.Msg {
			return flow.ClipboardMsg{Err: copyToClipboard(md)}
		}
	case "o":
		return m, func() tea.Msg { return flow.OpenResultMsg{Entry: entry} }
	case "d":
		return m, m.askConfirm(flow.StepDeleteConfirm)
	}
	return m, nil
}

func (m *historyModel) askConfirm(step int) tea.Cmd {
	m.status = ""
	m.step = step
	m.confirm.SetValue("")
	return m.confirm.Focus()
}

func (m *historyModel) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.confirm.Blur()
		m.step = flow.StepHistoryList
		return m, nil
	case "enter":
		m.confirm.Blur()
		answer := strings.ToLower(strings.TrimSpace(m.confirm.Value()))
		if answer != "y" && answer != "yes" {
			m.step = flow.StepHistoryList
			return m, nil
		}
		if m.step == flow.StepClearConfirm {
			return m, m.clearAll()
		}
		return m, m.deleteSelected()
	}
	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	return m, cmd
}

// deleteSelected removes the entry the operator confirmed, even if settles
// prepended new entries since the list was loaded.
func (m *historyModel) deleteSelected() tea.Cmd {
	entry, ok := m.current()
	if !ok {
		m.step = flow.StepHistoryList
		return nil
	}
	ctx, store, index := m.ctx, m.store, m.selected
	return func() tea.Msg {
		if err := store.DeleteEntry(ctx, index, entry); err != nil {
			return flow.HistoryChangedMsg{Err: err}
		}
		return flow.HistoryChangedMsg{Message: "Entry deleted"}
	}
}

func (m *historyModel) clearAll() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if err := store.Clear(ctx); err != nil {
			return flow.HistoryChangedMsg{Err: err}
		}
		return flow.HistoryChangedMsg{Message: "History cleared"}
	}
}

func (m *historyModel) current() (models.HistoryEntry, bool) {
	if m.selected < 0 || m.selected >= len(m.entries) {
		return models.HistoryEntry{}, false
	}
	return m.entries[m.selected], true
}

func (m *historyModel) View() string {
	if !m.ready {
		return renderLoadingState("Loading history...")
	}
	if m.err != nil {
		return renderErrorView(m.err)
	}

	var result string
	switch m.step {
	case flow.StepHistoryList:
		result = m.renderList()
	case flow.StepHistoryDetail:
		result = m.renderDetail()
	case flow.StepDeleteConfirm:
		result = m.renderConfirm("Delete this entry?")
	case flow.StepClearConfirm:
		result = m.renderConfirm(fmt.Sprintf("Delete all %d entries?", len(m.entries)))
	}

	if m.status != "" {
		result = renderSuccess(m.status) + "\n" + result
	}
	return result
}

func (m *historyModel) renderList() string {
	if len(m.entries) == 0 {
		return renderEmptyState("No history yet. Successful operations appear here.")
	}
	s := renderEntryList(m.entries, m.selected, fmt.Sprintf("%d entries, newest first:", len(m.entries)), m.width)
	s += helpStyle.Render("(Enter to see data, o to open, c to copy, d to delete, x to clear all, Esc for menu)") + "\n"
	return s
}

func (m *historyModel) renderDetail() string {
	entry, ok := m.current()
	if !ok {
		return renderErrorView(fmt.Errorf("invalid selection"))
	}

	var b strings.Builder
	b.WriteString(renderEntryHeader(entry))
	b.WriteString(renderDivider(m.width - 2))
	b.WriteString("\n")
	b.WriteString(entry.Data.Pretty())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("(c to copy as Markdown, o to open in result view, d to delete, Esc to go back)") + "\n")
	return b.String()
}

func (m *historyModel) renderConfirm(question string) string {
	var b strings.Builder
	b.WriteString(renderWarning("Confirm Deletion") + "\n\n")
	if entry, ok := m.current(); ok && m.step == flow.StepDeleteConfirm {
		b.WriteString(renderEntryHeader(entry))
		b.WriteString("\n")
	}
	b.WriteString(boldStyle.Render(question + " (y/N):"))
	b.WriteString(" ")
	b.WriteString(m.confirm.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("(Press Enter to confirm, Esc to cancel)") + "\n")
	return b.String()
}
