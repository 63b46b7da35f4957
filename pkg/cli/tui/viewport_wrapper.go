package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scrapectl/pkg/cli/logger"
	"scrapectl/pkg/cli/tui/flow"
)

// inputCapturer is implemented by models that own a focused text input.
// While capturing, every key except ctrl+c goes to the model.
type inputCapturer interface {
	CapturingInput() bool
}

// ViewportWrapper wraps a model with viewport and common command support
type ViewportWrapper struct {
	model    tea.Model
	viewport viewport.Model
	width    int
	height   int
	config   ViewportConfig

	// Common commands
	showHelp    bool
	helpContent string
}

// ViewportConfig configures the wrapper behavior
type ViewportConfig struct {
	Title        string
	ShowHeader   bool
	ShowFooter   bool
	HeaderHeight int           // Fixed header height (0 = auto)
	FooterHeight int           // Fixed footer height (0 = auto)
	UseViewport  bool          // Enable scrolling (false = simple responsive)
	MinWidth     int           // Minimum terminal width
	MinHeight    int           // Minimum terminal height
	EnableHelp   bool          // Enable '?' for help
	EnableMenu   bool          // Enable 'm' to return to menu
	HelpContent  func() string // Function to generate help text
}

// NewViewportWrapper creates a new wrapper around a model
func NewViewportWrapper(model tea.Model, config ViewportConfig) *ViewportWrapper {
	return &ViewportWrapper{
		model:    model,
		viewport: viewport.New(0, 0),
		config:   config,
		width:    80, // Default
		height:   24, // Default
	}
}

// Unwrap returns the wrapped model.
func (w *ViewportWrapper) Unwrap() tea.Model {
	return w.model
}

func (w *ViewportWrapper) Init() tea.Cmd {
	if w.model != nil {
		return w.model.Init()
	}
	return nil
}

func (w *ViewportWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height

		if w.config.MinWidth > 0 && w.width < w.config.MinWidth {
			w.width = w.config.MinWidth
		}
		if w.config.MinHeight > 0 && w.height < w.config.MinHeight {
			w.height = w.config.MinHeight
		}
		w.calculateLayout()
		logger.L().Debug("viewport resized")

		return w, w.forward(msg)

	case tea.KeyMsg:
		key := msg.String()

		if w.showHelp {
			switch key {
			case "?", "esc", "q":
				w.showHelp = false
			case "ctrl+c":
				return w, tea.Quit
			}
			return w, nil
		}

		if c, ok := w.model.(inputCapturer); ok && c.CapturingInput() {
			if key == "ctrl+c" {
				return w, tea.Quit
			}
			return w, w.forward(msg)
		}

		switch key {
		case "?":
			if w.config.EnableHelp {
				w.showHelp = true
				if w.config.HelpContent != nil {
					w.helpContent = w.config.HelpContent()
				}
				return w, nil
			}
		case "m":
			if w.config.EnableMenu {
				return w, func() tea.Msg { return flow.MenuNavigationMsg{} }
			}
		case "ctrl+c", "q":
			return w, tea.Quit
		case "pgup", "pgdown", "ctrl+u", "ctrl+d", "home", "end":
			// Scroll keys go to the viewport only so list navigation stays with the model.
			if w.config.UseViewport {
				var cmd tea.Cmd
				w.viewport, cmd = w.viewport.Update(msg)
				return w, cmd
			}
		}

	case tea.MouseMsg:
		if w.config.UseViewport {
			var cmd tea.Cmd
			w.viewport, cmd = w.viewport.Update(msg)
			return w, cmd
		}
	}

	return w, w.forward(msg)
}

func (w *ViewportWrapper) forward(msg tea.Msg) tea.Cmd {
	if w.model == nil {
		return nil
	}
	var cmd tea.Cmd
	w.model, cmd = w.model.Update(msg)
	return cmd
}

func (w *ViewportWrapper) View() string {
	if w.showHelp {
		return w.renderHelpOverlay()
	}

	content := ""
	if w.model != nil {
		content = w.model.View()
	}

	if w.config.UseViewport {
		w.calculateLayout()
		w.viewport.SetContent(content)
		content = w.viewport.View()
	}

	var parts []string
	if w.config.ShowHeader {
		parts = append(parts, w.renderHeader())
	}
	parts = append(parts, content)
	if w.config.ShowFooter {
		parts = append(parts, w.renderFooter())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (w *ViewportWrapper) calculateLayout() {
	headerH := w.config.HeaderHeight
	if headerH == 0 && w.config.ShowHeader {
		headerH = 3 // Title with margin plus hint line
	}

	footerH := w.config.FooterHeight
	if footerH == 0 && w.config.ShowFooter {
		footerH = 1
	}

	if w.width <= 0 {
		w.width = 80
	}
	if w.height <= 0 {
		w.height = 24
	}

	contentH := w.height - headerH - footerH
	if contentH < 1 {
		contentH = 1
	}

	w.viewport.Width = w.width
	w.viewport.Height = contentH
}

func (w *ViewportWrapper) renderHeader() string {
	var b strings.Builder

	if w.config.Title != "" {
		b.WriteString(renderTitle(w.config.Title))
	}

	if w.config.EnableMenu && w.config.EnableHelp {
		b.WriteString(helpStyle.Render("Press 'm' for menu, '?' for help"))
	} else if w.config.EnableHelp {
		b.WriteString(helpStyle.Render("Press '?' for help"))
	} else if w.config.EnableMenu {
		b.WriteString(helpStyle.Render("Press 'm' for menu"))
	}

	return b.String()
}

func (w *ViewportWrapper) renderFooter() string {
	shortcuts := []string{}

	if w.config.EnableHelp {
		shortcuts = append(shortcuts, "? help")
	}
	if w.config.EnableMenu {
		shortcuts = append(shortcuts, "m menu")
	}
	if w.config.UseViewport {
		shortcuts = append(shortcuts, "pgup/pgdn scroll")
	}
	shortcuts = append(shortcuts, "q quit")

	return helpStyle.Render(strings.Join(shortcuts, " • "))
}

func (w *ViewportWrapper) renderHelpOverlay() string {
	helpText := w.helpContent
	if helpText == "" {
		helpText = "No help available"
	}

	overlayStyle := lipgloss.NewStyle().
		Width(w.width-4).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	title := titleStyle.Render("Keyboard Shortcuts")
	closeHint := helpStyle.Render("Press '?' or Esc to close")

	return overlayStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, helpText, closeHint),
	)
}
