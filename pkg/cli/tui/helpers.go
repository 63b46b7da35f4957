package tui

import (
	"errors"
	"fmt"
	"strings"

	"scrapectl/pkg/cli/format"
	"scrapectl/pkg/lifecycle"
	"scrapectl/pkg/models"
	"scrapectl/pkg/views"

	"github.com/charmbracelet/lipgloss"
)

// renderErrorView renders a standard error view with a way back
func renderErrorView(err error) string {
	return "\n" + renderError(fmt.Sprintf("Error: %v", err)) + "\n\n" +
		helpStyle.Render("Press Esc to go back, 'm' for menu.") + "\n"
}

// renderEmptyState renders a standard empty state message
func renderEmptyState(message string) string {
	return "\n" + mutedStyle.Render(message) + "\n\n" +
		helpStyle.Render("Press 'm' for menu, 'q' to quit.") + "\n"
}

// renderLoadingState renders a standard loading message
func renderLoadingState(message string) string {
	return "\n" + infoStyle.Render(message) + "\n"
}

// renderEntryList renders a selectable list of history entries with navigation markers
func renderEntryList(entries []models.HistoryEntry, selected int, subtitle string, maxWidth int) string {
	var b strings.Builder
	if subtitle != "" {
		b.WriteString(boldStyle.Render(subtitle) + "\n\n")
	}

	urlWidth := maxWidth - 4
	if urlWidth < 40 {
		urlWidth = 40
	}

	for i, entry := range entries {
		marker := " "
		style := entryTitleStyle
		if i == selected {
			marker = selectedMarkerStyle.Render("→")
			style = selectedStyle
		}

		b.WriteString(fmt.Sprintf("%s %s  %s\n", marker,
			style.Render(format.ActionLabel(entry.Action)),
			entryMetaStyle.Render(entry.Timestamp)))
		b.WriteString(fmt.Sprintf("  %s\n", entryURLStyle.Render(format.TruncateURL(format.EntryTarget(entry), urlWidth))))
	}

	b.WriteString("\n")
	return b.String()
}

// renderEntryHeader renders the fields recorded on a history entry
func renderEntryHeader(entry models.HistoryEntry) string {
	var b strings.Builder
	b.WriteString(fieldLabelStyle.Render("Action:"))
	b.WriteString(fmt.Sprintf(" %s\n", format.ActionLabel(entry.Action)))
	b.WriteString(fieldLabelStyle.Render("URL:"))
	b.WriteString(fmt.Sprintf(" %s\n", format.EntryTarget(entry)))
	b.WriteString(fieldLabelStyle.Render("When:"))
	b.WriteString(fmt.Sprintf(" %s\n", entry.Timestamp))
	return b.String()
}

// renderResult renders a projection in the selected view mode
func renderResult(p views.Projection, mode views.Mode, maxWidth int) string {
	var b strings.Builder

	if msg, failed := p.Error(); failed {
		b.WriteString(renderError(msg))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(entryTitleStyle.Render(p.Title()))
	b.WriteString("\n")
	if src, ok := p.SourceURL(); ok {
		b.WriteString(entryURLStyle.Render(src))
		b.WriteString("\n")
	}
	if stats, ok := p.StatsView(); ok {
		b.WriteString(infoStyle.Render(fmt.Sprintf("Found %d of %d requested", stats.Found, stats.Requested)))
		b.WriteString("\n")
	}
	b.WriteString(renderModeTabs(p.Available(), mode))
	b.WriteString("\n\n")

	switch mode {
	case views.ModeRaw:
		if content := p.Content(); content != "" {
			b.WriteString(fieldLabelStyle.Render("Text:"))
			b.WriteString(wrapText(format.TruncateText(content, 500), maxWidth-8, " "))
			b.WriteString("\n")
		}
		b.WriteString(p.Payload().Pretty())
		b.WriteString("\n")
	case views.ModeMedia:
		for i, link := range p.MediaView() {
			b.WriteString(fmt.Sprintf("%3d. %s\n", i+1, entryTitleStyle.Render(views.MediaName(link))))
			b.WriteString(fmt.Sprintf("     %s\n", entryURLStyle.Render(format.TruncateURL(link, maxWidth-6))))
		}
	default:
		for i, link := range p.Lines(mode) {
			b.WriteString(fmt.Sprintf("%3d. %s\n", i+1, format.TruncateURL(link, maxWidth-6)))
		}
	}
	return b.String()
}

// renderModeTabs renders the available view modes with the active one highlighted
func renderModeTabs(modes []views.Mode, active views.Mode) string {
	tabs := make([]string, 0, len(modes))
	for _, m := range modes {
		var style lipgloss.Style
		if m == active {
			style = selectedStyle
		} else {
			style = mutedStyle
		}
		tabs = append(tabs, style.Render(string(m)))
	}
	return mutedStyle.Render("view: ") + strings.Join(tabs, mutedStyle.Render(" | "))
}

// wrapText wraps text to a specified width, breaking at word boundaries
func wrapText(text string, width int, indent string) string {
	if width < 20 {
		width = 20
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + "\n"
	}

	var b strings.Builder
	line := ""
	for _, word := range words {
		if len(line)+len(word)+1 > width {
			b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
			line = word
		} else {
			if line != "" {
				line += " "
			}
			line += word
		}
	}
	if line != "" {
		b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
	}
	return b.String()
}

// handleListNavigation handles common navigation keys for list views (up/down/j/k)
// Returns the new selected index and whether navigation occurred
func handleListNavigation(key string, selected int, total int) (newSelected int, handled bool) {
	switch key {
	case "up", "k":
		if selected > 0 {
			return selected - 1, true
		}
		return selected, true
	case "down", "j":
		if selected < total-1 {
			return selected + 1, true
		}
		return selected, true
	}
	return selected, false
}

// renderInlineError renders an error message inline (without full error view formatting)
func renderInlineError(err error) string {
	if err == nil {
		return ""
	}
	return renderError(userFacingError(err).Error())
}

// userFacingError converts structured scraper errors into friendly messages,
// while leaving other error types unchanged.
func userFacingError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(lifecycle.FailureMessage(err))
}
