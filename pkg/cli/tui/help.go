package tui

import (
	"fmt"
	"strings"
)

// HelpItem represents a single keyboard shortcut and its description
type HelpItem struct {
	Key         string
	Description string
}

// RootMenuHelpContent returns help for root menu
func RootMenuHelpContent() string {
	items := []HelpItem{
		{"1-2", "Select menu option (New operation / History)"},
		{"q / Esc", "Quit"},
	}
	return renderHelpItems(items)
}

// OperationHelpContent returns help for the operation flow
func OperationHelpContent() string {
	items := []HelpItem{
		{"↑ / ↓ / j / k", "Choose an operation"},
		{"Enter", "Select operation / Submit form"},
		{"Tab / Shift+Tab", "Move between form fields"},
		{"Esc", "Leave the form / Go back"},
		{"v", "Cycle result view (raw, links, related, media)"},
		{"f", "Fetch this URL"},
		{"a", "Fetch all links in the result"},
		{"n", "New operation with the same settings"},
		{"m", "Return to menu"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// HistoryHelpContent returns help for the history browser
func HistoryHelpContent() string {
	items := []HelpItem{
		{"↑ / ↓ / j / k", "Navigate entries"},
		{"Enter", "See data"},
		{"o", "Open in result view"},
		{"c", "Copy data as Markdown"},
		{"d", "Delete entry"},
		{"x", "Clear all history"},
		{"Esc / b", "Go back"},
		{"m", "Return to menu"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// renderHelpItems formats help items into a readable string
func renderHelpItems(items []HelpItem) string {
	var b strings.Builder
	for _, item := range items {
		keyStyle := boldStyle.Foreground(colorPrimary)
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			keyStyle.Render(item.Key),
			item.Description))
	}
	return b.String()
}
