package format

import (
	"strings"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/models"
)

// ActionLabel returns the human label for an action, falling back to the raw kind.
func ActionLabel(kind actions.Kind) string {
	if label := kind.Label(); label != "" {
		return label
	}
	return string(kind)
}

// EntryTarget returns the URL recorded on an entry, or a placeholder.
func EntryTarget(entry models.HistoryEntry) string {
	if strings.TrimSpace(entry.URL) == "" {
		return "(no url)"
	}
	return entry.URL
}

// TruncateURL truncates a URL to the specified max length
func TruncateURL(url string, maxLen int) string {
	r := []rune(url)
	if maxLen <= 3 || len(r) <= maxLen {
		return url
	}
	return string(r[:maxLen-3]) + "..."
}

// TruncateText truncates text to a maximum length, adding ellipsis if truncated
func TruncateText(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	return string(r[:maxLen]) + "..."
}
