package models

import (
	"time"

	"scrapectl/pkg/actions"
)

// TimestampLayout mirrors the en-US locale date-time rendering.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// HistoryEntry records one successful primary operation. Entries are never
// mutated after creation.
type HistoryEntry struct {
	URL       string       `json:"url"`
	Action    actions.Kind `json:"action"`
	Timestamp string       `json:"timestamp"`
	Data      Payload      `json:"data"`
}

// NewHistoryEntry captures an entry at time t.
func NewHistoryEntry(url string, action actions.Kind, t time.Time, data Payload) HistoryEntry {
	return HistoryEntry{
		URL:       url,
		Action:    action,
		Timestamp: FormatTimestamp(t),
		Data:      data,
	}
}

// FormatTimestamp renders t in local time for display.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}
