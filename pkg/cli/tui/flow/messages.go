package flow

import (
	"scrapectl/pkg/lifecycle"
	"scrapectl/pkg/models"
)

// MenuNavigationMsg asks the root model to return to the main menu
type MenuNavigationMsg struct{}

// AttemptSettledMsg is emitted when a dispatched request completes
type AttemptSettledMsg struct {
	Outcome lifecycle.Outcome
}

// HistoryLoadedMsg is emitted when history entries have been read
type HistoryLoadedMsg struct {
	Entries []models.HistoryEntry
	Err     error
}

// HistoryChangedMsg is emitted after a delete or clear completes
type HistoryChangedMsg struct {
	Message string
	Err     error
}

// ClipboardMsg is emitted after copying an export to the clipboard
type ClipboardMsg struct {
	Err error
}

// OpenResultMsg asks the root model to show an entry in the result view
type OpenResultMsg struct {
	Entry models.HistoryEntry
}
