package format

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"scrapectl/pkg/models"
	"scrapectl/pkg/views"
)

// contentPreviewLen bounds how much page text is printed inline.
const contentPreviewLen = 500

// FormatHistoryTable formats history entries as a table, newest first.
func FormatHistoryTable(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "No history yet."
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("Scraping History")
	b.WriteString("\n")

	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tAction\tURL\tWhen")
	fmt.Fprintln(w, strings.Repeat("─", 3)+"\t"+strings.Repeat("─", 30)+"\t"+strings.Repeat("─", 50)+"\t"+strings.Repeat("─", 22))

	for i, entry := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i,
			ActionLabel(entry.Action),
			TruncateURL(EntryTarget(entry), 50),
			entry.Timestamp,
		)
	}

	w.Flush()
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total: %d entr%s\n", len(entries), plural(len(entries), "y", "ies")))

	return b.String()
}

// FormatEntry formats one history entry header followed by its raw data.
func FormatEntry(index int, entry models.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  #:      %d\n", index))
	b.WriteString(fmt.Sprintf("  Action: %s\n", ActionLabel(entry.Action)))
	b.WriteString(fmt.Sprintf("  URL:    %s\n", EntryTarget(entry)))
	b.WriteString(fmt.Sprintf("  When:   %s\n", entry.Timestamp))
	b.WriteString("\n")
	b.WriteString(entry.Data.Pretty())
	b.WriteString("\n")
	return b.String()
}

// FormatResult renders a result in the requested view. An unavailable view
// falls back to raw so output is never empty.
func FormatResult(p views.Projection, mode views.Mode) string {
	var b strings.Builder

	if msg, failed := p.Error(); failed {
		return FormatErrorMessage(fmt.Errorf("%s", msg))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Title: %s\n", p.Title()))
	if src, ok := p.SourceURL(); ok {
		b.WriteString(fmt.Sprintf("URL:   %s\n", src))
	}
	if stats, ok := p.StatsView(); ok {
		b.WriteString(fmt.Sprintf("Found %d of %d requested\n", stats.Found, stats.Requested))
	}
	if content := p.Content(); content != "" && mode == views.ModeRaw {
		b.WriteString(fmt.Sprintf("Text:  %s\n", TruncateText(content, contentPreviewLen)))
	}
	b.WriteString("\n")

	if mode != views.ModeRaw {
		lines := p.Lines(mode)
		if len(lines) > 0 {
			for _, line := range lines {
				if mode == views.ModeMedia {
					line = fmt.Sprintf("%s  %s", views.MediaName(line), line)
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
			return b.String()
		}
		b.WriteString(fmt.Sprintf("(no %s in this result, showing raw)\n\n", mode))
	}
	b.WriteString(p.Payload().Pretty())
	b.WriteString("\n")
	return b.String()
}

// FormatSuccessMessage formats a one-line confirmation.
func FormatSuccessMessage(msg string) string {
	return fmt.Sprintf("✓ %s\n", msg)
}

// FormatErrorMessage formats an error message consistently
func FormatErrorMessage(err error) string {
	return fmt.Sprintf("❌ Error: %v\n", err)
}

// FormatEmptyState formats an empty state message
func FormatEmptyState(message string) string {
	return fmt.Sprintf("\n%s\n", message)
}

// WriteTo writes formatted output to w, ignoring short writes.
func WriteTo(w io.Writer, content string) {
	fmt.Fprint(w, content)
}

// WriteToStdout writes formatted output to stdout with proper handling
func WriteToStdout(content string) {
	WriteTo(os.Stdout, content)
}

// WriteToStderr writes formatted output to stderr
func WriteToStderr(content string) {
	WriteTo(os.Stderr, content)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
