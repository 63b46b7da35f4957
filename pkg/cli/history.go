package cli

import (
	"context"
	"fmt"

	"scrapectl/pkg/cli/client"
	"scrapectl/pkg/cli/format"
	"scrapectl/pkg/history"
	"scrapectl/pkg/models"

	"github.com/atotto/clipboard"
)

// copyToClipboard is swapped in tests.
var copyToClipboard = clipboard.WriteAll

// historySource is the local store or a remote history server.
type historySource interface {
	ListHistory(ctx context.Context) ([]models.HistoryEntry, error)
	GetHistory(ctx context.Context, index int) (models.HistoryEntry, error)
	ExportHistory(ctx context.Context, index int) (string, error)
	DeleteHistory(ctx context.Context, index int) error
	ClearHistory(ctx context.Context) error
}

// localHistory adapts the history store to historySource.
type localHistory struct {
	store *history.Store
}

func (l localHistory) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	return l.store.Entries(ctx)
}

func (l localHistory) GetHistory(ctx context.Context, index int) (models.HistoryEntry, error) {
	return l.store.Get(ctx, index)
}

func (l localHistory) ExportHistory(ctx context.Context, index int) (string, error) {
	entry, err := l.store.Get(ctx, index)
	if err != nil {
		return "", err
	}
	return history.ExportMarkdown(entry), nil
}

func (l localHistory) DeleteHistory(ctx context.Context, index int) error {
	return l.store.DeleteAt(ctx, index)
}

func (l localHistory) ClearHistory(ctx context.Context) error {
	return l.store.Clear(ctx)
}

// UseRemoteHistory points history commands at a scrapectl-api server.
func (a *App) UseRemoteHistory(serverURL string) {
	a.remote = client.NewClient(serverURL, a.cfg.API.APIKey)
}

func (a *App) historySource(ctx context.Context) (historySource, error) {
	if a.remote != nil {
		return a.remote, nil
	}
	store, err := a.getStore(ctx)
	if err != nil {
		return nil, err
	}
	return localHistory{store: store}, nil
}

// ListHistory prints the history log, newest first.
func (a *App) ListHistory(ctx context.Context) error {
	src, err := a.historySource(ctx)
	if err != nil {
		return err
	}
	entries, err := src.ListHistory(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, format.FormatHistoryTable(entries))
	if len(entries) == 0 {
		fmt.Fprintln(a.out)
	}
	return nil
}

// ShowHistory prints one entry and its data.
func (a *App) ShowHistory(ctx context.Context, index int) error {
	src, err := a.historySource(ctx)
	if err != nil {
		return err
	}
	entry, err := src.GetHistory(ctx, index)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, format.FormatEntry(index, entry))
	return nil
}

// DeleteHistory removes the entry at index.
func (a *App) DeleteHistory(ctx context.Context, index int) error {
	src, err := a.historySource(ctx)
	if err != nil {
		return err
	}
	if err := src.DeleteHistory(ctx, index); err != nil {
		return err
	}
	fmt.Fprint(a.out, format.FormatSuccessMessage(fmt.Sprintf("Deleted history entry %d", index)))
	return nil
}

// ClearHistory empties the history log.
func (a *App) ClearHistory(ctx context.Context) error {
	src, err := a.historySource(ctx)
	if err != nil {
		return err
	}
	if err := src.ClearHistory(ctx); err != nil {
		return err
	}
	fmt.Fprint(a.out, format.FormatSuccessMessage("History cleared"))
	return nil
}

// ExportHistory prints an entry's data as a Markdown JSON block, optionally
// copying it to the clipboard.
func (a *App) ExportHistory(ctx context.Context, index int, copyOut bool) error {
	src, err := a.historySource(ctx)
	if err != nil {
		return err
	}
	md, err := src.ExportHistory(ctx, index)
	if err != nil {
		return err
	}
	if copyOut {
		if err := copyToClipboard(md); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprint(a.out, format.FormatSuccessMessage("Copied to clipboard"))
		return nil
	}
	fmt.Fprintln(a.out, md)
	return nil
}
