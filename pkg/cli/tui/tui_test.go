package tui

import (
	"context"
	"sync"
	"testing"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/cli/tui/flow"
	"scrapectl/pkg/history"
	"scrapectl/pkg/lifecycle"
	"scrapectl/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDoer struct {
	mu       sync.Mutex
	requests []actions.Request
	payload  models.Payload
}

func (d *recordingDoer) Do(ctx context.Context, r actions.Request) (models.Payload, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, r)
	return d.payload, nil
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func newTestDeps(t *testing.T, payload models.Payload) (Deps, *recordingDoer) {
	t.Helper()
	store := history.NewStore(&history.MemoryBackend{})
	doer := &recordingDoer{payload: payload}
	return Deps{Session: lifecycle.NewSession(store, nil), Doer: doer, Store: store}, doer
}

func entryCount(t *testing.T, store *history.Store) int {
	t.Helper()
	entries, err := store.Entries(context.Background())
	require.NoError(t, err)
	return len(entries)
}

// run executes a command and feeds its message back into the model.
func run(t *testing.T, m tea.Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func TestOperationSubmitAndSettle(t *testing.T) {
	deps, doer := newTestDeps(t, models.Payload{
		"url":   "https://example.com",
		"title": "Example",
		"links": []any{"https://example.com/a", "https://example.com/b"},
	})
	m := newOperationModel(context.Background(), deps.Session, deps.Doer)

	m.selected = 0 // Fetch URL
	m.Update(enter)
	require.Equal(t, flow.StepForm, m.step)
	assert.True(t, m.CapturingInput())

	m.Update(keys("https://example.com"))
	_, cmd := m.Update(enter)
	assert.Equal(t, flow.StepResult, m.step)
	assert.Contains(t, m.View(), "Running Fetch URL")

	run(t, m, cmd)
	assert.Len(t, doer.requests, 1)
	assert.Equal(t, "/fetch", doer.requests[0].Path)
	assert.Equal(t, 1, entryCount(t, deps.Store))

	view := m.View()
	assert.Contains(t, view, "Example")
	assert.Contains(t, view, "f fetch this URL")
	assert.Contains(t, view, "a fetch all 2 URLs")

	m.Update(keys("v"))
	assert.Contains(t, m.View(), "https://example.com/a")
}

func TestOperationValidationErrorShown(t *testing.T) {
	deps, doer := newTestDeps(t, models.Payload{})
	m := newOperationModel(context.Background(), deps.Session, deps.Doer)

	m.selected = 0
	m.Update(enter)
	_, cmd := m.Update(enter)

	assert.Nil(t, cmd)
	assert.Equal(t, flow.StepForm, m.step)
	assert.Contains(t, m.View(), "Please enter a URL")
	assert.Empty(t, doer.requests)
}

func TestOperationFiltersOnlyForMultiPageKinds(t *testing.T) {
	deps, _ := newTestDeps(t, models.Payload{})
	m := newOperationModel(context.Background(), deps.Session, deps.Doer)

	m.selected = 0
	assert.Equal(t, []formField{fieldURL}, m.fields())

	for i, k := range m.kinds {
		if k == actions.ScrapeWithParams {
			m.selected = i
		}
	}
	assert.Equal(t, []formField{fieldURL, fieldWhitelist, fieldBlacklist, fieldLimit}, m.fields())

	for i, k := range m.kinds {
		if k == actions.FetchMultiple {
			m.selected = i
		}
	}
	assert.Equal(t, []formField{fieldURLs}, m.fields())
}

func TestQuickFetchDoesNotRecordHistory(t *testing.T) {
	deps, doer := newTestDeps(t, models.Payload{
		"url":   "https://example.com",
		"links": []any{"https://example.com/a", "https://example.com/b"},
	})
	m := newOperationModel(context.Background(), deps.Session, deps.Doer)
	m.selected = 0
	m.Update(enter)
	m.Update(keys("https://example.com"))
	_, cmd := m.Update(enter)
	run(t, m, cmd)
	require.Equal(t, 1, entryCount(t, deps.Store))

	_, cmd = m.Update(keys("a"))
	run(t, m, cmd)

	require.Len(t, doer.requests, 2)
	assert.Equal(t, "/fetch_multiple", doer.requests[1].Path)
	assert.Equal(t, 1, entryCount(t, deps.Store))
}

func TestQuickActionUnavailable(t *testing.T) {
	deps, _ := newTestDeps(t, models.Payload{})
	m := newOperationModel(context.Background(), deps.Session, deps.Doer)
	m.step = flow.StepResult

	_, cmd := m.Update(keys("a"))
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.notice, lifecycle.ErrQuickActionUnavailable)
}

func TestQuickFetchAllShowsRejectedLinks(t *testing.T) {
	deps, doer := newTestDeps(t, models.Payload{})
	m := newOperationModel(context.Background(), deps.Session, deps.Doer)
	m.showEntry(models.HistoryEntry{
		URL: "https://example.com", Action: actions.ExtractLinks,
		Data: models.Payload{"links": []any{"/about", nil, "https://ok.example"}},
	})
	require.Equal(t, flow.StepResult, m.step)
	assert.Contains(t, m.View(), "a fetch all 2 URLs")

	_, cmd := m.Update(keys("a"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Invalid URL: /about")
	assert.Empty(t, doer.requests)
}

func seededStore(t *testing.T, urls ...string) *history.Store {
	t.Helper()
	store := history.NewStore(&history.MemoryBackend{})
	for _, u := range urls {
		require.NoError(t, store.Append(context.Background(), models.HistoryEntry{
			URL: u, Action: actions.FetchSingle, Timestamp: "1/2/2026, 9:30:00 AM",
			Data: models.Payload{"url": u},
		}))
	}
	return store
}

func TestHistoryDeleteWithConfirmation(t *testing.T) {
	store := seededStore(t, "https://old.example", "https://new.example")
	m := newHistoryModel(context.Background(), store)
	run(t, m, m.Init())
	require.Len(t, m.entries, 2)
	assert.Contains(t, m.View(), "https://new.example")

	m.Update(keys("d"))
	assert.True(t, m.CapturingInput())
	m.Update(keys("y"))
	_, cmd := m.Update(enter)
	require.NotNil(t, cmd)

	_, reload := m.Update(cmd())
	run(t, m, reload)
	require.Len(t, m.entries, 1)
	assert.Equal(t, "https://old.example", m.entries[0].URL)
	assert.Contains(t, m.View(), "Entry deleted")
}

func TestHistoryDeleteAfterNewEntryRemovesConfirmedEntry(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "https://old.example", "https://keep.example")
	m := newHistoryModel(ctx, store)
	run(t, m, m.Init())
	m.selected = 1
	require.Equal(t, "https://old.example", m.entries[m.selected].URL)

	// A primary attempt settles while the browser is open.
	require.NoError(t, store.Append(ctx, models.HistoryEntry{
		URL: "https://new.example", Action: actions.FetchSingle, Timestamp: "1/2/2026, 9:31:00 AM",
	}))

	m.Update(keys("d"))
	m.Update(keys("y"))
	_, cmd := m.Update(enter)
	require.NotNil(t, cmd)
	_, reload := m.Update(cmd())
	run(t, m, reload)

	urls := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		urls = append(urls, e.URL)
	}
	assert.Equal(t, []string{"https://new.example", "https://keep.example"}, urls)
	assert.Contains(t, m.View(), "Entry deleted")
}

func TestHistoryDeleteOfVanishedEntryReloads(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "https://a.example", "https://b.example")
	m := newHistoryModel(ctx, store)
	run(t, m, m.Init())

	// Another writer removed the selected entry.
	require.NoError(t, store.DeleteAt(ctx, 0))

	m.Update(keys("d"))
	m.Update(keys("y"))
	_, cmd := m.Update(enter)
	_, reload := m.Update(cmd())
	run(t, m, reload)

	assert.Equal(t, 1, entryCount(t, store))
	assert.ErrorIs(t, m.err, history.ErrEntryChanged)
	require.Len(t, m.entries, 1)
	assert.Equal(t, "https://a.example", m.entries[0].URL)
}

func TestHistoryDeleteCancelled(t *testing.T) {
	store := seededStore(t, "https://a.example")
	m := newHistoryModel(context.Background(), store)
	run(t, m, m.Init())

	m.Update(keys("d"))
	_, cmd := m.Update(enter)
	assert.Nil(t, cmd)
	assert.Equal(t, flow.StepHistoryList, m.step)
	assert.Equal(t, 1, entryCount(t, store))
}

func TestHistoryClearAll(t *testing.T) {
	store := seededStore(t, "https://a.example", "https://b.example")
	m := newHistoryModel(context.Background(), store)
	run(t, m, m.Init())

	m.Update(keys("x"))
	m.Update(keys("yes"))
	_, cmd := m.Update(enter)
	_, reload := m.Update(cmd())
	run(t, m, reload)
	assert.Empty(t, m.entries)
	assert.Contains(t, m.View(), "No history yet")
}

func TestHistoryCopy(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	store := seededStore(t, "https://a.example")
	m := newHistoryModel(context.Background(), store)
	run(t, m, m.Init())

	_, cmd := m.Update(keys("c"))
	run(t, m, cmd)
	assert.Equal(t, "```json\n{\n  \"url\": \"https://a.example\"\n}\n```", copied)
	assert.Contains(t, m.View(), "Copied to clipboard")
}

func TestRootOpensHistoryEntryInResultView(t *testing.T) {
	deps, _ := newTestDeps(t, models.Payload{})
	deps.Store = seededStore(t, "https://a.example")
	root := NewRootModel(context.Background(), deps).(*rootModel)

	root.Update(keys("2"))
	require.NotNil(t, root.current)

	root.Update(flow.OpenResultMsg{Entry: models.HistoryEntry{
		URL: "https://a.example", Action: actions.FetchSingle,
		Data: models.Payload{"url": "https://a.example", "title": "A"},
	}})
	assert.Same(t, root.opView, root.current)
	assert.Equal(t, flow.StepResult, root.operation.step)
	assert.Contains(t, root.View(), "A")

	root.Update(flow.MenuNavigationMsg{})
	assert.Nil(t, root.current)
}

func TestRootSettlesWhileAnotherFlowIsShown(t *testing.T) {
	deps, _ := newTestDeps(t, models.Payload{"url": "https://example.com"})
	root := NewRootModel(context.Background(), deps).(*rootModel)

	require.NoError(t, deps.Session.SetKind(actions.FetchSingle))
	deps.Session.SetURL("https://example.com")
	attempt, err := deps.Session.Submit()
	require.NoError(t, err)

	root.Update(keys("2"))
	root.Update(flow.AttemptSettledMsg{Outcome: attempt.Execute(context.Background(), deps.Doer)})

	assert.False(t, deps.Session.Busy(lifecycle.Primary))
	assert.Equal(t, 1, entryCount(t, deps.Store))
}
