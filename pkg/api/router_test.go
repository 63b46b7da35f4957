package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/api/middleware"
	"scrapectl/pkg/history"
	"scrapectl/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, apiKey string, urls ...string) (*gin.Engine, *history.Store) {
	t.Helper()
	store := history.NewStore(&history.MemoryBackend{})
	for _, u := range urls {
		require.NoError(t, store.Append(context.Background(), models.HistoryEntry{
			URL: u, Action: actions.ExtractLinks, Timestamp: "1/2/2026, 9:30:00 AM",
			Data: models.Payload{"url": u},
		}))
	}
	return NewRouter(store, apiKey, nil), store
}

func do(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, "secret")
	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestListHistory(t *testing.T) {
	r, _ := newTestRouter(t, "", "https://old.example", "https://new.example")

	w := do(r, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Entries []models.HistoryEntry `json:"entries"`
		Total   int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "https://new.example", body.Entries[0].URL)
	assert.Equal(t, actions.ExtractLinks, body.Entries[0].Action)
}

func TestListEmptyHistoryIsArray(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := do(r, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entries":[],"total":0}`, w.Body.String())
}

func TestGetAndExport(t *testing.T) {
	r, _ := newTestRouter(t, "", "https://a.example")

	w := do(r, http.MethodGet, "/api/v1/history/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"https://a.example"`)

	w = do(r, http.MethodGet, "/api/v1/history/0/markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "```json\n{\n  \"url\": \"https://a.example\"\n}\n```", w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/history/5", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/history/x", "").Code)
}

func TestDeleteAndClear(t *testing.T) {
	r, store := newTestRouter(t, "", "https://a.example", "https://b.example")
	ctx := context.Background()

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/v1/history/0", "").Code)
	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://a.example", entries[0].URL)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/v1/history/3", "").Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/v1/history", "").Code)
	entries, err = store.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRequireAPIKey(t *testing.T) {
	r, _ := newTestRouter(t, "secret", "https://a.example")

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/history", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/history", "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/history", "Bearer secret").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/history", "secret").Code)
}
