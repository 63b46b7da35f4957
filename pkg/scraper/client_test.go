package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/models"
)

func request(t *testing.T, kind actions.Kind, p actions.Params) actions.Request {
	t.Helper()
	def, err := actions.Resolve(kind)
	require.NoError(t, err)
	return def.BuildPayload(p)
}

func TestDoFetchSingleUsesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/fetch", r.URL.Path)
		assert.Equal(t, "https://example.com", r.URL.Query().Get("url"))
		_, _ = io.WriteString(w, `{"url":"https://example.com","title":"Example"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	payload, err := c.Do(context.Background(), request(t, actions.FetchSingle, actions.Params{URL: "https://example.com"}))
	require.NoError(t, err)
	title, _ := payload.String(models.FieldTitle)
	assert.Equal(t, "Example", title)
}

func TestDoPostsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract_multiple_links", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["link_limit"])
		_, _ = io.WriteString(w, `{"links":["a","b"],"total_found":2,"total_requested":5}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	payload, err := c.Do(context.Background(), request(t, actions.ExtractMultipleLinks, actions.Params{
		URL: "https://example.com", LinkLimit: 5,
	}))
	require.NoError(t, err)
	links, ok := payload.StringSlice(models.FieldLinks)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, links)
}

func TestDoWrapsArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"url":"a"},{"url":"b"}]`)
	}))
	defer srv.Close()

	payload, err := NewClient(srv.URL, time.Second).Do(context.Background(),
		request(t, actions.FetchMultiple, actions.Params{URLs: []string{"https://a.example"}}))
	require.NoError(t, err)
	assert.Len(t, payload[models.FieldItems], 2)
}

func TestDoServerReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"could not resolve host"}`)
	}))
	defer srv.Close()

	payload, err := NewClient(srv.URL, time.Second).Do(context.Background(),
		request(t, actions.ScrapeSingle, actions.Params{URL: "https://example.com"}))
	var se *ScraperError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.IsServerReported())
	assert.Equal(t, "could not resolve host", se.UserMessage())
	assert.NotNil(t, payload)
}

func TestDoHTTPErrorPrefersDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"fastapi detail", `{"detail":"Invalid URL supplied"}`, "Invalid URL supplied"},
		{"error field", `{"error":"rate limited"}`, "rate limited"},
		{"plain body", `upstream exploded`, "upstream exploded"},
		{"empty body", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Do(context.Background(),
				request(t, actions.ExtractLinks, actions.Params{URL: "https://example.com"}))
			var se *ScraperError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, ErrorTypeHTTPStatus, se.Type)
			assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
			if tt.want != "" {
				assert.Equal(t, tt.want, se.UserMessage())
			} else {
				assert.Contains(t, se.UserMessage(), GenericTransportMessage)
			}
		})
	}
}

func TestDoHTTPErrorTruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxDetailLen-1) + strings.Repeat("é", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Do(context.Background(),
		request(t, actions.ExtractLinks, actions.Params{URL: "https://example.com"}))
	var se *ScraperError
	require.ErrorAs(t, err, &se)
	msg := se.UserMessage()
	assert.True(t, utf8.ValidString(msg), "message %q", msg)
	assert.Equal(t, strings.Repeat("a", maxDetailLen-1)+"...", msg)
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Do(context.Background(),
		request(t, actions.ExtractLinks, actions.Params{URL: "https://example.com"}))
	var se *ScraperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrorTypeTransport, se.Type)
	assert.Equal(t, GenericTransportMessage, se.UserMessage())
}

func TestDoCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, time.Second).Do(ctx,
		request(t, actions.ExtractLinks, actions.Params{URL: "https://example.com"}))
	var se *ScraperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrorTypeCancelled, se.Type)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>nope</html>`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Do(context.Background(),
		request(t, actions.ExtractLinks, actions.Params{URL: "https://example.com"}))
	var se *ScraperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrorTypeInvalidResponse, se.Type)
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL, time.Second).CheckHealth(context.Background()))
}
