package actions

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoints(t *testing.T) {
	tests := []struct {
		kind   Kind
		method string
		path   string
	}{
		{FetchSingle, http.MethodGet, "/fetch"},
		{FetchMultiple, http.MethodPost, "/fetch_multiple"},
		{ScrapeSingle, http.MethodPost, "/scrape_single_page"},
		{ScrapeWithParams, http.MethodPost, "/scrape"},
		{ExtractMedia, http.MethodPost, "/single_page_media"},
		{ScrapeMultipleMedia, http.MethodPost, "/multiple_page_media"},
		{ExtractLinks, http.MethodPost, "/extract_links"},
		{ExtractRelatedLinks, http.MethodPost, "/extract_related_links"},
		{ExtractMultipleLinks, http.MethodPost, "/extract_multiple_links"},
		{ExtractMultipleRelatedLinks, http.MethodPost, "/extract_multiple_related_links"},
	}
	require.Len(t, Kinds(), len(tests))
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			def, err := Resolve(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.method, def.Method)
			assert.Equal(t, tt.path, def.Path)
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("crawl_everything")
	assert.ErrorIs(t, err, ErrUnknownOperation)

	_, err = ParseKind("nope")
	assert.ErrorIs(t, err, ErrUnknownOperation)

	k, err := ParseKind(" /Extract_Links/ ")
	require.NoError(t, err)
	assert.Equal(t, ExtractLinks, k)
}

func TestRequiresFilters(t *testing.T) {
	want := map[Kind]bool{
		ScrapeWithParams:            true,
		ScrapeMultipleMedia:         true,
		ExtractMultipleLinks:        true,
		ExtractMultipleRelatedLinks: true,
	}
	for _, k := range Kinds() {
		assert.Equal(t, want[k], k.RequiresFilters(), "kind %s", k)
	}
	assert.False(t, Kind("bogus").RequiresFilters())
	assert.True(t, FetchMultiple.UsesURLList())
	assert.False(t, FetchSingle.UsesURLList())
}

func TestBuildPayloadWireShapes(t *testing.T) {
	fetch, _ := Resolve(FetchSingle)
	req := fetch.BuildPayload(Params{URL: "https://example.com"})
	assert.Nil(t, req.Body)
	assert.Equal(t, "https://example.com", req.Query.Get("url"))

	multi, _ := Resolve(FetchMultiple)
	body, err := json.Marshal(multi.BuildPayload(Params{URLs: []string{"https://a.example", "https://b.example"}}).Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"urls":["https://a.example","https://b.example"]}`, string(body))

	single, _ := Resolve(ExtractLinks)
	body, err = json.Marshal(single.BuildPayload(Params{URL: "https://example.com"}).Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://example.com"}`, string(body))
}

func TestScrapeWithParamsPayload(t *testing.T) {
	params, err := ValidateForm(Form{
		Kind:      ScrapeWithParams,
		URL:       "https://example.com",
		Whitelist: "blog, news",
		Blacklist: "",
	})
	require.NoError(t, err)

	def, err := Resolve(ScrapeWithParams)
	require.NoError(t, err)
	body, err := json.Marshal(def.BuildPayload(params).Body)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"url":"https://example.com","whitelist":["blog","news"],"blacklist":[],"link_limit":10}`,
		string(body))
}

func TestClampLinkLimit(t *testing.T) {
	assert.Equal(t, DefaultLinkLimit, ClampLinkLimit(0))
	assert.Equal(t, 1, ClampLinkLimit(-5))
	assert.Equal(t, 1000, ClampLinkLimit(5000))
	assert.Equal(t, 42, ClampLinkLimit(42))
}
