package views

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapectl/pkg/models"
)

func payload(t *testing.T, raw string) models.Payload {
	t.Helper()
	var p models.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestLinksAndStats(t *testing.T) {
	p := Project(payload(t, `{"links":["a","b"],"total_found":2,"total_requested":5}`))
	assert.True(t, p.HasLinks())
	assert.Equal(t, []string{"a", "b"}, p.LinksView())

	stats, ok := p.StatsView()
	require.True(t, ok)
	assert.Equal(t, Stats{Found: 2, Requested: 5}, stats)
}

func TestRelatedOnly(t *testing.T) {
	p := Project(payload(t, `{"related_links":["x"]}`))
	assert.False(t, p.HasLinks())
	assert.True(t, p.HasRelated())
	assert.Equal(t, []string{}, p.LinksView())
	assert.Equal(t, []string{"x"}, p.RelatedView())
	_, ok := p.StatsView()
	assert.False(t, ok)
}

func TestLinksPriority(t *testing.T) {
	p := Project(payload(t, `{"links":["first"],"all_links":["second"]}`))
	assert.Equal(t, []string{"first"}, p.LinksView())

	p = Project(payload(t, `{"all_links":["second"]}`))
	assert.True(t, p.HasLinks())
	assert.Equal(t, []string{"second"}, p.LinksView())
}

func TestStatsNeedBothCounts(t *testing.T) {
	_, ok := Project(payload(t, `{"total_found":3}`)).StatsView()
	assert.False(t, ok)
	_, ok = Project(payload(t, `{"total_requested":3}`)).StatsView()
	assert.False(t, ok)
}

func TestMediaView(t *testing.T) {
	p := Project(payload(t, `{"media_links":"https://cdn.example/a.png, ,https://cdn.example/v/clip.mp4"}`))
	assert.Equal(t, []string{"https://cdn.example/a.png", "https://cdn.example/v/clip.mp4"}, p.MediaView())
	assert.Equal(t, "a.png", MediaName(p.MediaView()[0]))
	assert.Equal(t, "x", MediaName("x"))
	assert.Equal(t, "dir", MediaName("https://cdn.example/dir/"))
}

func TestHeaderFields(t *testing.T) {
	p := Project(payload(t, `{"url":"https://example.com","content":"body"}`))
	assert.Equal(t, "Result", p.Title())
	assert.Equal(t, "body", p.Content())
	u, ok := p.SourceURL()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", u)
}

func TestToggle(t *testing.T) {
	var tg Toggle
	tg.SetPayload(payload(t, `{"links":["a"],"related_links":["b"]}`))
	assert.Equal(t, ModeRaw, tg.Mode())
	assert.False(t, tg.Select(ModeMedia))
	assert.True(t, tg.Select(ModeRelated))
	assert.Equal(t, []string{"b"}, tg.Projection().Lines(tg.Mode()))

	assert.Equal(t, ModeRaw, tg.Next())
	assert.Equal(t, ModeLinks, tg.Next())

	tg.SetPayload(payload(t, `{"related_links":["c"]}`))
	assert.Equal(t, ModeRaw, tg.Mode(), "a new payload resets the toggle")
	assert.Equal(t, ModeRelated, tg.Next())
}
