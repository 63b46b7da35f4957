package views

import (
	"strings"

	"scrapectl/pkg/models"
	"scrapectl/pkg/utils"
)

// Mode selects which projection of a payload is displayed.
type Mode string

const (
	ModeRaw     Mode = "raw"
	ModeLinks   Mode = "links"
	ModeRelated Mode = "related"
	ModeMedia   Mode = "media"
)

// Stats is the summary shown when a payload reports both counts.
type Stats struct {
	Found     int
	Requested int
}

// Projection derives displayable shapes from an arbitrary payload.
// Every field is probed; nothing is assumed present.
type Projection struct {
	payload models.Payload
}

// Project wraps payload for display.
func Project(payload models.Payload) Projection {
	return Projection{payload: payload}
}

// Payload returns the projected payload.
func (p Projection) Payload() models.Payload {
	return p.payload
}

// linkField picks the link array, links taking priority over all_links.
func (p Projection) linkField() (string, bool) {
	for _, f := range []string{models.FieldLinks, models.FieldAllLinks} {
		if _, ok := p.payload.StringSlice(f); ok {
			return f, true
		}
	}
	return "", false
}

func (p Projection) HasLinks() bool {
	_, ok := p.linkField()
	return ok
}

func (p Projection) HasRelated() bool {
	_, ok := p.payload.StringSlice(models.FieldRelatedLinks)
	return ok
}

func (p Projection) HasMedia() bool {
	return len(p.MediaView()) > 0
}

// LinksView returns the chosen link array, or an empty list.
func (p Projection) LinksView() []string {
	f, ok := p.linkField()
	if !ok {
		return []string{}
	}
	links, _ := p.payload.StringSlice(f)
	return links
}

// RelatedView returns related_links, or an empty list.
func (p Projection) RelatedView() []string {
	related, ok := p.payload.StringSlice(models.FieldRelatedLinks)
	if !ok {
		return []string{}
	}
	return related
}

// MediaView splits the comma-joined media_links string.
func (p Projection) MediaView() []string {
	raw, ok := p.payload.String(models.FieldMediaLinks)
	if !ok {
		if list, ok := p.payload.StringSlice(models.FieldMediaLinks); ok {
			return list
		}
		return []string{}
	}
	return utils.SplitList(raw)
}

// StatsView is present only when both total_found and total_requested are.
func (p Projection) StatsView() (Stats, bool) {
	found, okF := p.payload.Int(models.FieldTotalFound)
	requested, okR := p.payload.Int(models.FieldTotalRequested)
	if !okF || !okR {
		return Stats{}, false
	}
	return Stats{Found: found, Requested: requested}, true
}

// Title returns the payload title, or "Result" when it has none.
func (p Projection) Title() string {
	if t, ok := p.payload.String(models.FieldTitle); ok && strings.TrimSpace(t) != "" {
		return t
	}
	return "Result"
}

func (p Projection) Content() string {
	c, _ := p.payload.String(models.FieldContent)
	return c
}

func (p Projection) SourceURL() (string, bool) {
	u, ok := p.payload.String(models.FieldURL)
	return u, ok && u != ""
}

// Error returns the message of an error payload.
func (p Projection) Error() (string, bool) {
	return p.payload.ErrorMessage()
}

// Available lists the modes this payload can be shown in, raw first.
func (p Projection) Available() []Mode {
	modes := []Mode{ModeRaw}
	if p.HasLinks() {
		modes = append(modes, ModeLinks)
	}
	if p.HasRelated() {
		modes = append(modes, ModeRelated)
	}
	if p.HasMedia() {
		modes = append(modes, ModeMedia)
	}
	return modes
}

// Lines returns the list shown for a list mode; nil for raw.
func (p Projection) Lines(mode Mode) []string {
	switch mode {
	case ModeLinks:
		return p.LinksView()
	case ModeRelated:
		return p.RelatedView()
	case ModeMedia:
		return p.MediaView()
	}
	return nil
}

// MediaName is the label for a media link: its last path segment, or the link itself.
func MediaName(link string) string {
	trimmed := strings.TrimRight(link, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return link
}

// Toggle is the view selector. It resets to raw whenever the payload changes.
type Toggle struct {
	mode    Mode
	current Projection
}

// SetPayload shows a new payload in raw mode.
func (t *Toggle) SetPayload(p models.Payload) {
	t.current = Project(p)
	t.mode = ModeRaw
}

func (t *Toggle) Projection() Projection {
	return t.current
}

func (t *Toggle) Mode() Mode {
	if t.mode == "" {
		return ModeRaw
	}
	return t.mode
}

// Select switches to mode if the current payload supports it.
func (t *Toggle) Select(mode Mode) bool {
	for _, m := range t.current.Available() {
		if m == mode {
			t.mode = mode
			return true
		}
	}
	return false
}

// Next cycles through the available modes.
func (t *Toggle) Next() Mode {
	modes := t.current.Available()
	for i, m := range modes {
		if m == t.Mode() {
			t.mode = modes[(i+1)%len(modes)]
			return t.mode
		}
	}
	t.mode = ModeRaw
	return t.mode
}
