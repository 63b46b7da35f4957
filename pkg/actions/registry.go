package actions

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Kind identifies one of the extraction operations the remote service supports.
type Kind string

const (
	FetchSingle                 Kind = "fetch"
	FetchMultiple               Kind = "fetch_multiple"
	ScrapeSingle                Kind = "scrape_single_page"
	ScrapeWithParams            Kind = "scrape"
	ExtractMedia                Kind = "single_page_media"
	ScrapeMultipleMedia         Kind = "multiple_page_media"
	ExtractLinks                Kind = "extract_links"
	ExtractRelatedLinks         Kind = "extract_related_links"
	ExtractMultipleLinks        Kind = "extract_multiple_links"
	ExtractMultipleRelatedLinks Kind = "extract_multiple_related_links"
)

// Link limit bounds for operations that accept filters.
const (
	DefaultLinkLimit = 10
	MinLinkLimit     = 1
	MaxLinkLimit     = 1000
)

// Params holds validated request parameters. Exactly one of URL or URLs is set.
type Params struct {
	URL       string
	URLs      []string
	Whitelist []string
	Blacklist []string
	LinkLimit int
}

// Request is the wire form of one remote call.
type Request struct {
	Kind   Kind
	Method string
	Path   string
	Query  url.Values
	Body   any
}

type urlBody struct {
	URL string `json:"url"`
}

type urlsBody struct {
	URLs []string `json:"urls"`
}

type filteredBody struct {
	URL       string   `json:"url"`
	Whitelist []string `json:"whitelist"`
	Blacklist []string `json:"blacklist"`
	LinkLimit int      `json:"link_limit"`
}

// Definition is the registry entry for a Kind.
type Definition struct {
	Kind   Kind
	Label  string
	Method string
	Path   string

	// URLList is set when the operation takes a list of URLs instead of one.
	URLList bool
	// Filters is set when the operation takes whitelist, blacklist and link limit.
	Filters bool
}

var registry = []Definition{
	{Kind: FetchSingle, Label: "Fetch URL", Method: http.MethodGet, Path: "/fetch"},
	{Kind: FetchMultiple, Label: "Fetch multiple URLs", Method: http.MethodPost, Path: "/fetch_multiple", URLList: true},
	{Kind: ScrapeSingle, Label: "Scrape single page", Method: http.MethodPost, Path: "/scrape_single_page"},
	{Kind: ScrapeWithParams, Label: "Multi-page scrape", Method: http.MethodPost, Path: "/scrape", Filters: true},
	{Kind: ExtractMedia, Label: "Extract media", Method: http.MethodPost, Path: "/single_page_media"},
	{Kind: ScrapeMultipleMedia, Label: "Multi-page media", Method: http.MethodPost, Path: "/multiple_page_media", Filters: true},
	{Kind: ExtractLinks, Label: "Extract links", Method: http.MethodPost, Path: "/extract_links"},
	{Kind: ExtractRelatedLinks, Label: "Extract related links", Method: http.MethodPost, Path: "/extract_related_links"},
	{Kind: ExtractMultipleLinks, Label: "Multi-page links", Method: http.MethodPost, Path: "/extract_multiple_links", Filters: true},
	{Kind: ExtractMultipleRelatedLinks, Label: "Multi-page related links", Method: http.MethodPost, Path: "/extract_multiple_related_links", Filters: true},
}

// Kinds returns every operation in display order.
func Kinds() []Kind {
	out := make([]Kind, len(registry))
	for i, s := range registry {
		out[i] = s.Kind
	}
	return out
}

// Resolve looks up the registry entry for kind.
func Resolve(kind Kind) (Definition, error) {
	for _, s := range registry {
		if s.Kind == kind {
			return s, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownOperation, string(kind))
}

// ParseKind accepts a kind's wire name, ignoring case and surrounding slashes.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.Trim(strings.ToLower(strings.TrimSpace(s)), "/"))
	if _, err := Resolve(k); err != nil {
		return "", err
	}
	return k, nil
}

// RequiresFilters reports whether the UI must collect whitelist, blacklist and link limit.
func (k Kind) RequiresFilters() bool {
	s, err := Resolve(k)
	return err == nil && s.Filters
}

// UsesURLList reports whether the operation takes a comma-separated URL list.
func (k Kind) UsesURLList() bool {
	s, err := Resolve(k)
	return err == nil && s.URLList
}

// Label returns the human-readable name, or the raw kind if unknown.
func (k Kind) Label() string {
	if s, err := Resolve(k); err == nil {
		return s.Label
	}
	return string(k)
}

// BuildPayload maps validated params to the exact wire request for this operation.
func (s Definition) BuildPayload(p Params) Request {
	req := Request{Kind: s.Kind, Method: s.Method, Path: s.Path}
	switch {
	case s.Method == http.MethodGet:
		req.Query = url.Values{"url": []string{p.URL}}
	case s.URLList:
		req.Body = urlsBody{URLs: nonNil(p.URLs)}
	case s.Filters:
		limit := p.LinkLimit
		if limit == 0 {
			limit = DefaultLinkLimit
		}
		req.Body = filteredBody{
			URL:       p.URL,
			Whitelist: nonNil(p.Whitelist),
			Blacklist: nonNil(p.Blacklist),
			LinkLimit: limit,
		}
	default:
		req.Body = urlBody{URL: p.URL}
	}
	return req
}

// ClampLinkLimit keeps n within the accepted range; zero selects the default.
func ClampLinkLimit(n int) int {
	switch {
	case n == 0:
		return DefaultLinkLimit
	case n < MinLinkLimit:
		return MinLinkLimit
	case n > MaxLinkLimit:
		return MaxLinkLimit
	}
	return n
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
