package actions

import (
	"strings"

	"scrapectl/pkg/utils"
)

// Form is the raw operator input for one submission.
type Form struct {
	Kind      Kind
	URL       string
	URLs      string
	Whitelist string
	Blacklist string
	LinkLimit int
}

// Validate checks the URL input for kind. It has no side effects.
func Validate(kind Kind, rawURL, rawURLs string) (Params, error) {
	def, err := Resolve(kind)
	if err != nil {
		return Params{}, err
	}

	if def.URLList {
		return ValidateURLs(utils.SplitList(rawURLs))
	}

	u := strings.TrimSpace(rawURL)
	if u == "" {
		return Params{}, &ValidationError{Reason: ReasonEmptyURL}
	}
	// A pasted list would otherwise surface as a confusing malformed-URL error.
	if strings.Contains(u, ",") {
		return Params{}, &ValidationError{Reason: ReasonAmbiguousMultipleURLs}
	}
	if !utils.IsAbsoluteURL(u) {
		return Params{}, &ValidationError{Reason: ReasonMalformedURL, Entries: []string{u}}
	}
	return Params{URL: u}, nil
}

// ValidateURLs checks an already split URL list. Members are trimmed and
// blank ones dropped; every remaining member must be absolute.
func ValidateURLs(urls []string) (Params, error) {
	clean := make([]string, 0, len(urls))
	var bad []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !utils.IsAbsoluteURL(u) {
			bad = append(bad, u)
		}
		clean = append(clean, u)
	}
	if len(clean) == 0 {
		return Params{}, &ValidationError{Reason: ReasonEmptyURLList}
	}
	if len(bad) > 0 {
		return Params{}, &ValidationError{Reason: ReasonMalformedURL, Entries: bad}
	}
	return Params{URLs: clean}, nil
}

// ValidateForm validates f and fills the filter fields for kinds that use them.
func ValidateForm(f Form) (Params, error) {
	p, err := Validate(f.Kind, f.URL, f.URLs)
	if err != nil {
		return Params{}, err
	}
	if f.Kind.RequiresFilters() {
		p.Whitelist = utils.SplitList(f.Whitelist)
		p.Blacklist = utils.SplitList(f.Blacklist)
		p.LinkLimit = f.LinkLimit
		if p.LinkLimit == 0 {
			p.LinkLimit = DefaultLinkLimit
		}
	}
	return p, nil
}
