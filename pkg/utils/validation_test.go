package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAbsoluteURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.com":          true,
		"http://example.com/a?b=c":     true,
		"ftp://files.example.org/x":    true,
		"example.com":                  false,
		"/relative/path":               false,
		"https://":                     false,
		"mailto:someone@example.com":   false,
		"://missing-scheme.example":    false,
		"":                             false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsAbsoluteURL(in), "input %q", in)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"blog", "news"}, SplitList("blog, news"))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,, ,b,"))
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, []string{}, SplitList(" , ,"))
}
