package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestPayloadProbes(t *testing.T) {
	p := decode(t, `{"url":"https://a.example","links":["a",1,null],"total_found":2,"title":null}`)

	u, ok := p.String(FieldURL)
	assert.True(t, ok)
	assert.Equal(t, "https://a.example", u)

	links, ok := p.StringSlice(FieldLinks)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "1"}, links)

	n, ok := p.Int(FieldTotalFound)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	assert.False(t, p.Has(FieldTitle), "null counts as absent")
	assert.False(t, p.Has(FieldAllLinks))

	_, ok = p.StringSlice(FieldURL)
	assert.False(t, ok, "a string is not a list")
}

func TestPayloadErrorMessage(t *testing.T) {
	msg, ok := decode(t, `{"error":"boom"}`).ErrorMessage()
	assert.True(t, ok)
	assert.Equal(t, "boom", msg)

	_, ok = decode(t, `{"error":""}`).ErrorMessage()
	assert.False(t, ok)

	_, ok = decode(t, `{"error":null}`).ErrorMessage()
	assert.False(t, ok)

	_, ok = decode(t, `{"links":[]}`).ErrorMessage()
	assert.False(t, ok)
}
