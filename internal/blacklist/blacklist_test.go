package blacklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_IsAllowed(t *testing.T) {
	bl, err := New([]string{"example.com", "  ", `/\.pdf$/`, ".Tracker.io"})
	require.NoError(t, err)
	assert.Equal(t, 3, bl.Len())

	tests := []struct {
		url     string
		allowed bool
	}{
		{"https://golang.org/doc/", true},
		{"http://golang.org/", true},
		{"https://example.com/", false},
		{"https://www.example.com/page", false},
		{"https://EXAMPLE.com/", false},
		{"https://notexample.com/", true},
		{"https://golang.org/spec.pdf", false},
		{"https://ads.tracker.io/pixel", false},
		{"chrome://settings", false},
		{"file:///home/user/notes.html", false},
		{"about:blank", false},
		{"not a url", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.allowed, bl.IsAllowed(tt.url))
		})
	}
}

func TestBlacklist_Empty(t *testing.T) {
	bl, err := New(nil)
	require.NoError(t, err)

	assert.True(t, bl.IsAllowed("https://example.com/"))
	assert.False(t, bl.IsAllowed("ftp://example.com/"))
}

func TestNew_InvalidRegexp(t *testing.T) {
	_, err := New([]string{"/([/"})
	assert.Error(t, err)
}
