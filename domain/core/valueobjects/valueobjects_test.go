package valueobjects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "forum-api/pkg/errors"
)

func TestDeriveSlug(t *testing.T) {
	tests := map[string]string{
		"JavaScript":          "javascript",
		"HTML-CSS":            "html-css",
		"Backend Development": "backend-development",
		"  Hello,   World!  ": "hello-world",
	}
	for title, want := range tests {
		assert.Equal(t, want, DeriveSlug(title), title)
	}
}

func TestParseEntityID(t *testing.T) {
	id := NewEntityID()

	parsed, err := ParseEntityID("topic", id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(id))

	_, err = ParseEntityID("topic", "42")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidReference(err))
	assert.Contains(t, err.Error(), `Invalid topic ID: "42"`)
}

func TestNewTitle(t *testing.T) {
	title, err := NewTitle("  Closures  ")
	require.NoError(t, err)
	assert.Equal(t, "Closures", title.String())

	_, err = NewTitle("   ")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewTitle(strings.Repeat("x", 201))
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewText(t *testing.T) {
	_, err := NewText("text", "", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text is required")

	_, err = NewText("text", "01234567890", 10)
	assert.True(t, pkgerrors.IsValidation(err))
}
