package session

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDeterministic(t *testing.T) {
	assert.Equal(t, Derive("https://example.com/a"), Derive("https://example.com/a"))
}

func TestDeriveDistinctURLs(t *testing.T) {
	assert.NotEqual(t, Derive("https://example.com/a"), Derive("https://example.com/b"))
}

func TestDeriveIgnoresSurroundingWhitespace(t *testing.T) {
	assert.Equal(t, Derive("https://example.com/a"), Derive("  https://example.com/a "))
}

func TestDeriveNamespaceSafe(t *testing.T) {
	id := Derive("https://example.com/some/path?q=1&x=2")
	assert.Regexp(t, regexp.MustCompile(`^web-[0-9a-f]{64}$`), id)
}
