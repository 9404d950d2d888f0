package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUnique(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		s := g.GenerateString()
		if seen[s] {
			t.Fatalf("duplicate ULID generated: %s", s)
		}
		seen[s] = true
	}
}

func TestPrefixedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewPanelID().String(), "panel_"))
	assert.True(t, strings.HasPrefix(NewSurfaceID().String(), "surf_"))
	assert.True(t, strings.HasPrefix(NewSagaID().String(), "saga_"))
}

func TestIsValid(t *testing.T) {
	g := NewGenerator()
	assert.True(t, IsValid(g.GenerateString()))
	assert.False(t, IsValid("not-a-ulid"))
}
