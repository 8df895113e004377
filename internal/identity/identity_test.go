package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRemoteEligible(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"canonical lowercase", "a1b2c3d4-e5f6-47a8-99b0-1234567890ab", true},
		{"canonical uppercase", "A1B2C3D4-E5F6-47A8-99B0-1234567890AB", true},
		{"timestamp token", "1700000000000", false},
		{"empty", "", false},
		{"31 char near uuid", "a1b2c3d4-e5f6-47a8-99b0-1234567890a", false},
		{"no hyphens", "a1b2c3d4e5f647a899b01234567890ab", false},
		{"braced", "{a1b2c3d4-e5f6-47a8-99b0-1234567890ab}", false},
		{"urn form", "urn:uuid:a1b2c3d4-e5f6-47a8-99b0-1234567890ab", false},
		{"non hex", "g1b2c3d4-e5f6-47a8-99b0-1234567890ab", false},
		{"misplaced hyphen", "a1b2c3d4e-5f6-47a8-99b0-1234567890ab", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRemoteEligible(tt.id))
		})
	}
}

func TestLocalGenerator(t *testing.T) {
	gen := LocalGenerator{}
	seen := make(map[string]struct{})

	for i := 0; i < 500; i++ {
		id := gen.NewID()
		assert.False(t, IsRemoteEligible(id), "local id %q must not be UUID-shaped", id)
		assert.True(t, strings.Contains(id, "-"))
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("item-1", "item-2")

	assert.Equal(t, "item-1", gen.NewID())
	assert.Equal(t, "item-2", gen.NewID())

	fallback := gen.NewID()
	assert.NotEmpty(t, fallback)
	assert.False(t, IsRemoteEligible(fallback))
}
