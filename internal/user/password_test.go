package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainHasher(t *testing.T) {
	h := PlainHasher{}
	stored, err := h.Hash("p")
	require.NoError(t, err)
	assert.Equal(t, "p", stored)
	assert.True(t, h.Matches(stored, "p"))
	assert.False(t, h.Matches(stored, "P"))
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	stored, err := h.Hash("p")
	require.NoError(t, err)
	assert.NotEqual(t, "p", stored)
	assert.True(t, h.Matches(stored, "p"))
	assert.False(t, h.Matches(stored, "q"))

	// plaintext left over from before hashing was enabled
	assert.True(t, h.Matches("legacy", "legacy"))
	assert.False(t, h.Matches("legacy", "other"))
}
