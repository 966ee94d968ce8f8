package token

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	raw, err := Generate()
	require.NoError(t, err)

	assert.Len(t, raw, 64)

	decoded, err := hex.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		raw, err := Generate()
		require.NoError(t, err)
		require.False(t, seen[raw], "generated a duplicate token")
		seen[raw] = true
	}
}

func TestHash(t *testing.T) {
	raw, err := Generate()
	require.NoError(t, err)

	h1 := Hash(raw)
	h2 := Hash(raw)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, raw, h1)

	other, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, h1, Hash(other))
}
