package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// 32 bytes base64url without padding is 43 characters.
	assert.Len(t, a, 43)
	assert.NotContains(t, a, "=")
}

func TestHashToken(t *testing.T) {
	h := HashToken("raw-token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("raw-token"))
	assert.NotEqual(t, h, HashToken("raw-token2"))
}
