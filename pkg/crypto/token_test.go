package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPISecret(t *testing.T) {
	a, err := GenerateAPISecret()
	require.NoError(t, err)
	b, err := GenerateAPISecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
}

func TestHashToken(t *testing.T) {
	sum := sha256.Sum256([]byte("raw-secret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), HashToken("raw-secret"))
	assert.NotEqual(t, HashToken("a"), HashToken("b"))
}

func TestGenerateRandomToken_ReadError(t *testing.T) {
	orig := randomRead
	t.Cleanup(func() { randomRead = orig })
	randomRead = func([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

	_, err := GenerateAPISecret()
	assert.Error(t, err)
}
