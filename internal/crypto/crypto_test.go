package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	t.Run("Should be deterministic per token", func(t *testing.T) {
		a, err := DeriveKey("s3cret")
		require.NoError(t, err)
		b, err := DeriveKey("s3cret")
		require.NoError(t, err)
		c, err := DeriveKey("other")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.NotEqual(t, a, c)
	})

	t.Run("Should return no key for an empty token", func(t *testing.T) {
		k, err := DeriveKey("")
		require.NoError(t, err)
		assert.Nil(t, k)
	})
}

func TestSealOpen(t *testing.T) {
	key, err := DeriveKey("s3cret")
	require.NoError(t, err)

	sealed, err := Seal([]byte(`[{"type":"text","text":"hi"}]`), key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "hi")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"type":"text","text":"hi"}]`, string(plain))

	t.Run("Should reject the wrong key", func(t *testing.T) {
		other, err := DeriveKey("other")
		require.NoError(t, err)
		_, err = Open(sealed, other)
		require.ErrorIs(t, err, ErrOpen)
	})

	t.Run("Should reject truncated input", func(t *testing.T) {
		_, err := Open(sealed[:10], key)
		require.ErrorIs(t, err, ErrOpen)
	})

	t.Run("Should use a fresh nonce every time", func(t *testing.T) {
		again, err := Seal([]byte(`[{"type":"text","text":"hi"}]`), key)
		require.NoError(t, err)
		assert.NotEqual(t, sealed, again)
	})
}
