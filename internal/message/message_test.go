package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWake(t *testing.T) {
	m := Wake("ext-1", "ShareMedia-com.acme.app://newData")
	b, err := m.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"WAKE"`)
	assert.Contains(t, string(b), `"uri":"ShareMedia-com.acme.app://newData"`)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, TypeWake, got.Type)
	assert.Equal(t, "ext-1", got.Source)
	assert.Equal(t, m.URI, got.URI)
	assert.True(t, m.SentAt.Equal(got.SentAt))
}

func TestDecode(t *testing.T) {
	t.Run("Should omit empty fields", func(t *testing.T) {
		b, err := (&Message{Type: TypeWake, URI: "x"}).Encode()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"WAKE","uri":"x"}`, string(b))
	})

	t.Run("Should reject frames without a type", func(t *testing.T) {
		_, err := Decode([]byte(`{"uri":"x"}`))
		require.Error(t, err)
	})

	t.Run("Should reject malformed JSON", func(t *testing.T) {
		_, err := Decode([]byte(`{`))
		require.Error(t, err)
	})

	t.Run("Should carry error text", func(t *testing.T) {
		m := Errorf("unexpected %s", "PING")
		assert.Equal(t, TypeError, m.Type)
		assert.Equal(t, "unexpected PING", m.Error)
	})
}
