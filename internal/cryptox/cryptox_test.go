package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	for _, plaintext := range []string{"hello", "", "héllo wörld 🚀", "a longer message with\nnewlines and spaces"} {
		encrypted, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encrypted)

		decrypted, err := c.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestCipherFreshNoncePerMessage(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	a, err := c.Encrypt("same message")
	require.NoError(t, err)
	b, err := c.Encrypt("same message")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCipherRejectsWrongKey(t *testing.T) {
	sender, err := New("secret-a")
	require.NoError(t, err)
	reader, err := New("secret-b")
	require.NoError(t, err)

	encrypted, err := sender.Encrypt("confidential")
	require.NoError(t, err)

	_, err = reader.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestCipherRejectsMalformedInput(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	for _, input := range []string{"not base64 !!!", "", "YQ=="} {
		_, err := c.Decrypt(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestCipherRejectsTamperedCiphertext(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	encrypted, err := c.Encrypt("original")
	require.NoError(t, err)

	// Flip one character of the encoded blob.
	raw := []byte(encrypted)
	if raw[0] == 'A' {
		raw[0] = 'B'
	} else {
		raw[0] = 'A'
	}

	_, err = c.Decrypt(string(raw))
	assert.Error(t, err)
}
