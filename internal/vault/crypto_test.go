package vault

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPIN(t *testing.T) {
	valid := []string{"1234", "12345", "123456", "0000"}
	for _, pin := range valid {
		assert.True(t, ValidPIN(pin), pin)
	}
	invalid := []string{"", "123", "1234567", "12a4", "12 34", "-1234"}
	for _, pin := range invalid {
		assert.False(t, ValidPIN(pin), pin)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("a message for after I'm gone")

	payload, err := Encrypt(plaintext, "4821", "user-abc")
	require.NoError(t, err)
	assert.NotContains(t, string(payload), string(plaintext))

	decrypted, err := Decrypt(payload, "4821", "user-abc")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(plaintext, decrypted))
}

func TestDecryptWrongPINFails(t *testing.T) {
	payload, err := Encrypt([]byte("secret"), "4821", "user-abc")
	require.NoError(t, err)

	_, err = Decrypt(payload, "4822", "user-abc")
	assert.Error(t, err)
}

func TestDecryptWrongUserFails(t *testing.T) {
	payload, err := Encrypt([]byte("secret"), "4821", "user-abc")
	require.NoError(t, err)

	_, err = Decrypt(payload, "4821", "user-xyz")
	assert.Error(t, err)
}

func TestEncryptRejectsInvalidPIN(t *testing.T) {
	_, err := Encrypt([]byte("secret"), "12", "user-abc")
	assert.Error(t, err)
}

func TestEncryptNonceVaries(t *testing.T) {
	a, err := Encrypt([]byte("secret"), "4821", "user-abc")
	require.NoError(t, err)
	b, err := Encrypt([]byte("secret"), "4821", "user-abc")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptTruncatedPayload(t *testing.T) {
	_, err := Decrypt([]byte("short"), "4821", "user-abc")
	assert.Error(t, err)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	assert.Equal(t, DeriveKey("4821", "user-abc"), DeriveKey("4821", "user-abc"))
	assert.NotEqual(t, DeriveKey("4821", "user-abc"), DeriveKey("4821", "user-xyz"))
	assert.Len(t, DeriveKey("4821", "user-abc"), 32)
}
