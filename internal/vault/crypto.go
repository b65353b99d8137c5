// Package vault implements the Legacy Vault: PIN-encrypted farewell
// messages released on a fixed date or after the owner goes quiet.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"regexp"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters shared with the browser client. Both sides must
// produce the same key from the same PIN and user ID.
const (
	pbkdf2Iterations = 100000
	keyLenBytes      = 32
	nonceLenBytes    = 12
)

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

// ValidPIN reports whether the PIN is 4 to 6 digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

// DeriveKey derives the AES-256 key from the PIN, salted with the owner's
// user ID so identical PINs yield different keys per user.
func DeriveKey(pin, userID string) []byte {
	return pbkdf2.Key([]byte(pin), []byte(userID), pbkdf2Iterations, keyLenBytes, sha256.New)
}

// Encrypt seals plaintext with AES-256-GCM under the PIN-derived key. The
// random nonce is prepended to the ciphertext, matching the layout the
// browser client produces and expects.
func Encrypt(plaintext []byte, pin, userID string) ([]byte, error) {
	if !ValidPIN(pin) {
		return nil, fmt.Errorf("pin must be 4 to 6 digits")
	}
	aead, err := newAEAD(pin, userID)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceLenBytes)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce-prefixed AES-256-GCM payload. A wrong PIN fails
// authentication; the error does not distinguish wrong PIN from corruption.
func Decrypt(payload []byte, pin, userID string) ([]byte, error) {
	if len(payload) < nonceLenBytes {
		return nil, fmt.Errorf("payload too short")
	}
	aead, err := newAEAD(pin, userID)
	if err != nil {
		return nil, err
	}
	nonce, ciphertext := payload[:nonceLenBytes], payload[nonceLenBytes:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt vault payload: %w", err)
	}
	return plaintext, nil
}

func newAEAD(pin, userID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(pin, userID))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
