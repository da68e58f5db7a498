package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor encrypts and decrypts sensitive member fields (legal names,
// incident details) for at-rest storage.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Plaintext is the result of a best-effort decryption. Failed distinguishes
// "decryption failed" from "no data" for callers and tests.
type Plaintext struct {
	Value  string
	Failed bool
}

// DecryptBestEffort decrypts ciphertext and records failure instead of
// returning an error; list views must keep rendering around a bad row.
func DecryptBestEffort(enc Encryptor, ciphertext string) Plaintext {
	if ciphertext == "" {
		return Plaintext{}
	}
	value, err := enc.Decrypt(ciphertext)
	if err != nil {
		return Plaintext{Failed: true}
	}
	return Plaintext{Value: value}
}

type aeadEncryptor struct {
	key []byte
}

// NewEncryptor builds an Encryptor from a hex-encoded 32-byte key.
func NewEncryptor(hexKey string) (Encryptor, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &aeadEncryptor{key: key}, nil
}

// Encrypt seals the plaintext with XChaCha20-Poly1305 and a random nonce,
// returning base64(nonce || ciphertext).
func (e *aeadEncryptor) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *aeadEncryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plaintext), nil
}
