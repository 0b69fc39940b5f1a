package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const tokenCipherPrefix = "v1:"

var errCiphertext = errors.New("malformed token ciphertext")

// TokenCipher seals third-party credentials before they reach the database.
type TokenCipher struct {
	key []byte
}

func NewTokenCipher(secret string) (*TokenCipher, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("missing TOKEN_ENCRYPTION_KEY")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("idea2sns social account tokens"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	return &TokenCipher{key: key}, nil
}

func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return tokenCipherPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *TokenCipher) Decrypt(encoded string) (string, error) {
	if !strings.HasPrefix(encoded, tokenCipherPrefix) {
		return "", errCiphertext
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, tokenCipherPrefix))
	if err != nil {
		return "", errCiphertext
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(data) < aead.NonceSize() {
		return "", errCiphertext
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open token: %w", err)
	}
	return string(plaintext), nil
}

// MaskToken keeps the first and last four characters.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	r := []rune(token)
	if len(r) <= 8 {
		return "••••"
	}
	return string(r[:4]) + "••••" + string(r[len(r)-4:])
}
