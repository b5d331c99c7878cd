package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
)

const (
	keySize   = 32
	tagSize   = 16
	tokenSeps = 2

	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// Vault encrypts provider API keys at rest with AES-256-GCM. Tokens are
// self-contained: nonce, auth tag and ciphertext hex-encoded and joined
// with ':'. The key is process-wide and never rotated at runtime.
type Vault struct {
	key []byte
}

// New expects a 64-char hex encoded 256-bit key.
func New(hexKey string) (*Vault, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
	}
	return &Vault{key: key}, nil
}

// NewFromPassphrase derives the key with scrypt for deployments that
// configure a passphrase instead of raw key material.
func NewFromPassphrase(passphrase, salt string) (*Vault, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase is required")
	}
	if salt == "" {
		return nil, fmt.Errorf("encryption salt is required")
	}
	key, err := scrypt.Key([]byte(passphrase), []byte(salt), scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}
	return &Vault{key: key}, nil
}

func (v *Vault) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with a fresh random nonce and returns the
// transportable token.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	aead, err := v.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt fails closed: any malformed token or tag mismatch yields
// ErrIntegrity, never partial plaintext.
func (v *Vault) Decrypt(token string) (string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != tokenSeps+1 {
		return "", appErr.ErrIntegrity
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", appErr.ErrIntegrity
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", appErr.ErrIntegrity
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", appErr.ErrIntegrity
	}
	aead, err := v.aead()
	if err != nil {
		return "", err
	}
	if len(nonce) != aead.NonceSize() || len(tag) != tagSize {
		return "", appErr.ErrIntegrity
	}
	plaintext, err := aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", appErr.ErrIntegrity
	}
	return string(plaintext), nil
}
