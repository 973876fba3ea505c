package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Encrypted payload layout: magic(8) + salt(16) + nonce(12) + ciphertext
// with the GCM auth tag appended.
const gcmMagic = "GCM3NCR0"

const (
	saltLen    = 16
	nonceLen   = 12
	pbkdf2Iter = 100000
	keyLen     = 32
)

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iter, keyLen, sha256.New)
}

// seal encrypts data with a password-derived AES-GCM key.
func seal(data []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	out := make([]byte, 0, len(gcmMagic)+saltLen+nonceLen+len(data)+gcm.Overhead())
	out = append(out, gcmMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// open decrypts a payload produced by seal. Payloads without the magic
// prefix are returned as-is (stored before encryption was enabled).
func open(data []byte, password string) ([]byte, error) {
	if len(data) < len(gcmMagic) || string(data[:len(gcmMagic)]) != gcmMagic {
		return data, nil
	}
	if len(data) < len(gcmMagic)+saltLen+nonceLen {
		return nil, fmt.Errorf("encrypted payload too short: %d bytes", len(data))
	}

	salt := data[len(gcmMagic) : len(gcmMagic)+saltLen]
	nonce := data[len(gcmMagic)+saltLen : len(gcmMagic)+saltLen+nonceLen]
	ciphertext := data[len(gcmMagic)+saltLen+nonceLen:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("GCM decryption failed: %w", err)
	}
	return plaintext, nil
}
