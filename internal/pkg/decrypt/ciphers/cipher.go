// Package ciphers wraps the AEAD primitives used to open TLS 1.3 records:
// AES-GCM and ChaCha20-Poly1305. Every cipher here expects the full
// 12-byte nonce and additional data to already be constructed by the
// caller — this package never constructs nonces itself.
package ciphers

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD is the minimal interface this core needs from a TLS 1.3 cipher.
type AEAD interface {
	Open(nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// NewAESGCM builds an AES-GCM AEAD for a 16- or 32-byte key (AES-128 or
// AES-256 respectively, as selected by TLS_AES_128_GCM_SHA256 /
// TLS_AES_256_GCM_SHA384).
func NewAESGCM(key []byte) (AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ciphers: aes key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ciphers: gcm: %w", err)
	}
	return gcmAEAD{aead}, nil
}

// NewChaCha20Poly1305 builds a ChaCha20-Poly1305 AEAD for TLS_CHACHA20_POLY1305_SHA256.
func NewChaCha20Poly1305(key []byte) (AEAD, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("ciphers: chacha20poly1305: %w", err)
	}
	return gcmAEAD{aead}, nil
}

type gcmAEAD struct {
	aead cipher.AEAD
}

func (g gcmAEAD) Open(nonce, ciphertext, additionalData []byte) ([]byte, error) {
	return g.aead.Open(nil, nonce, ciphertext, additionalData)
}
