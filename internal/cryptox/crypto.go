// Package cryptox seals small secrets (token cookie values) before they are
// written to the local database.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// DeriveKey stretches a passphrase into an AES-256 key with Argon2id.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext with AES-GCM under key and returns
// base64(nonce || ciphertext), suitable for a TEXT column.
func Seal(plaintext []byte, key []byte) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	out := aead.Seal(nonce, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. A wrong key or tampered value yields an error.
func Open(sealed string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrMalformedCiphertext
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(raw) < aead.NonceSize() {
		return nil, ErrMalformedCiphertext
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	return aead.Open(nil, nonce, ciphertext, nil)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
