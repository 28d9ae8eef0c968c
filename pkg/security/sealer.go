package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealer encrypts snapshot blobs at rest with ChaCha20-Poly1305. The nonce
// is prepended to the ciphertext.
type Sealer struct {
	key []byte
}

// NewSealer builds a Sealer from a 64-hex-char key.
func NewSealer(keyHex string) (*Sealer, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("seal key is not hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext.
func (s *Sealer) Seal(plaintext []byte) []byte {
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		// key length was validated in NewSealer
		panic(err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		panic(err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil)
}

// Open decrypts a blob produced by Seal.
func (s *Sealer) Open(blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		panic(err)
	}
	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("sealed blob too short")
	}
	nonce, ct := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("unseal: %w", err)
	}
	return pt, nil
}
