package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
)

// AEADSealer seals string blobs with XChaCha20-Poly1305. The returned blob is
// self-contained: a random nonce is prepended to the ciphertext, so Decrypt
// needs only the blob and the key. Blobs are base64url-encoded for URL and
// query-parameter transport.
type AEADSealer struct {
	key []byte
}

// NewAEADSealer derives a fixed-size key from the configured key material,
// which may be of any length.
func NewAEADSealer(keyMaterial string) *AEADSealer {
	sum := sha256.Sum256([]byte(keyMaterial))
	return &AEADSealer{key: sum[:]}
}

func (s *AEADSealer) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt opens a sealed blob. Every failure mode returns the same sentinel:
// wrong key, truncated input and tampered ciphertext must stay
// indistinguishable to the caller.
func (s *AEADSealer) Decrypt(blob string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", domain.ErrDecryptionFailed
	}
	nonce, ct := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	return string(plain), nil
}
