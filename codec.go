package authgate

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"github.com/goliatone/go-errors"
)

// TokenCodec is the outer layer of the two-layer token format: it encrypts a
// signed token string into an opaque envelope and back. Stateless, keyed by
// a shared secret distinct from the signing secret. The inner token stays a
// self-describing, independently verifiable artifact; the envelope hides
// that structure from any party without the encryption key.
type TokenCodec struct {
	aead cipher.AEAD
}

// EncryptionKeySize is the canonical decoded key length. 16 and 32 byte
// keys (AES-128/256) are also accepted.
const EncryptionKeySize = 24

// NewTokenCodec derives an AES-GCM cipher from the base64-encoded secret.
// It fails with ErrKeyConfiguration when the secret does not decode or the
// decoded length is not a valid AES key size; construction happens at
// startup so a misconfigured key never reaches the request path.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyConfiguration.Category, "encryption secret is not valid base64").
			WithTextCode(ErrKeyConfiguration.TextCode)
	}

	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrKeyConfiguration.Clone().
			WithMetadata(map[string]any{"key_length": len(key)})
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyConfiguration.Category, ErrKeyConfiguration.Message).
			WithTextCode(ErrKeyConfiguration.TextCode)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyConfiguration.Category, ErrKeyConfiguration.Message).
			WithTextCode(ErrKeyConfiguration.TextCode)
	}

	return &TokenCodec{aead: aead}, nil
}

// Encrypt seals plaintext into an opaque envelope: base64url(nonce || ciphertext).
func (c *TokenCodec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate envelope nonce")
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope. Deterministic: the same envelope and key always
// yield the same plaintext or the same failure. Decryption either produces
// exactly the sealed plaintext or fails with ErrDecryptionFailed; there is
// no partial result.
func (c *TokenCodec) Decrypt(envelope string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(envelope)
	if err != nil {
		return "", errors.Wrap(err, ErrDecryptionFailed.Category, "envelope is not valid base64").
			WithTextCode(ErrDecryptionFailed.TextCode)
	}

	if len(sealed) < c.aead.NonceSize() {
		return "", ErrDecryptionFailed
	}

	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
