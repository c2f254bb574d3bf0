package authgate

import (
	"encoding/base64"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// MinSigningKeySize is the minimum decoded HMAC key length in bytes.
const MinSigningKeySize = 32

// ClaimsSigner builds and verifies the inner signed token with an HMAC
// keyed by a shared signing secret. Verification checks signature and
// structure only; expiry is the validator's responsibility, applied as a
// separate check on top of Verify.
type ClaimsSigner struct {
	signingKey []byte
}

// NewClaimsSigner decodes the base64 signing secret. Secrets shorter than
// MinSigningKeySize decoded bytes are rejected with ErrKeyConfiguration.
func NewClaimsSigner(secret string) (*ClaimsSigner, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyConfiguration.Category, "signing secret is not valid base64").
			WithTextCode(ErrKeyConfiguration.TextCode)
	}

	if len(key) < MinSigningKeySize {
		return nil, ErrKeyConfiguration.Clone().
			WithMetadata(map[string]any{"key_length": len(key), "minimum": MinSigningKeySize})
	}

	return &ClaimsSigner{signingKey: key}, nil
}

// Sign serializes the claims and appends an HS256 MAC over the serialized form.
func (s *ClaimsSigner) Sign(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign claims")
	}

	return signed, nil
}

// Verify recomputes the MAC and compares it against the embedded one,
// returning the typed claims. It deliberately skips registered-claim
// validation: an expired token with a good signature verifies here and is
// rejected by the validator's expiry check instead.
func (s *ClaimsSigner) Verify(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method", errors.CategoryAuth).
				WithMetadata(map[string]any{"alg": t.Header["alg"]})
		}
		return s.signingKey, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || claims.Subject() == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
