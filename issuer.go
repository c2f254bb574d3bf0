package authgate

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BearerScheme is the conventional prefix on issued tokens.
const BearerScheme = "Bearer"

// Issuer composes the claims signer and the token codec to mint bearer
// tokens for an authenticated identity. Pure given inputs and the clock.
type Issuer struct {
	signer *ClaimsSigner
	codec  *TokenCodec
	name   string
	ttl    time.Duration
	logger Logger
	now    func() time.Time
}

type IssuerOption func(*Issuer)

// WithIssuerClock overrides the clock, for deterministic expiry tests.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func WithIssuerLogger(logger Logger) IssuerOption {
	return func(i *Issuer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewIssuer returns an Issuer minting tokens with the given issuer name and TTL.
func NewIssuer(signer *ClaimsSigner, codec *TokenCodec, name string, ttl time.Duration, opts ...IssuerOption) *Issuer {
	iss := &Issuer{
		signer: signer,
		codec:  codec,
		name:   name,
		ttl:    ttl,
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(iss)
		}
	}
	return iss
}

// Issue signs claims for subject+roles, encrypts the signed form, and
// returns the envelope prefixed with the bearer scheme. It never returns a
// token for an empty subject.
func (i *Issuer) Issue(subject string, roles []string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrNoEmptySubject
	}

	now := i.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.name,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Roles: append([]string(nil), roles...),
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		i.logger.Error("Issue failed to sign claims", "error", err)
		return "", err
	}

	envelope, err := i.codec.Encrypt(signed)
	if err != nil {
		i.logger.Error("Issue failed to encrypt signed claims", "error", err)
		return "", err
	}

	return BearerScheme + " " + envelope, nil
}

var _ TokenIssuer = (*Issuer)(nil)

// StripBearerScheme removes an optional "Bearer " prefix. Matching is
// case-insensitive on the scheme, the way proxies tend to rewrite it.
func StripBearerScheme(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > len(BearerScheme)+1 && strings.EqualFold(token[:len(BearerScheme)], BearerScheme) {
		if sep := token[len(BearerScheme)]; sep == ' ' || sep == '\t' {
			return strings.TrimSpace(token[len(BearerScheme):])
		}
	}
	return token
}
