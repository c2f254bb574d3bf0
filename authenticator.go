package authgate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther turns credentials into bearer tokens. It resolves identities
// through the fallback store so authentication keeps working for cached
// identities and the break-glass operator when the identity service is
// unreachable.
type Auther struct {
	identities *FallbackIdentityStore
	issuer     TokenIssuer
	logger     Logger
}

func NewAuthenticator(identities *FallbackIdentityStore, issuer TokenIssuer) *Auther {
	return &Auther{
		identities: identities,
		issuer:     issuer,
		logger:     defLogger{},
	}
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Login verifies the password against the resolved identity record and
// mints a token carrying the record's roles. Lookup misses and password
// mismatches both come back as ErrInvalidCredentials so callers cannot
// probe which subjects exist.
func (a *Auther) Login(ctx context.Context, subject, password string) (string, error) {
	record, err := a.identities.Lookup(ctx, subject)
	if err != nil {
		a.logger.Info("Login identity lookup failed", "subject", subject, "error", err)
		if errors.Is(err, ErrIdentityNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := ComparePasswordAndHash(password, record.PasswordHash); err != nil {
		a.logger.Info("Login password mismatch", "subject", subject)
		return "", ErrInvalidCredentials
	}

	token, err := a.issuer.Issue(record.Subject, record.Roles)
	if err != nil {
		a.logger.Error("Login failed to issue token", "subject", subject, "error", err)
		return "", err
	}

	return token, nil
}
