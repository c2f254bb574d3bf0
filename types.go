package authgate

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the secrets and issuance options the token core needs.
// Secrets are base64-encoded strings supplied via process configuration,
// immutable for the process lifetime.
type Config interface {
	GetSigningSecret() string
	GetEncryptionSecret() string
	GetTokenTTL() int // seconds
	GetIssuer() string
	GetAuthScheme() string
}

// IdentityProvider resolves identity records from the identity-owning
// service. The fallback store wraps it with a process-local cache and the
// break-glass operator record.
type IdentityProvider interface {
	FindIdentityBySubject(ctx context.Context, subject string) (*IdentityRecord, error)
}

// TokenIssuer mints bearer tokens for an authenticated identity.
type TokenIssuer interface {
	Issue(subject string, roles []string) (string, error)
}

// TokenValidator answers whether a token is authentic, unexpired, who it is
// bound to and which roles it carries. Implemented locally by Validator and
// remotely by remote.Client; every service boundary consumes this interface
// so the decision procedure cannot drift between services.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Result, error)
	ValidateForSubject(ctx context.Context, token, subject string) (bool, error)
	HasAnyRole(ctx context.Context, token string, roles []string) (bool, error)
}

// DefaultLogger returns the printf fallback logger used when no Logger is
// configured.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHGATE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHGATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHGATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHGATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
