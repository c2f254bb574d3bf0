package authgate

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// FailureKind is the terminal state of a validation call. The zero value
// means the token is valid.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureExpired          FailureKind = FailureKind(TextCodeTokenExpired)
	FailureMalformed        FailureKind = FailureKind(TextCodeTokenMalformed)
	FailureSignatureInvalid FailureKind = FailureKind(TextCodeInvalidSignature)
	FailureSubjectMismatch  FailureKind = FailureKind(TextCodeSubjectMismatch)
	FailureRoleDenied       FailureKind = FailureKind(TextCodeRoleDenied)
	FailureUnavailable      FailureKind = FailureKind(TextCodeValidatorUnavailable)
)

// Result is the outcome of validating one token.
type Result struct {
	Valid   bool         `json:"valid"`
	Subject string       `json:"subject,omitempty"`
	Roles   []string     `json:"roles,omitempty"`
	Failure FailureKind  `json:"failure_kind,omitempty"`
	Claims  *TokenClaims `json:"-"`
}

// Validator is the single authoritative validation path: strip scheme,
// decrypt the envelope, verify the signature, then check expiry. Every
// other operation is built on Validate and cannot skip the expiry check.
type Validator struct {
	codec  *TokenCodec
	signer *ClaimsSigner
	logger Logger
	now    func() time.Time
}

type ValidatorOption func(*Validator)

// WithValidatorClock overrides the clock, for deterministic expiry tests.
func WithValidatorClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

func WithValidatorLogger(logger Logger) ValidatorOption {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func NewValidator(codec *TokenCodec, signer *ClaimsSigner, opts ...ValidatorOption) *Validator {
	v := &Validator{
		codec:  codec,
		signer: signer,
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

var _ TokenValidator = (*Validator)(nil)

// Validate reports the terminal state for a token. The error return is
// reserved for transport failures on remote implementations; the local
// validator always answers, encoding failures in Result.Failure.
func (v *Validator) Validate(ctx context.Context, token string) (Result, error) {
	signed, err := v.codec.Decrypt(StripBearerScheme(token))
	if err != nil {
		return Result{Failure: FailureMalformed}, nil
	}

	claims, err := v.signer.Verify(signed)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return Result{Failure: FailureSignatureInvalid}, nil
		}
		return Result{Failure: FailureMalformed}, nil
	}

	if !v.now().Before(claims.Expires()) {
		return Result{Subject: claims.Subject(), Failure: FailureExpired}, nil
	}

	return Result{
		Valid:   true,
		Subject: claims.Subject(),
		Roles:   claims.Roles,
		Claims:  claims,
	}, nil
}

// ValidateForSubject reports whether the token is valid and bound to the
// expected subject.
func (v *Validator) ValidateForSubject(ctx context.Context, token, subject string) (bool, error) {
	res, err := v.Validate(ctx, token)
	if err != nil {
		return false, err
	}
	return res.Valid && res.Subject == subject, nil
}

// ExtractRoles returns the token's roles, or an empty set on any failure.
// It never errors; callers that need the failure kind call Validate.
func (v *Validator) ExtractRoles(ctx context.Context, token string) []string {
	res, err := v.Validate(ctx, token)
	if err != nil || !res.Valid {
		return []string{}
	}
	if res.Roles == nil {
		return []string{}
	}
	return res.Roles
}

// HasRole reports whether a valid token carries the exact role.
func (v *Validator) HasRole(ctx context.Context, token, role string) bool {
	for _, r := range v.ExtractRoles(ctx, token) {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether a valid token carries at least one of the
// required roles. An empty required set passes for any valid token.
func (v *Validator) HasAnyRole(ctx context.Context, token string, roles []string) (bool, error) {
	res, err := v.Validate(ctx, token)
	if err != nil {
		return false, err
	}
	if !res.Valid {
		return false, nil
	}
	return res.Claims.HasAnyRole(roles), nil
}

// FailureError maps a failure kind back to the taxonomy error, for callers
// that propagate validation results as errors.
func (k FailureKind) FailureError() error {
	switch k {
	case FailureNone:
		return nil
	case FailureExpired:
		return ErrTokenExpired
	case FailureSignatureInvalid:
		return ErrInvalidSignature
	case FailureSubjectMismatch:
		return ErrSubjectMismatch
	case FailureRoleDenied:
		return ErrRoleDenied
	case FailureUnavailable:
		return ErrValidatorUnavailable
	default:
		return ErrTokenMalformed
	}
}
