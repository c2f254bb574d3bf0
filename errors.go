package authgate

import "github.com/goliatone/go-errors"

const (
	TextCodeKeyConfiguration     = "key_configuration"
	TextCodeTokenMalformed       = "token_malformed"
	TextCodeInvalidSignature     = "invalid_signature"
	TextCodeDecryptionFailed     = "decryption_failed"
	TextCodeTokenExpired         = "token_expired"
	TextCodeSubjectMismatch      = "subject_mismatch"
	TextCodeRoleDenied           = "insufficient_role"
	TextCodeValidatorUnavailable = "validation_unavailable"
	TextCodeIdentityNotFound     = "identity_not_found"
	TextCodeInvalidCredentials   = "invalid_credentials"
	TextCodeMissingToken         = "missing_token"
)

// ErrKeyConfiguration is returned when a configured secret cannot be decoded
// into a usable key. It is fatal: a process with a misconfigured key must not
// serve traffic.
var ErrKeyConfiguration = errors.New("secret does not decode to a usable key", errors.CategoryInternal).
	WithTextCode(TextCodeKeyConfiguration).
	WithCode(errors.CodeInternal)

// ErrTokenMalformed is returned when a token is structurally corrupt.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidSignature is returned when the token MAC does not match.
var ErrInvalidSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidSignature).
	WithCode(errors.CodeUnauthorized)

// ErrDecryptionFailed is returned when an envelope cannot be decrypted:
// wrong key, truncated input, or a body that is not a valid envelope.
var ErrDecryptionFailed = errors.New("envelope decryption failed", errors.CategoryAuth).
	WithTextCode(TextCodeDecryptionFailed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned by the validator when the claims verify but
// the expiry has passed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrSubjectMismatch is returned when a token is valid but bound to a
// different subject than the one being checked.
var ErrSubjectMismatch = errors.New("token subject mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeSubjectMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrRoleDenied is returned when an authenticated subject lacks every
// required role.
var ErrRoleDenied = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeRoleDenied).
	WithCode(errors.CodeForbidden)

// ErrValidatorUnavailable is a transport-level failure: the remote validator
// could not be reached or timed out. Callers must treat it as a deny.
var ErrValidatorUnavailable = errors.New("token validator unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeValidatorUnavailable).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is returned when no identity record exists for a
// subject, locally or remotely.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidCredentials is returned on a failed password comparison.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("missing or malformed bearer token", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptySubject rejects issuance for an empty subject.
var ErrNoEmptySubject = errors.New("subject must not be empty", errors.CategoryBadInput).
	WithTextCode("empty_subject").
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects empty input before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithTextCode("empty_string").
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword wraps the bcrypt mismatch so callers never
// depend on the bcrypt package directly.
var ErrMismatchedHashAndPassword = errors.New("password does not match hash", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// HasTextCode reports whether err carries the given text code, looking
// through wrapping.
func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich != nil {
		return rich.TextCode == code
	}
	return false
}

// IsKeyConfigurationError will check for unusable key configuration
func IsKeyConfigurationError(err error) bool {
	return HasTextCode(err, TextCodeKeyConfiguration)
}

// IsDecryptionError will check for envelope decryption failures
func IsDecryptionError(err error) bool {
	return HasTextCode(err, TextCodeDecryptionFailed)
}

// IsValidatorUnavailableError will check for transport-level validation failures
func IsValidatorUnavailableError(err error) bool {
	return HasTextCode(err, TextCodeValidatorUnavailable)
}
