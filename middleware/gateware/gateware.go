// Package gateware is the edge authorization filter: a per-request decision
// procedure that consults the route policy, extracts the bearer token, asks
// the token validator, and allows or rejects before the request is
// forwarded. Every failure mode denies; the only paths that skip
// authentication are an explicit bypass policy and the exclusion list.
package gateware

import (
	"context"
	"strings"
	"time"

	authgate "github.com/goliatone/go-authgate"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// DefaultValidationTimeout bounds the remote validation call. There are no
// retries: a timed-out call is a deny, never a blind retry against a token
// that might have just expired.
const DefaultValidationTimeout = 5 * time.Second

type Config struct {
	// Policies resolves the RoutePolicy for each method+path. Required.
	Policies PolicyResolver
	// Validator is the remote (or in-process) token validator. Required.
	Validator authgate.TokenValidator
	// Exclusions are path prefixes that skip authentication entirely
	// (health checks, docs, actuator). Merged with the built-in set.
	Exclusions []string
	// Timeout bounds each validation call. Defaults to DefaultValidationTimeout.
	Timeout time.Duration
	// AuthScheme defaults to "Bearer".
	AuthScheme string
	// ContextKey is where the validation result is stored for downstream
	// handlers. Defaults to "auth_result".
	ContextKey string
	Logger     authgate.Logger
}

// New returns the authorization filter middleware. The checks run strictly
// in order and short-circuit: bypass policy, exclusion list, token
// extraction, remote validation, failure mapping, role requirement, forward.
func New(config ...Config) router.MiddlewareFunc {
	cfg := getDefaultConfig(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			method := ctx.Method()
			path := ctx.Path()

			policy := cfg.Policies.Resolve(method, path)
			if policy.Bypass {
				cfg.Logger.Debug("auth bypassed by route policy", "method", method, "path", path)
				return ctx.Next()
			}

			if isExcluded(path, cfg.Exclusions) {
				cfg.Logger.Debug("auth bypassed by exclusion list", "method", method, "path", path)
				return ctx.Next()
			}

			token, ok := bearerToken(ctx, cfg.AuthScheme)
			if !ok {
				return cfg.reject(ctx, router.StatusUnauthorized, ReasonMissingToken)
			}

			callCtx, cancel := context.WithTimeout(ctx.Context(), cfg.Timeout)
			defer cancel()

			result, err := cfg.Validator.Validate(callCtx, token)
			if err != nil {
				// Fail closed: transport failure or timeout is a deny. The
				// in-flight result, if it ever arrives, is discarded.
				cfg.Logger.Error("token validation unavailable",
					"method", method, "path", path, "error", err)
				return cfg.reject(ctx, router.StatusUnauthorized, ReasonValidatorUnavailable)
			}

			if !result.Valid {
				return cfg.reject(ctx, router.StatusUnauthorized, denyReason(result.Failure))
			}

			if len(policy.RequiredRoles) > 0 {
				allowed, err := cfg.Validator.HasAnyRole(callCtx, token, policy.RequiredRoles)
				if err != nil {
					cfg.Logger.Error("role check unavailable",
						"method", method, "path", path, "error", err)
					return cfg.reject(ctx, router.StatusUnauthorized, ReasonValidatorUnavailable)
				}
				if !allowed {
					return cfg.reject(ctx, router.StatusForbidden, ReasonInsufficientRole)
				}
			}

			ctx.Locals(cfg.ContextKey, result)

			cfg.Logger.Info("request authorized",
				"method", method,
				"path", path,
				"subject", result.Subject,
			)

			// The original token travels downstream untouched so backend
			// services can re-validate it themselves.
			return ctx.Next()
		}
	}
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Policies == nil {
		panic("GATEWARE: middleware configuration: Policies resolver is required.")
	}
	if cfg.Validator == nil {
		panic("GATEWARE: middleware configuration: Validator is required.")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultValidationTimeout
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = authgate.BearerScheme
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "auth_result"
	}
	if cfg.Logger == nil {
		cfg.Logger = authgate.DefaultLogger()
	}

	cfg.Exclusions = append(append([]string(nil), defaultExclusions...), cfg.Exclusions...)

	return cfg
}

// bearerToken extracts the raw token from the Authorization header. The
// scheme comparison is case-insensitive.
func bearerToken(c router.Context, scheme string) (string, bool) {
	header := c.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return "", false
	}

	l := len(scheme)
	if len(header) <= l+1 || !strings.EqualFold(header[:l], scheme) {
		return "", false
	}

	token := strings.TrimSpace(header[l:])
	if token == "" {
		return "", false
	}
	return token, true
}

func denyReason(kind authgate.FailureKind) string {
	switch kind {
	case authgate.FailureExpired:
		return ReasonTokenExpired
	case authgate.FailureSignatureInvalid:
		return ReasonInvalidSignature
	default:
		return ReasonTokenMalformed
	}
}

// reject writes the rejection body and logs the decision. The token itself
// is never logged.
func (cfg Config) reject(ctx router.Context, status int, reason string) error {
	body := RejectionBody{
		Status:  status,
		Error:   statusText(status),
		Message: localizedMessage(requestLocale(ctx), reason),
		Path:    ctx.Path(),
	}

	cfg.Logger.Info("request rejected",
		"method", ctx.Method(),
		"path", ctx.Path(),
		"status", status,
		"reason", reason,
		"response", print.MaybePrettyJSON(body),
	)

	return ctx.JSON(status, body)
}
