package gateware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// NewFiber is the same authorization filter for apps that mount fiber
// directly, e.g. the edge gateway in front of its reverse proxy. Decision
// order and semantics match New exactly.
func NewFiber(config ...Config) fiber.Handler {
	cfg := getDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		method := c.Method()
		path := c.Path()

		policy := cfg.Policies.Resolve(method, path)
		if policy.Bypass {
			cfg.Logger.Debug("auth bypassed by route policy", "method", method, "path", path)
			return c.Next()
		}

		if isExcluded(path, cfg.Exclusions) {
			cfg.Logger.Debug("auth bypassed by exclusion list", "method", method, "path", path)
			return c.Next()
		}

		token, ok := fiberBearerToken(c, cfg.AuthScheme)
		if !ok {
			return cfg.rejectFiber(c, fiber.StatusUnauthorized, ReasonMissingToken)
		}

		callCtx, cancel := context.WithTimeout(c.UserContext(), cfg.Timeout)
		defer cancel()

		result, err := cfg.Validator.Validate(callCtx, token)
		if err != nil {
			cfg.Logger.Error("token validation unavailable",
				"method", method, "path", path, "error", err)
			return cfg.rejectFiber(c, fiber.StatusUnauthorized, ReasonValidatorUnavailable)
		}

		if !result.Valid {
			return cfg.rejectFiber(c, fiber.StatusUnauthorized, denyReason(result.Failure))
		}

		if len(policy.RequiredRoles) > 0 {
			allowed, err := cfg.Validator.HasAnyRole(callCtx, token, policy.RequiredRoles)
			if err != nil {
				cfg.Logger.Error("role check unavailable",
					"method", method, "path", path, "error", err)
				return cfg.rejectFiber(c, fiber.StatusUnauthorized, ReasonValidatorUnavailable)
			}
			if !allowed {
				return cfg.rejectFiber(c, fiber.StatusForbidden, ReasonInsufficientRole)
			}
		}

		c.Locals(cfg.ContextKey, result)

		cfg.Logger.Info("request authorized",
			"method", method,
			"path", path,
			"subject", result.Subject,
		)

		return c.Next()
	}
}

func fiberBearerToken(c *fiber.Ctx, scheme string) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
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

func (cfg Config) rejectFiber(c *fiber.Ctx, status int, reason string) error {
	locale := fiberLocale(c)
	body := RejectionBody{
		Status:  status,
		Error:   statusText(status),
		Message: localizedMessage(locale, reason),
		Path:    c.Path(),
	}

	cfg.Logger.Info("request rejected",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"reason", reason,
		"response", print.MaybePrettyJSON(body),
	)

	return c.Status(status).JSON(body)
}

func fiberLocale(c *fiber.Ctx) string {
	accept := c.Get(fiber.HeaderAcceptLanguage)
	if accept == "" {
		return DefaultLocale
	}

	primary := strings.TrimSpace(strings.Split(accept, ",")[0])
	if i := strings.IndexAny(primary, "-_;"); i > 0 {
		primary = primary[:i]
	}
	primary = strings.ToLower(primary)

	if _, ok := messageCatalog[primary]; ok {
		return primary
	}
	return DefaultLocale
}
