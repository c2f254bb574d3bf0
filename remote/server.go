package remote

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	authgate "github.com/goliatone/go-authgate"
)

// Server exposes the token validator and the login endpoint over HTTP. It
// is the only process that holds the signing and encryption secrets; every
// other service validates through it.
type Server struct {
	auther    *authgate.Auther
	validator *authgate.Validator
	logger    authgate.Logger
}

type ServerOption func(*Server)

func WithServerLogger(logger authgate.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(auther *authgate.Auther, validator *authgate.Validator, opts ...ServerOption) *Server {
	s := &Server{
		auther:    auther,
		validator: validator,
		logger:    authgate.DefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register mounts the routes on a fiber app.
func (s *Server) Register(app *fiber.App) {
	app.Get(HealthRoute, s.handleHealth)
	app.Post(LoginRoute, s.handleLogin)
	app.Post(ValidateRoute, s.handleValidate)
	app.Post(ValidateSubjectRoute, s.handleValidateSubject)
	app.Post(HasAnyRoleRoute, s.handleHasAnyRole)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var payload LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return s.errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return s.errorResponse(c, http.StatusBadRequest, err.Error())
	}

	token, err := s.auther.Login(c.UserContext(), payload.Subject, payload.Password)
	if err != nil {
		s.logger.Info("login rejected", "subject", payload.Subject, "error", err)

		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryAuth {
			return s.errorResponse(c, http.StatusUnauthorized, richErr.Message)
		}
		return s.errorResponse(c, http.StatusInternalServerError, "login failed")
	}

	return c.JSON(LoginResponse{Token: token})
}

func (s *Server) handleValidate(c *fiber.Ctx) error {
	var payload ValidateRequest
	if err := c.BodyParser(&payload); err != nil {
		return s.errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := s.validator.Validate(c.UserContext(), payload.Token)
	if err != nil {
		return s.errorResponse(c, http.StatusInternalServerError, "validation failed")
	}

	return c.JSON(result)
}

func (s *Server) handleValidateSubject(c *fiber.Ctx) error {
	var payload ValidateSubjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return s.errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	valid, err := s.validator.ValidateForSubject(c.UserContext(), payload.Token, payload.Subject)
	if err != nil {
		return s.errorResponse(c, http.StatusInternalServerError, "validation failed")
	}

	return c.JSON(ValidateSubjectResponse{Valid: valid})
}

func (s *Server) handleHasAnyRole(c *fiber.Ctx) error {
	var payload HasAnyRoleRequest
	if err := c.BodyParser(&payload); err != nil {
		return s.errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	allowed, err := s.validator.HasAnyRole(c.UserContext(), payload.Token, payload.Roles)
	if err != nil {
		return s.errorResponse(c, http.StatusInternalServerError, "validation failed")
	}

	return c.JSON(HasAnyRoleResponse{Allowed: allowed})
}

func (s *Server) errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
		Path:    c.Path(),
	})
}
