// Package remote is the wire contract for the token validator: the fiber
// handlers the security service exposes, and the HTTP client every other
// service uses to validate tokens without holding the shared secrets.
package remote

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Route paths, shared between server and client.
const (
	LoginRoute           = "/api/auth/login"
	ValidateRoute        = "/api/auth/validate"
	ValidateSubjectRoute = "/api/auth/validate-subject"
	HasAnyRoleRoute      = "/api/auth/has-any-role"
	HealthRoute          = "/healthz"
)

type LoginRequest struct {
	Subject  string `json:"subject"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Subject, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 200)),
	)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ValidateRequest struct {
	Token string `json:"token"`
}

type ValidateSubjectRequest struct {
	Token   string `json:"token"`
	Subject string `json:"subject"`
}

type ValidateSubjectResponse struct {
	Valid bool `json:"valid"`
}

type HasAnyRoleRequest struct {
	Token string   `json:"token"`
	Roles []string `json:"roles"`
}

type HasAnyRoleResponse struct {
	Allowed bool `json:"allowed"`
}

// ErrorResponse mirrors the gateway rejection body so clients see one error
// shape across the edge and the validator service.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}
