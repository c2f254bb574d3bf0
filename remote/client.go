package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"

	authgate "github.com/goliatone/go-authgate"
)

// DefaultTimeout bounds every validator call when no client is supplied.
const DefaultTimeout = 5 * time.Second

// Client is the HTTP consumer of the validator service. It satisfies
// authgate.TokenValidator so gateways and backend services plug it in
// wherever a local validator would go. Transport failures come back as
// ErrValidatorUnavailable, distinct from a validation deny.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     authgate.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds every call, regardless of option order. It overrides
// the Timeout of a client supplied via WithHTTPClient.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithClientLogger(logger authgate.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     authgate.DefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

var _ authgate.TokenValidator = (*Client)(nil)

// Validate asks the validator service for the token's terminal state.
func (c *Client) Validate(ctx context.Context, token string) (authgate.Result, error) {
	var result authgate.Result
	if err := c.post(ctx, ValidateRoute, ValidateRequest{Token: token}, &result); err != nil {
		return authgate.Result{Failure: authgate.FailureUnavailable}, err
	}
	return result, nil
}

// ValidateForSubject reports whether the token is valid and bound to subject.
func (c *Client) ValidateForSubject(ctx context.Context, token, subject string) (bool, error) {
	var result ValidateSubjectResponse
	if err := c.post(ctx, ValidateSubjectRoute, ValidateSubjectRequest{Token: token, Subject: subject}, &result); err != nil {
		return false, err
	}
	return result.Valid, nil
}

// HasAnyRole reports whether the token carries any of the required roles.
func (c *Client) HasAnyRole(ctx context.Context, token string, roles []string) (bool, error) {
	var result HasAnyRoleResponse
	if err := c.post(ctx, HasAnyRoleRoute, HasAnyRoleRequest{Token: token, Roles: roles}, &result); err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, subject, password string) (string, error) {
	var result LoginResponse
	if err := c.post(ctx, LoginRoute, LoginRequest{Subject: subject, Password: password}, &result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func (c *Client) post(ctx context.Context, route string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "marshaling request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("validator call failed", "route", route, "error", err)
		return errors.Wrap(err, authgate.ErrValidatorUnavailable.Category, authgate.ErrValidatorUnavailable.Message).
			WithTextCode(authgate.ErrValidatorUnavailable.TextCode)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "decoding response")
		}
	}

	return nil
}

func parseErrorResponse(resp *http.Response) error {
	var errResp ErrorResponse
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New(
			fmt.Sprintf("validator returned status %d with unreadable body", resp.StatusCode),
			errors.CategoryOperation,
		)
	}

	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.New(errResp.Message, errors.CategoryAuth).
				WithTextCode(authgate.TextCodeInvalidCredentials).
				WithCode(errors.CodeUnauthorized)
		}
		return errors.New(errResp.Message, errors.CategoryOperation)
	}

	return errors.New(
		fmt.Sprintf("validator returned status %d", resp.StatusCode),
		errors.CategoryOperation,
	)
}
