package remote_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authgate "github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/remote"
)

func testSigningSecret() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func testEncryptionSecret() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef01234567"))
}

type staticProvider struct {
	record *authgate.IdentityRecord
	err    error
}

func (p *staticProvider) FindIdentityBySubject(ctx context.Context, subject string) (*authgate.IdentityRecord, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.record != nil && p.record.Subject == subject {
		return p.record, nil
	}
	return nil, authgate.ErrIdentityNotFound
}

type serverFixture struct {
	app       *fiber.App
	issuer    *authgate.Issuer
	validator *authgate.Validator
}

func newServerFixture(t *testing.T, provider authgate.IdentityProvider) *serverFixture {
	t.Helper()

	signer, err := authgate.NewClaimsSigner(testSigningSecret())
	require.NoError(t, err)
	codec, err := authgate.NewTokenCodec(testEncryptionSecret())
	require.NoError(t, err)

	issuer := authgate.NewIssuer(signer, codec, "test-issuer", time.Hour)
	validator := authgate.NewValidator(codec, signer)

	store := authgate.NewFallbackIdentityStore(provider, authgate.IdentityRecord{})
	auther := authgate.NewAuthenticator(store, issuer)

	app := fiber.New()
	remote.NewServer(auther, validator).Register(app)

	return &serverFixture{app: app, issuer: issuer, validator: validator}
}

func postJSON(t *testing.T, app *fiber.App, route string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, route, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	return resp, decoded
}

func TestServer_Health(t *testing.T) {
	fixture := newServerFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, remote.HealthRoute, nil)
	resp, err := fixture.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestServer_Login(t *testing.T) {
	password := "login-password-123"
	hash, err := authgate.HashPassword(password)
	require.NoError(t, err)

	provider := &staticProvider{record: &authgate.IdentityRecord{
		Subject:      "alice",
		PasswordHash: hash,
		Roles:        []string{"USER", "ADMIN"},
	}}

	fixture := newServerFixture(t, provider)

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		resp, body := postJSON(t, fixture.app, remote.LoginRoute, remote.LoginRequest{
			Subject:  "alice",
			Password: password,
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		token, _ := body["token"].(string)
		require.NotEmpty(t, token)

		result, err := fixture.validator.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, "alice", result.Subject)
	})

	t.Run("rejects bad credentials with 401", func(t *testing.T) {
		resp, body := postJSON(t, fixture.app, remote.LoginRoute, remote.LoginRequest{
			Subject:  "alice",
			Password: "wrong",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, float64(fiber.StatusUnauthorized), body["status"])
		assert.Equal(t, remote.LoginRoute, body["path"])
		assert.NotEmpty(t, body["message"])
	})

	t.Run("rejects unknown subjects with 401", func(t *testing.T) {
		resp, _ := postJSON(t, fixture.app, remote.LoginRoute, remote.LoginRequest{
			Subject:  "ghost",
			Password: password,
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects an empty payload with 400", func(t *testing.T) {
		resp, _ := postJSON(t, fixture.app, remote.LoginRoute, remote.LoginRequest{})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_Validate(t *testing.T) {
	fixture := newServerFixture(t, nil)

	token, err := fixture.issuer.Issue("alice", []string{"ADMIN"})
	require.NoError(t, err)

	t.Run("answers valid for a good token", func(t *testing.T) {
		resp, body := postJSON(t, fixture.app, remote.ValidateRoute, remote.ValidateRequest{Token: token})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, "alice", body["subject"])
	})

	t.Run("answers the failure kind for a bad token", func(t *testing.T) {
		resp, body := postJSON(t, fixture.app, remote.ValidateRoute, remote.ValidateRequest{Token: "garbage"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEqual(t, true, body["valid"])
		assert.Equal(t, string(authgate.FailureMalformed), body["failure_kind"])
	})

	t.Run("validates subject binding", func(t *testing.T) {
		resp, body := postJSON(t, fixture.app, remote.ValidateSubjectRoute, remote.ValidateSubjectRequest{
			Token:   token,
			Subject: "alice",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["valid"])

		resp, body = postJSON(t, fixture.app, remote.ValidateSubjectRoute, remote.ValidateSubjectRequest{
			Token:   token,
			Subject: "bob",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEqual(t, true, body["valid"])
	})

	t.Run("answers role checks", func(t *testing.T) {
		resp, body := postJSON(t, fixture.app, remote.HasAnyRoleRoute, remote.HasAnyRoleRequest{
			Token: token,
			Roles: []string{"ADMIN", "SUPERADMIN"},
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["allowed"])

		resp, body = postJSON(t, fixture.app, remote.HasAnyRoleRoute, remote.HasAnyRoleRequest{
			Token: token,
			Roles: []string{"SUPERADMIN"},
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEqual(t, true, body["allowed"])
	})
}
