package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authgate "github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/remote"
)

func newValidatorStub(t *testing.T, result authgate.Result) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(remote.ValidateRoute, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	})
	mux.HandleFunc(remote.ValidateSubjectRoute, func(w http.ResponseWriter, r *http.Request) {
		var payload remote.ValidateSubjectRequest
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_ = json.NewEncoder(w).Encode(remote.ValidateSubjectResponse{
			Valid: result.Valid && result.Subject == payload.Subject,
		})
	})
	mux.HandleFunc(remote.HasAnyRoleRoute, func(w http.ResponseWriter, r *http.Request) {
		var payload remote.HasAnyRoleRequest
		_ = json.NewDecoder(r.Body).Decode(&payload)
		allowed := false
		for _, want := range payload.Roles {
			for _, have := range result.Roles {
				if want == have {
					allowed = true
				}
			}
		}
		_ = json.NewEncoder(w).Encode(remote.HasAnyRoleResponse{Allowed: allowed})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the validation result", func(t *testing.T) {
		server := newValidatorStub(t, authgate.Result{
			Valid:   true,
			Subject: "alice",
			Roles:   []string{"USER", "ADMIN"},
		})

		client := remote.NewClient(server.URL)
		result, err := client.Validate(ctx, "some-token")
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, "alice", result.Subject)
		assert.Equal(t, []string{"USER", "ADMIN"}, result.Roles)
	})

	t.Run("returns the failure kind for a denied token", func(t *testing.T) {
		server := newValidatorStub(t, authgate.Result{Failure: authgate.FailureExpired})

		client := remote.NewClient(server.URL)
		result, err := client.Validate(ctx, "stale-token")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, authgate.FailureExpired, result.Failure)
	})

	t.Run("reports unavailable on transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := remote.NewClient(url)
		result, err := client.Validate(ctx, "some-token")
		assert.Error(t, err)
		assert.True(t, authgate.IsValidatorUnavailableError(err))
		assert.False(t, result.Valid)
		assert.Equal(t, authgate.FailureUnavailable, result.Failure)
	})

	t.Run("honors the call timeout", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(slow.Close)

		client := remote.NewClient(slow.URL, remote.WithTimeout(50*time.Millisecond))
		_, err := client.Validate(ctx, "some-token")
		assert.Error(t, err)
		assert.True(t, authgate.IsValidatorUnavailableError(err))
	})

	t.Run("honors the timeout regardless of option order", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(slow.Close)

		client := remote.NewClient(slow.URL,
			remote.WithTimeout(50*time.Millisecond),
			remote.WithHTTPClient(&http.Client{}),
		)
		_, err := client.Validate(ctx, "some-token")
		assert.Error(t, err)
		assert.True(t, authgate.IsValidatorUnavailableError(err))
	})
}

func TestClient_SubjectAndRoles(t *testing.T) {
	ctx := context.Background()
	server := newValidatorStub(t, authgate.Result{
		Valid:   true,
		Subject: "alice",
		Roles:   []string{"ADMIN"},
	})
	client := remote.NewClient(server.URL)

	t.Run("validates subject binding", func(t *testing.T) {
		ok, err := client.ValidateForSubject(ctx, "token", "alice")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = client.ValidateForSubject(ctx, "token", "bob")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("answers role checks", func(t *testing.T) {
		ok, err := client.HasAnyRole(ctx, "token", []string{"ADMIN", "SUPERADMIN"})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = client.HasAnyRole(ctx, "token", []string{"SUPERADMIN"})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the issued token", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc(remote.LoginRoute, func(w http.ResponseWriter, r *http.Request) {
			var payload remote.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&payload)
			if payload.Subject == "alice" && payload.Password == "secret" {
				_ = json.NewEncoder(w).Encode(remote.LoginResponse{Token: "Bearer issued-token"})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(remote.ErrorResponse{
				Status:  http.StatusUnauthorized,
				Error:   "Unauthorized",
				Message: "invalid credentials",
				Path:    remote.LoginRoute,
			})
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		client := remote.NewClient(server.URL)

		token, err := client.Login(ctx, "alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, "Bearer issued-token", token)

		token, err = client.Login(ctx, "alice", "wrong")
		assert.Empty(t, token)
		assert.Error(t, err)
	})
}
