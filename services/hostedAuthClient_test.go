package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T, handler http.HandlerFunc) *HostedAuthClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHostedAuthClient(server.URL+"/", "anon-key")
}

func TestHostedAuthClient_SignInWithPassword(t *testing.T) {
	var got map[string]any
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,"user":{"id":"u-1","email":"jane@example.com"}}`))
	})

	session, err := client.SignInWithPassword(context.Background(), Credentials{Email: "jane@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.Equal(t, "u-1", session.UserID)
	assert.Equal(t, "jane@example.com", session.Email)
	assert.Equal(t, "jane@example.com", got["email"])
	assert.NotContains(t, got, "phone")
}

func TestHostedAuthClient_SignUpWithoutSession(t *testing.T) {
	var got map[string]any
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"u-2","phone":"+15550100"}`))
	})

	session, err := client.SignUp(context.Background(),
		Credentials{Phone: "+15550100", Password: "secret"},
		map[string]any{"name": "Sam"})
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.Equal(t, "u-2", session.UserID)
	assert.Equal(t, "+15550100", session.Phone)
	assert.Equal(t, "+15550100", got["phone"])
	assert.Equal(t, map[string]any{"name": "Sam"}, got["data"])
}

func TestHostedAuthClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"error description", http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, "Invalid login credentials"},
		{"msg field", http.StatusUnprocessableEntity, `{"msg":"User already registered"}`, "User already registered"},
		{"no body", http.StatusInternalServerError, ``, "500 Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.SignInWithPassword(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
			var hostedErr *HostedAuthError
			require.True(t, errors.As(err, &hostedErr))
			assert.Equal(t, tt.status, hostedErr.Status)
			assert.Equal(t, tt.expected, hostedErr.Message)
		})
	}
}

func TestHostedAuthClient_MissingUserID(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"at"}`))
	})

	_, err := client.SignInWithPassword(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	assert.Error(t, err)
}

func TestHostedAuthClient_ExchangeCode(t *testing.T) {
	var got map[string]any
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"access_token":"at","user":{"id":"u-3","email":"g@example.com"}}`))
	})

	session, err := client.ExchangeCode(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "u-3", session.UserID)
	assert.Equal(t, "code-1", got["auth_code"])
	assert.Equal(t, "verifier-1", got["code_verifier"])
}

func TestHostedAuthClient_SignOutSendsBearer(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.SignOut(context.Background(), "at"))
}

func TestHostedAuthClient_AuthorizeURL(t *testing.T) {
	client := NewHostedAuthClient("https://auth.example", "anon-key")

	raw := client.AuthorizeURL("google", "https://church.example/auth/callback", "challenge")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/auth/v1/authorize", parsed.Path)
	q := parsed.Query()
	assert.Equal(t, "google", q.Get("provider"))
	assert.Equal(t, "https://church.example/auth/callback", q.Get("redirect_to"))
	assert.Equal(t, "challenge", q.Get("code_challenge"))
	assert.Equal(t, "s256", q.Get("code_challenge_method"))
}
