package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ChurchPortal/models"
	"github.com/tidwall/gjson"
)

// Credentials identify a password login by exactly one of Email or Phone.
type Credentials struct {
	Email    string
	Phone    string
	Password string
}

func (c Credentials) body() map[string]any {
	body := map[string]any{"password": c.Password}
	if c.Phone != "" {
		body["phone"] = c.Phone
	} else {
		body["email"] = c.Email
	}
	return body
}

// AuthClient is the slice of the hosted backend's auth API this service uses.
type AuthClient interface {
	SignInWithPassword(ctx context.Context, creds Credentials) (*models.Session, error)
	SignUp(ctx context.Context, creds Credentials, metadata map[string]any) (*models.Session, error)
	AuthorizeURL(provider, redirectTo, codeChallenge string) string
	ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Health(ctx context.Context) error
}

// HostedAuthError is a non-2xx answer from the hosted auth API.
type HostedAuthError struct {
	Status  int
	Message string
}

func (e *HostedAuthError) Error() string {
	return fmt.Sprintf("hosted auth returned %d: %s", e.Status, e.Message)
}

type HostedAuthClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func NewHostedAuthClient(baseURL, anonKey string) *HostedAuthClient {
	return &HostedAuthClient{
		baseURL:    strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *HostedAuthClient) SignInWithPassword(ctx context.Context, creds Credentials) (*models.Session, error) {
	raw, err := h.do(ctx, http.MethodPost, "/token?grant_type=password", "", creds.body())
	if err != nil {
		return nil, err
	}
	return parseSession(raw)
}

// SignUp returns a session whose AccessToken is empty when the hosted backend
// requires the address to be confirmed first; UserID is always set.
func (h *HostedAuthClient) SignUp(ctx context.Context, creds Credentials, metadata map[string]any) (*models.Session, error) {
	body := creds.body()
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	raw, err := h.do(ctx, http.MethodPost, "/signup", "", body)
	if err != nil {
		return nil, err
	}
	return parseSession(raw)
}

func (h *HostedAuthClient) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	if codeChallenge != "" {
		q.Set("code_challenge", codeChallenge)
		q.Set("code_challenge_method", "s256")
	}
	return h.baseURL + "/authorize?" + q.Encode()
}

func (h *HostedAuthClient) ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*models.Session, error) {
	raw, err := h.do(ctx, http.MethodPost, "/token?grant_type=pkce", "", map[string]any{
		"auth_code":     authCode,
		"code_verifier": codeVerifier,
	})
	if err != nil {
		return nil, err
	}
	return parseSession(raw)
}

func (h *HostedAuthClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := h.do(ctx, http.MethodPost, "/logout", accessToken, nil)
	return err
}

func (h *HostedAuthClient) Health(ctx context.Context) error {
	_, err := h.do(ctx, http.MethodGet, "/health", "", nil)
	return err
}

func (h *HostedAuthClient) do(ctx context.Context, method, path, bearer string, body map[string]any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode auth request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", h.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hosted auth request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read hosted auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HostedAuthError{Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}
	return raw, nil
}

func errorMessage(raw []byte, fallback string) string {
	for _, key := range []string{"error_description", "msg", "message", "error"} {
		if v := gjson.GetBytes(raw, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return fallback
}

func parseSession(raw []byte) (*models.Session, error) {
	doc := gjson.ParseBytes(raw)

	// Sessions nest the user; a bare sign-up answer is the user itself.
	user := doc.Get("user")
	if !user.Exists() {
		user = doc
	}

	session := &models.Session{
		AccessToken:  doc.Get("access_token").String(),
		RefreshToken: doc.Get("refresh_token").String(),
		ExpiresIn:    int(doc.Get("expires_in").Int()),
		UserID:       user.Get("id").String(),
		Email:        user.Get("email").String(),
		Phone:        user.Get("phone").String(),
	}

	if session.UserID == "" {
		return nil, fmt.Errorf("hosted auth response carried no user id")
	}
	return session, nil
}
