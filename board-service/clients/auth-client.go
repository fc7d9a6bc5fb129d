package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
)

// AuthClient talks to the authentication service over HTTP. Every call goes
// through a circuit breaker so a dead auth service fails fast instead of
// stalling logins.
type AuthClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// AuthUser is the profile shape the auth service returns.
type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// APIError is a non-2xx reply from the auth service. It keeps the upstream
// status so callers can tell a credential rejection from a conflict or an
// outage instead of collapsing them all into one code.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func NewAuthClient(baseURL string, client *http.Client, breaker *gobreaker.CircuitBreaker) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		client:  client,
		breaker: breaker,
	}
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Register creates an account and returns the new profile.
func (c *AuthClient) Register(username, password string) (AuthUser, error) {
	var out struct {
		User AuthUser `json:"user"`
	}
	err := c.do(http.MethodPost, "/api/auth/register", credentialsPayload{username, password}, "", http.StatusCreated, &out)
	return out.User, err
}

// Login exchanges credentials for a bearer token.
func (c *AuthClient) Login(username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/auth/login", credentialsPayload{username, password}, "", http.StatusOK, &out)
	return out.Token, err
}

// Me fetches the profile behind a bearer token.
func (c *AuthClient) Me(token string) (AuthUser, error) {
	var out struct {
		User AuthUser `json:"user"`
	}
	err := c.do(http.MethodGet, "/api/auth/me", nil, token, http.StatusOK, &out)
	return out.User, err
}

func (c *AuthClient) do(method, path string, body any, token string, wantStatus int, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		reqBody := &bytes.Buffer{}
		if body != nil {
			if err := json.NewEncoder(reqBody).Encode(body); err != nil {
				return nil, fmt.Errorf("failed to encode request: %w", err)
			}
		}

		req, err := http.NewRequest(method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("auth service unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != wantStatus {
			// Surface the collaborator's error message verbatim, with a
			// generic fallback when the payload is absent.
			apiErr := &APIError{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("auth service returned status %d", resp.StatusCode),
			}
			var payload errorPayload
			if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil && payload.Error != "" {
				apiErr.Message = payload.Error
			}
			return nil, apiErr
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}
