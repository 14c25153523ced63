package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) sessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) setSessionToken(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

// do sends body as JSON and decodes a 2xx response into out when out is
// non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.sessionToken(); t != "" {
		req.Header.Set("Authorization", common.BearerPrefix+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) mapError(resp *http.Response) error {
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error, Fields: body.Fields}
}

func (c *HTTPClient) Signup(ctx context.Context, r SignupRequest) (*Account, error) {
	var resp struct {
		Account Account `json:"account"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", r, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

func (c *HTTPClient) SendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/send-otp", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/resend-otp", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) (*Account, error) {
	var a Account
	err := c.do(ctx, http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": email, "otp": otp}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Login authenticates and keeps the session token for later calls.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*Account, error) {
	var resp struct {
		Token   string  `json:"token"`
		Account Account `json:"account"`
	}
	req := map[string]string{"email": email, "password": string(password)}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}

	c.setSessionToken(resp.Token)
	return &resp.Account, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email, mode string) error {
	req := map[string]string{"email": email}
	if mode != "" {
		req["mode"] = mode
	}
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", req, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, otp string, newPassword []byte) error {
	req := map[string]string{"email": email, "otp": otp, "newPassword": string(newPassword)}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", req, nil)
}

func (c *HTTPClient) ResetPasswordWithToken(ctx context.Context, token string, newPassword []byte) error {
	req := map[string]string{"token": token, "newPassword": string(newPassword)}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", req, nil)
}

// Me returns the logged-in account. Without a session it returns
// ErrNotLoggedIn without calling the server.
func (c *HTTPClient) Me(ctx context.Context) (*Account, error) {
	if c.sessionToken() == "" {
		return nil, ErrNotLoggedIn
	}

	var a Account
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Logout forgets the session token.
func (c *HTTPClient) Logout() {
	c.setSessionToken("")
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}
