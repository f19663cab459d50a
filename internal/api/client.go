// Package api is the JSON-over-HTTPS client for the Branflu backend. It
// covers only the auth boundary the terminal client needs: OTP send and
// verify, business registration, and login. The backend is an external
// collaborator; this package encodes its wire contract and nothing else.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	pathSendOTP   = "/api/otp/send"
	pathVerifyOTP = "/api/otp/verify"
	pathRegister  = "/api/business/register"
	pathLogin     = "/api/login"
)

// Client talks to one Branflu API origin.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the given API origin, e.g. "https://api.branflu.com".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   http.DefaultClient,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OTPSendResult is what the server returns from a successful OTP send.
// Both fields are optional on the wire; callers fall back to a locally
// computed mask and DefaultCooldown.
type OTPSendResult struct {
	MaskedEmail string `json:"maskedEmail"`
	Cooldown    int    `json:"cooldown"`
}

// SendOTP asks the server to email a one-time passcode.
func (c *Client) SendOTP(ctx context.Context, email string) (*OTPSendResult, error) {
	var out OTPSendResult
	if err := c.postJSON(ctx, pathSendOTP, map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP checks a passcode against the server. Success is conveyed by
// HTTP status alone; the body carries nothing on success.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	return c.postJSON(ctx, pathVerifyOTP, map[string]string{"email": email, "otp": otp}, nil)
}

// RegisterRequest is the business registration payload. The server keys
// the email field "payPalEmail" because payouts run through it.
type RegisterRequest struct {
	Name        string `json:"name"`
	PayPalEmail string `json:"payPalEmail"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	WebsiteURL  string `json:"websiteUrl"`
	Bio         string `json:"bio"`
}

// Register submits a full registration.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.postJSON(ctx, pathRegister, req, nil)
}

// LoginResult carries the post-login destination and the session token the
// server hands back. The token rides on the redirect URL as ?token=, with
// a session cookie as the alternative channel.
type LoginResult struct {
	Redirect string `json:"redirect"`
	Token    string `json:"-"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"payPalEmail": email, "password": password}

	resp, err := c.post(ctx, pathLogin, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var out LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	out.Token = extractToken(resp, out.Redirect)
	return &out, nil
}

// postJSON posts body and decodes a JSON success payload into out when out
// is non-nil. Non-2xx responses come back as *Error.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	c.log.Debug("api request", zap.String("path", path), zap.String("request_id", reqID))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", path, err)
	}
	c.log.Debug("api response",
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode))
	return resp, nil
}

// decodeError reads a failure body. Structured JSON wins; anything else is
// kept verbatim as the message.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if json.Unmarshal(raw, &body) == nil && (body.Code != "" || body.Message != "" || body.Field != "") {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.Field = body.Field
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}

// extractToken pulls the session token from the redirect URL query or,
// failing that, from a session cookie on the response.
func extractToken(resp *http.Response, redirect string) string {
	if redirect != "" {
		if u, err := url.Parse(redirect); err == nil {
			if token := u.Query().Get("token"); token != "" {
				return token
			}
		}
	}
	for _, c := range resp.Cookies() {
		if c.Name == "session" || c.Name == "jwtToken" {
			return c.Value
		}
	}
	return ""
}
