package gatewayauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Client calls the gateway from the console. The bearer credential is
// injected by an oauth2 transport so call sites never touch headers.
type Client struct {
	base string
	http *http.Client
}

// NewClient wraps baseURL with a bearer-injecting HTTP client built
// from the token source.
func NewClient(ctx context.Context, baseURL string, src oauth2.TokenSource) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: oauth2.NewClient(ctx, src),
	}
}

// StaticToken builds a token source for an already-minted admin token.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// MintUserToken asks the gateway for a sign-in token on behalf of a
// user, for support flows driven from the console.
func (c *Client) MintUserToken(ctx context.Context, email string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.post(ctx, "/api/auth/login", loginRequest{Email: email}, &resp)
	return resp, err
}

// Me fetches the verified operator identity.
func (c *Client) Me(ctx context.Context) (string, error) {
	var resp adminMeResponse
	if err := c.get(ctx, "/api/auth/admin/me", &resp); err != nil {
		return "", err
	}
	return resp.Email, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope errorResponse
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("gateway: %s (status %d)", envelope.Error, resp.StatusCode)
		}
		return fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
