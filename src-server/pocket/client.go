// Package pocket talks to the Pocket v3 API. Every call is a single POST
// with a JSON body; only HTTP 200 counts as success.
package pocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://getpocket.com"

type Client struct {
	consumerKey string
	baseURL     string
	httpClient  *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(consumerKey string, opts ...Option) *Client {
	c := &Client{
		consumerKey: consumerKey,
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken is the result of a successful authorization.
type AccessToken struct {
	Token    string
	Username string
}

// ObtainRequestToken starts a login. redirectURI is where Pocket sends the
// user after approval; state is echoed back by Pocket.
func (c *Client) ObtainRequestToken(ctx context.Context, redirectURI, state string) (string, error) {
	var respBody struct {
		Code string `json:"code"`
	}
	status, err := c.post(ctx, "/v3/oauth/request", map[string]any{
		"consumer_key": c.consumerKey,
		"redirect_uri": redirectURI,
		"state":        state,
	}, &respBody)
	switch {
	case err != nil && status == 0:
		return "", &AuthError{Code: CodeUnreachable, Err: err}
	case status != http.StatusOK:
		slog.Warn("unexpected status obtaining request token", "status", status)
		return "", &AuthError{Code: status}
	case err != nil:
		slog.Warn("can't decode request token response", "error", err)
		return "", &AuthError{Code: CodeMissingField, Err: err}
	case respBody.Code == "":
		slog.Warn("no request token found in response")
		return "", &AuthError{Code: CodeMissingField}
	}
	return respBody.Code, nil
}

// Authorize exchanges an approved request token for an access token.
func (c *Client) Authorize(ctx context.Context, requestToken string) (AccessToken, error) {
	var respBody struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
	}
	status, err := c.post(ctx, "/v3/oauth/authorize", map[string]any{
		"consumer_key": c.consumerKey,
		"code":         requestToken,
	}, &respBody)
	switch {
	case err != nil && status == 0:
		return AccessToken{}, &AuthError{Code: CodeUnreachable, Err: err}
	case status != http.StatusOK:
		slog.Warn("unexpected status obtaining access token", "status", status)
		return AccessToken{}, &AuthError{Code: status}
	case err != nil:
		slog.Warn("can't decode access token response", "error", err)
		return AccessToken{}, &AuthError{Code: CodeMissingField, Err: err}
	case respBody.AccessToken == "":
		slog.Warn("no access token found in response")
		return AccessToken{}, &AuthError{Code: CodeMissingField}
	}
	return AccessToken{Token: respBody.AccessToken, Username: respBody.Username}, nil
}

// Retrieve lists the user's saved items.
func (c *Client) Retrieve(ctx context.Context, accessToken string) ([]Item, error) {
	var respBody struct {
		List *itemList `json:"list"`
	}
	status, err := c.post(ctx, "/v3/get", map[string]any{
		"consumer_key": c.consumerKey,
		"access_token": accessToken,
		"detailType":   "simple",
	}, &respBody)
	switch {
	case err != nil && status == 0:
		return nil, &FetchError{Op: "get", Err: err}
	case status != http.StatusOK:
		return nil, &FetchError{Op: "get", Code: status}
	case err != nil:
		return nil, &FetchError{Op: "get", Code: status, Err: err}
	case respBody.List == nil:
		return nil, &FetchError{Op: "get", Code: CodeMissingField, Err: errors.New("no list in response")}
	}
	return *respBody.List, nil
}

// Archive moves one item to the archive.
func (c *Client) Archive(ctx context.Context, accessToken, itemID string) error {
	status, err := c.post(ctx, "/v3/send", map[string]any{
		"consumer_key": c.consumerKey,
		"access_token": accessToken,
		"actions": []map[string]string{
			{"action": "archive", "item_id": itemID},
		},
	}, nil)
	switch {
	case err != nil && status == 0:
		return &FetchError{Op: "archive", Err: err}
	case status != http.StatusOK:
		return &FetchError{Op: "archive", Code: status}
	}
	return nil
}

// AuthorizeURL is the page the user visits to approve the request token.
func (c *Client) AuthorizeURL(requestToken, redirectURI string) string {
	query := url.Values{}
	query.Set("request_token", requestToken)
	query.Set("redirect_uri", redirectURI)
	return c.baseURL + "/auth/authorize?" + query.Encode()
}

// post returns the HTTP status, or 0 when no response arrived. result is
// only decoded on a 200.
func (c *Client) post(ctx context.Context, path string, reqBody any, result any) (int, error) {
	reqBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("post: can't marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("post: can't create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("post: can't read body: %w", err)
	}
	if result == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return resp.StatusCode, fmt.Errorf("post: can't unmarshal response: %w", err)
	}
	return resp.StatusCode, nil
}
