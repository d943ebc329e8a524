package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
)

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	// OnTokens is called after a successful refresh with the new pair.
	OnTokens func(accessToken, refreshToken string)
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var res api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &res, false); err != nil {
		return err
	}
	if res.Status != "ok" {
		return common.ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (api.RegisterResponse, error) {
	var res api.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", api.RegisterRequest{Username: username, Password: password}, &res, false)
	return res, err
}

// Login authenticates and keeps the returned tokens for later requests.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (api.LoginResponse, error) {
	var res api.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", api.LoginRequest{Username: username, Password: password}, &res, false); err != nil {
		return res, err
	}
	c.SetTokens(res.AccessToken, res.RefreshToken)
	return res, nil
}

func (c *HTTPClient) ListEntries(ctx context.Context, userID string) ([]api.Entry, error) {
	var res []api.Entry
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/entries", nil, &res, true)
	return res, err
}

func (c *HTTPClient) CreateEntry(ctx context.Context, req api.CreateEntryRequest) (api.Entry, error) {
	var res api.Entry
	err := c.do(ctx, http.MethodPost, "/entries", req, &res, true)
	return res, err
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, entryID string, req api.UpdateEntryRequest) (api.Entry, error) {
	var res api.Entry
	err := c.do(ctx, http.MethodPatch, "/entries/"+url.PathEscape(entryID), req, &res, true)
	return res, err
}

func (c *HTTPClient) ListTags(ctx context.Context, userID string) ([]api.Tag, error) {
	var res []api.Tag
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/tags", nil, &res, true)
	return res, err
}

func (c *HTTPClient) Export(ctx context.Context, userID string) (api.ExportResponse, error) {
	var res api.ExportResponse
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/export", nil, &res, true)
	return res, err
}

func (c *HTTPClient) VerifyCode(ctx context.Context, code string) (bool, error) {
	var res api.VerifyCodeResponse
	if err := c.do(ctx, http.MethodGet, "/api/groups/verify/"+url.PathEscape(code), nil, &res, true); err != nil {
		return false, err
	}
	return res.IsAvailable, nil
}

func (c *HTTPClient) CreateGroup(ctx context.Context, userID string, req api.CreateGroupRequest) (api.Group, error) {
	var res api.Group
	err := c.do(ctx, http.MethodPost, "/groups/"+url.PathEscape(userID), req, &res, true)
	return res, err
}

func (c *HTTPClient) JoinGroup(ctx context.Context, codeOrID, userID string) (api.Group, error) {
	var res api.Group
	err := c.do(ctx, http.MethodPut, "/groups/"+url.PathEscape(codeOrID)+"/"+url.PathEscape(userID), nil, &res, true)
	return res, err
}

func (c *HTTPClient) ListGroups(ctx context.Context, userID string) ([]api.Group, error) {
	var res []api.Group
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/groups", nil, &res, true)
	return res, err
}

func (c *HTTPClient) GroupEntries(ctx context.Context, groupID string) ([]api.Entry, error) {
	var res []api.Entry
	err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(groupID)+"/entries", nil, &res, true)
	return res, err
}

func (c *HTTPClient) TogglePrivacy(ctx context.Context, groupID, entryID, userID string) (api.Entry, error) {
	var res api.Entry
	path := "/groups/" + url.PathEscape(groupID) + "/entries/" + url.PathEscape(entryID) + "/toggle-privacy"
	err := c.do(ctx, http.MethodPatch, path, api.TogglePrivacyRequest{UserID: userID}, &res, true)
	return res, err
}

func (c *HTTPClient) React(ctx context.Context, groupID, entryID, kind string) (api.Entry, error) {
	var res api.Entry
	path := "/groups/" + url.PathEscape(groupID) + "/entries/" + url.PathEscape(entryID) + "/reactions"
	err := c.do(ctx, http.MethodPost, path, api.ReactionRequest{ReactionKind: kind}, &res, true)
	return res, err
}

// do sends one JSON request. With auth set, an expired access token is
// refreshed once and the request repeated.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = b
	}

	err := c.send(ctx, method, path, body, out, auth)
	if !auth || !errors.Is(err, common.ErrTokenExpired) {
		return err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return rerr
	}
	return c.send(ctx, method, path, body, out, auth)
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refreshToken := c.tokens()
	if refreshToken == "" {
		return common.ErrorUnauthorized
	}

	b, err := json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	var res api.LoginResponse
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", b, &res, false); err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	c.SetTokens(res.AccessToken, res.RefreshToken)
	if c.OnTokens != nil {
		c.OnTokens(res.AccessToken, res.RefreshToken)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body []byte, out any, auth bool) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		accessToken, _ := c.tokens()
		if accessToken == "" {
			return common.ErrorUnauthorized
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, resp.Status)
	}

	var envelope api.ErrorResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(b, &envelope); err != nil || envelope.Code == "" {
		return fmt.Errorf("%w: %s", errorForStatus(resp.StatusCode), resp.Status)
	}
	return fmt.Errorf("%w: %s", common.ErrorForCode(envelope.Code), envelope.Error)
}

// errorForStatus is used when the body carries no error code, e.g. from a
// proxy in front of the server.
func errorForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	default:
		return common.ErrorInternal
	}
}

var _ Client = (*HTTPClient)(nil)
