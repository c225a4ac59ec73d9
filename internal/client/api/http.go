package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lifeweeks/internal/common"
	"lifeweeks/internal/snapshot"
)

// HTTPClient implements Client over the server's JSON REST API. A 401
// carrying the token-expired marker triggers one transparent refresh and
// retry, mirroring what an interceptor would do.
type HTTPClient struct {
	baseURL      string
	hc           *http.Client
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type putDocumentRequest struct {
	Payload     *snapshot.Snapshot `json:"payload"`
	BaseVersion int64              `json:"baseVersion"`
	Force       bool               `json:"force"`
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/register",
		credentialsRequest{Username: username, Password: password}, nil, false)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	var tokens tokenPairResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login",
		credentialsRequest{Username: username, Password: password}, &tokens, false)
	if err != nil {
		return err
	}
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	return nil
}

func (c *HTTPClient) Logout() {
	c.accessToken = ""
	c.refreshToken = ""
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/ping", nil, &resp, false); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) GetDocument(ctx context.Context) (*snapshot.Document, error) {
	var doc snapshot.Document
	err := c.doJSON(ctx, http.MethodGet, "/api/document", nil, &doc, true)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoRemote
		}
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) PutDocument(ctx context.Context, payload *snapshot.Snapshot, baseVersion int64, force bool) (*snapshot.Document, error) {
	var doc snapshot.Document
	req := putDocumentRequest{Payload: payload, BaseVersion: baseVersion, Force: force}
	if err := c.doJSON(ctx, http.MethodPut, "/api/document", req, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

// statusError carries the HTTP status alongside the server's message so the
// caller can map it to a sentinel.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.msg)
}

// doJSON performs one request, refreshing the token pair and retrying once
// if the server reports an expired access token.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, out any, authed bool) error {
	err := c.doOnce(ctx, method, path, body, out, authed)
	if err == nil {
		return nil
	}

	var se *statusError
	if authed && errors.As(err, &se) &&
		se.code == http.StatusUnauthorized &&
		strings.Contains(se.msg, common.ErrTokenExpired.Error()) &&
		c.refreshToken != "" {
		if rerr := c.refresh(ctx); rerr != nil {
			return c.mapError(err)
		}
		err = c.doOnce(ctx, method, path, body, out, authed)
	}

	return c.mapError(err)
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	var tokens tokenPairResponse
	err := c.doOnce(ctx, http.MethodPost, "/api/refresh",
		refreshRequest{RefreshToken: c.refreshToken}, &tokens, false)
	if err != nil {
		return err
	}
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	return nil
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body any, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, msg: strings.TrimSpace(string(msg))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// mapError converts transport failures into the sentinels the sync engine
// keys on.
func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, se.msg)
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrVersionConflict
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, se.msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnavailable, se.msg)
	}
}
