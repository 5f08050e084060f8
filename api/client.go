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

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	adminauth "github.com/tatyanamixx/nebulahunt-admin-sub001"
)

// Config defines a public type used by api APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	UserAgent      string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
}

// Client implements [adminauth.Backend] over HTTP.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	http      *http.Client
	log       zerolog.Logger
}

// Backend interface conformance is part of the package contract.
var _ adminauth.Backend = (*Client)(nil)

// NewClient creates a backend client for the given admin API deployment.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("BaseURL required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "nebulahunt-admin"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   cfg.RequestTimeout,
		userAgent: cfg.UserAgent,
		http:      httpClient,
		log:       cfg.Logger,
	}, nil
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e errorBody) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// rejectFunc maps a non-2xx answer that is neither a 5xx nor unauthenticated
// noise into the endpoint's own rejection sentinel.
type rejectFunc func(status int, body errorBody) error

// do executes one JSON round trip. out may be nil for confirmation-only endpoints.
func (c *Client) do(
	ctx context.Context,
	method, path, accessToken string,
	in, out any,
	reject rejectFunc,
) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", adminauth.ErrValidation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", adminauth.ErrValidation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Str("path", path).Err(err).Msg("api: request failed")
		return fmt.Errorf("%w: %v", adminauth.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", adminauth.ErrServerUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: backend answered %d", adminauth.ErrServerUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		var envelope errorBody
		_ = json.Unmarshal(payload, &envelope)
		if reject != nil {
			if mapped := reject(resp.StatusCode, envelope); mapped != nil {
				return mapped
			}
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return wrap(adminauth.ErrUnauthorized, envelope)
		}
		return fmt.Errorf("backend rejected request (%d): %s", resp.StatusCode, envelope.text())
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			// A 2xx with a non-JSON body is a broken proxy or captive portal,
			// not a usable answer.
			return fmt.Errorf("%w: malformed response: %v", adminauth.ErrServerUnavailable, err)
		}
	}
	return nil
}

func wrap(sentinel error, envelope errorBody) error {
	if text := envelope.text(); text != "" {
		return fmt.Errorf("%w: %s", sentinel, text)
	}
	return sentinel
}
