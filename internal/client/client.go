package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edulegit-bridge/pkg/config"
)

const initAssignmentPath = "/init-moodle-assignment"

// Observer receives timing for outbound EduLegit calls.
type Observer interface {
	ObserveRemoteCall(method, path string, status int, duration time.Duration)
}

// Client issues signed requests against the EduLegit API.
type Client struct {
	baseURL    string
	apiToken   string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
	observer   Observer
}

// New builds a client from the EduLegit config section. Certificate
// verification stays enabled unless the insecure debug flag is set.
func New(cfg config.EduLegitConfig, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 7 * time.Second
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		apiToken:  cfg.APIToken,
		userAgent: "Mozilla/5.0 EduLegit bridge/" + cfg.PluginVersion,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
			// Redirects are followed with the default policy.
		},
		logger:   logger,
		observer: observer,
	}
}

// InitAssignment registers a submission with EduLegit. Non-2xx responses are
// returned to the caller for inspection, not treated as errors.
func (c *Client) InitAssignment(ctx context.Context, body interface{}) *Response {
	return c.fetch(ctx, http.MethodPost, initAssignmentPath, body)
}

func (c *Client) fetch(ctx context.Context, method, path string, body interface{}) *Response {
	requestURL := c.buildURL(path)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Response{TransportErr: "encode request body: " + err.Error(), URL: requestURL}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return &Response{TransportErr: "build request: " + err.Error(), URL: requestURL}
	}
	req.Header.Set("X-API-TOKEN", c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("edulegit request failed",
			zap.String("url", requestURL),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		if c.observer != nil {
			c.observer.ObserveRemoteCall(method, path, 0, duration)
		}
		return &Response{TransportErr: err.Error(), URL: requestURL}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)

	if c.observer != nil {
		c.observer.ObserveRemoteCall(method, path, resp.StatusCode, duration)
	}
	c.logger.Debug("edulegit request",
		zap.String("url", requestURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	result := &Response{
		Body:       string(raw),
		StatusCode: resp.StatusCode,
		URL:        requestURL,
	}
	if readErr != nil {
		result.TransportErr = "read response body: " + readErr.Error()
	}
	return result
}

// buildURL joins the base URL and sub-path, keeping already-valid absolute
// URLs intact while encoding anything unsafe.
func (c *Client) buildURL(path string) string {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + path
	}
	joined := parsed.JoinPath(path)
	return joined.String()
}
