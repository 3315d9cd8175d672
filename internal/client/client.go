// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

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
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// API selects the analysis endpoint and its envelope.
type API int

const (
	// APILegacy posts the flat body to /interpret.
	APILegacy API = iota
	// APIV2 posts the nested body to /api/v2/comprehensive-analysis.
	APIV2
)

// Endpoint paths.
const (
	PathInterpret      = "/interpret"
	PathComprehensive  = "/api/v2/comprehensive-analysis"
	PathGeneratePDF    = "/api/v2/generate-pdf"
	PathRemoteStatus   = "/api/v2/claude-api-status"
	PathRemoteConfig   = "/api/v2/configure-claude-api"
	PathHealth         = "/api/v2/health"
	headerRequestID    = "X-Request-ID"
	defaultUserAgent   = "bazi/dev"
	maxJSONBodyBytes   = 16 << 20
	maxExportBodyBytes = 64 << 20
)

// ClientConfig holds configuration options for the analysis client.
type ClientConfig struct {
	// BaseURL is the service root (default: http://localhost:8000).
	BaseURL string

	// API selects the analysis endpoint (default: APIV2).
	API API

	// Timeout bounds Submit and the small side channels (default: 60s).
	Timeout time.Duration

	// ExportTimeout bounds PDF generation (default: 120s).
	ExportTimeout time.Duration

	// MaxRequestsPerMinute throttles outgoing calls. Zero disables the limiter.
	MaxRequestsPerMinute int

	// UserAgent is sent with every request (default: bazi/dev).
	UserAgent string

	// Logger receives request traces (default: no-op).
	Logger *zap.Logger

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:              "http://localhost:8000",
		API:                  APIV2,
		Timeout:              60 * time.Second,
		ExportTimeout:        120 * time.Second,
		MaxRequestsPerMinute: 30,
		UserAgent:            defaultUserAgent,
	}
}

// ConfigFromService builds a client configuration from the [service]
// config section.
func ConfigFromService(s config.ServiceConfig, api API) *ClientConfig {
	return &ClientConfig{
		BaseURL:              s.BaseURL,
		API:                  api,
		Timeout:              s.Timeout(),
		ExportTimeout:        s.ExportTimeout(),
		MaxRequestsPerMinute: s.MaxRequestsPerMinute,
	}
}

// APIForVariant maps a report variant to the endpoint producing its payload:
// the enhanced table reads the v2 result, the others read /interpret.
func APIForVariant(variant string) API {
	if strings.EqualFold(strings.TrimSpace(variant), "enhanced") {
		return APIV2
	}
	return APILegacy
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the analysis service.
//
// Example:
//
//	c := client.NewClientWithConfig(client.ConfigFromService(cfg.Service, client.APIV2))
//	result, err := c.Submit(ctx, req)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with a custom configuration. Zero
// fields take their defaults.
func NewClientWithConfig(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.ExportTimeout <= 0 {
		c.ExportTimeout = def.ExportTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Deadlines come from the per-call context, so the transport itself
	// carries no client-wide timeout.
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.MaxRequestsPerMinute > 0 {
		burst := c.MaxRequestsPerMinute
		if burst > 5 {
			burst = 5
		}
		limiter = rate.NewLimiter(rate.Limit(float64(c.MaxRequestsPerMinute)/60), burst)
	}

	return &Client{
		config:     &c,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger.Named("client"),
		now:        time.Now,
	}
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

// =============================================================================
// ANALYSIS
// =============================================================================

// Submit sends one analysis request and returns the result object. There
// is no retry; a superseded or cancelled call returns a network error.
func (c *Client) Submit(ctx context.Context, req request.AnalysisRequest) (payload.Value, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	path, body := PathComprehensive, any(req.V2Body())
	if c.config.API == APILegacy {
		path, body = PathInterpret, req.LegacyBody()
	}

	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return payload.Missing, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp.Body, maxJSONBodyBytes)
	if err != nil {
		return payload.Missing, bodyError(resp.StatusCode, err)
	}

	result, err := decodeEnvelope(resp.StatusCode, data)
	if err != nil {
		c.logger.Debug("analysis failed",
			zap.String("request_id", resp.Request.Header.Get(headerRequestID)),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return payload.Missing, err
	}
	return result, nil
}

// decodeEnvelope applies the service envelope rules to a response body.
func decodeEnvelope(status int, data []byte) (payload.Value, error) {
	body, err := payload.Decode(data)
	if !is2xx(status) {
		if err != nil || !body.IsMap() {
			return payload.Missing, malformedError(status, err)
		}
		return payload.Missing, serviceError(status, detailText(body))
	}

	if err != nil {
		return payload.Missing, malformedError(status, err)
	}
	flag := body.Get("success")
	if !flag.Exists() {
		flag = body.Get("ok")
	}
	ok, isBool := flag.Bool()
	if !isBool {
		return payload.Missing, malformedError(status, ErrMissingFlag)
	}
	if !ok {
		msg := detailText(body)
		if msg == "" {
			msg = strings.TrimSpace(body.Get("message").Text())
		}
		return payload.Missing, serviceError(status, msg)
	}

	result := body.Get("data")
	if !result.Exists() {
		result = body.Get("result")
	}
	if !result.IsMap() {
		return payload.Missing, malformedError(status, ErrMissingPayload)
	}
	return result, nil
}

// detailText flattens a FastAPI detail field: a plain string, or a list
// of validation entries each carrying msg.
func detailText(body payload.Value) string {
	detail := body.Get("detail")
	if !detail.IsList() {
		return strings.TrimSpace(detail.Text())
	}
	var msgs []string
	for _, item := range detail.List() {
		msg := item.Get("msg").Text()
		if msg == "" && !item.IsMap() {
			msg = item.Text()
		}
		if msg = strings.TrimSpace(msg); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "；")
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do sends a request and returns a response of any status. Transport
// failures, including a cancelled limiter wait, are network errors.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, networkError(err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidInput, Message: MsgAnalysisFailed, Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, networkError(fmt.Errorf("build request: %w", err))
	}
	id := uuid.NewString()
	req.Header.Set(headerRequestID, id)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("request_id", id),
			zap.String("path", path),
			zap.Error(err))
		return nil, networkError(err)
	}
	c.logger.Debug("request",
		zap.String("request_id", id),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// getJSON decodes a small JSON document. Non-2xx responses are classified
// like analysis failures.
func (c *Client) getJSON(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := readBody(resp.Body, maxJSONBodyBytes)
	if err != nil {
		return bodyError(resp.StatusCode, err)
	}
	if !is2xx(resp.StatusCode) {
		v, derr := payload.Decode(data)
		if derr != nil || !v.IsMap() {
			return malformedError(resp.StatusCode, derr)
		}
		msg := detailText(v)
		if msg == "" {
			msg = strings.TrimSpace(v.Get("message").Text())
		}
		return serviceError(resp.StatusCode, msg)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformedError(resp.StatusCode, err)
	}
	return nil
}

var (
	errEmptyBody    = errors.New("empty response body")
	errBodyTooLarge = errors.New("response body too large")
)

// readBody reads at most limit bytes. An empty body is an error: the
// service always answers with a document.
// SECURITY: a runaway response cannot exhaust memory.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", errBodyTooLarge, limit)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyBody
	}
	return data, nil
}

// bodyError classifies a failed body read. A truncated or missing body is
// a transport failure; an oversized one is malformed.
func bodyError(status int, err error) *ClientError {
	if errors.Is(err, errBodyTooLarge) {
		return malformedError(status, err)
	}
	ce := networkError(err)
	ce.Status = status
	return ce
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
