// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// =============================================================================
// PDF EXPORT
// =============================================================================

// Artifact is a binary document produced by the service.
type Artifact struct {
	Filename string
	MimeType string
	Data     []byte
}

// DefaultExportName is the file name used when the service sends none.
func DefaultExportName(date string) string {
	return "八字分析报告_" + date + ".pdf"
}

// Export asks the service to render req as a PDF. Every failure carries
// the same user message; the type still tells network from service.
func (c *Client) Export(ctx context.Context, req request.AnalysisRequest) (Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.ExportTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPost, PathGeneratePDF, req.V2Body())
	if err != nil {
		return Artifact{}, exportError(err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return Artifact{}, &ClientError{Type: ErrTypeService, Message: MsgPDFFailed, Status: resp.StatusCode}
	}

	data, err := readBody(resp.Body, maxExportBodyBytes)
	if err != nil {
		return Artifact{}, exportError(bodyError(resp.StatusCode, err))
	}

	mimeType := resp.Header.Get("Content-Type")
	if mt, _, perr := mime.ParseMediaType(mimeType); perr == nil {
		mimeType = mt
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = DefaultExportName(c.now().Format("2006-01-02"))
	}
	c.logger.Info("export received", zap.String("filename", name), zap.Int("bytes", len(data)))
	return Artifact{Filename: name, MimeType: mimeType, Data: data}, nil
}

// exportError keeps the classification of err under the export message.
func exportError(err error) error {
	var ce *ClientError
	if errors.As(err, &ce) {
		out := *ce
		out.Message = MsgPDFFailed
		return &out
	}
	return &ClientError{Type: ErrTypeUnknown, Message: MsgPDFFailed, Cause: err}
}

// attachmentName extracts a safe base file name from a Content-Disposition
// header, or "" when there is none.
// SECURITY: directory components sent by the service are dropped.
func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return ""
	}
	name = filepath.Base(filepath.Clean(strings.ReplaceAll(name, `\`, "/")))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

// =============================================================================
// REMOTE AI
// =============================================================================

// Remote AI status values.
const (
	RemoteConfigured    = "configured"
	RemoteNotConfigured = "not_configured"
	RemoteError         = "error"
)

// RemoteAIStatus describes whether the service can use the remote
// interpretation backend.
type RemoteAIStatus struct {
	Status           string  `json:"status"`
	BaseURL          string  `json:"base_url,omitempty"`
	APIKeyConfigured bool    `json:"api_key_configured"`
	Timeout          float64 `json:"timeout,omitempty"`
	Message          string  `json:"message,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// Configured reports whether the remote backend may be selected.
func (s RemoteAIStatus) Configured() bool {
	return s.Status == RemoteConfigured
}

// Label is a short display form of the status.
func (s RemoteAIStatus) Label() string {
	switch s.Status {
	case RemoteConfigured:
		return "API已配置"
	case RemoteNotConfigured:
		return "需要配置API Key"
	default:
		msg := s.Message
		if msg == "" {
			msg = "未知错误"
		}
		return "API配置错误 - " + msg
	}
}

// RemoteAIStatus fetches the remote backend status.
func (c *Client) RemoteAIStatus(ctx context.Context) (RemoteAIStatus, error) {
	var st RemoteAIStatus
	if err := c.getJSON(ctx, http.MethodGet, PathRemoteStatus, nil, &st); err != nil {
		return RemoteAIStatus{}, err
	}
	if st.Status == "" {
		return RemoteAIStatus{}, malformedError(http.StatusOK, ErrMissingFlag)
	}
	return st, nil
}

// RemoteAIConfig is the credential pair sent to the service. An empty
// BaseURL keeps the service default.
type RemoteAIConfig struct {
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key"`
}

// Validate checks the config locally.
func (rc RemoteAIConfig) Validate() error {
	if strings.TrimSpace(rc.APIKey) == "" {
		return &ClientError{Type: ErrTypeInvalidInput, Message: MsgAPIKeyRequired}
	}
	if u := strings.TrimSpace(rc.BaseURL); u != "" && !strings.HasPrefix(u, "https://") {
		return &ClientError{Type: ErrTypeInvalidInput, Message: MsgHTTPSRequired}
	}
	return nil
}

// RemoteAIResult is the service's answer to a configuration request.
type RemoteAIResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Config  struct {
		BaseURL          string `json:"base_url"`
		APIKeyConfigured bool   `json:"api_key_configured"`
		Status           string `json:"status"`
	} `json:"config"`
}

// ConfigureRemoteAI sends credentials for the remote backend. Invalid input
// is rejected without a request.
func (c *Client) ConfigureRemoteAI(ctx context.Context, rc RemoteAIConfig) (RemoteAIResult, error) {
	if err := rc.Validate(); err != nil {
		return RemoteAIResult{}, err
	}
	rc.BaseURL = strings.TrimSpace(rc.BaseURL)
	rc.APIKey = strings.TrimSpace(rc.APIKey)

	var res RemoteAIResult
	if err := c.getJSON(ctx, http.MethodPost, PathRemoteConfig, rc, &res); err != nil {
		return RemoteAIResult{}, err
	}
	if !res.Success {
		return RemoteAIResult{}, serviceError(http.StatusOK, res.Message)
	}
	return res, nil
}

// =============================================================================
// HEALTH
// =============================================================================

// Health is the service self-report.
type Health struct {
	Status    string   `json:"status"`
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Features  []string `json:"features"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// Healthy reports whether the service says it is up.
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}

// Health fetches the service health document.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.getJSON(ctx, http.MethodGet, PathHealth, nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}
