// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/bazi-report-tui/internal/request"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleRequest() request.AnalysisRequest {
	return request.AnalysisRequest{
		Name:       "张三",
		Gender:     request.GenderMale,
		Birth:      request.BirthDateTime{Year: 1990, Month: 5, Day: 12, Hour: 14, Minute: 30},
		Location:   "北京",
		Question:   "事业如何",
		Mode:       request.ModeExpert,
		Backend:    request.BackendRemoteAPI,
		CurrentAge: 35,
	}
}

// newTestClient starts a server for handler. The server's own client is
// used so closing the server also closes idle connections.
func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*ClientConfig)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &ClientConfig{
		BaseURL:    srv.URL,
		API:        APIV2,
		UserAgent:  "bazi/test",
		HTTPClient: srv.Client(),
	}
	for _, m := range mutate {
		m(cfg)
	}
	return NewClientWithConfig(cfg)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_V2(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathComprehensive, r.URL.Path)
		assert.Equal(t, "bazi/test", r.Header.Get("User-Agent"))
		_, err := uuid.Parse(r.Header.Get(headerRequestID))
		assert.NoError(t, err)

		var body request.V2Body
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "张三", body.BirthInfo.Name)
		assert.Equal(t, 30, body.BirthInfo.Minute)
		assert.Equal(t, "claude_api", body.LLMOption)
		assert.Equal(t, "expert", body.Mode)

		writeJSON(w, http.StatusOK, `{"success": true, "data": {"structured_analysis": {"bazi": {"year": "庚午"}}}}`)
	})

	res, err := c.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "庚午", res.Path("structured_analysis", "bazi", "year").Text())
}

func TestSubmit_Legacy(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathInterpret, r.URL.Path)
		var body request.LegacyBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1990, body.BirthYear)
		assert.Equal(t, 14, body.BirthHour)
		assert.Equal(t, "male", body.Gender)

		writeJSON(w, http.StatusOK, `{"ok": true, "result": {"问题": "事业如何"}}`)
	}, func(cfg *ClientConfig) { cfg.API = APILegacy })

	res, err := c.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "事业如何", res.Get("问题").Text())
}

func TestSubmit_ServiceDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"detail": "出生年份必须在1900-2100之间"}`)
	})

	_, err := c.Submit(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, IsService(err))

	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "出生年份必须在1900-2100之间", ce.UserMessage())
	assert.Equal(t, http.StatusBadRequest, ce.Status)
}

func TestSubmit_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, Timeout: time.Second})
	_, err := c.Submit(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.False(t, IsTimeout(err))

	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, MsgNetwork, ce.UserMessage())
	c.httpClient.CloseIdleConnections()
}

func TestSubmit_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The server only notices the client hanging up once the body is consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}, func(cfg *ClientConfig) { cfg.Timeout = 50 * time.Millisecond })

	_, err := c.Submit(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.True(t, IsTimeout(err))

	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, MsgTimeout, ce.UserMessage())
}

func TestSubmit_Cancelled(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, `{"success": true, "data": {}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Submit(ctx, sampleRequest())
	assert.True(t, IsNetwork(err))
	assert.Zero(t, calls.Load())
}

func TestSubmit_EmptyBodyIsNetwork(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	_, err := c.Submit(context.Background(), sampleRequest())
	assert.True(t, IsNetwork(err))
}

func TestSubmit_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success": true, "data": {}}`)
	}, func(cfg *ClientConfig) { cfg.MaxRequestsPerMinute = 1 })

	_, err := c.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Submit(ctx, sampleRequest())
	assert.True(t, IsNetwork(err), "a throttled call that cannot wait is a network failure")
}

// =============================================================================
// ENVELOPE
// =============================================================================

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantTyp ErrorType
		wantMsg string
	}{
		{"detail string", 400, `{"detail": "姓名不能为空"}`, ErrTypeService, "姓名不能为空"},
		{"detail list", 422, `{"detail": [{"loc": ["body"], "msg": "年份无效"}, {"msg": "月份无效"}]}`, ErrTypeService, "年份无效；月份无效"},
		{"json without detail", 500, `{"error": "x"}`, ErrTypeService, MsgAnalysisFailed},
		{"unparsable error", 502, `<html>bad gateway</html>`, ErrTypeMalformed, MsgMalformed},
		{"unparsable success", 200, `not json`, ErrTypeMalformed, MsgMalformed},
		{"trailing data after success", 200, `{"success": true, "data": {"五行统计": {}}} <html>oops`, ErrTypeMalformed, MsgMalformed},
		{"trailing data after error", 500, `{"detail": "x"} garbage`, ErrTypeMalformed, MsgMalformed},
		{"missing flag", 200, `{"data": {}}`, ErrTypeMalformed, MsgMalformed},
		{"non-bool flag", 200, `{"ok": "true", "result": {}}`, ErrTypeMalformed, MsgMalformed},
		{"flag false with detail", 200, `{"success": false, "detail": "引擎繁忙"}`, ErrTypeService, "引擎繁忙"},
		{"flag false with message", 200, `{"success": false, "message": "稍后再试"}`, ErrTypeService, "稍后再试"},
		{"flag false bare", 200, `{"ok": false}`, ErrTypeService, MsgAnalysisFailed},
		{"payload not object", 200, `{"success": true, "data": [1, 2]}`, ErrTypeMalformed, MsgMalformed},
		{"payload missing", 200, `{"success": true}`, ErrTypeMalformed, MsgMalformed},
		{"payload null", 200, `{"ok": true, "result": null}`, ErrTypeMalformed, MsgMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeEnvelope(tt.status, []byte(tt.body))
			require.Error(t, err)
			var ce *ClientError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantTyp, ce.Type)
			assert.Equal(t, tt.wantMsg, ce.UserMessage())
		})
	}
}

func TestDecodeEnvelope_Success(t *testing.T) {
	v, err := decodeEnvelope(201, []byte(`{"success": true, "data": {"a": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Get("a").FloatOr(0))

	v, err = decodeEnvelope(200, []byte(`{"ok": true, "result": {"b": "x"}}`))
	require.NoError(t, err)
	assert.Equal(t, "x", v.Get("b").Text())
}

func TestClientError_Error(t *testing.T) {
	err := &ClientError{Type: ErrTypeService, Message: "失败", Status: 500}
	assert.Equal(t, "service: 失败 (HTTP 500)", err.Error())

	cause := errors.New("dial tcp")
	err = &ClientError{Type: ErrTypeNetwork, Message: MsgNetwork, Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsService(cause))
}

func TestAPIForVariant(t *testing.T) {
	assert.Equal(t, APIV2, APIForVariant("enhanced"))
	assert.Equal(t, APIV2, APIForVariant(" Enhanced "))
	assert.Equal(t, APILegacy, APIForVariant("basic"))
	assert.Equal(t, APILegacy, APIForVariant("legacy"))
}

// =============================================================================
// SIDE CHANNELS
// =============================================================================

func TestExport_UsesContentDisposition(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathGeneratePDF, r.URL.Path)
		var body request.V2Body
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "张三", body.BirthInfo.Name)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=BaziAnalysisReport_20250301_120000.pdf")
		_, _ = w.Write([]byte("%PDF-1.4 test"))
	})

	art, err := c.Export(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "BaziAnalysisReport_20250301_120000.pdf", art.Filename)
	assert.Equal(t, "application/pdf", art.MimeType)
	assert.Equal(t, []byte("%PDF-1.4 test"), art.Data)
}

func TestExport_DefaultName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF"))
	})
	c.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	art, err := c.Export(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "八字分析报告_2025-03-01.pdf", art.Filename)
}

func TestExport_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail": "PDF生成失败"}`)
	})

	_, err := c.Export(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, IsService(err))
	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, MsgPDFFailed, ce.UserMessage())
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"attachment", ""},
		{"attachment; filename=report.pdf", "report.pdf"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{`attachment; filename="..\\..\\evil.pdf"`, "evil.pdf"},
		{"attachment; filename*=UTF-8''%E6%8A%A5%E5%91%8A.pdf", "报告.pdf"},
		{`attachment; filename=".."`, ""},
		{"garbage;;;=", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, attachmentName(tt.header))
		})
	}
}

func TestRemoteAIStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathRemoteStatus, r.URL.Path)
		writeJSON(w, http.StatusOK, `{"status": "configured", "base_url": "https://api.example.com", "api_key_configured": true, "timeout": 60, "message": "Claude API已配置"}`)
	})

	st, err := c.RemoteAIStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Configured())
	assert.True(t, st.APIKeyConfigured)
	assert.Equal(t, 60.0, st.Timeout)
	assert.Equal(t, "API已配置", st.Label())
}

func TestRemoteAIStatus_ErrorStatusIsNotConfigured(t *testing.T) {
	st := RemoteAIStatus{Status: RemoteError, Message: "Claude API配置检查失败"}
	assert.False(t, st.Configured())
	assert.Equal(t, "API配置错误 - Claude API配置检查失败", st.Label())
	assert.Equal(t, "需要配置API Key", RemoteAIStatus{Status: RemoteNotConfigured}.Label())
}

func TestConfigureRemoteAI_LocalValidation(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := c.ConfigureRemoteAI(context.Background(), RemoteAIConfig{BaseURL: "https://x.example.com"})
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
	assert.Contains(t, err.Error(), MsgAPIKeyRequired)

	_, err = c.ConfigureRemoteAI(context.Background(), RemoteAIConfig{BaseURL: "http://x.example.com", APIKey: "k"})
	require.Error(t, err)
	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, MsgHTTPSRequired, ce.UserMessage())

	assert.Zero(t, calls.Load(), "invalid input must not reach the service")
}

func TestConfigureRemoteAI(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathRemoteConfig, r.URL.Path)
		var rc RemoteAIConfig
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rc))
		if rc.APIKey != "good" {
			writeJSON(w, http.StatusBadRequest, `{"detail": "配置失败: 无效的密钥"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success": true, "message": "Claude API配置测试成功", "config": {"base_url": "https://x.example.com", "api_key_configured": true, "status": "ready"}}`)
	})

	res, err := c.ConfigureRemoteAI(context.Background(), RemoteAIConfig{BaseURL: "https://x.example.com", APIKey: " good "})
	require.NoError(t, err)
	assert.Equal(t, "Claude API配置测试成功", res.Message)
	assert.Equal(t, "ready", res.Config.Status)

	_, err = c.ConfigureRemoteAI(context.Background(), RemoteAIConfig{APIKey: "bad"})
	require.Error(t, err)
	assert.True(t, IsService(err))
	assert.True(t, strings.HasPrefix(err.(*ClientError).UserMessage(), "配置失败"))
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathHealth, r.URL.Path)
		writeJSON(w, http.StatusOK, `{"status": "healthy", "service": "八字能量分析系统", "version": "2.0.0", "features": ["格局判定", "PDF报告导出"]}`)
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Healthy())
	assert.Equal(t, "2.0.0", h.Version)
	assert.Len(t, h.Features, 2)
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://svc:8000/"})
	cfg := c.Config()
	assert.Equal(t, "http://svc:8000", cfg.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 120*time.Second, cfg.ExportTimeout)
	assert.Equal(t, defaultUserAgent, cfg.UserAgent)
}
