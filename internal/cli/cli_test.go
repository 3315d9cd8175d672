// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/logging"
	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/request"
	"github.com/jeranaias/bazi-report-tui/internal/ui/app"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// FIXTURES
// =============================================================================

type fakeService struct {
	mu         sync.Mutex
	submits    []request.AnalysisRequest
	configured []client.RemoteAIConfig

	result    payload.Value
	err       error
	artifact  client.Artifact
	status    client.RemoteAIStatus
	statusErr error
	health    client.Health
	healthErr error
}

func (f *fakeService) Submit(ctx context.Context, req request.AnalysisRequest) (payload.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, req)
	return f.result, f.err
}

func (f *fakeService) Export(ctx context.Context, req request.AnalysisRequest) (client.Artifact, error) {
	return f.artifact, f.err
}

func (f *fakeService) RemoteAIStatus(ctx context.Context) (client.RemoteAIStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeService) ConfigureRemoteAI(ctx context.Context, rc client.RemoteAIConfig) (client.RemoteAIResult, error) {
	if err := rc.Validate(); err != nil {
		return client.RemoteAIResult{}, err
	}
	f.mu.Lock()
	f.configured = append(f.configured, rc)
	f.mu.Unlock()
	return client.RemoteAIResult{Success: true}, nil
}

func (f *fakeService) Health(ctx context.Context) (client.Health, error) {
	return f.health, f.healthErr
}

var sampleResult = payload.MustDecode(`{"五行统计": {"wood": 1, "fire": 2, "earth": 0, "metal": 3, "water": 1, "最旺": "metal", "最弱": "earth"}}`)

type testEnv struct {
	*env
	svc        *fakeService
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	configFile string
}

func newTestEnv(t *testing.T, svc *fakeService) *testEnv {
	t.Helper()
	var out, errOut bytes.Buffer
	e := newEnv()
	e.in = strings.NewReader("")
	e.out = &out
	e.errOut = &errOut
	e.newService = func(*config.Config, *zap.Logger) service { return svc }
	e.newLogger = func(*config.Config, logging.Options) (*zap.Logger, error) { return zap.NewNop(), nil }
	e.stdinTTY = func() bool { return false }
	e.stdoutTTY = func() bool { return false }
	e.runTUI = func(app.RunOptions) error { return errors.New("runTUI not stubbed") }

	return &testEnv{
		env:        e,
		svc:        svc,
		out:        &out,
		errOut:     &errOut,
		configFile: filepath.Join(t.TempDir(), "config.toml"),
	}
}

func (te *testEnv) run(args ...string) error {
	root := newRootCmd(te.env)
	root.SetArgs(append([]string{"--config", te.configFile}, args...))
	return root.ExecuteContext(context.Background())
}

var birthArgs = []string{
	"--name", "张三", "--gender", "男", "--year", "1990", "--month", "5", "--day", "12", "--time", "14:30",
}

func analyzeArgs(extra ...string) []string {
	return append(append([]string{"analyze", "--variant", "basic"}, birthArgs...), extra...)
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Field: "format"}, ExitUsageError},
		{"validation", &request.ValidationError{Message: "请填写姓名", Fields: []string{request.FieldName}}, ExitUsageError},
		{"tty", &TTYRequiredError{Operation: "start the TUI"}, ExitUsageError},
		{"invalid input", &client.ClientError{Type: client.ErrTypeInvalidInput, Message: client.MsgAPIKeyRequired}, ExitUsageError},
		{"config", &ConfigError{Path: "x", Err: errors.New("bad")}, ExitConfigError},
		{"timeout", &client.ClientError{Type: client.ErrTypeNetwork, Message: client.MsgTimeout, Cause: context.DeadlineExceeded}, ExitTimeoutError},
		{"watchdog", fmt.Errorf("analysis: %w", controller.ErrExpired), ExitTimeoutError},
		{"network", &client.ClientError{Type: client.ErrTypeNetwork, Message: client.MsgNetwork}, ExitNetworkError},
		{"service", &client.ClientError{Type: client.ErrTypeService, Message: "boom", Status: 500}, ExitNetworkError},
		{"malformed", &client.ClientError{Type: client.ErrTypeMalformed, Message: client.MsgMalformed}, ExitNetworkError},
		{"command", NewCommandError("export", "save", "disk full", nil), ExitGeneralError},
		{"wrapped usage", fmt.Errorf("wrap: %w", &UsageError{Field: "x"}), ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_ValidationNamesFlags(t *testing.T) {
	err := &request.ValidationError{Message: "请填写正确的出生时间", Fields: []string{request.FieldBirthHour, request.FieldBirthDay}}

	var buf bytes.Buffer
	DisplayError(&buf, err, false, false)
	assert.Contains(t, buf.String(), "请填写正确的出生时间")
	assert.Contains(t, buf.String(), "--hour, --day")

	buf.Reset()
	DisplayError(&buf, err, true, false)
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "validation_error", out["error_type"])
	assert.Equal(t, float64(ExitUsageError), out["exit_code"])
	assert.Equal(t, []any{"--hour", "--day"}, out["fields"])
}

func TestDisplayErrorJSON_ClientError(t *testing.T) {
	var buf bytes.Buffer
	DisplayErrorJSON(&buf, &client.ClientError{Type: client.ErrTypeService, Message: "服务繁忙", Status: 503})

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "client_error", out["error_type"])
	assert.Equal(t, "service", out["category"])
	assert.Equal(t, float64(503), out["status_code"])
	assert.Equal(t, "服务繁忙", out["message"])
}

// =============================================================================
// ROOT
// =============================================================================

func TestRoot_RequiresTTY(t *testing.T) {
	te := newTestEnv(t, &fakeService{})
	called := false
	te.runTUI = func(app.RunOptions) error { called = true; return nil }

	err := te.run()
	var ttyErr *TTYRequiredError
	require.ErrorAs(t, err, &ttyErr)
	assert.False(t, called)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRoot_StartsTUI(t *testing.T) {
	svc := &fakeService{}
	te := newTestEnv(t, svc)
	te.stdinTTY = func() bool { return true }

	var got app.RunOptions
	te.runTUI = func(opts app.RunOptions) error { got = opts; return nil }

	require.NoError(t, te.run("--variant", "legacy"))
	require.NotNil(t, got.Config)
	assert.Equal(t, "legacy", got.Config.Report.Variant)
	assert.Equal(t, te.configFile, got.ConfigPath)
	assert.Same(t, svc, got.Service)
}

func TestRoot_UnknownVariant(t *testing.T) {
	te := newTestEnv(t, &fakeService{})
	err := te.run("version", "--variant", "nope")
	require.NoError(t, err, "version skips config loading")

	err = te.run("analyze", "--variant", "nope")
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Equal(t, "variant", usageErr.Field)
}

func TestRoot_BadBaseURL(t *testing.T) {
	te := newTestEnv(t, &fakeService{})
	err := te.run("status", "--base-url", "ftp://example.com")
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Equal(t, "base-url", usageErr.Field)
}

func TestRoot_BadFlagIsUsageError(t *testing.T) {
	te := newTestEnv(t, &fakeService{})
	err := te.run("analyze", "--no-such-flag")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// ANALYZE
// =============================================================================

func TestAnalyze_PrintsMarkdown(t *testing.T) {
	svc := &fakeService{result: sampleResult}
	te := newTestEnv(t, svc)

	require.NoError(t, te.run(analyzeArgs()...))

	assert.Contains(t, te.out.String(), "# 张三 的八字分析报告")
	require.Len(t, svc.submits, 1)
	assert.Equal(t, "张三", svc.submits[0].Name)
	assert.Equal(t, 14, svc.submits[0].Birth.Hour)
	assert.Equal(t, 30, svc.submits[0].Birth.Minute)
	assert.Equal(t, "北京", svc.submits[0].Location)
}

func TestAnalyze_HourFlagWinsOverTime(t *testing.T) {
	svc := &fakeService{result: sampleResult}
	te := newTestEnv(t, svc)

	require.NoError(t, te.run(analyzeArgs("--hour", "8")...))
	require.Len(t, svc.submits, 1)
	assert.Equal(t, 8, svc.submits[0].Birth.Hour)
	assert.Equal(t, 30, svc.submits[0].Birth.Minute)
}

func TestAnalyze_JSONFormat(t *testing.T) {
	te := newTestEnv(t, &fakeService{result: sampleResult})

	require.NoError(t, te.run(analyzeArgs("--format", "json")...))
	assert.True(t, json.Valid(te.out.Bytes()), te.out.String())
	assert.Contains(t, te.out.String(), "张三")
}

func TestAnalyze_RawPrintsResult(t *testing.T) {
	te := newTestEnv(t, &fakeService{result: sampleResult})

	require.NoError(t, te.run(analyzeArgs("--raw")...))
	assert.Contains(t, te.out.String(), "五行统计")
	assert.NotContains(t, te.out.String(), "# 张三")
}

func TestAnalyze_UnsupportedFormatSkipsRequest(t *testing.T) {
	svc := &fakeService{result: sampleResult}
	te := newTestEnv(t, svc)

	err := te.run(analyzeArgs("--format", "pdf")...)
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Equal(t, "format", usageErr.Field)
	assert.Empty(t, svc.submits)
}

func TestAnalyze_ValidationSkipsRequest(t *testing.T) {
	svc := &fakeService{result: sampleResult}
	te := newTestEnv(t, svc)

	err := te.run("analyze", "--gender", "男", "--year", "1990", "--month", "2", "--day", "30", "--time", "14:30")
	var verr *request.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, request.FieldName)
	assert.Contains(t, verr.Fields, request.FieldBirthDay)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Empty(t, svc.submits)
}

func TestAnalyze_ServiceFailure(t *testing.T) {
	svc := &fakeService{err: &client.ClientError{Type: client.ErrTypeNetwork, Message: client.MsgNetwork}}
	te := newTestEnv(t, svc)

	err := te.run(analyzeArgs()...)
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Equal(t, client.MsgNetwork, controller.UserMessage(err))
	assert.Empty(t, te.out.String())
}

func TestWrapWidth(t *testing.T) {
	tests := []struct {
		name                  string
		configured, termWidth int
		want                  int
	}{
		{"wide terminal keeps config", 80, 200, 80},
		{"narrow terminal narrows", 80, 50, 48},
		{"tiny terminal clamps", 80, 2, minWrapWidth},
		{"zero width clamps", 80, 0, minWrapWidth},
		{"zero config clamps", 0, 120, minWrapWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapWidth(tt.configured, tt.termWidth))
		})
	}
}

// =============================================================================
// PROMPT
// =============================================================================

// scriptedReader answers prompts from a fixed list.
type scriptedReader struct {
	answers []string
	prompts []string
	history []string
	err     error
}

func (r *scriptedReader) PromptWithSuggestion(prompt, text string, pos int) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.answers) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return text, nil
	}
	a := r.answers[0]
	r.answers = r.answers[1:]
	return a, nil
}

func (r *scriptedReader) SetCompleter(liner.Completer) {}

func (r *scriptedReader) AppendHistory(item string) { r.history = append(r.history, item) }

func loadedEnv(t *testing.T) *testEnv {
	t.Helper()
	te := newTestEnv(t, &fakeService{})
	te.opts.configPath = te.configFile
	require.NoError(t, te.load(logging.SinkStderr))
	return te
}

func TestCollectFields_ReasksOnlyRejected(t *testing.T) {
	te := loadedEnv(t)
	r := &scriptedReader{answers: []string{
		"", "男", "1990", "5", "12", "14:30", "上海", "", "general",
		"张三",
	}}

	raw, err := te.collectFields(r)
	require.NoError(t, err)
	assert.Equal(t, "张三", raw[request.FieldName])
	assert.Equal(t, "上海", raw[request.FieldLocation])

	require.Len(t, r.prompts, len(promptFields)+1)
	assert.Contains(t, r.prompts[len(r.prompts)-1], "姓名")
	assert.NotEmpty(t, te.errOut.String())
	assert.NotContains(t, r.history, "")
}

func TestCollectFields_KeepsDefaultsWhenAccepted(t *testing.T) {
	te := loadedEnv(t)
	// Answers run out after the time question; the reader then accepts the
	// suggested defaults.
	r := &scriptedReader{answers: []string{"李四", "女", "1988", "2", "29", "08:05"}}

	raw, err := te.collectFields(r)
	require.NoError(t, err)
	assert.Equal(t, "北京", raw[request.FieldLocation])
	assert.Equal(t, "general", raw[request.FieldMode])

	req, err := te.build(raw)
	require.NoError(t, err)
	assert.Equal(t, 29, req.Birth.Day)
}

func TestCollectFields_Cancelled(t *testing.T) {
	te := loadedEnv(t)
	r := &scriptedReader{err: liner.ErrPromptAborted}

	_, err := te.collectFields(r)
	assert.ErrorIs(t, err, errPromptCancelled)
}

func TestFieldsToAsk(t *testing.T) {
	keys := func(fs []promptField) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.key)
		}
		return out
	}

	assert.Equal(t, []string{request.FieldTime}, keys(fieldsToAsk([]string{request.FieldBirthHour, request.FieldBirthMinute})))
	assert.Equal(t, []string{request.FieldName, request.FieldBirthDay}, keys(fieldsToAsk([]string{request.FieldBirthDay, request.FieldName})))
	assert.Len(t, fieldsToAsk(nil), len(promptFields))
}

func TestPrompt_RequiresTTY(t *testing.T) {
	te := newTestEnv(t, &fakeService{})
	err := te.run("prompt")
	var ttyErr *TTYRequiredError
	assert.ErrorAs(t, err, &ttyErr)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_SavesArtifact(t *testing.T) {
	svc := &fakeService{artifact: client.Artifact{
		Filename: "bazi_report.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4 test"),
	}}
	te := newTestEnv(t, svc)
	dir := t.TempDir()

	args := append([]string{"--json", "export", "--output", dir}, birthArgs...)
	require.NoError(t, te.run(args...))

	var out struct {
		Path  string `json:"path"`
		Bytes int    `json:"bytes"`
	}
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &out))
	assert.Equal(t, dir, filepath.Dir(out.Path))
	assert.Equal(t, len(svc.artifact.Data), out.Bytes)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, svc.artifact.Data, data)
}

func TestExport_FailureKeepsType(t *testing.T) {
	svc := &fakeService{err: &client.ClientError{Type: client.ErrTypeService, Message: client.MsgPDFFailed, Status: 500}}
	te := newTestEnv(t, svc)

	err := te.run(append([]string{"export", "--output", t.TempDir()}, birthArgs...)...)
	assert.True(t, client.IsService(err))
	assert.Equal(t, client.MsgPDFFailed, controller.UserMessage(err))
}

// =============================================================================
// REMOTE AI / STATUS
// =============================================================================

func TestRemoteConfigure_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing key", []string{}, client.MsgAPIKeyRequired},
		{"http url", []string{"--api-key", "sk-test", "--api-base-url", "http://api.example.com"}, client.MsgHTTPSRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			te := newTestEnv(t, svc)
			err := te.run(append([]string{"remote-ai", "configure"}, tt.args...)...)
			assert.Equal(t, ExitUsageError, GetExitCode(err))
			assert.Equal(t, tt.msg, controller.UserMessage(err))
			assert.Empty(t, svc.configured)
		})
	}
}

func TestRemoteConfigure_Success(t *testing.T) {
	svc := &fakeService{}
	te := newTestEnv(t, svc)

	require.NoError(t, te.run("remote-ai", "configure", "--api-key", "sk-test", "--api-base-url", "https://api.example.com"))
	require.Len(t, svc.configured, 1)
	assert.Equal(t, "https://api.example.com", svc.configured[0].BaseURL)
	assert.Contains(t, te.out.String(), "API配置成功")
	assert.NotContains(t, te.out.String(), "sk-test")
}

func TestRemoteStatus_JSON(t *testing.T) {
	svc := &fakeService{status: client.RemoteAIStatus{Status: client.RemoteConfigured, APIKeyConfigured: true, BaseURL: "https://api.example.com"}}
	te := newTestEnv(t, svc)

	require.NoError(t, te.run("--json", "remote-ai", "status"))
	var st client.RemoteAIStatus
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &st))
	assert.True(t, st.Configured())
}

func TestStatus_Healthy(t *testing.T) {
	svc := &fakeService{
		health: client.Health{Status: "healthy", Service: "bazi", Version: "2.1.0", Features: []string{"pdf"}},
		status: client.RemoteAIStatus{Status: client.RemoteNotConfigured},
	}
	te := newTestEnv(t, svc)

	require.NoError(t, te.run("--json", "status"))
	var rep statusReport
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &rep))
	require.NotNil(t, rep.Health)
	assert.Equal(t, "2.1.0", rep.Health.Version)
	require.NotNil(t, rep.RemoteAI)
	assert.False(t, rep.RemoteAI.Configured())
}

func TestStatus_RemoteFailureDoesNotFail(t *testing.T) {
	svc := &fakeService{
		health:    client.Health{Status: "healthy"},
		statusErr: &client.ClientError{Type: client.ErrTypeNetwork, Message: client.MsgNetwork},
	}
	te := newTestEnv(t, svc)

	require.NoError(t, te.run("status"))
	assert.Contains(t, te.out.String(), client.MsgNetwork)
}

func TestStatus_HealthFailure(t *testing.T) {
	svc := &fakeService{healthErr: &client.ClientError{Type: client.ErrTypeNetwork, Message: client.MsgNetwork}}
	te := newTestEnv(t, svc)

	err := te.run("status")
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, te.out.String(), client.MsgNetwork)
}

func TestStatus_Unhealthy(t *testing.T) {
	te := newTestEnv(t, &fakeService{health: client.Health{Status: "degraded"}})

	err := te.run("status")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, ExitGeneralError, GetExitCode(err))
}

// =============================================================================
// CONFIG / VERSION
// =============================================================================

func TestConfigInitAndPath(t *testing.T) {
	te := newTestEnv(t, &fakeService{})

	require.NoError(t, te.run("config", "path"))
	assert.Equal(t, te.configFile+"\n", te.out.String())

	require.NoError(t, te.run("config", "init"))
	_, err := os.Stat(te.configFile)
	require.NoError(t, err)

	err = te.run("config", "init")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)

	require.NoError(t, te.run("config", "init", "--force"))

	cfg, err := config.Load(te.configFile)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Service.BaseURL, cfg.Service.BaseURL)
}

func TestConfigShow(t *testing.T) {
	te := newTestEnv(t, &fakeService{})

	require.NoError(t, te.run("config", "show", "--variant", "legacy"))
	assert.Contains(t, te.out.String(), `variant = "legacy"`)

	te.out.Reset()
	require.NoError(t, te.run("--json", "config", "show"))
	var cfg config.Config
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &cfg))
	assert.Equal(t, config.Default().Form.DefaultLocation, cfg.Form.DefaultLocation)
}

func TestConfig_InvalidFileIsConfigError(t *testing.T) {
	te := newTestEnv(t, &fakeService{})
	require.NoError(t, os.WriteFile(te.configFile, []byte("[service\nbase_url = "), 0600))

	err := te.run("status")
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

func TestVersion_JSON(t *testing.T) {
	te := newTestEnv(t, &fakeService{})

	require.NoError(t, te.run("--json", "version"))
	var info versionInfo
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
