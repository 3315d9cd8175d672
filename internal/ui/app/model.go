// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/export"
	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/request"
	"github.com/jeranaias/bazi-report-tui/internal/ui/components"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// User-facing notices raised by the shell itself.
const (
	MsgRemoteUnavailable = "远程AI未配置，请先配置API Key"
	MsgExporting         = "正在生成PDF..."
	MsgExportBusy        = "PDF正在生成中，请稍候"
	MsgExported          = "PDF已保存: "
	MsgSaved             = "报告已保存: "
	MsgSaveFailed        = "保存失败: "
	MsgConfigReloaded    = "配置已重新加载"
	MsgConfigInvalid     = "配置文件无效，继续使用原配置"
)

// Service is the part of the analysis client the shell uses.
type Service interface {
	Submit(ctx context.Context, req request.AnalysisRequest) (payload.Value, error)
	Export(ctx context.Context, req request.AnalysisRequest) (client.Artifact, error)
	RemoteAIStatus(ctx context.Context) (client.RemoteAIStatus, error)
}

// Options wires a Model. Config, Service and Controller are required.
type Options struct {
	Config     *config.Config
	Service    Service
	Controller *controller.Controller
	Theme      *styles.Theme
	Logger     *zap.Logger
	// Watcher is optional; without it config changes need a restart.
	Watcher *config.Watcher
	// ExportOptions overrides the options derived from Config.Export.
	ExportOptions *export.Options
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model. It renders whatever the controller
// says the current state is and turns key presses into controller events.
type Model struct {
	cfg    *config.Config
	svc    Service
	ctrl   *controller.Controller
	theme  *styles.Theme
	logger *zap.Logger

	keys     KeyMap
	help     help.Model
	form     *form
	invalid  map[string]bool
	formRev  uint64
	viewport viewport.Model
	loading  components.LoadingIndicator
	toasts   *components.ToastManager
	header   *components.Header
	status   *components.StatusBar

	renderer   *glamour.TermRenderer
	exportOpts *export.Options
	watcher    *config.Watcher

	// Pointers so that Bubble Tea's model copies share them.
	inflight  *inFlight
	exporting *bool

	remoteAI      client.RemoteAIStatus
	remoteChecked bool
	showRaw       bool

	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the root model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exportOpts := opts.ExportOptions
	if exportOpts == nil {
		var err error
		if exportOpts, err = export.OptionsFromConfig(cfg.Export); err != nil {
			logger.Warn("export options", zap.Error(err))
			exportOpts = export.DefaultOptions()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	exporting := false
	m := Model{
		cfg:        cfg,
		svc:        opts.Service,
		ctrl:       opts.Controller,
		theme:      theme,
		logger:     logger.Named("tui"),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		form:       newForm(),
		invalid:    map[string]bool{},
		viewport:   viewport.New(80, 20),
		loading:    components.NewLoadingIndicator(theme),
		toasts:     components.NewToastManager(),
		header:     components.NewHeader(theme),
		status:     components.NewStatusBar(theme),
		exportOpts: exportOpts,
		watcher:    opts.Watcher,
		inflight:   newInFlight(),
		exporting:  &exporting,
		width:      80,
		height:     24,
		ctx:        ctx,
		cancel:     cancel,
	}
	m.header.Service = cfg.Service.BaseURL
	m.status.Variant = cfg.Report.Variant
	m.form.load(m.ctrl.Form())
	m.formRev = m.ctrl.FormRevision()
	m.rebuildRenderer()
	m.syncStatus()
	return m
}

// Init starts the toast ticker, the remote AI probe and the config watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		components.ToastTickCmd(),
		remoteStatusCmd(m.ctx, m.svc),
		waitForConfig(m.watcher),
	)
}

// Shutdown cancels everything still running. Run calls it after the
// program exits.
func (m Model) Shutdown() {
	m.inflight.cancelAll()
	m.cancel()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case analysisDoneMsg:
		return m.handleAnalysisDone(msg)

	case watchdogMsg:
		if m.ctrl.Expire(msg.Seq) {
			m.logger.Warn("analysis watchdog fired", zap.Uint64("seq", msg.Seq))
			m.inflight.done(msg.Seq)
			m.afterFailure()
		}
		return m, nil

	case exportDoneMsg:
		*m.exporting = false
		if msg.Err != nil {
			m.logger.Warn("pdf export failed", zap.Error(msg.Err))
			m.toasts.Error(controller.UserMessage(msg.Err))
			return m, nil
		}
		m.logger.Info("pdf exported", zap.String("path", msg.Path))
		m.toasts.Success(MsgExported + msg.Path)
		return m, nil

	case saveDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("local export failed", zap.Error(msg.Err))
			m.toasts.Error(MsgSaveFailed + msg.Err.Error())
			return m, nil
		}
		m.toasts.Success(MsgSaved + msg.Path)
		return m, nil

	case remoteAIStatusMsg:
		return m.handleRemoteStatus(msg)

	case configReloadedMsg:
		m.applyConfig(msg.Config)
		m.toasts.Info(MsgConfigReloaded)
		return m, waitForConfig(m.watcher)

	case configErrorMsg:
		m.logger.Warn("config reload failed", zap.Error(msg.Err))
		m.toasts.Error(MsgConfigInvalid)
		return m, waitForConfig(m.watcher)

	case configClosedMsg:
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()
	}

	// Spinner ticks and cursor blinks.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.loading, cmd = m.loading.Update(msg)
	cmds = append(cmds, cmd)
	switch m.ctrl.State() {
	case controller.StateInput:
		cmds = append(cmds, m.form.update(msg))
	case controller.StateResult:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.status.SetWidth(msg.Width)
	m.help.Width = msg.Width

	m.viewport.Width = max(msg.Width-4, 10)
	m.viewport.Height = max(msg.Height-chromeHeight, 3)
	m.rebuildRenderer()
	m.refreshResult()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}
	if key.Matches(msg, m.keys.Dismiss) {
		m.toasts.Clear()
		return m, nil
	}

	switch m.ctrl.State() {
	case controller.StateInput:
		return m.handleInputKey(msg)
	case controller.StateLoading:
		// Only quit and dismiss while a request is in flight.
		return m, nil
	case controller.StateResult:
		return m.handleResultKey(msg)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.NextField):
		return m, m.form.next()
	case key.Matches(msg, m.keys.PrevField):
		return m, m.form.prev()
	case key.Matches(msg, m.keys.CycleMode):
		m.form.mode = m.form.mode.Next()
		m.syncStatus()
		return m, nil
	case key.Matches(msg, m.keys.CycleBackend):
		return m.cycleBackend()
	case key.Matches(msg, m.keys.RefreshAI):
		return m, remoteStatusCmd(m.ctx, m.svc)
	}
	delete(m.invalid, m.form.focusedKey())
	return m, m.form.update(msg)
}

func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.QuitAlt):
		return m.quit()
	case key.Matches(msg, m.keys.ToggleRaw):
		m.showRaw = !m.showRaw
		m.refreshResult()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.ExportPDF):
		return m.exportPDF()
	case key.Matches(msg, m.keys.SaveLocal):
		doc, ok := m.ctrl.Document()
		if !ok {
			return m, nil
		}
		return m, saveCmd(doc, m.cfg.Export.Format, m.exportOpts)
	case key.Matches(msg, m.keys.NewAnalysis):
		if err := m.ctrl.NewAnalysis(); err != nil {
			m.logger.Debug("new analysis", zap.Error(err))
			return m, nil
		}
		m.showRaw = false
		m.header.Title = components.DefaultTitle
		m.viewport.SetContent("")
		m.reloadForm()
		m.syncStatus()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Shutdown()
	return m, tea.Quit
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit sends the current form. A submission while Loading supersedes the
// live one, whose request is cancelled.
func (m Model) submit() (tea.Model, tea.Cmd) {
	sub, err := m.ctrl.Submit(m.form.values())
	if err != nil {
		m.markInvalid(err)
		if notice := m.ctrl.Notice(); notice != "" {
			m.toasts.Error(notice)
			m.ctrl.ClearNotice()
		}
		return m, nil
	}

	m.invalid = map[string]bool{}
	m.inflight.cancelAll()
	ctx := m.inflight.start(m.ctx, sub.Seq, m.cfg.Service.Timeout())

	m.loading.SetDetail(sub.Request.Summary())
	startCmd := m.loading.Start()
	m.syncStatus()

	return m, tea.Batch(
		startCmd,
		submitCmd(ctx, m.svc, m.inflight, sub.Seq, sub.Request),
		watchdogCmd(sub.Seq, m.cfg.Service.Timeout()),
	)
}

func (m Model) handleAnalysisDone(msg analysisDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if m.ctrl.Reject(msg.Seq, msg.Err) {
			m.afterFailure()
		}
		return m, nil
	}
	if !m.ctrl.Resolve(msg.Seq, msg.Result) {
		return m, nil
	}
	m.loading.Stop()
	m.showRaw = false
	if doc, ok := m.ctrl.Document(); ok {
		m.header.Title = doc.Title()
	}
	m.refreshResult()
	m.viewport.GotoTop()
	m.syncStatus()
	return m, nil
}

// afterFailure runs once the controller has moved back to Input after a
// rejected or expired submission.
func (m *Model) afterFailure() {
	m.loading.Stop()
	if notice := m.ctrl.Notice(); notice != "" {
		m.toasts.Error(notice)
		m.ctrl.ClearNotice()
	}
	m.reloadForm()
	m.syncStatus()
}

// reloadForm copies the controller's form into the inputs when it has been
// reset since the last copy.
func (m *Model) reloadForm() {
	if rev := m.ctrl.FormRevision(); rev != m.formRev {
		m.form.load(m.ctrl.Form())
		m.formRev = rev
		m.invalid = map[string]bool{}
	}
}

func (m *Model) markInvalid(err error) {
	m.invalid = map[string]bool{}
	var verr *request.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			m.invalid[f] = true
		}
	}
}

// =============================================================================
// SIDE CHANNELS
// =============================================================================

// cycleBackend toggles between local and remote analysis. Remote is only
// offered once the service reports the remote backend as configured.
func (m Model) cycleBackend() (tea.Model, tea.Cmd) {
	if m.form.backend == request.BackendRemoteAPI {
		m.form.backend = request.BackendLocal
		m.syncStatus()
		return m, nil
	}
	if !m.remoteAI.Configured() {
		m.toasts.Error(MsgRemoteUnavailable)
		return m, remoteStatusCmd(m.ctx, m.svc)
	}
	m.form.backend = request.BackendRemoteAPI
	m.syncStatus()
	return m, nil
}

func (m Model) handleRemoteStatus(msg remoteAIStatusMsg) (tea.Model, tea.Cmd) {
	m.remoteChecked = true
	if msg.Err != nil {
		m.logger.Debug("remote ai status", zap.Error(msg.Err))
		m.remoteAI = client.RemoteAIStatus{Status: client.RemoteError, Message: controller.UserMessage(msg.Err)}
	} else {
		m.remoteAI = msg.Status
	}
	// RELIABILITY: never leave remote selected once the service withdraws it.
	if !m.remoteAI.Configured() && m.form.backend == request.BackendRemoteAPI {
		m.form.backend = request.BackendLocal
	}
	m.syncStatus()
	return m, nil
}

func (m Model) exportPDF() (tea.Model, tea.Cmd) {
	if *m.exporting {
		m.toasts.Info(MsgExportBusy)
		return m, nil
	}
	req, err := m.ctrl.ExportRequest()
	if err != nil {
		return m, nil
	}
	*m.exporting = true
	m.toasts.Info(MsgExporting)
	return m, exportPDFCmd(m.ctx, m.svc, req, m.exportOpts)
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// applyConfig swaps in a reloaded config. The theme, section table, request
// builder and export options follow the file; the service connection is
// fixed for the life of the process.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	service := m.cfg.Service
	m.cfg = cfg.Clone()
	m.cfg.Service = service

	m.theme = styles.NewTheme(cfg.UI.Theme)
	m.theme.SetSize(m.width, m.height)
	m.loading = components.NewLoadingIndicator(m.theme)
	m.header = components.NewHeader(m.theme)
	m.header.SetWidth(m.width)
	m.header.Service = service.BaseURL
	m.status = components.NewStatusBar(m.theme)
	m.status.SetWidth(m.width)

	if p, err := controller.PipelineFromConfig(cfg, m.logger); err != nil {
		m.logger.Warn("report variant", zap.Error(err))
	} else {
		m.ctrl.SetPipeline(p)
	}
	m.ctrl.SetBuilder(controller.BuilderFromConfig(cfg.Form))

	if opts, err := export.OptionsFromConfig(cfg.Export); err == nil {
		m.exportOpts = opts
	}

	if doc, ok := m.ctrl.Document(); ok && m.ctrl.State() == controller.StateResult {
		m.header.Title = doc.Title()
	}
	m.rebuildRenderer()
	m.refreshResult()
	m.syncStatus()
}
