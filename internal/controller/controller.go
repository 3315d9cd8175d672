// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/report"
	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// =============================================================================
// STATES AND EVENTS
// =============================================================================

// State is the current view.
type State int

const (
	StateInput State = iota
	StateLoading
	StateResult
	StateError
)

func (s State) String() string {
	switch s {
	case StateInput:
		return "input"
	case StateLoading:
		return "loading"
	case StateResult:
		return "result"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an event is not allowed in the
// current state. The state is unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

// MsgTimeout is shown when a live request expires.
const MsgTimeout = "请求超时，请稍后重试"

// ErrExpired is the failure recorded by Expire.
var ErrExpired error = expiredError{}

type expiredError struct{}

func (expiredError) Error() string       { return "analysis request expired" }
func (expiredError) UserMessage() string { return MsgTimeout }

// Transition is reported to observers after every state change.
type Transition struct {
	From State
	To   State
	// Seq is the live submission sequence at the time of the change.
	Seq uint64
}

// Observer receives transitions synchronously.
type Observer func(Transition)

// Submission is the request the shell must send for a Loading episode.
type Submission struct {
	Seq     uint64
	Request request.AnalysisRequest
}

// UserMessage returns the text to show for err. Errors that know their
// user-facing text expose it through a UserMessage method.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the view state, the form, the live sequence number and
// the last result of one session.
type Controller struct {
	state State
	seq   uint64

	pipeline *report.Pipeline
	builder  *request.Builder

	form         request.RawFields
	formDefaults request.RawFields
	formRevision uint64
	notice       string

	lastRequest request.AnalysisRequest
	hasRequest  bool
	result      payload.Value
	blocks      []report.Block
	renderedAt  time.Time

	observers []Observer
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers an observer for every transition.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the document timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithFormDefaults sets the values a reset form starts from.
func WithFormDefaults(defaults request.RawFields) Option {
	return func(c *Controller) {
		c.formDefaults = defaults.Clone()
	}
}

// New creates a controller in the Input state. A nil builder uses the
// package defaults.
func New(p *report.Pipeline, b *request.Builder, opts ...Option) *Controller {
	if b == nil {
		b = request.NewBuilder()
	}
	c := &Controller{
		state:        StateInput,
		pipeline:     p,
		builder:      b,
		formDefaults: request.RawFields{},
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("controller")
	c.form = c.formDefaults.Clone()
	return c
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Seq returns the sequence number of the most recent submission.
func (c *Controller) Seq() uint64 { return c.seq }

// Form returns a copy of the current form contents.
func (c *Controller) Form() request.RawFields { return c.form.Clone() }

// FormRevision changes every time the form is reset. Shells compare it to
// decide when to reload their input widgets.
func (c *Controller) FormRevision() uint64 { return c.formRevision }

// Notice is the last user-facing message, or "".
func (c *Controller) Notice() string { return c.notice }

// ClearNotice dismisses the notice.
func (c *Controller) ClearNotice() { c.notice = "" }

// Pipeline returns the active pipeline.
func (c *Controller) Pipeline() *report.Pipeline { return c.pipeline }

// Result returns the stored result; it is Missing outside Result.
func (c *Controller) Result() payload.Value { return c.result }

// Blocks returns the rendered blocks of the stored result.
func (c *Controller) Blocks() []report.Block {
	out := make([]report.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Document returns the rendered report. ok is false outside Result.
func (c *Controller) Document() (report.Document, bool) {
	if c.state != StateResult {
		return report.Document{}, false
	}
	req := c.lastRequest
	doc := report.Document{
		GeneratedAt: c.renderedAt,
		Request:     &req,
		Blocks:      c.Blocks(),
	}
	if c.pipeline != nil {
		doc.Variant = c.pipeline.Table().Name
	}
	return doc, true
}

// =============================================================================
// EVENTS
// =============================================================================

// Submit validates raw and starts a Loading episode. In Loading a valid
// submission supersedes the live one. Invalid input leaves the state
// unchanged and sets the notice; the returned error is the validation
// failure. Submit is rejected in Result.
func (c *Controller) Submit(raw request.RawFields) (Submission, error) {
	switch c.state {
	case StateInput, StateLoading:
	default:
		return Submission{}, c.invalid("submit")
	}

	c.form = raw.Clone()
	req, err := c.builder.Build(raw)
	if err != nil {
		c.notice = UserMessage(err)
		c.logger.Debug("submission rejected", zap.String("state", c.state.String()), zap.Error(err))
		return Submission{}, err
	}

	c.seq++
	c.lastRequest = req
	c.hasRequest = true
	c.notice = ""
	c.transition(StateLoading)
	c.logger.Info("submission", zap.Uint64("seq", c.seq), zap.String("request", req.Summary()))
	return Submission{Seq: c.seq, Request: req}, nil
}

// Resolve applies a successful outcome. It reports whether the outcome was
// applied; outcomes for any other sequence, or outside Loading, are dropped.
func (c *Controller) Resolve(seq uint64, result payload.Value) bool {
	if !c.live(seq, "resolve") {
		return false
	}
	c.result = result
	c.render()
	c.transition(StateResult)
	return true
}

// Reject applies a failed outcome: the notice is set from err, the
// machine passes through Error and lands in Input with a reset form.
func (c *Controller) Reject(seq uint64, err error) bool {
	if !c.live(seq, "reject") {
		return false
	}
	if err == nil {
		err = errors.New("analysis failed")
	}
	c.notice = UserMessage(err)
	c.logger.Warn("analysis failed", zap.Uint64("seq", seq), zap.Error(err))
	c.transition(StateError)
	c.resetForm()
	c.transition(StateInput)
	return true
}

// Expire times out the live request. It is Reject with ErrExpired.
func (c *Controller) Expire(seq uint64) bool {
	return c.Reject(seq, ErrExpired)
}

// NewAnalysis discards the result and returns to a reset form. In Input it
// only resets the form. It is rejected in Loading.
func (c *Controller) NewAnalysis() error {
	switch c.state {
	case StateResult:
		c.result = payload.Missing
		c.blocks = nil
		c.resetForm()
		c.transition(StateInput)
		return nil
	case StateInput:
		c.resetForm()
		return nil
	default:
		return c.invalid("new analysis")
	}
}

// ExportRequest returns the request behind the shown result.
func (c *Controller) ExportRequest() (request.AnalysisRequest, error) {
	if c.state != StateResult || !c.hasRequest {
		return request.AnalysisRequest{}, c.invalid("export")
	}
	return c.lastRequest, nil
}

// SetPipeline swaps the section table. A shown result is re-rendered.
func (c *Controller) SetPipeline(p *report.Pipeline) {
	c.pipeline = p
	if c.state == StateResult {
		c.render()
	}
}

// SetBuilder swaps the request builder, for example after a config reload.
func (c *Controller) SetBuilder(b *request.Builder) {
	if b != nil {
		c.builder = b
	}
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Controller) live(seq uint64, event string) bool {
	if c.state == StateLoading && seq == c.seq {
		return true
	}
	c.logger.Debug("stale outcome dropped",
		zap.String("event", event),
		zap.Uint64("seq", seq),
		zap.Uint64("live_seq", c.seq),
		zap.String("state", c.state.String()))
	return false
}

func (c *Controller) invalid(event string) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, event, c.state)
}

func (c *Controller) render() {
	c.renderedAt = c.now()
	if c.pipeline == nil {
		c.blocks = nil
		return
	}
	c.blocks = c.pipeline.Render(c.result)
}

func (c *Controller) resetForm() {
	c.form = c.formDefaults.Clone()
	c.formRevision++
}

func (c *Controller) transition(to State) {
	t := Transition{From: c.state, To: to, Seq: c.seq}
	c.state = to
	c.logger.Debug("transition",
		zap.String("from", t.From.String()),
		zap.String("to", t.To.String()),
		zap.Uint64("seq", t.Seq))
	for _, o := range c.observers {
		o(t)
	}
}
