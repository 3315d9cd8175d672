// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"net"
	"strconv"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeNetwork covers transport failures, cancellation and timeouts.
	ErrTypeNetwork
	// ErrTypeService is a well-formed failure reported by the service.
	ErrTypeService
	// ErrTypeMalformed is a response that does not fit the envelope.
	ErrTypeMalformed
	// ErrTypeInvalidInput is rejected locally before any request is made.
	ErrTypeInvalidInput
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeNetwork:
		return "network"
	case ErrTypeService:
		return "service"
	case ErrTypeMalformed:
		return "malformed"
	case ErrTypeInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgNetwork        = "网络请求失败，请检查网络连接"
	MsgTimeout        = "请求超时，请稍后重试"
	MsgAnalysisFailed = "分析失败，请重试"
	MsgMalformed      = "服务响应异常，请稍后重试"
	MsgPDFFailed      = "PDF生成失败"
	MsgAPIKeyRequired = "请先输入API Key"
	MsgHTTPSRequired  = "API URL必须使用HTTPS"
)

// ClientError represents a failed call to the analysis service.
type ClientError struct {
	Type ErrorType
	// Message is shown to the user as is.
	Message string
	// Status is the HTTP status, zero when no response arrived.
	Status int
	Cause  error
}

func (e *ClientError) Error() string {
	msg := e.Type.String() + ": " + e.Message
	if e.Status != 0 {
		msg += " (HTTP " + strconv.Itoa(e.Status) + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text to display for this failure.
func (e *ClientError) UserMessage() string {
	return e.Message
}

func typeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return typeOf(err) == ErrTypeNetwork }

// IsService reports whether err was reported by the service.
func IsService(err error) bool { return typeOf(err) == ErrTypeService }

// IsMalformed reports whether the service answered with an unusable body.
func IsMalformed(err error) bool { return typeOf(err) == ErrTypeMalformed }

// IsInvalidInput reports whether err was rejected before sending.
func IsInvalidInput(err error) bool { return typeOf(err) == ErrTypeInvalidInput }

// IsTimeout reports whether err is a network failure caused by a deadline.
func IsTimeout(err error) bool {
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeNetwork {
		return false
	}
	return isDeadline(ce.Cause)
}

func isDeadline(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// networkError classifies a transport failure.
func networkError(err error) *ClientError {
	msg := MsgNetwork
	if isDeadline(err) {
		msg = MsgTimeout
	}
	return &ClientError{Type: ErrTypeNetwork, Message: msg, Cause: err}
}

func malformedError(status int, cause error) *ClientError {
	return &ClientError{Type: ErrTypeMalformed, Message: MsgMalformed, Status: status, Cause: cause}
}

func serviceError(status int, msg string) *ClientError {
	if msg == "" {
		msg = MsgAnalysisFailed
	}
	return &ClientError{Type: ErrTypeService, Message: msg, Status: status}
}

// ErrMissingFlag is the cause of a malformed error when a 2xx body carries
// no success flag.
var ErrMissingFlag = errors.New("response has no success flag")

// ErrMissingPayload is the cause of a malformed error when a successful
// envelope carries no object payload.
var ErrMissingPayload = errors.New("response has no result object")
