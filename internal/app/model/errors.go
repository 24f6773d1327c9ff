package model

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrFoundTwoUsers = errors.New("found two users")
	ErrScanSqlRow    = errors.New("failed to scan sql row")
	ErrEmptyRegistry = errors.New("registry has no handlers")
	ErrNotAdmin      = errors.New("user is not an admin")
)

type ConfigurationReason string

const (
	ReasonMissingMeta      ConfigurationReason = "missing_meta"
	ReasonMissingName      ConfigurationReason = "missing_name"
	ReasonInvalidCacheTime ConfigurationReason = "invalid_cache_time"
	ReasonInvalidTrigger   ConfigurationReason = "invalid_trigger"
	ReasonNilHandler       ConfigurationReason = "nil_handler"
	ReasonDuplicateTrigger ConfigurationReason = "duplicate_trigger"
	ReasonConstructor      ConfigurationReason = "constructor_failed"
)

// ConfigurationError is raised while a handler unit is being built. The
// registry logs it and skips the unit.
type ConfigurationError struct {
	Reason  ConfigurationReason
	Handler string
	Err     error
}

func NewConfigurationError(reason ConfigurationReason, handler string, err error) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Handler: handler, Err: err}
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error (%s)", e.Reason)
	if e.Handler != "" {
		msg += " in handler " + e.Handler
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type ErrorKind string

const (
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindTimeout             ErrorKind = "timeout"
	KindInternal            ErrorKind = "internal"
)

// HandlerError is the only error a handler unit is expected to return.
type HandlerError struct {
	Kind ErrorKind
	Err  error
}

func NewHandlerError(kind ErrorKind, err error) *HandlerError {
	return &HandlerError{Kind: kind, Err: err}
}

func InvalidInput(format string, args ...interface{}) *HandlerError {
	return NewHandlerError(KindInvalidInput, fmt.Errorf(format, args...))
}

// UpstreamError classifies a failed read from a data collaborator. When the
// caller's own deadline has already passed the failure counts as a timeout.
func UpstreamError(ctx context.Context, err error) *HandlerError {
	if ctx.Err() == context.DeadlineExceeded {
		return NewHandlerError(KindTimeout, err)
	}
	return NewHandlerError(KindUpstreamUnavailable, err)
}

func (e *HandlerError) Error() string {
	if e.Err == nil {
		return "handler error: " + string(e.Kind)
	}
	return fmt.Sprintf("handler error: %s: %s", e.Kind, e.Err.Error())
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal when err is not a HandlerError.
func KindOf(err error) ErrorKind {
	var herr *HandlerError
	if errors.As(err, &herr) {
		return herr.Kind
	}
	return KindInternal
}
