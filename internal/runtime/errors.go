// Package runtime implements the Action-Graph Runtime: the generic
// multi-step, multi-turn executor that drives every Action as a declarative
// program of function, llm, and action steps.
package runtime

import (
	"errors"
	"fmt"
)

// Kind is the stable error taxonomy surfaced across every boundary in the
// system, not just the runtime: the gateway and bridge packages also
// construct *Error values using these kinds.
type Kind string

const (
	KindInvalidTab            Kind = "InvalidTab"
	KindRestricted            Kind = "Restricted"
	KindBrowserErrorPage      Kind = "BrowserErrorPage"
	KindTabGone               Kind = "TabGone"
	KindScriptInjectionFailed Kind = "ScriptInjectionFailed"
	KindTimeout               Kind = "Timeout"
	KindModelCallFailed       Kind = "ModelCallFailed"
	KindAllModelsFailed       Kind = "AllModelsFailed"
	KindSchemaParseFailed     Kind = "SchemaParseFailed"
	KindMaxIterations         Kind = "MaxIterations"
	KindOversizedEvent        Kind = "OversizedEvent"
)

// Error is the structured error type every component in this module
// returns at its public boundary, carrying a stable Kind plus an optional
// underlying Cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Detail  map[string]any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an *Error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds an *Error wrapping cause under the given kind.
func WrapError(kind Kind, cause error) *Error {
	if cause == nil {
		return &Error{Kind: kind}
	}
	return &Error{Kind: kind, Message: cause.Error(), Cause: cause}
}

// WithDetail attaches structured detail to the error and returns it,
// for callers that want to enrich an error without a new constructor.
func (e *Error) WithDetail(detail map[string]any) *Error {
	e.Detail = detail
	return e
}

// KindOf extracts the Kind of err if it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is, or wraps, an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
