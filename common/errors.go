// Package common holds types shared across every layer of the query
// execution core: error kinds, the execution context, and session
// configuration.
package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// Location is a best-effort source position for diagnostics. Zero value
// means "unknown" and is omitted from formatted messages.
type Location struct {
	Line, Column int
}

func (l Location) String() string {
	if l.Line == 0 && l.Column == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// ParserError is produced by the parser, before the core ever sees a
// statement. The core only ever wraps/forwards it.
type ParserError struct {
	Msg string
	At  Location
}

func (e *ParserError) Error() string { return fmtErr("parser error", e.Msg, e.At) }

// BinderError covers unknown names, type mismatches, ambiguous overloads,
// and illegal casts of non-ANY types (spec.md §7).
type BinderError struct {
	Msg string
	At  Location
}

func (e *BinderError) Error() string { return fmtErr("binder error", e.Msg, e.At) }

// CatalogError covers table/property/function not found or duplicate.
type CatalogError struct {
	Msg string
}

func (e *CatalogError) Error() string { return fmtErr("catalog error", e.Msg, Location{}) }

// PlannerError covers "no viable plan" situations (e.g. unsupported join
// pattern, or an operator requirement the mapper could not realize).
type PlannerError struct {
	Msg string
}

func (e *PlannerError) Error() string { return fmtErr("planner error", e.Msg, Location{}) }

// RuntimeError covers arithmetic overflow, division by zero, invalid utf-8,
// out-of-memory, I/O failure, and primary-key conflicts during copy. It
// carries a stack trace (via github.com/pkg/errors) captured at the point
// of failure so QuerySummary can report it without it leaking into the
// user-facing message.
type RuntimeError struct {
	Msg   string
	Cause error
}

func (e *RuntimeError) Error() string { return fmtErr("runtime error", e.Msg, Location{}) }
func (e *RuntimeError) Unwrap() error { return e.Cause }

// NewRuntimeError wraps cause with a stack trace and a user-facing message.
func NewRuntimeError(msg string, cause error) *RuntimeError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &RuntimeError{Msg: msg, Cause: cause}
}

// StackTrace returns the formatted stack trace attached to the error's
// cause, if any, for QuerySummary.ErrorTrace.
func (e *RuntimeError) StackTrace() string {
	type stackTracer interface{ StackTrace() errors.StackTrace }
	if st, ok := e.Cause.(stackTracer); ok {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}

// InterruptedError signals cooperative cancellation: a query timeout or an
// explicit user interrupt.
type InterruptedError struct {
	Reason string
}

func (e *InterruptedError) Error() string { return fmtErr("interrupted", e.Reason, Location{}) }

// InternalError signals an invariant violation. It is never catchable by
// user queries and aborts the enclosing transaction.
type InternalError struct {
	Msg   string
	Cause error
}

func (e *InternalError) Error() string { return fmtErr("internal error", e.Msg, Location{}) }
func (e *InternalError) Unwrap() error { return e.Cause }

// NewInternalError wraps cause with a stack trace.
func NewInternalError(msg string, cause error) *InternalError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &InternalError{Msg: msg, Cause: cause}
}

func fmtErr(kind, msg string, at Location) string {
	if s := at.String(); s != "" {
		return fmt.Sprintf("%s: %s (at %s)", kind, msg, s)
	}
	return fmt.Sprintf("%s: %s", kind, msg)
}
