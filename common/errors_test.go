package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessagesIncludeKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ParserError{Msg: "bad token"}, "parser error: bad token"},
		{&BinderError{Msg: "unknown variable n"}, "binder error: unknown variable n"},
		{&CatalogError{Msg: "unknown table x"}, "catalog error: unknown table x"},
		{&PlannerError{Msg: "no viable plan"}, "planner error: no viable plan"},
		{&InterruptedError{Reason: "user interrupt"}, "interrupted: user interrupt"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.Error())
	}
}

func TestParserErrorIncludesLocation(t *testing.T) {
	err := &ParserError{Msg: "unexpected token", At: Location{Line: 2, Column: 5}}
	assert.Contains(t, err.Error(), "2:5")
}

func TestRuntimeErrorWrapsCause(t *testing.T) {
	cause := errors.New("division by zero")
	err := NewRuntimeError("arithmetic failure", cause)
	assert.Contains(t, err.Error(), "arithmetic failure")
	require.NotNil(t, errors.Unwrap(err), "RuntimeError should unwrap to its cause")
	assert.NotEmpty(t, err.StackTrace(), "StackTrace() should be non-empty when cause is wrapped via pkg/errors")
}

func TestRuntimeErrorWithoutCause(t *testing.T) {
	err := NewRuntimeError("overflow", nil)
	assert.Nil(t, err.Cause, "NewRuntimeError(msg, nil) should leave Cause nil")
	assert.Empty(t, err.StackTrace(), "StackTrace() should be empty with no cause")
}

func TestInternalErrorWrapsCause(t *testing.T) {
	cause := errors.New("invariant violated")
	err := NewInternalError("bad state", cause)
	assert.Contains(t, err.Error(), "bad state")
	require.NotNil(t, errors.Unwrap(err), "InternalError should unwrap to its cause")
}
