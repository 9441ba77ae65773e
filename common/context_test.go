package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTxn struct {
	id uint64
	ro bool
}

func (s stubTxn) ID() uint64     { return s.id }
func (s stubTxn) ReadOnly() bool { return s.ro }

func TestExecutionContextNotCancelledInitially(t *testing.T) {
	ec := NewExecutionContext(context.Background(), "q1", DefaultConfig(), stubTxn{id: 1}, nil, nil)
	defer ec.Close()

	assert.False(t, ec.Cancelled(), "a fresh ExecutionContext should not be cancelled")
	assert.NoError(t, ec.CheckInterrupted())
}

func TestExecutionContextCancel(t *testing.T) {
	ec := NewExecutionContext(context.Background(), "q2", DefaultConfig(), stubTxn{id: 1}, nil, nil)
	defer ec.Close()

	ec.Cancel()
	// watch() propagates cancellation asynchronously; poll briefly.
	deadline := time.Now().Add(time.Second)
	for !ec.Cancelled() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.True(t, ec.Cancelled(), "Cancel() should eventually set Cancelled() to true")

	err := ec.CheckInterrupted()
	require.Error(t, err, "expected InterruptedError after Cancel()")
	ie, ok := err.(*InterruptedError)
	require.True(t, ok, "CheckInterrupted() = %v, want *InterruptedError", err)
	assert.Equal(t, "user interrupt", ie.Reason)
}

func TestExecutionContextTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	ec := NewExecutionContext(context.Background(), "q3", cfg, stubTxn{id: 1}, nil, nil)
	defer ec.Close()

	deadline := time.Now().Add(time.Second)
	for !ec.Cancelled() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	err := ec.CheckInterrupted()
	require.Error(t, err, "expected InterruptedError after the configured timeout elapses")
	ie, ok := err.(*InterruptedError)
	require.True(t, ok, "CheckInterrupted() = %v, want *InterruptedError", err)
	assert.Equal(t, "query timeout", ie.Reason)
}

func TestExecutionContextChildLogger(t *testing.T) {
	ec := NewExecutionContext(context.Background(), "q4", DefaultConfig(), stubTxn{id: 1}, nil, nil)
	defer ec.Close()

	assert.NotNil(t, ec.Child(3), "Child(3) should return a non-nil logger entry")
}
