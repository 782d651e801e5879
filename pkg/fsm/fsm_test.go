// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDoorFSM(t *testing.T) *FSM {
	t.Helper()
	f := New(WithName("door"))
	require.NoError(t, f.AddState("open", WithStable()))
	require.NoError(t, f.AddState("closed", WithStable()))
	require.NoError(t, f.AddState("locked", WithTerminal()))
	require.NoError(t, f.AddTransition("open", "closed", "close"))
	require.NoError(t, f.AddTransition("closed", "open", "open"))
	require.NoError(t, f.AddTransition("closed", "locked", "lock"))
	return f
}

func TestAddStateDuplicate(t *testing.T) {
	f := New()
	require.NoError(t, f.AddState("open"))
	err := f.AddState("open")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAddTransitionUndefinedStates(t *testing.T) {
	f := New()
	require.NoError(t, f.AddState("open"))

	err := f.AddTransition("open", "closed", "close")
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.AddTransition("closed", "open", "open")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTargetMustBeStable(t *testing.T) {
	f := New()
	require.NoError(t, f.AddState("pending"))
	err := f.AddState("active", WithTargetState("pending"))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTargetMustExist(t *testing.T) {
	f := New()
	err := f.AddState("active", WithTargetState("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitializeUndefinedState(t *testing.T) {
	f := New()
	require.NoError(t, f.AddState("open"))
	err := f.Initialize("closed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitializeFromTerminalState(t *testing.T) {
	f := New()
	require.NoError(t, f.AddState("locked", WithTerminal()))
	err := f.Initialize("locked")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProcessEventBeforeInitialize(t *testing.T) {
	f := buildDoorFSM(t)
	err := f.ProcessEvent(context.Background(), "close")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProcessEventWalksTransitions(t *testing.T) {
	f := buildDoorFSM(t)
	require.NoError(t, f.Initialize("open"))
	assert.Equal(t, "open", f.CurrentState())

	require.NoError(t, f.ProcessEvent(context.Background(), "close"))
	assert.Equal(t, "closed", f.CurrentState())

	require.NoError(t, f.ProcessEvent(context.Background(), "lock"))
	assert.Equal(t, "locked", f.CurrentState())
	assert.True(t, f.Terminated())
}

func TestProcessEventInvalidFromTerminal(t *testing.T) {
	f := buildDoorFSM(t)
	require.NoError(t, f.Initialize("closed"))
	require.NoError(t, f.ProcessEvent(context.Background(), "lock"))

	err := f.ProcessEvent(context.Background(), "open")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProcessEventUndefinedEvent(t *testing.T) {
	f := buildDoorFSM(t)
	require.NoError(t, f.Initialize("open"))
	err := f.ProcessEvent(context.Background(), "lock")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestIsValidEvent(t *testing.T) {
	f := buildDoorFSM(t)
	require.NoError(t, f.Initialize("open"))
	assert.True(t, f.IsValidEvent("close"))
	assert.False(t, f.IsValidEvent("lock"))
}

func TestTargetStateTracking(t *testing.T) {
	f := New()
	require.NoError(t, f.AddState("available", WithStable()))
	require.NoError(t, f.AddState("deploying"))
	require.NoError(t, f.AddState("active", WithStable(), WithTargetState("available")))
	require.NoError(t, f.AddTransition("available", "deploying", "deploy"))
	require.NoError(t, f.AddTransition("deploying", "active", "deploy_complete"))
	require.NoError(t, f.Initialize("available"))

	assert.Empty(t, f.TargetState())

	require.NoError(t, f.ProcessEvent(context.Background(), "deploy"))
	assert.Empty(t, f.TargetState())

	require.NoError(t, f.ProcessEvent(context.Background(), "deploy_complete"))
	assert.Equal(t, "active", f.CurrentState())
}

func TestEntryExitHooksRunInOrder(t *testing.T) {
	var calls []string
	f := New()
	require.NoError(t, f.AddState("open", WithStable(), WithOnExit(func(_ context.Context, state, event string) error {
		calls = append(calls, "exit:"+state+":"+event)
		return nil
	})))
	require.NoError(t, f.AddState("closed", WithStable(), WithOnEnter(func(_ context.Context, state, event string) error {
		calls = append(calls, "enter:"+state+":"+event)
		return nil
	})))
	require.NoError(t, f.AddTransition("open", "closed", "close"))
	require.NoError(t, f.Initialize("open"))

	require.NoError(t, f.ProcessEvent(context.Background(), "close"))
	assert.Equal(t, []string{"exit:open:close", "enter:closed:close"}, calls)
}

func TestCopyShallowSharesTables(t *testing.T) {
	f := buildDoorFSM(t)
	c := f.Copy(true)

	require.NoError(t, c.Initialize("open"))
	assert.Empty(t, f.CurrentState(), "source machine must remain uninitialized")
	assert.Equal(t, "open", c.CurrentState())

	require.NoError(t, c.AddState("extra"))
	assert.True(t, f.Contains("extra"), "shallow copy shares the state table")
}

func TestCopyDeepIsIndependent(t *testing.T) {
	f := buildDoorFSM(t)
	c := f.Copy(false)

	require.NoError(t, c.AddState("extra"))
	assert.False(t, f.Contains("extra"), "deep copy must not mutate the source")
}

func TestTransitionsAndEventCount(t *testing.T) {
	f := buildDoorFSM(t)
	assert.Equal(t, 3, f.EventCount())
	assert.Len(t, f.Transitions(), 3)
	assert.ElementsMatch(t, []string{"open", "closed", "locked"}, f.States())
}
