package hooks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soyeahso/reactor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var called bool
	m.On(EventBeforeAgentRun, "test", func(_ context.Context, p Payload) error {
		called = true
		assert.Equal(t, EventBeforeAgentRun, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventBeforeAgentRun, nil)
	assert.True(t, called)
}

func TestManager_Emit_MultipleHandlers(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventActionExecuted, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventActionExecuted, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventActionExecuted, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_WithData(t *testing.T) {
	m := testManager()

	var gotData map[string]any
	m.On(EventActionExecuted, "test", func(_ context.Context, p Payload) error {
		gotData = p.Data
		return nil
	})

	m.Emit(context.Background(), EventActionExecuted, map[string]any{
		"action": "get_weather",
		"result": "sunny",
	})

	assert.Equal(t, "get_weather", gotData["action"])
	assert.Equal(t, "sunny", gotData["result"])
}

func TestManager_Emit_HandlerError(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventAfterAgentRun, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventAfterAgentRun, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	m.Emit(context.Background(), EventAfterAgentRun, nil)
	assert.True(t, secondCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	m.Emit(context.Background(), EventAfterAgentRun, nil)
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	var callCount int
	m.On(EventBeforeAgentRun, "removable", func(_ context.Context, _ Payload) error {
		callCount++
		return nil
	})

	m.Emit(context.Background(), EventBeforeAgentRun, nil)
	assert.Equal(t, 1, callCount)

	m.Off(EventBeforeAgentRun, "removable")
	m.Emit(context.Background(), EventBeforeAgentRun, nil)
	assert.Equal(t, 1, callCount)
}

func TestManager_Off_KeepsOthers(t *testing.T) {
	m := testManager()

	var keepCalled int
	m.On(EventBeforeAgentRun, "remove-me", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventBeforeAgentRun, "keep-me", func(_ context.Context, _ Payload) error {
		keepCalled++
		return nil
	})

	m.Off(EventBeforeAgentRun, "remove-me")
	m.Emit(context.Background(), EventBeforeAgentRun, nil)
	assert.Equal(t, 1, keepCalled)
}

func TestManager_Count(t *testing.T) {
	m := testManager()

	assert.Equal(t, 0, m.Count(EventAfterAgentRun))

	m.On(EventAfterAgentRun, "h1", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 1, m.Count(EventAfterAgentRun))

	m.On(EventAfterAgentRun, "h2", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 2, m.Count(EventAfterAgentRun))
}

func TestManager_Events(t *testing.T) {
	m := testManager()

	m.On(EventBeforeAgentRun, "h1", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventActionExecuted, "h2", func(_ context.Context, _ Payload) error { return nil })

	events := m.Events()
	assert.Len(t, events, 2)
	assert.Contains(t, events, EventBeforeAgentRun)
	assert.Contains(t, events, EventActionExecuted)
}

func TestAllEvents_NotEmpty(t *testing.T) {
	require.NotEmpty(t, AllEvents)
	assert.Contains(t, AllEvents, EventAfterAgentRun)
}

func TestCommandHandler_WritesPayload(t *testing.T) {
	out := filepath.Join(t.TempDir(), "payload.json")
	h := CommandHandler("cat > "+out, time.Second)

	err := h(context.Background(), Payload{
		Event: EventAfterAgentRun,
		Data:  map[string]any{"answer": "It is sunny in Paris."},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"after_agent_run"`)
	assert.Contains(t, string(data), "It is sunny in Paris.")
}

func TestCommandHandler_Failure(t *testing.T) {
	h := CommandHandler("echo boom >&2; exit 3", time.Second)

	err := h(context.Background(), Payload{Event: EventBeforeAgentRun})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCommandHandler_Timeout(t *testing.T) {
	h := CommandHandler("sleep 5", 50*time.Millisecond)

	start := time.Now()
	err := h(context.Background(), Payload{Event: EventBeforeAgentRun})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCommandHandler_TimeoutWithChildHoldingStderr(t *testing.T) {
	h := CommandHandler("cat >/dev/null; sleep 3; true", 50*time.Millisecond)

	start := time.Now()
	err := h(context.Background(), Payload{Event: EventActionExecuted})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
