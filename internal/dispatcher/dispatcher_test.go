package dispatcher_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dshills/keyact/internal/dispatcher"
	"github.com/dshills/keyact/internal/dispatcher/command"
	"github.com/dshills/keyact/internal/dispatcher/execctx"
	"github.com/dshills/keyact/internal/dispatcher/handlers/number"
	"github.com/dshills/keyact/internal/engine/buffer"
)

// forgetful embeds command.Base without providing ApplyOnce.
type forgetful struct {
	command.Base
}

func (c *forgetful) ApplyRepeated(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
	return command.Repeat(ctx, c, pos, st)
}

func newDispatcher(t *testing.T, config dispatcher.Config, opts ...dispatcher.Option) *dispatcher.Dispatcher {
	t.Helper()
	d := dispatcher.New(config, opts...)
	d.Register(number.ActionIncrement, number.NewIncrement())
	d.Register(number.ActionDecrement, number.NewDecrement())
	return d
}

func state(text string, char int) (*buffer.Buffer, *execctx.ExecutionState) {
	buf := buffer.NewBufferFromString(text)
	return buf, execctx.New(buf, buffer.NewPosition(0, char))
}

func increment(count int) dispatcher.Action {
	return dispatcher.Action{Name: number.ActionIncrement, Count: count}
}

func TestNewWithDefaults(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	require.NotNil(t, d.Registry())
	assert.Nil(t, d.Metrics(), "metrics are off by default")
	assert.True(t, d.Config().RecoverFromPanic)
	assert.Equal(t, 10000, d.Config().MaxRepeatCount)
}

func TestExecuteUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics(),
		dispatcher.WithLogger(slog.New(slog.NewJSONHandler(&out, nil))),
		dispatcher.WithTracer(provider.Tracer("test")),
	)
	_, st := state("1", 0)

	res := d.Execute(context.Background(), dispatcher.Action{Name: "missing"}, st)

	assert.Equal(t, dispatcher.StatusError, res.Status)
	assert.ErrorIs(t, res.Error, dispatcher.ErrUnknownCommand)
	assert.NotEmpty(t, res.InvocationID)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String(dispatcher.AttrCommand, "missing"))

	assert.Equal(t, uint64(1), d.Metrics().TotalErrors())
	assert.Contains(t, out.String(), `"command":"missing"`)
	assert.Contains(t, out.String(), `"level":"ERROR"`)
}

func TestExecuteEmptyName(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	buf, st := state("1", 0)

	res := d.Execute(context.Background(), dispatcher.Action{Count: 2}, st)

	assert.True(t, res.IsError())
	assert.ErrorIs(t, res.Error, dispatcher.ErrInvalidAction)
	assert.Equal(t, "1", buf.Text())
}

func TestExecuteIncrement(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	buf, st := state("x 5", 0)

	res := d.Execute(context.Background(), increment(3), st)

	require.NoError(t, res.Error)
	assert.Equal(t, dispatcher.StatusOK, res.Status)
	assert.Equal(t, "x 8", buf.Text())
	assert.Equal(t, buffer.NewPosition(0, 2), res.Cursor)
	assert.Equal(t, res.Cursor, st.Cursor)
	assert.Zero(t, st.Recorded.Count, "recorded count is cleared")

	_, err := uuid.Parse(res.InvocationID)
	assert.NoError(t, err)
}

func TestExecuteDecrementGrowsSign(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	buf, st := state("n = 0", 0)

	res := d.Execute(context.Background(), dispatcher.Action{Name: number.ActionDecrement}, st)

	require.True(t, res.IsOK())
	assert.Equal(t, "n = -1", buf.Text())
	assert.Equal(t, buffer.NewPosition(0, 5), res.Cursor)

	changes := buf.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, buffer.ChangeDelete, changes[0].Type)
	assert.Equal(t, buffer.ChangeInsert, changes[1].Type)
}

func TestExecuteNoMatchIsNoOp(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	buf, st := state("foo bar", 2)

	res := d.Execute(context.Background(), increment(0), st)

	require.NoError(t, res.Error)
	assert.Equal(t, dispatcher.StatusNoOp, res.Status)
	assert.Equal(t, "foo bar", buf.Text())
	assert.Equal(t, buffer.NewPosition(0, 2), res.Cursor)
}

func TestExecuteMissingEngine(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())

	res := d.Execute(context.Background(), increment(0), execctx.New(nil, buffer.Position{}))

	assert.True(t, res.IsError())
	assert.ErrorIs(t, res.Error, execctx.ErrMissingEngine)
}

func TestExecuteClampsCount(t *testing.T) {
	var seen int
	d := dispatcher.New(dispatcher.DefaultConfig().WithMaxRepeatCount(4))
	d.Register("probe", command.NewFunc(command.DefaultFlags(),
		func(_ context.Context, _ buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
			seen = st.Recorded.Count
			return st, nil
		}))
	_, st := state("", 0)

	d.Execute(context.Background(), dispatcher.Action{Name: "probe", Count: 100}, st)
	assert.Equal(t, 4, seen)

	d.Execute(context.Background(), dispatcher.Action{Name: "probe", Count: -3}, st)
	assert.Equal(t, 0, seen)
}

func TestIncompleteActionIsNotRun(t *testing.T) {
	called := false
	d := dispatcher.NewWithDefaults()
	d.Register("partial", command.NewFunc(command.Flags{},
		func(_ context.Context, _ buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
			called = true
			return st, nil
		}))
	_, st := state("1", 0)

	res := d.Execute(context.Background(), dispatcher.Action{Name: "partial"}, st)

	assert.False(t, called)
	assert.Equal(t, dispatcher.StatusNoOp, res.Status)
	assert.Equal(t, "incomplete action", res.Message)
}

func TestRepeatLast(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	buf, st := state("1", 0)
	ctx := context.Background()

	res := d.RepeatLast(ctx, 0, st)
	require.ErrorIs(t, res.Error, dispatcher.ErrNothingToRepeat)

	require.True(t, d.Execute(ctx, increment(2), st).IsOK())
	assert.Equal(t, "3", buf.Text())

	require.True(t, d.RepeatLast(ctx, 0, st).IsOK())
	assert.Equal(t, "5", buf.Text())

	require.True(t, d.RepeatLast(ctx, 10, st).IsOK())
	assert.Equal(t, "15", buf.Text())

	// The new count sticks for later repeats.
	require.True(t, d.RepeatLast(ctx, 0, st).IsOK())
	assert.Equal(t, "25", buf.Text())

	last, ok := d.LastAction()
	require.True(t, ok)
	assert.Equal(t, increment(10), last)
}

func TestRepeatLastFindsSameNumber(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	buf, st := state("x = 7;", 0)
	ctx := context.Background()

	require.Equal(t, dispatcher.StatusOK, d.Execute(ctx, increment(0), st).Status)
	require.Equal(t, dispatcher.StatusOK, d.RepeatLast(ctx, 0, st).Status)
	assert.Equal(t, "x = 9;", buf.Text())

	require.Equal(t, dispatcher.StatusOK, d.RepeatLast(ctx, 0, st).Status)
	assert.Equal(t, "x = 10;", buf.Text())
	assert.Equal(t, buffer.NewPosition(0, 5), st.Cursor)
}

func TestRepeatLastSkipsNonRepeatable(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	d.Register("cursor.right", command.NewFunc(command.DefaultFlags(),
		func(_ context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
			st.Cursor = pos.Right()
			return st, nil
		}))
	buf, st := state("7 x", 0)
	ctx := context.Background()

	require.True(t, d.Execute(ctx, increment(0), st).IsOK())
	require.True(t, d.Execute(ctx, dispatcher.Action{Name: "cursor.right"}, st).IsOK())

	last, ok := d.LastAction()
	require.True(t, ok)
	assert.Equal(t, number.ActionIncrement, last.Name)

	st.Cursor = buffer.Position{}
	require.True(t, d.RepeatLast(ctx, 0, st).IsOK())
	assert.Equal(t, "9 x", buf.Text())
}

func TestFailedCommandIsNotRecorded(t *testing.T) {
	boom := errors.New("boom")
	d := dispatcher.NewWithDefaults()
	d.Register("fails", command.NewFunc(command.Flags{CompleteAction: true, DotRepeat: true},
		func(_ context.Context, _ buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
			return st, boom
		}))
	_, st := state("1", 0)

	res := d.Execute(context.Background(), dispatcher.Action{Name: "fails"}, st)

	assert.ErrorIs(t, res.Error, boom)
	_, ok := d.LastAction()
	assert.False(t, ok)
}

func TestPanicRecovery(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	d.Register("explodes", command.NewFunc(command.DefaultFlags(),
		func(context.Context, buffer.Position, *execctx.ExecutionState) (*execctx.ExecutionState, error) {
			panic("kaboom")
		}))
	_, st := state("1", 0)

	res := d.Execute(context.Background(), dispatcher.Action{Name: "explodes", Count: 2}, st)

	assert.Equal(t, dispatcher.StatusError, res.Status)
	assert.ErrorIs(t, res.Error, dispatcher.ErrPanic)
	assert.Contains(t, res.Error.Error(), "kaboom")
	assert.Equal(t, uint64(1), d.Metrics().TotalPanics())
	assert.Zero(t, st.Recorded.Count)
}

func TestPanicWithoutRecovery(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithPanicRecovery(false))
	d.Register("explodes", command.NewFunc(command.DefaultFlags(),
		func(context.Context, buffer.Position, *execctx.ExecutionState) (*execctx.ExecutionState, error) {
			panic("kaboom")
		}))
	_, st := state("1", 0)

	assert.PanicsWithValue(t, "kaboom", func() {
		d.Execute(context.Background(), dispatcher.Action{Name: "explodes"}, st)
	})
}

func TestNotImplementedIsNeverRecovered(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.Register("forgetful", &forgetful{Base: command.NewBase()})
	_, st := state("1", 0)

	require.True(t, d.Config().RecoverFromPanic)
	assert.PanicsWithValue(t, command.ErrNotImplemented, func() {
		d.Execute(context.Background(), dispatcher.Action{Name: "forgetful"}, st)
	})
}

func TestHooks(t *testing.T) {
	t.Run("pre hook cancels", func(t *testing.T) {
		d := newDispatcher(t, dispatcher.DefaultConfig())
		d.RegisterPreHook(&dispatcher.ValidationHook{
			ValidateFunc: func(a *dispatcher.Action, _ *execctx.ExecutionState) bool {
				return a.Count < 5
			},
		})
		buf, st := state("1", 0)

		res := d.Execute(context.Background(), increment(9), st)

		assert.Equal(t, dispatcher.StatusCancelled, res.Status)
		assert.ErrorIs(t, res.Error, dispatcher.ErrActionCancelled)
		assert.Equal(t, "1", buf.Text())
	})

	t.Run("pre hook rewrites count", func(t *testing.T) {
		d := newDispatcher(t, dispatcher.DefaultConfig())
		d.RegisterPreHook(dispatcher.PreExecuteFunc(func(a *dispatcher.Action, _ *execctx.ExecutionState) bool {
			a.Count *= 10
			return true
		}))
		buf, st := state("1", 0)

		d.Execute(context.Background(), increment(2), st)
		assert.Equal(t, "21", buf.Text())
	})

	t.Run("pre hook renames action", func(t *testing.T) {
		d := newDispatcher(t, dispatcher.DefaultConfig())
		d.RegisterPreHook(dispatcher.PreExecuteFunc(func(a *dispatcher.Action, _ *execctx.ExecutionState) bool {
			if a.Name == number.ActionIncrement {
				a.Name = number.ActionDecrement
			}
			return true
		}))
		buf, st := state("5", 0)

		res := d.Execute(context.Background(), increment(0), st)

		require.True(t, res.IsOK())
		assert.Equal(t, "4", buf.Text())

		last, ok := d.LastAction()
		require.True(t, ok)
		assert.Equal(t, number.ActionDecrement, last.Name)

		require.True(t, d.RepeatLast(context.Background(), 0, st).IsOK())
		assert.Equal(t, "3", buf.Text())
	})

	t.Run("pre hook renames to unknown action", func(t *testing.T) {
		d := newDispatcher(t, dispatcher.DefaultConfig())
		d.RegisterPreHook(dispatcher.PreExecuteFunc(func(a *dispatcher.Action, _ *execctx.ExecutionState) bool {
			a.Name = "number.square"
			return true
		}))
		buf, st := state("5", 0)

		res := d.Execute(context.Background(), increment(0), st)

		assert.ErrorIs(t, res.Error, dispatcher.ErrUnknownCommand)
		assert.Equal(t, "5", buf.Text())
		_, ok := d.LastAction()
		assert.False(t, ok)
	})

	t.Run("post hook sees result", func(t *testing.T) {
		d := newDispatcher(t, dispatcher.DefaultConfig())
		var got dispatcher.Status
		d.RegisterPostHook(dispatcher.PostExecuteFunc(func(_ *dispatcher.Action, _ *execctx.ExecutionState, r *dispatcher.Result) {
			got = r.Status
			r.Message = "seen"
		}))
		_, st := state("1", 0)

		res := d.Execute(context.Background(), increment(0), st)
		assert.Equal(t, dispatcher.StatusOK, got)
		assert.Equal(t, "seen", res.Message)
	})
}

func TestTimeoutBoundsInvocation(t *testing.T) {
	var hasDeadline bool
	d := dispatcher.New(dispatcher.DefaultConfig().WithTimeout(time.Minute))
	d.Register("probe", command.NewFunc(command.DefaultFlags(),
		func(ctx context.Context, _ buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
			_, hasDeadline = ctx.Deadline()
			return st, nil
		}))
	_, st := state("", 0)

	d.Execute(context.Background(), dispatcher.Action{Name: "probe"}, st)
	assert.True(t, hasDeadline)
}

func TestMetrics(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig().WithMetrics())
	ctx := context.Background()

	_, st := state("1", 0)
	d.Execute(ctx, increment(0), st)
	d.Execute(ctx, increment(0), st)
	_, none := state("x", 0)
	d.Execute(ctx, increment(0), none)
	d.Execute(ctx, increment(0), execctx.New(nil, buffer.Position{}))

	m := d.Metrics()
	assert.Equal(t, uint64(4), m.TotalInvocations())
	assert.Equal(t, uint64(1), m.TotalNoOps())
	assert.Equal(t, uint64(1), m.TotalErrors())

	stats := m.CommandStats(number.ActionIncrement)
	require.NotNil(t, stats)
	assert.Equal(t, uint64(4), stats.InvocationCount)
	assert.Equal(t, dispatcher.StatusError, stats.LastStatus)
	assert.InDelta(t, 25.0, stats.ErrorRate(), 0.001)

	top := m.TopCommands(5)
	require.Len(t, top, 1)
	assert.Equal(t, number.ActionIncrement, top[0].Name)

	m.Reset()
	assert.Zero(t, m.Snapshot().TotalInvocations)
}

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	d := newDispatcher(t, dispatcher.DefaultConfig(), dispatcher.WithTracer(provider.Tracer("test")))

	_, st := state("41", 0)
	ok := d.Execute(context.Background(), increment(1), st)
	failed := d.Execute(context.Background(), dispatcher.Action{Name: number.ActionIncrement}, execctx.New(nil, buffer.Position{}))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	first := spans[0]
	assert.Equal(t, "keyact.execute", first.Name)
	assert.Equal(t, codes.Ok, first.Status.Code)
	assert.Contains(t, first.Attributes, attribute.String(dispatcher.AttrCommand, number.ActionIncrement))
	assert.Contains(t, first.Attributes, attribute.Int(dispatcher.AttrCount, 1))
	assert.Contains(t, first.Attributes, attribute.String(dispatcher.AttrInvocation, ok.InvocationID))
	assert.Contains(t, first.Attributes, attribute.String(dispatcher.AttrStatus, "ok"))

	second := spans[1]
	assert.Equal(t, codes.Error, second.Status.Code)
	assert.Contains(t, second.Attributes, attribute.String(dispatcher.AttrInvocation, failed.InvocationID))
	assert.NotEmpty(t, second.Events, "error is recorded as a span event")
}

func TestLogging(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := newDispatcher(t, dispatcher.DefaultConfig(), dispatcher.WithLogger(logger))

	_, st := state("1", 0)
	res := d.Execute(context.Background(), increment(0), st)

	assert.Contains(t, out.String(), `"msg":"command executed"`)
	assert.Contains(t, out.String(), `"command":"number.increment"`)
	assert.Contains(t, out.String(), res.InvocationID)

	out.Reset()
	d.Execute(context.Background(), dispatcher.Action{Name: number.ActionIncrement}, execctx.New(nil, buffer.Position{}))
	assert.Contains(t, out.String(), `"level":"ERROR"`)
}

func TestConcurrentExecuteIsSerialised(t *testing.T) {
	d := newDispatcher(t, dispatcher.DefaultConfig())
	buf := buffer.NewBufferFromString("0")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Execute(context.Background(), increment(0), execctx.New(buf, buffer.Position{}))
		}()
	}
	wg.Wait()

	assert.Equal(t, "50", buf.Text())
}
