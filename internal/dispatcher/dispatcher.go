package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/keyact/internal/dispatcher/command"
	"github.com/dshills/keyact/internal/dispatcher/execctx"
)

// TracerName is the instrumentation name used when no tracer is supplied.
const TracerName = "github.com/dshills/keyact/internal/dispatcher"

// Span attribute keys.
const (
	AttrCommand    = "keyact.command"
	AttrCount      = "keyact.count"
	AttrInvocation = "keyact.invocation"
	AttrStatus     = "keyact.status"
)

// Dispatcher runs registered commands against an execution state.
type Dispatcher struct {
	// mu serialises invocations.
	mu sync.Mutex

	registry *Registry
	config   Config
	metrics  *Metrics
	logger   *slog.Logger
	tracer   trace.Tracer

	hookMu    sync.RWMutex
	preHooks  []PreExecuteHook
	postHooks []PostExecuteHook

	// last is the most recent dot-repeatable invocation.
	last *recorded
}

type recorded struct {
	action Action
	cmd    command.Command
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTracer sets the tracer used for invocation spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// New creates a new dispatcher with the given configuration.
func New(config Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		config:   config,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(TracerName),
	}

	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults(opts ...Option) *Dispatcher {
	return New(DefaultConfig(), opts...)
}

// Register binds cmd to an action name.
func (d *Dispatcher) Register(name string, cmd command.Command) {
	d.registry.Register(name, cmd)
}

// Unregister removes the command bound to name.
func (d *Dispatcher) Unregister(name string) {
	d.registry.Unregister(name)
}

// Execute runs the command registered for action.Name.
//
// The action's count (clamped to MaxRepeatCount) is recorded in st for the
// duration of the invocation and cleared afterwards. Incomplete commands are
// not run. Dot-repeatable commands that succeed become the target of
// RepeatLast.
func (d *Dispatcher) Execute(ctx context.Context, action Action, st *execctx.ExecutionState) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.invoke(ctx, action, nil, st)
}

// RepeatLast re-runs the last dot-repeatable command. A positive count
// replaces the recorded one, for this and later repeats.
func (d *Dispatcher) RepeatLast(ctx context.Context, count int, st *execctx.ExecutionState) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last == nil {
		return errorResult(ErrNothingToRepeat)
	}

	action := d.last.action
	if count > 0 {
		action.Count = count
	}
	return d.invoke(ctx, action, d.last.cmd, st)
}

// LastAction returns the action RepeatLast would run.
func (d *Dispatcher) LastAction() (Action, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last == nil {
		return Action{}, false
	}
	return d.last.action, true
}

// invoke runs the action with d.mu held. A nil cmd is looked up by name.
func (d *Dispatcher) invoke(ctx context.Context, action Action, cmd command.Command, st *execctx.ExecutionState) Result {
	startTime := time.Now()
	id := uuid.NewString()

	ctx, span := d.tracer.Start(ctx, "keyact.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	action.Count = d.config.clampCount(action.Count)
	result, cmd := d.run(ctx, &action, cmd, st)
	result.InvocationID = id

	span.SetAttributes(
		attribute.String(AttrCommand, action.Name),
		attribute.Int(AttrCount, action.Count),
		attribute.String(AttrInvocation, id),
		attribute.String(AttrStatus, result.Status.String()),
	)

	log := d.logger.With(
		slog.String("command", action.Name),
		slog.Int("count", action.Count),
		slog.String("invocation", id),
	)
	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(codes.Error, result.Error.Error())
		log.Error("command failed", slog.String("status", result.Status.String()), slog.Any("error", result.Error))
	} else {
		span.SetStatus(codes.Ok, "")
		log.Debug("command executed", slog.String("status", result.Status.String()), slog.String("cursor", result.Cursor.String()))
	}

	if result.Status == StatusOK && cmd != nil && cmd.CanBeRepeatedWithDot() {
		d.last = &recorded{action: action, cmd: cmd}
	}

	if d.metrics != nil {
		d.metrics.RecordInvocation(action.Name, time.Since(startTime), result.Status)
	}
	return result
}

// run validates the state, runs the hooks and applies the command. It
// returns the command that ran, which differs from cmd when a pre-execute
// hook renamed the action.
func (d *Dispatcher) run(ctx context.Context, action *Action, cmd command.Command, st *execctx.ExecutionState) (Result, command.Command) {
	if cmd == nil {
		var err error
		if cmd, err = d.lookup(action.Name); err != nil {
			return errorResult(err), nil
		}
	}

	if err := st.Validate(); err != nil {
		return errorResult(err), cmd
	}

	name := action.Name
	if !d.runPreHooks(action, st) {
		return Result{
			Status:  StatusCancelled,
			Error:   ErrActionCancelled,
			Cursor:  st.Cursor,
			Message: "cancelled by hook",
		}, cmd
	}
	if action.Name != name {
		var err error
		if cmd, err = d.lookup(action.Name); err != nil {
			return errorResult(err), nil
		}
	}
	action.Count = d.config.clampCount(action.Count)

	var result Result
	if !cmd.IsCompleteAction() {
		result = Result{Status: StatusNoOp, Cursor: st.Cursor, Message: "incomplete action"}
	} else {
		result = d.apply(ctx, *action, cmd, st)
	}

	d.runPostHooks(action, st, &result)
	return result, cmd
}

// lookup returns the command registered for name.
func (d *Dispatcher) lookup(name string) (command.Command, error) {
	if name == "" {
		return nil, ErrInvalidAction
	}
	cmd := d.registry.Get(name)
	if cmd == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// apply runs ApplyRepeated with the count recorded in st.
func (d *Dispatcher) apply(ctx context.Context, action Action, cmd command.Command, st *execctx.ExecutionState) Result {
	if d.config.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DefaultTimeout)
		defer cancel()
	}

	cursor := st.Cursor
	before, hasRevision := st.Revision()

	st.Recorded.Count = action.Count
	defer st.Recorded.Reset()

	next, err := d.applyRepeated(ctx, action.Name, cmd, st)
	if next != nil {
		st = next
	}
	if err != nil {
		r := errorResult(err)
		r.Cursor = st.Cursor
		return r
	}

	after, _ := st.Revision()
	if hasRevision && after == before && st.Cursor == cursor {
		return Result{Status: StatusNoOp, Cursor: st.Cursor}
	}
	return Result{Status: StatusOK, Cursor: st.Cursor}
}

// applyRepeated calls cmd.ApplyRepeated, recovering panics when configured.
func (d *Dispatcher) applyRepeated(ctx context.Context, name string, cmd command.Command, st *execctx.ExecutionState) (next *execctx.ExecutionState, err error) {
	if d.config.RecoverFromPanic {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if e, ok := r.(error); ok && errors.Is(e, command.ErrNotImplemented) {
				panic(r)
			}

			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			d.logger.Error("command panic",
				slog.String("command", name),
				slog.Any("panic", r),
				slog.String("stack", string(stack[:n])),
			)
			if d.metrics != nil {
				d.metrics.RecordPanic(name)
			}
			next, err = st, fmt.Errorf("%w: %s: %v", ErrPanic, name, r)
		}()
	}

	return cmd.ApplyRepeated(ctx, st.Cursor, st)
}

// Registry returns the command registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics collector (nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}
