// Package dispatcher runs named editor commands against an execution state.
//
// Commands are registered under action names and invoked through Execute:
//
//	d := dispatcher.NewWithDefaults(dispatcher.WithLogger(logger))
//	d.Register(number.ActionIncrement, number.NewIncrement())
//
//	st := execctx.New(buf, buffer.NewPosition(0, 0))
//	res := d.Execute(ctx, dispatcher.Action{Name: number.ActionIncrement, Count: 3}, st)
//
// # Execution
//
// For each invocation the dispatcher:
//
//  1. Looks up the command (ErrInvalidAction for an empty name,
//     ErrUnknownCommand if none is registered)
//  2. Validates the state and runs pre-execute hooks, which may cancel the
//     action or rewrite it; a renamed action is looked up again
//  3. Clamps the count to Config.MaxRepeatCount and records it in the state
//  4. Skips commands that are not complete actions (StatusNoOp)
//  5. Calls ApplyRepeated (with optional panic recovery)
//  6. Clears the recorded count
//  7. Runs post-execute hooks, records metrics and ends the trace span
//
// A command that leaves both the engine revision and the cursor unchanged
// yields StatusNoOp. Engines that do not implement execctx.Revisioner are
// always reported as StatusOK on success.
//
// # Dot repeat
//
// Commands whose CanBeRepeatedWithDot is true are remembered after a
// successful invocation. RepeatLast runs the remembered command again; a
// positive count replaces the remembered count.
//
// # Panics
//
// With Config.RecoverFromPanic set, a panicking command produces a
// StatusError result wrapping ErrPanic. A command that does not implement
// ApplyOnce panics with command.ErrNotImplemented; that panic is never
// recovered.
//
// # Observability
//
// Each invocation, including one naming an unknown command, gets a UUID, a
// "keyact.execute" span from the configured OpenTelemetry tracer, and
// structured slog records (debug on success, error on failure). Metrics are
// collected when Config.EnableMetrics is set.
//
// # Thread Safety
//
// Execute and RepeatLast are serialised by the dispatcher. The registry and
// hook lists may be modified concurrently with invocations.
package dispatcher
