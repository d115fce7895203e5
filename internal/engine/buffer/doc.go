// Package buffer provides a thread-safe, line-oriented text document used as
// the mutation target for editor actions.
//
// The buffer package provides:
//
//   - Position and Range coordinates (line, byte column; ranges are half-open)
//   - Scoped Replace, Delete and InsertAt mutations that honor context cancellation
//   - A change journal recording every committed mutation in order
//   - Single-step Undo driven by the journal
//   - Line ending normalization on load and rendering on output
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("count = 9")
//
//	// Mutations are ordered; each one commits before the next is validated.
//	r := buffer.NewRange(buffer.NewPosition(0, 8), buffer.NewPosition(0, 9))
//	_ = buf.Delete(ctx, r)
//	_ = buf.InsertAt(ctx, r.Start, "10") // "count = 10"
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Read operations acquire a read lock,
// while write operations acquire an exclusive write lock. Callers issuing a
// sequence of dependent mutations (such as delete followed by insert at the
// same coordinate) must issue them from a single goroutine in order.
package buffer
