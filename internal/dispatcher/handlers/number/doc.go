// Package number provides the increment and decrement commands (vim CTRL-A
// and CTRL-X).
//
// A single application scans the cursor's line from the start of the word
// under (or just before) the cursor, takes the first word that parses as a
// decimal integer, and rewrites it:
//
//   - A '-' immediately left of the word is treated as the number's sign.
//   - The count scales the offset: 3 CTRL-A adds 3 in one application.
//   - Same-width results are written with one Replace; width changes
//     ("9" to "10", "0" to "-1") are written as Delete followed by InsertAt.
//   - The cursor ends just past the new number.
//
// Lines without a number at or after the cursor are left untouched, and so
// is the cursor.
//
// Register the commands with the dispatcher:
//
//	d.Register(number.ActionIncrement, number.NewIncrement())
//	d.Register(number.ActionDecrement, number.NewDecrement())
package number
