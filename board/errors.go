// ABOUTME: Sentinel and typed errors for the board core: ordering, composing, validation.
// ABOUTME: Mirrors the error style of the api package so callers can errors.Is/As uniformly.
package board

import (
	"errors"
	"fmt"
)

var (
	// ErrReorderPending indicates a reorder gesture arrived while a prior
	// reorder's backend call was still outstanding. Overlapping position
	// assignments are never sent; the caller should retry after the pending
	// call resolves.
	ErrReorderPending = errors.New("reorder already pending")

	// ErrEmptyMessage indicates a submission with no message text. Rejected
	// before any network call is made.
	ErrEmptyMessage = errors.New("message text is required")

	// ErrWrongBoard indicates a post for a different board was handed to an
	// engine. Engines are bound to a single board for their whole lifetime.
	ErrWrongBoard = errors.New("post belongs to a different board")
)

// IndexError indicates a reorder index outside the current order.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for %d posts", e.Index, e.Length)
}
