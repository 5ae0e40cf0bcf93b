// ABOUTME: Engine owns the displayed post order for one board and drives reorder reconciliation.
// ABOUTME: Implements optimistic apply, backend sync, and all-or-nothing rollback on failure.
package board

import (
	"context"
	"sync"
)

// Reorderer is the slice of the post service the engine needs: persisting a
// full position assignment for one board.
type Reorderer interface {
	Reorder(ctx context.Context, boardID string, orders []PositionAssignment) error
}

// sessionState tracks the reorder protocol per board-viewing session.
//
//	Clean   — order matches the last state confirmed by the server
//	Pending — optimistic order applied, backend call outstanding
//
// Failure rolls Pending back to Clean with the prior confirmed order; there
// is no terminal state.
type sessionState int

const (
	stateClean sessionState = iota
	statePending
)

// Engine exclusively owns the in-memory ordered post list for one displayed
// board. Presentation layers read Posts() and request mutations through the
// entry points here; they never splice the list themselves, or rollback
// correctness breaks.
//
// An Engine is bound to a single board for its lifetime. Navigating to a
// different board means constructing a new Engine, which is how late
// responses for an abandoned view are kept away from fresh state.
type Engine struct {
	mu    sync.Mutex
	board Board
	posts []Post
	state sessionState
	svc   Reorderer

	// inflight journals server-confirmed mutations that land while a reorder
	// call is outstanding, so a failure rollback can replay them on top of
	// the restored pre-gesture order instead of discarding them.
	inflight []func([]Post) []Post
}

// NewEngine builds an engine for one board view from the fetched, normalized
// post list. The initial order is positional when every post carries a
// position, creation-descending otherwise.
func NewEngine(b Board, posts []Post, svc Reorderer) *Engine {
	owned := make([]Post, len(posts))
	copy(owned, posts)
	SortPosts(owned)
	return &Engine{
		board: b,
		posts: owned,
		svc:   svc,
	}
}

// Board returns the board this engine is bound to.
func (e *Engine) Board() Board {
	return e.board
}

// Posts returns a copy of the current display order. The copy is the caller's
// to render; mutating it has no effect on the engine.
func (e *Engine) Posts() []Post {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Post, len(e.posts))
	copy(out, e.posts)
	return out
}

// Len returns the number of posts currently on the board.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.posts)
}

// Pending reports whether a reorder backend call is outstanding. Presentation
// layers should disable the drag surface while this is true.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == statePending
}

// ApplyReorder moves the post at src to dst, optimistically installs the new
// order, and reconciles it with the backend. The caller must re-render
// (Posts()) before the call resolves to get the optimistic behavior.
//
// Ownership is the caller's problem: the presentation layer only fires the
// gesture for boards the session user owns, and this method trusts that.
//
// src == dst is a guaranteed no-op: no state mutation, no network call.
// While a prior reorder is outstanding the call is rejected with
// ErrReorderPending, so overlapping position assignments are never sent.
//
// On success the new order stands and every post's PositionOrder matches the
// assignment that was sent, so later renders stay consistent without a
// refetch. On any failure the order is restored to the pre-gesture sequence,
// with mutations confirmed during the call replayed on top, and the error is
// returned for notice display; no partial position update is ever committed.
func (e *Engine) ApplyReorder(ctx context.Context, src, dst int) error {
	e.mu.Lock()

	if src < 0 || src >= len(e.posts) {
		n := len(e.posts)
		e.mu.Unlock()
		return &IndexError{Index: src, Length: n}
	}
	if dst < 0 || dst >= len(e.posts) {
		n := len(e.posts)
		e.mu.Unlock()
		return &IndexError{Index: dst, Length: n}
	}
	if src == dst {
		e.mu.Unlock()
		return nil
	}
	if e.state == statePending {
		e.mu.Unlock()
		return ErrReorderPending
	}

	prev := make([]Post, len(e.posts))
	copy(prev, e.posts)

	moved := e.posts[src]
	next := make([]Post, 0, len(e.posts))
	next = append(next, e.posts[:src]...)
	next = append(next, e.posts[src+1:]...)
	next = append(next, Post{})
	copy(next[dst+1:], next[dst:])
	next[dst] = moved

	orders := make([]PositionAssignment, len(next))
	for i, p := range next {
		orders[i] = PositionAssignment{ID: p.ID, PositionOrder: i + 1}
	}

	// Optimistic apply: renders between here and the backend reply show the
	// new order already.
	e.posts = next
	e.state = statePending
	e.inflight = nil
	boardID := e.board.ID
	e.mu.Unlock()

	err := e.svc.Reorder(ctx, boardID, orders)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = stateClean
	journal := e.inflight
	e.inflight = nil

	if err != nil {
		// Restore the pre-gesture order, then replay any create, delete, or
		// like the server confirmed while the call was in flight; rolling the
		// positions back must not resurrect or discard those.
		restored := prev
		for _, op := range journal {
			restored = op(restored)
		}
		e.posts = restored
		return err
	}

	// Confirmed: stamp the positions that were sent. Lookup by id so a post
	// created or deleted while the call was in flight doesn't shift the
	// stamping onto the wrong entry.
	for _, o := range orders {
		for i := range e.posts {
			if e.posts[i].ID == o.ID {
				pos := o.PositionOrder
				e.posts[i].PositionOrder = &pos
				break
			}
		}
	}
	return nil
}

func upsertInto(posts []Post, p Post) []Post {
	for i := range posts {
		if posts[i].ID == p.ID {
			posts[i] = p
			return posts
		}
	}
	return append(posts, p)
}

func removeFrom(posts []Post, id string) []Post {
	for i := range posts {
		if posts[i].ID == id {
			return append(posts[:i], posts[i+1:]...)
		}
	}
	return posts
}

func setLikesIn(posts []Post, id string, likes int) []Post {
	for i := range posts {
		if posts[i].ID == id {
			posts[i].Likes = likes
			break
		}
	}
	return posts
}

// journalWhilePending records a confirmed mutation for replay should the
// outstanding reorder fail and roll back. Caller must hold e.mu.
func (e *Engine) journalWhilePending(op func([]Post) []Post) {
	if e.state == statePending {
		e.inflight = append(e.inflight, op)
	}
}

// UpsertPost installs a server-confirmed post: replaces the entry with the
// same id, or appends a new one. Create/update are not optimistic; callers
// invoke this only after the backend confirmed the mutation.
func (e *Engine) UpsertPost(p Post) error {
	if p.BoardID != e.board.ID {
		return ErrWrongBoard
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.posts = upsertInto(e.posts, p)
	e.journalWhilePending(func(ps []Post) []Post { return upsertInto(ps, p) })
	return nil
}

// RemovePost drops a server-confirmed deletion from the order. Unknown ids
// are ignored; the completion may race a reorder that already observed the
// deletion.
func (e *Engine) RemovePost(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.posts = removeFrom(e.posts, id)
	e.journalWhilePending(func(ps []Post) []Post { return removeFrom(ps, id) })
}

// SetLikes updates the like counter on one post after a confirmed like or
// unlike call.
func (e *Engine) SetLikes(id string, likes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.posts = setLikesIn(e.posts, id, likes)
	e.journalWhilePending(func(ps []Post) []Post { return setLikesIn(ps, id, likes) })
}

// Get returns the post with the given id in the current order.
func (e *Engine) Get(id string) (Post, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.posts {
		if e.posts[i].ID == id {
			return e.posts[i], true
		}
	}
	return Post{}, false
}
