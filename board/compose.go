// ABOUTME: Composer routes post submissions to the authenticated or anonymous create path.
// ABOUTME: Routing is a pure function of auth state at submission time, never cached.
package board

import (
	"context"
	"strings"
)

// Draft is the user-entered content of a new post before submission.
type Draft struct {
	Author          string
	Message         string
	BackgroundColor string
	TextColor       string
	ImageURL        string
}

// normalized fills color defaults and trims the author name.
func (d Draft) normalized() Draft {
	if d.BackgroundColor == "" {
		d.BackgroundColor = DefaultBackgroundColor
	}
	if d.TextColor == "" {
		d.TextColor = DefaultTextColor
	}
	d.Author = strings.TrimSpace(d.Author)
	return d
}

// Creator is the slice of the post service the composer needs: the two
// backend create operations.
type Creator interface {
	Create(ctx context.Context, boardID string, draft Draft) (Post, error)
	CreateAnonymous(ctx context.Context, boardID string, draft Draft) (Post, error)
}

// AuthState reports whether the client currently holds an authenticated
// identity. It is consulted on every submission because auth state can change
// between opening the compose form and submitting it.
type AuthState func() bool

// Composer submits drafts for one board, choosing the create path from the
// live auth state.
type Composer struct {
	boardID string
	svc     Creator
	authed  AuthState
}

// NewComposer builds a composer for the given board.
func NewComposer(boardID string, svc Creator, authed AuthState) *Composer {
	return &Composer{boardID: boardID, svc: svc, authed: authed}
}

// Submit validates the draft and routes it to the authenticated create when
// the client holds an identity right now, otherwise to the anonymous create.
// An empty message is rejected before any network call.
func (c *Composer) Submit(ctx context.Context, draft Draft) (Post, error) {
	if strings.TrimSpace(draft.Message) == "" {
		return Post{}, ErrEmptyMessage
	}
	draft = draft.normalized()

	if c.authed != nil && c.authed() {
		return c.svc.Create(ctx, c.boardID, draft)
	}
	return c.svc.CreateAnonymous(ctx, c.boardID, draft)
}
