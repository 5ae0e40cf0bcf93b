// ABOUTME: Bubble Tea message types used in the board TUI message loop.
// ABOUTME: Each type wraps the result of a backend call for the tea.Msg interface.
package tui

import (
	"github.com/kudohq/kudo/board"
)

// BoardLoadedMsg carries a freshly fetched board and its posts.
type BoardLoadedMsg struct {
	Board board.Board
	Posts []board.Post
	Err   error
}

// ReorderDoneMsg signals that a reorder round-trip finished. On error the
// engine has already rolled the order back.
type ReorderDoneMsg struct {
	Src, Dst int
	Err      error
}

// PostCreatedMsg carries the outcome of a compose submit.
type PostCreatedMsg struct {
	Post board.Post
	Err  error
}

// LikeDoneMsg carries the refreshed like count for a post.
type LikeDoneMsg struct {
	PostID string
	Likes  int
	Err    error
}

// DeleteDoneMsg signals that a post delete round-trip finished.
type DeleteDoneMsg struct {
	PostID string
	Err    error
}
