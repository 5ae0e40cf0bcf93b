// ABOUTME: tea.Cmd wrappers around backend calls so network work never blocks the message loop.
// ABOUTME: Each command runs one round-trip and reports its outcome as a message.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kudohq/kudo/api"
	"github.com/kudohq/kudo/board"
)

// callTimeout bounds every backend round-trip issued from the TUI.
const callTimeout = 15 * time.Second

func loadBoardCmd(boards *api.BoardService, slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		b, posts, err := boards.GetBySlug(ctx, slug)
		return BoardLoadedMsg{Board: b, Posts: posts, Err: err}
	}
}

func reorderCmd(eng *board.Engine, src, dst int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		err := eng.ApplyReorder(ctx, src, dst)
		return ReorderDoneMsg{Src: src, Dst: dst, Err: err}
	}
}

func createPostCmd(composer *board.Composer, draft board.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		post, err := composer.Submit(ctx, draft)
		return PostCreatedMsg{Post: post, Err: err}
	}
}

func likeCmd(posts *api.PostService, postID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		likes, err := posts.Like(ctx, postID)
		return LikeDoneMsg{PostID: postID, Likes: likes, Err: err}
	}
}

func deletePostCmd(posts *api.PostService, postID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		err := posts.Delete(ctx, postID)
		return DeleteDoneMsg{PostID: postID, Err: err}
	}
}
