// ABOUTME: Top-level Bubble Tea model for viewing one board: post list, compose form, status bar.
// ABOUTME: Implements tea.Model and routes keys for browsing, liking, composing, and owner move-mode.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kudohq/kudo/api"
	"github.com/kudohq/kudo/board"
)

// Mode is the interaction mode of the board view.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeMove
	ModeCompose
	ModeConfirmDelete
)

// Config holds everything the board TUI needs to run.
type Config struct {
	Slug   string
	Boards *api.BoardService
	Posts  *api.PostService

	// UserID is the signed-in user, empty when anonymous.
	UserID string
	Authed bool

	// Draft prefills the compose form, typically restored from the local store.
	Draft board.Draft
}

// BoardModel is the top-level Bubble Tea model for one board.
type BoardModel struct {
	cfg Config

	eng       *board.Engine
	compose   ComposeModel
	statusBar StatusBarModel

	mode         Mode
	cursor       int
	moveFrom     int
	deleteTarget string
	loading      bool
	saving       bool
	loadErr      error

	width  int
	height int
}

// NewBoardModel creates a BoardModel that fetches its board on Init.
func NewBoardModel(cfg Config) BoardModel {
	return BoardModel{
		cfg:       cfg,
		compose:   NewComposeModel(),
		statusBar: NewStatusBarModel(cfg.Slug),
		loading:   true,
	}
}

// Engine exposes the ordering engine, nil until the first load completes.
// Callers use it to read the final order on exit (e.g. to persist drafts).
func (m BoardModel) Engine() *board.Engine {
	return m.eng
}

// ComposeDraft returns the current compose form contents so the caller can
// save them as a draft on quit.
func (m BoardModel) ComposeDraft() board.Draft {
	return m.compose.Draft()
}

// Init implements tea.Model.
func (m BoardModel) Init() tea.Cmd {
	return loadBoardCmd(m.cfg.Boards, m.cfg.Slug)
}

// Update implements tea.Model.
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case BoardLoadedMsg:
		return m.handleLoaded(msg)

	case ReorderDoneMsg:
		return m.handleReorderDone(msg)

	case PostCreatedMsg:
		return m.handlePostCreated(msg)

	case LikeDoneMsg:
		return m.handleLikeDone(msg)

	case DeleteDoneMsg:
		return m.handleDeleteDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m BoardModel) handleLoaded(msg BoardLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.Err != nil {
		m.loadErr = msg.Err
		return m, nil
	}
	m.loadErr = nil
	m.eng = board.NewEngine(msg.Board, msg.Posts, m.cfg.Posts)
	m.statusBar.SetTitle(msg.Board.Title)
	m.statusBar.SetPosts(m.eng.Len())
	m.statusBar.SetOwner(msg.Board.IsOwner(m.cfg.UserID))
	m.clampCursor()
	return m, nil
}

func (m BoardModel) handleReorderDone(msg ReorderDoneMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	m.statusBar.SetSaving(false)
	boardID := ""
	if m.eng != nil {
		boardID = m.eng.Board().ID
	}
	if msg.Err != nil {
		n := board.FailureNotice("reorder", boardID, "", msg.Err)
		m.statusBar.SetNotice(&n)
		// Rolled back; put the cursor back where the card still is.
		m.cursor = msg.Src
	} else {
		n := board.SuccessNotice("reorder", boardID, "", "Order saved.")
		m.statusBar.SetNotice(&n)
		m.cursor = msg.Dst
	}
	m.clampCursor()
	return m, nil
}

func (m BoardModel) handlePostCreated(msg PostCreatedMsg) (tea.Model, tea.Cmd) {
	boardID := ""
	if m.eng != nil {
		boardID = m.eng.Board().ID
	}
	if msg.Err != nil {
		// Keep the form open so nothing typed is lost.
		n := board.FailureNotice("create", boardID, "", msg.Err)
		m.statusBar.SetNotice(&n)
		return m, nil
	}
	if m.eng != nil {
		_ = m.eng.UpsertPost(msg.Post)
		m.statusBar.SetPosts(m.eng.Len())
	}
	m.compose.Clear()
	m.compose.Deactivate()
	m.mode = ModeBrowse
	n := board.SuccessNotice("create", boardID, msg.Post.ID, "Post added.")
	m.statusBar.SetNotice(&n)
	return m, nil
}

func (m BoardModel) handleLikeDone(msg LikeDoneMsg) (tea.Model, tea.Cmd) {
	if m.eng == nil {
		return m, nil
	}
	if msg.Err != nil {
		n := board.FailureNotice("like", m.eng.Board().ID, msg.PostID, msg.Err)
		m.statusBar.SetNotice(&n)
		return m, nil
	}
	m.eng.SetLikes(msg.PostID, msg.Likes)
	return m, nil
}

func (m BoardModel) handleDeleteDone(msg DeleteDoneMsg) (tea.Model, tea.Cmd) {
	if m.eng == nil {
		return m, nil
	}
	if msg.Err != nil {
		n := board.FailureNotice("delete", m.eng.Board().ID, msg.PostID, msg.Err)
		m.statusBar.SetNotice(&n)
		return m, nil
	}
	m.eng.RemovePost(msg.PostID)
	m.statusBar.SetPosts(m.eng.Len())
	n := board.SuccessNotice("delete", m.eng.Board().ID, msg.PostID, "Post removed.")
	m.statusBar.SetNotice(&n)
	m.clampCursor()
	return m, nil
}

func (m BoardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeCompose {
		return m.handleComposeKey(msg)
	}
	if m.mode == ModeConfirmDelete {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.mode == ModeBrowse && !m.saving {
			m.loading = true
			return m, loadBoardCmd(m.cfg.Boards, m.cfg.Slug)
		}
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "a":
		if m.mode == ModeBrowse {
			m.mode = ModeCompose
			m.compose.Activate(m.cfg.Draft)
			m.cfg.Draft = board.Draft{}
		}
	case "enter":
		if m.mode == ModeMove {
			return m.commitMove()
		}
		if p, ok := m.selectedPost(); ok {
			return m, likeCmd(m.cfg.Posts, p.ID)
		}
	case "l":
		if m.mode != ModeBrowse {
			break
		}
		if p, ok := m.selectedPost(); ok {
			return m, likeCmd(m.cfg.Posts, p.ID)
		}
	case "d":
		if m.mode != ModeBrowse {
			break
		}
		if p, ok := m.selectedPost(); ok && m.eng.Board().CanModify(m.cfg.UserID, p) {
			m.mode = ModeConfirmDelete
			m.deleteTarget = p.ID
		}
	case " ", "m":
		if m.mode == ModeBrowse && m.canMove() {
			m.mode = ModeMove
			m.moveFrom = m.cursor
		}
	case "esc":
		if m.mode == ModeMove {
			m.mode = ModeBrowse
			m.cursor = m.moveFrom
		}
	}

	return m, nil
}

func (m BoardModel) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.compose.Deactivate()
		m.mode = ModeBrowse
		return m, nil
	case "ctrl+s":
		if m.eng == nil {
			return m, nil
		}
		authed := m.cfg.Authed
		composer := board.NewComposer(m.eng.Board().ID, m.cfg.Posts, func() bool { return authed })
		draft := m.compose.Draft()
		if strings.TrimSpace(draft.Message) == "" {
			n := board.FailureNotice("create", m.eng.Board().ID, "", board.ErrEmptyMessage)
			m.statusBar.SetNotice(&n)
			return m, nil
		}
		return m, createPostCmd(composer, draft)
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

func (m BoardModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		target := m.deleteTarget
		m.deleteTarget = ""
		m.mode = ModeBrowse
		return m, deletePostCmd(m.cfg.Posts, target)
	case "n", "esc":
		m.deleteTarget = ""
		m.mode = ModeBrowse
	}
	return m, nil
}

// commitMove sends the pending move to the engine. The engine applies the new
// order immediately and rolls back if the save fails.
func (m BoardModel) commitMove() (tea.Model, tea.Cmd) {
	src, dst := m.moveFrom, m.cursor
	m.mode = ModeBrowse
	if src == dst || m.eng == nil {
		return m, nil
	}
	m.saving = true
	m.statusBar.SetSaving(true)
	return m, reorderCmd(m.eng, src, dst)
}

func (m BoardModel) canMove() bool {
	return m.eng != nil && !m.saving && m.eng.Len() > 1 && m.eng.Board().IsOwner(m.cfg.UserID)
}

func (m BoardModel) selectedPost() (board.Post, bool) {
	if m.eng == nil {
		return board.Post{}, false
	}
	posts := m.eng.Posts()
	if m.cursor < 0 || m.cursor >= len(posts) {
		return board.Post{}, false
	}
	return posts[m.cursor], true
}

func (m *BoardModel) clampCursor() {
	max := 0
	if m.eng != nil {
		max = m.eng.Len() - 1
	}
	if m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// displayPosts returns the posts in the order the view should show them.
// In move-mode this is a local preview of the pending move; the engine's
// order is untouched until the move commits.
func (m BoardModel) displayPosts() []board.Post {
	posts := m.eng.Posts()
	if m.mode != ModeMove || m.moveFrom == m.cursor {
		return posts
	}
	src, dst := m.moveFrom, m.cursor
	moved := posts[src]
	rest := append([]board.Post{}, posts[:src]...)
	rest = append(rest, posts[src+1:]...)
	out := append([]board.Post{}, rest[:dst]...)
	out = append(out, moved)
	out = append(out, rest[dst:]...)
	return out
}

// View implements tea.Model.
func (m BoardModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.loading {
		return "Loading board…"
	}
	if m.loadErr != nil {
		return ErrorStyle.Render(fmt.Sprintf("Could not load board: %v", m.loadErr)) +
			"\n" + HelpStyle.Render("r retry · q quit")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.eng.Board().Title))
	if desc := m.eng.Board().Description; desc != "" {
		b.WriteString("  " + MetaStyle.Render(desc))
	}
	b.WriteString("\n\n")

	if m.mode == ModeCompose {
		b.WriteString(m.compose.View())
		b.WriteString("\n")
	} else {
		for i, p := range m.displayPosts() {
			b.WriteString(m.renderPost(i, p))
			b.WriteString("\n")
		}
		if m.eng.Len() == 0 {
			b.WriteString(MetaStyle.Render("No posts yet. Press a to add one."))
			b.WriteString("\n")
		}
	}

	if m.mode == ModeConfirmDelete {
		b.WriteString(ErrorStyle.Render("Delete this post? y/n"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	m.statusBar.SetWidth(m.width)
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.helpLine()))
	return b.String()
}

func (m BoardModel) helpLine() string {
	switch m.mode {
	case ModeMove:
		return "j/k choose position · enter save · esc cancel"
	case ModeCompose:
		return "tab switch field · ctrl+s post · esc cancel"
	default:
		keys := "j/k navigate · l like · a add · r refresh · q quit"
		if m.canMove() {
			keys = "j/k navigate · space move · l like · a add · d delete · r refresh · q quit"
		}
		return keys
	}
}

func (m BoardModel) renderPost(i int, p board.Post) string {
	var body strings.Builder
	body.WriteString(AuthorStyle.Render(p.Author))
	body.WriteString("\n")
	body.WriteString(p.Message)
	if p.ImageURL != nil && *p.ImageURL != "" {
		body.WriteString("\n")
		body.WriteString(MetaStyle.Render("[image] " + *p.ImageURL))
	}
	body.WriteString("\n")
	body.WriteString(MetaStyle.Render(fmt.Sprintf("♥ %d", p.Likes)))

	style := CardStyle
	if i == m.cursor {
		style = SelectedCardStyle
		if m.mode == ModeMove {
			style = MovingCardStyle
		}
	}
	width := m.width - 4
	if width > 60 {
		width = 60
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(body.String())
}
