// ABOUTME: Implements a single-line status bar for the bottom of the board TUI.
// ABOUTME: Shows board title, post count, role, save state, and the latest notice.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kudohq/kudo/board"
)

// StatusBarModel displays board status in a single line.
type StatusBarModel struct {
	title  string
	posts  int
	owner  bool
	saving bool
	notice *board.Notice
	width  int
}

// NewStatusBarModel creates a StatusBarModel for the given board title.
func NewStatusBarModel(title string) StatusBarModel {
	return StatusBarModel{title: title}
}

// SetTitle updates the board title shown in the bar.
func (m *StatusBarModel) SetTitle(title string) { m.title = title }

// SetPosts updates the post count.
func (m *StatusBarModel) SetPosts(n int) { m.posts = n }

// SetOwner marks whether the viewer owns the board.
func (m *StatusBarModel) SetOwner(owner bool) { m.owner = owner }

// SetSaving toggles the "saving order" indicator.
func (m *StatusBarModel) SetSaving(saving bool) { m.saving = saving }

// SetNotice replaces the displayed notice. Nil clears it.
func (m *StatusBarModel) SetNotice(n *board.Notice) { m.notice = n }

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) { m.width = w }

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	role := "viewer"
	if m.owner {
		role = "owner"
	}

	content := fmt.Sprintf("%s | %d posts | %s", m.title, m.posts, role)
	if m.saving {
		content += " | " + PendingStyle.Render("saving order…")
	}
	if m.notice != nil {
		msg := m.notice.Message
		switch m.notice.Severity {
		case board.SeverityError:
			content += " | " + ErrorStyle.Render(msg)
		default:
			content += " | " + SuccessStyle.Render(msg)
		}
	}

	style := StatusBarStyle.Width(m.width)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}
