// ABOUTME: ComposeModel is the add-a-post form: author text input plus message textarea.
// ABOUTME: Tab cycles fields; ctrl+s submits; esc cancels back to the board.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kudohq/kudo/board"
)

type composeField int

const (
	fieldAuthor composeField = iota
	fieldMessage
)

// ComposeModel holds the state of the in-TUI compose form.
type ComposeModel struct {
	author  textinput.Model
	message textarea.Model
	focus   composeField
	active  bool
}

// NewComposeModel creates a ComposeModel with empty fields.
func NewComposeModel() ComposeModel {
	author := textinput.New()
	author.Placeholder = "Your name"
	author.CharLimit = 80

	message := textarea.New()
	message.Placeholder = "Say something nice (markdown ok)"
	message.SetHeight(5)

	return ComposeModel{author: author, message: message}
}

// Activate opens the form, prefilled from an existing draft.
func (m *ComposeModel) Activate(draft board.Draft) {
	m.active = true
	m.focus = fieldAuthor
	m.author.SetValue(draft.Author)
	m.message.SetValue(draft.Message)
	m.author.Focus()
	m.message.Blur()
}

// Deactivate closes the form without clearing its contents, so the text
// survives as a draft.
func (m *ComposeModel) Deactivate() {
	m.active = false
	m.author.Blur()
	m.message.Blur()
}

// IsActive reports whether the form is open.
func (m ComposeModel) IsActive() bool { return m.active }

// Draft returns the current form contents as a draft.
func (m ComposeModel) Draft() board.Draft {
	return board.Draft{
		Author:  strings.TrimSpace(m.author.Value()),
		Message: m.message.Value(),
	}
}

// Clear empties both fields, typically after a successful submit.
func (m *ComposeModel) Clear() {
	m.author.SetValue("")
	m.message.SetValue("")
}

// Update handles key input while the form is open. Tab switches fields;
// everything else is routed to the focused field.
func (m ComposeModel) Update(msg tea.Msg) (ComposeModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyTab {
		if m.focus == fieldAuthor {
			m.focus = fieldMessage
			m.author.Blur()
			return m, m.message.Focus()
		}
		m.focus = fieldAuthor
		m.message.Blur()
		return m, m.author.Focus()
	}

	var cmd tea.Cmd
	if m.focus == fieldAuthor {
		m.author, cmd = m.author.Update(msg)
	} else {
		m.message, cmd = m.message.Update(msg)
	}
	return m, cmd
}

// View renders the compose form panel.
func (m ComposeModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Add a post"))
	b.WriteString("\n\n")
	b.WriteString("From: " + m.author.View())
	b.WriteString("\n\n")
	b.WriteString(m.message.View())
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("tab switch field · ctrl+s post · esc cancel"))
	return ComposeStyle.Render(b.String())
}
