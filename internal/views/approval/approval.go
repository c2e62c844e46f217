// Package approval renders the human-in-the-loop decision modal: the
// pending request's message, a glamour-rendered document preview, an
// approve/reject toggle, and an optional comment field.
package approval

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/docuflow/console/internal/session"
	"github.com/docuflow/console/internal/theme"
)

// Model holds the approval modal state.
type Model struct {
	Request  session.ApprovalRequest
	Approved bool
	Width    int
	Height   int

	comment textarea.Model
	preview string
}

// New creates an approval modal model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "optional comment"
	ta.SetHeight(3)
	ta.CharLimit = 500
	return Model{Approved: true, comment: ta}
}

// SetRequest loads a pending request into the modal and renders its
// preview. The preview is an opaque text blob from the server; markdown
// rendering is best effort and falls back to the raw text.
func (m *Model) SetRequest(req session.ApprovalRequest) {
	m.Request = req
	m.Approved = true
	m.comment.Reset()
	m.comment.Focus()
	m.preview = renderPreview(req.Preview, m.contentWidth())
}

// SetSize updates the modal dimensions and re-renders the preview.
func (m *Model) SetSize(width, height int) {
	m.Width = width
	m.Height = height
	m.comment.SetWidth(m.contentWidth())
	if m.Request.Preview != "" {
		m.preview = renderPreview(m.Request.Preview, m.contentWidth())
	}
}

// Comment returns the trimmed comment text.
func (m Model) Comment() string {
	return strings.TrimSpace(m.comment.Value())
}

// Toggle flips the approve/reject selection.
func (m *Model) Toggle() {
	m.Approved = !m.Approved
}

// Update forwards input to the comment field.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.comment, cmd = m.comment.Update(msg)
	return m, cmd
}

// View renders the modal.
func (m Model) View() string {
	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(m.Request.Title))
	b.WriteString("\n\n")
	b.WriteString(m.Request.Message)
	b.WriteString("\n")
	if m.Request.SourceURI != "" {
		b.WriteString(theme.DimStyle.Render("source: " + m.Request.SourceURI))
		b.WriteString("\n")
	}
	if m.preview != "" {
		b.WriteString("\n")
		b.WriteString(m.preview)
		b.WriteString("\n")
	}

	approve := "  approve  "
	reject := "  reject  "
	sel := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).Background(theme.ColorAccent)
	if m.Approved {
		approve = sel.Render(approve)
		reject = theme.DimStyle.Render(reject)
	} else {
		approve = theme.DimStyle.Render(approve)
		reject = sel.Render(reject)
	}
	b.WriteString("\n")
	b.WriteString(approve + "   " + reject)
	b.WriteString("\n\n")
	b.WriteString(m.comment.View())
	b.WriteString("\n")
	b.WriteString(theme.DimStyle.Render("tab: toggle decision  enter: submit"))

	return theme.BorderStyle.Width(width).Render(b.String())
}

func (m Model) contentWidth() int {
	w := m.Width - 6
	if w < 30 {
		w = 30
	}
	return w
}

func renderPreview(preview string, width int) string {
	if strings.TrimSpace(preview) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return preview
	}
	out, err := r.Render(preview)
	if err != nil {
		return preview
	}
	return strings.TrimRight(out, "\n")
}
