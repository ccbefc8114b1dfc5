package navigator

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentic-research/gitsplit/internal/tree"
)

type styles struct {
	title   lipgloss.Style
	crumb   lipgloss.Style
	focused lipgloss.Style
	dir     lipgloss.Style
	file    lipgloss.Style
	muted   lipgloss.Style
	chip    lipgloss.Style
	popup   lipgloss.Style
	danger  lipgloss.Style
}

var ui = styles{
	title:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	crumb:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	focused: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true),
	dir:     lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	file:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	chip:    lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
	popup: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("203")).
		Padding(1, 2),
	danger: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
}

// chrome is the number of lines around the entry list.
const chrome = 6

func (m Model) View() string {
	switch m.screen {
	case screenEditor:
		return m.editorView()
	case screenPopup:
		return m.popupView()
	default:
		return m.navigatorView()
	}
}

func (m Model) header() string {
	title := ui.title.Render("gitsplit")
	round := ui.chip.Render(fmt.Sprintf("commit %d", m.session.Round()))
	return lipgloss.JoinHorizontal(lipgloss.Left, title, " ", round)
}

func (m Model) footer() string {
	t := m.session.Tree()
	return ui.muted.Render(fmt.Sprintf("%d/%d selected · %d of %d files left",
		t.SelectedCount(), t.LeafCount(), t.LeafCount(), m.session.Total()))
}

func (m Model) navigatorView() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(ui.crumb.Render(m.cursor.Breadcrumb()))
	b.WriteString("\n\n")

	entries := m.cursor.Entries()
	from, to := window(len(entries), m.cursor.Pos(), m.height-chrome)
	for i := from; i < to; i++ {
		b.WriteString(m.renderEntry(entries[i], i == m.cursor.Pos()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderEntry(e Entry, focused bool) string {
	name := e.Name
	style := ui.file
	if e.Dir {
		name += "/"
		style = ui.dir
	}
	line := m.glyph(e.Mark) + " " + name
	if focused {
		return ui.focused.Render("> " + line)
	}
	return "  " + style.Render(line)
}

func (m Model) glyph(mark tree.Mark) string {
	switch mark {
	case tree.Selected:
		return m.glyphs.Selected
	case tree.PartiallySelected:
		return m.glyphs.Partial
	default:
		return m.glyphs.Unselected
	}
}

func (m Model) editorView() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(ui.crumb.Render(fmt.Sprintf("%d files selected", m.session.Tree().SelectedCount())))
	b.WriteString("\n\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.editorHelp()))
	return b.String()
}

func (m Model) popupView() string {
	msg := "unknown error"
	if m.err != nil {
		msg = m.err.Error()
	}
	box := ui.popup.Render(ui.danger.Render("Error") + "\n\n" + msg + "\n\n" + ui.muted.Render("press any key"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// window returns the slice bounds of at most rows entries keeping pos
// visible. A non-positive rows shows everything.
func window(n, pos, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	from := pos - rows/2
	if from < 0 {
		from = 0
	}
	if from+rows > n {
		from = n - rows
	}
	return from, from + rows
}
