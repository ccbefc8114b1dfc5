package navigator

import (
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentic-research/gitsplit/internal/config"
	"github.com/agentic-research/gitsplit/internal/split"
)

type screen int

const (
	screenNavigator screen = iota
	screenEditor
	screenPopup
)

// Model is the bubbletea model for one split session.
type Model struct {
	session *split.Session
	cursor  *Cursor
	editor  textarea.Model
	help    help.Model
	keys    keyMap
	glyphs  config.Glyphs

	screen    screen
	returnTo  screen // screen shown again once the popup is dismissed
	err       error
	completed bool

	width  int
	height int
}

// New builds a model browsing the session's current tree.
func New(session *split.Session, glyphs config.Glyphs) (Model, error) {
	c, err := NewCursor(session.Tree())
	if err != nil {
		return Model{}, err
	}

	ed := textarea.New()
	ed.Placeholder = "Commit message…"
	ed.CharLimit = 0
	ed.ShowLineNumbers = false
	ed.SetWidth(72)
	ed.SetHeight(8)

	return Model{
		session: session,
		cursor:  c,
		editor:  ed,
		help:    help.New(),
		keys:    newKeyMap(),
		glyphs:  glyphs,
	}, nil
}

// Completed reports whether every file was committed before the program
// exited.
func (m Model) Completed() bool {
	return m.completed
}

// Session returns the session driven by the model.
func (m Model) Session() *split.Session {
	return m.session
}

// Err returns the error shown in the popup, if any.
func (m Model) Err() error {
	if m.screen != screenPopup {
		return nil
	}
	return m.err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if w := msg.Width - 4; w > 20 {
			m.editor.SetWidth(w)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenPopup:
			m.screen = m.returnTo
			m.err = nil
			return m, nil
		case screenEditor:
			return m.updateEditor(msg)
		default:
			return m.updateNavigator(msg)
		}
	}

	if m.screen == screenEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateNavigator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor.Up()
	case key.Matches(msg, m.keys.Down):
		m.cursor.Down()
	case key.Matches(msg, m.keys.Enter):
		m.cursor.Enter()
	case key.Matches(msg, m.keys.Leave):
		m.cursor.Leave()
	case key.Matches(msg, m.keys.Toggle):
		m.cursor.Toggle()
	case key.Matches(msg, m.keys.Commit):
		if m.session.Tree().SelectedCount() == 0 {
			return m.popup(split.ErrNothingSelected), nil
		}
		m.screen = screenEditor
		return m, m.editor.Focus()
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editor.Blur()
		m.screen = screenNavigator
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m.spend()
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) spend() (tea.Model, tea.Cmd) {
	c, err := m.session.Spend(m.editor.Value())
	if err != nil {
		return m.popup(err), nil
	}
	log.Printf("navigator: round %d spent %d files: %q", m.session.Round()-1, len(c.Paths), c.Message)

	m.editor.Reset()
	m.editor.Blur()

	if m.session.Done() {
		m.completed = true
		return m, tea.Quit
	}

	cur, err := NewCursor(m.session.Tree())
	if err != nil {
		return m.popup(err), nil
	}
	m.cursor = cur
	m.screen = screenNavigator
	return m, nil
}

func (m Model) popup(err error) Model {
	log.Printf("navigator: %v", err)
	m.returnTo = m.screen
	m.screen = screenPopup
	m.err = err
	return m
}
