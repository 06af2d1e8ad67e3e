// Package tabs switches between named views that share one screen.
package tabs

import (
	"strings"

	"github.com/alkime/mixgraph/internal/tui/style"
	tea "github.com/charmbracelet/bubbletea"
)

// NextTabMsg moves to the next tab, wrapping around.
type NextTabMsg struct{}

// PrevTabMsg moves to the previous tab, wrapping around.
type PrevTabMsg struct{}

// NextTabCmd is a convenience command emitting NextTabMsg.
func NextTabCmd() tea.Msg { return NextTabMsg{} }

type Tab struct {
	Name string
	mdl  tea.Model
}

func NewTab(name string, mdl tea.Model) Tab {
	return Tab{Name: name, mdl: mdl}
}

// Model shows a tab bar and the current tab's view. Every message except tab
// switches goes to the current tab only.
type Model struct {
	tabs []Tab
	curr int
}

func New(tabs []Tab) Model {
	return Model{tabs: tabs}
}

func (m Model) current() Tab {
	return m.tabs[m.curr]
}

func (m Model) Init() tea.Cmd {
	return m.current().mdl.Init()
}

func (m Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	if len(m.tabs) == 0 {
		return m, nil
	}

	switch teaMsg.(type) {
	case NextTabMsg:
		m.curr = (m.curr + 1) % len(m.tabs)

		return m, m.current().mdl.Init()
	case PrevTabMsg:
		m.curr = (m.curr - 1 + len(m.tabs)) % len(m.tabs)

		return m, m.current().mdl.Init()
	}

	mdl, cmd := m.current().mdl.Update(teaMsg)
	m.tabs[m.curr].mdl = mdl

	return m, cmd
}

// View renders the tab bar above the current tab.
func (m Model) View() string {
	if len(m.tabs) == 0 {
		return ""
	}

	return m.Bar() + "\n\n" + m.current().mdl.View()
}

func (m Model) Bar() string {
	names := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.curr {
			names[i] = style.ActiveTab.Render(t.Name)
		} else {
			names[i] = style.InactiveTab.Render(t.Name)
		}
	}

	return strings.Join(names, style.Muted.Render("│"))
}

// CurrentName returns the name of the current tab.
func (m Model) CurrentName() string {
	if len(m.tabs) == 0 {
		return ""
	}

	return m.current().Name
}
