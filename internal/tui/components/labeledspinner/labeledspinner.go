// Package labeledspinner shows a spinner with a title while something loads.
package labeledspinner

import (
	"strings"

	"github.com/alkime/mixgraph/internal/tui/style"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model displays a spinner with title, subtitle, help text and an optional
// error line.
type Model struct {
	Spinner  spinner.Model
	Title    string
	Subtitle string
	Help     string
	Err      error
}

func New(s spinner.Spinner, title, subtitle, help string) Model {
	sp := spinner.New()
	sp.Spinner = s

	return Model{
		Spinner:  sp,
		Title:    title,
		Subtitle: subtitle,
		Help:     help,
	}
}

func (ls Model) Init() tea.Cmd {
	return ls.Spinner.Tick
}

// Update only reacts to spinner ticks.
func (ls Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	if tickMsg, ok := teaMsg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		ls.Spinner, cmd = ls.Spinner.Update(tickMsg)

		return ls, cmd
	}

	return ls, nil
}

func (ls Model) View() string {
	var sb strings.Builder

	sb.WriteString(ls.Spinner.View())
	sb.WriteString(" ")
	sb.WriteString(style.Title.Render(ls.Title))
	sb.WriteString("\n\n")

	sb.WriteString(style.Subtitle.Render(ls.Subtitle))
	sb.WriteString("\n\n")

	if ls.Err != nil {
		sb.WriteString(style.Error.Render("last attempt failed: " + ls.Err.Error()))
		sb.WriteString("\n\n")
	}

	sb.WriteString(style.Help.Render(ls.Help))

	return sb.String()
}
