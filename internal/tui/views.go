package tui

import (
	"fmt"
	"strings"

	"github.com/alkime/mixgraph/internal/graph"
	"github.com/alkime/mixgraph/internal/mixer"
	"github.com/alkime/mixgraph/internal/tui/components/sparkline"
	"github.com/alkime/mixgraph/internal/tui/style"
	"github.com/alkime/mixgraph/pkg/collections"
	"github.com/charmbracelet/lipgloss"
)

const (
	historyWidth = 48
	logLines     = 20
)

var columnTitles = [columnCount]string{"Inputs", "Apps", "Outputs"}

func (m *Model) View() string {
	if !m.engine.Ready() {
		return m.loading.View()
	}

	var sb strings.Builder

	sb.WriteString(m.tabs.View())
	sb.WriteString("\n\n")

	if m.status != "" {
		if m.statusErr {
			sb.WriteString(style.Error.Render(m.status))
		} else {
			sb.WriteString(style.Success.Render(m.status))
		}
		sb.WriteString("\n")
	}

	if err := m.engine.LastError(); err != nil {
		sb.WriteString(style.Warning.Render("enumeration failing, showing last known devices: " + err.Error()))
		sb.WriteString("\n")
	}

	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

func (m *Model) graphView() string {
	cols := m.columns()
	rendered := make([]string, 0, columnCount)

	for c, col := range cols {
		cards := []string{style.Column.Render(columnTitles[c])}
		for _, n := range col {
			cards = append(cards, m.card(n))
		}

		if len(col) == 0 {
			cards = append(cards, style.Muted.Render("  (none)"))
		}

		rendered = append(rendered, lipgloss.JoinVertical(lipgloss.Left, cards...))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	if n, ok := m.engine.Node(m.selected); ok && n.Kind == graph.KindDevice {
		spark := sparkline.New(history{engine: m.engine, id: n.ID}, historyWidth, 2)
		out += "\n\n" + style.Label.Render(n.Label()+" history") + "\n" + spark.View()
	}

	return out
}

func (m *Model) card(n mixer.NodeState) string {
	var sb strings.Builder

	sb.WriteString(style.Bullet.Render(glyph(n)))
	sb.WriteString(" ")
	sb.WriteString(style.Label.Render(truncate(n.Label(), style.CardWidth-6)))
	sb.WriteString("\n")

	sb.WriteString(m.bar.ViewAs(n.Volume / mixer.MaxVolume))
	sb.WriteString(" ")

	if n.Muted {
		sb.WriteString(style.Muted.Render("MUTE"))
	} else {
		sb.WriteString(fmt.Sprintf("%3.0f", n.Volume))
	}

	sb.WriteString("\n")

	var meta []string
	if n.App != nil {
		meta = append(meta, fmt.Sprintf("pid %d", n.App.PID))
	} else if n.Device != nil {
		meta = append(meta, strings.ToLower(string(n.Device.DeviceType)))
	}

	if n.ID == m.selected && m.grabbed {
		meta = append(meta, style.Success.Render("● grabbed"))
	}

	if n.ID == m.connectFrom {
		meta = append(meta, style.Warning.Render("⇢ connecting"))
	}

	if edges := len(m.engineEdgesOf(n.ID)); edges > 0 {
		meta = append(meta, plural(edges, "link"))
	}

	sb.WriteString(style.Muted.Render(strings.Join(meta, " · ")))

	switch {
	case n.ID == m.selected && m.grabbed:
		return style.Grabbed.Render(sb.String())
	case n.ID == m.selected:
		return style.Selected.Render(sb.String())
	default:
		return style.Card.Render(sb.String())
	}
}

func (m *Model) engineEdgesOf(id string) []graph.Edge {
	return collections.Filter(m.engine.Edges(), graph.Touching(id))
}

func (m *Model) connectionsView() string {
	edges := m.engine.Edges()
	if len(edges) == 0 {
		return style.Muted.Render("No connections. Select an app or input, press c, then select an output and press c.")
	}

	var sb strings.Builder

	sb.WriteString(style.Title.Render(plural(len(edges), "connection")))
	sb.WriteString("\n\n")

	for _, e := range edges {
		sb.WriteString(style.Bullet.Render("• "))
		sb.WriteString(m.label(e.Source))
		sb.WriteString(style.Muted.Render(" → "))
		sb.WriteString(m.label(e.Target))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m *Model) logView() string {
	events := m.engine.Events(logLines)
	if len(events) == 0 {
		return style.Muted.Render("No activity yet.")
	}

	lines := make([]string, len(events))
	for i, ev := range events {
		switch ev.Kind {
		case mixer.EnumerationFailed, mixer.ReadFailed, mixer.WriteFailed:
			lines[i] = style.Warning.Render(ev.String())
		default:
			lines[i] = ev.String()
		}
	}

	return strings.Join(lines, "\n")
}

// history exposes a device's recent volumes to the sparkline.
type history struct {
	engine *mixer.Engine
	id     string
}

func (h history) Read() []float64 {
	return h.engine.History(h.id, historyWidth)
}

func glyph(n mixer.NodeState) string {
	switch {
	case n.Kind == graph.KindApp:
		return "♪"
	case n.IsInput():
		return "◉"
	default:
		return "◈"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
