// Package sparkline draws a series of 0-100 values as block characters.
package sparkline

import (
	"math"
	"strings"

	"github.com/alkime/mixgraph/internal/tui/style"
	"github.com/alkime/mixgraph/pkg/uictl"
)

// Block characters, index 0 empty through 8 full.
const blockChars = " ▁▂▃▄▅▆▇█"

// Model renders the newest values of a series right-aligned, one column per
// value. Older values scroll off the left edge.
type Model struct {
	levels uictl.Levels[float64]
	width  int
	height int
}

func New(levels uictl.Levels[float64], width, height int) Model {
	return Model{
		levels: levels,
		width:  max(1, width),
		height: max(1, height),
	}
}

func (m Model) View() string {
	if m.levels == nil {
		return m.renderEmpty()
	}

	values := m.levels.Read()
	if len(values) == 0 {
		return m.renderEmpty()
	}

	if len(values) > m.width {
		values = values[len(values)-m.width:]
	}

	return m.render(values)
}

func (m Model) render(values []float64) string {
	levels := make([]int, m.width)
	offset := m.width - len(values)

	for i, v := range values {
		levels[offset+i] = m.level(v)
	}

	runes := []rune(blockChars)

	var sb strings.Builder

	for row := range m.height {
		if row > 0 {
			sb.WriteString("\n")
		}

		var rowSB strings.Builder
		for _, level := range levels {
			rowSB.WriteRune(runes[m.blockIndexForRow(level, row)])
		}

		sb.WriteString(style.Progress.Render(rowSB.String()))
	}

	return sb.String()
}

// level maps a 0-100 value onto 0..height*8. Any non-zero value shows at
// least one eighth so quiet devices stay visible.
func (m Model) level(v float64) int {
	if !uictl.Finite(v) || v <= 0 {
		return 0
	}

	maxLevel := m.height * 8
	level := int(math.Round(uictl.Clamp(v, 0, 100) / 100 * float64(maxLevel)))

	return max(1, level)
}

// blockIndexForRow returns the block index for a column level at a row. Row
// 0 is the top.
func (m Model) blockIndexForRow(level, row int) int {
	base := (m.height - 1 - row) * 8

	return uictl.Clamp(level-base, 0, 8)
}

func (m Model) renderEmpty() string {
	var sb strings.Builder

	for row := range m.height {
		if row > 0 {
			sb.WriteString("\n")
		}

		fill := " "
		if row == m.height-1 {
			fill = "▁"
		}

		sb.WriteString(style.Muted.Render(strings.Repeat(fill, m.width)))
	}

	return sb.String()
}
