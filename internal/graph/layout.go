package graph

import "github.com/alkime/mixgraph/internal/backend"

// Column x positions and row geometry of computed node placement.
const (
	InputColumnX  = 0
	AppColumnX    = 450
	OutputColumnX = 900
	RowHeight     = 160
	RowOffset     = 50
)

// RowY is the y position of the given row within a column.
func RowY(row int) float64 {
	return float64(row*RowHeight + RowOffset)
}

// Target computes the node set one enumeration cycle asks for: devices in
// backend order followed by sessions. Each column numbers its rows from 0.
func Target(devices []backend.AudioDevice, sessions []backend.AppSession) []Node {
	nodes := make([]Node, 0, len(devices)+len(sessions))
	keys := DeviceKeys(devices)

	var inputs, outputs int
	for i, d := range devices {
		pos := Position{X: OutputColumnX, Y: RowY(outputs)}
		if d.Type.IsInput() {
			pos = Position{X: InputColumnX, Y: RowY(inputs)}
			inputs++
		} else {
			outputs++
		}

		nodes = append(nodes, Node{
			ID:       keys[i],
			Kind:     KindDevice,
			Position: pos,
			Device:   &DeviceData{Label: d.Name, DeviceType: d.Type},
		})
	}

	for i, s := range sessions {
		nodes = append(nodes, Node{
			ID:       AppKey(s.PID),
			Kind:     KindApp,
			Position: Position{X: AppColumnX, Y: RowY(i)},
			App:      &AppData{Label: s.Name, PID: s.PID, InitialVolume: s.Volume},
		})
	}

	return nodes
}
