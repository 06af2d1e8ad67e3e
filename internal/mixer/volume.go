package mixer

import "github.com/alkime/mixgraph/pkg/uictl"

const (
	MinVolume = 0
	MaxVolume = 100

	// DefaultDeviceVolume is shown by a device node until its first read lands.
	DefaultDeviceVolume = 80
)

// Ownership says who decides the displayed value of a device node.
type Ownership int

const (
	// RemoteAuthoritative: the poll loop may overwrite the displayed value.
	RemoteAuthoritative Ownership = iota
	// LocalAuthoritative: the user holds the control and reads are discarded.
	LocalAuthoritative
)

func (o Ownership) String() string {
	if o == LocalAuthoritative {
		return "local"
	}

	return "remote"
}

// ApplyResult is the outcome of offering a read result to a DeviceVolume.
type ApplyResult int

const (
	Applied ApplyResult = iota
	Stale
	Malformed
)

func (r ApplyResult) String() string {
	switch r {
	case Applied:
		return "applied"
	case Stale:
		return "stale"
	default:
		return "malformed"
	}
}

// DeviceVolume is the sync state of one device node. A muted node cannot be
// grabbed and keeps accepting reads.
//
// Every Press and BeginRead takes the next generation. A read result applies
// only if it started after the last Press and after the last applied read, so
// a slow reply still lands while the node stays remote and an out-of-order
// one never rolls the value back.
type DeviceVolume struct {
	Displayed float64
	Muted     bool
	Ownership Ownership

	gen       uint64
	pressedAt uint64
	appliedAt uint64
}

func NewDeviceVolume(initial float64) *DeviceVolume {
	if !uictl.Finite(initial) {
		initial = DefaultDeviceVolume
	}

	return &DeviceVolume{Displayed: uictl.Clamp(initial, MinVolume, MaxVolume)}
}

// Press hands the control to the user. Any read already in flight becomes
// stale. A muted node stays with the poll loop.
func (d *DeviceVolume) Press() bool {
	if d.Muted {
		return false
	}

	d.gen++
	d.pressedAt = d.gen
	d.Ownership = LocalAuthoritative

	return true
}

// Release hands the control back to the poll loop.
func (d *DeviceVolume) Release() {
	d.Ownership = RemoteAuthoritative
}

// Change sets the displayed value from a user edit and returns the value to
// write. Edits are ignored unless the user holds the control and the node is
// not muted.
func (d *DeviceVolume) Change(v float64) (float64, bool) {
	if d.Ownership != LocalAuthoritative || d.Muted || !uictl.Finite(v) {
		return d.Displayed, false
	}

	d.Displayed = uictl.Clamp(v, MinVolume, MaxVolume)

	return d.Displayed, true
}

// ToggleMute flips Muted. Muting a grabbed node releases it.
func (d *DeviceVolume) ToggleMute() bool {
	d.Muted = !d.Muted
	if d.Muted {
		d.Release()
	}

	return d.Muted
}

// BeginRead starts a poll read and returns its generation. No read is issued
// while the user holds the control. Earlier reads stay valid.
func (d *DeviceVolume) BeginRead() (uint64, bool) {
	if d.Ownership != RemoteAuthoritative {
		return 0, false
	}

	d.gen++

	return d.gen, true
}

// ApplyRead offers the result of the read started at gen.
func (d *DeviceVolume) ApplyRead(gen uint64, v float64) ApplyResult {
	if d.Ownership != RemoteAuthoritative || gen <= d.pressedAt || gen <= d.appliedAt {
		return Stale
	}

	pct, ok := uictl.Percent(v)
	if !ok {
		return Malformed
	}

	d.Displayed = pct
	d.appliedAt = gen

	return Applied
}

// AppVolume is the sync state of one application node. It is seeded once and
// never re-read.
type AppVolume struct {
	Displayed float64
	Muted     bool
}

// NewAppVolume seeds from the session volume. Zero is a valid seed; a
// non-finite one falls back to full volume.
func NewAppVolume(initial float64) *AppVolume {
	if !uictl.Finite(initial) {
		initial = MaxVolume
	}

	return &AppVolume{Displayed: uictl.Clamp(initial, MinVolume, MaxVolume)}
}

// Change sets the displayed value and returns the value to write.
func (a *AppVolume) Change(v float64) (float64, bool) {
	if a.Muted || !uictl.Finite(v) {
		return a.Displayed, false
	}

	a.Displayed = uictl.Clamp(v, MinVolume, MaxVolume)

	return a.Displayed, true
}

// ToggleMute only gates editing; nothing is sent to the backend.
func (a *AppVolume) ToggleMute() bool {
	a.Muted = !a.Muted

	return a.Muted
}
