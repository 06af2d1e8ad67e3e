package mixer_test

import (
	"math"
	"testing"

	"github.com/alkime/mixgraph/internal/mixer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceVolume_Defaults(t *testing.T) {
	d := mixer.NewDeviceVolume(mixer.DefaultDeviceVolume)
	assert.Equal(t, 80.0, d.Displayed)
	assert.Equal(t, mixer.RemoteAuthoritative, d.Ownership)
	assert.False(t, d.Muted)

	assert.Equal(t, 80.0, mixer.NewDeviceVolume(math.NaN()).Displayed)
	assert.Equal(t, 100.0, mixer.NewDeviceVolume(140).Displayed)
}

func TestDeviceVolume_Change(t *testing.T) {
	t.Run("ignored while remote", func(t *testing.T) {
		d := mixer.NewDeviceVolume(50)
		_, ok := d.Change(20)
		assert.False(t, ok)
		assert.Equal(t, 50.0, d.Displayed)
	})

	t.Run("applied while grabbed", func(t *testing.T) {
		d := mixer.NewDeviceVolume(50)
		d.Press()

		v, ok := d.Change(20)
		require.True(t, ok)
		assert.Equal(t, 20.0, v)
		assert.Equal(t, 20.0, d.Displayed)
	})

	t.Run("clamped", func(t *testing.T) {
		d := mixer.NewDeviceVolume(50)
		d.Press()

		v, _ := d.Change(150)
		assert.Equal(t, 100.0, v)
		v, _ = d.Change(-3)
		assert.Equal(t, 0.0, v)
	})

	t.Run("ignored while muted", func(t *testing.T) {
		d := mixer.NewDeviceVolume(50)
		d.Press()
		d.ToggleMute()

		_, ok := d.Change(20)
		assert.False(t, ok)
		assert.Equal(t, 50.0, d.Displayed)
	})

	t.Run("non-finite rejected", func(t *testing.T) {
		d := mixer.NewDeviceVolume(50)
		d.Press()

		_, ok := d.Change(math.Inf(1))
		assert.False(t, ok)
		assert.Equal(t, 50.0, d.Displayed)
	})
}

func TestDeviceVolume_Reads(t *testing.T) {
	t.Run("applied and rounded", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		gen, ok := d.BeginRead()
		require.True(t, ok)

		assert.Equal(t, mixer.Applied, d.ApplyRead(gen, 42.6))
		assert.Equal(t, 43.0, d.Displayed)
	})

	t.Run("out of range is clamped", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		gen, _ := d.BeginRead()

		assert.Equal(t, mixer.Applied, d.ApplyRead(gen, 250))
		assert.Equal(t, 100.0, d.Displayed)
	})

	t.Run("no read while grabbed", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		d.Press()

		_, ok := d.BeginRead()
		assert.False(t, ok)
	})

	t.Run("press during read makes it stale", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		gen, _ := d.BeginRead()
		d.Press()

		assert.Equal(t, mixer.Stale, d.ApplyRead(gen, 10))
		assert.Equal(t, 80.0, d.Displayed)
	})

	t.Run("press and release during read still stale", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		gen, _ := d.BeginRead()
		d.Press()
		d.Release()

		assert.Equal(t, mixer.Stale, d.ApplyRead(gen, 10))
		assert.Equal(t, 80.0, d.Displayed)
	})

	t.Run("slow replies land after the next read starts", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		prev, _ := d.BeginRead()

		for i := range 10 {
			next, ok := d.BeginRead()
			require.True(t, ok)

			require.Equal(t, mixer.Applied, d.ApplyRead(prev, float64(30+i)), "reply %d", i)
			prev = next
		}

		assert.Equal(t, 39.0, d.Displayed)
	})

	t.Run("older reply after newer one is stale", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		older, _ := d.BeginRead()
		newer, _ := d.BeginRead()

		assert.Equal(t, mixer.Applied, d.ApplyRead(newer, 20))
		assert.Equal(t, mixer.Stale, d.ApplyRead(older, 10))
		assert.Equal(t, 20.0, d.Displayed)
	})

	t.Run("read started after release applies", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		d.Press()
		d.Release()
		gen, _ := d.BeginRead()

		assert.Equal(t, mixer.Applied, d.ApplyRead(gen, 10))
		assert.Equal(t, 10.0, d.Displayed)
	})

	t.Run("malformed keeps previous value", func(t *testing.T) {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			d := mixer.NewDeviceVolume(80)
			gen, _ := d.BeginRead()

			assert.Equal(t, mixer.Malformed, d.ApplyRead(gen, v))
			assert.Equal(t, 80.0, d.Displayed)
		}
	})

	t.Run("muted node still syncs", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		d.ToggleMute()
		gen, ok := d.BeginRead()
		require.True(t, ok)

		assert.Equal(t, mixer.Applied, d.ApplyRead(gen, 30))
		assert.Equal(t, 30.0, d.Displayed)
		assert.True(t, d.Muted)
	})
}

func TestDeviceVolume_Mute(t *testing.T) {
	t.Run("muted node cannot be grabbed and keeps polling", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		d.ToggleMute()

		assert.False(t, d.Press())
		assert.Equal(t, mixer.RemoteAuthoritative, d.Ownership)

		gen, ok := d.BeginRead()
		require.True(t, ok)
		assert.Equal(t, mixer.Applied, d.ApplyRead(gen, 30))
		assert.Equal(t, 30.0, d.Displayed)
	})

	t.Run("muting releases a grab", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		require.True(t, d.Press())

		assert.True(t, d.ToggleMute())
		assert.Equal(t, mixer.RemoteAuthoritative, d.Ownership)

		_, ok := d.BeginRead()
		assert.True(t, ok)
	})

	t.Run("unmuting leaves ownership alone", func(t *testing.T) {
		d := mixer.NewDeviceVolume(80)
		d.ToggleMute()

		assert.False(t, d.ToggleMute())
		assert.Equal(t, mixer.RemoteAuthoritative, d.Ownership)
		assert.True(t, d.Press())
	})
}

func TestAppVolume(t *testing.T) {
	t.Run("zero is a valid seed", func(t *testing.T) {
		assert.Equal(t, 0.0, mixer.NewAppVolume(0).Displayed)
	})

	t.Run("seed is clamped", func(t *testing.T) {
		assert.Equal(t, 100.0, mixer.NewAppVolume(180).Displayed)
		assert.Equal(t, 100.0, mixer.NewAppVolume(math.NaN()).Displayed)
	})

	t.Run("change without press", func(t *testing.T) {
		a := mixer.NewAppVolume(55)
		v, ok := a.Change(70)
		require.True(t, ok)
		assert.Equal(t, 70.0, v)
	})

	t.Run("muted gates edits", func(t *testing.T) {
		a := mixer.NewAppVolume(55)
		a.ToggleMute()
		_, ok := a.Change(70)
		assert.False(t, ok)
		assert.Equal(t, 55.0, a.Displayed)
	})
}
