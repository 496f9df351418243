package pixel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/emberglow/internal/pixel"
)

func TestNewBufferRejectsEmpty(t *testing.T) {
	_, err := NewBuffer(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBufferSetOutOfRange(t *testing.T) {
	b, err := NewBuffer(16)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Set(16, Red), ErrOutOfRange)
	assert.ErrorIs(t, b.Set(-1, Red), ErrOutOfRange)
	_, err = b.At(99)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 16, b.Len(), "length must not change")
}

func TestBufferRoundTrip(t *testing.T) {
	b, err := NewBuffer(60)
	require.NoError(t, err)

	want := Color{12, 200, 77}
	require.NoError(t, b.Set(42, want))
	assert.Equal(t, want, b.Snapshot()[42])

	raw, err := b.At(42)
	require.NoError(t, err)
	assert.Equal(t, want, raw)
}

func TestBufferFill(t *testing.T) {
	b, err := NewBuffer(8)
	require.NoError(t, err)
	b.Fill(Purple)
	for i, c := range b.Snapshot() {
		assert.Equal(t, Purple, c, "pixel %d", i)
	}
}

func TestSnapshotScalesEveryChannel(t *testing.T) {
	b, err := NewBuffer(256)
	require.NoError(t, err)
	for c := 0; c < 256; c++ {
		require.NoError(t, b.Set(c, Color{uint8(c), uint8(255 - c), uint8(c / 2)}))
	}

	for _, f := range []float64{0, 0.1, 0.25, 1.0 / 3, 0.5, 0.77, 0.999, 1} {
		b.SetBrightness(f)
		snap := b.Snapshot()
		for c := 0; c < 256; c++ {
			raw, _ := b.At(c)
			assert.Equal(t, expectScaled(raw.R, f), snap[c].R)
			assert.Equal(t, expectScaled(raw.G, f), snap[c].G)
			assert.Equal(t, expectScaled(raw.B, f), snap[c].B)
		}
	}
}

func TestSnapshotDoesNotMutate(t *testing.T) {
	b, err := NewBuffer(4)
	require.NoError(t, err)
	b.Fill(White)

	b.SetBrightness(0.1)
	assert.Equal(t, Color{25, 25, 25}, b.Snapshot()[0])

	b.SetBrightness(1)
	assert.Equal(t, White, b.Snapshot()[0], "raw colors survive a dim snapshot")
}

func TestSnapshotClampsOutOfRangeBrightness(t *testing.T) {
	b, err := NewBuffer(1)
	require.NoError(t, err)
	require.NoError(t, b.Set(0, Color{200, 10, 0}))

	b.SetBrightness(2)
	assert.Equal(t, Color{255, 20, 0}, b.Snapshot()[0])

	b.SetBrightness(-1)
	assert.Equal(t, Black, b.Snapshot()[0])
}

func TestSnapshotIntoReusesStorage(t *testing.T) {
	b, err := NewBuffer(3)
	require.NoError(t, err)
	dst := make([]Color, 0, 8)
	out := b.SnapshotInto(dst)
	assert.Len(t, out, 3)
	assert.Equal(t, 8, cap(out))
}

func expectScaled(c uint8, f float64) uint8 {
	v := math.Floor(float64(c) * f)
	return uint8(math.Max(0, math.Min(255, v)))
}
