package pixel_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/emberglow/internal/pixel"
)

var TestRGBIsExpectedWord = []struct {
	R, G, B uint8
	Expect  uint32
}{
	{0x22, 0x11, 0x33, 0x112233},
	{0x44, 0x2A, 0x34, 0x2A4434},
	{0x88, 0x3B, 0x35, 0x3B8835},
	{0xFF, 0x00, 0x00, 0x00FF00},
	{0x00, 0xFF, 0x00, 0xFF0000},
}

var TestScaleTruncates = []struct {
	Base    Color
	Percent int
	Expect  Color
}{
	{Color{255, 120, 10}, 100, Color{255, 120, 10}},
	{Color{255, 120, 10}, 40, Color{102, 48, 4}},
	{Color{255, 60, 10}, 77, Color{196, 46, 7}},
	{Color{255, 60, 10}, 33, Color{84, 19, 3}},
	{Color{1, 1, 1}, 99, Color{0, 0, 0}},
	{Color{200, 200, 200}, 150, Color{255, 255, 255}},
	{Color{200, 200, 200}, -10, Color{0, 0, 0}},
}

func TestColorsGRB(t *testing.T) {
	for k, v := range TestRGBIsExpectedWord {
		t.Run("Given RGB"+strconv.Itoa(k), func(t *testing.T) {
			col := Color{R: v.R, G: v.G, B: v.B}
			assert.Equal(t, v.Expect, col.Uint32(), "should pack as GRB")
			assert.Equal(t, col, FromUint32(v.Expect), "should unpack to the same color")
		})
	}
}

func TestColorScale(t *testing.T) {
	for k, v := range TestScaleTruncates {
		t.Run("Given percent"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, v.Base.Scale(v.Percent))
		})
	}
}

func TestRGBClamps(t *testing.T) {
	assert.Equal(t, Color{0, 255, 128}, RGB(-4, 300, 128))
}

func TestFromHex(t *testing.T) {
	c, err := FromHex("#ff780a")
	require.NoError(t, err)
	assert.Equal(t, Color{255, 120, 10}, c)
	assert.Equal(t, "#ff780a", c.Hex())

	_, err = FromHex("ember")
	assert.Error(t, err)
}
