package pixel

// Wheel maps pos in [0,255] onto a continuous hue cycle:
// red to green, green to blue, then blue back to red, in 85-wide bands.
// Positions outside [0,255] return Black.
func Wheel(pos int) Color {
	switch {
	case pos < 0 || pos > 255:
		return Black
	case pos < 85:
		return RGB(255-pos*3, pos*3, 0)
	case pos < 170:
		pos -= 85
		return RGB(0, 255-pos*3, pos*3)
	default:
		pos -= 170
		return RGB(pos*3, 0, 255-pos*3)
	}
}
