package sim

import "strings"

//Controls is the directional key state of one player.
type Controls struct {
	Left, Right, Up, Down bool
}

const (
	bitLeft byte = 1 << iota
	bitRight
	bitUp
	bitDown
)

//Bits packs the controls into a single byte for the wire.
func (c Controls) Bits() byte {
	var b byte
	if c.Left {
		b |= bitLeft
	}
	if c.Right {
		b |= bitRight
	}
	if c.Up {
		b |= bitUp
	}
	if c.Down {
		b |= bitDown
	}
	return b
}

//ControlsFromBits unpacks a byte produced by Controls.Bits. Unknown bits are ignored.
func ControlsFromBits(b byte) Controls {
	return Controls{
		Left:  b&bitLeft != 0,
		Right: b&bitRight != 0,
		Up:    b&bitUp != 0,
		Down:  b&bitDown != 0,
	}
}

//Direction returns the per-frame direction these controls steer a ball in.
//Left wins over right and up wins over down.
func (c Controls) Direction(speed float32) (x, y float32) {
	switch {
	case c.Left:
		x = -speed
	case c.Right:
		x = speed
	}
	switch {
	case c.Up:
		y = speed
	case c.Down:
		y = -speed
	}
	return x, y
}

func (c Controls) String() string {
	var held []string
	if c.Left {
		held = append(held, "left")
	}
	if c.Right {
		held = append(held, "right")
	}
	if c.Up {
		held = append(held, "up")
	}
	if c.Down {
		held = append(held, "down")
	}
	if len(held) == 0 {
		return "idle"
	}
	return strings.Join(held, "+")
}
