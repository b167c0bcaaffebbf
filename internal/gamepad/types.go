// Package gamepad polls the platform controller and normalizes raw samples.
package gamepad

// Buttons is the XInput-style digital button bitmask.
type Buttons uint16

const (
	// BtnDPadUp is the d-pad up button.
	BtnDPadUp Buttons = 0x0001
	// BtnDPadDown is the d-pad down button.
	BtnDPadDown Buttons = 0x0002
	// BtnDPadLeft is the d-pad left button.
	BtnDPadLeft Buttons = 0x0004
	// BtnDPadRight is the d-pad right button.
	BtnDPadRight Buttons = 0x0008
	// BtnStart is the start button.
	BtnStart Buttons = 0x0010
	// BtnBack is the back/select button.
	BtnBack Buttons = 0x0020
	// BtnLeftThumb is the left stick click.
	BtnLeftThumb Buttons = 0x0040
	// BtnRightThumb is the right stick click.
	BtnRightThumb Buttons = 0x0080
	// BtnLB is the left shoulder button.
	BtnLB Buttons = 0x0100
	// BtnRB is the right shoulder button.
	BtnRB Buttons = 0x0200
	// BtnA is the bottom face button.
	BtnA Buttons = 0x1000
	// BtnB is the right face button.
	BtnB Buttons = 0x2000
	// BtnX is the left face button.
	BtnX Buttons = 0x4000
	// BtnY is the top face button.
	BtnY Buttons = 0x8000
)

// Sticks holds deadzone-filtered analog stick axes.
type Sticks struct {
	LeftX  int
	LeftY  int
	RightX int
	RightY int
}

// Triggers holds raw analog trigger values (0..255).
type Triggers struct {
	Left  uint8
	Right uint8
}

// Frame is one normalized controller sample. Immutable once produced;
// Previous is the prior tick's mask and exists only for edge detection.
type Frame struct {
	Buttons  Buttons
	Previous Buttons
	Sticks   Sticks
	Triggers Triggers
}

// Held reports whether every bit in mask is down this frame.
func (f Frame) Held(mask Buttons) bool {
	return f.Buttons&mask == mask
}

// JustPressed reports whether btn transitioned up→down this frame.
func (f Frame) JustPressed(btn Buttons) bool {
	return f.Buttons&btn == btn && f.Previous&btn != btn
}

// JustReleased reports whether btn transitioned down→up this frame.
func (f Frame) JustReleased(btn Buttons) bool {
	return f.Buttons&btn != btn && f.Previous&btn == btn
}

// ComboPressed reports whether mask became fully held this frame.
// The combo's own edge is tracked: holding it does not refire.
func (f Frame) ComboPressed(mask Buttons) bool {
	return f.Buttons&mask == mask && f.Previous&mask != mask
}
