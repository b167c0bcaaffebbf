//go:build windows

// Package gamepad polls the platform controller and normalizes raw samples.
package gamepad

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// xinputState mirrors XINPUT_STATE.
type xinputState struct {
	PacketNumber uint32
	Gamepad      xinputGamepad
}

// xinputGamepad mirrors XINPUT_GAMEPAD.
type xinputGamepad struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

var (
	xinputDLL      = windows.NewLazySystemDLL("xinput1_4.dll")
	xinputGetState = xinputDLL.NewProc("XInputGetState")
)

// XInputDevice reads controller 0 through the XInput API.
type XInputDevice struct {
	userIndex uint32
}

// NewDevice returns the platform controller device.
func NewDevice() (Device, error) {
	if err := xinputDLL.Load(); err != nil {
		return nil, err
	}
	return &XInputDevice{userIndex: 0}, nil
}

// Read queries XInputGetState for the device's user index.
func (d *XInputDevice) Read() (RawState, bool) {
	var state xinputState
	ret, _, _ := xinputGetState.Call(uintptr(d.userIndex), uintptr(unsafe.Pointer(&state)))
	if ret != 0 {
		return RawState{}, false
	}
	g := state.Gamepad
	return RawState{
		Buttons:      g.Buttons,
		LeftTrigger:  g.LeftTrigger,
		RightTrigger: g.RightTrigger,
		ThumbLX:      g.ThumbLX,
		ThumbLY:      g.ThumbLY,
		ThumbRX:      g.ThumbRX,
		ThumbRY:      g.ThumbRY,
	}, true
}
