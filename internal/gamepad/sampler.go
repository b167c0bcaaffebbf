// Package gamepad polls the platform controller and normalizes raw samples.
package gamepad

// RawState is a platform controller sample before normalization.
type RawState struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

// Device reads raw controller state from the platform API.
type Device interface {
	// Read returns the current raw state, or false when no controller
	// is connected or the platform query fails.
	Read() (RawState, bool)
}

// Sampler normalizes device samples into frames. It is the single owner
// of the previous-tick button mask, so edges are always computed against
// real consecutive samples.
type Sampler struct {
	dev      Device
	deadzone int
	prev     Buttons
}

// NewSampler returns a sampler over dev with the given stick deadzone.
func NewSampler(dev Device, deadzone int) *Sampler {
	return &Sampler{dev: dev, deadzone: deadzone}
}

// Poll reads one sample. The second return is false when no controller is
// available this tick; callers treat that as "no input", not an error.
func (s *Sampler) Poll() (Frame, bool) {
	raw, ok := s.dev.Read()
	if !ok {
		return Frame{}, false
	}

	f := Frame{
		Buttons:  Buttons(raw.Buttons),
		Previous: s.prev,
		Sticks: Sticks{
			LeftX:  filterAxis(int(raw.ThumbLX), s.deadzone),
			LeftY:  filterAxis(int(raw.ThumbLY), s.deadzone),
			RightX: filterAxis(int(raw.ThumbRX), s.deadzone),
			RightY: filterAxis(int(raw.ThumbRY), s.deadzone),
		},
		Triggers: Triggers{Left: raw.LeftTrigger, Right: raw.RightTrigger},
	}
	s.prev = f.Buttons
	return f, true
}

// filterAxis suppresses values inside the deadzone and shifts values
// outside it by the threshold, so output is continuous from zero instead
// of jumping at the deadzone edge.
func filterAxis(v, deadzone int) int {
	switch {
	case v > deadzone:
		return v - deadzone
	case v < -deadzone:
		return v + deadzone
	default:
		return 0
	}
}
