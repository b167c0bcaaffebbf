//go:build !windows

// Package gamepad polls the platform controller and normalizes raw samples.
package gamepad

import "errors"

// NewDevice reports that no controller backend exists on this platform.
func NewDevice() (Device, error) {
	return nil, errors.New("gamepad polling is only implemented on windows")
}
