//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pins Pins) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// RealIndicators is not available on non-Linux platforms.
type RealIndicators struct{}

// NewRealIndicators returns an error on non-Linux platforms.
func NewRealIndicators(pins Pins, pwm PWM) (*RealIndicators, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (ind *RealIndicators) Set(led LED, on bool) error {
	return errUnsupported
}

// SetBrightness is not implemented on non-Linux platforms.
func (ind *RealIndicators) SetBrightness(duty uint8) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (ind *RealIndicators) Close() error {
	return nil
}
