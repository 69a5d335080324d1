//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "ble-slider"

// RealReader reads the button from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealReader requests the button line as an input.
func NewRealReader(pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(pins.Chip, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", pins.Chip, err)
	}

	// Grove style buttons drive the line high when pressed; bare switches
	// to ground need the pull-up and active-low inversion instead.
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullDown}
	if pins.ButtonActiveLow {
		opts = []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow}
	}

	line, err := chip.RequestLine(pins.Button, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pins.Button, err)
	}

	return &RealReader{chip: chip, line: line}, nil
}

// Read returns the logical button level.
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 1, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	if r.line != nil {
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealIndicators drives the LEDs through GPIO lines and brightness through kernel PWM.
type RealIndicators struct {
	chip  *gpiocdev.Chip
	lines map[LED]*gpiocdev.Line
	pwm   *sysfsPWM
}

// NewRealIndicators requests the LED lines as outputs (initially off) and
// enables the PWM channel at zero duty.
func NewRealIndicators(pins Pins, pwm PWM) (*RealIndicators, error) {
	chip, err := gpiocdev.NewChip(pins.Chip, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", pins.Chip, err)
	}

	ind := &RealIndicators{chip: chip, lines: make(map[LED]*gpiocdev.Line)}
	for led, pin := range map[LED]int{
		LEDHeartbeat: pins.Heartbeat,
		LEDMirror:    pins.Mirror,
		LEDLink:      pins.Link,
	} {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			ind.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", led, pin, err)
		}
		ind.lines[led] = line
	}

	p, err := openSysfsPWM(pwm)
	if err != nil {
		ind.Close()
		return nil, fmt.Errorf("open pwm: %w", err)
	}
	ind.pwm = p
	return ind, nil
}

// Set drives an on/off LED.
func (ind *RealIndicators) Set(led LED, on bool) error {
	line, ok := ind.lines[led]
	if !ok {
		return fmt.Errorf("unknown led %d", led)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s: %w", led, err)
	}
	return nil
}

// SetBrightness applies an 8-bit duty to the PWM channel.
func (ind *RealIndicators) SetBrightness(duty uint8) error {
	return ind.pwm.setDuty(duty)
}

// Close switches all outputs off and releases them. Lines are reconfigured
// as inputs so the LEDs do not stay lit after the daemon exits.
func (ind *RealIndicators) Close() error {
	var errs []error
	for led, line := range ind.lines {
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", led, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", led, err))
		}
	}
	if ind.pwm != nil {
		if err := ind.pwm.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if ind.chip != nil {
		if err := ind.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
