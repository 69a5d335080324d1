// Package gpio provides button input and indicator outputs with hardware abstraction.
// The real implementation uses the Linux GPIO character device and the PWM sysfs class.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the button input.
type Reader interface {
	// Read returns the logical button level (true = pressed).
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// LED identifies one of the on/off indicator outputs.
type LED int

const (
	// LEDHeartbeat blinks on every notifier fire while a peer is connected.
	LEDHeartbeat LED = iota
	// LEDMirror mirrors the value reported on the button register.
	LEDMirror
	// LEDLink pulses on connect and on every slider write.
	LEDLink
)

func (l LED) String() string {
	switch l {
	case LEDHeartbeat:
		return "heartbeat"
	case LEDMirror:
		return "mirror"
	case LEDLink:
		return "link"
	}
	return "unknown"
}

// Indicators drives the LED outputs and the PWM brightness channel.
type Indicators interface {
	// Set drives an on/off LED.
	Set(led LED, on bool) error

	// SetBrightness applies an 8-bit PWM duty to the brightness LED.
	SetBrightness(duty uint8) error

	// Close switches everything off and releases resources.
	Close() error
}

// Pins holds the line offsets (BCM numbering) of the panel.
type Pins struct {
	Chip      string
	Button    int
	Heartbeat int
	Mirror    int
	Link      int
	// ButtonActiveLow inverts the button (pressed pulls the line low).
	ButtonActiveLow bool
}

// PWM identifies a kernel PWM channel.
type PWM struct {
	Chip      int
	Channel   int
	Frequency int // Hz
}

// Default pin assignment for a Raspberry Pi header.
const (
	DefaultChip         = "gpiochip0"
	DefaultPinButton    = 17
	DefaultPinHeartbeat = 27
	DefaultPinMirror    = 22
	DefaultPinLink      = 23
	DefaultPWMChip      = 0
	DefaultPWMChannel   = 0
	DefaultPWMFrequency = 5000
)
