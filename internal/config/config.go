// Package config loads daemon settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/ble-slider/internal/ble"
	"github.com/sweeney/ble-slider/internal/gpio"
	"github.com/sweeney/ble-slider/internal/logic"
)

// Duration is a time.Duration that decodes from TOML strings like "100ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full daemon configuration.
type Config struct {
	DeviceName     string   `toml:"device_name"`
	Poll           Duration `toml:"poll"`
	Debounce       Duration `toml:"debounce"`
	NotifyInterval Duration `toml:"notify_interval"`
	PulseWidth     Duration `toml:"pulse_width"`
	Report         string   `toml:"report"`
	ButtonWidth    int      `toml:"button_width"`
	Heartbeat      Duration `toml:"heartbeat"`
	Broker         string   `toml:"broker"`
	ClientID       string   `toml:"client_id"`
	HTTPAddr       string   `toml:"http"`
	LogLevel       string   `toml:"log_level"`
	GPIO           GPIO     `toml:"gpio"`
}

// GPIO holds the pin assignment.
type GPIO struct {
	Chip            string `toml:"chip"`
	Button          int    `toml:"button"`
	ButtonActiveLow bool   `toml:"button_active_low"`
	Heartbeat       int    `toml:"heartbeat"`
	Mirror          int    `toml:"mirror"`
	Link            int    `toml:"link"`
	PWMChip         int    `toml:"pwm_chip"`
	PWMChannel      int    `toml:"pwm_channel"`
	PWMFrequency    int    `toml:"pwm_frequency"`
}

// Default returns the configuration of the reference board.
func Default() Config {
	lc := logic.DefaultConfig()
	return Config{
		DeviceName:     ble.DefaultDeviceName,
		Poll:           Duration{time.Millisecond},
		Debounce:       Duration{lc.Debounce},
		NotifyInterval: Duration{lc.NotifyInterval},
		PulseWidth:     Duration{lc.PulseWidth},
		Report:         string(lc.Report),
		ButtonWidth:    1,
		Heartbeat:      Duration{15 * time.Minute},
		ClientID:       "ble-slider",
		HTTPAddr:       ":80",
		LogLevel:       "info",
		GPIO: GPIO{
			Chip:         gpio.DefaultChip,
			Button:       gpio.DefaultPinButton,
			Heartbeat:    gpio.DefaultPinHeartbeat,
			Mirror:       gpio.DefaultPinMirror,
			Link:         gpio.DefaultPinLink,
			PWMChip:      gpio.DefaultPWMChip,
			PWMChannel:   gpio.DefaultPWMChannel,
			PWMFrequency: gpio.DefaultPWMFrequency,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DeviceName == "" {
		errs = append(errs, errors.New("device_name must not be empty"))
	}
	for name, d := range map[string]time.Duration{
		"poll":            c.Poll.Duration,
		"debounce":        c.Debounce.Duration,
		"notify_interval": c.NotifyInterval.Duration,
		"pulse_width":     c.PulseWidth.Duration,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.Heartbeat.Duration < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat.Duration))
	}
	if _, err := logic.ParseReportMode(c.Report); err != nil {
		errs = append(errs, err)
	}
	if c.ButtonWidth != 1 && c.ButtonWidth != 2 {
		errs = append(errs, fmt.Errorf("button_width must be 1 or 2, got %d", c.ButtonWidth))
	}
	if c.GPIO.PWMFrequency <= 0 {
		errs = append(errs, fmt.Errorf("gpio.pwm_frequency must be positive, got %d", c.GPIO.PWMFrequency))
	}
	return errors.Join(errs...)
}

// Logic returns the control-loop timing for the logic package.
func (c Config) Logic() logic.Config {
	return logic.Config{
		Debounce:       c.Debounce.Duration,
		NotifyInterval: c.NotifyInterval.Duration,
		PulseWidth:     c.PulseWidth.Duration,
		Report:         logic.ReportMode(c.Report),
	}
}

// Pins returns the GPIO line assignment.
func (c Config) Pins() gpio.Pins {
	return gpio.Pins{
		Chip:            c.GPIO.Chip,
		Button:          c.GPIO.Button,
		Heartbeat:       c.GPIO.Heartbeat,
		Mirror:          c.GPIO.Mirror,
		Link:            c.GPIO.Link,
		ButtonActiveLow: c.GPIO.ButtonActiveLow,
	}
}

// PWM returns the brightness channel.
func (c Config) PWM() gpio.PWM {
	return gpio.PWM{
		Chip:      c.GPIO.PWMChip,
		Channel:   c.GPIO.PWMChannel,
		Frequency: c.GPIO.PWMFrequency,
	}
}
