//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// sysfsRoot is the kernel PWM class directory. Tests point it at a temp dir.
var sysfsRoot = "/sys/class/pwm"

// sysfsPWM drives one channel of the kernel PWM class. The character device
// GPIO API has no PWM, so the channel is driven through its sysfs attributes.
type sysfsPWM struct {
	dir    string
	period int64 // ns
}

func openSysfsPWM(cfg PWM) (*sysfsPWM, error) {
	if cfg.Frequency <= 0 {
		return nil, fmt.Errorf("invalid pwm frequency %d", cfg.Frequency)
	}
	chipDir := filepath.Join(sysfsRoot, "pwmchip"+strconv.Itoa(cfg.Chip))
	dir := filepath.Join(chipDir, "pwm"+strconv.Itoa(cfg.Channel))

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := writeAttr(filepath.Join(chipDir, "export"), strconv.Itoa(cfg.Channel)); err != nil {
			return nil, err
		}
		// udev needs a moment to fix permissions on the new channel.
		if err := waitForDir(dir, time.Second); err != nil {
			return nil, err
		}
	}

	p := &sysfsPWM{
		dir:    dir,
		period: int64(time.Second) / int64(cfg.Frequency),
	}
	if err := writeAttr(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
		return nil, err
	}
	if err := writeAttr(filepath.Join(dir, "period"), strconv.FormatInt(p.period, 10)); err != nil {
		return nil, err
	}
	if err := writeAttr(filepath.Join(dir, "enable"), "1"); err != nil {
		return nil, err
	}
	return p, nil
}

// dutyNanos converts an 8-bit duty to nanoseconds of the period.
func (p *sysfsPWM) dutyNanos(duty uint8) int64 {
	return p.period * int64(duty) / 255
}

func (p *sysfsPWM) setDuty(duty uint8) error {
	return writeAttr(filepath.Join(p.dir, "duty_cycle"), strconv.FormatInt(p.dutyNanos(duty), 10))
}

func (p *sysfsPWM) close() error {
	if err := p.setDuty(0); err != nil {
		return err
	}
	return writeAttr(filepath.Join(p.dir, "enable"), "0")
}

func writeAttr(path, value string) error {
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func waitForDir(dir string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := os.Stat(filepath.Join(dir, "enable")); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("pwm channel %s did not appear", dir)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
