package gpio

import "errors"

// FakeReader is a test double that returns scripted button levels.
type FakeReader struct {
	// Samples contains scripted button levels to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// LEDWrite records one Set call.
type LEDWrite struct {
	LED LED
	On  bool
}

// FakeIndicators records indicator writes for test assertions.
type FakeIndicators struct {
	// LEDs holds the current level of every LED that was written.
	LEDs map[LED]bool

	// Writes contains every Set call in order.
	Writes []LEDWrite

	// Duties contains every SetBrightness call in order.
	Duties []uint8

	// SetError, if set, will be returned by Set and SetBrightness.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeIndicators creates a FakeIndicators with every LED off.
func NewFakeIndicators() *FakeIndicators {
	return &FakeIndicators{LEDs: make(map[LED]bool)}
}

// Set records the LED level.
func (f *FakeIndicators) Set(led LED, on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.LEDs[led] = on
	f.Writes = append(f.Writes, LEDWrite{LED: led, On: on})
	return nil
}

// SetBrightness records the duty.
func (f *FakeIndicators) SetBrightness(duty uint8) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Duties = append(f.Duties, duty)
	return nil
}

// Brightness returns the last duty written, or 0.
func (f *FakeIndicators) Brightness() uint8 {
	if len(f.Duties) == 0 {
		return 0
	}
	return f.Duties[len(f.Duties)-1]
}

// Close marks the indicators as closed.
func (f *FakeIndicators) Close() error {
	f.Closed = true
	return nil
}
