package ble

// FakePeripheral records notifications and lets tests drive the handler.
type FakePeripheral struct {
	// Handler is the handler passed to Start.
	Handler Handler

	// Started tracks if Start was called successfully.
	Started bool

	// Notified contains every value passed to NotifyButton.
	Notified []uint8

	// Width is the button payload width used to encode Payloads.
	Width int

	// Payloads contains the encoded button payloads.
	Payloads [][]byte

	// StartError, if set, will be returned by Start.
	StartError error

	// NotifyError, if set, will be returned by NotifyButton.
	NotifyError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePeripheral creates a FakePeripheral using 1-byte button payloads.
func NewFakePeripheral() *FakePeripheral {
	return &FakePeripheral{Width: 1}
}

// Start records the handler.
func (f *FakePeripheral) Start(h Handler) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.Handler = h
	f.Started = true
	return nil
}

// NotifyButton records the value.
func (f *FakePeripheral) NotifyButton(value uint8) error {
	if f.NotifyError != nil {
		return f.NotifyError
	}
	payload, err := EncodeButton(value, f.Width)
	if err != nil {
		return err
	}
	f.Notified = append(f.Notified, value)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the peripheral as closed.
func (f *FakePeripheral) Close() error {
	f.Closed = true
	return nil
}

// Connect simulates a peer connecting.
func (f *FakePeripheral) Connect() {
	f.Handler.OnConnect()
}

// Disconnect simulates the peer going away.
func (f *FakePeripheral) Disconnect() {
	f.Handler.OnDisconnect()
}

// WriteSlider simulates the peer writing the slider register.
func (f *FakePeripheral) WriteSlider(payload []byte) {
	f.Handler.OnSliderWrite(payload)
}
