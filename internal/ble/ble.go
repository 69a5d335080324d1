// Package ble exposes the panel over a Bluetooth LE GATT service.
// The real implementation uses tinygo.org/x/bluetooth (BlueZ on Linux).
// The fake implementation allows testing without a radio.
package ble

import (
	"encoding/binary"
	"fmt"
)

// GATT identifiers shared with the companion app. They must not change.
const (
	ServiceUUID = "ABCD1234-0aaa-467a-9538-01f0652c74e8"
	SliderUUID  = "ABCD1235-0aaa-467a-9538-01f0652c74e8" // notify + write, 1 byte 0-100
	ButtonUUID  = "ABCD1236-0aaa-467a-9538-01f0652c74e8" // notify + read, button value
)

// DefaultDeviceName is the advertised local name.
const DefaultDeviceName = "Sensore Techno Back Brace"

// Handler receives events from the wireless stack, one method per event.
// Implementations may be called from goroutines owned by the stack.
type Handler interface {
	OnConnect()
	OnDisconnect()
	OnSliderWrite(payload []byte)
}

// Peripheral is the GATT server collaborator.
type Peripheral interface {
	// Start registers the service, installs the handler and begins advertising.
	Start(h Handler) error

	// NotifyButton updates the button register and notifies subscribers.
	NotifyButton(value uint8) error

	// Close stops advertising.
	Close() error
}

// EncodeButton serializes a button value for the button register.
// Width 1 is a single byte; width 2 is a little-endian uint16, which is
// what the original companion app decodes.
func EncodeButton(value uint8, width int) ([]byte, error) {
	switch width {
	case 1:
		return []byte{value}, nil
	case 2:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(value))
		return buf, nil
	}
	return nil, fmt.Errorf("unsupported button payload width %d", width)
}
