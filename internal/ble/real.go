package ble

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// RealPeripheral serves the panel GATT service on the host Bluetooth adapter.
type RealPeripheral struct {
	adapter *bluetooth.Adapter
	adv     *bluetooth.Advertisement
	name    string
	width   int
	button  bluetooth.Characteristic
	slider  bluetooth.Characteristic

	stopWatch func() error
}

// NewRealPeripheral creates a peripheral on the default adapter that
// advertises name and encodes button values with the given payload width.
func NewRealPeripheral(name string, width int) *RealPeripheral {
	return &RealPeripheral{
		adapter: bluetooth.DefaultAdapter,
		name:    name,
		width:   width,
	}
}

// Start enables the adapter, registers the service and starts advertising.
// Any error here leaves the device unusable and should abort startup.
func (p *RealPeripheral) Start(h Handler) (err error) {
	serviceUUID, err := bluetooth.ParseUUID(ServiceUUID)
	if err != nil {
		return fmt.Errorf("parse service uuid: %w", err)
	}
	sliderUUID, err := bluetooth.ParseUUID(SliderUUID)
	if err != nil {
		return fmt.Errorf("parse slider uuid: %w", err)
	}
	buttonUUID, err := bluetooth.ParseUUID(ButtonUUID)
	if err != nil {
		return fmt.Errorf("parse button uuid: %w", err)
	}

	initial, err := EncodeButton(0, p.width)
	if err != nil {
		return err
	}

	// Must be installed before the adapter starts serving.
	stop, err := watchConnections(p.adapter, h)
	if err != nil {
		return fmt.Errorf("watch connections: %w", err)
	}
	p.stopWatch = stop
	defer func() {
		if err != nil {
			stop()
			p.stopWatch = nil
		}
	}()

	if err := p.adapter.Enable(); err != nil {
		return fmt.Errorf("enable adapter: %w", err)
	}

	err = p.adapter.AddService(&bluetooth.Service{
		UUID: serviceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &p.slider,
				UUID:   sliderUUID,
				Value:  []byte{0},
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicWritePermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					if offset != 0 {
						return
					}
					h.OnSliderWrite(value)
				},
			},
			{
				Handle: &p.button,
				UUID:   buttonUUID,
				Value:  initial,
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicReadPermission,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("add service: %w", err)
	}

	p.adv = p.adapter.DefaultAdvertisement()
	err = p.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    p.name,
		ServiceUUIDs: []bluetooth.UUID{serviceUUID},
	})
	if err != nil {
		return fmt.Errorf("configure advertisement: %w", err)
	}
	if err := p.adv.Start(); err != nil {
		return fmt.Errorf("start advertisement: %w", err)
	}

	log.WithFields(log.Fields{"name": p.name, "service": ServiceUUID}).Info("ble: advertising")
	return nil
}

// NotifyButton writes the encoded value to the button characteristic,
// which notifies subscribed peers.
func (p *RealPeripheral) NotifyButton(value uint8) error {
	payload, err := EncodeButton(value, p.width)
	if err != nil {
		return err
	}
	if _, err := p.button.Write(payload); err != nil {
		return fmt.Errorf("notify button: %w", err)
	}
	return nil
}

// Close stops advertising and the connection watcher.
func (p *RealPeripheral) Close() error {
	var errs []error
	if p.adv != nil {
		if err := p.adv.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop advertisement: %w", err))
		}
	}
	if p.stopWatch != nil {
		if err := p.stopWatch(); err != nil {
			errs = append(errs, fmt.Errorf("stop connection watch: %w", err))
		}
	}
	return errors.Join(errs...)
}
