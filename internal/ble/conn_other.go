//go:build !linux

package ble

import (
	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// watchConnections installs the adapter's connect handler, which the
// non-Linux backends invoke directly.
func watchConnections(adapter *bluetooth.Adapter, h Handler) (stop func() error, err error) {
	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		log.WithFields(log.Fields{"peer": device.Address.String(), "connected": connected}).Debug("ble: connection change")
		if connected {
			h.OnConnect()
		} else {
			h.OnDisconnect()
		}
	})
	return func() error { return nil }, nil
}
