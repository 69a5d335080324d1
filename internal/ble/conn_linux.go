//go:build linux

package ble

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

const (
	bluezDevice       = "org.bluez.Device1"
	propertiesIface   = "org.freedesktop.DBus.Properties"
	propertiesChanged = propertiesIface + ".PropertiesChanged"
)

// watchConnections follows the Connected property of BlueZ devices on the
// system bus. The adapter's connect handler is never invoked on Linux, so
// peer connections are observed here instead.
func watchConnections(_ *bluetooth.Adapter, h Handler) (stop func() error, err error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(0, bluezDevice),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("match device properties: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	peers := newPeerSet(h)
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Closed by the connection on Close.
		for sig := range signals {
			peers.apply(sig)
		}
	}()

	return func() error {
		err := conn.Close()
		<-done
		return err
	}, nil
}

// peerSet turns per-device Connected changes into panel connect and
// disconnect events: connected while at least one device is.
type peerSet struct {
	h         Handler
	connected map[dbus.ObjectPath]bool
}

func newPeerSet(h Handler) *peerSet {
	return &peerSet{h: h, connected: make(map[dbus.ObjectPath]bool)}
}

func (s *peerSet) apply(sig *dbus.Signal) {
	connected, ok := connectedChange(sig)
	if !ok {
		return
	}

	was := len(s.connected) > 0
	if connected {
		s.connected[sig.Path] = true
	} else {
		delete(s.connected, sig.Path)
	}
	now := len(s.connected) > 0

	log.WithFields(log.Fields{"peer": sig.Path, "connected": connected}).Debug("ble: connection change")
	switch {
	case !was && now:
		s.h.OnConnect()
	case was && !now:
		s.h.OnDisconnect()
	}
}

// connectedChange extracts the Connected value from a Device1
// PropertiesChanged signal. ok is false for any other signal.
func connectedChange(sig *dbus.Signal) (connected, ok bool) {
	if sig == nil || sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return false, false
	}
	if iface, _ := sig.Body[0].(string); iface != bluezDevice {
		return false, false
	}
	changed, _ := sig.Body[1].(map[string]dbus.Variant)
	v, found := changed["Connected"]
	if !found {
		return false, false
	}
	connected, ok = v.Value().(bool)
	return connected, ok
}
