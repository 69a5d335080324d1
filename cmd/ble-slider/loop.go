package main

import (
	"os"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/ble-slider/internal/ble"
	"github.com/sweeney/ble-slider/internal/gpio"
	"github.com/sweeney/ble-slider/internal/logic"
	"github.com/sweeney/ble-slider/internal/mqtt"
	"github.com/sweeney/ble-slider/internal/status"
)

// loop owns the device state. Every mutation happens on the goroutine
// running run: GPIO ticks, BLE callbacks (via bleEvents) and shutdown.
type loop struct {
	reader     gpio.Reader
	indicators gpio.Indicators
	peripheral ble.Peripheral
	bleEvents  <-chan ble.Event
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // may be nil
	tracker    *status.Tracker       // may be nil
	cfg        logic.Config
	heartbeat  time.Duration

	device *logic.Device
	leds   map[gpio.LED]bool
}

func (l *loop) run(now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	l.device = logic.NewDevice(l.cfg, now())
	l.leds = make(map[gpio.LED]bool)

	for {
		select {
		case s := <-sig:
			l.shutdown(s, now())
			return nil

		case ev := <-l.bleEvents:
			l.handleBLE(ev, now())
			l.updateTracker()

		case <-tick:
			l.tick(now())
		}
	}
}

func (l *loop) tick(t time.Time) {
	pressed, err := l.reader.Read()
	if err != nil {
		log.WithError(err).Warn("gpio read error")
		return
	}

	frame := l.device.Tick(logic.Input{Pressed: pressed, Time: t})
	l.publish(frame.Events)

	if l.device.Connected() {
		if frame.Fired {
			l.setLED(gpio.LEDHeartbeat, frame.Heartbeat)
			l.setLED(gpio.LEDMirror, frame.Mirror)
		}
		l.setLED(gpio.LEDLink, frame.Link)
	} else {
		l.setLED(gpio.LEDHeartbeat, false)
		l.setLED(gpio.LEDLink, false)
	}

	if frame.Notify {
		if err := l.peripheral.NotifyButton(frame.Value); err != nil {
			log.WithError(err).Warn("button notify failed")
		}
	}

	if hb := l.device.CheckHeartbeat(t, l.heartbeat); hb != nil {
		log.WithFields(log.Fields{
			"uptime":        hb.Uptime,
			"presses":       hb.Counts.Presses,
			"notifications": hb.Counts.Notifications,
			"slider_writes": hb.Counts.SliderWrites,
			"connects":      hb.Counts.Connects,
		}).Info("heartbeat")

		hbEvent := mqtt.SystemEvent{
			Timestamp: hb.Timestamp,
			Event:     "HEARTBEAT",
		}
		if l.tracker != nil {
			l.updateTracker()
			hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := l.publisher.PublishSystem(hbEvent); err != nil {
			log.WithError(err).Warn("heartbeat publish error")
		}
	}

	l.updateTracker()
}

func (l *loop) handleBLE(ev ble.Event, t time.Time) {
	switch ev.Kind {
	case ble.EventConnected:
		log.Info("client connected")
		l.publish(l.device.Connect(t))

	case ble.EventDisconnected:
		log.Info("client disconnected")
		l.publish(l.device.Disconnect(t))

	case ble.EventSliderWrite:
		upd, events, ok := l.device.WriteSlider(ev.Payload, t)
		if !ok {
			log.Warn("ignoring empty slider write")
			return
		}
		entry := log.WithFields(log.Fields{"intensity": upd.Intensity, "duty": upd.Duty})
		if upd.Clamped {
			entry.Warn("slider value above range, clamped")
		} else {
			entry.Info("slider set")
		}
		if err := l.indicators.SetBrightness(upd.Duty); err != nil {
			log.WithError(err).Warn("set brightness failed")
		}
		l.publish(events)

	default:
		log.WithField("kind", ev.Kind).Warn("unknown ble event")
	}
}

// setLED writes an indicator only when its level changes.
func (l *loop) setLED(led gpio.LED, on bool) {
	if cur, ok := l.leds[led]; ok && cur == on {
		return
	}
	if err := l.indicators.Set(led, on); err != nil {
		log.WithError(err).WithField("led", led).Warn("indicator write failed")
		return
	}
	l.leds[led] = on
}

func (l *loop) publish(events []logic.Event) {
	for _, event := range events {
		log.WithFields(log.Fields{"event": event.Type, "value": event.Value}).Debug("event")
		if err := l.publisher.Publish(event); err != nil {
			log.WithError(err).Warn("publish error")
		}
	}
}

func (l *loop) updateTracker() {
	if l.tracker == nil {
		return
	}
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
	l.tracker.Update(l.device.CurrentState(), l.device.EventCountsSnapshot())
}

func (l *loop) shutdown(s os.Signal, t time.Time) {
	log.WithField("signal", s).Info("shutting down")
	signalName := "UNKNOWN"
	switch s {
	case syscall.SIGINT:
		signalName = "SIGINT"
	case syscall.SIGTERM:
		signalName = "SIGTERM"
	}

	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if l.tracker != nil {
		l.updateTracker()
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.WithError(err).Warn("failed to publish shutdown event")
	} else {
		log.Info("published shutdown event")
	}
}
