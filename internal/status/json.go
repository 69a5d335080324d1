package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Peer          PeerJSON   `json:"peer"`
	Button        ButtonJSON `json:"button"`
	Slider        SliderJSON `json:"slider"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// PeerJSON reports the BLE peer state.
type PeerJSON struct {
	Connected bool `json:"connected"`
}

// ButtonJSON reports the debounced button and what was last sent.
type ButtonJSON struct {
	Pressed      bool `json:"pressed"`
	Toggle       bool `json:"toggle"`
	LastNotified *int `json:"last_notified"`
}

// SliderJSON reports the last slider write.
type SliderJSON struct {
	Intensity int `json:"intensity"`
	Duty      int `json:"duty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses       int `json:"presses"`
	Releases      int `json:"releases"`
	Notifications int `json:"notifications"`
	SliderWrites  int `json:"slider_writes"`
	Connects      int `json:"connects"`
	Disconnects   int `json:"disconnects"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DeviceName       string `json:"device_name"`
	PollMs           int64  `json:"poll_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	NotifyIntervalMs int64  `json:"notify_interval_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Report           string `json:"report"`
	ButtonWidth      int    `json:"button_width"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	var last *int
	if snap.Device.LastNotified >= 0 {
		v := snap.Device.LastNotified
		last = &v
	}

	return StatusInner{
		Peer: PeerJSON{Connected: snap.Device.Connected},
		Button: ButtonJSON{
			Pressed:      snap.Device.Stable,
			Toggle:       snap.Device.Toggle,
			LastNotified: last,
		},
		Slider: SliderJSON{
			Intensity: int(snap.Device.Intensity),
			Duty:      int(snap.Device.Duty),
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:       snap.Counts.Presses,
			Releases:      snap.Counts.Releases,
			Notifications: snap.Counts.Notifications,
			SliderWrites:  snap.Counts.SliderWrites,
			Connects:      snap.Counts.Connects,
			Disconnects:   snap.Counts.Disconnects,
		},
		Config: ConfigJSON{
			DeviceName:       snap.Config.DeviceName,
			PollMs:           snap.Config.PollMs,
			DebounceMs:       snap.Config.DebounceMs,
			NotifyIntervalMs: snap.Config.NotifyIntervalMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Report:           snap.Config.Report,
			ButtonWidth:      snap.Config.ButtonWidth,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
