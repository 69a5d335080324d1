// Command ble-slider exposes a brightness slider and a debounced button to a
// companion app over Bluetooth LE, and mirrors panel events to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/ble-slider/internal/ble"
	"github.com/sweeney/ble-slider/internal/config"
	"github.com/sweeney/ble-slider/internal/gpio"
	"github.com/sweeney/ble-slider/internal/mqtt"
	"github.com/sweeney/ble-slider/internal/status"
	"github.com/sweeney/ble-slider/internal/web"
)

// queueSize bounds pending BLE callbacks; the stack blocks when it is full.
const queueSize = 32

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cfg := config.Default()

	root := &cobra.Command{
		Use:           "ble-slider",
		Short:         "Serve a BLE brightness slider and button panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, configPath, &cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(cfg); err != nil {
				log.WithError(err).Error("fatal")
				return err
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	pf.String("name", cfg.DeviceName, "Advertised BLE device name")
	pf.Duration("poll", cfg.Poll.Duration, "Control loop tick interval")
	pf.Duration("debounce", cfg.Debounce.Duration, "Button debounce window")
	pf.Duration("notify-interval", cfg.NotifyInterval.Duration, "Minimum spacing between button notifications")
	pf.String("report", cfg.Report, `Button register source: "toggle" (flips per press) or "level" (live level)`)
	pf.Int("button-width", cfg.ButtonWidth, "Button payload width in bytes (1, or 2 for uint16 little-endian)")
	pf.Duration("heartbeat", cfg.Heartbeat.Duration, "MQTT heartbeat interval (0 to disable)")
	pf.String("broker", cfg.Broker, "MQTT broker address (empty to disable telemetry)")
	pf.String("http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	pf.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Serve the panel until interrupted (default)",
		RunE:  root.RunE,
	})

	root.AddCommand(&cobra.Command{
		Use:   "print-config",
		Short: "Print the effective configuration as TOML and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "read-button",
		Short: "Print the current raw button level and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := gpio.NewRealReader(cfg.Pins())
			if err != nil {
				return fmt.Errorf("init gpio: %w", err)
			}
			defer reader.Close()
			pressed, err := reader.Read()
			if err != nil {
				return fmt.Errorf("read gpio: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "button: %s\n", stateString(pressed))
			return nil
		},
	})

	return root
}

// loadConfig reads the config file (if any), applies explicitly set flags on
// top of it, validates the result and configures logging.
func loadConfig(cmd *cobra.Command, path string, cfg *config.Config) error {
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		*cfg = loaded
	}

	flags := cmd.Flags()
	var err error
	set := func(name string, apply func()) {
		if err == nil && flags.Changed(name) {
			apply()
		}
	}
	set("name", func() { cfg.DeviceName, err = flags.GetString("name") })
	set("poll", func() { cfg.Poll.Duration, err = flags.GetDuration("poll") })
	set("debounce", func() { cfg.Debounce.Duration, err = flags.GetDuration("debounce") })
	set("notify-interval", func() { cfg.NotifyInterval.Duration, err = flags.GetDuration("notify-interval") })
	set("report", func() { cfg.Report, err = flags.GetString("report") })
	set("button-width", func() { cfg.ButtonWidth, err = flags.GetInt("button-width") })
	set("heartbeat", func() { cfg.Heartbeat.Duration, err = flags.GetDuration("heartbeat") })
	set("broker", func() { cfg.Broker, err = flags.GetString("broker") })
	set("http", func() { cfg.HTTPAddr, err = flags.GetString("http") })
	set("log-level", func() { cfg.LogLevel, err = flags.GetString("log-level") })
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func run(cfg config.Config) error {
	// Initialize GPIO
	reader, err := gpio.NewRealReader(cfg.Pins())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	indicators, err := gpio.NewRealIndicators(cfg.Pins(), cfg.PWM())
	if err != nil {
		return fmt.Errorf("init indicators: %w", err)
	}
	defer indicators.Close()

	// Initialize MQTT
	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.NopPublisher{}
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), statusConfig(cfg))

	// Initialize BLE. Without the radio the device is useless, so any
	// failure here is fatal.
	queue := ble.NewQueue(queueSize)
	peripheral := ble.NewRealPeripheral(cfg.DeviceName, cfg.ButtonWidth)
	if err := peripheral.Start(queue); err != nil {
		return fmt.Errorf("init ble: %w", err)
	}
	defer peripheral.Close()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.WithField("addr", cfg.HTTPAddr).Info("http status server listening")
	}

	log.WithFields(log.Fields{
		"name":            cfg.DeviceName,
		"poll":            cfg.Poll.Duration,
		"debounce":        cfg.Debounce.Duration,
		"notify_interval": cfg.NotifyInterval.Duration,
		"report":          cfg.Report,
		"broker":          cfg.Broker,
	}).Info("started")

	ticker := time.NewTicker(cfg.Poll.Duration)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		reader:     reader,
		indicators: indicators,
		peripheral: peripheral,
		bleEvents:  queue.Events(),
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		cfg:        cfg.Logic(),
		heartbeat:  cfg.Heartbeat.Duration,
	}
	return l.run(time.Now, ticker.C, sigCh)
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		DeviceName:       cfg.DeviceName,
		PollMs:           cfg.Poll.Milliseconds(),
		DebounceMs:       cfg.Debounce.Milliseconds(),
		NotifyIntervalMs: cfg.NotifyInterval.Milliseconds(),
		HeartbeatMs:      cfg.Heartbeat.Milliseconds(),
		Report:           cfg.Report,
		ButtonWidth:      cfg.ButtonWidth,
		Broker:           cfg.Broker,
		HTTPAddr:         cfg.HTTPAddr,
	}
}

func stateString(on bool) string {
	if on {
		return "PRESSED"
	}
	return "RELEASED"
}
