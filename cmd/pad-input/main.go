// Command pad-input decodes button input from a GPIO panel and the terminal
// keyboard and publishes press and release events to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/pad-input/internal/buttons"
	"github.com/sweeney/pad-input/internal/config"
	"github.com/sweeney/pad-input/internal/event"
	"github.com/sweeney/pad-input/internal/gpio"
	"github.com/sweeney/pad-input/internal/hook"
	"github.com/sweeney/pad-input/internal/logging"
	"github.com/sweeney/pad-input/internal/logic"
	"github.com/sweeney/pad-input/internal/metrics"
	"github.com/sweeney/pad-input/internal/mqtt"
	"github.com/sweeney/pad-input/internal/status"
	"github.com/sweeney/pad-input/internal/term"
	"github.com/sweeney/pad-input/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/pad-input/config.toml", "Path to the TOML config file")
	debug := flag.Bool("debug", false, "Log every decoded event (overrides the config file)")
	printState := flag.Bool("print-state", false, "Print the buttons held on the GPIO panel and exit")

	flag.Parse()

	if err := run(*configPath, *debug, *printState); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debug, printState bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Debug = true
	}

	// The keyboard source owns the terminal, so logs go to a file.
	logOut, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logging.New(logOut, cfg.Debug)

	var reader gpio.Reader
	if cfg.GPIO.Enabled || printState {
		pins := gpio.DefaultPins()
		if len(cfg.GPIO.Pins) > 0 {
			if pins, err = gpio.ParsePins(cfg.GPIO.Pins); err != nil {
				return err
			}
		}
		r, err := gpio.NewRealReader(cfg.GPIO.Chip, pins)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer r.Close()
		reader = r
	}

	if printState {
		return printHeld(os.Stdout, reader)
	}

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = offlinePublisher{}
	broker := ""
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewRealPublisher(mqtt.Options{Broker: cfg.MQTT.Broker, ClientID: cfg.MQTT.ClientID}, log)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
		broker = cfg.MQTT.Broker
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.PollMs,
		HeartbeatMs: cfg.HeartbeatMs,
		Broker:      broker,
		HTTPAddr:    cfg.HTTP.Addr,
		GPIO:        cfg.GPIO.Enabled,
		Keyboard:    cfg.Keyboard.Enabled,
	})
	tracker.SetDebug(cfg.Debug)
	tracker.SetMQTTConnected(publisher.IsConnected())

	p := newPipeline(log, tracker, cfg.EventBuffer)
	defer p.events.Close()

	startup := mqtt.SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		log.Info().Msg("published startup event")
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http status server listening")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var keyState *term.KeyState
	var keyCh chan buttons.Button
	if cfg.Keyboard.Enabled {
		keys := term.DefaultKeyMap()
		if len(cfg.Keyboard.Keys) > 0 {
			if keys, err = term.ParseKeyMap(cfg.Keyboard.Keys); err != nil {
				return err
			}
		}
		screen, err := term.Open()
		if err != nil {
			return fmt.Errorf("init keyboard: %w", err)
		}
		defer screen.Fini()

		keyState = term.NewKeyState(cfg.Hold())
		keyCh = make(chan buttons.Button, 64)
		quit := func() {
			select {
			case sigCh <- syscall.SIGINT:
			default:
			}
		}
		go term.Poll(screen, keys, keyCh, quit)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads := make(chan config.Config, 1)
	go func() {
		err := config.Watch(ctx, configPath,
			func(c config.Config) {
				select {
				case reloads <- c:
				default:
				}
			},
			func(err error) { log.Warn().Err(err).Msg("config reload failed") })
		if err != nil {
			log.Warn().Err(err).Msg("config watch disabled")
		}
	}()

	log.Info().
		Dur("poll", cfg.Poll()).
		Dur("heartbeat", cfg.Heartbeat()).
		Str("broker", broker).
		Bool("gpio", cfg.GPIO.Enabled).
		Bool("keyboard", cfg.Keyboard.Enabled).
		Msg("started")

	ticker := time.NewTicker(cfg.Poll())
	defer ticker.Stop()

	l := &loop{
		hook:       p.hook,
		reader:     reader,
		keys:       keyState,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		log:        log,
		heartbeat:  cfg.Heartbeat(),
		now:        time.Now,
	}
	return l.run(ticker.C, sigCh, keyCh, p.events.C, reloads)
}

// pipeline is the hook and its subscribers.
type pipeline struct {
	bus    *event.Bus
	hook   *hook.Hook
	events *event.Channel
}

// newPipeline wires the subscribers in publication order: diagnostics,
// metrics, the status tracker, and the buffered channel feeding MQTT.
func newPipeline(log zerolog.Logger, tracker *status.Tracker, buffer int, opts ...hook.Option) pipeline {
	bus := event.NewBus()
	bus.Subscribe(hook.Diagnostics(log))
	bus.Subscribe(metrics.ObserveEvent)
	if tracker != nil {
		bus.Subscribe(tracker.SetLastEvent)
	}
	events := bus.Channel(buffer, event.WithDropHook(func() {
		metrics.ObserveDropped()
		log.Warn().Msg("event buffer full, dropping event")
	}))
	return pipeline{
		bus:    bus,
		hook:   hook.New(bus, log, opts...),
		events: events,
	}
}

// loop drives the hook from the poll ticker and forwards its events.
type loop struct {
	hook       *hook.Hook
	reader     gpio.Reader    // nil when the GPIO panel is disabled
	keys       *term.KeyState // nil when the keyboard is disabled
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	log        zerolog.Logger
	heartbeat  time.Duration
	now        func() time.Time
}

// run processes frames until a signal arrives. A nil channel disables its
// source.
func (l *loop) run(tick <-chan time.Time, sig <-chan os.Signal, keyCh <-chan buttons.Button, events <-chan logic.Event, reloads <-chan config.Config) error {
	lastHeartbeat := l.now()

	for {
		select {
		case s := <-sig:
			l.log.Info().Str("signal", s.String()).Msg("shutting down")
			l.drain(events)
			l.shutdown(s)
			return nil

		case b := <-keyCh:
			if l.keys != nil {
				l.keys.Press(b, l.now())
			}

		case <-tick:
			t := l.now()
			if !l.frame(t) {
				continue
			}
			if l.heartbeat > 0 && t.Sub(lastHeartbeat) >= l.heartbeat {
				l.sendHeartbeat(t)
				lastHeartbeat = t
			}

		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			l.publish(e)

		case c := <-reloads:
			logging.SetDebug(c.Debug)
			if l.tracker != nil {
				l.tracker.SetDebug(c.Debug)
			}
			l.log.Info().Bool("debug", c.Debug).Msg("config reloaded")
		}
	}
}

// frame reads both sources and feeds one frame to the hook. It returns false
// when the panel could not be read and the frame was skipped.
func (l *loop) frame(t time.Time) bool {
	controller := 0
	if l.reader != nil {
		mask, err := l.reader.Read()
		if err != nil {
			l.log.Warn().Err(err).Msg("gpio read error")
			return false
		}
		controller = mask
	}
	keyboard := 0
	if l.keys != nil {
		keyboard = l.keys.Mask(t)
	}

	l.hook.Frame(keyboard, controller)

	if l.tracker != nil {
		l.tracker.Update(l.hook.State())
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
	}
	return true
}

func (l *loop) publish(e logic.Event) {
	if err := l.publisher.Publish(e); err != nil {
		metrics.ObservePublishError()
		l.log.Warn().Err(err).Msg("publish error")
	}
}

// drain publishes events still buffered at shutdown.
func (l *loop) drain(events <-chan logic.Event) {
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			l.publish(e)
		default:
			return
		}
	}
}

func (l *loop) sendHeartbeat(t time.Time) {
	st := l.hook.State()
	l.log.Info().
		Int("keyboard_pressed", st.Counts.KeyboardPressed).
		Int("controller_pressed", st.Counts.ControllerPressed).
		Int("inferred_releases", st.Counts.InferredReleases).
		Msg("heartbeat")

	hb := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
	if l.tracker != nil {
		hb.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
	}
	if err := l.publisher.PublishSystem(hb); err != nil {
		l.log.Warn().Err(err).Msg("heartbeat publish error")
	}
}

func (l *loop) shutdown(s os.Signal) {
	reason := signalName(s)
	ev := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if l.tracker != nil {
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := l.publisher.PublishSystem(ev); err != nil {
		l.log.Warn().Err(err).Msg("failed to publish shutdown event")
		return
	}
	l.log.Info().Msg("published shutdown event")
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// openLog returns the log destination: the configured file, or stderr when
// none is set and the keyboard is not using the terminal.
func openLog(cfg config.Config) (io.Writer, func(), error) {
	path := cfg.LogFile
	if path == "" && cfg.Keyboard.Enabled {
		path = "pad-input.log"
	}
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func printHeld(w io.Writer, reader gpio.Reader) error {
	mask, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	_, err = fmt.Fprintf(w, "Held: 0x%04X (%s)\n", mask, buttons.Describe(buttons.Decode(mask, false)))
	return err
}

// offlinePublisher stands in when MQTT is disabled.
type offlinePublisher struct{}

func (offlinePublisher) Publish(logic.Event) error            { return nil }
func (offlinePublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (offlinePublisher) Close() error                         { return nil }
func (offlinePublisher) IsConnected() bool                    { return false }
