package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/pad-input/internal/logic"
)

// BufferSize is how many messages are kept while the broker is unreachable.
const BufferSize = 100

const publishTimeout = 5 * time.Second

// client is the part of paho.Client the publisher uses.
type client interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to an MQTT broker. Messages sent while the
// connection is down are buffered and replayed once it returns.
type RealPublisher struct {
	client client
	log    zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	buffer    *ringBuffer
	connected bool // a connection has been made at least once
}

// Options configures a RealPublisher.
type Options struct {
	Broker   string
	ClientID string
}

// NewRealPublisher starts connecting to the broker. Connection is retried in
// the background, so an unreachable broker is logged rather than returned.
func NewRealPublisher(o Options, log zerolog.Logger) (*RealPublisher, error) {
	p := newPublisher(nil, log)

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: p.now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.log.Warn().Err(err).Msg("mqtt connection lost")
		})

	c := paho.NewClient(opts)
	p.client = c

	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Warn().Str("broker", o.Broker).Msg("mqtt broker not reachable yet, retrying in background")
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

func newPublisher(c client, log zerolog.Logger) *RealPublisher {
	return &RealPublisher{
		client: c,
		log:    log,
		now:    time.Now,
		buffer: newRingBuffer(BufferSize),
	}
}

// Publish sends an input event. QoS 0, not retained.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a lifecycle event. QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// send publishes msg or buffers it when the connection is down. A message
// that fails to publish is buffered too, and the error returned.
func (p *RealPublisher) send(msg bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.hold(msg)
		return nil
	}
	if err := p.publish(msg); err != nil {
		p.hold(msg)
		return err
	}
	return nil
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

func (p *RealPublisher) hold(msg bufferedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buffer.push(msg) && p.buffer.dropped == 1 {
		p.log.Warn().Int("capacity", BufferSize).Msg("mqtt buffer full, dropping oldest")
	}
}

// Buffered returns the number of messages waiting for the connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

// onConnect replays buffered messages and, after a reconnect, announces it.
func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	pending := p.buffer.drainAll()
	reconnect := p.connected
	p.connected = true
	p.mu.Unlock()

	if reconnect {
		p.log.Info().Int("buffered", len(pending)).Msg("mqtt reconnected")
	}
	for i, msg := range pending {
		if err := p.publish(msg); err != nil {
			p.log.Warn().Err(err).Msg("mqtt replay failed")
			p.mu.Lock()
			for _, rest := range pending[i:] {
				p.buffer.push(rest)
			}
			p.mu.Unlock()
			return
		}
	}
	if !reconnect {
		return
	}
	if err := p.PublishSystem(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"}); err != nil {
		p.log.Warn().Err(err).Msg("failed to publish reconnect event")
	}
}

// IsConnected reports whether the broker connection is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
