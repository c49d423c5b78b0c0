package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/engineering-on-display/eod-uaa/internal/chartconfig"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/mqtt"
)

// publishQueueSize bounds configurations waiting to be published.
const publishQueueSize = 64

// RetainedPublisher is implemented by *mqtt.Client.
type RetainedPublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// ConfigPublisher publishes rebuilt chart configurations to MQTT.
//
// ConfigRebuilt only queues the configuration; Run does the publishing, so
// a slow broker never delays the request that triggered the rebuild. When
// the queue is full the configuration is dropped with a warning; the next
// rebuild publishes a fresh one.
type ConfigPublisher struct {
	pub    RetainedPublisher
	queue  chan *chartconfig.ChartConfiguration
	logger Logger
	mu     sync.RWMutex
}

// NewConfigPublisher creates a publisher. Call Run to start publishing.
func NewConfigPublisher(pub RetainedPublisher) *ConfigPublisher {
	return &ConfigPublisher{
		pub:    pub,
		queue:  make(chan *chartconfig.ChartConfiguration, publishQueueSize),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger.
func (p *ConfigPublisher) SetLogger(logger Logger) {
	p.mu.Lock()
	p.logger = logger
	p.mu.Unlock()
}

func (p *ConfigPublisher) log() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

// ConfigRebuilt implements chartconfig.Listener.
func (p *ConfigPublisher) ConfigRebuilt(cfg *chartconfig.ChartConfiguration) {
	select {
	case p.queue <- cfg:
	default:
		p.log().Warn("chart config publish queue full, dropping", "building_id", cfg.BuildingID)
	}
}

// Run publishes queued configurations until ctx is cancelled.
func (p *ConfigPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-p.queue:
			p.publish(cfg)
		}
	}
}

func (p *ConfigPublisher) publish(cfg *chartconfig.ChartConfiguration) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		p.log().Error("encoding chart config", "building_id", cfg.BuildingID, "error", err)
		return
	}

	topic := mqtt.Topics{}.ChartConfig(cfg.BuildingID)
	if err := p.pub.PublishRetained(topic, payload); err != nil {
		p.log().Warn("publishing chart config", "topic", topic, "error", err)
		return
	}
	p.log().Debug("chart config published", "topic", topic, "bytes", len(payload))
}
