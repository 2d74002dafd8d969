package metrics

import (
	"time"
)

// Source exposes the state the collector samples
type Source interface {
	// SubscriberCounts returns the number of subscribers per topic
	SubscriberCounts() map[string]int
	// AudioRunning reports whether the engine event channel is open
	AudioRunning() bool
	// LastHeardFrom returns when the last engine message arrived
	LastHeardFrom() time.Time
}

// Collector periodically samples a Source into gauges and the health registry
type Collector struct {
	source     Source
	interval   time.Duration
	staleAfter time.Duration
	stopCh     chan struct{}
}

// NewCollector creates a new metrics collector. The engine component is
// reported unhealthy when the channel is open but silent for staleAfter.
func NewCollector(source Source, interval, staleAfter time.Duration) *Collector {
	return &Collector{
		source:     source,
		interval:   interval,
		staleAfter: staleAfter,
		stopCh:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	for topic, n := range c.source.SubscriberCounts() {
		Subscribers.WithLabelValues(topic).Set(float64(n))
	}

	if !c.source.AudioRunning() {
		EngineConnected.Set(0)
		UpdateComponent(ComponentEngine, false, "audio not started")
		return
	}
	EngineConnected.Set(1)

	silent := time.Since(c.source.LastHeardFrom())
	if silent > c.staleAfter {
		UpdateComponent(ComponentEngine, false, "no engine message for "+silent.Truncate(time.Second).String())
		return
	}
	UpdateComponent(ComponentEngine, true, "")
}
