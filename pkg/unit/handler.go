package unit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/fxboard/pkg/engine"
	"github.com/cuemby/fxboard/pkg/events"
	"github.com/cuemby/fxboard/pkg/log"
	"github.com/cuemby/fxboard/pkg/metrics"
	"github.com/cuemby/fxboard/pkg/types"
)

// Callback receives the live model after a change on its topic. It runs on the
// merging goroutine after the merge lock has been released, so it may read the
// model, call Snapshot and send commands. Keep the pointer only for the
// duration of the call.
type Callback = events.Callback[*types.UnitModel]

// Handler owns the canonical UnitModel. It merges engine events into the
// model, tells subscribers about changes and turns user intents into engine
// commands.
type Handler struct {
	mu    sync.Mutex
	model *types.UnitModel

	dispatchers map[events.Topic]*events.Dispatcher[*types.UnitModel]

	engine  engine.Engine
	devices engine.StartOptions

	// lifeMu guards the audio lifecycle; it is never held while merging
	lifeMu  sync.Mutex
	running atomic.Bool

	lastHeard atomic.Int64
	logger    zerolog.Logger
}

// NewHandler returns a handler with the model at its power-on defaults.
// Empty devices fall back to engine.DefaultDevice.
func NewHandler(eng engine.Engine, devices engine.StartOptions) *Handler {
	if devices.InDevice == "" {
		devices.InDevice = engine.DefaultDevice
	}
	if devices.OutDevice == "" {
		devices.OutDevice = engine.DefaultDevice
	}

	h := &Handler{
		model:       types.NewUnitModel(),
		dispatchers: make(map[events.Topic]*events.Dispatcher[*types.UnitModel]),
		engine:      eng,
		devices:     devices,
		logger:      log.WithComponent("unit"),
	}
	for _, topic := range events.AllTopics() {
		h.dispatchers[topic] = events.NewDispatcher[*types.UnitModel](topic)
	}
	return h
}

// Model returns the live model without locking. It is only safe to read from
// inside a callback or while audio is stopped; any other goroutine must use
// Snapshot.
func (h *Handler) Model() *types.UnitModel {
	return h.model
}

// Snapshot returns a deep copy of the model
func (h *Handler) Snapshot() *types.UnitModel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.model.Clone()
}

// Subscribe registers cb under key on topic, replacing any callback already
// registered under that key
func (h *Handler) Subscribe(topic events.Topic, key string, cb Callback) error {
	d, ok := h.dispatchers[topic]
	if !ok {
		return fmt.Errorf("%w: %q", events.ErrUnknownTopic, topic)
	}
	d.Subscribe(key, cb)
	return nil
}

// Unsubscribe removes key from topic. Unknown keys are ignored.
func (h *Handler) Unsubscribe(topic events.Topic, key string) error {
	d, ok := h.dispatchers[topic]
	if !ok {
		return fmt.Errorf("%w: %q", events.ErrUnknownTopic, topic)
	}
	d.Unsubscribe(key)
	return nil
}

// SubscriberCounts returns the number of subscribers per topic
func (h *Handler) SubscriberCounts() map[string]int {
	counts := make(map[string]int, len(h.dispatchers))
	for _, d := range h.dispatchers {
		counts[string(d.Topic())] = d.SubscriberCount()
	}
	return counts
}

// LastHeardFrom returns when the last event message arrived, or the zero time
func (h *Handler) LastHeardFrom() time.Time {
	ns := h.lastHeard.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// ProcessMessage decodes one raw event message and merges it. Every accepted
// fragment has been published before ProcessMessage returns.
func (h *Handler) ProcessMessage(raw []byte) {
	metrics.MessagesTotal.Inc()
	h.lastHeard.Store(time.Now().UnixNano())

	msg, err := Decode(raw)
	if err != nil {
		metrics.FragmentsTotal.WithLabelValues("message", "rejected").Inc()
		h.logger.Debug().Err(err).Int("bytes", len(raw)).Msg("Ignoring event message")
		return
	}
	h.Apply(msg)
}

// Apply merges a decoded message. Fragments are applied in a fixed order,
// each with its own publish.
func (h *Handler) Apply(msg Message) {
	for _, name := range msg.Rejected {
		metrics.FragmentsTotal.WithLabelValues(name, "rejected").Inc()
		h.logger.Debug().Str("fragment", name).Msg("Ignoring malformed fragment")
	}
	if msg.Empty() {
		return
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.MergeDuration)

	if msg.Levels != nil {
		levels := *msg.Levels
		h.merge(events.TopicLevels, func(m *types.UnitModel) {
			m.InputLeft = levels.InputLeft
			m.InputRight = levels.InputRight
			m.OutputLeft = levels.OutputLeft
			m.OutputRight = levels.OutputRight
		})
		h.accepted(FragmentLevelEvent)
	}

	if msg.HasPedalOptions() {
		h.setPedalOptions(msg.PedalOptions)
		h.accepted(FragmentPedalTypes)
	}

	if msg.LoadedBoards != nil {
		h.setLoadedBoards(msg.LoadedBoards)
		h.accepted(FragmentPedalInfo)
	}

	if msg.Midi != nil {
		h.SetMidiEvent(*msg.Midi)
		h.accepted(FragmentMidiEvent)
	}

	if msg.AudioHardware != nil {
		h.setAudioHardware(*msg.AudioHardware)
		h.accepted(FragmentAudioHardware)
	}
}

// SetMidiEvent records the last MIDI event and publishes on midi
func (h *Handler) SetMidiEvent(ev types.MidiEvent) {
	h.merge(events.TopicMidi, func(m *types.UnitModel) {
		m.MidiEvent = &ev
	})
}

// SetAudioHardware records the audio interface and publishes on unit
func (h *Handler) SetAudioHardware(driver, cardInfo string) {
	h.setAudioHardware(types.AudioHardware{Driver: driver, CardInfo: cardInfo})
}

// setPedalOptions replaces the pedal catalog. Consumers read the catalog when
// they need it, so nothing is published.
func (h *Handler) setPedalOptions(options []types.PedalOption) {
	h.mu.Lock()
	h.model.BoardInfo.PedalOptions = options
	h.mu.Unlock()
}

func (h *Handler) setLoadedBoards(boards []types.BoardData) {
	h.merge(events.TopicBoards, func(m *types.UnitModel) {
		m.BoardInfo.LoadedBoards = boards
	})
}

func (h *Handler) setAudioHardware(hw types.AudioHardware) {
	h.merge(events.TopicUnit, func(m *types.UnitModel) {
		m.AudioHardware = &hw
	})
}

// merge applies fn under the merge lock and publishes topic once the lock is
// released. Callbacks may therefore send commands whose replies merge again.
func (h *Handler) merge(topic events.Topic, fn func(*types.UnitModel)) {
	h.mu.Lock()
	fn(h.model)
	h.mu.Unlock()
	h.publish(topic)
}

func (h *Handler) publish(topic events.Topic) {
	h.dispatchers[topic].Publish(h.model)
}

func (h *Handler) accepted(fragment string) {
	metrics.FragmentsTotal.WithLabelValues(fragment, "accepted").Inc()
}

// AudioRunning reports whether the engine event channel is open
func (h *Handler) AudioRunning() bool {
	return h.running.Load()
}

// StartAudio opens the engine event channel. Every inbound message goes to
// ProcessMessage in arrival order. Starting while running replaces the
// existing channel.
func (h *Handler) StartAudio(ctx context.Context) error {
	h.lifeMu.Lock()
	defer h.lifeMu.Unlock()

	if h.running.Load() {
		h.logger.Info().Msg("Restarting audio")
		if err := h.stopLocked(); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to stop previous audio session")
		}
	}

	if err := h.engine.Start(ctx, h.devices, h.ProcessMessage); err != nil {
		metrics.UpdateComponent(metrics.ComponentEngine, false, err.Error())
		return fmt.Errorf("failed to start audio: %w", err)
	}

	h.running.Store(true)
	metrics.EngineConnected.Set(1)
	metrics.UpdateComponent(metrics.ComponentEngine, true, "")
	h.logger.Info().
		Str("in_dev", h.devices.InDevice).
		Str("out_dev", h.devices.OutDevice).
		Msg("Audio started")
	return nil
}

// StopAudio asks the engine to shut its audio loop down and closes the event
// channel. Stopping when not running does nothing.
func (h *Handler) StopAudio() error {
	h.lifeMu.Lock()
	defer h.lifeMu.Unlock()

	if !h.running.Load() {
		return nil
	}
	return h.stopLocked()
}

func (h *Handler) stopLocked() error {
	if err := h.send(engine.ShutdownAudio()); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send audio shutdown")
	}

	h.running.Store(false)
	metrics.EngineConnected.Set(0)
	metrics.UpdateComponent(metrics.ComponentEngine, false, "audio not started")

	if err := h.engine.Stop(); err != nil {
		return fmt.Errorf("failed to stop audio: %w", err)
	}
	h.logger.Info().Msg("Audio stopped")
	return nil
}
