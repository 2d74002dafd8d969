package events

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cuemby/fxboard/pkg/log"
	"github.com/cuemby/fxboard/pkg/metrics"
)

// Topic names a notification channel with its own subscriber set
type Topic string

const (
	TopicUnit   Topic = "unit"
	TopicLevels Topic = "levels"
	TopicBoards Topic = "boards"
	TopicMidi   Topic = "midi"
)

// ErrUnknownTopic is returned for topic names outside the fixed set
var ErrUnknownTopic = errors.New("unknown topic")

// AllTopics returns every topic in a fixed order
func AllTopics() []Topic {
	return []Topic{TopicUnit, TopicLevels, TopicBoards, TopicMidi}
}

// ParseTopic validates a topic name
func ParseTopic(s string) (Topic, error) {
	t := Topic(s)
	if !slices.Contains(AllTopics(), t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, s)
	}
	return t, nil
}

// Callback receives a published payload
type Callback[T any] func(payload T)

type subscription[T any] struct {
	key string
	cb  Callback[T]
}

// Dispatcher delivers payloads to keyed subscribers of one topic.
// Delivery is synchronous and follows registration order.
type Dispatcher[T any] struct {
	topic Topic

	mu sync.Mutex
	// replaced on every change, never mutated in place
	subs []subscription[T]
}

// NewDispatcher creates a dispatcher for a topic
func NewDispatcher[T any](topic Topic) *Dispatcher[T] {
	return &Dispatcher[T]{topic: topic}
}

// Topic returns the topic this dispatcher serves
func (d *Dispatcher[T]) Topic() Topic {
	return d.topic
}

// Subscribe registers cb under key. An existing key keeps its position and
// gets the new callback. A nil callback is ignored.
func (d *Dispatcher[T]) Subscribe(key string, cb Callback[T]) {
	if cb == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := slices.Clone(d.subs)
	i := d.indexLocked(key)
	if i >= 0 {
		next[i].cb = cb
	} else {
		next = append(next, subscription[T]{key: key, cb: cb})
	}
	d.subs = next
	metrics.Subscribers.WithLabelValues(string(d.topic)).Set(float64(len(next)))
}

// Unsubscribe removes the subscription under key; unknown keys are ignored
func (d *Dispatcher[T]) Unsubscribe(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(key)
	if i < 0 {
		return
	}
	d.subs = slices.Delete(slices.Clone(d.subs), i, i+1)
	metrics.Subscribers.WithLabelValues(string(d.topic)).Set(float64(len(d.subs)))
}

func (d *Dispatcher[T]) indexLocked(key string) int {
	return slices.IndexFunc(d.subs, func(s subscription[T]) bool { return s.key == key })
}

// Publish hands payload to every current subscriber in registration order.
// Changes made by subscribers during delivery apply to the next publish.
// With no subscribers the payload is dropped.
func (d *Dispatcher[T]) Publish(payload T) {
	d.mu.Lock()
	subs := d.subs
	d.mu.Unlock()

	metrics.PublishesTotal.WithLabelValues(string(d.topic)).Inc()
	for _, sub := range subs {
		d.deliver(sub, payload)
	}
}

func (d *Dispatcher[T]) deliver(sub subscription[T], payload T) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CallbackFailuresTotal.WithLabelValues(string(d.topic)).Inc()
			logger := log.WithTopic(string(d.topic))
			logger.Error().
				Str("key", sub.key).
				Interface("panic", r).
				Msg("Subscriber callback failed")
		}
	}()
	sub.cb(payload)
}

// SubscriberCount returns the number of active subscribers
func (d *Dispatcher[T]) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Keys returns subscriber keys in delivery order
func (d *Dispatcher[T]) Keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, len(d.subs))
	for i, s := range d.subs {
		keys[i] = s.key
	}
	return keys
}
