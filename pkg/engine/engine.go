package engine

import (
	"context"
	"errors"
)

var (
	ErrNotStarted     = errors.New("engine link not started")
	ErrAlreadyStarted = errors.New("engine link already started")
	ErrSendBufferFull = errors.New("engine send buffer full")
)

// DefaultDevice is the ALSA device the engine opens when none is configured
const DefaultDevice = "hw:CODEC"

// StartOptions selects the audio devices for a session
type StartOptions struct {
	InDevice  string
	OutDevice string
}

// EventFunc receives one raw inbound event message
type EventFunc func(raw []byte)

// Engine is the boundary to the audio engine process. Start opens the event
// channel and onEvent is called for every inbound message, one at a time and
// in arrival order. Send is fire-and-forget: a nil error means the command was
// queued, not that the engine accepted it.
type Engine interface {
	Start(ctx context.Context, opts StartOptions, onEvent EventFunc) error
	Stop() error
	Send(cmd Command) error
}
