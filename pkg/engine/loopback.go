package engine

import (
	"context"
	"sync"
)

// Loopback is an in-process Engine with no audio behind it. It records every
// command and lets the caller inject inbound events, which makes it the
// engine of choice for tests and for running without hardware.
type Loopback struct {
	mu       sync.Mutex
	started  bool
	opts     StartOptions
	onEvent  EventFunc
	commands []Command
	replies  map[Param][][]byte
}

// NewLoopback returns a stopped loopback engine
func NewLoopback() *Loopback {
	return &Loopback{replies: make(map[Param][][]byte)}
}

func (l *Loopback) Start(_ context.Context, opts StartOptions, onEvent EventFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return ErrAlreadyStarted
	}
	l.started = true
	l.opts = opts
	l.onEvent = onEvent
	return nil
}

func (l *Loopback) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = false
	l.onEvent = nil
	return nil
}

// Send records cmd and then injects any replies registered for its param
func (l *Loopback) Send(cmd Command) error {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return ErrNotStarted
	}
	l.commands = append(l.commands, cmd)
	replies := l.replies[cmd.Param]
	onEvent := l.onEvent
	l.mu.Unlock()

	for _, raw := range replies {
		onEvent(raw)
	}
	return nil
}

// Reply registers raw as an event emitted whenever a command with param is sent
func (l *Loopback) Reply(param Param, raw []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replies[param] = append(l.replies[param], raw)
}

// Inject delivers raw as if the engine had sent it. It reports false when the
// loopback is stopped and the event was dropped.
func (l *Loopback) Inject(raw []byte) bool {
	l.mu.Lock()
	onEvent := l.onEvent
	l.mu.Unlock()

	if onEvent == nil {
		return false
	}
	onEvent(raw)
	return true
}

// Commands returns a copy of every command sent so far
func (l *Loopback) Commands() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Command(nil), l.commands...)
}

// LastCommand returns the most recent command
func (l *Loopback) LastCommand() (Command, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.commands) == 0 {
		return Command{}, false
	}
	return l.commands[len(l.commands)-1], true
}

func (l *Loopback) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// Options returns the options of the last Start
func (l *Loopback) Options() StartOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opts
}
