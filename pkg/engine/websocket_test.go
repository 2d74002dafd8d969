package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine accepts one connection, records every frame it receives and
// sends whatever is pushed on events
type fakeEngine struct {
	server *httptest.Server
	frames chan Frame
	events chan string
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	f := &fakeEngine{
		frames: make(chan Frame, 32),
		events: make(chan string, 32),
	}

	upgrader := websocket.Upgrader{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var fr Frame
				if json.Unmarshal(data, &fr) == nil {
					f.frames <- fr
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case ev := <-f.events:
				if err := conn.WriteMessage(websocket.TextMessage, []byte(ev)); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeEngine) url() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *fakeEngine) next(t *testing.T) Frame {
	t.Helper()
	select {
	case fr := <-f.frames:
		return fr
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Frame{}
	}
}

func TestWebSocketLink_Session(t *testing.T) {
	fe := newFakeEngine(t)
	link := NewWebSocketLink(LinkConfig{URL: fe.url()})

	received := make(chan string, 8)
	opts := StartOptions{InDevice: DefaultDevice, OutDevice: DefaultDevice}
	require.NoError(t, link.Start(context.Background(), opts, func(raw []byte) {
		received <- string(raw)
	}))

	start := fe.next(t)
	assert.Equal(t, FrameStart, start.Type)
	assert.Equal(t, DefaultDevice, start.InDev)
	assert.Equal(t, DefaultDevice, start.OutDev)
	assert.Equal(t, link.Session(), start.Session)
	assert.NotEmpty(t, start.Session)

	assert.ErrorIs(t, link.Start(context.Background(), opts, nil), ErrAlreadyStarted)

	require.NoError(t, link.Send(InsertPedal(0, 1, "Delay")))
	cmd := fe.next(t)
	assert.Equal(t, FrameCommand, cmd.Type)
	require.NotNil(t, cmd.Msg)
	assert.Equal(t, ParamInsertPedal, cmd.Msg.Param)
	assert.Equal(t, "Delay", *cmd.Msg.SValue)

	fe.events <- `{"levelEvent":1}`
	fe.events <- `{"levelEvent":2}`
	for _, want := range []string{`{"levelEvent":1}`, `{"levelEvent":2}`} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	require.NoError(t, link.Send(ShutdownAudio()))
	require.NoError(t, link.Stop())

	shutdown := fe.next(t)
	require.NotNil(t, shutdown.Msg)
	assert.Equal(t, ParamShutdownAudio, shutdown.Msg.Param)
	assert.Equal(t, FrameStop, fe.next(t).Type)

	assert.Empty(t, link.Session())
	assert.ErrorIs(t, link.Send(RefreshPedalConfig()), ErrNotStarted)
}

func TestWebSocketLink_StopWhenStopped(t *testing.T) {
	link := NewWebSocketLink(LinkConfig{URL: "ws://127.0.0.1:1"})
	assert.NoError(t, link.Stop())
}

func TestWebSocketLink_DialFailure(t *testing.T) {
	fe := newFakeEngine(t)
	url := fe.url()
	fe.server.Close()

	link := NewWebSocketLink(LinkConfig{URL: url, DialTimeout: time.Second})
	err := link.Start(context.Background(), StartOptions{}, func([]byte) {})
	assert.Error(t, err)
	assert.Empty(t, link.Session())
}

func TestWebSocketLink_SendBufferFull(t *testing.T) {
	link := NewWebSocketLink(LinkConfig{SendBuffer: 1})

	// a session whose writer never runs
	s := &session{send: make(chan []byte, 1)}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()
	link.sess = s

	require.NoError(t, link.Send(RefreshPedalConfig()))
	assert.ErrorIs(t, link.Send(RefreshPedalConfig()), ErrSendBufferFull)
}

func TestWebSocketLink_SendAfterCancel(t *testing.T) {
	link := NewWebSocketLink(LinkConfig{SendBuffer: 4})

	// a session whose connection has gone away
	s := &session{send: make(chan []byte, 4)}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cancel()
	link.sess = s

	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, link.Send(RefreshPedalConfig()), ErrNotStarted)
	}
	assert.Empty(t, s.send)
}

func TestWebSocketLink_SendDuringStop(t *testing.T) {
	fe := newFakeEngine(t)
	link := NewWebSocketLink(LinkConfig{URL: fe.url()})
	require.NoError(t, link.Start(context.Background(), StartOptions{}, func([]byte) {}))
	require.Equal(t, FrameStart, fe.next(t).Type)

	var (
		wg       sync.WaitGroup
		accepted int
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			err := link.Send(TunerOn(0, true))
			if err == nil {
				accepted++
				continue
			}
			assert.ErrorIs(t, err, ErrNotStarted)
			return
		}
	}()

	require.NoError(t, link.Stop())
	wg.Wait()

	written := 0
	for {
		fr := fe.next(t)
		if fr.Type == FrameStop {
			break
		}
		assert.Equal(t, FrameCommand, fr.Type)
		written++
	}
	assert.Equal(t, accepted, written)
}
