package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopback_Lifecycle(t *testing.T) {
	l := NewLoopback()

	assert.ErrorIs(t, l.Send(RefreshPedalConfig()), ErrNotStarted)
	assert.False(t, l.Inject([]byte(`{}`)))

	var events []string
	opts := StartOptions{InDevice: DefaultDevice, OutDevice: DefaultDevice}
	require.NoError(t, l.Start(context.Background(), opts, func(raw []byte) {
		events = append(events, string(raw))
	}))
	assert.ErrorIs(t, l.Start(context.Background(), opts, nil), ErrAlreadyStarted)
	assert.True(t, l.Started())
	assert.Equal(t, opts, l.Options())

	require.NoError(t, l.Send(TunerOn(0, true)))
	cmd, ok := l.LastCommand()
	require.True(t, ok)
	assert.Equal(t, ParamTuneChannel, cmd.Param)

	assert.True(t, l.Inject([]byte(`{"a":1}`)))
	assert.Equal(t, []string{`{"a":1}`}, events)

	require.NoError(t, l.Stop())
	require.NoError(t, l.Stop())
	assert.False(t, l.Started())
	assert.Len(t, l.Commands(), 1)
}

func TestLoopback_Reply(t *testing.T) {
	l := NewLoopback()
	l.Reply(ParamGetConfigJson, []byte(`{"pedalTypes":{}}`))

	var events []string
	require.NoError(t, l.Start(context.Background(), StartOptions{}, func(raw []byte) {
		events = append(events, string(raw))
	}))

	require.NoError(t, l.Send(DeletePedal(0, 0)))
	assert.Empty(t, events)

	require.NoError(t, l.Send(RefreshPedalConfig()))
	assert.Equal(t, []string{`{"pedalTypes":{}}`}, events)
}
