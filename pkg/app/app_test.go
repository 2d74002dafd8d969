package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fxboard/pkg/config"
	"github.com/cuemby/fxboard/pkg/engine"
	"github.com/cuemby/fxboard/pkg/types"
)

func newTestApp(t *testing.T) (*App, *engine.Loopback) {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.Mode = config.EngineLoopback
	cfg.Storage.DataDir = t.TempDir()

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	lb, ok := a.Engine.(*engine.Loopback)
	require.True(t, ok)
	return a, lb
}

func TestNew_Backends(t *testing.T) {
	t.Run("bolt", func(t *testing.T) {
		a, _ := newTestApp(t)
		assert.NotNil(t, a.Handler)
		assert.NotNil(t, a.Boards)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Engine.Mode = config.EngineLoopback
		cfg.Storage.Backend = config.StorageRedis
		cfg.Storage.Redis.Addr = mr.Addr()

		a, err := New(context.Background(), cfg)
		require.NoError(t, err)
		defer a.Close()

		require.True(t, a.Boards.SetItem(types.SavedBoard{Name: "x", BoardData: types.BoardData{BoardID: 1}}))
		assert.True(t, mr.Exists("fxboard:pedalboards"))
	})

	t.Run("websocket", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.DataDir = t.TempDir()

		a, err := New(context.Background(), cfg)
		require.NoError(t, err)
		defer a.Close()

		_, ok := a.Engine.(*engine.WebSocketLink)
		assert.True(t, ok)
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "floppy"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSaveAndLoadBoard(t *testing.T) {
	a, lb := newTestApp(t)
	require.NoError(t, a.Handler.StartAudio(context.Background()))

	lb.Inject([]byte(`{"pedalInfo":[
		{"boardId":3,"effects":[{"index":0,"name":"fuzz","settings":[]}]},
		{"boardId":5,"effects":[]}]}`))

	require.True(t, a.SaveLoadedBoard(0, "lefty"))
	require.True(t, a.SaveLoadedBoard(1, "righty"))
	assert.False(t, a.SaveLoadedBoard(2, "nowhere"))
	assert.False(t, a.SaveLoadedBoard(0, ""))

	items := a.Boards.GetItems()
	require.Len(t, items, 2)
	assert.Equal(t, "lefty", items[0].Name)
	assert.Equal(t, 3, items[0].BoardID)
	assert.Equal(t, "fuzz", items[0].Pedals[0].Name)

	// load the left board onto the right channel
	require.NoError(t, a.LoadSavedBoard("lefty", 1))

	cmd, ok := lb.LastCommand()
	require.True(t, ok)
	assert.Equal(t, engine.ParamLoadBoard, cmd.Param)
	assert.Equal(t, 1, *cmd.IValue1)

	var sent types.SavedBoard
	require.NoError(t, json.Unmarshal([]byte(*cmd.SValue), &sent))
	assert.Equal(t, "lefty", sent.Name)
	assert.Equal(t, 1, sent.Channel)
	assert.Equal(t, 3, sent.BoardID)
}

func TestLoadSavedBoard_Errors(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.Handler.StartAudio(context.Background()))

	assert.ErrorIs(t, a.LoadSavedBoard("missing", 0), ErrBoardNotFound)
	assert.ErrorIs(t, a.LoadSavedBoard("missing", 7), ErrInvalidChannel)
}

func TestClose_StopsAudio(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Mode = config.EngineLoopback
	cfg.Storage.DataDir = t.TempDir()

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, a.Handler.StartAudio(context.Background()))

	require.NoError(t, a.Close())
	assert.False(t, a.Handler.AudioRunning())
}
