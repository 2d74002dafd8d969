package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cuemby/fxboard/pkg/config"
	"github.com/cuemby/fxboard/pkg/engine"
	"github.com/cuemby/fxboard/pkg/log"
	"github.com/cuemby/fxboard/pkg/storage"
	"github.com/cuemby/fxboard/pkg/types"
	"github.com/cuemby/fxboard/pkg/unit"
)

// ErrBoardNotFound is returned when no saved board has the requested name
var ErrBoardNotFound = errors.New("saved board not found")

// ErrInvalidChannel is returned for a channel outside 0..ChannelCount-1
var ErrInvalidChannel = errors.New("invalid channel")

// App is the process-wide context. It is built once at startup and handed to
// every consumer, which then share one model and one board store.
type App struct {
	Config  *config.Config
	Medium  storage.Medium
	Boards  *storage.BoardStore
	Engine  engine.Engine
	Handler *unit.Handler
}

// New opens the storage medium and builds the engine link and unit handler.
// Audio is not started.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	medium, err := openMedium(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	eng := newEngine(cfg.Engine)
	a := &App{
		Config: cfg,
		Medium: medium,
		Boards: storage.NewBoardStore(medium),
		Engine: eng,
		Handler: unit.NewHandler(eng, engine.StartOptions{
			InDevice:  cfg.Engine.InDevice,
			OutDevice: cfg.Engine.OutDevice,
		}),
	}

	logger := log.WithComponent("app")
	logger.Info().
		Str("engine", cfg.Engine.Mode).
		Str("storage", cfg.Storage.Backend).
		Msg("fxboard initialized")
	return a, nil
}

func openMedium(ctx context.Context, cfg config.StorageConfig) (storage.Medium, error) {
	switch cfg.Backend {
	case config.StorageRedis:
		return storage.NewRedisMedium(ctx, &redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		}, cfg.Redis.Prefix)
	default:
		return storage.NewBoltMedium(cfg.DataDir)
	}
}

func newEngine(cfg config.EngineConfig) engine.Engine {
	if cfg.Mode == config.EngineLoopback {
		return engine.NewLoopback()
	}
	return engine.NewWebSocketLink(engine.LinkConfig{
		URL:         cfg.URL,
		DialTimeout: cfg.DialTimeout,
		SendBuffer:  cfg.SendBuffer,
	})
}

// Close stops audio and closes the storage medium
func (a *App) Close() error {
	var errs []error
	if err := a.Handler.StopAudio(); err != nil {
		errs = append(errs, err)
	}
	if err := a.Medium.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	return errors.Join(errs...)
}

// SaveLoadedBoard saves the board currently loaded on channel under name. An
// existing board with that name is overwritten.
func (a *App) SaveLoadedBoard(channel int, name string) bool {
	if channel < 0 || channel >= types.ChannelCount || name == "" {
		return false
	}
	board := a.Handler.Snapshot().BoardInfo.LoadedBoards[channel]
	return a.Boards.SetItem(types.SavedBoard{BoardData: board, Name: name})
}

// LoadSavedBoard sends the saved board called name to the engine as the new
// board of channel
func (a *App) LoadSavedBoard(name string, channel int) error {
	if channel < 0 || channel >= types.ChannelCount {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}
	item, ok := a.Boards.GetItem(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrBoardNotFound, name)
	}
	item.Channel = channel
	return a.Handler.LoadBoardFromConfig(channel, item)
}
