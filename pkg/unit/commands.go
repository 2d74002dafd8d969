package unit

import (
	"fmt"

	"github.com/cuemby/fxboard/pkg/engine"
	"github.com/cuemby/fxboard/pkg/metrics"
	"github.com/cuemby/fxboard/pkg/types"
)

// RefreshPedalConfig asks the engine to report its pedal catalog and the
// loaded boards
func (h *Handler) RefreshPedalConfig() error {
	return h.send(engine.RefreshPedalConfig())
}

// SetEffectSetting changes setting name of the pedal at index effect
func (h *Handler) SetEffectSetting(channel, effect int, name string, value types.SettingValue) error {
	cmd, err := engine.SetEffectSetting(channel, effect, name, value)
	if err != nil {
		return err
	}
	return h.send(cmd)
}

func (h *Handler) InsertPedal(channel, idx int, pedalType string) error {
	return h.send(engine.InsertPedal(channel, idx, pedalType))
}

func (h *Handler) DeletePedal(channel, idx int) error {
	return h.send(engine.DeletePedal(channel, idx))
}

// TunerOn switches the tuner of channel on or off
func (h *Handler) TunerOn(channel int, on bool) error {
	return h.send(engine.TunerOn(channel, on))
}

func (h *Handler) MovePedal(channel, fromIdx, toIdx int) error {
	return h.send(engine.MovePedal(channel, fromIdx, toIdx))
}

// LoadBoardFromConfig sends config, encoded as JSON, as the new board of
// channel
func (h *Handler) LoadBoardFromConfig(channel int, config any) error {
	cmd, err := engine.LoadBoard(channel, config)
	if err != nil {
		return err
	}
	return h.send(cmd)
}

// send hands cmd to the engine without waiting for it to act
func (h *Handler) send(cmd engine.Command) error {
	if err := h.engine.Send(cmd); err != nil {
		metrics.CommandsTotal.WithLabelValues(cmd.Param.String(), "error").Inc()
		return fmt.Errorf("failed to send %s: %w", cmd.Param, err)
	}
	metrics.CommandsTotal.WithLabelValues(cmd.Param.String(), "ok").Inc()
	h.logger.Debug().Stringer("param", cmd.Param).Msg("Command sent")
	return nil
}
