package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cuemby/fxboard/pkg/types"
)

// Param is an engine parameter code. The values are part of the engine
// protocol and must not be renumbered.
type Param int

const (
	ParamGetConfigJson Param = iota + 27
	ParamSetEffectConfig
	ParamInsertPedal
	ParamDeletePedal
	ParamMovePedal
	ParamLoadBoard
	ParamTuneChannel

	ParamShutdownAudio Param = 9999
)

var paramNames = map[Param]string{
	ParamGetConfigJson:   "getConfigJson",
	ParamSetEffectConfig: "setEffectConfig",
	ParamInsertPedal:     "insertPedal",
	ParamDeletePedal:     "deletePedal",
	ParamMovePedal:       "movePedal",
	ParamLoadBoard:       "loadBoard",
	ParamTuneChannel:     "tuneChannel",
	ParamShutdownAudio:   "shutdownAudio",
}

func (p Param) String() string {
	if name, ok := paramNames[p]; ok {
		return name
	}
	return "param(" + strconv.Itoa(int(p)) + ")"
}

// Command is the fixed-shape envelope the engine accepts. Unset slots are
// omitted from the encoding; set slots are always emitted, zero included.
type Command struct {
	Param   Param    `json:"param"`
	SValue  *string  `json:"sValue,omitempty"`
	IValue1 *int     `json:"iValue1,omitempty"`
	IValue2 *int     `json:"iValue2,omitempty"`
	FValue  *float64 `json:"fValue,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// RefreshPedalConfig asks the engine to report its pedal catalog and boards
func RefreshPedalConfig() Command {
	return Command{Param: ParamGetConfigJson}
}

type effectSetting struct {
	Name  string             `json:"name"`
	Value types.SettingValue `json:"value"`
}

// SetEffectSetting changes one setting of the pedal at index effect
func SetEffectSetting(channel, effect int, name string, value types.SettingValue) (Command, error) {
	data, err := json.Marshal(effectSetting{Name: name, Value: value})
	if err != nil {
		return Command{}, fmt.Errorf("failed to encode setting %q: %w", name, err)
	}
	return Command{
		Param:   ParamSetEffectConfig,
		SValue:  ptr(string(data)),
		IValue1: ptr(channel),
		IValue2: ptr(effect),
	}, nil
}

// InsertPedal adds a pedal of pedalType at idx
func InsertPedal(channel, idx int, pedalType string) Command {
	return Command{
		Param:   ParamInsertPedal,
		SValue:  ptr(pedalType),
		IValue1: ptr(channel),
		IValue2: ptr(idx),
	}
}

func DeletePedal(channel, idx int) Command {
	return Command{
		Param:   ParamDeletePedal,
		IValue1: ptr(channel),
		IValue2: ptr(idx),
	}
}

// TunerOn switches the tuner of a channel
func TunerOn(channel int, on bool) Command {
	state := 0
	if on {
		state = 1
	}
	return Command{
		Param:   ParamTuneChannel,
		IValue1: ptr(channel),
		IValue2: ptr(state),
	}
}

// MovePedal moves the pedal at fromIdx to toIdx. The engine takes the target
// index in the float slot.
func MovePedal(channel, fromIdx, toIdx int) Command {
	return Command{
		Param:   ParamMovePedal,
		FValue:  ptr(float64(toIdx)),
		IValue1: ptr(channel),
		IValue2: ptr(fromIdx),
	}
}

// LoadBoard replaces the board of a channel with config, sent as JSON
func LoadBoard(channel int, config any) (Command, error) {
	data, err := json.Marshal(config)
	if err != nil {
		return Command{}, fmt.Errorf("failed to encode board config: %w", err)
	}
	return Command{
		Param:   ParamLoadBoard,
		SValue:  ptr(string(data)),
		IValue1: ptr(channel),
	}, nil
}

// ShutdownAudio tells the engine to stop its audio loop
func ShutdownAudio() Command {
	return Command{Param: ParamShutdownAudio}
}
