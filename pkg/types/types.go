package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// ChannelCount is the number of audio channels, each carrying one board
	ChannelCount = 2

	// DefaultLevelFloor is the level reported before the engine sends meters
	DefaultLevelFloor = -60.0

	// NoBoardID marks a channel with no board loaded
	NoBoardID = -1
)

// Level is a meter reading in a decibel-like range
type Level struct {
	Level float64 `json:"level"`
	Peak  float64 `json:"peak"`
}

// FloorLevel returns a level resting at the default floor
func FloorLevel() Level {
	return Level{Level: DefaultLevelFloor, Peak: DefaultLevelFloor}
}

// SettingValue holds an effect setting value, which the engine reports either
// as a number or as a boolean depending on the setting type
type SettingValue struct {
	Number float64
	Bool   bool
	IsBool bool
}

// NumberValue wraps a numeric setting value
func NumberValue(f float64) SettingValue {
	return SettingValue{Number: f}
}

// BoolValue wraps a boolean setting value
func BoolValue(b bool) SettingValue {
	return SettingValue{Bool: b, IsBool: true}
}

// Interface returns the value as float64 or bool
func (v SettingValue) Interface() any {
	if v.IsBool {
		return v.Bool
	}
	return v.Number
}

// MarshalJSON encodes the value as a JSON number or bool
func (v SettingValue) MarshalJSON() ([]byte, error) {
	if v.IsBool {
		return strconv.AppendBool(nil, v.Bool), nil
	}
	return json.Marshal(v.Number)
}

// UnmarshalJSON accepts a JSON number or bool; null decodes to zero
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*v = BoolValue(true)
		return nil
	case "false":
		*v = BoolValue(false)
		return nil
	case "null":
		*v = SettingValue{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("setting value must be a number or bool: %s", data)
	}
	*v = NumberValue(f)
	return nil
}

// EffectSetting is one adjustable parameter of a pedal
type EffectSetting struct {
	Index  int          `json:"index"`
	Labels []string     `json:"labels"`
	Name   string       `json:"name"`
	Max    float64      `json:"max"`
	Min    float64      `json:"min"`
	Step   float64      `json:"step"`
	Type   int          `json:"type"`
	Value  SettingValue `json:"value"`
}

// PedalData represents a single pedal in a chain. Index is unique within the
// chain and defines its order.
type PedalData struct {
	Index    int             `json:"index"`
	Name     string          `json:"name"`
	Settings []EffectSetting `json:"settings"`
}

// BoardData represents the pedal chain bound to one channel
type BoardData struct {
	Channel int         `json:"channel"`
	BoardID int         `json:"boardId"`
	Pedals  []PedalData `json:"pedals"`
}

// SavedBoard is a board persisted under a user-chosen name. Name is the
// identity used for upserts, not BoardID.
type SavedBoard struct {
	BoardData
	Name string `json:"name"`
}

// PedalOption describes a pedal type the engine can instantiate
type PedalOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BoardInfo groups the pedal catalog and the boards loaded per channel
type BoardInfo struct {
	PedalOptions []PedalOption `json:"pedalOptions"`
	LoadedBoards []BoardData   `json:"loadedBoards"`
}

// AudioHardware describes the audio interface in use by the engine
type AudioHardware struct {
	Driver   string `json:"driver"`
	CardInfo string `json:"cardInfo"`
}

// MidiMessageType classifies a MIDI event
type MidiMessageType int

const (
	MidiNoteOff MidiMessageType = iota
	MidiNoteOn
	MidiPolyPressure
	MidiControlChange
	MidiProgramChange
	MidiChannelPressure
	MidiPitchBend
	MidiSystemMessage
	MidiUnknownType
)

func (t MidiMessageType) String() string {
	switch t {
	case MidiNoteOff:
		return "noteOff"
	case MidiNoteOn:
		return "noteOn"
	case MidiPolyPressure:
		return "polyPressure"
	case MidiControlChange:
		return "controlChange"
	case MidiProgramChange:
		return "programChange"
	case MidiChannelPressure:
		return "channelPressure"
	case MidiPitchBend:
		return "pitchBend"
	case MidiSystemMessage:
		return "systemMessage"
	default:
		return "unknownType"
	}
}

// MidiEvent is the last MIDI event seen by the engine
type MidiEvent struct {
	Type     MidiMessageType `json:"type"`
	Channel  int             `json:"channel"`
	Note     int             `json:"note"`
	Velocity int             `json:"velocity"`
}

// UnitModel is the unified model of device state
type UnitModel struct {
	MasterLevel    Level          `json:"masterLevel"`
	InputLeft      Level          `json:"inputLeft"`
	InputRight     Level          `json:"inputRight"`
	OutputLeft     Level          `json:"outputLeft"`
	OutputRight    Level          `json:"outputRight"`
	InputLeftFreq  float64        `json:"inputLeftFreq"`
	InputRightFreq float64        `json:"inputRightFreq"`
	LeftTunerOn    bool           `json:"leftTunerOn"`
	RightTunerOn   bool           `json:"rightTunerOn"`
	BoardInfo      BoardInfo      `json:"boardInfo"`
	MidiEvent      *MidiEvent     `json:"midiEvent"`
	AudioHardware  *AudioHardware `json:"audioHardware"`
}

// NewUnitModel returns the model in its power-on state: meters at the floor,
// tuners off, an empty pedal catalog and one empty board per channel
func NewUnitModel() *UnitModel {
	return &UnitModel{
		MasterLevel: FloorLevel(),
		InputLeft:   FloorLevel(),
		InputRight:  FloorLevel(),
		OutputLeft:  FloorLevel(),
		OutputRight: FloorLevel(),
		BoardInfo: BoardInfo{
			PedalOptions: []PedalOption{},
			LoadedBoards: EmptyBoards(),
		},
	}
}

// EmptyBoards returns one empty board per channel
func EmptyBoards() []BoardData {
	boards := make([]BoardData, ChannelCount)
	for i := range boards {
		boards[i] = BoardData{Channel: i, BoardID: NoBoardID, Pedals: []PedalData{}}
	}
	return boards
}

// Clone returns a deep copy of the model
func (m *UnitModel) Clone() *UnitModel {
	c := *m
	c.BoardInfo.PedalOptions = append([]PedalOption{}, m.BoardInfo.PedalOptions...)
	c.BoardInfo.LoadedBoards = make([]BoardData, len(m.BoardInfo.LoadedBoards))
	for i, b := range m.BoardInfo.LoadedBoards {
		c.BoardInfo.LoadedBoards[i] = b.Clone()
	}
	if m.MidiEvent != nil {
		ev := *m.MidiEvent
		c.MidiEvent = &ev
	}
	if m.AudioHardware != nil {
		hw := *m.AudioHardware
		c.AudioHardware = &hw
	}
	return &c
}

// Clone returns a deep copy of the board
func (b BoardData) Clone() BoardData {
	c := b
	c.Pedals = make([]PedalData, len(b.Pedals))
	for i, p := range b.Pedals {
		cp := p
		cp.Settings = make([]EffectSetting, len(p.Settings))
		for j, s := range p.Settings {
			cs := s
			cs.Labels = append([]string(nil), s.Labels...)
			cp.Settings[j] = cs
		}
		c.Pedals[i] = cp
	}
	return c
}
