package unit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cuemby/fxboard/pkg/types"
)

// Fragment names as they appear on the wire
const (
	FragmentLevelEvent    = "levelEvent"
	FragmentPedalTypes    = "pedalTypes"
	FragmentPedalInfo     = "pedalInfo"
	FragmentMidiEvent     = "midiEvent"
	FragmentMidiBytes     = "midiBytes"
	FragmentAudioHardware = "audioHardware"
)

// ErrNotObject is returned by Decode for input that is not a JSON object
var ErrNotObject = errors.New("event message is not a JSON object")

// LevelFragment carries one meter update for all four channels
type LevelFragment struct {
	InputLeft   types.Level
	InputRight  types.Level
	OutputLeft  types.Level
	OutputRight types.Level
}

// Message is an inbound event message decoded into its known fragments. A
// nil fragment is absent or malformed; Rejected names the malformed ones.
type Message struct {
	Levels        *LevelFragment
	PedalOptions  []types.PedalOption
	LoadedBoards  []types.BoardData
	Midi          *types.MidiEvent
	AudioHardware *types.AudioHardware

	Rejected []string

	// PedalOptions may legitimately be empty, so presence is tracked apart
	hasPedalOptions bool
}

// HasPedalOptions reports whether the message carried a valid pedal catalog
func (m Message) HasPedalOptions() bool {
	return m.hasPedalOptions
}

// Empty reports whether no fragment was accepted
func (m Message) Empty() bool {
	return m.Levels == nil && !m.hasPedalOptions && m.LoadedBoards == nil &&
		m.Midi == nil && m.AudioHardware == nil
}

// Decode parses raw into its known fragments. Each fragment is decoded on its
// own: a malformed one is listed in Rejected and never affects the others.
// Unknown keys and null fragments are ignored. The only error is input that
// is not a JSON object at all.
func Decode(raw []byte) (Message, error) {
	var msg Message

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return msg, ErrNotObject
	}

	present := func(name string) (json.RawMessage, bool) {
		data, ok := fields[name]
		if !ok || isNull(data) {
			return nil, false
		}
		return data, true
	}
	reject := func(name string) {
		msg.Rejected = append(msg.Rejected, name)
	}

	if data, ok := present(FragmentLevelEvent); ok {
		if levels, err := decodeLevels(data); err == nil {
			msg.Levels = levels
		} else {
			reject(FragmentLevelEvent)
		}
	}

	if data, ok := present(FragmentPedalTypes); ok {
		if options, err := decodePedalTypes(data); err == nil {
			msg.PedalOptions = options
			msg.hasPedalOptions = true
		} else {
			reject(FragmentPedalTypes)
		}
	}

	if data, ok := present(FragmentPedalInfo); ok {
		if boards, err := decodePedalInfo(data); err == nil {
			msg.LoadedBoards = boards
		} else {
			reject(FragmentPedalInfo)
		}
	}

	// the structured form wins when an engine sends both
	if data, ok := present(FragmentMidiEvent); ok {
		if ev, err := decodeMidiEvent(data); err == nil {
			msg.Midi = ev
		} else {
			reject(FragmentMidiEvent)
		}
	} else if data, ok := present(FragmentMidiBytes); ok {
		if ev, err := decodeMidiBytes(data); err == nil {
			msg.Midi = ev
		} else {
			reject(FragmentMidiBytes)
		}
	}

	if data, ok := present(FragmentAudioHardware); ok {
		var hw types.AudioHardware
		if err := json.Unmarshal(data, &hw); err == nil {
			msg.AudioHardware = &hw
		} else {
			reject(FragmentAudioHardware)
		}
	}

	return msg, nil
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func decodeLevels(data json.RawMessage) (*LevelFragment, error) {
	var wire struct {
		InputLeft   *types.Level `json:"inputLeft"`
		InputRight  *types.Level `json:"inputRight"`
		OutputLeft  *types.Level `json:"outputLeft"`
		OutputRight *types.Level `json:"outputRight"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	if wire.InputLeft == nil || wire.InputRight == nil || wire.OutputLeft == nil || wire.OutputRight == nil {
		return nil, errors.New("level event is missing a channel")
	}
	return &LevelFragment{
		InputLeft:   *wire.InputLeft,
		InputRight:  *wire.InputRight,
		OutputLeft:  *wire.OutputLeft,
		OutputRight: *wire.OutputRight,
	}, nil
}

// decodePedalTypes walks the object token by token so options come out in
// document order.
func decodePedalTypes(data json.RawMessage) ([]types.PedalOption, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("pedal types must be an object, got %v", tok)
	}

	options := []types.PedalOption{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var label string
		if err := dec.Decode(&label); err != nil {
			return nil, fmt.Errorf("pedal type %q: %w", key, err)
		}
		options = append(options, types.PedalOption{Value: key, Label: label})
	}
	return options, nil
}

func decodePedalInfo(data json.RawMessage) ([]types.BoardData, error) {
	var entries []struct {
		BoardID *int               `json:"boardId"`
		Effects *[]types.PedalData `json:"effects"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if len(entries) != types.ChannelCount {
		return nil, fmt.Errorf("pedal info has %d entries, want %d", len(entries), types.ChannelCount)
	}

	boards := make([]types.BoardData, len(entries))
	for i, e := range entries {
		if e.Effects == nil {
			return nil, fmt.Errorf("pedal info entry %d has no effects", i)
		}
		boardID := types.NoBoardID
		if e.BoardID != nil {
			boardID = *e.BoardID
		}
		pedals := *e.Effects
		if pedals == nil {
			pedals = []types.PedalData{}
		}
		boards[i] = types.BoardData{Channel: i, BoardID: boardID, Pedals: pedals}
	}
	return boards, nil
}

func decodeMidiEvent(data json.RawMessage) (*types.MidiEvent, error) {
	var ev types.MidiEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Type < types.MidiNoteOff || ev.Type > types.MidiUnknownType {
		ev.Type = types.MidiUnknownType
	}
	return &ev, nil
}

// decodeMidiBytes turns a raw MIDI message, sent as an array of byte values,
// into a MidiEvent
func decodeMidiBytes(data json.RawMessage) (*types.MidiEvent, error) {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.New("empty midi message")
	}

	raw := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 0xFF {
			return nil, fmt.Errorf("midi byte %d out of range: %d", i, v)
		}
		raw[i] = byte(v)
	}
	return MidiEventFromBytes(raw), nil
}

// MidiEventFromBytes classifies a raw MIDI message. Channel messages carry
// their channel; note, controller and program numbers land in Note and the
// second data value (velocity, value, pressure) in Velocity.
func MidiEventFromBytes(raw []byte) *types.MidiEvent {
	status := raw[0]
	switch {
	case status >= 0xF0:
		return &types.MidiEvent{Type: types.MidiSystemMessage}
	case status < 0x80 || len(raw) < channelMessageLen(status):
		return &types.MidiEvent{Type: types.MidiUnknownType}
	}

	msg := midi.Message(raw)
	var ch, key, vel uint8

	switch {
	case msg.GetNoteOff(&ch, &key, &vel):
		return midiEvent(types.MidiNoteOff, ch, key, vel)
	case msg.GetNoteOn(&ch, &key, &vel):
		// a note on with velocity 0 is a note off
		if vel == 0 {
			return midiEvent(types.MidiNoteOff, ch, key, vel)
		}
		return midiEvent(types.MidiNoteOn, ch, key, vel)
	case msg.GetPolyAfterTouch(&ch, &key, &vel):
		return midiEvent(types.MidiPolyPressure, ch, key, vel)
	case msg.GetControlChange(&ch, &key, &vel):
		return midiEvent(types.MidiControlChange, ch, key, vel)
	case msg.GetProgramChange(&ch, &key):
		return midiEvent(types.MidiProgramChange, ch, key, 0)
	case msg.GetAfterTouch(&ch, &vel):
		return midiEvent(types.MidiChannelPressure, ch, 0, vel)
	}

	var rel int16
	var abs uint16
	if msg.GetPitchBend(&ch, &rel, &abs) {
		return &types.MidiEvent{Type: types.MidiPitchBend, Channel: int(ch), Velocity: int(abs)}
	}

	return &types.MidiEvent{Type: types.MidiUnknownType, Channel: int(status & 0x0F)}
}

// channelMessageLen returns the full length of a channel message with status
func channelMessageLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 2
	default:
		return 3
	}
}

func midiEvent(t types.MidiMessageType, ch, note, vel uint8) *types.MidiEvent {
	return &types.MidiEvent{Type: t, Channel: int(ch), Note: int(note), Velocity: int(vel)}
}
