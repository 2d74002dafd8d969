package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fxboard/pkg/types"
)

func TestDecode_NotAnObject(t *testing.T) {
	for _, raw := range []string{``, `null`, `[]`, `42`, `"levelEvent"`, `{`} {
		_, err := Decode([]byte(raw))
		assert.ErrorIs(t, err, ErrNotObject, raw)
	}
}

func TestDecode_Fragments(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		check    func(t *testing.T, msg Message)
		rejected []string
	}{
		{
			name: "unknown keys only",
			raw:  `{"tempo":120,"clock":{"beat":1}}`,
			check: func(t *testing.T, msg Message) {
				assert.True(t, msg.Empty())
			},
		},
		{
			name: "null fragments are absent",
			raw:  `{"levelEvent":null,"pedalInfo":null,"pedalTypes":null}`,
			check: func(t *testing.T, msg Message) {
				assert.True(t, msg.Empty())
			},
		},
		{
			name: "level event",
			raw: `{"levelEvent":{"inputLeft":{"level":-12,"peak":-3},"inputRight":{"level":-20,"peak":-10},
				"outputLeft":{"level":-6,"peak":-1},"outputRight":{"level":-7,"peak":-2}}}`,
			check: func(t *testing.T, msg Message) {
				require.NotNil(t, msg.Levels)
				assert.Equal(t, types.Level{Level: -12, Peak: -3}, msg.Levels.InputLeft)
				assert.Equal(t, types.Level{Level: -7, Peak: -2}, msg.Levels.OutputRight)
			},
		},
		{
			name:     "level event missing a channel",
			raw:      `{"levelEvent":{"inputLeft":{"level":-12,"peak":-3}}}`,
			check:    func(t *testing.T, msg Message) { assert.Nil(t, msg.Levels) },
			rejected: []string{FragmentLevelEvent},
		},
		{
			name: "pedal types keep document order",
			raw:  `{"pedalTypes":{"sigmaReverb":"Sigma Reverb","bassDI":"Bass DI","10":"Ten","2":"Two"}}`,
			check: func(t *testing.T, msg Message) {
				require.True(t, msg.HasPedalOptions())
				assert.Equal(t, []types.PedalOption{
					{Value: "sigmaReverb", Label: "Sigma Reverb"},
					{Value: "bassDI", Label: "Bass DI"},
					{Value: "10", Label: "Ten"},
					{Value: "2", Label: "Two"},
				}, msg.PedalOptions)
			},
		},
		{
			name: "empty pedal types",
			raw:  `{"pedalTypes":{}}`,
			check: func(t *testing.T, msg Message) {
				assert.True(t, msg.HasPedalOptions())
				assert.Empty(t, msg.PedalOptions)
				assert.False(t, msg.Empty())
			},
		},
		{
			name:     "pedal types not an object",
			raw:      `{"pedalTypes":["delay"]}`,
			check:    func(t *testing.T, msg Message) { assert.False(t, msg.HasPedalOptions()) },
			rejected: []string{FragmentPedalTypes},
		},
		{
			name: "pedal info",
			raw:  `{"pedalInfo":[{"boardId":4,"effects":[{"index":0,"name":"fuzz","settings":[]}]},{"effects":[]}]}`,
			check: func(t *testing.T, msg Message) {
				require.Len(t, msg.LoadedBoards, 2)
				assert.Equal(t, 0, msg.LoadedBoards[0].Channel)
				assert.Equal(t, 4, msg.LoadedBoards[0].BoardID)
				assert.Equal(t, "fuzz", msg.LoadedBoards[0].Pedals[0].Name)
				assert.Equal(t, 1, msg.LoadedBoards[1].Channel)
				assert.Equal(t, types.NoBoardID, msg.LoadedBoards[1].BoardID)
				assert.NotNil(t, msg.LoadedBoards[1].Pedals)
			},
		},
		{
			name:     "pedal info with one entry",
			raw:      `{"pedalInfo":[{"boardId":4,"effects":[]}]}`,
			check:    func(t *testing.T, msg Message) { assert.Nil(t, msg.LoadedBoards) },
			rejected: []string{FragmentPedalInfo},
		},
		{
			name:     "pedal info with three entries",
			raw:      `{"pedalInfo":[{"effects":[]},{"effects":[]},{"effects":[]}]}`,
			check:    func(t *testing.T, msg Message) { assert.Nil(t, msg.LoadedBoards) },
			rejected: []string{FragmentPedalInfo},
		},
		{
			name:     "pedal info missing effects",
			raw:      `{"pedalInfo":[{"boardId":1,"effects":[]},{"boardId":2}]}`,
			check:    func(t *testing.T, msg Message) { assert.Nil(t, msg.LoadedBoards) },
			rejected: []string{FragmentPedalInfo},
		},
		{
			name:     "pedal info with null effects",
			raw:      `{"pedalInfo":[{"boardId":1,"effects":null},{"boardId":2,"effects":[]}]}`,
			check:    func(t *testing.T, msg Message) { assert.Nil(t, msg.LoadedBoards) },
			rejected: []string{FragmentPedalInfo},
		},
		{
			name: "midi event",
			raw:  `{"midiEvent":{"type":1,"channel":2,"note":60,"velocity":100}}`,
			check: func(t *testing.T, msg Message) {
				assert.Equal(t, &types.MidiEvent{Type: types.MidiNoteOn, Channel: 2, Note: 60, Velocity: 100}, msg.Midi)
			},
		},
		{
			name: "midi event with unknown type",
			raw:  `{"midiEvent":{"type":42,"channel":0,"note":0,"velocity":0}}`,
			check: func(t *testing.T, msg Message) {
				require.NotNil(t, msg.Midi)
				assert.Equal(t, types.MidiUnknownType, msg.Midi.Type)
			},
		},
		{
			name: "midi bytes",
			raw:  `{"midiBytes":[176,7,127]}`,
			check: func(t *testing.T, msg Message) {
				assert.Equal(t, &types.MidiEvent{Type: types.MidiControlChange, Channel: 0, Note: 7, Velocity: 127}, msg.Midi)
			},
		},
		{
			name:     "midi bytes out of range",
			raw:      `{"midiBytes":[144,300,1]}`,
			check:    func(t *testing.T, msg Message) { assert.Nil(t, msg.Midi) },
			rejected: []string{FragmentMidiBytes},
		},
		{
			name: "audio hardware",
			raw:  `{"audioHardware":{"driver":"alsa","cardInfo":"CODEC"}}`,
			check: func(t *testing.T, msg Message) {
				assert.Equal(t, &types.AudioHardware{Driver: "alsa", CardInfo: "CODEC"}, msg.AudioHardware)
			},
		},
		{
			name: "bad fragment does not spoil the others",
			raw:  `{"pedalInfo":[{"effects":[]}],"pedalTypes":{"delay":"Delay"},"audioHardware":"alsa"}`,
			check: func(t *testing.T, msg Message) {
				assert.Nil(t, msg.LoadedBoards)
				assert.Nil(t, msg.AudioHardware)
				assert.Equal(t, []types.PedalOption{{Value: "delay", Label: "Delay"}}, msg.PedalOptions)
			},
			rejected: []string{FragmentPedalInfo, FragmentAudioHardware},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			tt.check(t, msg)
			assert.Equal(t, tt.rejected, msg.Rejected)
		})
	}
}

func TestMidiEventFromBytes(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want types.MidiEvent
	}{
		{"note on", []byte{0x90, 60, 100}, types.MidiEvent{Type: types.MidiNoteOn, Channel: 0, Note: 60, Velocity: 100}},
		{"note on zero velocity", []byte{0x91, 60, 0}, types.MidiEvent{Type: types.MidiNoteOff, Channel: 1, Note: 60}},
		{"note off", []byte{0x83, 64, 40}, types.MidiEvent{Type: types.MidiNoteOff, Channel: 3, Note: 64, Velocity: 40}},
		{"poly pressure", []byte{0xA0, 60, 30}, types.MidiEvent{Type: types.MidiPolyPressure, Note: 60, Velocity: 30}},
		{"control change", []byte{0xB5, 7, 127}, types.MidiEvent{Type: types.MidiControlChange, Channel: 5, Note: 7, Velocity: 127}},
		{"program change", []byte{0xC2, 5}, types.MidiEvent{Type: types.MidiProgramChange, Channel: 2, Note: 5}},
		{"channel pressure", []byte{0xD0, 64}, types.MidiEvent{Type: types.MidiChannelPressure, Velocity: 64}},
		{"pitch bend center", []byte{0xE0, 0x00, 0x40}, types.MidiEvent{Type: types.MidiPitchBend, Velocity: 8192}},
		{"clock", []byte{0xF8}, types.MidiEvent{Type: types.MidiSystemMessage}},
		{"truncated note on", []byte{0x90, 60}, types.MidiEvent{Type: types.MidiUnknownType}},
		{"data byte first", []byte{0x40, 0x40}, types.MidiEvent{Type: types.MidiUnknownType}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *MidiEventFromBytes(tt.raw))
		})
	}
}
