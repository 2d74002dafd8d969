package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnitModel(t *testing.T) {
	m := NewUnitModel()

	assert.Equal(t, FloorLevel(), m.InputLeft)
	assert.Equal(t, FloorLevel(), m.OutputRight)
	assert.Equal(t, DefaultLevelFloor, m.MasterLevel.Peak)
	assert.False(t, m.LeftTunerOn)
	assert.Nil(t, m.MidiEvent)
	assert.Nil(t, m.AudioHardware)
	assert.NotNil(t, m.BoardInfo.PedalOptions)
	require.Len(t, m.BoardInfo.LoadedBoards, ChannelCount)
	for i, b := range m.BoardInfo.LoadedBoards {
		assert.Equal(t, i, b.Channel)
		assert.Equal(t, NoBoardID, b.BoardID)
		assert.NotNil(t, b.Pedals)
	}
}

func TestSettingValueJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want SettingValue
		out  string
	}{
		{"number", `0.5`, NumberValue(0.5), `0.5`},
		{"integer", `3`, NumberValue(3), `3`},
		{"true", `true`, BoolValue(true), `true`},
		{"false", ` false `, BoolValue(false), `false`},
		{"null", `null`, SettingValue{}, `0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v SettingValue
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			assert.Equal(t, tt.want, v)

			data, err := json.Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, tt.out, string(data))
		})
	}

	var v SettingValue
	assert.Error(t, json.Unmarshal([]byte(`"loud"`), &v))
}

func TestSavedBoardJSONIsFlat(t *testing.T) {
	sb := SavedBoard{
		BoardData: BoardData{Channel: 0, BoardID: 3, Pedals: []PedalData{}},
		Name:      "lefty",
	}

	data, err := json.Marshal(sb)
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel":0,"boardId":3,"pedals":[],"name":"lefty"}`, string(data))
}

func TestCloneIsDeep(t *testing.T) {
	m := NewUnitModel()
	m.BoardInfo.LoadedBoards[0].Pedals = []PedalData{
		{Index: 0, Name: "Delay", Settings: []EffectSetting{{Name: "time", Labels: []string{"ms"}, Value: NumberValue(120)}}},
	}
	m.MidiEvent = &MidiEvent{Type: MidiNoteOn, Note: 60, Velocity: 100}

	c := m.Clone()
	c.BoardInfo.LoadedBoards[0].Pedals[0].Settings[0].Value = NumberValue(300)
	c.BoardInfo.LoadedBoards[0].Pedals[0].Settings[0].Labels[0] = "s"
	c.MidiEvent.Note = 61
	c.InputLeft.Level = 0

	assert.Equal(t, NumberValue(120), m.BoardInfo.LoadedBoards[0].Pedals[0].Settings[0].Value)
	assert.Equal(t, "ms", m.BoardInfo.LoadedBoards[0].Pedals[0].Settings[0].Labels[0])
	assert.Equal(t, 60, m.MidiEvent.Note)
	assert.Equal(t, DefaultLevelFloor, m.InputLeft.Level)
}

func TestMidiMessageTypeString(t *testing.T) {
	assert.Equal(t, "noteOn", MidiNoteOn.String())
	assert.Equal(t, "pitchBend", MidiPitchBend.String())
	assert.Equal(t, "unknownType", MidiMessageType(42).String())
}
