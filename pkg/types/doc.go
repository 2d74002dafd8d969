/*
Package types defines the data model shared by every fxboard component.

UnitModel is the single snapshot of device state: meter levels, tuner
state, the pedal catalog, the board loaded on each channel, the last MIDI
event and the audio hardware in use. Only the unit handler mutates it;
everyone else reads it during a topic callback or works on a Clone.

JSON field names match the engine wire format and the persisted board
records, so the same structs are used for decoding engine fragments,
encoding command payloads and storing SavedBoard collections.

Invariants:

  - NewUnitModel never leaves a sub-structure partially populated.
  - BoardInfo.LoadedBoards always holds ChannelCount entries, indexed by channel.
  - PedalData.Index is unique within a chain and defines its order.
  - SavedBoard identity is Name; BoardID is data, not a key.
*/
package types
