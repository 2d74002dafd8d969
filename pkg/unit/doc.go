/*
Package unit keeps the one canonical model of the device and reconciles it
with what the audio engine reports.

# Merging

Engine event messages are JSON objects. Decode splits one into the fragments
it knows about, each optional and each decoded on its own:

	levelEvent     → InputLeft/Right, OutputLeft/Right     publish "levels"
	pedalTypes     → BoardInfo.PedalOptions                (no publish)
	pedalInfo      → BoardInfo.LoadedBoards                publish "boards"
	midiEvent      → MidiEvent                             publish "midi"
	midiBytes      → MidiEvent (raw MIDI, via gomidi)      publish "midi"
	audioHardware  → AudioHardware                         publish "unit"

A fragment that does not have the expected shape is dropped and counted in
fxboard_fragments_total{result="rejected"}; it never blocks the other
fragments of the same message. A level event needs all four meters, and
pedalInfo needs exactly two entries that each carry an effects list.

Only the fields a fragment names are written. The model is never replaced,
so subscribers may hold on to the pointer they receive, though Snapshot is
the way to keep a stable copy.

# Publishing

Each fragment is merged under the handler lock and published right after
the lock is released, so every subscriber has seen a change before
ProcessMessage returns. Callbacks may call Snapshot or send commands; a
command whose reply arrives synchronously, as with engine.Loopback, is
merged and published before the command call returns.

Model hands out the live pointer without locking. Read it from callbacks or
while audio is stopped; other goroutines use Snapshot.

# Commands

RefreshPedalConfig, SetEffectSetting, InsertPedal, DeletePedal, TunerOn,
MovePedal and LoadBoardFromConfig build an engine.Command and queue it. They
do not wait for the engine; results arrive later as event messages.

# Audio lifecycle

StartAudio opens the engine event channel with the configured devices
(hw:CODEC by default) and feeds every message to ProcessMessage. Calling it
again while running stops the old session first. StopAudio sends the
ShutdownAudio sentinel and closes the channel; it is a no-op when audio is
not running.
*/
package unit
