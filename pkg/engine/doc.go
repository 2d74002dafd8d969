/*
Package engine is the boundary to the native audio engine.

Commands travel as a fixed-shape envelope: a Param code and up to four typed
slots. Complex values (an effect setting, a whole board) are JSON-encoded
into SValue before they leave this package; the engine never receives
arbitrary structured objects.

	param  sValue            iValue1  iValue2  fValue
	27     -                 -        -        -        RefreshPedalConfig
	28     {"name","value"}  channel  effect   -        SetEffectSetting
	29     pedal type        channel  index    -        InsertPedal
	30     -                 channel  index    -        DeletePedal
	31     -                 channel  from     to       MovePedal
	32     board JSON        channel  -        -        LoadBoard
	33     -                 channel  1 or 0   -        TunerOn
	9999   -                 -        -        -        ShutdownAudio

Two Engine implementations exist. WebSocketLink dials an engine process and
speaks JSON text frames:

	bridge → engine  {"type":"start","session":"<uuid>","inDev":"hw:CODEC","outDev":"hw:CODEC"}
	bridge → engine  {"type":"command","msg":{"param":33,"iValue1":0,"iValue2":1}}
	bridge → engine  {"type":"stop"}
	engine → bridge  one event message per frame, passed through untouched

Loopback runs in-process, records commands and lets callers inject events.

Send never waits for the engine. A nil error means the command was queued;
there is no acknowledgment at this layer.
*/
package engine
