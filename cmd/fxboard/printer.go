package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/cuemby/fxboard/pkg/events"
	"github.com/cuemby/fxboard/pkg/types"
)

func init() {
	// NO_COLOR disables color output
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

func success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

func warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "! "+format+"\n", a...)
}

// meter renders a level as a bar from the floor up to 0 dB
func meter(l types.Level) string {
	const width = 20
	filled := int((l.Level - types.DefaultLevelFloor) / -types.DefaultLevelFloor * width)
	filled = max(0, min(width, filled))

	bar := strings.Repeat("█", filled) + strings.Repeat("·", width-filled)
	c := green
	switch {
	case l.Peak >= -1:
		c = red
	case l.Peak >= -6:
		c = yellow
	}
	return c.Sprint(bar) + fmt.Sprintf(" %6.1f", l.Level)
}

// printModel writes the part of the model a topic is about
func printModel(w io.Writer, topic events.Topic, m *types.UnitModel) {
	switch topic {
	case events.TopicLevels:
		fmt.Fprintf(w, "%s in  L %s  R %s\n", cyan.Sprint("[levels]"), meter(m.InputLeft), meter(m.InputRight))
		fmt.Fprintf(w, "%s out L %s  R %s\n", cyan.Sprint("[levels]"), meter(m.OutputLeft), meter(m.OutputRight))
	case events.TopicBoards:
		for _, b := range m.BoardInfo.LoadedBoards {
			printBoard(w, fmt.Sprintf("channel %d", b.Channel), b)
		}
	case events.TopicMidi:
		if ev := m.MidiEvent; ev != nil {
			fmt.Fprintf(w, "%s %s ch=%d note=%d velocity=%d\n",
				cyan.Sprint("[midi]"), ev.Type, ev.Channel, ev.Note, ev.Velocity)
		}
	case events.TopicUnit:
		if hw := m.AudioHardware; hw != nil {
			fmt.Fprintf(w, "%s driver=%s card=%s\n", cyan.Sprint("[unit]"), hw.Driver, hw.CardInfo)
		}
	}
}

func printBoard(w io.Writer, title string, b types.BoardData) {
	fmt.Fprintf(w, "%s (board %d)\n", bold.Sprint(title), b.BoardID)
	if len(b.Pedals) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, p := range b.Pedals {
		fmt.Fprintf(w, "  %2d %s\n", p.Index, p.Name)
		for _, s := range p.Settings {
			fmt.Fprintf(w, "       %-16s %v\n", s.Name, s.Value.Interface())
		}
	}
}
