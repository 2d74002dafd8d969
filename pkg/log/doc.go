/*
Package log provides structured logging for fxboard using zerolog.

The package keeps a single global zerolog.Logger that is configured once by
Init and handed out as child loggers carrying context fields. Until Init is
called the global logger discards everything, so library packages can log
freely from tests without producing output.

# Usage

Initializing the Logger:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,
		Output:     os.Stderr,
	})

Component Loggers:

	unitLog := log.WithComponent("unit")
	unitLog.Debug().Str("fragment", "levelEvent").Msg("Merged fragment")

	topicLog := log.WithTopic("levels")
	topicLog.Warn().Str("key", "meter").Msg("Subscriber panicked")

Fields used across packages:

  - component: unit, events, storage, engine, app, cli
  - topic: unit, levels, boards, midi
  - session_id: engine link session, one per StartAudio
  - key: subscriber key on a topic

Console output is the default; JSON output is meant for log shippers and is
enabled with --json-logs or log.json in the configuration file.
*/
package log
