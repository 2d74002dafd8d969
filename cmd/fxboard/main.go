package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/fxboard/pkg/app"
	"github.com/cuemby/fxboard/pkg/config"
	"github.com/cuemby/fxboard/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// cfg is loaded once by the root PersistentPreRunE
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fxboard",
	Short: "fxboard - control surface bridge for the pedalboard audio engine",
	Long: `fxboard keeps a live model of the pedalboard audio engine: meters,
loaded boards, the pedal catalog and MIDI activity. It sends pedal and
tuner commands to the engine and keeps named boards in a local store.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, loaded); err != nil {
			return err
		}

		level, err := log.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		log.Init(log.Config{Level: level, JSONOutput: loaded.Log.JSON})

		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fxboard version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to the YAML configuration file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.String("engine", "", "Engine link mode (websocket, loopback)")
	flags.String("engine-url", "", "Engine websocket URL")
	flags.String("storage", "", "Storage backend (bolt, redis)")
	flags.String("data-dir", "", "Directory for the bolt database")
	flags.String("redis-addr", "", "Redis address for the redis backend")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(tunerCmd)
}

// applyFlags lets explicitly set flags override the configuration file
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	overrides := []struct {
		flag   string
		target *string
	}{
		{"log-level", &c.Log.Level},
		{"engine", &c.Engine.Mode},
		{"engine-url", &c.Engine.URL},
		{"storage", &c.Storage.Backend},
		{"data-dir", &c.Storage.DataDir},
		{"redis-addr", &c.Storage.Redis.Addr},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target, _ = cmd.Flags().GetString(o.flag)
		}
	}
	if cmd.Flags().Changed("json-logs") {
		c.Log.JSON, _ = cmd.Flags().GetBool("json-logs")
	}
	return c.Validate()
}

func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fxboard: %w", err)
	}
	return a, nil
}

// withEngine opens an engine session around fn. Closing the session sends the
// stop frame but not ShutdownAudio, so the engine keeps its audio loop running.
func withEngine(ctx context.Context, a *app.App, fn func() error) error {
	opts := engineOptions()
	if err := a.Engine.Start(ctx, opts, a.Handler.ProcessMessage); err != nil {
		return fmt.Errorf("failed to connect to engine: %w", err)
	}
	defer a.Engine.Stop()
	return fn()
}
