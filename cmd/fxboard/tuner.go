package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cuemby/fxboard/pkg/types"
)

var tunerCmd = &cobra.Command{
	Use:   "tuner CHANNEL on|off",
	Short: "Switch the tuner of a channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := parseChannel(args[0])
		if err != nil {
			return err
		}

		var on bool
		switch args[1] {
		case "on":
			on = true
		case "off":
		default:
			return fmt.Errorf("tuner state must be 'on' or 'off', got %q", args[1])
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		err = withEngine(cmd.Context(), a, func() error {
			return a.Handler.TunerOn(channel, on)
		})
		if err != nil {
			return err
		}

		success(cmd.OutOrStdout(), "Tuner %s for channel %d", args[1], channel)
		return nil
	},
}

func parseChannel(s string) (int, error) {
	channel, err := strconv.Atoi(s)
	if err != nil || channel < 0 || channel >= types.ChannelCount {
		return 0, fmt.Errorf("channel must be between 0 and %d, got %q", types.ChannelCount-1, s)
	}
	return channel, nil
}
