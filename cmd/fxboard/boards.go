package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cuemby/fxboard/pkg/events"
	"github.com/cuemby/fxboard/pkg/types"
	"github.com/cuemby/fxboard/pkg/validation"
)

const snapshotTimeout = 5 * time.Second

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "Manage saved boards",
}

var boardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved boards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		items := a.Boards.GetItems()
		if len(items) == 0 {
			fmt.Fprintln(out, "No saved boards")
			return nil
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		for _, item := range items {
			printBoard(out, item.Name, item.BoardData)
		}
		return nil
	},
}

var boardsSaveCmd = &cobra.Command{
	Use:   "save -f FILE",
	Short: "Save a board from a YAML or JSON file",
	Long: `Save a board from a YAML or JSON file. A saved board with the same
name is replaced.

Example board file:
  name: lefty
  channel: 0
  boardId: 3
  pedals:
    - index: 0
      name: fuzz
      settings: []`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, _ := cmd.Flags().GetString("file")

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		// YAML is a superset of JSON, so one decoder reads both
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse board file: %w", err)
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to convert board file: %w", err)
		}

		item, err := validation.DecodeItem(encoded)
		if err != nil {
			return err
		}
		if item.Name == "" {
			return fmt.Errorf("board file must set a name")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Boards.SetItem(item) {
			return fmt.Errorf("failed to save board %q, see log for details", item.Name)
		}
		success(cmd.OutOrStdout(), "Saved board %q", item.Name)
		return nil
	},
}

var boardsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Boards.ClearItems() {
			return fmt.Errorf("failed to clear boards, see log for details")
		}
		success(cmd.OutOrStdout(), "Cleared saved boards")
		return nil
	},
}

var boardsLoadCmd = &cobra.Command{
	Use:   "load NAME",
	Short: "Load a saved board onto a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelArg, _ := cmd.Flags().GetString("channel")
		channel, err := parseChannel(channelArg)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		err = withEngine(cmd.Context(), a, func() error {
			return a.LoadSavedBoard(args[0], channel)
		})
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Loaded %q on channel %d", args[0], channel)
		return nil
	},
}

var boardsSnapshotCmd = &cobra.Command{
	Use:   "snapshot NAME",
	Short: "Save the board currently loaded on a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelArg, _ := cmd.Flags().GetString("channel")
		channel, err := parseChannel(channelArg)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		updated := make(chan struct{}, 1)
		err = a.Handler.Subscribe(events.TopicBoards, "snapshot", func(*types.UnitModel) {
			select {
			case updated <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return err
		}

		err = withEngine(cmd.Context(), a, func() error {
			if err := a.Handler.RefreshPedalConfig(); err != nil {
				return err
			}
			select {
			case <-updated:
				return nil
			case <-time.After(snapshotTimeout):
				return fmt.Errorf("engine did not report its boards within %s", snapshotTimeout)
			}
		})
		if err != nil {
			return err
		}

		if !a.SaveLoadedBoard(channel, args[0]) {
			return fmt.Errorf("failed to save board %q, see log for details", args[0])
		}
		success(cmd.OutOrStdout(), "Saved channel %d as %q", channel, args[0])
		return nil
	},
}

func init() {
	boardsListCmd.Flags().Bool("json", false, "Print boards as JSON")

	boardsSaveCmd.Flags().StringP("file", "f", "", "Board file to save (required)")
	_ = boardsSaveCmd.MarkFlagRequired("file")

	boardsLoadCmd.Flags().String("channel", "0", "Channel to load the board onto")
	boardsSnapshotCmd.Flags().String("channel", "0", "Channel to save")

	boardsCmd.AddCommand(boardsListCmd)
	boardsCmd.AddCommand(boardsSaveCmd)
	boardsCmd.AddCommand(boardsClearCmd)
	boardsCmd.AddCommand(boardsLoadCmd)
	boardsCmd.AddCommand(boardsSnapshotCmd)
}
