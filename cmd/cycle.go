package cmd

import (
	"github.com/evemux/evemux/internal/ipc"
	"github.com/spf13/cobra"
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Switch to the next EVE client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(ipc.Command{Kind: ipc.CmdForward})
	},
}

var backwardCmd = &cobra.Command{
	Use:   "backward",
	Short: "Switch to the previous EVE client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(ipc.Command{Kind: ipc.CmdBackward})
	},
}

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Tile all EVE clients across the display",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommand(ipc.Command{Kind: ipc.CmdStack})
	},
}

func init() {
	rootCmd.AddCommand(forwardCmd)
	rootCmd.AddCommand(backwardCmd)
	rootCmd.AddCommand(stackCmd)
}
