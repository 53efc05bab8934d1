package cmd

import (
	"fmt"

	"github.com/evemux/evemux/internal/ipc"
	"github.com/evemux/evemux/internal/ui"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the evemux daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := ipc.NewClient()
		if !client.Running() {
			fmt.Println(ui.WarningStyle.Render("Evemux daemon is not running"))
			return nil
		}
		if err := sendCommand(ipc.Command{Kind: ipc.CmdStop}); err != nil {
			return err
		}
		fmt.Println(ui.SuccessStyle.Render("✓") + " Evemux daemon stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
