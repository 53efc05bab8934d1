package cmd

import (
	"fmt"

	"github.com/evemux/evemux/internal/ipc"
	"github.com/evemux/evemux/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon status and tracked clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := ipc.NewClient()
		if !client.Running() {
			fmt.Println(ui.ErrorStyle.Render("○") + " Evemux daemon is not running")
			return nil
		}

		status, err := client.Status()
		if err != nil {
			return fmt.Errorf("failed to get daemon status: %w", err)
		}

		fmt.Println(ui.SuccessStyle.Render("●") + " Evemux daemon is running")
		if len(status.Windows) == 0 {
			fmt.Println(ui.SubtleStyle.Render("No EVE clients detected"))
			return nil
		}

		fmt.Println(ui.SubheaderStyle.Render(fmt.Sprintf("Tracked clients (%d)", len(status.Windows))))
		for i, w := range status.Windows {
			fmt.Println(ui.FormatClientLine(i+1, w.Name, w.Active))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
