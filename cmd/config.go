package cmd

import (
	"fmt"
	"os"

	"github.com/evemux/evemux/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file with detected display size",
	Long: `Detect the display resolution via xrandr and write a commented default
config file. Existing config is not overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			config.SetConfigPath(configPath)
		}
		if _, err := os.Stat(config.GetConfigPath()); err == nil {
			fmt.Printf("Config already exists: %s\n", config.GetConfigPath())
			return nil
		}
		if err := config.WriteDefault(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", config.GetConfigPath())
		fmt.Printf("Optional character order file: %s\n", config.CharacterOrderPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
