package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/evemux/evemux/internal/config"
	"github.com/evemux/evemux/internal/ipc"
	"github.com/evemux/evemux/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "evemux [position]",
		Short: "Evemux - EVE Online multi-client window switcher",
		Long: `Evemux cycles focus between multiple EVE Online client windows.
Run "evemux daemon" once, then drive it with forward/backward/stack commands,
mouse side buttons, or keyboard shortcuts. A bare number jumps straight to
that client: "evemux 3" activates the third window.`,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			target, err := strconv.Atoi(args[0])
			if err != nil || target < 1 {
				return fmt.Errorf("expected a client position (1-N), got %q", args[0])
			}
			return sendCommand(ipc.Command{Kind: ipc.CmdJumpTo, Target: target})
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
}

// initConfig loads the config file, creating a default one on first run.
func initConfig() (*config.Config, error) {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()
	if cfg.Logging.LogLevel != "" {
		logger.SetLevel(cfg.Logging.LogLevel)
	}
	return cfg, nil
}

// sendCommand delivers one command to the daemon and prints the outcome.
func sendCommand(cmd ipc.Command) error {
	client := ipc.NewClient()
	reply, err := client.Send(cmd)
	if err != nil {
		return err
	}
	if reason, isErr := ipc.IsError(reply); isErr {
		return fmt.Errorf("%s", reason)
	}
	return nil
}

// Exit with error message
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
