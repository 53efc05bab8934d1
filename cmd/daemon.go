package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evemux/evemux/internal/compositor"
	"github.com/evemux/evemux/internal/config"
	"github.com/evemux/evemux/internal/daemon"
	"github.com/evemux/evemux/internal/ipc"
	"github.com/evemux/evemux/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logLevel string

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	Aliases: []string{"start"},
	Short:   "Run the evemux daemon",
	Long: `Run the evemux daemon in the foreground. It tracks EVE client windows,
listens on a control socket, and reads mouse/keyboard devices for cycling
shortcuts. Stop it with "evemux stop" or Ctrl-C.`,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	viper.BindPFlag("logging.log_level", daemonCmd.Flags().Lookup("log-level"))

	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	if logLevel != "" {
		logger.SetLevel(logLevel)
	}

	backend, err := compositor.Detect()
	if err != nil {
		if errors.Is(err, compositor.ErrUnsupportedCompositor) {
			return fmt.Errorf("%w\nSupported: X11, KDE Plasma, Sway, Hyprland", err)
		}
		return err
	}
	logger.Infof("Using %s backend", backend.Name())

	if cfg.Display.DisplayWidth == 0 || cfg.Display.DisplayHeight == 0 {
		w, h := config.DetectDisplaySize()
		cfg.Display.DisplayWidth = w
		cfg.Display.DisplayHeight = h
		logger.Infof("Detected display size %dx%d", w, h)
	}

	d, err := daemon.New(cfg, backend)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Evemux daemon starting (socket: %s)", ipc.SocketPath())
	if err := d.Run(ctx); err != nil {
		if errors.Is(err, ipc.ErrSocketInUse) {
			exitError("another evemux daemon is already running")
		}
		return err
	}
	return nil
}
