// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evemux/evemux/internal/logger"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Display configuration
	Display DisplayConfig `mapstructure:"display"`

	// Input device configuration
	Input InputConfig `mapstructure:"input"`

	// Behavior configuration
	Behavior BehaviorConfig `mapstructure:"behavior"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DisplayConfig describes the physical display and the per-client window size
type DisplayConfig struct {
	DisplayWidth  int `mapstructure:"display_width"`
	DisplayHeight int `mapstructure:"display_height"`
	PanelHeight   int `mapstructure:"panel_height"`
	EveWidth      int `mapstructure:"eve_width"`
	EveHeight     int `mapstructure:"eve_height"`
}

// InputConfig contains raw input device settings
type InputConfig struct {
	EnableMouseButtons bool   `mapstructure:"enable_mouse_buttons"`
	ForwardButton      uint16 `mapstructure:"forward_button"`
	BackwardButton     uint16 `mapstructure:"backward_button"`
	MouseDevicePath    string `mapstructure:"mouse_device_path"`

	EnableKeyboardButtons bool   `mapstructure:"enable_keyboard_buttons"`
	ForwardKey            uint16 `mapstructure:"forward_key"`
	BackwardKey           uint16 `mapstructure:"backward_key"`
	ModifierKey           uint16 `mapstructure:"modifier_key"`
	KeyboardDevicePath    string `mapstructure:"keyboard_device_path"`
}

// BehaviorConfig contains cycling behavior settings
type BehaviorConfig struct {
	ShowOverlay      bool `mapstructure:"show_overlay"`
	MinimizeInactive bool `mapstructure:"minimize_inactive"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Overrides LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults. Display size is filled in by
	// DetectDisplaySize when generating a fresh config.
	DefaultConfig = Config{
		Display: DisplayConfig{
			DisplayWidth:  1920,
			DisplayHeight: 1080,
			PanelHeight:   0,
			EveWidth:      1037,
			EveHeight:     1080,
		},
		Input: InputConfig{
			EnableMouseButtons: false,
			ForwardButton:      276, // BTN_SIDE
			BackwardButton:     275, // BTN_EXTRA
			MouseDevicePath:    "",

			EnableKeyboardButtons: true,
			ForwardKey:            15, // KEY_TAB
			BackwardKey:           15, // KEY_TAB, distinguished by modifier
			ModifierKey:           0,
			KeyboardDevicePath:    "",
		},
		Behavior: BehaviorConfig{
			ShowOverlay:      true,
			MinimizeInactive: false,
		},
		Logging: LoggingConfig{
			LogLevel: "",
		},
	}

	cfg *Config

	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("evemux")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evemux"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("display.display_width", DefaultConfig.Display.DisplayWidth)
	viper.SetDefault("display.display_height", DefaultConfig.Display.DisplayHeight)
	viper.SetDefault("display.panel_height", DefaultConfig.Display.PanelHeight)
	viper.SetDefault("display.eve_width", DefaultConfig.Display.EveWidth)
	viper.SetDefault("display.eve_height", DefaultConfig.Display.EveHeight)

	viper.SetDefault("input.enable_mouse_buttons", DefaultConfig.Input.EnableMouseButtons)
	viper.SetDefault("input.forward_button", DefaultConfig.Input.ForwardButton)
	viper.SetDefault("input.backward_button", DefaultConfig.Input.BackwardButton)
	viper.SetDefault("input.mouse_device_path", DefaultConfig.Input.MouseDevicePath)
	viper.SetDefault("input.enable_keyboard_buttons", DefaultConfig.Input.EnableKeyboardButtons)
	viper.SetDefault("input.forward_key", DefaultConfig.Input.ForwardKey)
	viper.SetDefault("input.backward_key", DefaultConfig.Input.BackwardKey)
	viper.SetDefault("input.modifier_key", DefaultConfig.Input.ModifierKey)
	viper.SetDefault("input.keyboard_device_path", DefaultConfig.Input.KeyboardDevicePath)

	viper.SetDefault("behavior.show_overlay", DefaultConfig.Behavior.ShowOverlay)
	viper.SetDefault("behavior.minimize_inactive", DefaultConfig.Behavior.MinimizeInactive)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	if err := viper.ReadInConfig(); err != nil {
		// Search-path mode and explicit-file mode report a missing file
		// differently; both just mean defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if cfg.Logging.LogLevel != "" {
		logger.SetLevel(cfg.Logging.LogLevel)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save writes the current viper state to the config file
func Save() error {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "evemux.toml"
	}
	return filepath.Join(home, ".config", "evemux", "evemux.toml")
}

// EveHeightAdjusted returns the per-client window height capped to the space
// below the panel.
func (c *Config) EveHeightAdjusted() int {
	max := c.Display.DisplayHeight - c.Display.PanelHeight
	if c.Display.EveHeight > max {
		return max
	}
	return c.Display.EveHeight
}

// DetectDisplaySize queries xrandr for the active mode of the primary output.
// Falls back to 1920x1080 when xrandr is unavailable or unparseable.
func DetectDisplaySize() (int, int) {
	out, err := exec.Command("xrandr", "--current").Output()
	if err != nil {
		return 1920, 1080
	}

	for _, line := range strings.Split(string(out), "\n") {
		// Active mode lines look like: "7680x2160     60.00*+"
		if !strings.Contains(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		w, h, ok := strings.Cut(fields[0], "x")
		if !ok {
			continue
		}
		width, werr := strconv.Atoi(w)
		height, herr := strconv.Atoi(h)
		if werr == nil && herr == nil {
			return width, height
		}
	}

	return 1920, 1080
}

// WriteDefault generates a config file with the detected display size.
func WriteDefault() error {
	width, height := DetectDisplaySize()
	logger.Infof("Detected display: %dx%d", width, height)

	viper.Set("display.display_width", width)
	viper.Set("display.display_height", height)
	// ~54% of the display width comfortably fits two overlapping clients
	viper.Set("display.eve_width", width*54/100)
	viper.Set("display.eve_height", height)

	if err := Save(); err != nil {
		return err
	}
	logger.Infof("Created config: %s", GetConfigPath())
	return nil
}
