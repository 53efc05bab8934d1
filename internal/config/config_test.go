package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestInitWithDefaults(t *testing.T) {
	viper.Reset()
	SetConfigPath(filepath.Join(t.TempDir(), "evemux.toml"))
	t.Cleanup(func() { SetConfigPath(""); viper.Reset() })

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil after Init()")
	}

	if cfg.Input.ForwardButton != 276 {
		t.Errorf("default forward_button = %d, want 276 (BTN_SIDE)", cfg.Input.ForwardButton)
	}
	if cfg.Input.BackwardButton != 275 {
		t.Errorf("default backward_button = %d, want 275 (BTN_EXTRA)", cfg.Input.BackwardButton)
	}
	if cfg.Input.ForwardKey != 15 {
		t.Errorf("default forward_key = %d, want 15 (KEY_TAB)", cfg.Input.ForwardKey)
	}
}

func TestInitReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evemux.toml")
	content := `[display]
display_width = 2560
eve_width = 1280

[behavior]
minimize_inactive = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	viper.Reset()
	SetConfigPath(path)
	t.Cleanup(func() { SetConfigPath(""); viper.Reset() })

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg := Get()
	if cfg.Display.DisplayWidth != 2560 {
		t.Errorf("display_width = %d, want 2560", cfg.Display.DisplayWidth)
	}
	if cfg.Display.EveWidth != 1280 {
		t.Errorf("eve_width = %d, want 1280", cfg.Display.EveWidth)
	}
	if !cfg.Behavior.MinimizeInactive {
		t.Error("minimize_inactive = false, want true")
	}
	// Unset keys keep their defaults.
	if cfg.Input.ForwardButton != 276 {
		t.Errorf("forward_button = %d, want default 276", cfg.Input.ForwardButton)
	}
}

func TestEveHeightAdjusted(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{
			name: "height fits below panel",
			cfg:  Config{Display: DisplayConfig{DisplayHeight: 1080, PanelHeight: 30, EveHeight: 1000}},
			want: 1000,
		},
		{
			name: "height capped by panel",
			cfg:  Config{Display: DisplayConfig{DisplayHeight: 1080, PanelHeight: 30, EveHeight: 1080}},
			want: 1050,
		},
		{
			name: "no panel",
			cfg:  Config{Display: DisplayConfig{DisplayHeight: 1080, PanelHeight: 0, EveHeight: 1080}},
			want: 1080,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.EveHeightAdjusted(); got != tt.want {
				t.Errorf("EveHeightAdjusted() = %d, want %d", got, tt.want)
			}
		})
	}
}
