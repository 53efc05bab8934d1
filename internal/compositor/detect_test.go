package compositor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func clearSessionEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"XDG_SESSION_TYPE", "WAYLAND_DISPLAY", "XDG_CURRENT_DESKTOP",
		"SWAYSOCK", "HYPRLAND_INSTANCE_SIGNATURE",
	} {
		t.Setenv(v, "")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantName string
		wantErr  bool
	}{
		{
			name:     "x11 default",
			env:      map[string]string{"XDG_SESSION_TYPE": "x11", "XDG_CURRENT_DESKTOP": "XFCE"},
			wantName: "x11",
		},
		{
			name:     "no session hints falls back to x11",
			env:      map[string]string{},
			wantName: "x11",
		},
		{
			name:     "kde wayland",
			env:      map[string]string{"XDG_SESSION_TYPE": "wayland", "XDG_CURRENT_DESKTOP": "KDE"},
			wantName: "kwin",
		},
		{
			name:     "sway via desktop",
			env:      map[string]string{"XDG_SESSION_TYPE": "wayland", "XDG_CURRENT_DESKTOP": "sway"},
			wantName: "sway",
		},
		{
			name:     "sway via socket",
			env:      map[string]string{"WAYLAND_DISPLAY": "wayland-1", "SWAYSOCK": "/run/user/1000/sway.sock"},
			wantName: "sway",
		},
		{
			name:     "hyprland via signature",
			env:      map[string]string{"XDG_SESSION_TYPE": "wayland", "HYPRLAND_INSTANCE_SIGNATURE": "abc123"},
			wantName: "hyprland",
		},
		{
			name:     "hyprland via desktop",
			env:      map[string]string{"XDG_SESSION_TYPE": "wayland", "XDG_CURRENT_DESKTOP": "Hyprland"},
			wantName: "hyprland",
		},
		{
			name:    "gnome unsupported",
			env:     map[string]string{"XDG_SESSION_TYPE": "wayland", "XDG_CURRENT_DESKTOP": "GNOME"},
			wantErr: true,
		},
		{
			name:    "unknown wayland compositor",
			env:     map[string]string{"XDG_SESSION_TYPE": "wayland", "XDG_CURRENT_DESKTOP": "weston"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSessionEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			backend, err := Detect()
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedCompositor) {
					t.Fatalf("Detect() error = %v, want ErrUnsupportedCompositor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if backend.Name() != tt.wantName {
				t.Errorf("Detect() = %s, want %s", backend.Name(), tt.wantName)
			}
		})
	}
}

func TestRunToolMissingBinary(t *testing.T) {
	_, err := runTool(context.Background(), "evemux-no-such-tool-xyz")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("runTool() error = %v, want ErrToolNotFound", err)
	}
}

func TestRunToolTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runTool(ctx, "sleep", "10")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("runTool() error = %v, want ErrTimeout", err)
	}

	// The timeout is scoped to the one invocation; the next call works.
	if _, err := runTool(context.Background(), "sleep", "0"); err != nil {
		t.Errorf("runTool() after a timed-out call error = %v", err)
	}
}
