package compositor

import (
	"context"
	"encoding/json"
	"fmt"
)

// Hyprland controls windows through hyprctl. Window identifiers are Hyprland
// client addresses ("0x55d2e9a...").
type Hyprland struct{}

// NewHyprland returns the Hyprland backend.
func NewHyprland() *Hyprland {
	return &Hyprland{}
}

func (h *Hyprland) Name() string { return "hyprland" }

type hyprClient struct {
	Address string `json:"address"`
	Title   string `json:"title"`
	At      [2]int `json:"at"`
	Size    [2]int `json:"size"`
}

func (h *Hyprland) ListWindows(ctx context.Context) ([]Window, error) {
	out, err := runTool(ctx, "hyprctl", "-j", "clients")
	if err != nil {
		return nil, err
	}

	var clients []hyprClient
	if err := json.Unmarshal(out, &clients); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	windows := make([]Window, 0, len(clients))
	for _, c := range clients {
		if c.Address == "" {
			continue
		}
		windows = append(windows, Window{
			ID:     c.Address,
			Title:  c.Title,
			X:      c.At[0],
			Y:      c.At[1],
			Width:  c.Size[0],
			Height: c.Size[1],
		})
	}
	return windows, nil
}

func (h *Hyprland) ActiveWindow(ctx context.Context) (string, error) {
	out, err := runTool(ctx, "hyprctl", "-j", "activewindow")
	if err != nil {
		return "", err
	}

	// hyprctl prints an empty object when nothing is focused.
	var c hyprClient
	if err := json.Unmarshal(out, &c); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return c.Address, nil
}

func (h *Hyprland) Activate(ctx context.Context, id string) error {
	_, err := runTool(ctx, "hyprctl", "dispatch", "focuswindow", "address:"+id)
	return err
}

func (h *Hyprland) Move(ctx context.Context, id string, x, y int) error {
	_, err := runTool(ctx, "hyprctl", "dispatch", "movewindowpixel",
		fmt.Sprintf("exact %d %d,address:%s", x, y, id))
	return err
}

func (h *Hyprland) Resize(ctx context.Context, id string, w, hgt int) error {
	_, err := runTool(ctx, "hyprctl", "dispatch", "resizewindowpixel",
		fmt.Sprintf("exact %d %d,address:%s", w, hgt, id))
	return err
}

func (h *Hyprland) Minimize(ctx context.Context, id string) error {
	// Hyprland has no minimize; a special workspace hides the window.
	_, err := runTool(ctx, "hyprctl", "dispatch", "movetoworkspacesilent",
		"special:minimized,address:"+id)
	return err
}
