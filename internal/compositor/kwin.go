package compositor

import (
	"context"
	"strconv"
	"strings"

	"github.com/evemux/evemux/internal/logger"
)

// KWin controls windows on KDE Plasma (Wayland) through kdotool, which talks
// to KWin's scripting D-Bus interface. Window identifiers are KWin UUIDs.
type KWin struct{}

// NewKWin returns the KDE Plasma backend.
func NewKWin() *KWin {
	return &KWin{}
}

func (k *KWin) Name() string { return "kwin" }

func (k *KWin) ListWindows(ctx context.Context) ([]Window, error) {
	out, err := runTool(ctx, "kdotool", "search", "--name", ".")
	if err != nil {
		return nil, err
	}

	var windows []Window
	for _, line := range strings.Split(string(out), "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		win, err := k.windowInfo(ctx, id)
		if err != nil {
			logger.With("compositor").Warnf("skipping window %s: %v", id, err)
			continue
		}
		windows = append(windows, win)
	}
	return windows, nil
}

// windowInfo fetches title and geometry for one window. kdotool has no
// combined query, so this is two invocations per window.
func (k *KWin) windowInfo(ctx context.Context, id string) (Window, error) {
	nameOut, err := runTool(ctx, "kdotool", "getwindowname", id)
	if err != nil {
		return Window{}, err
	}

	win := Window{
		ID:    id,
		Title: strings.TrimSpace(string(nameOut)),
	}

	geomOut, err := runTool(ctx, "kdotool", "getwindowgeometry", id)
	if err != nil {
		return Window{}, err
	}
	win.X, win.Y, win.Width, win.Height = parseKdotoolGeometry(string(geomOut))

	return win, nil
}

// parseKdotoolGeometry parses kdotool's geometry report:
//
//	Window <id>
//	  Position: X,Y
//	  Geometry: WxH
func parseKdotoolGeometry(out string) (x, y, w, h int) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Position:"); ok {
			if a, b, ok := strings.Cut(strings.TrimSpace(rest), ","); ok {
				x, _ = strconv.Atoi(strings.TrimSpace(a))
				y, _ = strconv.Atoi(strings.TrimSpace(b))
			}
		} else if rest, ok := strings.CutPrefix(line, "Geometry:"); ok {
			if a, b, ok := strings.Cut(strings.TrimSpace(rest), "x"); ok {
				w, _ = strconv.Atoi(strings.TrimSpace(a))
				h, _ = strconv.Atoi(strings.TrimSpace(b))
			}
		}
	}
	return x, y, w, h
}

func (k *KWin) ActiveWindow(ctx context.Context) (string, error) {
	out, err := runTool(ctx, "kdotool", "getactivewindow")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (k *KWin) Activate(ctx context.Context, id string) error {
	_, err := runTool(ctx, "kdotool", "windowactivate", id)
	return err
}

func (k *KWin) Move(ctx context.Context, id string, x, y int) error {
	_, err := runTool(ctx, "kdotool", "windowmove", id, strconv.Itoa(x), strconv.Itoa(y))
	return err
}

func (k *KWin) Resize(ctx context.Context, id string, w, h int) error {
	_, err := runTool(ctx, "kdotool", "windowsize", id, strconv.Itoa(w), strconv.Itoa(h))
	return err
}

func (k *KWin) Minimize(ctx context.Context, id string) error {
	_, err := runTool(ctx, "kdotool", "windowminimize", id)
	return err
}
