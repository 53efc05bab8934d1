package compositor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/evemux/evemux/internal/logger"
)

// X11 controls windows through wmctrl and xdotool. Window identifiers are
// canonical hex strings ("0x03a00003") as printed by wmctrl.
type X11 struct{}

// NewX11 returns the X11 backend.
func NewX11() *X11 {
	return &X11{}
}

func (x *X11) Name() string { return "x11" }

func (x *X11) ListWindows(ctx context.Context) ([]Window, error) {
	// -l list, -G include geometry, columns:
	// ID DESKTOP X Y W H CLIENT TITLE...
	out, err := runTool(ctx, "wmctrl", "-l", "-G")
	if err != nil {
		return nil, err
	}

	var windows []Window
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		win, err := parseWmctrlLine(line)
		if err != nil {
			logger.With("compositor").Warnf("skipping window entry: %v", err)
			continue
		}
		windows = append(windows, win)
	}
	return windows, nil
}

func parseWmctrlLine(line string) (Window, error) {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return Window{}, fmt.Errorf("%w: %q", ErrMalformedOutput, line)
	}

	id, err := normalizeX11ID(fields[0])
	if err != nil {
		return Window{}, fmt.Errorf("%w: window id %q", ErrMalformedOutput, fields[0])
	}

	geom := make([]int, 4)
	for i, f := range fields[2:6] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Window{}, fmt.Errorf("%w: geometry %q", ErrMalformedOutput, line)
		}
		geom[i] = v
	}

	return Window{
		ID:     id,
		Title:  strings.Join(fields[7:], " "),
		X:      geom[0],
		Y:      geom[1],
		Width:  geom[2],
		Height: geom[3],
	}, nil
}

func (x *X11) ActiveWindow(ctx context.Context) (string, error) {
	// xdotool prints the active window as a decimal ID; wmctrl prints hex.
	// Everything is normalized to wmctrl's form.
	out, err := runTool(ctx, "xdotool", "getactivewindow")
	if err != nil {
		return "", err
	}
	return normalizeX11ID(strings.TrimSpace(string(out)))
}

func (x *X11) Activate(ctx context.Context, id string) error {
	_, err := runTool(ctx, "wmctrl", "-i", "-a", id)
	return err
}

func (x *X11) Move(ctx context.Context, id string, xpos, ypos int) error {
	arg := fmt.Sprintf("0,%d,%d,-1,-1", xpos, ypos)
	_, err := runTool(ctx, "wmctrl", "-i", "-r", id, "-e", arg)
	return err
}

func (x *X11) Resize(ctx context.Context, id string, w, h int) error {
	arg := fmt.Sprintf("0,-1,-1,%d,%d", w, h)
	_, err := runTool(ctx, "wmctrl", "-i", "-r", id, "-e", arg)
	return err
}

func (x *X11) Minimize(ctx context.Context, id string) error {
	_, err := runTool(ctx, "xdotool", "windowminimize", id)
	return err
}

// normalizeX11ID renders a decimal or hex window ID as 0x%08x.
func normalizeX11ID(raw string) (string, error) {
	var v uint64
	var err error
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		v, err = strconv.ParseUint(raw[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(raw, 10, 32)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%08x", v), nil
}
