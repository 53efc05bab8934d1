// Package compositor abstracts window enumeration and control over the
// display server actually running: X11 directly, or one of the supported
// Wayland compositors through its native control tool.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrUnsupportedCompositor is fatal: the daemon cannot control windows
	// on this display server.
	ErrUnsupportedCompositor = errors.New("unsupported compositor")

	// ErrToolNotFound means the backend's control utility is not installed.
	// Scoped to the failing call, never fatal to the daemon.
	ErrToolNotFound = errors.New("control tool not found")

	// ErrTimeout means one external invocation exceeded its deadline.
	ErrTimeout = errors.New("backend command timed out")

	// ErrMalformedOutput marks tool output that could not be parsed.
	ErrMalformedOutput = errors.New("malformed backend output")
)

// Window is one toplevel window as reported by the display server.
type Window struct {
	ID     string
	Title  string
	X      int
	Y      int
	Width  int
	Height int
}

// Backend is the capability set the daemon needs from a display server.
// Implementations shell out to an external control tool and parse its output;
// every call is bounded by a per-invocation timeout.
type Backend interface {
	// Name identifies the backend variant ("x11", "kwin", "sway", "hyprland").
	Name() string

	// ListWindows returns all toplevel windows currently known to the
	// display server. Unparseable entries are skipped and logged.
	ListWindows(ctx context.Context) ([]Window, error)

	// ActiveWindow returns the identifier of the focused window, or an
	// empty string when nothing is focused.
	ActiveWindow(ctx context.Context) (string, error)

	// Activate focuses the window.
	Activate(ctx context.Context, id string) error

	// Move repositions the window to x,y.
	Move(ctx context.Context, id string, x, y int) error

	// Resize sets the window's size to w x h.
	Resize(ctx context.Context, id string, w, h int) error

	// Minimize hides the window.
	Minimize(ctx context.Context, id string) error
}

// toolTimeout bounds every external tool invocation. A stuck tool fails its
// one command; it must not wedge the daemon's command lock.
const toolTimeout = 3 * time.Second

// runTool executes an external control tool and returns its stdout.
func runTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: %s %s", ErrTimeout, name, strings.Join(args, " "))
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}
