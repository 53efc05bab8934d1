package compositor

import (
	"fmt"
	"os"
	"strings"

	"github.com/evemux/evemux/internal/logger"
)

// Detect inspects the running session and returns the matching backend.
// Selection happens exactly once at daemon startup; the active display server
// does not change during the daemon's lifetime.
func Detect() (Backend, error) {
	if !isWayland() {
		logger.Info("Detected X11 display server")
		return NewX11(), nil
	}

	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case strings.Contains(desktop, "kde"):
		logger.Info("Detected Wayland session, using KWin backend")
		return NewKWin(), nil
	case strings.Contains(desktop, "sway"), os.Getenv("SWAYSOCK") != "":
		logger.Info("Detected Wayland session, using Sway backend")
		return NewSway(), nil
	case strings.Contains(desktop, "hyprland"), os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		logger.Info("Detected Wayland session, using Hyprland backend")
		return NewHyprland(), nil
	case strings.Contains(desktop, "gnome"):
		return nil, fmt.Errorf("%w: GNOME Shell exposes no usable window control API", ErrUnsupportedCompositor)
	default:
		return nil, fmt.Errorf("%w: %q (supported: KDE Plasma, Sway, Hyprland, X11)", ErrUnsupportedCompositor, desktop)
	}
}

func isWayland() bool {
	if os.Getenv("XDG_SESSION_TYPE") == "wayland" {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}
