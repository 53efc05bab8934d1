package input

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evemux/evemux/internal/logger"
	evdev "github.com/gvalkov/golang-evdev"
)

// DeviceKind selects which capability profile discovery looks for.
type DeviceKind int

const (
	// DeviceMouse matches devices exposing side/extra buttons.
	DeviceMouse DeviceKind = iota
	// DeviceKeyboard matches devices exposing ordinary keys.
	DeviceKeyboard
)

func (k DeviceKind) String() string {
	if k == DeviceMouse {
		return "mouse"
	}
	return "keyboard"
}

// Discover scans /dev/input for the first device matching the kind's
// capability profile. With several plausible candidates it warns naming all
// of them and picks the first in path order, so repeated runs choose the
// same device.
func Discover(kind DeviceKind) (string, error) {
	devices, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return "", fmt.Errorf("%w: scanning /dev/input: %v", ErrDeviceUnavailable, err)
	}

	var candidates []*evdev.InputDevice
	for _, dev := range devices {
		if matchesKind(dev, kind) {
			candidates = append(candidates, dev)
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no %s device found in /dev/input", ErrDeviceUnavailable, kind)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Fn < candidates[j].Fn
	})

	if len(candidates) > 1 {
		names := make([]string, len(candidates))
		for i, dev := range candidates {
			names[i] = fmt.Sprintf("%s (%s)", dev.Name, dev.Fn)
		}
		logger.With("input").Warnf("multiple %s candidates: %s; using the first",
			kind, strings.Join(names, ", "))
	}

	logger.Infof("Found %s device: %s (%s)", kind, candidates[0].Name, candidates[0].Fn)
	return candidates[0].Fn, nil
}

func matchesKind(dev *evdev.InputDevice, kind DeviceKind) bool {
	keys, ok := dev.CapabilitiesFlat[evdev.EV_KEY]
	if !ok || len(keys) == 0 {
		return false
	}

	switch kind {
	case DeviceMouse:
		for _, code := range keys {
			if code == evdev.BTN_SIDE || code == evdev.BTN_EXTRA {
				return true
			}
		}
		return false

	case DeviceKeyboard:
		// Power buttons and similar pseudo-devices also report EV_KEY.
		name := strings.ToLower(dev.Name)
		for _, skip := range []string{"power", "video", "sleep", "button"} {
			if strings.Contains(name, skip) {
				return false
			}
		}
		for _, code := range keys {
			if code == evdev.KEY_TAB || code == evdev.KEY_LEFTSHIFT || code == evdev.KEY_Z {
				return true
			}
		}
		return false
	}
	return false
}
