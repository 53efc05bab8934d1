// Package input turns raw evdev button and key events into cycling commands.
package input

import (
	"context"
	"errors"
)

// ErrDeviceUnavailable means a device could not be found or opened. The
// listener logs it and retries with backoff; it is never surfaced as a
// command failure.
var ErrDeviceUnavailable = errors.New("input device unavailable")

// Dispatcher receives translated commands. The daemon implements it; its
// command lock gives events from every device the same total ordering as IPC
// commands.
type Dispatcher interface {
	Forward(ctx context.Context) error
	Backward(ctx context.Context) error
}

// Action is the result of translating one event.
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBackward
)

// Binding maps event codes on one device to cycling actions. A zero
// ModifierCode means no modifier is tracked.
type Binding struct {
	ForwardCode  uint16
	BackwardCode uint16
	ModifierCode uint16
}

// translator holds the per-device modifier state between events.
type translator struct {
	binding      Binding
	modifierDown bool
}

// handle translates one key event. Only press events (value != 0) trigger
// actions; modifier state follows both press and release. When forward and
// backward share a code, the modifier decides, so backward+modifier is
// checked first.
func (t *translator) handle(code uint16, value int32) Action {
	if t.binding.ModifierCode != 0 && code == t.binding.ModifierCode {
		t.modifierDown = value != 0
		return ActionNone
	}

	if value == 0 {
		return ActionNone
	}

	switch {
	case code == t.binding.BackwardCode && t.modifierDown:
		return ActionBackward
	case code == t.binding.ForwardCode:
		return ActionForward
	case code == t.binding.BackwardCode:
		return ActionBackward
	}
	return ActionNone
}
