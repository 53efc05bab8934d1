package input

import (
	"context"
	"io"
	"time"

	"github.com/evemux/evemux/internal/logger"
	evdev "github.com/gvalkov/golang-evdev"
)

const (
	backoffInitial = 500 * time.Millisecond
	backoffMax     = 30 * time.Second
)

// Listener is one long-lived per-device task. It opens the device's raw
// event stream, translates matching events into commands, and pushes them
// through the dispatcher. The device is never grabbed: events still reach
// the rest of the desktop.
type Listener struct {
	kind       DeviceKind
	path       string // configured path; empty means auto-discover
	binding    Binding
	dispatcher Dispatcher
}

// NewListener creates a listener for one device.
func NewListener(kind DeviceKind, path string, binding Binding, dispatcher Dispatcher) *Listener {
	return &Listener{
		kind:       kind,
		path:       path,
		binding:    binding,
		dispatcher: dispatcher,
	}
}

// Run blocks reading device events until the context is cancelled. Open and
// read failures are retried with exponential backoff; a vanished device never
// terminates the daemon.
func (l *Listener) Run(ctx context.Context) error {
	log := logger.With("input")
	backoff := backoffInitial

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		dev, err := l.open()
		if err != nil {
			log.Warnf("%s listener: %v; retrying in %s", l.kind, err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}

		log.Infof("%s listener reading from %s", l.kind, dev.Fn)
		backoff = backoffInitial

		// dev.Read blocks in the kernel, so cancellation must close the
		// device out from under it to unblock the loop.
		readDone := make(chan struct{})
		go closeOnCancel(ctx, readDone, dev.File)

		err = l.readLoop(ctx, dev)
		close(readDone)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Warnf("%s device lost: %v; retrying in %s", l.kind, err, backoff)
		if !sleepCtx(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff)
	}
}

func (l *Listener) open() (*evdev.InputDevice, error) {
	path := l.path
	if path == "" {
		discovered, err := Discover(l.kind)
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// closeOnCancel is the single owner of the device handle: it closes it when
// the context ends, failing the blocked read, or once the read loop has
// exited on its own.
func closeOnCancel(ctx context.Context, readDone <-chan struct{}, f io.Closer) {
	select {
	case <-ctx.Done():
	case <-readDone:
	}
	if f != nil {
		f.Close()
	}
}

// readLoop consumes events until a read error or cancellation. The watcher
// spawned in Run closes the device when the context ends, which makes the
// blocked Read return and the loop observe the cancellation.
func (l *Listener) readLoop(ctx context.Context, dev *evdev.InputDevice) error {
	tr := translator{binding: l.binding}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		events, err := dev.Read()
		if err != nil {
			return err
		}

		for _, ev := range events {
			if ev.Type != evdev.EV_KEY {
				continue
			}
			switch tr.handle(ev.Code, ev.Value) {
			case ActionForward:
				logger.With("input").Debugf("%s forward trigger", l.kind)
				if err := l.dispatcher.Forward(ctx); err != nil {
					logger.With("input").Errorf("forward failed: %v", err)
				}
			case ActionBackward:
				logger.With("input").Debugf("%s backward trigger", l.kind)
				if err := l.dispatcher.Backward(ctx); err != nil {
					logger.With("input").Errorf("backward failed: %v", err)
				}
			}
		}
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > backoffMax {
		return backoffMax
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
