// Package daemon owns the long-lived state and serializes every command
// source into one total order of effects.
package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/evemux/evemux/internal/compositor"
	"github.com/evemux/evemux/internal/config"
	"github.com/evemux/evemux/internal/cycler"
	"github.com/evemux/evemux/internal/input"
	"github.com/evemux/evemux/internal/ipc"
	"github.com/evemux/evemux/internal/logger"
	"github.com/evemux/evemux/internal/registry"
	"github.com/evemux/evemux/internal/stacker"
	"golang.org/x/sync/errgroup"
)

// refreshInterval paces the background window-list refresh. ListWindows is a
// subprocess call, so this is deliberately coarser than a UI poll.
const refreshInterval = 2 * time.Second

// Daemon holds the full daemon state: constructed at startup, torn down on
// stop or signal. Tasks receive it by reference; there are no globals.
type Daemon struct {
	cfg     *config.Config
	backend compositor.Backend
	reg     *registry.Registry
	cyc     *cycler.Cycler
	server  *ipc.Server

	// mu is the single coarse command lock. Every state-mutating command,
	// from any source, runs under it: no two activations interleave and no
	// cycling decision sees a half-applied transition. Throughput is bounded
	// by human input speed, so the coarseness costs nothing.
	mu sync.Mutex

	stop context.CancelFunc
}

// New builds a daemon over the detected backend.
func New(cfg *config.Config, backend compositor.Backend) (*Daemon, error) {
	nameOrder, err := config.LoadCharacterOrder()
	if err != nil {
		return nil, err
	}
	if nameOrder != nil {
		logger.Infof("Loaded character order (%d names) from %s", len(nameOrder), config.CharacterOrderPath())
	}

	reg := registry.New(backend, nameOrder)

	d := &Daemon{
		cfg:     cfg,
		backend: backend,
		reg:     reg,
		cyc:     cycler.New(backend, reg, cfg.Behavior.MinimizeInactive),
	}
	d.server = ipc.NewServer(d)
	return d, nil
}

// Run starts the control socket, input listeners, and background refresh,
// then blocks until the context is cancelled or a stop command arrives.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.stop = cancel

	if _, err := d.reg.Refresh(ctx); err != nil {
		logger.Warnf("Initial window scan failed: %v", err)
	} else {
		logger.Infof("Tracking %d EVE client(s)", d.reg.Len())
	}

	if err := d.server.Start(); err != nil {
		return err
	}
	defer d.server.Stop()

	g, ctx := errgroup.WithContext(ctx)

	if d.cfg.Input.EnableMouseButtons {
		l := input.NewListener(input.DeviceMouse, d.cfg.Input.MouseDevicePath, input.Binding{
			ForwardCode:  d.cfg.Input.ForwardButton,
			BackwardCode: d.cfg.Input.BackwardButton,
		}, d)
		g.Go(func() error { return ignoreCancel(l.Run(ctx)) })
		logger.Info("Mouse button listener enabled")
	}

	if d.cfg.Input.EnableKeyboardButtons {
		l := input.NewListener(input.DeviceKeyboard, d.cfg.Input.KeyboardDevicePath, input.Binding{
			ForwardCode:  d.cfg.Input.ForwardKey,
			BackwardCode: d.cfg.Input.BackwardKey,
			ModifierCode: d.cfg.Input.ModifierKey,
		}, d)
		g.Go(func() error { return ignoreCancel(l.Run(ctx)) })
		logger.Info("Keyboard listener enabled")
	}

	g.Go(func() error {
		d.refreshLoop(ctx)
		return nil
	})

	<-ctx.Done()
	err := g.Wait()
	logger.Info("Daemon stopped")
	return err
}

// refreshLoop keeps the registry current between commands so status queries
// and the first cycle after a client logs in see fresh state. Each refresh
// runs under the command lock: a shrinking client order must not land in the
// middle of a transition, and the cycler index is realigned with the new
// order before the lock is released.
func (d *Daemon) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.mu.Lock()
			if _, err := d.reg.Refresh(ctx); err != nil {
				logger.With("daemon").Debugf("background refresh failed: %v", err)
			} else {
				d.cyc.Realign()
			}
			d.mu.Unlock()
		}
	}
}

// Forward advances the cycle. Part of both the ipc.Handler and
// input.Dispatcher surfaces.
func (d *Daemon) Forward(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cyc.Forward(ctx)
}

// Backward retreats the cycle.
func (d *Daemon) Backward(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cyc.Backward(ctx)
}

// JumpTo switches to the 1-based client position.
func (d *Daemon) JumpTo(ctx context.Context, target int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cyc.JumpTo(ctx, target)
}

// Stack re-reads the window list and tiles every client.
func (d *Daemon) Stack(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	windows, err := d.reg.Refresh(ctx)
	if err != nil {
		return err
	}
	d.cyc.Realign()

	placements := stacker.Compute(windows, stacker.Layout{
		DisplayWidth:  d.cfg.Display.DisplayWidth,
		DisplayHeight: d.cfg.Display.DisplayHeight,
		PanelHeight:   d.cfg.Display.PanelHeight,
		WindowWidth:   d.cfg.Display.EveWidth,
		WindowHeight:  d.cfg.EveHeightAdjusted(),
	})
	logger.Infof("Stacking %d client(s)", len(placements))
	return stacker.Apply(ctx, d.backend, placements)
}

// Status reports the client order and current selection. Taken under the
// command lock so a concurrent transition is never observed half-applied.
// The index is synced with the compositor's actual focus first, so the
// marker reflects manual focus changes made outside the daemon.
func (d *Daemon) Status(ctx context.Context) (ipc.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cyc.Sync(ctx)

	windows := d.reg.Windows()
	idx := d.cyc.Index()

	st := ipc.Status{
		Running: true,
		Windows: make([]ipc.StatusWindow, len(windows)),
	}
	for i, w := range windows {
		st.Windows[i] = ipc.StatusWindow{
			Name:   w.Name,
			Active: i == idx,
		}
	}
	return st, nil
}

// Shutdown stops the daemon from a control command.
func (d *Daemon) Shutdown() {
	logger.Info("Shutdown requested")
	if d.stop != nil {
		d.stop()
	}
}

// ignoreCancel keeps listener teardown from being reported as a task
// failure.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
