// Package cycler implements the window cycling state machine.
package cycler

import (
	"context"
	"errors"
	"fmt"

	"github.com/evemux/evemux/internal/compositor"
	"github.com/evemux/evemux/internal/logger"
	"github.com/evemux/evemux/internal/registry"
)

// ErrNoSuchTarget is returned by JumpTo for a target outside [1, N].
// The cycling state is left unchanged.
var ErrNoSuchTarget = errors.New("no such cycle target")

// Cycler selects the current window in the client order and drives focus
// changes through the backend.
//
// Cycler has no internal locking: all mutations arrive through the daemon's
// single command lock, which serializes every command source.
type Cycler struct {
	backend          compositor.Backend
	reg              *registry.Registry
	minimizeInactive bool

	// index into the client order; -1 while idle (no clients).
	index int
}

// New creates a cycler over the given registry.
func New(backend compositor.Backend, reg *registry.Registry, minimizeInactive bool) *Cycler {
	return &Cycler{
		backend:          backend,
		reg:              reg,
		minimizeInactive: minimizeInactive,
	}
}

// Index returns the current position in the client order, or -1 when idle.
// The reported position is always valid for the current order, even if a
// refresh shrank it since the last transition.
func (c *Cycler) Index() int {
	n := c.reg.Len()
	if n == 0 {
		return -1
	}
	if c.index >= n {
		return n - 1
	}
	return c.index
}

// Realign clamps the index after a refresh changed the client order, keeping
// it a valid position. Call it whenever the order may have shrunk.
func (c *Cycler) Realign() {
	n := c.reg.Len()
	if n == 0 {
		c.index = 0
		return
	}
	if c.index >= n {
		c.index = n - 1
	}
}

// Sync realigns the index with the window that currently holds focus.
func (c *Cycler) Sync(ctx context.Context) {
	c.syncWithActive(ctx)
}

// Forward advances to the next window in the client order.
func (c *Cycler) Forward(ctx context.Context) error {
	return c.step(ctx, 1)
}

// Backward retreats to the previous window in the client order.
func (c *Cycler) Backward(ctx context.Context) error {
	return c.step(ctx, -1)
}

func (c *Cycler) step(ctx context.Context, delta int) error {
	n := c.reg.Len()
	if n == 0 {
		logger.With("cycler").Debug("no clients, nothing to cycle")
		return nil
	}

	c.Realign()
	c.syncWithActive(ctx)

	next := ((c.index+delta)%n + n) % n
	return c.transition(ctx, next)
}

// JumpTo switches directly to the 1-based target position.
func (c *Cycler) JumpTo(ctx context.Context, target int) error {
	n := c.reg.Len()
	if target < 1 || target > n {
		return fmt.Errorf("%w: %d (have %d clients)", ErrNoSuchTarget, target, n)
	}

	c.Realign()
	c.syncWithActive(ctx)
	return c.transition(ctx, target-1)
}

// transition commits the new index and performs the focus change. Activation
// happens before any minimize so that the target window holds focus before
// anything is hidden; a focus gap would drop keystrokes meant for the game.
func (c *Cycler) transition(ctx context.Context, next int) error {
	prev := c.index
	c.index = next

	win, ok := c.reg.At(next)
	if !ok {
		return fmt.Errorf("client order changed under transition to %d", next)
	}

	if err := c.backend.Activate(ctx, win.ID); err != nil {
		return fmt.Errorf("activating %q: %w", win.Name, err)
	}
	logger.With("cycler").Debugf("activated %q (position %d)", win.Name, next+1)

	if c.minimizeInactive && prev != next {
		if prevWin, ok := c.reg.At(prev); ok {
			if err := c.backend.Minimize(ctx, prevWin.ID); err != nil {
				logger.With("cycler").Warnf("minimizing %q: %v", prevWin.Name, err)
			}
		}
	}

	return nil
}

// syncWithActive realigns the index with the window that actually holds
// focus, so cycling follows manual focus changes made outside the daemon.
// Best effort: on failure the cached index stands.
func (c *Cycler) syncWithActive(ctx context.Context) {
	active, err := c.backend.ActiveWindow(ctx)
	if err != nil || active == "" {
		return
	}
	if i := c.reg.IndexOf(active); i >= 0 {
		c.index = i
	}
}
