// Package stacker computes and applies the tiled client layout.
package stacker

import (
	"context"
	"errors"
	"fmt"

	"github.com/evemux/evemux/internal/compositor"
	"github.com/evemux/evemux/internal/logger"
	"github.com/evemux/evemux/internal/registry"
)

// Placement is one window's computed position and size.
type Placement struct {
	ID     string
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Layout describes the target geometry for stacking.
type Layout struct {
	DisplayWidth  int
	DisplayHeight int
	PanelHeight   int
	WindowWidth   int
	WindowHeight  int
}

// Compute lays the windows out in a single centered row below the panel.
// Each window i sits at an x-offset of i*WindowWidth from the row start; the
// row is centered when it fits and pinned to x=0 when it overflows.
func Compute(windows []registry.Window, l Layout) []Placement {
	n := len(windows)
	if n == 0 {
		return nil
	}

	total := n * l.WindowWidth
	if total > l.DisplayWidth {
		total = l.DisplayWidth
	}
	startX := (l.DisplayWidth - total) / 2
	if startX < 0 {
		startX = 0
	}
	startY := l.PanelHeight

	placements := make([]Placement, n)
	for i, w := range windows {
		placements[i] = Placement{
			ID:     w.ID,
			Name:   w.Name,
			X:      startX + i*l.WindowWidth,
			Y:      startY,
			Width:  l.WindowWidth,
			Height: l.WindowHeight,
		}
	}
	return placements
}

// Apply moves and resizes each window to its placement. Failures are
// collected per window and do not abort the remaining placements; one
// misbehaving window must not block stacking the rest.
func Apply(ctx context.Context, backend compositor.Backend, placements []Placement) error {
	var errs []error
	for _, p := range placements {
		if err := backend.Move(ctx, p.ID, p.X, p.Y); err != nil {
			errs = append(errs, fmt.Errorf("move %q: %w", p.Name, err))
			continue
		}
		if err := backend.Resize(ctx, p.ID, p.Width, p.Height); err != nil {
			errs = append(errs, fmt.Errorf("resize %q: %w", p.Name, err))
			continue
		}
		logger.With("stacker").Debugf("placed %q at %d,%d (%dx%d)", p.Name, p.X, p.Y, p.Width, p.Height)
	}
	return errors.Join(errs...)
}
