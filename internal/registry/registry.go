// Package registry maintains the ordered view of EVE client windows.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/evemux/evemux/internal/compositor"
	"github.com/evemux/evemux/internal/logger"
	"golang.org/x/sync/singleflight"
)

// TitlePrefix is the window-naming convention of logged-in EVE clients.
// The character name is the title with this prefix stripped.
const TitlePrefix = "EVE - "

// launcherMarker identifies the EVE launcher, which matches the prefix but is
// not a client window.
const launcherMarker = "Launcher"

// Window is one EVE client window as last seen by a refresh.
type Window struct {
	ID       string
	Title    string
	Name     string
	X        int
	Y        int
	Width    int
	Height   int
	Active   bool
	LastSeen time.Time
}

// Registry caches the client order between refreshes. Refreshes rebuild the
// window slice wholesale; entries are never mutated in place.
type Registry struct {
	backend   compositor.Backend
	nameOrder []string

	mu      sync.RWMutex
	windows []Window

	flight singleflight.Group
}

// New creates a registry. nameOrder is the user's character ordering
// (characters.txt); nil means pure detection order.
func New(backend compositor.Backend, nameOrder []string) *Registry {
	return &Registry{
		backend:   backend,
		nameOrder: nameOrder,
	}
}

// Refresh rebuilds the client order from the compositor. Concurrent callers
// are coalesced: while a refresh is in flight, additional calls wait for its
// result instead of spawning another ListWindows subprocess.
func (r *Registry) Refresh(ctx context.Context) ([]Window, error) {
	v, err, _ := r.flight.Do("refresh", func() (interface{}, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Window), nil
}

func (r *Registry) refresh(ctx context.Context) ([]Window, error) {
	raw, err := r.backend.ListWindows(ctx)
	if err != nil {
		return nil, err
	}

	// Best effort: a failed active-window query only loses the Active flag.
	active, err := r.backend.ActiveWindow(ctx)
	if err != nil {
		logger.With("registry").Debugf("active window query failed: %v", err)
		active = ""
	}

	windows := r.build(raw, active)

	r.mu.Lock()
	r.windows = windows
	r.mu.Unlock()

	return windows, nil
}

// build filters raw windows down to EVE clients and applies the configured
// name ordering: mapped characters first at their file positions, then
// unmapped clients in detection order.
func (r *Registry) build(raw []compositor.Window, activeID string) []Window {
	now := time.Now()

	var detected []Window
	seen := make(map[string]bool)
	for _, w := range raw {
		if !strings.HasPrefix(w.Title, TitlePrefix) || strings.Contains(w.Title, launcherMarker) {
			continue
		}
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		detected = append(detected, Window{
			ID:       w.ID,
			Title:    w.Title,
			Name:     strings.TrimPrefix(w.Title, TitlePrefix),
			X:        w.X,
			Y:        w.Y,
			Width:    w.Width,
			Height:   w.Height,
			Active:   w.ID == activeID,
			LastSeen: now,
		})
	}

	if len(r.nameOrder) == 0 {
		return detected
	}

	placed := make(map[string]bool)
	ordered := make([]Window, 0, len(detected))
	for _, name := range r.nameOrder {
		for _, w := range detected {
			if w.Name == name && !placed[w.ID] {
				ordered = append(ordered, w)
				placed[w.ID] = true
				break
			}
		}
		// A mapped character that is not logged in is simply absent.
	}
	for _, w := range detected {
		if !placed[w.ID] {
			ordered = append(ordered, w)
		}
	}
	return ordered
}

// Windows returns a copy of the current client order.
func (r *Registry) Windows() []Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Window, len(r.windows))
	copy(out, r.windows)
	return out
}

// Len returns the number of known clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}

// At returns the window at position i in the client order.
func (r *Registry) At(i int) (Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.windows) {
		return Window{}, false
	}
	return r.windows[i], true
}

// IndexOf returns the position of the window with the given identifier, or -1.
func (r *Registry) IndexOf(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, w := range r.windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}
