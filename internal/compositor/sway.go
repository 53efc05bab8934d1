package compositor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Sway controls windows through swaymsg. Window identifiers are sway
// container IDs in decimal form.
type Sway struct{}

// NewSway returns the Sway backend.
func NewSway() *Sway {
	return &Sway{}
}

func (s *Sway) Name() string { return "sway" }

// swayNode is the subset of sway's layout tree this backend needs.
type swayNode struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Focused bool   `json:"focused"`
	Rect    struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"rect"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (s *Sway) getTree(ctx context.Context) (*swayNode, error) {
	out, err := runTool(ctx, "swaymsg", "-t", "get_tree")
	if err != nil {
		return nil, err
	}
	var root swayNode
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &root, nil
}

func (s *Sway) ListWindows(ctx context.Context) ([]Window, error) {
	root, err := s.getTree(ctx)
	if err != nil {
		return nil, err
	}

	var windows []Window
	walkSwayTree(root, func(n *swayNode) {
		windows = append(windows, Window{
			ID:     strconv.FormatInt(n.ID, 10),
			Title:  n.Name,
			X:      n.Rect.X,
			Y:      n.Rect.Y,
			Width:  n.Rect.Width,
			Height: n.Rect.Height,
		})
	})
	return windows, nil
}

// walkSwayTree visits every leaf container that holds an actual window.
func walkSwayTree(n *swayNode, visit func(*swayNode)) {
	if len(n.Nodes) == 0 && len(n.FloatingNodes) == 0 &&
		(n.Type == "con" || n.Type == "floating_con") && n.Name != "" {
		visit(n)
		return
	}
	for i := range n.Nodes {
		walkSwayTree(&n.Nodes[i], visit)
	}
	for i := range n.FloatingNodes {
		walkSwayTree(&n.FloatingNodes[i], visit)
	}
}

func (s *Sway) ActiveWindow(ctx context.Context) (string, error) {
	root, err := s.getTree(ctx)
	if err != nil {
		return "", err
	}

	var active string
	walkSwayTree(root, func(n *swayNode) {
		if n.Focused {
			active = strconv.FormatInt(n.ID, 10)
		}
	})
	return active, nil
}

func (s *Sway) Activate(ctx context.Context, id string) error {
	_, err := runTool(ctx, "swaymsg", criteria(id)+" focus")
	return err
}

func (s *Sway) Move(ctx context.Context, id string, x, y int) error {
	_, err := runTool(ctx, "swaymsg",
		fmt.Sprintf("%s move absolute position %d %d", criteria(id), x, y))
	return err
}

func (s *Sway) Resize(ctx context.Context, id string, w, h int) error {
	_, err := runTool(ctx, "swaymsg",
		fmt.Sprintf("%s resize set width %d px height %d px", criteria(id), w, h))
	return err
}

func (s *Sway) Minimize(ctx context.Context, id string) error {
	// Sway has no minimized state; the scratchpad is the conventional stand-in.
	_, err := runTool(ctx, "swaymsg", criteria(id)+" move scratchpad")
	return err
}

func criteria(id string) string {
	return fmt.Sprintf("[con_id=%s]", id)
}
