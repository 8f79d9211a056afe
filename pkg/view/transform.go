package view

import "github.com/matzehuels/familytree/pkg/observability"

// Transform is a saved camera: zoom factor K and translation (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ValidateTransform reports whether a camera transform saved together with
// the visible set saved still fits the current view. A transform is
// discarded, and the view should be recentered, when the view collapsed to
// a single node, when far fewer nodes are visible than were saved, when
// fewer than half of the saved nodes are visible again, or when nothing
// was saved at all.
func (c *Controller) ValidateTransform(saved []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	want := make(map[string]bool, len(saved))
	for _, id := range saved {
		want[id] = true
	}
	visible, matched := 0, 0
	for _, n := range c.full.Nodes() {
		if !c.full.State(n).Visible {
			continue
		}
		visible++
		if want[n.ID()] {
			matched++
		}
	}

	reason := ""
	switch {
	case visible <= 1:
		reason = "single node visible"
	case len(want) > 5 && float64(visible) < float64(len(want))*0.5:
		reason = "visible count mismatch"
	case len(want) == 0:
		reason = "nothing restored"
	case float64(matched)/float64(len(want)) < 0.5:
		reason = "visible set mismatch"
	}
	if reason == "" {
		return true
	}
	c.logger.Warn("discarding saved transform", "reason", reason, "visible", visible, "saved", len(want))
	observability.View().OnTransformDiscarded(reason, visible, len(want))
	return false
}
