package state

import (
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/lineage"
	"github.com/matzehuels/familytree/pkg/view"
)

// Capture records what c currently shows.
func Capture(c *view.Controller, t *view.Transform) State {
	return State{
		Focus:       c.Focus(),
		Transform:   t,
		Patrilineal: c.Mode() == lineage.Patrilineal,
		Visible:     c.VisibleIDs(),
	}
}

// Restore applies s to c: the lineage mode first, then the visible set
// over data, then the focus. A saved transform is returned only while it
// still fits the restored view; otherwise it is dropped and the returned
// frame recenters on the focus. Without a saved transform the frame
// recenters whenever a focus was restored.
func Restore(c *view.Controller, data *family.Data, s State) (graph.Frame, *view.Transform, error) {
	mode := lineage.Full
	if s.Patrilineal {
		mode = lineage.Patrilineal
	}
	if c.Mode() != mode {
		if _, err := c.SetLineage(mode); err != nil {
			return graph.Frame{}, nil, err
		}
	}
	frame, err := c.UpdateData(data, s.Visible)
	if err != nil {
		return graph.Frame{}, nil, err
	}

	focus := ""
	if s.Focus != "" && c.Data().Member(s.Focus) != nil {
		focus = s.Focus
	}
	if s.Transform != nil {
		if c.ValidateTransform(s.Visible) {
			if focus == "" {
				return frame, s.Transform, nil
			}
			frame, err = c.Draw(false, focus)
			return frame, s.Transform, err
		}
		if focus == "" {
			focus = c.Focus()
		}
	}
	if focus == "" {
		return frame, nil, nil
	}
	frame, err = c.Draw(true, focus)
	return frame, nil, err
}
