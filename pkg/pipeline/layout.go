package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/layout"
	"github.com/matzehuels/familytree/pkg/lineage"
	"github.com/matzehuels/familytree/pkg/observability"
	"github.com/matzehuels/familytree/pkg/state"
	"github.com/matzehuels/familytree/pkg/view"
)

// NewController creates a view controller for data with the spacing,
// lineage and logger of opts. Nothing is drawn yet.
func NewController(data *family.Data, opts Options) (*view.Controller, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	c, err := view.New(data, view.Options{
		Layout: layout.Options{DX: opts.DX, DY: opts.DY},
		Logger: opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	if opts.Mode() != lineage.Full {
		if _, err := c.SetLineage(opts.Mode()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Layout builds the view described by opts and returns the controller and
// its frame. An encoded state wins over Focus; Expand is applied last.
func Layout(ctx context.Context, data *family.Data, opts Options) (*view.Controller, graph.Frame, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, graph.Frame{}, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(data.Members))
	start := time.Now()

	c, frame, err := buildView(data, opts)
	hooks.OnLayoutComplete(ctx, len(frame.Nodes), time.Since(start), err)
	if err != nil {
		return nil, graph.Frame{}, err
	}
	return c, frame, nil
}

func buildView(data *family.Data, opts Options) (*view.Controller, graph.Frame, error) {
	c, err := NewController(data, opts)
	if err != nil {
		return nil, graph.Frame{}, err
	}

	var frame graph.Frame
	switch {
	case opts.State != "":
		s, err := state.Decode(opts.State, state.BuildIDMap(data))
		if err != nil {
			return nil, graph.Frame{}, err
		}
		s.Patrilineal = s.Patrilineal || opts.Mode() == lineage.Patrilineal
		frame, _, err = state.Restore(c, data, s)
		if err != nil {
			return nil, graph.Frame{}, err
		}
	case opts.Focus != "" && opts.Focus != data.Start:
		frame, err = c.ConnectToNode(opts.Focus)
		if err != nil {
			return nil, graph.Frame{}, errors.Wrap(errors.ErrCodeNodeNotFound, err, "focus %s", opts.Focus)
		}
	default:
		frame, err = c.Draw(true, data.Start)
		if err != nil {
			return nil, graph.Frame{}, err
		}
	}

	for _, id := range opts.Expand {
		frame, err = c.Expand(id)
		if err != nil {
			return nil, graph.Frame{}, errors.Wrap(errors.ErrCodeNodeNotFound, err, "expand %s", id)
		}
	}
	return c, frame, nil
}

// LayoutWithCacheInfo returns the frame for data, served from the cache
// when the same data hash and view options were laid out before.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, data *family.Data, dataHash string, opts Options) (graph.Frame, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Frame{}, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.FrameKey(dataHash, opts.FrameKeyOpts())
	if dataHash != "" && !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if frame, err := graph.UnmarshalFrame(cached); err == nil {
				return frame, true, nil
			}
		}
	}

	_, frame, err := Layout(ctx, data, opts)
	if err != nil {
		return graph.Frame{}, false, err
	}
	if dataHash != "" {
		if raw, err := graph.MarshalFrame(frame); err == nil {
			_ = r.Cache.Set(ctx, key, raw, TTLFrame)
		}
	}
	return frame, false, nil
}
