package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/lineage"
	"github.com/matzehuels/familytree/pkg/pipeline"
)

// viewFlags are the flags shared by every command that builds a view.
type viewFlags struct {
	focus       string
	expand      []string
	state       string
	patrilineal bool
	dx, dy      float64
	noCache     bool
	refresh     bool
}

func addViewFlags(cmd *cobra.Command, f *viewFlags) {
	cmd.Flags().StringVar(&f.focus, "focus", "", "member to reveal and center on (e.g. mem_12)")
	cmd.Flags().StringSliceVarP(&f.expand, "expand", "e", nil, "members to click, in order (comma-separated or repeated)")
	cmd.Flags().StringVar(&f.state, "state", "", "encoded view state to restore (overrides --focus)")
	cmd.Flags().BoolVarP(&f.patrilineal, "patrilineal", "p", false, "show only the male line and its direct branches")
	cmd.Flags().Float64Var(&f.dx, "dx", 0, "horizontal node spacing (default from config)")
	cmd.Flags().Float64Var(&f.dy, "dy", 0, "vertical generation spacing (default from config)")
	addSourceFlags(cmd, &f.noCache, &f.refresh)
}

func addSourceFlags(cmd *cobra.Command, noCache, refresh *bool) {
	cmd.Flags().BoolVar(noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(refresh, "refresh", false, "download the sheet again even if cached")
}

// options merges the flags over the configuration: flags win, then the
// config file, then the built-in defaults.
func (c *CLI) options(source string, f viewFlags) pipeline.Options {
	opts := pipeline.Options{
		Source:  source,
		Refresh: f.refresh,
		Focus:   f.focus,
		Expand:  f.expand,
		State:   f.state,
		DX:      c.Config.Layout.DX,
		DY:      c.Config.Layout.DY,
		Lineage: c.Config.Layout.Lineage,
		Logger:  c.Logger,
	}
	if f.dx > 0 {
		opts.DX = f.dx
	}
	if f.dy > 0 {
		opts.DY = f.dy
	}
	if f.patrilineal {
		opts.Lineage = lineage.Patrilineal.String()
	}
	return opts
}
