// Package pipeline runs the load → build → view → render pipeline behind
// the CLI and the HTTP server.
//
// # Architecture
//
//  1. Load: read the CSV export (URL or file) or a saved family document
//     and build [family.Data]. The result is cached under a hash of the
//     source bytes.
//  2. Layout: create a [view.Controller], apply the lineage filter, restore
//     an encoded view state or expand the requested members, and produce a
//     [graph.Frame]. Frames are cached by data hash and view options.
//  3. Render: turn the frame into JSON, DOT, SVG, PNG or PDF.
//
// Each stage can be run on its own.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "family.csv",
//	    Expand:  []string{"mem_2"},
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/layout"
	"github.com/matzehuels/familytree/pkg/lineage"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// TTLs for cached pipeline artifacts.
const (
	TTLData  = 24 * time.Hour
	TTLFrame = 24 * time.Hour
)

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Source  string `json:"source"`
	Refresh bool   `json:"refresh,omitempty"`

	// View options
	Lineage string   `json:"lineage,omitempty"` // "full" or "patrilineal"
	Focus   string   `json:"focus,omitempty"`
	Expand  []string `json:"expand,omitempty"` // clicked in order
	State   string   `json:"state,omitempty"`  // encoded view state; wins over Focus
	DX      float64  `json:"dx,omitempty"`
	DY      float64  `json:"dy,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"` // PNG only

	Logger *log.Logger `json:"-"`

	mode      lineage.Mode
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Data      *family.Data
	DataHash  string
	Frame     graph.Frame
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	MemberCount int
	LinkCount   int
	NodeCount   int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	DataHit  bool
	FrameHit bool
}

// ValidateAndSetDefaults checks the options and fills in spacing, format
// and lineage defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source is required")
	}
	mode, err := lineage.ParseMode(o.Lineage)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "lineage")
	}
	o.mode = mode
	if o.DX <= 0 {
		o.DX = layout.DefaultDX
	}
	if o.DY <= 0 {
		o.DY = layout.DefaultDY
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.State != "" {
		if err := errors.ValidateStateString(o.State); err != nil {
			return err
		}
	}
	for _, id := range append(slices.Clone(o.Expand), o.Focus) {
		if id == "" {
			continue
		}
		if err := errors.ValidateMemberID(id); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// Mode returns the parsed lineage mode. Valid after ValidateAndSetDefaults.
func (o *Options) Mode() lineage.Mode { return o.mode }

// FrameKeyOpts returns the cache key inputs of the frame stage.
func (o *Options) FrameKeyOpts() cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		Focus:       o.Focus,
		Expanded:    o.Expand,
		Patrilineal: o.mode == lineage.Patrilineal,
		State:       o.State,
		DX:          o.DX,
		DY:          o.DY,
	}
}

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	return nil
}

// ValidateFormats checks every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return fmt.Errorf("formats: %w", err)
		}
	}
	return nil
}
