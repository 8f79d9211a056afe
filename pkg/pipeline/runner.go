package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/httputil"
	"github.com/matzehuels/familytree/pkg/sheet"
)

// TTLSheet is how long downloaded sheet exports stay cached.
const TTLSheet = time.Hour

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache, loader and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Loader *sheet.Loader
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer gets a DefaultKeyer, a nil cache
// disables caching and a nil loader downloads through c.
func NewRunner(c cache.Cache, keyer cache.Keyer, loader *sheet.Loader, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if loader == nil {
		loader = sheet.NewLoader(httputil.NewClient(c, TTLSheet, nil), logger)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Loader: loader,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	result := &Result{}

	loadStart := time.Now()
	data, hash, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Data, result.DataHash = data, hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.MemberCount = len(data.Members)
	result.Stats.LinkCount = len(data.Links)
	result.CacheInfo.DataHit = hit

	r.Logger.Info("loaded family",
		"members", len(data.Members),
		"links", len(data.Links),
		"cached", hit,
		"duration", result.Stats.LoadTime)

	layoutStart := time.Now()
	frame, hit, err := r.LayoutWithCacheInfo(ctx, data, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Frame = frame
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(frame.Nodes)
	result.CacheInfo.FrameHit = hit

	r.Logger.Info("computed layout",
		"nodes", len(frame.Nodes),
		"crossings", frame.Crossings,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, err := Render(ctx, frame, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
