package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/familytree/pkg/cache"
	famio "github.com/matzehuels/familytree/pkg/io"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/sheet"
)

// IsDocument reports whether source is a saved family document (JSON or
// YAML as written by `familytree parse`) rather than a CSV export.
func IsDocument(source string) bool {
	if sheet.IsURL(source) {
		return false
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadWithCacheInfo reads opts.Source and returns its family data, the hash
// of the source bytes and whether the parsed data came from the cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*family.Data, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	raw, err := r.Loader.Fetch(ctx, opts.Source, opts.Refresh)
	if err != nil {
		return nil, "", false, err
	}
	hash := cache.Hash(raw)

	if IsDocument(opts.Source) {
		data, err := famio.ReadData(bytes.NewReader(raw), famio.FormatFromPath(opts.Source))
		return data, hash, false, err
	}

	key := r.Keyer.DataKey(hash)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if data, err := famio.ReadData(bytes.NewReader(cached), famio.FormatJSON); err == nil {
				return data, hash, true, nil
			}
			r.Logger.Debug("discarding unreadable cached data", "key", key)
		}
	}

	data, err := r.Loader.Parse(ctx, raw)
	if err != nil {
		return nil, "", false, err
	}

	var buf bytes.Buffer
	if err := famio.WriteData(data, &buf, famio.FormatJSON); err == nil {
		_ = r.Cache.Set(ctx, key, buf.Bytes(), TTLData)
	}
	return data, hash, false, nil
}

// Load is LoadWithCacheInfo without the cache hit flag.
func (r *Runner) Load(ctx context.Context, opts Options) (*family.Data, string, error) {
	data, hash, _, err := r.LoadWithCacheInfo(ctx, opts)
	return data, hash, err
}
