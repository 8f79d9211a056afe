package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/familytree/pkg/errors"
)

// MemoryArchive keeps snapshots in memory.
type MemoryArchive struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewMemoryArchive creates an empty archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{snapshots: make(map[string]*Snapshot)}
}

// Save stores a copy of s.
func (a *MemoryArchive) Save(ctx context.Context, s *Snapshot) error {
	prepare(s)
	cp := *s
	if s.Data != nil {
		cp.Data = s.Data.Clone()
	}
	a.mu.Lock()
	a.snapshots[s.ID] = &cp
	a.mu.Unlock()
	return nil
}

// Get returns a copy of the snapshot with id.
func (a *MemoryArchive) Get(ctx context.Context, id string) (*Snapshot, error) {
	a.mu.RLock()
	s, ok := a.snapshots[id]
	a.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "snapshot %s", id)
	}
	cp := *s
	if s.Data != nil {
		cp.Data = s.Data.Clone()
	}
	return &cp, nil
}

// List returns summaries newest first.
func (a *MemoryArchive) List(ctx context.Context, limit int) ([]Summary, error) {
	a.mu.RLock()
	out := make([]Summary, 0, len(a.snapshots))
	for _, s := range a.snapshots {
		out = append(out, s.Summarize())
	}
	a.mu.RUnlock()

	slices.SortFunc(out, func(x, y Summary) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close does nothing.
func (a *MemoryArchive) Close(context.Context) error { return nil }

var _ Archive = (*MemoryArchive)(nil)
