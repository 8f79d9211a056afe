package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

// Snapshot is one archived view of a family.
type Snapshot struct {
	ID        string       `json:"id" bson:"_id"`
	Source    string       `json:"source,omitempty" bson:"source,omitempty"`
	DataHash  string       `json:"data_hash,omitempty" bson:"data_hash,omitempty"`
	State     string       `json:"state,omitempty" bson:"state,omitempty"`
	Data      *family.Data `json:"data" bson:"data"`
	Frame     graph.Frame  `json:"frame" bson:"frame"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
}

// Summary is the listing form of a snapshot, without data or frame.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Source    string    `json:"source,omitempty" bson:"source,omitempty"`
	Members   int       `json:"members" bson:"members"`
	Focus     string    `json:"focus" bson:"focus"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Summarize returns the listing form of s.
func (s *Snapshot) Summarize() Summary {
	sum := Summary{
		ID:        s.ID,
		Source:    s.Source,
		Focus:     s.Frame.Focus,
		CreatedAt: s.CreatedAt,
	}
	if s.Data != nil {
		sum.Members = len(s.Data.Members)
	}
	return sum
}

// Archive stores snapshots.
type Archive interface {
	// Save assigns an id and creation time when missing and stores s.
	Save(ctx context.Context, s *Snapshot) error

	// Get returns the snapshot with id or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns up to limit summaries, newest first. A limit <= 0
	// returns all of them.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

func prepare(s *Snapshot) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
}
