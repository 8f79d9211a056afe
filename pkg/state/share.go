package state

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/errors"
)

// DefaultShareTTL is how long a share id stays resolvable.
const DefaultShareTTL = 30 * 24 * time.Hour

// ShareStore keeps encoded states under generated share ids.
type ShareStore struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewShareStore creates a store on c. A nil keyer uses the default key
// layout and a zero ttl uses [DefaultShareTTL].
func NewShareStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *ShareStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = DefaultShareTTL
	}
	return &ShareStore{cache: c, keyer: keyer, ttl: ttl}
}

// Save stores encoded and returns its share id.
func (s *ShareStore) Save(ctx context.Context, encoded string) (string, error) {
	if err := errors.ValidateStateString(encoded); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := s.cache.Set(ctx, s.keyer.ShareKey(id), []byte(encoded), s.ttl); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "store share %s", id)
	}
	return id, nil
}

// Load returns the encoded state stored under id.
func (s *ShareStore) Load(ctx context.Context, id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid share id %q", id)
	}
	data, err := cache.Require(s.cache.Get(ctx, s.keyer.ShareKey(id)))
	if err == cache.ErrCacheMiss {
		return "", errors.New(errors.ErrCodeNotFound, "share %s not found or expired", id)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "load share %s", id)
	}
	return string(data), nil
}
