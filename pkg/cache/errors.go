package cache

import (
	"errors"
)

// ErrCacheMiss is returned by helpers that require a hit.
var ErrCacheMiss = errors.New("cache miss")

// Require turns a (data, hit, err) triple from [Cache.Get] into a plain
// result, reporting a miss as ErrCacheMiss.
func Require(data []byte, hit bool, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, ErrCacheMiss
	}
	return data, nil
}
