package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryableError marks a transient failure: a dropped connection, a 5xx
// or a rate-limited export. After carries the server's Retry-After hint.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff retries a download. Delay doubles after each failed attempt and
// is capped at Max; a Retry-After hint replaces it when it is shorter
// than Max.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration
}

// DefaultBackoff is used for sheet downloads: 3 attempts starting at one
// second.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 10 * time.Second}

// Do runs fn until it succeeds, returns an error that is not a
// [RetryableError], or the attempts are used up.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !isRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := b.wait(delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return err
}

func (b Backoff) wait(delay time.Duration, err error) time.Duration {
	var re *RetryableError
	if errors.As(err, &re) && re.After > 0 && (b.Max <= 0 || re.After <= b.Max) {
		return re.After
	}
	if b.Max > 0 && delay > b.Max {
		return b.Max
	}
	return delay
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// retryAfter parses a Retry-After header given in seconds. HTTP dates are
// not used by the sheet exports and count as no hint.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
