package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestBackoffDo(t *testing.T) {
	ctx := context.Background()
	transient := &RetryableError{Err: errors.New("transient")}

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first", 0, nil, 3, 1, false},
		{"succeeds after retry", 2, transient, 3, 3, false},
		{"exhausts attempts", 5, transient, 3, 3, true},
		{"permanent error", 5, errors.New("permanent"), 3, 1, true},
		{"zero attempts runs once", 5, transient, 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			b := Backoff{Attempts: tt.attempts, Delay: time.Millisecond}
			err := b.Do(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := Backoff{Attempts: 3, Delay: time.Hour}
	err := b.Do(ctx, func() error {
		return &RetryableError{Err: errors.New("transient")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestBackoffWait(t *testing.T) {
	b := Backoff{Delay: time.Second, Max: 5 * time.Second}
	plain := &RetryableError{Err: errors.New("x")}

	tests := []struct {
		name  string
		delay time.Duration
		err   error
		want  time.Duration
	}{
		{"backoff delay", 2 * time.Second, plain, 2 * time.Second},
		{"capped", 8 * time.Second, plain, 5 * time.Second},
		{"server hint", time.Second, &RetryableError{Err: plain.Err, After: 3 * time.Second}, 3 * time.Second},
		{"hint above max ignored", time.Second, &RetryableError{Err: plain.Err, After: time.Minute}, time.Second},
	}
	for _, tt := range tests {
		if got := b.wait(tt.delay, tt.err); got != tt.want {
			t.Errorf("%s: wait = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.header != "" {
			h.Set("Retry-After", tt.header)
		}
		if got := retryAfter(h); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
