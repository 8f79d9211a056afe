package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := New(time.Hour)
			sess.State = "eyJuIjoiYWxpX3lsbV8wMCJ9"
			sess.Mode = "patrilineal"

			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := store.Get(ctx, sess.ID)
			if err != nil || got == nil {
				t.Fatalf("Get = (%v, %v), want session", got, err)
			}
			if got.State != sess.State || got.Mode != sess.Mode {
				t.Errorf("Get = %+v, want state and mode of %+v", got, sess)
			}

			if err := store.Delete(ctx, sess.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if got, _ := store.Get(ctx, sess.ID); got != nil {
				t.Error("session should be gone after Delete")
			}
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := New(-time.Minute)
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got, err := store.Get(ctx, sess.ID); got != nil || err != nil {
				t.Errorf("Get expired = (%v, %v), want (nil, nil)", got, err)
			}
		})
	}
}

func TestStoreRejectsBadID(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Set(context.Background(), &Session{ID: "../../etc/passwd", ExpiresAt: time.Now().Add(time.Hour)})
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("Set error = %v, want ErrInvalidID", err)
			}
		})
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	fs, _ := NewFileStore(t.TempDir())

	live, dead := New(time.Hour), New(time.Hour)
	_ = fs.Set(ctx, live)
	dead.ExpiresAt = time.Now().Add(-time.Second)
	_ = fs.Set(ctx, dead)

	if err := fs.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fs.Path(), dead.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired session file should be removed")
	}
	if got, _ := fs.Get(ctx, live.ID); got == nil {
		t.Error("live session should survive Cleanup")
	}
}

func TestTouch(t *testing.T) {
	sess := New(time.Minute)
	sess.Touch(2 * time.Hour)
	if d := sess.TTL(); d < time.Hour {
		t.Errorf("TTL = %v, want > 1h", d)
	}
	if sess.IsExpired() {
		t.Error("touched session should not be expired")
	}
}
