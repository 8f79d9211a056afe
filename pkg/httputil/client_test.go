package httputil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/errors"
)

func TestClientGetBytesCaches(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, "gen,name\n1,Ahmet\n")
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, time.Hour, nil).WithHTTPClient(server.Client())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		data, err := client.GetBytes(ctx, server.URL, false)
		if err != nil {
			t.Fatalf("GetBytes() error: %v", err)
		}
		if string(data) != "gen,name\n1,Ahmet\n" {
			t.Errorf("GetBytes() = %q", data)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}

	if _, err := client.GetBytes(ctx, server.URL, true); err != nil {
		t.Fatalf("GetBytes(refresh) error: %v", err)
	}
	if hits != 2 {
		t.Errorf("server hits after refresh = %d, want 2", hits)
	}
}

func TestClientGetBytesNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(nil, 0, nil).WithHTTPClient(server.Client())
	_, err := client.GetBytes(context.Background(), server.URL, false)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("GetBytes() error = %v, want NOT_FOUND", err)
	}
}

func TestClientPostText(t *testing.T) {
	var contentType, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		io.WriteString(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	client := NewClient(nil, 0, map[string]string{"X-Test": "1"}).WithHTTPClient(server.Client())

	var resp struct {
		Status string `json:"status"`
	}
	payload := map[string]any{"action": "deleteRow", "row": 5}
	if err := client.PostText(context.Background(), server.URL, payload, &resp); err != nil {
		t.Fatalf("PostText() error: %v", err)
	}
	if contentType != TextContentType {
		t.Errorf("Content-Type = %q, want %q", contentType, TextContentType)
	}
	if body != `{"action":"deleteRow","row":5}` {
		t.Errorf("body = %q", body)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestClientPostTextServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(nil, 0, nil).WithHTTPClient(server.Client())
	err := client.PostText(context.Background(), server.URL+"?token=secret", map[string]int{"row": 2}, nil)
	if !errors.Is(err, errors.ErrCodeUploadFailed) {
		t.Fatalf("PostText() error = %v, want UPLOAD_FAILED", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   bool
		retryable bool
	}{
		{200, false, false},
		{204, false, false},
		{404, true, false},
		{429, true, true},
		{503, true, true},
		{403, true, false},
	}
	for _, tt := range tests {
		err := checkStatus(tt.code)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkStatus(%d) = %v, wantErr %v", tt.code, err, tt.wantErr)
		}
		if got := isRetryable(err); err != nil && got != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}

func TestRedact(t *testing.T) {
	got := redact("https://script.google.com/macros/s/abc/exec?key=secret")
	if got != "https://script.google.com/macros/s/abc/exec" {
		t.Errorf("redact() = %q", got)
	}
}
