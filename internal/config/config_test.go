package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/layout"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[sheet]
url = "family.csv"
upload_url = "https://script.example.com/exec"

[layout]
dx = 100

[cache]
ttl = "90m"

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sheet.URL != "family.csv" {
		t.Errorf("Sheet.URL = %q", cfg.Sheet.URL)
	}
	if cfg.Layout.DX != 100 {
		t.Errorf("Layout.DX = %v, want 100", cfg.Layout.DX)
	}
	if cfg.Layout.DY != layout.DefaultDY {
		t.Errorf("Layout.DY = %v, want default %v", cfg.Layout.DY, layout.DefaultDY)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("Cache.TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.SessionTTL.Duration != 24*time.Hour {
		t.Errorf("Server.SessionTTL = %v, want default", cfg.Server.SessionTTL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[layout\n", errors.ErrCodeInvalidFormat},
		{"unknown key", "[layout]\nwidth = 3\n", errors.ErrCodeInvalidFormat},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidFormat},
		{"negative spacing", "[layout]\ndx = -1\n", errors.ErrCodeInvalidInput},
		{"bad upload url", "[sheet]\nupload_url = \"ftp://x\"\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Load() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load default path: %v", err)
	}
	if cfg.Layout.DX != layout.DefaultDX {
		t.Errorf("DX = %v, want default", cfg.Layout.DX)
	}

	_, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load explicit missing = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Sheet.URL = "https://example.com/export.csv"
	cfg.Server.ShareTTL = Duration{time.Hour}

	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Sheet.URL != cfg.Sheet.URL || got.Server.ShareTTL != cfg.Server.ShareTTL {
		t.Errorf("round trip = %+v", got)
	}
}
