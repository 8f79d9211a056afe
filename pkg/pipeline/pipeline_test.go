package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/errors"
	famio "github.com/matzehuels/familytree/pkg/io"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/layout"
	"github.com/matzehuels/familytree/pkg/lineage"
)

const familyCSV = `gen,first_name,last_name,father,mother
1,Ali,Yilmaz
E,Fatma,Yilmaz
2,Kemal,Yilmaz,Ali,Fatma
E,Elif,Kaya
3,Emre,Yilmaz,Kemal,Elif
2,Deniz,Yilmaz,Ali,Fatma
`

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.csv")
	if err := os.WriteFile(path, []byte(familyCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Source: "family.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.DX != layout.DefaultDX || opts.DY != layout.DefaultDY {
		t.Errorf("spacing = (%v, %v), want defaults", opts.DX, opts.DY)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Mode() != lineage.Full {
		t.Errorf("Mode = %v, want full", opts.Mode())
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"bad lineage", Options{Source: "x.csv", Lineage: "matrilineal"}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Source: "x.csv", Formats: []string{"gif"}}, errors.ErrCodeUnsupported},
		{"bad focus", Options{Source: "x.csv", Focus: "Ali"}, errors.ErrCodeInvalidInput},
		{"bad expand", Options{Source: "x.csv", Expand: []string{"mem_1", "u_x"}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil, quietLogger())
	defer runner.Close()

	src := writeCSV(t)
	opts := Options{Source: src, Formats: []string{FormatJSON, FormatDOT}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.DataHit || first.CacheInfo.FrameHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}
	if first.Stats.MemberCount != 6 {
		t.Errorf("MemberCount = %d, want 6", first.Stats.MemberCount)
	}
	if len(first.Artifacts[FormatJSON]) == 0 || len(first.Artifacts[FormatDOT]) == 0 {
		t.Fatalf("artifacts = %v", keys(first.Artifacts))
	}
	if !strings.HasPrefix(string(first.Artifacts[FormatDOT]), "digraph") {
		t.Errorf("dot output should start with digraph")
	}

	second, err := runner.Execute(ctx, Options{Source: src, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.DataHit || !second.CacheInfo.FrameHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if second.DataHash != first.DataHash {
		t.Errorf("DataHash changed between runs")
	}
	if len(second.Frame.Nodes) != len(first.Frame.Nodes) {
		t.Errorf("cached frame nodes = %d, want %d", len(second.Frame.Nodes), len(first.Frame.Nodes))
	}
}

func TestLayoutExpand(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil, quietLogger())
	data, hash, err := runner.Load(ctx, Options{Source: writeCSV(t)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	base, _, err := runner.LayoutWithCacheInfo(ctx, data, hash, Options{Source: "x"})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if base.Node("mem_4") != nil {
		t.Error("grandchild should be hidden before expanding")
	}

	expanded, _, err := runner.LayoutWithCacheInfo(ctx, data, hash, Options{Source: "x", Expand: []string{"mem_2"}})
	if err != nil {
		t.Fatalf("Layout expand: %v", err)
	}
	if expanded.Node("mem_4") == nil {
		t.Error("mem_4 should be visible after expanding mem_2")
	}

	_, _, err = runner.LayoutWithCacheInfo(ctx, data, hash, Options{Source: "x", Expand: []string{"mem_4"}})
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("expanding a hidden member = %v, want NODE_NOT_FOUND", err)
	}
}

func TestLoadDocument(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil, quietLogger())
	data, _, err := runner.Load(ctx, Options{Source: writeCSV(t)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	doc := filepath.Join(t.TempDir(), "family.yaml")
	if err := famio.ExportData(data, doc); err != nil {
		t.Fatalf("ExportData: %v", err)
	}
	if !IsDocument(doc) || IsDocument("https://example.com/x.json") {
		t.Error("IsDocument misclassifies sources")
	}

	got, _, hit, err := runner.LoadWithCacheInfo(ctx, Options{Source: doc})
	if err != nil {
		t.Fatalf("Load document: %v", err)
	}
	if hit {
		t.Error("documents are never served from the data cache")
	}
	if len(got.Members) != len(data.Members) || got.Start != data.Start {
		t.Errorf("document round trip = %d members start %s", len(got.Members), got.Start)
	}
}

func TestRenderJSONFrame(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil, quietLogger())
	res, err := runner.Execute(ctx, Options{Source: writeCSV(t)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	f, err := graph.UnmarshalFrame(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("UnmarshalFrame: %v", err)
	}
	if f.Focus != "mem_0" {
		t.Errorf("Focus = %q, want mem_0", f.Focus)
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
