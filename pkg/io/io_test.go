package io

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
)

func sample() *family.Data {
	d := family.NewData()
	d.Members["mem_0"] = &family.Member{ID: "mem_0", Name: "Ali Yılmaz", FirstName: "Ali", LastName: "Yılmaz", Gen: 1, Gender: family.Male}
	d.Members["mem_1"] = &family.Member{ID: "mem_1", Name: "Fatma", FirstName: "Fatma", Gen: 1, IsSpouse: true, RowIndex: 1, Gender: family.Female}
	d.Members["mem_2"] = &family.Member{ID: "mem_2", Name: "Kemal", FirstName: "Kemal", Gen: 2, RowIndex: 2, Gender: family.Male}
	u := family.UnionID("mem_0", "mem_1")
	d.Links = []family.Link{{"mem_0", u}, {"mem_1", u}, {u, "mem_2"}}
	d.Start = "mem_0"
	return d
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteData(sample(), &buf, f); err != nil {
				t.Fatalf("WriteData: %v", err)
			}
			got, err := ReadData(&buf, f)
			if err != nil {
				t.Fatalf("ReadData: %v", err)
			}
			want := sample()
			if got.Start != want.Start {
				t.Errorf("Start = %q, want %q", got.Start, want.Start)
			}
			if !slices.Equal(got.Links, want.Links) {
				t.Errorf("Links = %v, want %v", got.Links, want.Links)
			}
			m := got.Member("mem_1")
			if m == nil || m.Name != "Fatma" || !m.IsSpouse || m.Gender != family.Female || m.RowIndex != 1 {
				t.Errorf("mem_1 = %+v", m)
			}
		})
	}
}

func TestReadDataRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"members":`},
		{"member to member", `{"members":{"mem_0":{"id":"mem_0"},"mem_1":{"id":"mem_1"}},"links":[["mem_0","mem_1"]]}`},
		{"unknown member", `{"members":{"mem_0":{"id":"mem_0"}},"links":[["mem_0","u_mem_0_unknown"],["u_mem_0_unknown","mem_7"]]}`},
		{"mismatched key", `{"members":{"mem_0":{"id":"mem_1"}},"links":[]}`},
		{"missing start", `{"members":{"mem_0":{"id":"mem_0"}},"links":[],"start":"mem_3"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadData(strings.NewReader(tt.doc), FormatJSON)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ReadData error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"family.json", "family.yaml"} {
		path := filepath.Join(dir, name)
		if err := ExportData(sample(), path); err != nil {
			t.Fatalf("ExportData(%s): %v", name, err)
		}
		d, err := ImportData(path)
		if err != nil {
			t.Fatalf("ImportData(%s): %v", name, err)
		}
		if len(d.Members) != 3 || len(d.Links) != 3 {
			t.Errorf("%s: members, links = %d, %d, want 3, 3", name, len(d.Members), len(d.Links))
		}
	}

	if _, err := ImportData(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportData(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"toml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
	if FormatFromPath("a/b.YML") != FormatYAML || FormatFromPath("x.json") != FormatJSON {
		t.Error("FormatFromPath picked the wrong format")
	}
}
