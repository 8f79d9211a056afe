package state

import (
	"context"
	"encoding/base64"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/view"
)

func testData() *family.Data {
	d := family.NewData()
	add := func(i int, first, last, birth string, spouse bool) {
		id := family.MemberID(i)
		d.Members[id] = &family.Member{
			ID: id, FirstName: first, LastName: last, BirthDate: birth,
			IsSpouse: spouse, RowIndex: i, Name: family.FullName(first, last),
		}
	}
	add(0, "Ahmet", "Yılmaz", "12.03.1920", false)
	add(1, "Ayşe", "Yılmaz", "1925", true)
	add(2, "Ali", "", "", false)
	add(3, "Ali", "", "?", false)
	add(4, "", "Kaya", "", true)
	d.Start = "mem_0"
	return d
}

func TestPersistentID(t *testing.T) {
	tests := []struct {
		first, last, birth string
		want               string
	}{
		{"Ahmet", "Yılmaz", "12.03.1920", "ahm_ylm_20"},
		{"Al", "Öz", "", "al_z_00"},
		{"", "", "ca. 1901-1950", "unk_unk_01"},
		{"Mary-Ann", "O'Neil", "5/6/78", "mar_one_00"},
	}
	for _, tt := range tests {
		m := &family.Member{FirstName: tt.first, LastName: tt.last, BirthDate: tt.birth}
		if got := PersistentID(m); got != tt.want {
			t.Errorf("PersistentID(%q, %q, %q) = %q, want %q", tt.first, tt.last, tt.birth, got, tt.want)
		}
	}
}

func TestBuildIDMap(t *testing.T) {
	data := testData()
	ids := BuildIDMap(data)

	tests := []struct {
		member, want string
	}{
		{"mem_0", "ahm_ylm_20"},
		{"mem_1", "aye_ylm_25"},
		{"mem_2", "ali_unk_00"},
		{"mem_3", "ali_unk_00_1"},
	}
	for _, tt := range tests {
		got, ok := ids.Persistent(tt.member)
		if !ok || got != tt.want {
			t.Errorf("Persistent(%s) = (%q, %v), want %q", tt.member, got, ok, tt.want)
		}
		if back, _ := ids.Member(tt.want); back != tt.member {
			t.Errorf("Member(%s) = %q, want %q", tt.want, back, tt.member)
		}
		if data.Members[tt.member].PersistentID != tt.want {
			t.Errorf("%s.PersistentID = %q", tt.member, data.Members[tt.member].PersistentID)
		}
	}
	if _, ok := ids.Persistent("mem_4"); ok {
		t.Error("unnamed spouse should not get a persistent id")
	}
	if ids.Len() != 4 {
		t.Errorf("Len = %d, want 4", ids.Len())
	}
}

func TestEncodeDecode(t *testing.T) {
	ids := BuildIDMap(testData())
	in := State{
		Focus:       "mem_2",
		Transform:   &view.Transform{K: 1.5, X: 10.4, Y: -20.6},
		Patrilineal: true,
		Visible:     []string{"mem_0", "u_mem_0_mem_1", "mem_1", "mem_2", "mem_4"},
	}
	encoded, err := Encode(in, ids)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.ContainsAny(encoded, "+/=") {
		t.Errorf("encoded state %q is not unpadded base64url", encoded)
	}

	out, err := Decode(encoded, ids)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Focus != "mem_2" || !out.Patrilineal {
		t.Errorf("Decode = %+v", out)
	}
	if want := []string{"mem_0", "mem_1", "mem_2"}; !slices.Equal(out.Visible, want) {
		t.Errorf("Visible = %v, want %v", out.Visible, want)
	}
	if out.Transform == nil || *out.Transform != (view.Transform{K: 1.5, X: 10, Y: -21}) {
		t.Errorf("Transform = %+v", out.Transform)
	}
}

func TestDecodeWireFormat(t *testing.T) {
	ids := BuildIDMap(testData())
	raw := `{"n":"ali_unk_00_1","t":null,"p":0,"v":["ahm_ylm_20","gone_00","ali_unk_00_1"]}`
	encoded := "#" + base64.RawURLEncoding.EncodeToString([]byte(raw))

	s, err := Decode(encoded, ids)
	if err != nil {
		t.Fatal(err)
	}
	if s.Focus != "mem_3" || s.Transform != nil || s.Patrilineal {
		t.Errorf("Decode = %+v", s)
	}
	if want := []string{"mem_0", "mem_3"}; !slices.Equal(s.Visible, want) {
		t.Errorf("Visible = %v, want %v", s.Visible, want)
	}
}

func TestDecodeInvalid(t *testing.T) {
	ids := BuildIDMap(testData())
	for _, in := range []string{"", "#", "not base64!", "abc", base64.RawURLEncoding.EncodeToString([]byte("[1,2]"))} {
		if _, err := Decode(in, ids); !errors.Is(err, errors.ErrCodeInvalidState) {
			t.Errorf("Decode(%q) err = %v, want INVALID_STATE", in, err)
		}
	}
}

func TestEncodeUnknownFocus(t *testing.T) {
	ids := BuildIDMap(testData())
	encoded, err := Encode(State{Focus: "u_mem_0_mem_1"}, ids)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := base64.RawURLEncoding.DecodeString(encoded)
	if want := `{"n":null,"t":null,"p":0,"v":[]}`; string(raw) != want {
		t.Errorf("wire = %s, want %s", raw, want)
	}
}

func TestShareStore(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewShareStore(c, nil, 0)

	id, err := s.Save(ctx, "eyJuIjpudWxsfQ")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, id)
	if err != nil || got != "eyJuIjpudWxsfQ" {
		t.Errorf("Load = (%q, %v)", got, err)
	}

	if _, err := s.Load(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing share err = %v, want NOT_FOUND", err)
	}
	if _, err := s.Load(ctx, "../etc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad id err = %v, want INVALID_INPUT", err)
	}
	if _, err := s.Save(ctx, "not a state"); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("bad state err = %v, want INVALID_STATE", err)
	}
}
