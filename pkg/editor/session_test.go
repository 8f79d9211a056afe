package editor

import (
	"context"
	stderrors "errors"
	"maps"
	"path/filepath"
	"testing"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/sheet"
)

type fakeUploader struct {
	sent []Payload
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, p Payload) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

func row(gen, first, father, mother string, gender family.Gender) []string {
	r := make([]string, sheet.ColGender+1)
	r[sheet.ColGen] = gen
	r[sheet.ColFirstName] = first
	r[sheet.ColFather] = father
	r[sheet.ColMother] = mother
	r[sheet.ColGender] = string(gender)
	return r
}

func testData(t *testing.T) *family.Data {
	t.Helper()
	data, err := sheet.Build(context.Background(), [][]string{
		row("1", "Ali", "", "", family.Male),               // mem_0
		row("E", "Fatma", "", "", family.Female),           // mem_1
		row("2", "Kemal", "Ali", "Fatma", family.Male),     // mem_2
		row("E", "Elif", "", "", family.Female),            // mem_3
		row("3", "Emre", "Kemal", "Elif", family.Male),     // mem_4
		row("3", "Zeynep", "Kemal", "Elif", family.Female), // mem_5
		row("2", "Ayse", "Ali", "Fatma", family.Female),    // mem_6
		row("E", "Veli", "", "", family.Male),              // mem_7
		row("3", "Can", "Veli", "Ayse", family.Male),       // mem_8
	}, sheet.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return data
}

func TestAddChild(t *testing.T) {
	tests := []struct {
		name    string
		clicked string
		wantRow int
		want    Updates
	}{
		{
			name:    "male member",
			clicked: "mem_2",
			wantRow: 7,
			want:    Updates{ColFirstName: "Deniz", ColGen: "3", ColFather: "Kemal"},
		},
		{
			name:    "spouse of male member",
			clicked: "mem_3",
			wantRow: 7,
			want:    Updates{ColFirstName: "Deniz", ColGen: "3", ColFather: "Kemal", ColMother: "Elif"},
		},
		{
			name:    "female member",
			clicked: "mem_6",
			wantRow: 10,
			want:    Updates{ColFirstName: "Deniz", ColGen: "3", ColMother: "Ayse"},
		},
		{
			name:    "spouse of female member",
			clicked: "mem_7",
			wantRow: 10,
			want:    Updates{ColFirstName: "Deniz", ColGen: "3", ColFather: "Veli", ColMother: "Ayse"},
		},
		{
			name:    "root",
			clicked: "mem_0",
			wantRow: 10,
			want:    Updates{ColFirstName: "Deniz", ColGen: "2", ColFather: "Ali"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			s := NewSession(testData(t), up, Options{})

			p, err := s.AddChild(context.Background(), tt.clicked, map[string]string{"first_name": "Deniz", "note": ""})
			if err != nil {
				t.Fatalf("AddChild: %v", err)
			}
			if p.Action != ActionAddChild {
				t.Errorf("Action = %q, want %q", p.Action, ActionAddChild)
			}
			if p.Row != tt.wantRow {
				t.Errorf("Row = %d, want %d", p.Row, tt.wantRow)
			}
			if !maps.Equal(p.Updates, tt.want) {
				t.Errorf("Updates = %v, want %v", p.Updates, tt.want)
			}
			if len(up.sent) != 1 {
				t.Errorf("uploads = %d, want 1", len(up.sent))
			}
		})
	}
}

func TestAddChildUnknownGender(t *testing.T) {
	data, err := sheet.Build(context.Background(), [][]string{
		row("1", "Ali", "", "", family.Male),
		row("2", "Deniz", "Ali", "", family.Unknown),
	}, sheet.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := NewSession(data, &fakeUploader{}, Options{})

	p, err := s.AddChild(context.Background(), "mem_1", map[string]string{"first_name": "Mert"})
	if err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	want := Updates{ColFirstName: "Mert", ColGen: "3", ColMother: "Deniz"}
	if !maps.Equal(p.Updates, want) {
		t.Errorf("Updates = %v, want %v", p.Updates, want)
	}
	if p.Row != 3 {
		t.Errorf("Row = %d, want 3", p.Row)
	}
}

func TestAddSpouse(t *testing.T) {
	up := &fakeUploader{}
	s := NewSession(testData(t), up, Options{})

	p, err := s.AddSpouse(context.Background(), "mem_0", map[string]string{"first_name": "Hatice"})
	if err != nil {
		t.Fatalf("AddSpouse: %v", err)
	}
	want := Updates{
		ColFirstName: "Hatice",
		ColGen:       "E",
		ColFather:    "",
		ColMother:    "",
		ColNote:      "is_spouse:true",
	}
	if p.Action != ActionAddSpouse || p.Row != 3 {
		t.Errorf("payload = %s row %d, want addSpouse row 3", p.Action, p.Row)
	}
	if !maps.Equal(p.Updates, want) {
		t.Errorf("Updates = %v, want %v", p.Updates, want)
	}

	p, err = s.AddSpouse(context.Background(), "mem_4", map[string]string{"first_name": "Selin", "note": "second marriage"})
	if err != nil {
		t.Fatalf("AddSpouse: %v", err)
	}
	if p.Row != 6 {
		t.Errorf("Row = %d, want 6", p.Row)
	}
	if got := p.Updates[ColNote]; got != "second marriage, is_spouse:true" {
		t.Errorf("note = %q", got)
	}
}

func TestAddRequiresFirstName(t *testing.T) {
	up := &fakeUploader{}
	s := NewSession(testData(t), up, Options{})
	ctx := context.Background()

	if _, err := s.AddChild(ctx, "mem_2", map[string]string{"last_name": "Yılmaz"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddChild error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.AddSpouse(ctx, "mem_2", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddSpouse error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.AddChild(ctx, "mem_2", map[string]string{"first_name": "X", "shoe_size": "42"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown field error = %v, want INVALID_INPUT", err)
	}
	if len(up.sent) != 0 {
		t.Errorf("uploads = %d, want 0", len(up.sent))
	}
}

func TestSaveUpdatesMember(t *testing.T) {
	up := &fakeUploader{}
	data := testData(t)
	s := NewSession(data, up, Options{})

	err := s.Save(context.Background(), "mem_4", Updates{ColFirstName: "Emir", ColLastName: "Yılmaz", ColBirthDate: "1950"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	m := data.Member("mem_4")
	if m.Name != "Emir Yılmaz" {
		t.Errorf("Name = %q, want %q", m.Name, "Emir Yılmaz")
	}
	if m.BirthDate != "1950" {
		t.Errorf("BirthDate = %q", m.BirthDate)
	}
	if len(up.sent) != 1 || up.sent[0].Row != 6 || up.sent[0].Action != ActionUpdate {
		t.Errorf("sent = %+v, want one update of row 6", up.sent)
	}
}

func TestSaveErrors(t *testing.T) {
	s := NewSession(testData(t), &fakeUploader{}, Options{})
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		updates Updates
		code    errors.Code
	}{
		{"union id", "u_mem_0_mem_1", Updates{ColNote: "x"}, errors.ErrCodeInvalidInput},
		{"missing member", "mem_99", Updates{ColNote: "x"}, errors.ErrCodeNodeNotFound},
		{"column out of range", "mem_0", Updates{Column(14): "x"}, errors.ErrCodeInvalidInput},
		{"no updates", "mem_0", nil, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Save(ctx, tt.id, tt.updates); !errors.Is(err, tt.code) {
				t.Errorf("Save error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	up := &fakeUploader{}
	s := NewSession(testData(t), up, Options{})

	if err := s.Delete(context.Background(), "mem_4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := Payload{Action: ActionDeleteRow, Row: 6}
	if len(up.sent) != 1 || up.sent[0].Action != want.Action || up.sent[0].Row != want.Row || up.sent[0].Updates != nil {
		t.Errorf("sent = %+v, want %+v", up.sent, want)
	}
}

func TestMoveChild(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		spouse string
		want   Updates
	}{
		{"to father", "mem_2", "Elif", Updates{ColFather: "Kemal", ColMother: "Elif"}},
		{"to mother", "mem_6", "Veli", Updates{ColMother: "Ayse", ColFather: "Veli"}},
		{"single parent", "mem_2", "", Updates{ColFather: "Kemal", ColMother: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			s := NewSession(testData(t), up, Options{})
			if err := s.MoveChild(context.Background(), "mem_8", tt.parent, tt.spouse); err != nil {
				t.Fatalf("MoveChild: %v", err)
			}
			if len(up.sent) != 1 {
				t.Fatalf("uploads = %d, want 1", len(up.sent))
			}
			if up.sent[0].Row != 10 {
				t.Errorf("Row = %d, want 10", up.sent[0].Row)
			}
			if !maps.Equal(up.sent[0].Updates, tt.want) {
				t.Errorf("Updates = %v, want %v", up.sent[0].Updates, tt.want)
			}
		})
	}
}

func TestUploadFailureKeepsLocalEdit(t *testing.T) {
	ctx := context.Background()
	journal, err := OpenJournal(ctx, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer journal.Close()

	up := &fakeUploader{err: stderrors.New("connection refused")}
	data := testData(t)
	s := NewSession(data, up, Options{Journal: journal})

	err = s.Save(ctx, "mem_0", Updates{ColFirstName: "Ahmet"})
	if !errors.Is(err, errors.ErrCodeUploadFailed) {
		t.Fatalf("Save error = %v, want UPLOAD_FAILED", err)
	}
	if got := data.Member("mem_0").Name; got != "Ahmet" {
		t.Errorf("Name = %q, want Ahmet", got)
	}

	failed, err := journal.List(ctx, StatusFailed, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 || failed[0].MemberID != "mem_0" || failed[0].Error == "" {
		t.Fatalf("failed entries = %+v", failed)
	}

	up.err = nil
	n, err := s.Replay(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Replay = (%d, %v), want (1, nil)", n, err)
	}
	if got := up.sent[0].Updates[ColFirstName]; got != "Ahmet" {
		t.Errorf("replayed first name = %q", got)
	}
	if failed, _ := journal.List(ctx, StatusFailed, 0); len(failed) != 0 {
		t.Errorf("failed after replay = %d, want 0", len(failed))
	}
}

func TestReplayKeepsFailingEdits(t *testing.T) {
	ctx := context.Background()
	journal, err := OpenJournal(ctx, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer journal.Close()

	up := &fakeUploader{err: stderrors.New("connection refused")}
	s := NewSession(testData(t), up, Options{Journal: journal})
	if err := s.Save(ctx, "mem_0", Updates{ColFirstName: "Ahmet"}); err == nil {
		t.Fatal("Save should fail while the upload fails")
	}

	up.err = stderrors.New("timeout")
	n, err := s.Replay(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Replay = (%d, %v), want (0, nil)", n, err)
	}
	failed, err := journal.List(ctx, StatusFailed, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 || failed[0].Error != "timeout" {
		t.Errorf("failed entries = %+v, want one with the replay error", failed)
	}
}

func TestReplayWithoutJournal(t *testing.T) {
	s := NewSession(testData(t), &fakeUploader{}, Options{})
	if _, err := s.Replay(context.Background()); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Replay error = %v, want UNSUPPORTED", err)
	}
}

func TestSelect(t *testing.T) {
	s := NewSession(testData(t), &fakeUploader{}, Options{})
	if err := s.Select("mem_3"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if s.Current() != "mem_3" {
		t.Errorf("Current = %q, want mem_3", s.Current())
	}
	if err := s.Select("mem_42"); err == nil {
		t.Error("Select(mem_42) should fail")
	}
	if s.Current() != "mem_3" {
		t.Errorf("Current after failed Select = %q, want mem_3", s.Current())
	}
}
