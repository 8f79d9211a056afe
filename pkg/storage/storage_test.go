package storage

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

func snapshot(source string, created time.Time) *Snapshot {
	data := family.NewData()
	data.Members["mem_0"] = &family.Member{ID: "mem_0", Name: "Ali"}
	data.Start = "mem_0"
	return &Snapshot{
		Source:    source,
		Data:      data,
		Frame:     graph.Frame{Focus: "mem_0"},
		CreatedAt: created,
	}
}

func TestMemoryArchiveSaveGet(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive()
	defer a.Close(ctx)

	s := snapshot("family.csv", time.Time{})
	if err := a.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.ID == "" || s.CreatedAt.IsZero() {
		t.Fatalf("Save should assign id and time, got %+v", s)
	}

	got, err := a.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source != "family.csv" || got.Frame.Focus != "mem_0" {
		t.Errorf("Get = %+v", got)
	}

	got.Data.Members["mem_0"].Name = "changed"
	again, _ := a.Get(ctx, s.ID)
	if again.Data.Members["mem_0"].Name != "Ali" {
		t.Error("archived data should not be shared with callers")
	}

	if _, err := a.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get missing = %v, want NOT_FOUND", err)
	}
}

func TestMemoryArchiveList(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, src := range []string{"a.csv", "b.csv", "c.csv"} {
		if err := a.Save(ctx, snapshot(src, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := a.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List = %d summaries, want 3", len(all))
	}
	if all[0].Source != "c.csv" || all[2].Source != "a.csv" {
		t.Errorf("List order = %s, %s, %s, want newest first", all[0].Source, all[1].Source, all[2].Source)
	}
	if all[0].Members != 1 || all[0].Focus != "mem_0" {
		t.Errorf("summary = %+v", all[0])
	}

	limited, _ := a.List(ctx, 2)
	if len(limited) != 2 {
		t.Errorf("List(2) = %d summaries, want 2", len(limited))
	}
}
