package state

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/lineage"
	"github.com/matzehuels/familytree/pkg/observability"
	"github.com/matzehuels/familytree/pkg/sheet"
	"github.com/matzehuels/familytree/pkg/view"
)

func sheetRow(gen, first, father, mother string, gender family.Gender) []string {
	r := make([]string, sheet.ColGender+1)
	r[sheet.ColGen] = gen
	r[sheet.ColFirstName] = first
	r[sheet.ColFather] = father
	r[sheet.ColMother] = mother
	r[sheet.ColGender] = string(gender)
	return r
}

func familyData(t *testing.T) *family.Data {
	t.Helper()
	data, err := sheet.Build(context.Background(), [][]string{
		sheetRow("1", "Ali", "", "", family.Male),             // mem_0
		sheetRow("E", "Fatma", "", "", family.Female),         // mem_1
		sheetRow("2", "Kemal", "Ali", "Fatma", family.Male),   // mem_2
		sheetRow("E", "Elif", "", "", family.Female),          // mem_3
		sheetRow("3", "Emre", "Kemal", "Elif", family.Male),   // mem_4
		sheetRow("3", "Ece", "Kemal", "Elif", family.Female),  // mem_5
		sheetRow("2", "Deniz", "Ali", "Fatma", family.Female), // mem_6
		sheetRow("E", "Can", "", "", family.Male),             // mem_7
		sheetRow("3", "Mert", "Can", "Deniz", family.Male),    // mem_8
	}, sheet.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return data
}

func visibleMembers(c *view.Controller) []string {
	var out []string
	for _, id := range c.VisibleIDs() {
		if !family.IsUnionID(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func TestCaptureRestore(t *testing.T) {
	data := familyData(t)
	ids := BuildIDMap(data)

	c1, err := view.New(data, view.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c1.Draw(true, "mem_0"); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if _, err := c1.Expand("mem_2"); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	encoded, err := Encode(Capture(c1, &view.Transform{K: 1, X: 10, Y: 20}), ids)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s, err := Decode(encoded, ids)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	c2, _ := view.New(data, view.Options{})
	frame, tr, err := Restore(c2, data, s)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got, want := visibleMembers(c2), visibleMembers(c1); !slices.Equal(got, want) {
		t.Errorf("restored members = %v, want %v", got, want)
	}
	if frame.Focus != "mem_2" || frame.Recenter {
		t.Errorf("frame focus = %q recenter %v, want mem_2 without recenter", frame.Focus, frame.Recenter)
	}
	if tr == nil || *tr != (view.Transform{K: 1, X: 10, Y: 20}) {
		t.Errorf("transform = %v, want the saved one", tr)
	}
}

type discardCounter struct {
	observability.NoopViewHooks
	reasons []string
}

func (d *discardCounter) OnTransformDiscarded(reason string, _, _ int) {
	d.reasons = append(d.reasons, reason)
}

func TestRestoreDiscardsStaleTransform(t *testing.T) {
	hooks := &discardCounter{}
	observability.SetViewHooks(hooks)
	defer observability.Reset()

	data := familyData(t)
	c, _ := view.New(data, view.Options{})
	s := State{
		Transform: &view.Transform{K: 2, X: 900, Y: -400},
		Visible:   []string{"mem_90", "mem_91", "mem_92", "mem_93", "mem_94", "mem_95", "mem_96"},
	}

	frame, tr, err := Restore(c, data, s)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if tr != nil {
		t.Errorf("transform = %v, want nil", tr)
	}
	if !frame.Recenter {
		t.Error("frame should recenter after a discarded transform")
	}
	if frame.Focus != data.Start {
		t.Errorf("frame focus = %q, want %q", frame.Focus, data.Start)
	}
	if len(hooks.reasons) != 1 {
		t.Errorf("discard hooks = %v, want one", hooks.reasons)
	}
}

func TestRestoreWithoutTransform(t *testing.T) {
	data := familyData(t)
	c, _ := view.New(data, view.Options{})

	frame, tr, err := Restore(c, data, State{Focus: "mem_2", Visible: []string{"mem_0", "mem_1", "mem_2", family.UnionID("mem_0", "mem_1")}})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if tr != nil {
		t.Errorf("transform = %v, want nil", tr)
	}
	if frame.Focus != "mem_2" || !frame.Recenter {
		t.Errorf("frame focus = %q recenter %v, want mem_2 recentered", frame.Focus, frame.Recenter)
	}
}

func TestRestorePatrilineal(t *testing.T) {
	data := familyData(t)
	c, _ := view.New(data, view.Options{})

	_, _, err := Restore(c, data, State{Patrilineal: true, Visible: []string{"mem_0", "mem_1", "mem_2"}})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if c.Mode() != lineage.Patrilineal {
		t.Errorf("Mode = %v, want patrilineal", c.Mode())
	}
	if s := Capture(c, nil); !s.Patrilineal {
		t.Error("Capture should record the lineage mode")
	}
}
