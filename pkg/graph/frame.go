package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/familytree/pkg/family"
)

// Node kinds in a Frame.
const (
	KindMember = "member"
	KindUnion  = "union"
)

// Frame is the serialization format of a laid-out visible graph. It is
// what renderers, the HTTP API and the snapshot archive consume.
type Frame struct {
	Nodes []FrameNode `json:"nodes" bson:"nodes"`
	Links []FrameLink `json:"links" bson:"links"`

	// Focus is the node the view is anchored on.
	Focus string `json:"focus" bson:"focus"`
	// Recenter tells renderers to reset the camera to Focus.
	Recenter bool `json:"recenter" bson:"recenter"`

	DX float64 `json:"dx" bson:"dx"`
	DY float64 `json:"dy" bson:"dy"`

	// Bounding box of all node positions.
	MinX   float64 `json:"min_x" bson:"min_x"`
	MinY   float64 `json:"min_y" bson:"min_y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Crossings   int  `json:"crossings" bson:"crossings"`
	Patrilineal bool `json:"patrilineal,omitempty" bson:"patrilineal,omitempty"`
}

// FrameNode is one positioned node.
type FrameNode struct {
	ID          string  `json:"id" bson:"id"`
	Kind        string  `json:"kind" bson:"kind"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	X0          float64 `json:"x0" bson:"x0"`
	Y0          float64 `json:"y0" bson:"y0"`
	Highlighted bool    `json:"highlighted,omitempty" bson:"highlighted,omitempty"`

	// Member fields; empty for unions.
	Name      string        `json:"name,omitempty" bson:"name,omitempty"`
	BirthDate string        `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
	DeathDate string        `json:"death_date,omitempty" bson:"death_date,omitempty"`
	Image     string        `json:"image,omitempty" bson:"image,omitempty"`
	Gender    family.Gender `json:"gender,omitempty" bson:"gender,omitempty"`
	Spouse    bool          `json:"spouse,omitempty" bson:"spouse,omitempty"`
}

// IsUnion reports whether the node is a union.
func (n *FrameNode) IsUnion() bool { return n.Kind == KindUnion }

// FrameLink is a link with the coordinates of both ends, ready to draw.
type FrameLink struct {
	Source  string  `json:"source" bson:"source"`
	Target  string  `json:"target" bson:"target"`
	SourceX float64 `json:"sx" bson:"sx"`
	SourceY float64 `json:"sy" bson:"sy"`
	TargetX float64 `json:"tx" bson:"tx"`
	TargetY float64 `json:"ty" bson:"ty"`
}

// Frame snapshots the current positions and states of g.
func (g *FamilyGraph) Frame(focus string, recenter bool) Frame {
	f := Frame{
		Nodes:    make([]FrameNode, 0, g.Len()),
		Links:    make([]FrameLink, 0, len(g.Links())),
		Focus:    focus,
		Recenter: recenter,
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes() {
		p, st := g.Pos(n), g.State(n)
		fn := FrameNode{
			ID:          n.ID(),
			Kind:        KindMember,
			X:           p.X,
			Y:           p.Y,
			X0:          p.X,
			Y0:          p.Y,
			Highlighted: st.Highlighted,
		}
		if st.HasPrev {
			fn.X0, fn.Y0 = st.X0, st.Y0
		}
		if n.IsUnion() {
			fn.Kind = KindUnion
		}
		if m := g.Member(n); m != nil {
			fn.Name = g.Name(n)
			fn.BirthDate = g.BirthDate(n)
			fn.DeathDate = g.DeathDate(n)
			fn.Image = g.Image(n)
			fn.Gender = g.Gender(n)
			fn.Spouse = m.IsSpouse
		}
		f.Nodes = append(f.Nodes, fn)

		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if len(f.Nodes) > 0 {
		f.MinX, f.MinY = minX, minY
		f.Width, f.Height = maxX-minX, maxY-minY
	}

	for _, l := range g.Links() {
		s, _ := g.Node(l.Source())
		t, _ := g.Node(l.Target())
		sp, tp := g.Pos(s), g.Pos(t)
		f.Links = append(f.Links, FrameLink{
			Source: l.Source(), Target: l.Target(),
			SourceX: sp.X, SourceY: sp.Y,
			TargetX: tp.X, TargetY: tp.Y,
		})
	}
	return f
}

// Node returns the frame node with id, or nil.
func (f *Frame) Node(id string) *FrameNode {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

// =============================================================================
// Frame Serialization API
// =============================================================================

// MarshalFrame serializes a Frame to pretty-printed JSON bytes.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// UnmarshalFrame deserializes JSON bytes into a Frame and checks that every
// link refers to a node of the frame.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	ids := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		ids[n.ID] = true
	}
	for _, l := range f.Links {
		if !ids[l.Source] || !ids[l.Target] {
			return Frame{}, fmt.Errorf("frame link %s -> %s references unknown node", l.Source, l.Target)
		}
	}
	return f, nil
}

// WriteFrame writes a Frame as JSON to w.
func WriteFrame(f Frame, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadFrame decodes a JSON frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Frame{}, fmt.Errorf("read: %w", err)
	}
	return UnmarshalFrame(data)
}

// WriteFrameFile writes a Frame to a JSON file.
func WriteFrameFile(f Frame, path string) error {
	data, err := MarshalFrame(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFrameFile reads a Frame from a JSON file.
func ReadFrameFile(path string) (Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalFrame(data)
}
