package cli

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/lineage"
	"github.com/matzehuels/familytree/pkg/view"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// ExploreModel - interactive tree explorer
// =============================================================================

// ExploreModel is the bubbletea model of `familytree explore`. It lists
// the visible members generation by generation and drives a
// view.Controller with key presses.
type ExploreModel struct {
	ctrl   *view.Controller
	rows   []graph.FrameNode
	level  map[string]int
	Cursor int
	Height int
	Offset int
	Status string
}

// NewExploreModel creates a model over an already drawn controller.
func NewExploreModel(c *view.Controller) ExploreModel {
	m := ExploreModel{ctrl: c, Height: 20}
	m.refresh(c.Frame(), c.Focus())
	return m
}

// Selected returns the id of the member under the cursor.
func (m ExploreModel) Selected() string {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.Cursor].ID
}

// Rows returns the ids of the listed members in display order.
func (m ExploreModel) Rows() []string {
	ids := make([]string, len(m.rows))
	for i, n := range m.rows {
		ids[i] = n.ID
	}
	return ids
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "enter", " ":
			m.apply("toggled "+m.Selected(), m.ctrl.Expand)
		case "c":
			m.apply("ancestors of "+m.Selected(), m.ctrl.CollapseToAncestors)
		case "f":
			m.apply("centered on "+m.Selected(), m.ctrl.ConnectToNode)
		case "r":
			m.apply("reset", func(string) (graph.Frame, error) { return m.ctrl.Reset() })
		case "p":
			mode := lineage.Patrilineal
			if m.ctrl.Mode() == lineage.Patrilineal {
				mode = lineage.Full
			}
			m.apply(mode.String()+" lineage", func(string) (graph.Frame, error) { return m.ctrl.SetLineage(mode) })
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
		m.scroll()
	}
	return m, nil
}

// apply runs a controller operation on the selected member and keeps the
// cursor on it when it stays visible.
func (m *ExploreModel) apply(status string, op func(string) (graph.Frame, error)) {
	id := m.Selected()
	f, err := op(id)
	if err != nil {
		m.Status = StyleWarning.Render(err.Error())
		return
	}
	m.refresh(f, id)
	m.Status = status
}

func (m *ExploreModel) refresh(f graph.Frame, keep string) {
	m.rows = m.rows[:0]
	for _, n := range f.Nodes {
		if !n.IsUnion() {
			m.rows = append(m.rows, n)
		}
	}
	slices.SortFunc(m.rows, func(a, b graph.FrameNode) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})

	m.level = make(map[string]int, len(m.rows))
	if len(m.rows) > 0 && f.DY > 0 {
		top := m.rows[0].Y
		for _, n := range m.rows {
			m.level[n.ID] = int(math.Round((n.Y - top) / f.DY))
		}
	}

	m.Cursor = 0
	for i, n := range m.rows {
		if n.ID == keep {
			m.Cursor = i
			break
		}
	}
}

func (m *ExploreModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ExploreModel) View() string {
	var b strings.Builder

	title := "Family Tree"
	if m.ctrl.Mode() == lineage.Patrilineal {
		title += " (patrilineal)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ expand/collapse  c ancestors  f focus  p lineage  r reset  q quit"))
	b.WriteString("\n\n")

	data := m.ctrl.Data()
	end := min(m.Offset+m.Height, len(m.rows))
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		n := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := " "
		if n.Highlighted {
			marker = "+"
		}
		name := n.Name
		if mem := data.Member(n.ID); mem != nil {
			name = memberName(mem)
		}
		line := fmt.Sprintf("%s%s%s %s", cursor, strings.Repeat("  ", m.level[n.ID]), marker, name)
		if i == m.Cursor {
			line = listSelectedStyle.Render(cursor) + line[len(cursor):]
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	detail := ""
	if mem := data.Member(m.Selected()); mem != nil {
		detail = detailBoxStyle.Render(memberDetail(mem))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", detail))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s", m.Cursor+1, len(m.rows), m.Status)))
	return b.String()
}

func memberDetail(m *family.Member) string {
	lines := []string{StyleTitle.Render(m.Name), StyleDim.Render(m.ID)}
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, StyleDim.Render(label+": ")+v)
		}
	}
	add("born", strings.TrimSpace(m.BirthDate+" "+m.BirthPlace))
	add("died", strings.TrimSpace(m.DeathDate+" "+m.DeathPlace))
	add("married", m.Marriage)
	add("note", m.Note)
	if m.IsSpouse {
		lines = append(lines, StyleDim.Render("married into the family"))
	}
	return strings.Join(lines, "\n")
}
