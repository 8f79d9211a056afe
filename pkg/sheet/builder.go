package sheet

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/observability"
)

// Column positions of a data row.
const (
	ColGen = iota
	ColFirstName
	ColLastName
	ColFather
	ColMother
	ColBirthDate
	ColBirthPlace
	ColDeathDate
	ColImage
	ColMarriage
	ColGender
	ColNote
	ColID
)

// Options configures [Build].
type Options struct {
	// Logger receives data-quality warnings. Nil discards them.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Build parses data rows (header already removed) into family data.
// Malformed rows are logged and skipped; Build only fails when no member
// could be recorded.
func Build(ctx context.Context, rows [][]string, opts Options) (*family.Data, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, "rows")
	start := time.Now()

	b := newBuilder(ctx, opts.logger())
	for i, row := range rows {
		b.add(i, row)
	}

	var err error
	if len(b.data.Members) == 0 {
		err = errors.New(errors.ErrCodeEmptyGraph, "no members in %d rows", len(rows))
	}
	hooks.OnParseComplete(ctx, "rows", len(b.data.Members), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return b.data, nil
}

type builder struct {
	ctx    context.Context
	logger *log.Logger
	data   *family.Data
	unions map[string]string

	lastRegular    string
	lastRegularGen int
	genMap         map[int]string
	spouseMap      map[int]string
	spouseNameMap  map[int]map[string]string
}

func newBuilder(ctx context.Context, logger *log.Logger) *builder {
	return &builder{
		ctx:           ctx,
		logger:        logger,
		data:          family.NewData(),
		unions:        make(map[string]string),
		genMap:        make(map[int]string),
		spouseMap:     make(map[int]string),
		spouseNameMap: make(map[int]map[string]string),
	}
}

// sheetRow is the 1-based spreadsheet row of data row i (the header is row 1).
func sheetRow(i int) int { return i + 2 }

func (b *builder) skip(i int, reason string, warn bool) {
	if warn {
		b.logger.Warn("skipping row", "row", sheetRow(i), "reason", reason)
	}
	observability.Pipeline().OnRowSkipped(b.ctx, sheetRow(i), reason)
}

func (b *builder) add(i int, row []string) {
	rawGen := cell(row, ColGen)
	if rawGen == "" {
		b.skip(i, "empty generation", false)
		return
	}

	spouse := strings.EqualFold(rawGen, family.SpouseMarker)
	gen, err := strconv.Atoi(rawGen)
	if !spouse && err != nil {
		b.skip(i, "invalid generation "+strconv.Quote(rawGen), true)
		return
	}
	if spouse && b.lastRegular == "" {
		b.skip(i, "spouse row without partner", true)
		return
	}

	m := b.member(i, row)
	m.IsSpouse = spouse
	if spouse {
		b.addSpouse(m)
	} else {
		m.Gen = gen
		b.addRegular(m, row)
	}
}

func (b *builder) member(i int, row []string) *family.Member {
	first, last := cell(row, ColFirstName), cell(row, ColLastName)
	m := &family.Member{
		ID:         family.MemberID(i),
		Name:       family.FullName(first, last),
		FirstName:  first,
		LastName:   last,
		BirthDate:  cell(row, ColBirthDate),
		BirthPlace: cell(row, ColBirthPlace),
		DeathDate:  cell(row, ColDeathDate),
		ImagePath:  NormalizeImagePath(cell(row, ColImage)),
		Marriage:   cell(row, ColMarriage),
		Note:       cell(row, ColNote),
		Gender:     family.Unknown,
		RowIndex:   i,
		SourceID:   cell(row, ColID),
	}
	if g := cell(row, ColGender); g != "" {
		m.Gender = family.Gender(g)
		if !m.Gender.Valid() {
			b.logger.Warn("unrecognised gender", "row", sheetRow(i), "gender", g)
		}
	}
	return m
}

func (b *builder) record(m *family.Member) {
	b.data.Members[m.ID] = m
	if b.data.Start == "" {
		b.data.Start = m.ID
	}
}

func (b *builder) addSpouse(m *family.Member) {
	g := b.lastRegularGen
	m.Gen = g
	b.record(m)

	b.spouseMap[g] = m.ID
	if b.spouseNameMap[g] == nil {
		b.spouseNameMap[g] = make(map[string]string)
	}
	b.spouseNameMap[g][m.FirstName] = m.ID
	b.union(b.lastRegular, m.ID)
}

func (b *builder) addRegular(m *family.Member, row []string) {
	g := m.Gen
	b.record(m)

	b.lastRegular = m.ID
	b.lastRegularGen = g
	b.genMap[g] = m.ID
	delete(b.spouseMap, g)
	b.spouseNameMap[g] = make(map[string]string)

	if g <= 1 {
		return
	}
	parent, ok := b.genMap[g-1]
	if !ok {
		b.logger.Warn("no parent at previous generation", "row", sheetRow(m.RowIndex), "gen", g)
		return
	}
	co := b.coParent(g-1, cell(row, ColFather), cell(row, ColMother))
	b.link(b.union(parent, co), m.ID)
}

// coParent resolves the spouse of the blood parent at generation g:
// father name, then mother name, then the last spouse seen at g.
func (b *builder) coParent(g int, father, mother string) string {
	names := b.spouseNameMap[g]
	if id, ok := names[father]; ok && father != "" {
		return id
	}
	if id, ok := names[mother]; ok && mother != "" {
		return id
	}
	return b.spouseMap[g]
}

// union returns the union id of p1 and p2, creating it (and its parent
// links) on first use. p2 may be empty for a single known parent.
func (b *builder) union(p1, p2 string) string {
	key := family.UnionKey(p1, p2)
	if id, ok := b.unions[key]; ok {
		return id
	}
	id := family.UnionPrefix + key
	b.unions[key] = id
	if _, ok := b.data.Members[p1]; ok {
		b.link(p1, id)
	}
	if _, ok := b.data.Members[p2]; ok && p2 != "" {
		b.link(p2, id)
	}
	return id
}

func (b *builder) link(src, dst string) {
	b.data.Links = append(b.data.Links, family.Link{src, dst})
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
