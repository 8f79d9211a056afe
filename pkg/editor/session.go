package editor

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
)

// Options configures a Session.
type Options struct {
	// Journal records edits. Nil disables journaling (and Replay).
	Journal *Journal
	Logger  *log.Logger
}

// Session edits one family tree. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	data     *family.Data
	uploader Uploader
	journal  *Journal
	logger   *log.Logger
	current  string
}

// NewSession creates a Session editing data in place.
func NewSession(data *family.Data, uploader Uploader, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		data:     data,
		uploader: uploader,
		journal:  opts.Journal,
		logger:   logger,
	}
}

// Data returns the edited family data.
func (s *Session) Data() *family.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Select makes id the current member.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.member(id); err != nil {
		return err
	}
	s.current = id
	return nil
}

// Current returns the selected member id, or "".
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save writes updates to the member's row. The member is updated locally
// before the upload and is not rolled back if the upload fails.
func (s *Session) Save(ctx context.Context, memberID string, updates Updates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, memberID, updates)
}

func (s *Session) save(ctx context.Context, memberID string, updates Updates) error {
	m, err := s.member(memberID)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no updates for %s", memberID)
	}
	for col := range updates {
		if err := col.Validate(); err != nil {
			return err
		}
	}

	for col, val := range updates {
		m.Set(col.Key(), val)
	}
	_, first := updates[ColFirstName]
	_, last := updates[ColLastName]
	if first || last {
		m.RebuildName()
	}

	return s.send(ctx, memberID, Payload{Row: sheetRow(m), Updates: updates})
}

// AddChild inserts a child of memberID. When memberID is a spouse row, the
// child belongs to the spouse and the member the spouse is listed under.
// fields are keyed like [family.Member.Lookup]; first_name is required.
func (s *Session) AddChild(ctx context.Context, memberID string, fields map[string]string) (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clicked, err := s.member(memberID)
	if err != nil {
		return Payload{}, err
	}
	updates, err := requireName(fields)
	if err != nil {
		return Payload{}, err
	}

	anchor := clicked
	if clicked.IsSpouse {
		for n := clicked.RowIndex; n >= 0; n-- {
			m := s.data.Member(family.MemberID(n))
			if m == nil {
				break
			}
			if !m.IsSpouse {
				anchor = m
				break
			}
		}
	}

	// The family block is the anchor, its spouses, and every following row
	// of a deeper generation.
	last := anchor.RowIndex
	for n := last + 1; ; n++ {
		m := s.data.Member(family.MemberID(n))
		if m == nil || (!m.IsSpouse && m.Gen <= anchor.Gen) {
			break
		}
		last = n
	}

	updates[ColGen] = strconv.Itoa(anchor.Gen + 1)
	male := anchor.Gender == family.Male
	switch {
	case clicked.IsSpouse && male:
		updates[ColFather] = anchor.FirstName
		updates[ColMother] = clicked.FirstName
	case clicked.IsSpouse:
		updates[ColFather] = clicked.FirstName
		updates[ColMother] = anchor.FirstName
	case male:
		updates[ColFather] = anchor.FirstName
	default:
		updates[ColMother] = anchor.FirstName
	}

	p := Payload{Action: ActionAddChild, Row: last + 2, Updates: updates}
	return p, s.send(ctx, memberID, p)
}

// AddSpouse inserts a spouse row after memberID and its existing spouses.
func (s *Session) AddSpouse(ctx context.Context, memberID string, fields map[string]string) (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.member(memberID)
	if err != nil {
		return Payload{}, err
	}
	updates, err := requireName(fields)
	if err != nil {
		return Payload{}, err
	}

	after := m.RowIndex
	for n := after + 1; ; n++ {
		next := s.data.Member(family.MemberID(n))
		if next == nil || !next.IsSpouse {
			break
		}
		after = n
	}

	updates[ColGen] = family.SpouseMarker
	updates[ColFather] = ""
	updates[ColMother] = ""
	if note := updates[ColNote]; note != "" {
		updates[ColNote] = note + ", is_spouse:true"
	} else {
		updates[ColNote] = "is_spouse:true"
	}

	p := Payload{Action: ActionAddSpouse, Row: after + 2, Updates: updates}
	return p, s.send(ctx, memberID, p)
}

// Delete removes the member's row.
func (s *Session) Delete(ctx context.Context, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.member(memberID)
	if err != nil {
		return err
	}
	return s.send(ctx, memberID, Payload{Action: ActionDeleteRow, Row: sheetRow(m)})
}

// MoveChild rewrites the member's father and mother cells so it hangs under
// newParentID and spouseName.
func (s *Session) MoveChild(ctx context.Context, memberID, newParentID, spouseName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.member(newParentID)
	if err != nil {
		return err
	}
	updates := Updates{}
	if parent.Gender == family.Female {
		updates[ColMother] = parent.FirstName
		updates[ColFather] = spouseName
	} else {
		updates[ColFather] = parent.FirstName
		updates[ColMother] = spouseName
	}
	return s.save(ctx, memberID, updates)
}

// Replay resends failed journal entries and returns how many succeeded.
func (s *Session) Replay(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.journal == nil {
		return 0, errors.New(errors.ErrCodeUnsupported, "replay needs a journal")
	}
	failed, err := s.journal.List(ctx, StatusFailed, 0)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "list failed edits")
	}

	sent := 0
	for _, e := range failed {
		if err := s.uploader.Upload(ctx, e.Payload); err != nil {
			s.logger.Warn("replay failed", "edit", e.ID, "member", e.MemberID, "err", err)
			if merr := s.journal.Mark(ctx, e.ID, StatusFailed, err); merr != nil {
				s.logger.Warn("journal update failed", "edit", e.ID, "err", merr)
			}
			continue
		}
		if err := s.journal.Mark(ctx, e.ID, StatusSent, nil); err != nil {
			return sent, errors.Wrap(errors.ErrCodeInternal, err, "mark edit %d", e.ID)
		}
		sent++
	}
	return sent, nil
}

// send journals p, uploads it and records the outcome.
func (s *Session) send(ctx context.Context, memberID string, p Payload) error {
	var id int64
	if s.journal != nil {
		var err error
		if id, err = s.journal.Record(ctx, memberID, p); err != nil {
			s.logger.Warn("journal write failed", "member", memberID, "err", err)
		}
	}

	err := s.uploader.Upload(ctx, p)
	if err != nil && !errors.Is(err, errors.ErrCodeUploadFailed) {
		err = errors.Wrap(errors.ErrCodeUploadFailed, err, "upload row %d", p.Row)
	}

	if id != 0 {
		status := StatusSent
		if err != nil {
			status = StatusFailed
		}
		if merr := s.journal.Mark(ctx, id, status, err); merr != nil {
			s.logger.Warn("journal update failed", "edit", id, "err", merr)
		}
	}
	if err != nil {
		s.logger.Warn("upload failed", "member", memberID, "action", p.Action, "row", p.Row, "err", err)
		return err
	}
	s.logger.Debug("edit sent", "member", memberID, "action", p.Action, "row", p.Row)
	return nil
}

func (s *Session) member(id string) (*family.Member, error) {
	if err := errors.ValidateMemberID(id); err != nil {
		return nil, err
	}
	m := s.data.Member(id)
	if m == nil {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "member %s not found", id)
	}
	return m, nil
}

func requireName(fields map[string]string) (Updates, error) {
	updates, err := FieldsToUpdates(fields)
	if err != nil {
		return nil, err
	}
	if updates[ColFirstName] == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "first name is required")
	}
	return updates, nil
}

// sheetRow is the 1-based sheet row of m.
func sheetRow(m *family.Member) int { return m.RowIndex + 2 }
