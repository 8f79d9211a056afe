package server

import (
	"context"
	"net/http"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/lineage"
	"github.com/matzehuels/familytree/pkg/pipeline"
	"github.com/matzehuels/familytree/pkg/session"
	"github.com/matzehuels/familytree/pkg/state"
	"github.com/matzehuels/familytree/pkg/view"
)

// viewFor returns the request's session and its controller, creating a
// session when the header is missing or names an unknown or expired one.
// Controllers missing from this instance are rebuilt from the session's
// saved state.
func (s *Server) viewFor(w http.ResponseWriter, r *http.Request) (*session.Session, *view.Controller, error) {
	ctx := r.Context()

	var sess *session.Session
	if id := r.Header.Get(SessionHeader); id != "" {
		if err := session.ValidateID(id); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", SessionHeader)
		}
		got, err := s.opts.Sessions.Get(ctx, id)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "load session")
		}
		sess = got
	}
	if sess == nil {
		sess = session.New(s.opts.SessionTTL)
		if err := s.opts.Sessions.Set(ctx, sess); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "create session")
		}
		s.logger.Debug("new view session", "session", sess.ID)
	}
	w.Header().Set(SessionHeader, sess.ID)

	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()
	if c, ok := s.views[sess.ID]; ok {
		return sess, c, nil
	}
	c, err := s.rebuild(sess)
	if err != nil {
		return nil, nil, err
	}
	s.views[sess.ID] = c
	return sess, c, nil
}

func (s *Server) rebuild(sess *session.Session) (*view.Controller, error) {
	data, _, ids := s.snapshot()
	c, err := pipeline.NewController(data, s.opts.View)
	if err != nil {
		return nil, err
	}
	if sess.State != "" {
		st, err := state.Decode(sess.State, ids)
		if err == nil {
			_, _, err = state.Restore(c, data, st)
		}
		if err == nil {
			return c, nil
		}
		s.logger.Warn("discarding unusable session state", "session", sess.ID, "err", err)
	}
	if _, err := c.Draw(true, data.Start); err != nil {
		return nil, err
	}
	return c, nil
}

// persist encodes what c shows into the session and stores it.
func (s *Server) persist(ctx context.Context, sess *session.Session, c *view.Controller) error {
	_, _, ids := s.snapshot()
	encoded, err := state.Encode(state.Capture(c, nil), ids)
	if err != nil {
		return err
	}
	sess.State = encoded
	sess.Mode = c.Mode().String()
	sess.Touch(s.opts.SessionTTL)
	if err := s.opts.Sessions.Set(ctx, sess); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save session")
	}
	return nil
}

// frameOf returns the controller's last frame, drawing one if the view
// has never been drawn.
func frameOf(c *view.Controller) (graph.Frame, error) {
	if f := c.Frame(); len(f.Nodes) > 0 {
		return f, nil
	}
	return c.Draw(true, c.Focus())
}

// parseMode is lineage.ParseMode with an API error code.
func parseMode(s string) (lineage.Mode, error) {
	m, err := lineage.ParseMode(s)
	if err != nil {
		return lineage.Full, errors.Wrap(errors.ErrCodeInvalidInput, err, "mode")
	}
	return m, nil
}
