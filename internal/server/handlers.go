package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/familytree/pkg/dag"
	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/render/nodelink"
	"github.com/matzehuels/familytree/pkg/session"
	"github.com/matzehuels/familytree/pkg/state"
	"github.com/matzehuels/familytree/pkg/storage"
	"github.com/matzehuels/familytree/pkg/view"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pathResponse struct {
	Path  []string    `json:"path"`
	Frame graph.Frame `json:"frame"`
}

type stateResponse struct {
	State     string          `json:"state"`
	Frame     *graph.Frame    `json:"frame,omitempty"`
	Transform *view.Transform `json:"transform,omitempty"`
}

type stateRequest struct {
	State string `json:"state"`
}

type shareRequest struct {
	Transform *view.Transform `json:"transform,omitempty"`
}

type shareResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

// viewError gives controller sentinels their API codes.
func viewError(err error, id string) error {
	switch {
	case errors.GetCode(err) != "":
		return err
	case stderrors.Is(err, dag.ErrNodeNotFound):
		return errors.Wrap(errors.ErrCodeNodeNotFound, err, "node %s is not visible", id)
	case stderrors.Is(err, view.ErrNoPath):
		return errors.Wrap(errors.ErrCodeNotFound, err, "no path to %s", id)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "view")
}

// nodeParam reads and validates the {id} path parameter. Union ids are
// accepted since unions can be clicked too.
func nodeParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if family.IsUnionID(id) {
		return id, nil
	}
	return id, errors.ValidateMemberID(id)
}

func decodeBody(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data, _, _ := s.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "members": len(data.Members)})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	data, hash, _ := s.snapshot()
	w.Header().Set("ETag", strconv.Quote(hash))
	if match := r.Header.Get("If-None-Match"); match != "" && match == strconv.Quote(hash) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	_, c, err := s.viewFor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := frameOf(c)
	if err != nil {
		s.writeError(w, r, viewError(err, c.Focus()))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// apply runs op on the request's view, persists the result and writes
// the new frame.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, op func(*view.Controller) (graph.Frame, error)) {
	sess, c, err := s.viewFor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := op(c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.persist(r.Context(), sess, c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) nodeOp(w http.ResponseWriter, r *http.Request, op func(*view.Controller, string) (graph.Frame, error)) {
	id, err := nodeParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, func(c *view.Controller) (graph.Frame, error) {
		f, err := op(c, id)
		if err != nil {
			return f, viewError(err, id)
		}
		return f, nil
	})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.nodeOp(w, r, (*view.Controller).Expand)
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	s.nodeOp(w, r, (*view.Controller).CollapseToAncestors)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	s.nodeOp(w, r, (*view.Controller).ConnectToNode)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, (*view.Controller).Reset)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	for _, id := range []string{from, to} {
		if err := errors.ValidateMemberID(id); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	sess, c, err := s.viewFor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	path, f, err := c.FindPath(from, to)
	if err != nil {
		s.writeError(w, r, viewError(err, to))
		return
	}
	if err := s.persist(r.Context(), sess, c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pathResponse{Path: path, Frame: f})
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.apply(w, r, func(c *view.Controller) (graph.Frame, error) {
		return c.SetLineage(mode)
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, c, err := s.viewFor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sess.State == "" {
		if err := s.persist(r.Context(), sess, c); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, stateResponse{State: sess.State})
}

func (s *Server) handleRestoreState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.restore(w, r, req.State)
}

// restore applies an encoded state to the request's view.
func (s *Server) restore(w http.ResponseWriter, r *http.Request, encoded string) {
	if err := errors.ValidateStateString(encoded); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, _, ids := s.snapshot()
	st, err := state.Decode(encoded, ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, c, err := s.viewFor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, t, err := state.Restore(c, data, st)
	if err != nil {
		s.writeError(w, r, viewError(err, st.Focus))
		return
	}
	if err := s.persist(r.Context(), sess, c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: sess.State, Frame: &f, Transform: t})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	_, c, err := s.viewFor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, hash, ids := s.snapshot()
	encoded, err := state.Encode(state.Capture(c, req.Transform), ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.opts.Shares.Save(r.Context(), encoded)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	f, err := frameOf(c)
	if err == nil {
		err = s.opts.Archive.Save(r.Context(), &storage.Snapshot{
			ID:       id,
			Source:   s.opts.View.Source,
			DataHash: hash,
			State:    encoded,
			Data:     data,
			Frame:    f,
		})
	}
	if err != nil {
		s.logger.Warn("snapshot not archived", "share", id, "err", err)
	}
	writeJSON(w, http.StatusCreated, shareResponse{ID: id, State: encoded})
}

func (s *Server) handleOpenShare(w http.ResponseWriter, r *http.Request) {
	encoded, err := s.opts.Shares.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.restore(w, r, encoded)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.opts.Archive.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := session.ValidateID(id); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot id"))
		return
	}
	snap, err := s.opts.Archive.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	_, c, err := s.viewFor(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := frameOf(c)
	if err != nil {
		s.writeError(w, r, viewError(err, c.Focus()))
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(f, nodelink.Options{Detailed: detailed}))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
