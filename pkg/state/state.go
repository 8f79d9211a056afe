package state

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/view"
)

// State is a restorable view.
type State struct {
	Focus       string          // member id, empty when unknown
	Transform   *view.Transform // nil when no camera was saved
	Patrilineal bool
	Visible     []string // member ids; unions are dropped on encode
}

type wireState struct {
	N *string         `json:"n"`
	T *view.Transform `json:"t"`
	P int             `json:"p"`
	V []string        `json:"v"`
}

// Encode serializes s as base64url JSON without padding. Ids without a
// persistent id (unions, unnamed spouses) are left out.
func Encode(s State, ids *IDMap) (string, error) {
	w := wireState{V: []string{}}
	if pid, ok := ids.Persistent(s.Focus); ok {
		w.N = &pid
	}
	if s.Transform != nil {
		w.T = &view.Transform{
			K: s.Transform.K,
			X: math.Round(s.Transform.X),
			Y: math.Round(s.Transform.Y),
		}
	}
	if s.Patrilineal {
		w.P = 1
	}
	for _, id := range s.Visible {
		if pid, ok := ids.Persistent(id); ok {
			w.V = append(w.V, pid)
		}
	}

	raw, err := json.Marshal(w)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode state")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses an encoded state. Persistent ids that no longer exist are
// dropped. A leading '#' and trailing padding are accepted.
func Decode(encoded string, ids *IDMap) (State, error) {
	encoded = strings.TrimRight(strings.TrimPrefix(encoded, "#"), "=")
	if err := errors.ValidateStateString(encoded); err != nil {
		return State{}, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return State{}, errors.Wrap(errors.ErrCodeInvalidState, err, "decode state")
	}
	var w wireState
	if err := json.Unmarshal(raw, &w); err != nil {
		return State{}, errors.Wrap(errors.ErrCodeInvalidState, err, "parse state")
	}

	var s State
	if w.N != nil {
		s.Focus, _ = ids.Member(*w.N)
	}
	s.Transform = w.T
	s.Patrilineal = w.P == 1
	for _, pid := range w.V {
		if id, ok := ids.Member(pid); ok {
			s.Visible = append(s.Visible, id)
		}
	}
	return s, nil
}
