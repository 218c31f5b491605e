package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/thermogrid/pkg/buildinfo"
	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/highlight"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/session"
)

type health struct {
	Status   string         `json:"status"`
	Sessions int            `json:"sessions"`
	Build    buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, health{Status: "ok", Sessions: s.store.Len(), Build: buildinfo.Get()})
}

// layerInfo is the public metadata of one layer.
type layerInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Attribute string `json:"attribute,omitempty"`
	Table     string `json:"table,omitempty"`
	Year      int    `json:"year,omitempty"`
	Visible   bool   `json:"visible"`
	ZIndex    int    `json:"z_index"`
	Features  int    `json:"features"`
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	layers := s.scene.Canvas.Layers()
	out := make([]layerInfo, 0, len(layers))
	for _, l := range layers {
		out = append(out, layerInfo{
			Name:      l.Name,
			Kind:      string(l.Meta.Kind),
			Attribute: l.Meta.Attribute,
			Table:     l.Meta.Table,
			Year:      l.Meta.Year,
			Visible:   l.Visible,
			ZIndex:    l.ZIndex,
			Features:  l.Len(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// legendEntry is one band of a legend. Min and Max are omitted when
// unbounded.
type legendEntry struct {
	Label string   `json:"label"`
	Color string   `json:"color"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

type legend struct {
	Table   string        `json:"table"`
	Bands   []legendEntry `json:"bands"`
	Missing string        `json:"missing"`
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, ok := s.scene.Tables[name]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeTableNotFound, "table %q not found", name))
		return
	}

	bound := func(v float64) *float64 {
		if math.IsInf(v, 0) {
			return nil
		}
		return &v
	}
	out := legend{Table: name, Missing: t.Missing().Hex()}
	for _, b := range t.Bands() {
		out.Bands = append(out.Bands, legendEntry{
			Label: b.Label(),
			Color: b.Color.Hex(),
			Min:   bound(b.Min),
			Max:   bound(b.Max),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type sessionInfo struct {
	ID        string `json:"id"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession()
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionInfo{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSessionLayer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "layer")
	l, found := s.scene.Canvas.Layer(name)
	if !found {
		s.writeError(w, errors.New(errors.ErrCodeLayerNotFound, "layer %q not found", name))
		return
	}
	data, err := sess.Styled(l)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "style layer %q", name))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// clickRequest is a pointer position in viewport pixels.
type clickRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// transitionResponse reports the outcome of one pointer event.
type transitionResponse struct {
	From       highlight.State `json:"from"`
	To         highlight.State `json:"to"`
	Changed    bool            `json:"changed"`
	Restored   bool            `json:"restored"`
	Layer      string          `json:"layer,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
}

func newTransitionResponse(t highlight.Transition) transitionResponse {
	out := transitionResponse{From: t.From, To: t.To, Changed: t.Changed, Restored: t.Restored}
	if t.Current != nil {
		out.Properties = t.Current.Properties()
	}
	if t.Layer != nil {
		out.Layer = t.Layer.Name
	}
	return out
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid click body"))
		return
	}
	if req.X == nil || req.Y == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "click needs x and y"))
		return
	}
	px := pick.Pixel{X: *req.X, Y: *req.Y}

	var t highlight.Transition
	_ = sess.Do(func(sess *session.Session) error {
		t = sess.Controller().Click(r.Context(), px)
		return nil
	})
	writeJSON(w, http.StatusOK, newTransitionResponse(t))
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var t highlight.Transition
	_ = sess.Do(func(sess *session.Session) error {
		t = sess.Controller().Leave(r.Context())
		return nil
	})
	writeJSON(w, http.StatusOK, newTransitionResponse(t))
}
