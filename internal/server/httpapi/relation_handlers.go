package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/vidora/vidora/internal/model"
)

type toggleRequest struct {
	Kind     string `json:"kind"`
	TargetID string `json:"targetId"`
}

type toggleResponse struct {
	Present bool `json:"present"`
}

// handleToggle flips a like/subscription relation for the authenticated
// actor. The operation is a pure presence flip, so a client that timed out on
// its previous attempt can retry blindly.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := UserIDFromCtx(r.Context())
	if !ok {
		s.writeError(w, r, http.StatusUnauthorized, "missing identity")
		return
	}
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	kind := model.RelationKind(req.Kind)
	if !kind.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "unknown relation kind")
		return
	}
	targetID, err := uuid.FromString(req.TargetID)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid target id")
		return
	}
	present, err := s.relations.Toggle(r.Context(), actorID, kind, targetID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toggleResponse{Present: present})
}

type likesResponse struct {
	TargetIDs []string `json:"targetIds"`
}

// handleListLikes returns the target set for the authenticated actor, e.g.
// GET /likes/video-like for "liked videos".
func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	actorID, ok := UserIDFromCtx(r.Context())
	if !ok {
		s.writeError(w, r, http.StatusUnauthorized, "missing identity")
		return
	}
	kind := model.RelationKind(mux.Vars(r)["kind"])
	if !kind.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "unknown relation kind")
		return
	}
	targets, err := s.relations.ListByActor(r.Context(), actorID, kind)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	ids := make([]string, 0, len(targets))
	for _, id := range targets {
		ids = append(ids, id.String())
	}
	s.writeJSON(w, http.StatusOK, likesResponse{TargetIDs: ids})
}
