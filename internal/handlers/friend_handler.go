package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mroshb/hanglight/internal/middleware"
	"github.com/mroshb/hanglight/internal/models"
)

// ListFriends returns the caller's friends sorted by display name.
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, sess.View().Friends)
}

func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.RemoveFriend(r.Context(), mux.Vars(r)["id"]), http.StatusOK)
}

func (h *Handler) SetNickname(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
	}
	if !decode(w, r, &body) {
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.SetNickname(r.Context(), mux.Vars(r)["id"], body.Nickname), http.StatusOK)
}

// ListRequests returns pending requests addressed to the caller.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, sess.View().Requests)
}

// ListOutbound returns the caller's own pending requests.
func (h *Handler) ListOutbound(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, sess.View().Outbound)
}

func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
		Message    string `json:"message"`
	}
	if !decode(w, r, &body) {
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.SendRequest(r.Context(), body.Identifier, body.Message), http.StatusCreated)
}

func (h *Handler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Decision string `json:"decision"`
	}
	if !decode(w, r, &body) {
		return
	}

	decision, ok := models.ParseDecision(body.Decision)
	if !ok {
		decision = models.RequestStatus(body.Decision)
	}

	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.Respond(r.Context(), mux.Vars(r)["id"], decision), http.StatusOK)
}
