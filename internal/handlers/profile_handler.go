package handlers

import (
	"net/http"

	"github.com/mroshb/hanglight/internal/middleware"
	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/services"
	"github.com/mroshb/hanglight/internal/session"
)

type meResponse struct {
	session.View
	WalletDisplay    string `json:"wallet_display"`
	HandleConforming bool   `json:"handle_conforming"`
}

// GetMe returns the caller's full view after provisioning.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	view := middleware.SessionFromContext(r.Context()).View()

	respondJSON(w, http.StatusOK, meResponse{
		View:             view,
		WalletDisplay:    services.FormatWalletAddress(view.Profile.WalletAddress),
		HandleConforming: view.Profile.HasConformingHandle(),
	})
}

func (h *Handler) ClaimHandle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Handle string `json:"handle"`
	}
	if !decode(w, r, &body) {
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.ClaimHandle(r.Context(), body.Handle), http.StatusOK)
}

func (h *Handler) SetWallet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address string `json:"address"`
	}
	if !decode(w, r, &body) {
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.SetWallet(r.Context(), body.Address), http.StatusOK)
}

func (h *Handler) SetStatusLight(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Light string `json:"light"`
	}
	if !decode(w, r, &body) {
		return
	}

	light, ok := models.ParseStatusLight(body.Light)
	if !ok {
		// let the presence service reject it with its own message
		light = models.StatusLight(body.Light)
	}

	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.SetStatusLight(r.Context(), light), http.StatusOK)
}

func (h *Handler) SetStatusMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &body) {
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	respondResult(w, sess, sess.SetStatusMessage(r.Context(), body.Message), http.StatusOK)
}
