package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mroshb/hanglight/internal/middleware"
	"github.com/mroshb/hanglight/internal/services"
	"github.com/mroshb/hanglight/internal/session"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
	"gorm.io/gorm"
)

// Handler serves the JSON API. Every authenticated request carries its own
// session built by middleware.AuthMiddleware.
type Handler struct {
	svc *services.Services
	db  *gorm.DB
}

func NewHandler(svc *services.Services, db *gorm.DB) *Handler {
	return &Handler{svc: svc, db: db}
}

// NewRouter registers every route. Only /healthz is reachable without a
// bearer token.
func NewRouter(svc *services.Services, db *gorm.DB, jwtSecret string) *mux.Router {
	h := NewHandler(svc, db)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(middleware.AuthMiddleware(jwtSecret, svc))

	api.HandleFunc("/me", h.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/me/handle", h.ClaimHandle).Methods(http.MethodPut)
	api.HandleFunc("/me/wallet", h.SetWallet).Methods(http.MethodPut)
	api.HandleFunc("/me/status/light", h.SetStatusLight).Methods(http.MethodPut)
	api.HandleFunc("/me/status/message", h.SetStatusMessage).Methods(http.MethodPut)

	api.HandleFunc("/friends", h.ListFriends).Methods(http.MethodGet)
	api.HandleFunc("/friends/{id}", h.RemoveFriend).Methods(http.MethodDelete)
	api.HandleFunc("/friends/{id}/nickname", h.SetNickname).Methods(http.MethodPut)

	api.HandleFunc("/requests", h.ListRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests", h.SendRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/outbound", h.ListOutbound).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}/respond", h.RespondToRequest).Methods(http.MethodPost)

	return router
}

// Health pings the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		logger.Error("Health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type operationResponse struct {
	Message string       `json:"message"`
	View    session.View `json:"view"`
}

// respondResult writes the outcome of a session operation.
func respondResult(w http.ResponseWriter, sess *session.Session, res session.Result, successStatus int) {
	if !res.OK {
		err := res.Err
		if err == nil {
			err = errors.New(res.Code, res.Message)
		}
		respondError(w, errors.HTTPStatus(err), res.Code, res.Message)
		return
	}
	respondJSON(w, successStatus, operationResponse{Message: res.Message, View: sess.View()})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

// decode reads a JSON body into dst and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, errors.ErrCodeValidation, "invalid request body")
		return false
	}
	return true
}
