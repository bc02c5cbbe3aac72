package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-user-registration/internal/application/registration"
	"github.com/go-user-registration/internal/domain"
	"github.com/go-user-registration/internal/pkg/validate"
)

type RegisterRequest struct {
	Email string `json:"email" validate:"required"`
}

type DeleteUsersRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,required"`
}

// UserHandler handles registration and deletion endpoints.
type UserHandler struct {
	svc registration.Service
}

func NewUserHandler(svc registration.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Register(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "user registered"})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, UsersEnvelope{
		Database: h.svc.DatabaseName(),
		Count:    len(users),
		Data:     users,
	})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email path parameter")
		return
	}
	if err := h.svc.DeleteUser(r.Context(), email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}

// DeleteMany stops at the first missing address; earlier deletions are kept.
func (h *UserHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req DeleteUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.DeleteUsers(r.Context(), req.Emails); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "users deleted"})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserAlreadyRegistered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailDeliveryFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrMissingDestination), errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
