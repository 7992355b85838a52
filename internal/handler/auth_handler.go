package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/auth"
	"github.com/waygalih/suratdesa/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if errors.Is(err, service.ErrEmailTaken) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.log.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "gagal mendaftar")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.log.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "gagal masuk")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, auth.MsgLoginRequired)
		return
	}
	user, err := h.svc.Me(r.Context(), claims.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, auth.MsgLoginRequired)
		return
	}
	if err := h.svc.Logout(r.Context(), claims); err != nil {
		h.log.Error("logout failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "gagal keluar")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
