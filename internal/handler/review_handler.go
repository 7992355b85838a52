package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/waygalih/suratdesa/internal/auth"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/review"
)

// ReviewHandler drives the staff review screen. Each login session owns one
// review.Session in the registry.
type ReviewHandler struct {
	reg *review.Registry
}

func NewReviewHandler(reg *review.Registry) *ReviewHandler {
	return &ReviewHandler{reg: reg}
}

func (h *ReviewHandler) session(r *http.Request) *review.Session {
	claims := auth.GetUser(r.Context())
	return h.reg.GetOrEnter(r.Context(), claims.SessionID(), expiry(claims))
}

func expiry(c *auth.Claims) time.Time {
	if c.ExpiresAt == nil {
		return time.Now().Add(time.Hour)
	}
	return c.ExpiresAt.Time
}

// Enter starts a fresh review session and loads every submission.
func (h *ReviewHandler) Enter(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	s := h.reg.Enter(r.Context(), claims.SessionID(), expiry(claims))
	writeJSON(w, http.StatusOK, s.View())
}

func (h *ReviewHandler) View(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session(r).View())
}

func (h *ReviewHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Search string `json:"search" validate:"max=100"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s := h.session(r)
	s.SetSearch(req.Search)
	writeJSON(w, http.StatusOK, s.View())
}

func (h *ReviewHandler) SetStatusFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "format request tidak valid")
		return
	}
	f, err := review.ParseStatusFilter(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s := h.session(r)
	s.SetStatusFilter(f)
	writeJSON(w, http.StatusOK, s.View())
}

// SetPage accepts either an explicit page or a "next"/"prev" step.
func (h *ReviewHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int    `json:"page"`
		Step string `json:"step" validate:"omitempty,oneof=next prev"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s := h.session(r)
	switch req.Step {
	case "next":
		s.NextPage()
	case "prev":
		s.PrevPage()
	default:
		s.SetPage(req.Page)
	}
	writeJSON(w, http.StatusOK, s.View())
}

func recordPath(r *http.Request) models.RecordPath {
	return models.NewRecordPath(chi.URLParam(r, "ownerId"), chi.URLParam(r, "recordId"))
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Approve(r.Context(), recordPath(r)); err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *ReviewHandler) OpenReject(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.OpenReject(recordPath(r)); err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *ReviewHandler) SetReason(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason" validate:"max=500"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s := h.session(r)
	if err := s.SetReason(req.Reason); err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *ReviewHandler) ConfirmReject(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.ConfirmReject(r.Context()); err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *ReviewHandler) CloseReject(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.CloseReject()
	writeJSON(w, http.StatusOK, s.View())
}

func writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, review.ErrRecordNotFound.Error())
	case errors.Is(err, review.ErrNotPending):
		writeError(w, http.StatusConflict, review.ErrNotPending.Error())
	case errors.Is(err, review.ErrNoRejectDialog):
		writeError(w, http.StatusConflict, review.ErrNoRejectDialog.Error())
	case errors.Is(err, review.ErrReasonRequired):
		writeError(w, http.StatusUnprocessableEntity, review.MsgReasonRequired)
	case errors.Is(err, review.ErrPersistFailed):
		writeError(w, http.StatusBadGateway, review.MsgPersistFailed)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
