package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/auth"
	"github.com/waygalih/suratdesa/internal/letters"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/repository"
	"github.com/waygalih/suratdesa/internal/service"
)

type SubmissionHandler struct {
	subSvc *service.SubmissionService
	log    *zap.Logger
}

func NewSubmissionHandler(subSvc *service.SubmissionService, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{subSvc: subSvc, log: log}
}

func (h *SubmissionHandler) Letters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"letters": h.subSvc.Letters()})
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	var in letters.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "format request tidak valid")
		return
	}
	sub, err := h.subSvc.Create(r.Context(), chi.URLParam(r, "slug"), claims.UserID, in)
	var verr *letters.ValidationError
	switch {
	case errors.Is(err, letters.ErrUnknownLetter):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Data pengajuan belum lengkap.",
			"fields": verr.Fields,
		})
		return
	case err != nil:
		h.log.Error("create submission failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Gagal mengirim pengajuan.")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	path := models.NewRecordPath(chi.URLParam(r, "ownerId"), chi.URLParam(r, "recordId"))
	d, err := h.subSvc.Get(r.Context(), path)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Pengajuan tidak ditemukan.")
		return
	}
	if err != nil {
		h.log.Error("load submission failed", zap.Stringer("path", path), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Gagal memuat data pengajuan.")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
