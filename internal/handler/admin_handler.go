package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/repository"
	"github.com/waygalih/suratdesa/internal/review"
)

// AdminHandler exposes store maintenance to staff.
type AdminHandler struct {
	subs     repository.SubmissionStore
	indexers []repository.Indexer
	log      *zap.Logger
}

func NewAdminHandler(subs repository.SubmissionStore, indexers []repository.Indexer, log *zap.Logger) *AdminHandler {
	return &AdminHandler{subs: subs, indexers: indexers, log: log}
}

// EnsureIndexes re-runs index creation on every store that needs it.
func (h *AdminHandler) EnsureIndexes(w http.ResponseWriter, r *http.Request) {
	for _, ix := range h.indexers {
		if err := ix.EnsureIndexes(r.Context()); err != nil {
			h.log.Error("ensure indexes failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"indexed": len(h.indexers)})
}

// Stats counts submissions straight from the store, bypassing any review
// session.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.FindAll(r.Context())
	if err != nil {
		h.log.Error("stats fetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Gagal memuat data pengajuan.")
		return
	}
	stats := review.ComputeStats(subs)
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "items": stats.Items()})
}
