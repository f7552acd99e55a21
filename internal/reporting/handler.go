package reporting

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) ResolvedSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.ResolvedSummary(r.Context())
	if err != nil {
		h.log.Error("resolved summary failed", "error", err)
		http.Error(w, "report failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(summary)
}

func (h *Handler) ExportResolved(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportXLSX(r.Context())
	if err != nil {
		h.log.Error("report export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	filename := fmt.Sprintf("resolved-tickets-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
