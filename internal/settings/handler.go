package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/condopro/backend/internal/models"
)

type SetRequest struct {
	Value string `json:"value"`
}

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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	value, err := h.svc.Get(r.Context(), key)
	if err != nil {
		h.log.Error("get setting failed", "key", key, "error", err)
		http.Error(w, "get setting failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(models.Setting{Key: key, Value: value})
}

func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req SetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.svc.Set(r.Context(), key, req.Value); err != nil {
		h.log.Error("set setting failed", "key", key, "error", err)
		http.Error(w, "set setting failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
