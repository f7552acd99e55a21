package tickets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/condopro/backend/internal/auth"
	"github.com/condopro/backend/internal/models"
	"github.com/condopro/backend/internal/reporting"
)

// Request/response structs use snake_case JSON. Evidence images travel as
// base64 strings (encoding/json's []byte encoding).

type SubmitRequest struct {
	Kind           string `json:"kind"`
	Category       string `json:"category"`
	LocationDetail string `json:"location_detail"`
	Description    string `json:"description"`
	Image          []byte `json:"image,omitempty"`
}

type SubmitResponse struct {
	Protocol    string `json:"protocol"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type TicketResponse struct {
	Protocol       string `json:"protocol"`
	Kind           string `json:"kind"`
	Category       string `json:"category"`
	LocationDetail string `json:"location_detail"`
	Description    string `json:"description"`
	Image          []byte `json:"image,omitempty"`
	Status         string `json:"status"`
	SubmittedAt    string `json:"submitted_at"`
	ResolvedAt     string `json:"resolved_at,omitempty"`
	ResolutionTime string `json:"resolution_time,omitempty"`
	SubmittedBy    string `json:"submitted_by"`
}

// SessionResolver extracts the authenticated session from the request
// context; wired to middleware.SessionFromCtx in main.
type SessionResolver func(r *http.Request) *auth.Session

type Handler struct {
	svc     Service
	session SessionResolver
	log     *slog.Logger
}

func NewHandler(svc Service, session SessionResolver, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, session: session, log: log}
}

// Submit accepts both anonymous and authenticated submissions.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	submitter := ""
	if sess := h.session(r); sess != nil {
		submitter = sess.Username
	}
	t, err := h.svc.Submit(r.Context(), SubmitParams{
		Kind:           req.Kind,
		Category:       req.Category,
		LocationDetail: req.LocationDetail,
		Description:    req.Description,
		Image:          req.Image,
		Submitter:      submitter,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyDescription):
			http.Error(w, "description is required", http.StatusBadRequest)
		case errors.Is(err, ErrInvalidKind):
			http.Error(w, "invalid ticket kind", http.StatusBadRequest)
		default:
			h.log.Error("submit ticket failed", "error", err)
			http.Error(w, "submit failed", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{
		Protocol:    t.Protocol,
		Status:      t.Status,
		SubmittedAt: reporting.FormatTimestamp(t.SubmittedAt),
	})
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Lookup(r.Context(), r.PathValue("protocol"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "protocol not found", http.StatusNotFound)
			return
		}
		h.log.Error("lookup failed", "error", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ticketToResponse(t))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	if sess == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListBySubmitter(r.Context(), sess.Username)
	if err != nil {
		h.log.Error("list own tickets failed", "error", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ticketsToResponse(list))
}

func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListOpen(r.Context())
	if err != nil {
		h.log.Error("list open tickets failed", "error", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ticketsToResponse(list))
}

func (h *Handler) ListResolved(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListResolved(r.Context())
	if err != nil {
		h.log.Error("list resolved tickets failed", "error", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ticketsToResponse(list))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := h.svc.UpdateStatus(r.Context(), r.PathValue("protocol"), req.Status)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrInvalidStatus):
		http.Error(w, "invalid status", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "protocol not found", http.StatusNotFound)
	default:
		h.log.Error("update status failed", "error", err)
		http.Error(w, "update failed", http.StatusInternalServerError)
	}
}

// Delete is a single idempotent call; the two-step confirmation lives in the
// presentation layer, not here.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), r.PathValue("protocol"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "protocol not found", http.StatusNotFound)
	default:
		h.log.Error("delete ticket failed", "error", err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
	}
}

func ticketToResponse(t *models.Ticket) TicketResponse {
	resp := TicketResponse{
		Protocol:       t.Protocol,
		Kind:           t.Kind,
		Category:       t.Category,
		LocationDetail: t.LocationDetail,
		Description:    t.Description,
		Image:          t.EvidenceImage,
		Status:         t.Status,
		SubmittedAt:    reporting.FormatTimestamp(t.SubmittedAt),
		SubmittedBy:    t.SubmittedBy,
	}
	if t.ResolvedAt != nil {
		resp.ResolvedAt = reporting.FormatTimestamp(*t.ResolvedAt)
		resp.ResolutionTime = reporting.ResolutionDuration(resp.SubmittedAt, resp.ResolvedAt)
	}
	return resp
}

func ticketsToResponse(list []*models.Ticket) []TicketResponse {
	resp := make([]TicketResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, ticketToResponse(t))
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
