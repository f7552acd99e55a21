package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/condopro/backend/internal/models"
)

// Request/response structs use snake_case JSON.

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	Apartment string `json:"apartment"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token              string `json:"token"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	DisplayName        string `json:"display_name"`
	Apartment          string `json:"apartment"`
	MustChangePassword bool   `json:"must_change_password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type CreateAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type AccountResponse struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	FullName     string `json:"full_name"`
	Apartment    string `json:"apartment"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	RegisteredAt string `json:"registered_at"`
	Active       bool   `json:"active"`
}

// SessionResolver extracts the authenticated session from the request
// context; wired to middleware.SessionFromCtx in main.
type SessionResolver func(r *http.Request) *Session

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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" || req.FullName == "" || req.Apartment == "" || req.Email == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	acc, err := h.svc.Register(r.Context(), RegisterParams{
		Username:  req.Username,
		Password:  req.Password,
		FullName:  req.FullName,
		Apartment: req.Apartment,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			http.Error(w, "username, email or apartment already registered", http.StatusConflict)
			return
		}
		h.log.Error("register failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, accountToResponse(acc))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Identifier == "" || req.Password == "" {
		http.Error(w, "missing identifier or password", http.StatusBadRequest)
		return
	}
	sess, token, err := h.svc.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error("login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:              token,
		Username:           sess.Username,
		Role:               sess.Role,
		DisplayName:        sess.DisplayName,
		Apartment:          sess.Apartment,
		MustChangePassword: sess.MustChangePassword,
	})
}

// Logout exists so the presentation layer has an explicit teardown call.
// Tokens are stateless, so the server side has nothing to forget.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	if sess == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		http.Error(w, "missing old or new password", http.StatusBadRequest)
		return
	}
	err := h.svc.ChangePassword(r.Context(), sess.Username, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, "current password is incorrect", http.StatusUnauthorized)
	case errors.Is(err, ErrSamePassword):
		http.Error(w, "new password must differ from the current one", http.StatusBadRequest)
	default:
		h.log.Error("change password failed", "error", err)
		http.Error(w, "change password failed", http.StatusInternalServerError)
	}
}

func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "missing username or password", http.StatusBadRequest)
		return
	}
	acc, err := h.svc.RegisterAdmin(r.Context(), req.Username, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			http.Error(w, "username already exists", http.StatusConflict)
			return
		}
		h.log.Error("create admin failed", "error", err)
		http.Error(w, "create admin failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, accountToResponse(acc))
}

func (h *Handler) ListResidents(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListResidents(r.Context())
	if err != nil {
		h.log.Error("list residents failed", "error", err)
		http.Error(w, "list residents failed", http.StatusInternalServerError)
		return
	}
	resp := make([]AccountResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, accountToResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetResidentActive(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := h.svc.SetActive(r.Context(), username, req.Active)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	default:
		h.log.Error("set active failed", "error", err)
		http.Error(w, "set active failed", http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteResident(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	err := h.svc.DeleteAccount(r.Context(), username)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	default:
		h.log.Error("delete account failed", "error", err)
		http.Error(w, "delete account failed", http.StatusInternalServerError)
	}
}

func accountToResponse(a *models.Account) AccountResponse {
	resp := AccountResponse{
		Username:     a.Username,
		Role:         a.Role,
		FullName:     a.FullName,
		Apartment:    a.Apartment,
		RegisteredAt: a.RegisteredAt.Format("02/01/2006 15:04"),
		Active:       a.Active,
	}
	if a.Email != nil {
		resp.Email = *a.Email
	}
	if a.Phone != nil {
		resp.Phone = *a.Phone
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
