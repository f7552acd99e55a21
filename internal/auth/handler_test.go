package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/condopro/backend/internal/models"
)

func newTestHandler(t *testing.T, repo *mockAccountRepo, sess *Session) *Handler {
	t.Helper()
	resolver := func(*http.Request) *Session { return sess }
	return NewHandler(NewService(repo), resolver, nil)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	repo := newMockAccountRepo()
	h := newTestHandler(t, repo, nil)

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(t, h.Register, `{"username":"maria","password":"pw"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		w := postJSON(t, h.Register, `{
			"username":"maria","password":"pw123","full_name":"Maria Silva",
			"apartment":"101A","email":"maria@example.com","phone":"+55 11 99999-0000"
		}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
		var resp AccountResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Role != models.RoleResident || resp.Username != "maria" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("duplicate conflict", func(t *testing.T) {
		w := postJSON(t, h.Register, `{
			"username":"maria2","password":"pw123","full_name":"Other",
			"apartment":"101A","email":"other@example.com"
		}`)
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})
}

func TestLoginHandler(t *testing.T) {
	repo := newMockAccountRepo(residentAccount(t, "maria", "pw123", "101A", "maria@example.com"))
	h := newTestHandler(t, repo, nil)

	t.Run("success", func(t *testing.T) {
		w := postJSON(t, h.Login, `{"identifier":"101A","password":"pw123"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Token == "" || resp.Username != "maria" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := postJSON(t, h.Login, `{"identifier":"maria","password":"nope"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
		if strings.Contains(w.Body.String(), "password") {
			t.Errorf("error body must stay generic, got %q", w.Body.String())
		}
	})
}

func TestChangePasswordHandler(t *testing.T) {
	repo := newMockAccountRepo(residentAccount(t, "maria", "pw123", "101A", "maria@example.com"))
	sess := &Session{Username: "maria", Role: models.RoleResident}
	h := newTestHandler(t, repo, sess)

	t.Run("wrong current password", func(t *testing.T) {
		w := postJSON(t, h.ChangePassword, `{"old_password":"nope","new_password":"fresh"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("same password rejected", func(t *testing.T) {
		w := postJSON(t, h.ChangePassword, `{"old_password":"pw123","new_password":"pw123"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		w := postJSON(t, h.ChangePassword, `{"old_password":"pw123","new_password":"fresh"}`)
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
	})

	t.Run("no session", func(t *testing.T) {
		anon := newTestHandler(t, repo, nil)
		w := postJSON(t, anon.ChangePassword, `{"old_password":"fresh","new_password":"other"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}
