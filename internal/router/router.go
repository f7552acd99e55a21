package router

import (
	"net/http"

	"github.com/condopro/backend/internal/auth"
	"github.com/condopro/backend/internal/middleware"
	"github.com/condopro/backend/internal/reporting"
	"github.com/condopro/backend/internal/settings"
	"github.com/condopro/backend/internal/tickets"
)

// New returns an http.Handler that serves the API under /api/v1.
// Admin routes run through SessionAuth -> RequireAdmin; ticket submission
// accepts an optional session so anonymous visitors can file tickets too.
func New(
	authHandler *auth.Handler,
	ticketHandler *tickets.Handler,
	reportHandler *reporting.Handler,
	settingsHandler *settings.Handler,
	authSvc auth.Service,
) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	session := middleware.SessionAuth(authSvc)
	optional := middleware.OptionalSession(authSvc)
	admin := func(h http.HandlerFunc) http.Handler {
		return session(middleware.RequireAdmin(h))
	}

	// Public.
	mux.HandleFunc("POST "+base+"/auth/register", authHandler.Register)
	mux.HandleFunc("POST "+base+"/auth/login", authHandler.Login)
	mux.HandleFunc("POST "+base+"/auth/logout", authHandler.Logout)
	mux.Handle("POST "+base+"/tickets", optional(http.HandlerFunc(ticketHandler.Submit)))
	mux.HandleFunc("GET "+base+"/tickets/{protocol}", ticketHandler.Lookup)

	// Authenticated.
	mux.Handle("POST "+base+"/auth/change-password", session(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("GET "+base+"/tickets/mine", session(http.HandlerFunc(ticketHandler.ListMine)))

	// Admin.
	mux.Handle("GET "+base+"/admin/tickets/open", admin(ticketHandler.ListOpen))
	mux.Handle("GET "+base+"/admin/tickets/resolved", admin(ticketHandler.ListResolved))
	mux.Handle("PATCH "+base+"/admin/tickets/{protocol}/status", admin(ticketHandler.UpdateStatus))
	mux.Handle("DELETE "+base+"/admin/tickets/{protocol}", admin(ticketHandler.Delete))
	mux.Handle("GET "+base+"/admin/reports/resolved", admin(reportHandler.ResolvedSummary))
	mux.Handle("GET "+base+"/admin/reports/resolved/export", admin(reportHandler.ExportResolved))
	mux.Handle("POST "+base+"/admin/accounts", admin(authHandler.CreateAdmin))
	mux.Handle("GET "+base+"/admin/residents", admin(authHandler.ListResidents))
	mux.Handle("PATCH "+base+"/admin/residents/{username}/active", admin(authHandler.SetResidentActive))
	mux.Handle("DELETE "+base+"/admin/residents/{username}", admin(authHandler.DeleteResident))
	mux.Handle("GET "+base+"/admin/settings/{key}", admin(settingsHandler.Get))
	mux.Handle("PUT "+base+"/admin/settings/{key}", admin(settingsHandler.Set))

	return mux
}
