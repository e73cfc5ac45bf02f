package http

import (
	"net/http"

	"github.com/atinyakov/xenon/internal/backend"
	"github.com/atinyakov/xenon/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the command boundary.
//
// Routes:
//
//	POST /api/add                     → h.Add
//	POST /api/delete                  → h.Delete
//	POST /api/edit                    → h.Edit
//	POST /api/get_all                 → h.GetAll
//	POST /api/get_only                → h.GetOnly
//	POST /api/get_row                 → h.GetRow
//	POST /api/change_master_password  → h.ChangeMasterPassword
//	POST /api/print                   → h.Print
//	POST /api/login                   → h.Login
//	POST /api/register                → h.Register
//
// Middleware chain (applied in order):
//  1. RequestID                        : adopts X-Request-Id or generates one
//  2. WithRequestLogging(logger)       : logs each request without its body
//  3. Recoverer                        : turns panics into 500
//  4. AllowContentType("application/json")
//  5. CertAuth(requireCert)            : client certificate identity
func NewRouter(h *CommandHandler, logger *zap.Logger, requireCert bool) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.CertAuth(requireCert))

	r.NotFound(UnknownCommand)

	r.Route("/api", func(r chi.Router) {
		r.Post("/"+backend.CmdRegister, h.Register)
		r.Post("/"+backend.CmdLogin, h.Login)
		r.Post("/"+backend.CmdPrint, h.Print)

		r.Post("/"+backend.CmdAdd, h.Add)
		r.Post("/"+backend.CmdDelete, h.Delete)
		r.Post("/"+backend.CmdEdit, h.Edit)
		r.Post("/"+backend.CmdGetAll, h.GetAll)
		r.Post("/"+backend.CmdGetOnly, h.GetOnly)
		r.Post("/"+backend.CmdGetRow, h.GetRow)
		r.Post("/"+backend.CmdChangeMasterPassword, h.ChangeMasterPassword)
	})

	return r
}
