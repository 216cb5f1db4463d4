package main

import (
	"net/http"

	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/apperr"
	"github.com/tecnicanomade/riego/internal/auth"
	"github.com/tecnicanomade/riego/internal/config"
	"github.com/tecnicanomade/riego/internal/handlers"
	"github.com/tecnicanomade/riego/internal/httpx"
	"github.com/tecnicanomade/riego/internal/i18n"
	"github.com/tecnicanomade/riego/internal/policy"
	"github.com/tecnicanomade/riego/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	db      *gorm.DB
	authCfg auth.Config

	authHandler    *handlers.AuthHandler
	adminHandler   *handlers.AdminHandler
	clientHandler  *handlers.ClientHandler
	invoiceHandler *handlers.InvoiceHandler
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, cfg *config.Config) *App {
	authCfg := auth.Config{Secret: cfg.Auth.JWTSecret, TokenTTL: cfg.Auth.TokenTTL()}
	invoiceService := services.NewInvoiceService(db)

	app := &App{
		mux:            http.NewServeMux(),
		db:             db,
		authCfg:        authCfg,
		authHandler:    handlers.NewAuthHandler(db, authCfg),
		adminHandler:   handlers.NewAdminHandler(db),
		clientHandler:  handlers.NewClientHandler(db, invoiceService),
		invoiceHandler: handlers.NewInvoiceHandler(invoiceService),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := cors.AllowAll().Handler(
		withLanguage(auth.Middleware(a.authCfg)(a.mux)),
	)
	handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("POST /api/auth/login", a.authHandler.Login)
	a.mux.HandleFunc("POST /api/auth/register", a.authHandler.Register)

	// Authenticated routes
	a.mux.Handle("GET /api/auth/profile", a.requireAuth(http.HandlerFunc(a.authHandler.Profile)))

	// Admin surface
	ad := a.adminHandler
	iv := a.invoiceHandler
	a.mux.Handle("GET /api/admin/clients", a.requireAdmin(http.HandlerFunc(ad.ListClients)))
	a.mux.Handle("GET /api/admin/projects", a.requireAdmin(http.HandlerFunc(ad.ListProjects)))
	a.mux.Handle("PATCH /api/admin/projects/{id}/status", a.requireAdmin(http.HandlerFunc(ad.UpdateProjectStatus)))
	a.mux.Handle("GET /api/admin/projects/{id}/materials", a.requireAdmin(http.HandlerFunc(ad.ListProjectMaterials)))
	a.mux.Handle("POST /api/admin/projects/{id}/materials", a.requireAdmin(http.HandlerFunc(ad.AddProjectMaterial)))
	a.mux.Handle("DELETE /api/admin/projects/{project_id}/materials/{id}", a.requireAdmin(http.HandlerFunc(ad.RemoveProjectMaterial)))
	a.mux.Handle("GET /api/admin/stock", a.requireAdmin(http.HandlerFunc(ad.ListStock)))
	a.mux.Handle("POST /api/admin/stock", a.requireAdmin(http.HandlerFunc(ad.CreateStock)))
	a.mux.Handle("PATCH /api/admin/stock/{id}", a.requireAdmin(http.HandlerFunc(ad.UpdateStock)))
	a.mux.Handle("DELETE /api/admin/stock/{id}", a.requireAdmin(http.HandlerFunc(ad.DeleteStock)))
	a.mux.Handle("GET /api/admin/invoices", a.requireAdmin(http.HandlerFunc(iv.ListAll)))
	a.mux.Handle("POST /api/admin/invoices", a.requireAdmin(http.HandlerFunc(iv.Create)))
	a.mux.Handle("GET /api/admin/invoices/{id}/pdf", a.requireAdmin(http.HandlerFunc(iv.PDF)))

	// Client surface (authenticated, ownership-scoped inside the handlers)
	cl := a.clientHandler
	a.mux.Handle("GET /api/client/projects", a.requireAuth(http.HandlerFunc(cl.ListProjects)))
	a.mux.Handle("POST /api/client/projects", a.requireAuth(http.HandlerFunc(cl.CreateProject)))
	a.mux.Handle("GET /api/client/projects/{id}", a.requireAuth(http.HandlerFunc(cl.ProjectDetail)))
	a.mux.Handle("GET /api/client/materials", a.requireAuth(http.HandlerFunc(cl.ListMaterials)))
	a.mux.Handle("GET /api/client/invoices", a.requireAuth(http.HandlerFunc(cl.ListInvoices)))
	a.mux.Handle("POST /api/client/invoices/{id}/pay", a.requireAuth(http.HandlerFunc(cl.PayInvoice)))
	a.mux.Handle("GET /api/client/invoices/{id}/pdf", a.requireAuth(http.HandlerFunc(iv.PDF)))
}

// requireAuth wraps a handler to require a verified identity.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

// requireAdmin wraps a handler to require the admin role.
func (a *App) requireAdmin(next http.Handler) http.Handler {
	return auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())
		if err := policy.RequireAdmin(identity); err != nil {
			httpx.Error(w, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// withLanguage stores the negotiated language in the request context.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
