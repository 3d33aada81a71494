package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/contanube/contanube/internal/auth"
	"github.com/contanube/contanube/internal/billing"
	"github.com/contanube/contanube/internal/ledger"
	"github.com/contanube/contanube/internal/shared"
	"github.com/contanube/contanube/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	BillingHandler *billing.Handler
	LedgerHandler  *ledger.Handler
	RequireUser    func(http.Handler) http.Handler
}

// NewRouter constructs the chi.Router with Contanube defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:          params.Logger,
		Config:          params.Config,
		SessionManager:  params.SessionManager,
		CSRFManager:     params.CSRFManager,
		CSRFExemptPaths: []string{billing.WebhookPath},
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/billing", func(r chi.Router) {
		params.BillingHandler.MountRoutes(r, params.RequireUser)
	})
	r.Route("/ledger", func(r chi.Router) {
		r.Use(params.RequireUser)
		params.LedgerHandler.MountRoutes(r)
	})

	static, err := fs.Sub(web.Static, "static")
	if err == nil {
		r.Handle("/*", http.FileServer(http.FS(static)))
	} else if params.Logger != nil {
		params.Logger.Warn("static assets unavailable", slog.Any("error", err))
	}

	return r
}
