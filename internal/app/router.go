package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
	"github.com/comanda-erp/comanda-erp/internal/accounting/costcenters"
	"github.com/comanda-erp/comanda-erp/internal/accounting/journals"
	"github.com/comanda-erp/comanda-erp/internal/accounting/ledger"
	"github.com/comanda-erp/comanda-erp/internal/accounting/mappings"
	"github.com/comanda-erp/comanda-erp/internal/accounting/periods"
	"github.com/comanda-erp/comanda-erp/internal/accounting/reports"
	"github.com/comanda-erp/comanda-erp/internal/ap"
	"github.com/comanda-erp/comanda-erp/internal/ar"
	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

// Handlers collects every mounted HTTP handler.
type Handlers struct {
	Accounts    *accounts.Handler
	Mappings    *mappings.Handler
	Periods     *periods.Handler
	CostCenters *costcenters.Handler
	Journals    *journals.Handler
	Ledger      *ledger.Handler
	Reports     *reports.Handler
	Receivables *ar.Handler
	Payables    *ap.Handler
}

// NewRouter wires the middleware stack and mounts every module under the
// tenant-scoped API prefix.
func NewRouter(cfg *Config, log *slog.Logger, h Handlers) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: log, Config: cfg}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/businesses/{businessID}", func(r chi.Router) {
		r.Use(TenantMiddleware(log))
		r.Route("/accounts", h.Accounts.MountRoutes)
		r.Route("/account-mappings", h.Mappings.MountRoutes)
		r.Route("/periods", h.Periods.MountRoutes)
		r.Route("/cost-centers", h.CostCenters.MountRoutes)
		r.Route("/journal-entries", h.Journals.MountRoutes)
		r.Route("/ledger", h.Ledger.MountRoutes)
		r.Route("/reports", h.Reports.MountRoutes)
		r.Route("/receivables", h.Receivables.MountRoutes)
		r.Route("/payables", h.Payables.MountRoutes)
	})

	return r
}
