package main

import (
	"net/http"
	"time"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/format"
	"github.com/diewo77/go-billing/internal/handlers"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/rs/zerolog"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	b   *backend
	log zerolog.Logger
}

// NewApp creates a new application with all routes configured.
func NewApp(b *backend, log zerolog.Logger) *App {
	app := &App{mux: http.NewServeMux(), b: b, log: log}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withLogging(a.log, a.mux).ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	hlog := a.log.With().Str("component", "http").Logger()
	ih := handlers.NewInvoiceHandler(a.b.invoices, a.b.docs, hlog)
	ch := handlers.NewClientHandler(a.b.db, hlog)
	ph := handlers.NewProductHandler(a.b.db, hlog)
	sh := handlers.NewCompanyHandler(a.b.settings, hlog)

	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("GET /dashboard", a.dashboard)

	// Invoices
	a.mux.HandleFunc("GET /invoices", ih.List)
	a.mux.HandleFunc("POST /invoices", ih.Create)
	a.mux.HandleFunc("GET /invoices/next-number", ih.NextNumber)
	a.mux.HandleFunc("POST /invoices/totals", ih.Totals)
	a.mux.HandleFunc("GET /invoices/{id}", ih.View)
	a.mux.HandleFunc("POST /invoices/{id}/items", ih.UpdateItems)
	a.mux.HandleFunc("POST /invoices/{id}/status", ih.SetStatus)
	a.mux.HandleFunc("GET /invoices/{id}/pdf", ih.PDF)

	// Clients
	a.mux.HandleFunc("GET /clients", ch.List)
	a.mux.HandleFunc("POST /clients", ch.Create)

	// Products
	a.mux.HandleFunc("GET /products", ph.List)
	a.mux.HandleFunc("POST /products", ph.Create)
	a.mux.HandleFunc("GET /products/{id}", ph.View)
	a.mux.HandleFunc("POST /products/{id}/delete", ph.Delete)

	// Company Settings
	a.mux.HandleFunc("GET /settings", sh.Show)
	a.mux.HandleFunc("POST /settings", sh.Update)
}

func (a *App) dashboard(w http.ResponseWriter, r *http.Request) {
	db := a.b.db.WithContext(r.Context())

	var productCount, clientCount, invoiceCount int64
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.Client{}).Count(&clientCount)
	db.Model(&models.Invoice{}).Count(&invoiceCount)

	var recent []models.Invoice
	db.Preload("Client").Order("created_at DESC").Limit(5).Find(&recent)

	revenue, err := a.b.invoices.Revenue(r.Context())
	if err != nil {
		a.log.Error().Err(err).Msg("revenue")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	currency := format.DefaultCurrency
	var cs models.CompanySettings
	if db.Order("id").Limit(1).Find(&cs).RowsAffected > 0 && cs.Currency != "" {
		currency = cs.Currency
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"stats": map[string]any{
			"products": productCount,
			"clients":  clientCount,
			"invoices": invoiceCount,
			"revenue":  format.Currency(revenue, currency),
		},
		"next_number":     a.b.invoices.ProposeNumber(r.Context()),
		"recent_invoices": recent,
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(log.WithContext(r.Context())))
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
