package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/pdf"
	"github.com/rs/zerolog"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
	docs     *services.DocumentService
	log      zerolog.Logger
}

func NewInvoiceHandler(invoices *services.InvoiceService, docs *services.DocumentService, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, docs: docs, log: log}
}

type itemsRequest struct {
	TaxRate float64              `json:"tax_rate"`
	Items   []services.ItemInput `json:"items"`
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// Create stores a new invoice. The response carries the reserved number,
// which may differ from the one proposed by NextNumber.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateInvoiceInput
	if !decode(w, r, &in) {
		return
	}
	inv, err := h.invoices.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Totals previews the totals of unsaved items.
func (h *InvoiceHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var in itemsRequest
	if !decode(w, r, &in) {
		return
	}
	httpx.JSON(w, http.StatusOK, h.invoices.Preview(in.Items, in.TaxRate))
}

func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"number": h.invoices.ProposeNumber(r.Context())})
}

func (h *InvoiceHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in itemsRequest
	if !decode(w, r, &in) {
		return
	}
	inv, err := h.invoices.UpdateItems(r.Context(), id, in.Items, in.TaxRate)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	status := models.InvoiceStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if err := h.invoices.SetStatus(r.Context(), id, status); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// PDF renders the invoice document. The language comes from the lang query
// parameter; when it is missing or unsupported the invoice's own language is used.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var lang i18n.Lang
	if l, ok := i18n.ParseOK(r.URL.Query().Get("lang")); ok {
		lang = l
	}
	art, err := h.docs.Generate(r.Context(), id, lang)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.Attachment(w, pdf.ContentType, art.Filename(), art.Data)
}
