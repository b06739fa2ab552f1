package handlers

import (
	"net/http"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/rs/zerolog"
)

type CompanyHandler struct {
	settings *services.SettingsService
	log      zerolog.Logger
}

func NewCompanyHandler(settings *services.SettingsService, log zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{settings: settings, log: log}
}

// Show returns the company settings, or 404 before they are first saved.
func (h *CompanyHandler) Show(w http.ResponseWriter, r *http.Request) {
	cs, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cs)
}

// Update saves the company settings.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.SettingsInput
	if !decode(w, r, &in) {
		return
	}
	cs, err := h.settings.Save(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cs)
}
