package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/validation"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewProductHandler(db *gorm.DB, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{db: db, log: log}
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	IsActive    *bool   `json:"is_active"`
}

// List returns active products matching the optional q filter, 20 per page.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 20
	offset := (page - 1) * limit

	db := h.db.WithContext(r.Context()).Model(&models.Product{}).Where("is_active = ?", true)
	if query != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+query+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	var products []models.Product
	if err := db.Order("name").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		writeError(w, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"products": products,
		"page":     page,
		"total":    total,
		"limit":    limit,
	})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in productRequest
	if !decode(w, r, &in) {
		return
	}
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.NonNegativeFloat("unit_price", in.UnitPrice, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	product := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		UnitPrice:   in.UnitPrice,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	db := h.db.WithContext(r.Context())
	if err := db.Create(&product).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	// gorm skips zero values on create, so the column default would win
	if !product.IsActive {
		if err := db.Model(&product).Update("is_active", false).Error; err != nil {
			writeError(w, h.log, err)
			return
		}
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var product models.Product
	err := h.db.WithContext(r.Context()).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete soft-deletes a product. Invoices keep their copied lines.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.db.WithContext(r.Context()).Delete(&models.Product{}, id)
	if res.Error != nil {
		writeError(w, h.log, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
