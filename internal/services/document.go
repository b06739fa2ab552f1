package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/format"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/pdf"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// LogoLoader resolves CompanySettings.LogoURL to image bytes.
type LogoLoader func(ctx context.Context, ref string) ([]byte, error)

// FileLogoLoader reads logos from local files. Relative references resolve against dir.
func FileLogoLoader(dir string) LogoLoader {
	return func(_ context.Context, ref string) ([]byte, error) {
		if strings.Contains(ref, "://") {
			return nil, fmt.Errorf("unsupported logo reference %q", ref)
		}
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(dir, ref)
		}
		return os.ReadFile(ref)
	}
}

// DocumentService produces invoice documents.
type DocumentService struct {
	invoices *InvoiceService
	db       *gorm.DB
	engine   *pdf.Engine
	renderer pdf.Renderer
	logos    LogoLoader
	log      zerolog.Logger
	now      func() time.Time
}

func NewDocumentService(invoices *InvoiceService, db *gorm.DB, engine *pdf.Engine, renderer pdf.Renderer, logos LogoLoader, log zerolog.Logger) *DocumentService {
	return &DocumentService{invoices: invoices, db: db, engine: engine, renderer: renderer, logos: logos, log: log, now: time.Now}
}

// Generate renders invoice id in lang. An invalid lang selects the invoice's own language.
func (s *DocumentService) Generate(ctx context.Context, id uint, lang i18n.Lang) (pdf.Artifact, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return pdf.Artifact{}, err
	}
	var settings models.CompanySettings
	if err := s.db.WithContext(ctx).Order("id").Limit(1).Find(&settings).Error; err != nil {
		return pdf.Artifact{}, err
	}
	if !lang.Valid() {
		lang = i18n.Lang(inv.Language)
	}
	if !lang.Valid() {
		lang = i18n.Default
	}

	data := s.invoiceData(ctx, inv, &settings, lang)
	doc := s.engine.Layout(data)
	out, err := s.renderer.Render(doc)
	if err != nil {
		return pdf.Artifact{}, err
	}
	s.log.Info().Str("document", doc.Name).Int("pages", len(doc.Pages)).Msg("invoice document generated")
	return pdf.Artifact{Name: doc.Name, Lang: lang, Data: out}, nil
}

// invoiceData snapshots the invoice for layout. Totals are recomputed from the items.
func (s *DocumentService) invoiceData(ctx context.Context, inv *models.Invoice, cs *models.CompanySettings, lang i18n.Lang) pdf.InvoiceData {
	res := inv.Recompute()
	items := make([]pdf.InvoiceItem, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = pdf.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       res.LineTotals[i],
		}
	}

	currency := inv.Currency
	if currency == "" {
		currency = cs.Currency
	}
	terms := inv.Terms
	if strings.TrimSpace(terms) == "" {
		terms = cs.TermsAndConditions
	}

	data := pdf.InvoiceData{
		InvoiceNumber: inv.Number,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		Currency:      currency,
		Lang:          lang,
		TaxRate:       inv.TaxRate,
		Items:         items,
		Subtotal:      res.Subtotal,
		Tax:           res.Tax,
		Total:         res.Total,
		Notes:         inv.Notes,
		Terms:         terms,
		Company: pdf.CompanyData{
			Name:      cs.CompanyName,
			Address:   cs.Address,
			Email:     cs.Email,
			Phone:     format.Phone(cs.Phone, cs.Country),
			Website:   cs.Website,
			TaxNumber: cs.TaxNumber,
		},
		GeneratedAt: s.now(),
	}
	if inv.Client != nil {
		data.Client = pdf.ClientData{Name: inv.Client.Name, Address: inv.Client.FullAddress(), Email: inv.Client.Email}
	}
	if cs.LogoURL != "" && s.logos != nil {
		logo, err := s.logos(ctx, cs.LogoURL)
		if err != nil {
			s.log.Warn().Err(err).Str("logo", cs.LogoURL).Msg("logo not loaded")
		} else {
			data.Company.Logo = logo
		}
	}
	return data
}
