package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const logoImageName = "logo"

// Renderer draws Documents with gofpdf.
// Without FontPath the core Helvetica font is used, which cannot print Arabic glyphs.
type Renderer struct {
	FontPath string
}

// Render produces the PDF bytes of doc.
func (r Renderer) Render(doc *Document) ([]byte, error) {
	var (
		pdf    *gofpdf.Fpdf
		family = coreFamily
		tr     func(string) string
		err    error
	)
	if r.FontPath != "" {
		if pdf, err = newUTF8Pdf(r.FontPath); err != nil {
			return nil, err
		}
		family = utf8Family
		tr = func(s string) string { return s }
	} else {
		pdf = gofpdf.New("P", "mm", "A4", "")
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(doc.Name, true)
	pdf.SetCreator("go-billing", true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetDrawColor(160, 160, 160)

	if len(doc.Logo) > 0 {
		pdf.RegisterImageOptionsReader(logoImageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(doc.Logo))
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			drawOp(pdf, op, family, tr)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.Name, err)
	}
	return buf.Bytes(), nil
}

func drawOp(pdf *gofpdf.Fpdf, op Op, family string, tr func(string) string) {
	switch op.Kind {
	case OpRect:
		style := ""
		if op.Style.Fill {
			style += "F"
		}
		if op.Style.Border || style == "" {
			style += "D"
		}
		pdf.Rect(op.X, op.Y, op.W, op.H, style)
	case OpImage:
		pdf.ImageOptions(logoImageName, op.X, op.Y, op.W, op.H, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	case OpText:
		pdf.SetFont(family, fontStyle(op.Style.Bold), op.Style.Size)
		pdf.SetXY(op.X, op.Y)
		pdf.CellFormat(op.W, op.H, tr(op.Text), "", 0, alignString(op.Align), false, 0, "")
	}
}

func alignString(a Align) string {
	switch a {
	case AlignRight:
		return "RM"
	case AlignCenter:
		return "CM"
	}
	return "LM"
}
