// Package pdf lays out invoices as positioned drawing operations and renders
// them to PDF.
//
// Layout and rendering are separate steps. Engine.Layout is a pure function of
// its input: the same InvoiceData always yields the same Document. Render turns
// a Document into bytes with gofpdf.
package pdf

import (
	"time"

	"github.com/diewo77/go-billing/i18n"
)

// ContentType is the MIME type of rendered artifacts.
const ContentType = "application/pdf"

// InvoiceItem is one line of the item table.
type InvoiceItem struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

// ClientData is the bill-to party. Empty optional fields are not printed.
type ClientData struct {
	Name    string
	Address string
	Email   string
}

// CompanyData is the issuing company. Empty optional fields are not printed.
type CompanyData struct {
	Name      string
	Address   string
	Email     string
	Phone     string
	Website   string
	TaxNumber string
	// Logo holds raw image bytes (PNG, JPEG or GIF).
	Logo []byte
}

// InvoiceData is the snapshot an invoice document is built from.
// Amounts are already computed; the engine only formats them.
type InvoiceData struct {
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Status        string
	Currency      string
	Lang          i18n.Lang
	TaxRate       float64
	Items         []InvoiceItem
	Subtotal      float64
	Tax           float64
	Total         float64
	Notes         string
	Terms         string
	Client        ClientData
	Company       CompanyData
	// GeneratedAt is printed in the footer of every page.
	GeneratedAt time.Time
}

// Name returns the artifact name, Invoice-{number}-{LANG}.
func (d InvoiceData) Name() string {
	return "Invoice-" + d.InvoiceNumber + "-" + d.Lang.Code()
}

// OpKind is the kind of a drawing operation.
type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpImage
)

// Align is the horizontal alignment of text inside its cell.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

func (a Align) mirror() Align {
	switch a {
	case AlignLeft:
		return AlignRight
	case AlignRight:
		return AlignLeft
	}
	return a
}

// Style holds font and box attributes of an operation.
type Style struct {
	Size   float64
	Bold   bool
	Fill   bool
	Border bool
}

// Op is a single drawing instruction in page coordinates (mm, origin top-left).
// Text is drawn inside the cell X,Y,W,H with the given alignment.
type Op struct {
	Kind  OpKind
	X     float64
	Y     float64
	W     float64
	H     float64
	Text  string
	Align Align
	Style Style
	// Numeric cells keep right alignment in both directions.
	Numeric bool
}

// Page is the ordered list of operations drawn on one page.
type Page struct {
	Ops []Op
}

// Document is a laid out invoice.
type Document struct {
	Name        string
	Lang        i18n.Lang
	Direction   i18n.Direction
	GeneratedAt time.Time
	// Logo is the normalised PNG referenced by OpImage operations.
	Logo  []byte
	Pages []Page
}

// Artifact is a rendered document.
type Artifact struct {
	Name string
	Lang i18n.Lang
	Data []byte
}

// Filename returns the download name of the artifact.
func (a Artifact) Filename() string { return a.Name + ".pdf" }
