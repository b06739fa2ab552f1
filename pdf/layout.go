package pdf

import (
	"strconv"
	"strings"

	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/format"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/rs/zerolog"
)

// Page geometry in mm (A4 portrait).
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 15.0
	ContentWidth = PageWidth - 2*Margin

	lineHeight    = 5.0
	blockSpacing  = 6.0
	headerHeight  = 20.0
	footerReserve = 10.0
	// bottomLimit is the lowest y content may reach before a page break.
	bottomLimit = PageHeight - Margin - footerReserve
	footerY     = PageHeight - Margin - lineHeight

	bodySize    = 10.0
	headingSize = 12.0
	titleSize   = 18.0
	companySize = 20.0

	logoBoxWidth = 40.0

	summaryWidth   = 80.0
	summaryRowH    = 8.0
	summaryPadding = 2.0
	summaryHeight  = 3*summaryRowH + 2*summaryPadding
	summaryLabelW  = 40.0
)

// cursor tracks the vertical position and page while a document is laid out.
// Horizontal positions are given for left-to-right and mirrored on emission.
type cursor struct {
	dir  i18n.Direction
	y    float64
	page int
	doc  *Document
}

func newCursor(doc *Document) *cursor {
	c := &cursor{dir: doc.Direction, doc: doc}
	c.newPage()
	return c
}

// anchor is the x of the edge text grows from.
func (c *cursor) anchor() float64 {
	if c.dir == i18n.RTL {
		return PageWidth - Margin
	}
	return Margin
}

func (c *cursor) newPage() {
	c.doc.Pages = append(c.doc.Pages, Page{})
	c.page = len(c.doc.Pages) - 1
	c.y = Margin
}

// fits reports whether h more mm fit above the bottom limit on the current page.
func (c *cursor) fits(h float64) bool {
	return c.y+h <= bottomLimit
}

// ensure starts a new page unless h more mm fit. It reports whether a break happened.
func (c *cursor) ensure(h float64) bool {
	if c.fits(h) || c.y == Margin {
		return false
	}
	c.newPage()
	return true
}

func (c *cursor) advance(h float64) { c.y += h }

// emit appends op to the current page, mirroring it for right-to-left documents.
func (c *cursor) emit(op Op) {
	if c.dir == i18n.RTL {
		op.X = PageWidth - op.X - op.W
		if !op.Numeric {
			op.Align = op.Align.mirror()
		}
	}
	p := &c.doc.Pages[c.page]
	p.Ops = append(p.Ops, op)
}

func (c *cursor) text(x, w, h float64, s string, align Align, st Style) {
	c.emit(Op{Kind: OpText, X: x, Y: c.y, W: w, H: h, Text: s, Align: align, Style: st})
}

func (c *cursor) numeric(x, w, h float64, s string, st Style) {
	c.emit(Op{Kind: OpText, X: x, Y: c.y, W: w, H: h, Text: s, Align: AlignRight, Style: st, Numeric: true})
}

func (c *cursor) rect(x, w, h float64, st Style) {
	c.emit(Op{Kind: OpRect, X: x, Y: c.y, W: w, H: h, Style: st})
}

// line draws a full-width body line at the leading edge and advances.
func (c *cursor) line(s string, st Style) {
	c.text(Margin, ContentWidth, lineHeight, s, AlignLeft, st)
	c.advance(lineHeight)
}

// Engine lays out invoices.
type Engine struct {
	m   Measurer
	log zerolog.Logger
}

// NewEngine returns an engine measuring text with m.
func NewEngine(m Measurer, log zerolog.Logger) *Engine {
	return &Engine{m: m, log: log}
}

// Layout builds the document for data in the writing direction of its language.
func (e *Engine) Layout(data InvoiceData) *Document {
	if !data.Lang.Valid() {
		data.Lang = i18n.Default
	}
	return e.layout(data, data.Lang.Direction())
}

func (e *Engine) layout(data InvoiceData, dir i18n.Direction) *Document {
	doc := &Document{
		Name:        data.Name(),
		Lang:        data.Lang,
		Direction:   dir,
		GeneratedAt: data.GeneratedAt,
	}
	c := newCursor(doc)

	e.header(c, data)
	e.contact(c, data)
	e.title(c, data)
	e.client(c, data)
	e.safeTable(c, data)
	e.summary(c, data)
	e.wrappedBlock(c, i18n.T(data.Lang, "notes"), data.Notes)
	e.wrappedBlock(c, i18n.T(data.Lang, "terms"), data.Terms)
	e.footer(c, data)
	return doc
}

func (e *Engine) header(c *cursor, data InvoiceData) {
	drawn := false
	if len(data.Company.Logo) > 0 {
		logo, w, h, err := prepareLogo(data.Company.Logo, logoBoxWidth, headerHeight)
		if err != nil {
			e.log.Warn().Err(err).Str("invoice", data.InvoiceNumber).Msg("logo unusable, printing company name")
		} else {
			c.doc.Logo = logo
			c.emit(Op{Kind: OpImage, X: Margin, Y: c.y, W: w, H: h})
			drawn = true
		}
	}
	if !drawn {
		c.text(Margin, ContentWidth, headerHeight/2, data.Company.Name, AlignLeft, Style{Size: companySize, Bold: true})
	}
	c.advance(headerHeight)
}

func (e *Engine) contact(c *cursor, data InvoiceData) {
	co := data.Company
	lines := []string{oneLine(co.Address), co.Email, co.Phone, co.Website}
	if co.TaxNumber != "" {
		lines = append(lines, i18n.T(data.Lang, "tax_id")+": "+co.TaxNumber)
	}
	st := Style{Size: bodySize}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		c.line(l, st)
	}
	c.advance(blockSpacing)
}

// title is anchored to the edge opposite the body text.
func (e *Engine) title(c *cursor, data InvoiceData) {
	lang := data.Lang
	c.text(Margin, ContentWidth, 10, i18n.T(lang, "invoice"), AlignRight, Style{Size: titleSize, Bold: true})
	c.advance(10)

	meta := []string{
		i18n.T(lang, "invoice_number") + ": " + data.InvoiceNumber,
		i18n.T(lang, "issue_date") + ": " + format.Date(data.IssueDate, lang),
		i18n.T(lang, "due_date") + ": " + format.Date(data.DueDate, lang),
	}
	if s := models.InvoiceStatus(data.Status); s.Valid() {
		meta = append(meta, i18n.T(lang, "status")+": "+i18n.T(lang, "status_"+data.Status))
	}
	for _, m := range meta {
		c.text(Margin, ContentWidth, lineHeight, m, AlignRight, Style{Size: bodySize})
		c.advance(lineHeight)
	}
	c.advance(blockSpacing)
}

func (e *Engine) client(c *cursor, data InvoiceData) {
	c.line(i18n.T(data.Lang, "bill_to"), Style{Size: headingSize, Bold: true})
	for _, l := range []string{data.Client.Name, oneLine(data.Client.Address), data.Client.Email} {
		if strings.TrimSpace(l) == "" {
			continue
		}
		c.line(l, Style{Size: bodySize})
	}
	c.advance(blockSpacing)
}

func (e *Engine) summary(c *cursor, data InvoiceData) {
	c.ensure(summaryHeight)
	x := PageWidth - Margin - summaryWidth
	c.rect(x, summaryWidth, summaryHeight, Style{Border: true})

	top := c.y
	c.advance(summaryPadding)
	rows := []struct {
		label string
		value float64
		st    Style
	}{
		{i18n.T(data.Lang, "subtotal"), data.Subtotal, Style{Size: bodySize}},
		{i18n.T(data.Lang, "tax") + " (" + strconv.FormatFloat(data.TaxRate, 'f', -1, 64) + "%)", data.Tax, Style{Size: bodySize}},
		{i18n.T(data.Lang, "total"), data.Total, Style{Size: headingSize, Bold: true}},
	}
	for _, r := range rows {
		c.text(x+summaryPadding, summaryLabelW, summaryRowH, r.label, AlignLeft, r.st)
		c.numeric(x+summaryLabelW, summaryWidth-summaryLabelW-summaryPadding, summaryRowH, format.Currency(r.value, data.Currency), r.st)
		c.advance(summaryRowH)
	}
	c.y = top + summaryHeight
	c.advance(blockSpacing)
}

// wrappedBlock draws a heading and body text wrapped to the content width.
// Empty bodies are omitted. Long bodies continue on following pages.
func (e *Engine) wrappedBlock(c *cursor, heading, body string) {
	lines := wrapText(e.m, body, bodySize, ContentWidth)
	if len(lines) == 0 {
		return
	}
	c.ensure(2 * lineHeight)
	c.line(heading, Style{Size: headingSize, Bold: true})
	st := Style{Size: bodySize}
	for _, l := range lines {
		c.ensure(lineHeight)
		c.line(l, st)
	}
	c.advance(blockSpacing)
}

// footer stamps every page once all pages exist.
func (e *Engine) footer(c *cursor, data InvoiceData) {
	text := i18n.T(data.Lang, "generated_on") + " " + format.DateTime(data.GeneratedAt, data.Lang)
	for i := range c.doc.Pages {
		c.page = i
		c.y = footerY
		c.text(Margin, ContentWidth, lineHeight, text, AlignCenter, Style{Size: 8})
	}
}

func oneLine(s string) string {
	var parts []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
