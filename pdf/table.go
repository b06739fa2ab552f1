package pdf

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/format"
)

const (
	tableHeaderH = 8.0
	cellPadding  = 1.5
	// maxRowLines caps a description so that a single row always fits on a page.
	maxRowLines = 30
)

// column of the item table, in left-to-right order.
type column struct {
	key     string
	width   float64
	numeric bool
}

// the description column takes the width left by the fixed numeric columns.
var columns = []column{
	{key: "description", width: ContentWidth - 20 - 35 - 35},
	{key: "quantity", width: 20, numeric: true},
	{key: "unit_price", width: 35, numeric: true},
	{key: "line_total", width: 35, numeric: true},
}

var errNonFinite = errors.New("non-finite amount")

type tableRow struct {
	desc  []string
	cells [3]string
}

// safeTable draws the item table. Any failure is replaced by a single error line
// and the rest of the document is still produced.
func (e *Engine) safeTable(c *cursor, data InvoiceData) {
	rows, err := e.tableRows(data)
	if err == nil {
		e.drawTable(c, data.Lang, rows)
	} else {
		e.log.Warn().Err(err).Str("invoice", data.InvoiceNumber).Msg("item table replaced by error line")
		c.ensure(lineHeight)
		c.line(i18n.T(data.Lang, "table_error"), Style{Size: bodySize, Bold: true})
	}
	c.advance(blockSpacing)
}

// tableRows validates and formats every row before anything is drawn, so a
// failure never leaves a half-drawn table behind.
func (e *Engine) tableRows(data InvoiceData) (rows []tableRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("build table: %v", r)
		}
	}()
	descWidth := columns[0].width - 2*cellPadding
	for i, it := range data.Items {
		for _, v := range []float64{it.Quantity, it.UnitPrice, it.Total} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("item %d: %w", i+1, errNonFinite)
			}
		}
		desc := wrapText(e.m, it.Description, bodySize, descWidth)
		if len(desc) == 0 {
			desc = []string{""}
		}
		if len(desc) > maxRowLines {
			desc = desc[:maxRowLines]
			desc[maxRowLines-1] = ellipsize(e.m, desc[maxRowLines-1], bodySize, descWidth)
		}
		rows = append(rows, tableRow{
			desc: desc,
			cells: [3]string{
				strconv.FormatFloat(it.Quantity, 'f', -1, 64),
				format.Currency(it.UnitPrice, data.Currency),
				format.Currency(it.Total, data.Currency),
			},
		})
	}
	return rows, nil
}

func (e *Engine) drawTable(c *cursor, lang i18n.Lang, rows []tableRow) {
	c.ensure(tableHeaderH + lineHeight + 2*cellPadding)
	e.tableHeader(c, lang)
	for _, r := range rows {
		h := float64(len(r.desc))*lineHeight + 2*cellPadding
		if c.ensure(h) {
			e.tableHeader(c, lang)
		}
		x := Margin
		for i, col := range columns {
			c.rect(x, col.width, h, Style{Border: true})
			if i == 0 {
				top := c.y
				c.y += cellPadding
				for _, l := range r.desc {
					c.text(x+cellPadding, col.width-2*cellPadding, lineHeight, l, AlignLeft, Style{Size: bodySize})
					c.y += lineHeight
				}
				c.y = top
			} else {
				c.y += cellPadding
				c.numeric(x+cellPadding, col.width-2*cellPadding, lineHeight, r.cells[i-1], Style{Size: bodySize})
				c.y -= cellPadding
			}
			x += col.width
		}
		c.advance(h)
	}
}

// tableHeader draws the filled header row; it is repeated after every page break.
func (e *Engine) tableHeader(c *cursor, lang i18n.Lang) {
	x := Margin
	for _, col := range columns {
		c.rect(x, col.width, tableHeaderH, Style{Fill: true, Border: true})
		label := i18n.T(lang, col.key)
		st := Style{Size: bodySize, Bold: true}
		if col.numeric {
			c.numeric(x+cellPadding, col.width-2*cellPadding, tableHeaderH, label, st)
		} else {
			c.text(x+cellPadding, col.width-2*cellPadding, tableHeaderH, label, AlignLeft, st)
		}
		x += col.width
	}
	c.advance(tableHeaderH)
}
