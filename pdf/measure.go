package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

const (
	coreFamily = "Helvetica"
	utf8Family = "DocFont"
)

// Measurer returns the printed width, in mm, of a single line of text.
type Measurer interface {
	TextWidth(text string, size float64, bold bool) float64
}

// FontMeasurer measures text with gofpdf font metrics.
// It is safe for concurrent use.
type FontMeasurer struct {
	mu     sync.Mutex
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

// CoreMeasurer measures with the built-in Helvetica metrics.
func CoreMeasurer() *FontMeasurer {
	pdf := gofpdf.New("P", "mm", "A4", "")
	return &FontMeasurer{pdf: pdf, family: coreFamily, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// NewFontMeasurer measures with the UTF-8 TrueType font at fontPath, or with the
// core font when fontPath is empty. Render must be given the same font.
func NewFontMeasurer(fontPath string) (*FontMeasurer, error) {
	if fontPath == "" {
		return CoreMeasurer(), nil
	}
	pdf, err := newUTF8Pdf(fontPath)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{pdf: pdf, family: utf8Family, tr: func(s string) string { return s }}, nil
}

func newUTF8Pdf(fontPath string) (*gofpdf.Fpdf, error) {
	if _, err := os.Stat(fontPath); err != nil {
		return nil, fmt.Errorf("font %s: %w", fontPath, err)
	}
	pdf := gofpdf.New("P", "mm", "A4", filepath.Dir(fontPath))
	base := filepath.Base(fontPath)
	pdf.AddUTF8Font(utf8Family, "", base)
	pdf.AddUTF8Font(utf8Family, "B", base)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load font %s: %w", fontPath, err)
	}
	return pdf, nil
}

// TextWidth implements Measurer.
func (m *FontMeasurer) TextWidth(text string, size float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(m.family, fontStyle(bold), size)
	return m.pdf.GetStringWidth(m.tr(text))
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// wrapText breaks text into lines no wider than width. Explicit newlines start
// a new line, blank lines are kept, and words wider than width are split.
func wrapText(m Measurer, text string, size, width float64) []string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	if text == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			for m.TextWidth(w, size, false) > width && utf8.RuneCountInString(w) > 1 {
				head, tail := splitToWidth(m, w, size, width)
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, head)
				w = tail
			}
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if line != "" && m.TextWidth(candidate, size, false) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

const ellipsis = "…"

// ellipsize drops trailing runes from line until it fits width with an ellipsis appended.
func ellipsize(m Measurer, line string, size, width float64) string {
	runes := []rune(strings.TrimRight(line, " "))
	for len(runes) > 0 && m.TextWidth(string(runes)+ellipsis, size, false) > width {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + ellipsis
}

// splitToWidth returns the longest prefix of w fitting width (at least one rune) and the rest.
func splitToWidth(m Measurer, w string, size, width float64) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && m.TextWidth(string(runes[:n+1]), size, false) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
