// Package i18n holds the two document languages, their writing direction and
// the labels printed on generated invoices.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported document language.
type Lang string

const (
	EN Lang = "en"
	AR Lang = "ar"
)

// Default is used when no language is given or it is not supported.
const Default = EN

// Direction is the writing direction of a document.
type Direction int

const (
	LTR Direction = iota
	RTL
)

func (d Direction) String() string {
	if d == RTL {
		return "rtl"
	}
	return "ltr"
}

// Direction returns the writing direction of the language.
func (l Lang) Direction() Direction {
	if l == AR {
		return RTL
	}
	return LTR
}

// Code returns the fixed two-letter upper-case marker used in artifact names.
func (l Lang) Code() string {
	return strings.ToUpper(string(l.orDefault()))
}

// Valid reports whether l is one of the supported languages.
func (l Lang) Valid() bool {
	return l == EN || l == AR
}

func (l Lang) orDefault() Lang {
	if l.Valid() {
		return l
	}
	return Default
}

// Parse maps a language tag ("en", "ar-SA", "EN-gb") to a supported Lang.
// Unknown or malformed tags fall back to Default.
func Parse(s string) Lang {
	l, _ := ParseOK(s)
	return l
}

// ParseOK is Parse that also reports whether s named a supported language.
func ParseOK(s string) (Lang, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return Default, false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ar":
		return AR, true
	case "en":
		return EN, true
	}
	return Default, false
}

var catalog = map[Lang]map[string]string{
	EN: {
		"invoice":          "INVOICE",
		"invoice_number":   "Invoice #",
		"issue_date":       "Issue date",
		"due_date":         "Due date",
		"status":           "Status",
		"bill_to":          "Bill To",
		"description":      "Description",
		"quantity":         "Qty",
		"unit_price":       "Unit Price",
		"line_total":       "Total",
		"subtotal":         "Subtotal",
		"tax":              "Tax",
		"total":            "Total",
		"notes":            "Notes",
		"terms":            "Terms & Conditions",
		"generated_on":     "Generated on",
		"not_available":    "N/A",
		"table_error":      "Unable to display invoice items",
		"tax_id":           "Tax ID",
		"status_draft":     "Draft",
		"status_pending":   "Pending",
		"status_paid":      "Paid",
		"required":         "Required",
		"must_be_positive": "Must be positive",
	},
	AR: {
		"invoice":          "فاتورة",
		"invoice_number":   "رقم الفاتورة",
		"issue_date":       "تاريخ الإصدار",
		"due_date":         "تاريخ الاستحقاق",
		"status":           "الحالة",
		"bill_to":          "فاتورة إلى",
		"description":      "الوصف",
		"quantity":         "الكمية",
		"unit_price":       "سعر الوحدة",
		"line_total":       "المجموع",
		"subtotal":         "المجموع الفرعي",
		"tax":              "الضريبة",
		"total":            "الإجمالي",
		"notes":            "ملاحظات",
		"terms":            "الشروط والأحكام",
		"generated_on":     "تم الإنشاء في",
		"not_available":    "غير متوفر",
		"table_error":      "تعذر عرض بنود الفاتورة",
		"tax_id":           "الرقم الضريبي",
		"status_draft":     "مسودة",
		"status_pending":   "معلقة",
		"status_paid":      "مدفوعة",
		"required":         "مطلوب",
		"must_be_positive": "يجب أن يكون موجبًا",
	},
}

// T returns the label for key in lang, falling back to English, then to the key itself.
func T(lang Lang, key string) string {
	if s, ok := catalog[lang.orDefault()][key]; ok {
		return s
	}
	if s, ok := catalog[Default][key]; ok {
		return s
	}
	return key
}
