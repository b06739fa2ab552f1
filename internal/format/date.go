package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-billing/i18n"
)

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate accepts the layouts the forms and the JSON API produce.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date renders t in the calendar convention of lang.
// The zero time renders as the language's "not available" marker.
func Date(t time.Time, lang i18n.Lang) string {
	if t.IsZero() {
		return i18n.T(lang, "not_available")
	}
	if lang == i18n.AR {
		return fmt.Sprintf("%d %s %d", t.Day(), arabicMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}

// DateString parses s and renders it with Date.
// Unparseable input renders as the "not available" marker.
func DateString(s string, lang i18n.Lang) string {
	t, ok := ParseDate(s)
	if !ok {
		return i18n.T(lang, "not_available")
	}
	return Date(t, lang)
}

// DateTime renders a timestamp for document footers.
func DateTime(t time.Time, lang i18n.Lang) string {
	if t.IsZero() {
		return i18n.T(lang, "not_available")
	}
	return Date(t, lang) + " " + t.Format("15:04")
}
