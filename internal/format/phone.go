package format

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// Phone renders a phone number in international format when it can be parsed,
// and returns the trimmed input otherwise. region is an ISO 3166 code used for
// numbers written without a country prefix.
func Phone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.INTERNATIONAL)
}
