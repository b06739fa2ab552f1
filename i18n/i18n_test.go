package i18n

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Lang{
		"en":    EN,
		"EN-gb": EN,
		"ar":    AR,
		"ar-EG": AR,
		"fr":    EN,
		"":      EN,
	}
	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseOK(t *testing.T) {
	if l, ok := ParseOK("ar-SA"); !ok || l != AR {
		t.Errorf("ParseOK(ar-SA) = %q,%v", l, ok)
	}
	for _, in := range []string{"fr", "", "not a tag"} {
		if l, ok := ParseOK(in); ok || l != Default {
			t.Errorf("ParseOK(%q) = %q,%v, want default and false", in, l, ok)
		}
	}
}

func TestDirectionAndCode(t *testing.T) {
	if EN.Direction() != LTR || AR.Direction() != RTL {
		t.Fatalf("unexpected directions")
	}
	if EN.Code() != "EN" || AR.Code() != "AR" {
		t.Fatalf("unexpected codes %s %s", EN.Code(), AR.Code())
	}
	if Lang("xx").Code() != "EN" {
		t.Fatalf("unknown lang should fall back to EN code")
	}
}

func TestTranslations(t *testing.T) {
	if T(EN, "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T(AR, "invoice") != "فاتورة" {
		t.Fatalf("expected arabic invoice heading")
	}
	// unknown code -> fallback to code
	if T(EN, "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation
	if T(Lang("es"), "required") != "Required" {
		t.Fatalf("expected en fallback for es lang")
	}
}
