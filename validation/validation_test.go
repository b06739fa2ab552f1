package validation

import "testing"

type line struct {
	Description string  `json:"description" validate:"notblank"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type form struct {
	ClientName string `json:"client_name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Status     string `json:"status" validate:"omitempty,oneof=draft pending paid"`
	Items      []line `json:"items" validate:"min=1,dive"`
}

func TestStruct(t *testing.T) {
	v := Struct(form{
		Email:  "nope",
		Status: "final",
		Items:  []line{{Description: " ", Quantity: 0, UnitPrice: -1}},
	})
	want := map[string]string{
		"client_name":          "required",
		"email":                "invalid_email",
		"status":               "invalid_choice",
		"items[0].description": "required",
		"items[0].quantity":    "must_be_positive",
		"items[0].unit_price":  "must_not_be_negative",
	}
	if len(v) != len(want) {
		t.Fatalf("violations = %v", v)
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s = %q, want %q", field, v[field], code)
		}
	}
}

func TestStruct_ValidAndEmptyItems(t *testing.T) {
	ok := form{ClientName: "ACME", Items: []line{{Description: "x", Quantity: 1}}}
	if v := Struct(ok); !v.Empty() {
		t.Errorf("unexpected violations %v", v)
	}
	if v := Struct(form{ClientName: "ACME"}); v["items"] != "too_short" {
		t.Errorf("items = %q, want too_short", v["items"])
	}
}

func TestBasicValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	NonNegativeFloat("price", -2, v)
	other := Violations{"extra": "invalid"}
	v.Merge(other)
	want := Violations{"name": "required", "price": "must_not_be_negative", "extra": "invalid"}
	for k, code := range want {
		if v[k] != code {
			t.Errorf("%s = %q, want %q", k, v[k], code)
		}
	}
}
