package validation

import "testing"

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	OneOf("type", "bird", []string{"dog", "cat"}, v)
	OptionalOneOf("size", "", []string{"small"}, v)
	UUID("shelterId", "not-a-uuid", v)
	OptionalUUID("userId", "", v)
	Email("email", "nope", v)
	MinLen("password", "abc", 8, v)
	MaxLen("state", "abcdef", 2, v)
	RangeInt("pageSize", 101, 1, 100, v)
	NonNegativeInt("age", -1, v)

	want := map[string]string{
		"name":      "required",
		"type":      "invalid_value",
		"shelterId": "invalid_uuid",
		"email":     "invalid_email",
		"password":  "too_short",
		"state":     "too_long",
		"pageSize":  "out_of_range",
		"age":       "must_not_be_negative",
	}
	if len(v) != len(want) {
		t.Fatalf("expected %d violations, got %v", len(want), v)
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: expected %q, got %q", field, code, v[field])
		}
	}
}

func TestValidators_Pass(t *testing.T) {
	v := Violations{}
	Required("name", "Rex", v)
	OneOf("type", "dog", []string{"dog", "cat"}, v)
	UUID("id", "6f1c2a34-8a7e-4a53-9a41-5b1a0f6f2d11", v)
	Email("email", "ana@example.com", v)
	RangeInt("page", 1, 1, 100, v)
	if !v.Empty() {
		t.Errorf("expected no violations, got %v", v)
	}
}
