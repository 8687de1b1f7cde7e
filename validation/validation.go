// Package validation collects field violations for request payloads.
package validation

import (
	"net/mail"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	if !slices.Contains(allowed, value) {
		v[field] = "invalid_value"
	}
}

// OptionalOneOf accepts an empty value.
func OptionalOneOf(field, value string, allowed []string, v Violations) {
	if value != "" {
		OneOf(field, value, allowed, v)
	}
}

func UUID(field, value string, v Violations) {
	if err := uuid.Validate(value); err != nil {
		v[field] = "invalid_uuid"
	}
}

// OptionalUUID accepts an empty value.
func OptionalUUID(field, value string, v Violations) {
	if value != "" {
		UUID(field, value, v)
	}
}

func Email(field, value string, v Violations) {
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

func MinLen(field, value string, n int, v Violations) {
	if len(value) < n {
		v[field] = "too_short"
	}
}

func MaxLen(field, value string, n int, v Violations) {
	if len(value) > n {
		v[field] = "too_long"
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}
