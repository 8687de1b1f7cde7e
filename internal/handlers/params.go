// Package handlers implements the JSON API of the adoption platform.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/diewo77/go-adopt/validation"
)

// Optional tells an absent JSON field apart from an explicit null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Ptr returns nil for an absent or null field.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// setNullable records a change for column when the field was sent.
// An explicit null clears the column.
func setNullable[T any](changes map[string]any, column string, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		changes[column] = nil
		return
	}
	changes[column] = o.Value
}

// setRequired records a change for a NOT NULL column. A null is a violation.
func setRequired[T any](changes map[string]any, field, column string, o Optional[T], v validation.Violations) {
	if !o.Set {
		return
	}
	if o.Null {
		v[field] = "required"
		return
	}
	changes[column] = o.Value
}

var orderDirections = []string{"asc", "desc"}

// parseQuery reads the shared list parameters.
func parseQuery(q url.Values, orderFields []string, v validation.Violations) services.QueryParams {
	p := services.QueryParams{
		Page:           intParam(q, "page", 1, math.MaxInt32, v),
		PageSize:       intParam(q, "pageSize", 1, services.MaxPageSize, v),
		OrderBy:        q.Get("orderBy"),
		OrderDirection: q.Get("orderDirection"),
		Search:         q.Get("search"),
	}
	validation.OptionalOneOf("orderBy", p.OrderBy, orderFields, v)
	validation.OptionalOneOf("orderDirection", p.OrderDirection, orderDirections, v)
	return p
}

func intParam(q url.Values, key string, minVal, maxVal int, v validation.Violations) int {
	raw := q.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v[key] = "invalid_number"
		return 0
	}
	validation.RangeInt(key, n, minVal, maxVal, v)
	return n
}

func boolParam(q url.Values, key string, v validation.Violations) *bool {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		v[key] = "invalid_bool"
		return nil
	}
	return &b
}

// decode reads the body into dst and writes the 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: httpx.CodeInvalidJSON, Message: err.Error()})
		return false
	}
	return true
}

func invalid(w http.ResponseWriter, v validation.Violations) {
	httpx.JSONError(w, http.StatusBadRequest, httpx.CodeValidationFailed, v)
}

// serviceError maps a service failure onto the error envelope.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, httpx.CodeConflict, nil)
	default:
		logging.FromContext(r.Context()).WithError(err).Error("database operation failed")
		httpx.JSONError(w, http.StatusInternalServerError, httpx.CodeDBError, nil)
	}
}
