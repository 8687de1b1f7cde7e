package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusBadRequest, CodeValidationFailed, map[string]string{"name": "required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"validation_failed","details":{"name":"required"}}`, rec.Body.String())
}

func TestForbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	Forbidden(rec, "cannot update animals")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden","message":"cannot update animals"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	body := func(s string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(s))
	}

	assert.NoError(t, DecodeJSON(body(`{"name":"Rex"}`), &dst))
	assert.Equal(t, "Rex", dst.Name)
	assert.Error(t, DecodeJSON(body(`{"name":"Rex","extra":1}`), &dst))
	assert.Error(t, DecodeJSON(body(`{"name":`), &dst))
	assert.Error(t, DecodeJSON(body(`{"name":"a"}{"name":"b"}`), &dst))
}
