package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f1c2a34-8a7e-4a53-9a41-5b1a0f6f2d11"

func sessionRequest(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: value})
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")

	rec := httptest.NewRecorder()
	CreateSession(rec, testUserID)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	uid, ok := ParseSession(sessionRequest(cookies[0].Value))
	require.True(t, ok)
	assert.Equal(t, testUserID, uid)
}

func TestParseSession_Rejects(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")

	tests := map[string]string{
		"no signature": testUserID,
		"tampered id":  "someone-else." + sign(testUserID),
		"bad sig":      testUserID + ".abc",
		"empty id":     "." + sign(""),
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := ParseSession(sessionRequest(value))
			assert.False(t, ok)
		})
	}

	_, ok := ParseSession(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestMiddleware_Verifier(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")
	SetUserVerifier(func(_ context.Context, uid string) bool { return uid == testUserID })
	defer SetUserVerifier(nil)

	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserIDFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), sessionRequest(SessionValue(testUserID)))
	assert.Equal(t, testUserID, got)

	got = ""
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(SessionValue("deleted-user")))
	assert.Empty(t, got)
	require.Len(t, rec.Result().Cookies(), 1, "stale session should be cleared")
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, req.WithContext(WithUserID(req.Context(), testUserID)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
