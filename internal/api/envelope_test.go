package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ExtractToken(req); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	if got := ExtractToken(req); got != "abc.def.ghi" {
		t.Fatalf("expected bearer token, got %q", got)
	}

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if got := ExtractToken(req); got != "" {
		t.Fatalf("expected non-bearer scheme ignored, got %q", got)
	}

	req.Header.Del("Authorization")
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: "cookie-token"})
	if got := ExtractToken(req); got != "cookie-token" {
		t.Fatalf("expected cookie fallback, got %q", got)
	}
}

func TestWriteStorageErrorMapping(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "title is required", "title")
	env := decodeEnvelope(t, rec)
	if env.Success || env.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if len(env.Errors) != 1 || env.Errors[0] != "title" {
		t.Fatalf("unexpected errors %v", env.Errors)
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos", nil)
	rec := httptest.NewRecorder()
	methodNotAllowed(rec, req, http.MethodGet, http.MethodPost)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "GET, POST" {
		t.Fatalf("unexpected Allow header %q", got)
	}
}
