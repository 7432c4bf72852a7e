package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/api/v1/videos", "/api/v1/videos"},
		{"/api/v1/videos/2f6d9a61-6f9e-4a59-9a31-8f2f1f0a7e4d", "/api/v1/videos/:id"},
		{"/api/v1/videos/abc123def", "/api/v1/videos/:id"},
		{"/api/v1/users/channel/guest", "/api/v1/users/channel/guest"},
		{"/api/v1/videos/", "/api/v1/videos"},
	}
	for _, tc := range cases {
		if got := normalizePath(tc.in); got != tc.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteRendersCounters(t *testing.T) {
	recorder := New()
	recorder.ObserveRequest("get", "/api/v1/videos", 200, 50*time.Millisecond)
	recorder.ObserveRequest("GET", "/api/v1/videos", 200, 30*time.Millisecond)
	recorder.ObserveVideoView()
	recorder.ObserveUploadAttempt("Video")
	recorder.ObserveUploadFailure("video")
	recorder.ObserveAuthEvent("login_success")

	var sb strings.Builder
	recorder.Write(&sb)
	output := sb.String()

	expectations := []string{
		`clipstream_http_requests_total{method="GET",path="/api/v1/videos",status="200"} 2`,
		`clipstream_http_request_duration_seconds_sum{method="GET",path="/api/v1/videos",status="200"} 0.080000`,
		"clipstream_video_views_total 1",
		`clipstream_media_uploads_total{kind="video"} 1`,
		`clipstream_media_upload_failures_total{kind="video"} 1`,
		`clipstream_auth_events_total{event="login_success"} 1`,
	}
	for _, line := range expectations {
		if !strings.Contains(output, line) {
			t.Fatalf("expected output to contain %q, got:\n%s", line, output)
		}
	}
}

func TestHandlerSetsContentType(t *testing.T) {
	recorder := New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain; version=0.0.4" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestResetClearsCounters(t *testing.T) {
	recorder := New()
	recorder.ObserveVideoView()
	recorder.ObserveAuthEvent("logout")
	recorder.Reset()
	if recorder.VideoViews() != 0 {
		t.Fatalf("expected views reset")
	}
	if events := recorder.AuthEventCounts(); len(events) != 0 {
		t.Fatalf("expected auth events reset, got %v", events)
	}
}

func TestNormalizeName(t *testing.T) {
	if got := normalizeName("  Thumbnail "); got != "thumbnail" {
		t.Fatalf("normalizeName = %q", got)
	}
	if got := normalizeName(""); got != "unknown" {
		t.Fatalf("normalizeName empty = %q", got)
	}
}
