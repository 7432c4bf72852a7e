package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientFallsBackToNoop(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty config", Config{}},
		{"missing bucket", Config{Endpoint: "localhost:9000"}},
		{"missing endpoint", Config{Bucket: "clips"}},
		{"whitespace only", Config{Endpoint: "  ", Bucket: "  "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClient(tc.cfg)
			if client.Enabled() {
				t.Fatalf("expected disabled client for %+v", tc.cfg)
			}
		})
	}
}

func TestUploadPutsObjectAndSignsRequest(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{
		Endpoint:       server.URL,
		PublicEndpoint: "https://cdn.example.com",
		Bucket:         "clips",
		Region:         "us-east-1",
		AccessKey:      "test-access",
		SecretKey:      "test-secret",
		Prefix:         "media",
	})
	if !client.Enabled() {
		t.Fatalf("expected enabled client")
	}

	object, err := client.Upload(context.Background(), "videos/abc/media", "video/mp4", []byte("payload"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/clips/media/videos/abc/media" {
		t.Fatalf("unexpected object path %q", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256 Credential=test-access/") {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotContentType != "video/mp4" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if object.Key != "media/videos/abc/media" {
		t.Fatalf("unexpected key %q", object.Key)
	}
	if object.URL != "https://cdn.example.com/media/videos/abc/media" {
		t.Fatalf("unexpected public URL %q", object.URL)
	}
}

func TestUploadWithoutPublicEndpointFallsBackToObjectURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Bucket: "clips", AccessKey: "a", SecretKey: "s"})
	object, err := client.Upload(context.Background(), "videos/abc/media", "video/mp4", []byte("payload"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if object.URL != server.URL+"/clips/videos/abc/media" {
		t.Fatalf("expected object URL fallback, got %q", object.URL)
	}
}

func TestUploadReportsRemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Bucket: "clips", AccessKey: "a", SecretKey: "s"})
	if _, err := client.Upload(context.Background(), "key", "", nil); err == nil {
		t.Fatalf("expected error on 403 response")
	}
}

func TestDeleteObject(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Bucket: "clips", AccessKey: "a", SecretKey: "s"})
	if err := client.Delete(context.Background(), "videos/abc/thumbnail"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/clips/videos/abc/thumbnail" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestApplyPrefixIdempotent(t *testing.T) {
	client := &s3Client{cfg: Config{Prefix: "media"}}
	if got := client.applyPrefix("media/videos/x"); got != "media/videos/x" {
		t.Fatalf("expected prefix not doubled, got %q", got)
	}
	if got := client.applyPrefix("/videos/x"); got != "media/videos/x" {
		t.Fatalf("expected prefix applied, got %q", got)
	}
}
