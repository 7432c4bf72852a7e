package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"clipstream/internal/observability/metrics"
)

// stagedFile is a multipart file saved to local disk, waiting to be
// forwarded to the media service.
type stagedFile struct {
	tempPath     string
	size         int64
	originalName string
	contentType  string
}

func (f *stagedFile) remove() {
	if f != nil && f.tempPath != "" {
		_ = os.Remove(f.tempPath)
		f.tempPath = ""
	}
}

// multipartForm holds the parsed parts of a multipart request. Callers must
// invoke cleanup on every path.
type multipartForm struct {
	values map[string]string
	files  map[string]*stagedFile
}

func (f *multipartForm) cleanup() {
	for _, file := range f.files {
		file.remove()
	}
}

func (f *multipartForm) value(name string) string {
	return strings.TrimSpace(f.values[name])
}

// parseMultipart streams the request's multipart parts, staging files named
// in fileFields to temp files and collecting the rest as form values.
func (h *Handler) parseMultipart(r *http.Request, fileFields ...string) (*multipartForm, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, errors.New("invalid multipart payload")
	}
	wanted := make(map[string]bool, len(fileFields))
	for _, field := range fileFields {
		wanted[field] = true
	}
	form := &multipartForm{
		values: make(map[string]string),
		files:  make(map[string]*stagedFile),
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			form.cleanup()
			return nil, fmt.Errorf("read multipart data: %w", err)
		}
		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}
		if wanted[name] {
			if _, exists := form.files[name]; exists {
				_ = part.Close()
				continue
			}
			saved, saveErr := h.stageMultipartFile(part)
			if saveErr != nil {
				form.cleanup()
				return nil, saveErr
			}
			form.files[name] = saved
			continue
		}
		payload, readErr := io.ReadAll(part)
		_ = part.Close()
		if readErr != nil {
			form.cleanup()
			return nil, fmt.Errorf("read form field: %w", readErr)
		}
		form.values[name] = strings.TrimSpace(string(payload))
	}
	return form, nil
}

func (h *Handler) stageMultipartFile(part *multipart.Part) (*stagedFile, error) {
	defer part.Close()
	dir := h.stagingDirPath()
	tmp, err := os.CreateTemp(dir, "staged-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()
	written, err := io.Copy(tmp, part)
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return &stagedFile{
		tempPath:     tmp.Name(),
		size:         written,
		originalName: part.FileName(),
		contentType:  part.Header.Get("Content-Type"),
	}, nil
}

// forwardToMedia pushes the staged file to the media service and returns its
// public URL. When the media service is not configured the file is retained
// under the staging dir and served locally.
func (h *Handler) forwardToMedia(ctx context.Context, kind, key string, file *stagedFile) (string, error) {
	if file == nil || file.tempPath == "" {
		return "", fmt.Errorf("media payload missing")
	}
	metrics.ObserveUploadAttempt(kind)

	client := h.mediaClient()
	if !client.Enabled() {
		url, err := h.retainLocal(key, file)
		if err != nil {
			metrics.ObserveUploadFailure(kind)
		}
		return url, err
	}

	payload, err := os.ReadFile(file.tempPath)
	if err != nil {
		metrics.ObserveUploadFailure(kind)
		return "", fmt.Errorf("read staged file: %w", err)
	}
	contentType := file.contentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	object, err := client.Upload(ctx, key, contentType, payload)
	if err != nil {
		metrics.ObserveUploadFailure(kind)
		return "", err
	}
	return object.URL, nil
}

// retainLocal moves the staged file to a stable name under the staging dir
// and returns the development-mode URL the server exposes it at.
func (h *Handler) retainLocal(key string, file *stagedFile) (string, error) {
	dir := h.stagingDirPath()
	ext := strings.ToLower(filepath.Ext(file.originalName))
	storedName := strings.ReplaceAll(strings.TrimLeft(key, "/"), "/", "-") + ext
	finalPath := filepath.Join(dir, storedName)
	_ = os.Remove(finalPath)
	if err := os.Rename(file.tempPath, finalPath); err != nil {
		return "", fmt.Errorf("store media locally: %w", err)
	}
	file.tempPath = ""
	return "/media/" + storedName, nil
}

// StagingPath returns the staging directory, creating it on first use. The
// server mounts it at /media/ when no media service is configured.
func (h *Handler) StagingPath() string {
	return h.stagingDirPath()
}

func (h *Handler) stagingDirPath() string {
	h.stagingDirOnce.Do(func() {
		dir := strings.TrimSpace(h.StagingDir)
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "clipstream-staging")
		}
		dir = filepath.Clean(dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			dir = filepath.Join(os.TempDir(), "clipstream-staging")
			_ = os.MkdirAll(dir, 0o755)
		}
		h.stagingDir = dir
	})
	if h.stagingDir == "" {
		return filepath.Join(os.TempDir(), "clipstream-staging")
	}
	return h.stagingDir
}
