package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"clipstream/internal/auth"
	"clipstream/internal/media"
	"clipstream/internal/models"
	"clipstream/internal/storage"
)

// Handler owns the HTTP surface. Store, Tokens, and Media are injected by the
// server; staging defaults live under the OS temp dir.
type Handler struct {
	Store  storage.Repository
	Tokens *auth.TokenManager
	Media  media.Client
	Logger *slog.Logger

	// StagingDir holds multipart uploads before they are forwarded to the
	// media service.
	StagingDir string

	stagingDirOnce sync.Once
	stagingDir     string
}

func NewHandler(store storage.Repository, tokens *auth.TokenManager) *Handler {
	return &Handler{
		Store:  store,
		Tokens: tokens,
		Media:  media.NoopClient{},
	}
}

func (h *Handler) mediaClient() media.Client {
	if h.Media == nil {
		return media.NoopClient{}
	}
	return h.Media
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// Health reports storage reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	status := "ok"
	httpStatus := http.StatusOK
	if h.Store != nil {
		if err := h.Store.Ping(r.Context()); err != nil {
			h.logger().Error("storage ping failed", "error", err)
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}
	writeEnvelope(w, httpStatus, map[string]string{"status": status}, "health check")
}

type userResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar,omitempty"`
	CoverImage   string    `json:"coverImage,omitempty"`
	WatchHistory []string  `json:"watchHistory,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Avatar:       user.AvatarURL,
		CoverImage:   user.CoverURL,
		WatchHistory: user.WatchHistory,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
