package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"clipstream/internal/models"
)

// ErrPostgresUnavailable is returned for entity operations that have not yet
// been ported to the Postgres repository.
var ErrPostgresUnavailable = fmt.Errorf("postgres repository unavailable")

type postgresRepository struct {
	pool *pgxpool.Pool
	cfg  PostgresConfig
}

// NewPostgresRepository opens a Postgres-backed repository and applies the
// embedded schema. Entity operations are still being ported; the pool and
// health checks are live so deployments can validate connectivity early.
func NewPostgresRepository(ctx context.Context, dsn string) (Repository, error) {
	cfg := newPostgresConfig(dsn)
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections >= 0 {
		poolCfg.MinConns = cfg.MinConnections
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckInterval > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckInterval
	}
	if cfg.AcquireTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout
	}
	if cfg.ApplicationName != "" {
		if poolCfg.ConnConfig.RuntimeParams == nil {
			poolCfg.ConnConfig.RuntimeParams = make(map[string]string)
		}
		poolCfg.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := applySchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &postgresRepository{pool: pool, cfg: cfg}, nil
}

func (r *postgresRepository) Close(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.pool.Close()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresRepository) CreateUser(params CreateUserParams) (models.User, error) {
	return models.User{}, ErrPostgresUnavailable
}

func (r *postgresRepository) AuthenticateUser(identifier, password string) (models.User, error) {
	return models.User{}, ErrPostgresUnavailable
}

func (r *postgresRepository) GetUser(id string) (models.User, bool) {
	return models.User{}, false
}

func (r *postgresRepository) FindUserByUsername(username string) (models.User, bool) {
	return models.User{}, false
}

func (r *postgresRepository) UpdateUser(id string, update UserUpdate) (models.User, error) {
	return models.User{}, ErrPostgresUnavailable
}

func (r *postgresRepository) ChangeUserPassword(id, current, next string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) RecordWatchHistory(userID, videoID string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) WatchHistory(userID string) ([]models.FeedVideo, error) {
	return nil, ErrPostgresUnavailable
}

func (r *postgresRepository) CreateVideo(params CreateVideoParams) (models.Video, error) {
	return models.Video{}, ErrPostgresUnavailable
}

func (r *postgresRepository) GetVideo(id string) (models.Video, bool) {
	return models.Video{}, false
}

func (r *postgresRepository) AddVideoView(id string) (models.Video, error) {
	return models.Video{}, ErrPostgresUnavailable
}

func (r *postgresRepository) UpdateVideo(id string, update VideoUpdate) (models.Video, error) {
	return models.Video{}, ErrPostgresUnavailable
}

func (r *postgresRepository) DeleteVideo(id string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) ToggleVideoPublish(id string) (models.Video, error) {
	return models.Video{}, ErrPostgresUnavailable
}

func (r *postgresRepository) VideoFeed(params FeedParams) ([]models.FeedVideo, int, error) {
	return nil, 0, ErrPostgresUnavailable
}

func (r *postgresRepository) Subscribe(subscriberID, channelID string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) Unsubscribe(subscriberID, channelID string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) IsSubscribed(subscriberID, channelID string) bool {
	return false
}

func (r *postgresRepository) CountSubscribers(channelID string) int {
	return 0
}

func (r *postgresRepository) ListSubscribers(channelID string) ([]models.Owner, error) {
	return nil, ErrPostgresUnavailable
}

func (r *postgresRepository) ListSubscribedChannels(subscriberID string) ([]models.Owner, error) {
	return nil, ErrPostgresUnavailable
}

func (r *postgresRepository) ToggleLike(likerID string, kind models.LikeKind, targetID string) (bool, error) {
	return false, ErrPostgresUnavailable
}

func (r *postgresRepository) CountLikes(kind models.LikeKind, targetID string) int {
	return 0
}

func (r *postgresRepository) ListLikedVideos(likerID string) ([]models.FeedVideo, error) {
	return nil, ErrPostgresUnavailable
}

func (r *postgresRepository) CreateComment(videoID, ownerID, content string) (models.Comment, error) {
	return models.Comment{}, ErrPostgresUnavailable
}

func (r *postgresRepository) GetComment(id string) (models.Comment, bool) {
	return models.Comment{}, false
}

func (r *postgresRepository) UpdateComment(id, content string) (models.Comment, error) {
	return models.Comment{}, ErrPostgresUnavailable
}

func (r *postgresRepository) DeleteComment(id string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) ListComments(videoID string, skip, limit int) ([]CommentWithOwner, int, error) {
	return nil, 0, ErrPostgresUnavailable
}

func (r *postgresRepository) CreateTweet(ownerID, content string) (models.Tweet, error) {
	return models.Tweet{}, ErrPostgresUnavailable
}

func (r *postgresRepository) GetTweet(id string) (models.Tweet, bool) {
	return models.Tweet{}, false
}

func (r *postgresRepository) UpdateTweet(id, content string) (models.Tweet, error) {
	return models.Tweet{}, ErrPostgresUnavailable
}

func (r *postgresRepository) DeleteTweet(id string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) ListTweets(ownerID string) ([]TweetWithOwner, error) {
	return nil, ErrPostgresUnavailable
}

func (r *postgresRepository) CreatePlaylist(ownerID, name, description string) (models.Playlist, error) {
	return models.Playlist{}, ErrPostgresUnavailable
}

func (r *postgresRepository) GetPlaylist(id string) (models.Playlist, bool) {
	return models.Playlist{}, false
}

func (r *postgresRepository) UpdatePlaylist(id string, update PlaylistUpdate) (models.Playlist, error) {
	return models.Playlist{}, ErrPostgresUnavailable
}

func (r *postgresRepository) DeletePlaylist(id string) error {
	return ErrPostgresUnavailable
}

func (r *postgresRepository) ListPlaylists(ownerID string) ([]models.Playlist, error) {
	return nil, ErrPostgresUnavailable
}

func (r *postgresRepository) AddPlaylistVideo(id, videoID string) (models.Playlist, error) {
	return models.Playlist{}, ErrPostgresUnavailable
}

func (r *postgresRepository) RemovePlaylistVideo(id, videoID string) (models.Playlist, error) {
	return models.Playlist{}, ErrPostgresUnavailable
}

func (r *postgresRepository) ChannelStats(channelID string) (models.ChannelStats, error) {
	return models.ChannelStats{}, ErrPostgresUnavailable
}

func (r *postgresRepository) ChannelVideos(channelID string, params FeedParams) ([]models.FeedVideo, int, error) {
	return nil, 0, ErrPostgresUnavailable
}

var _ Repository = (*postgresRepository)(nil)
