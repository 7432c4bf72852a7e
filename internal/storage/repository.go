package storage

import (
	"context"
	"errors"

	"clipstream/internal/models"
)

var (
	// ErrNotFound reports that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate reports a uniqueness violation (username, email,
	// playlist name per owner, playlist membership).
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidCredentials is returned for failed password checks.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Repository exposes the datastore operations required by the API handlers.
type Repository interface {
	Ping(ctx context.Context) error

	CreateUser(params CreateUserParams) (models.User, error)
	AuthenticateUser(identifier, password string) (models.User, error)
	GetUser(id string) (models.User, bool)
	FindUserByUsername(username string) (models.User, bool)
	UpdateUser(id string, update UserUpdate) (models.User, error)
	ChangeUserPassword(id, current, next string) error
	RecordWatchHistory(userID, videoID string) error
	WatchHistory(userID string) ([]models.FeedVideo, error)

	CreateVideo(params CreateVideoParams) (models.Video, error)
	GetVideo(id string) (models.Video, bool)
	AddVideoView(id string) (models.Video, error)
	UpdateVideo(id string, update VideoUpdate) (models.Video, error)
	DeleteVideo(id string) error
	ToggleVideoPublish(id string) (models.Video, error)
	VideoFeed(params FeedParams) ([]models.FeedVideo, int, error)

	Subscribe(subscriberID, channelID string) error
	Unsubscribe(subscriberID, channelID string) error
	IsSubscribed(subscriberID, channelID string) bool
	CountSubscribers(channelID string) int
	ListSubscribers(channelID string) ([]models.Owner, error)
	ListSubscribedChannels(subscriberID string) ([]models.Owner, error)

	ToggleLike(likerID string, kind models.LikeKind, targetID string) (bool, error)
	CountLikes(kind models.LikeKind, targetID string) int
	ListLikedVideos(likerID string) ([]models.FeedVideo, error)

	CreateComment(videoID, ownerID, content string) (models.Comment, error)
	GetComment(id string) (models.Comment, bool)
	UpdateComment(id, content string) (models.Comment, error)
	DeleteComment(id string) error
	ListComments(videoID string, skip, limit int) ([]CommentWithOwner, int, error)

	CreateTweet(ownerID, content string) (models.Tweet, error)
	GetTweet(id string) (models.Tweet, bool)
	UpdateTweet(id, content string) (models.Tweet, error)
	DeleteTweet(id string) error
	ListTweets(ownerID string) ([]TweetWithOwner, error)

	CreatePlaylist(ownerID, name, description string) (models.Playlist, error)
	GetPlaylist(id string) (models.Playlist, bool)
	UpdatePlaylist(id string, update PlaylistUpdate) (models.Playlist, error)
	DeletePlaylist(id string) error
	ListPlaylists(ownerID string) ([]models.Playlist, error)
	AddPlaylistVideo(id, videoID string) (models.Playlist, error)
	RemovePlaylistVideo(id, videoID string) (models.Playlist, error)

	ChannelStats(channelID string) (models.ChannelStats, error)
	ChannelVideos(channelID string, params FeedParams) ([]models.FeedVideo, int, error)
}

// CommentWithOwner pairs a comment with its author projection for listings.
type CommentWithOwner struct {
	models.Comment
	Owner      models.Owner `json:"owner"`
	LikesCount int          `json:"likesCount"`
}

// TweetWithOwner pairs a tweet with its author projection for listings.
type TweetWithOwner struct {
	models.Tweet
	Owner      models.Owner `json:"owner"`
	LikesCount int          `json:"likesCount"`
}

var _ Repository = (*Storage)(nil)
