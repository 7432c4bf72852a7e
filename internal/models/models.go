package models

import (
	"strings"
	"time"
)

// User is an account holder. A user acting as the owner of published videos
// is referred to as a channel; both words name the same entity.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CoverURL     string    `json:"coverUrl,omitempty"`
	WatchHistory []string  `json:"watchHistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Video struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MediaURL     string `json:"mediaUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	// Duration is the media length in seconds as reported at upload time.
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Subscription links a subscriber to a channel. The (subscriber, channel)
// pair is unique; subscribing twice keeps the original row.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LikeKind tags the target type of a like.
type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikeTweet   LikeKind = "tweet"
)

// ParseLikeKind maps a path segment onto a LikeKind.
func ParseLikeKind(value string) (LikeKind, bool) {
	switch LikeKind(strings.ToLower(strings.TrimSpace(value))) {
	case LikeVideo:
		return LikeVideo, true
	case LikeComment:
		return LikeComment, true
	case LikeTweet:
		return LikeTweet, true
	}
	return "", false
}

// Like records that a user liked exactly one target. Existence of the row is
// the liked state; the toggle operation creates or removes it.
type Like struct {
	ID        string    `json:"id"`
	LikerID   string    `json:"likerId"`
	Kind      LikeKind  `json:"kind"`
	TargetID  string    `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist holds an ordered set of video references. VideoIDs preserves
// insertion order and never contains duplicates.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Owner is the projection of a user embedded in feed items, comments, and
// tweets. No other account fields leak through listing endpoints.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// OwnerProjection trims a user down to the public feed fields.
func OwnerProjection(user User) Owner {
	return Owner{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Avatar:   user.AvatarURL,
	}
}

// FeedVideo is a video enriched for listing responses.
type FeedVideo struct {
	Video
	Owner      Owner `json:"owner"`
	LikesCount int   `json:"likesCount"`
}

// ChannelStats aggregates channel-level rollups for the dashboard.
type ChannelStats struct {
	TotalSubscribers int   `json:"totalSubscribers"`
	TotalVideos      int   `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int   `json:"totalLikes"`
}
