package storage

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"clipstream/internal/models"
)

// FeedParams filters, sorts, and pages a video listing.
type FeedParams struct {
	// Query is matched case-insensitively against title and description.
	Query   string
	OwnerID string
	// PublishedOnly hides unpublished videos; always set on public paths.
	PublishedOnly bool
	// SortBy is one of createdAt, views, duration, title.
	SortBy   string
	SortAsc  bool
	Skip     int
	Limit    int
}

func matchesFeed(video models.Video, params FeedParams) bool {
	if params.PublishedOnly && !video.IsPublished {
		return false
	}
	if params.OwnerID != "" && video.OwnerID != params.OwnerID {
		return false
	}
	if params.Query != "" {
		needle := strings.ToLower(params.Query)
		if !strings.Contains(strings.ToLower(video.Title), needle) &&
			!strings.Contains(strings.ToLower(video.Description), needle) {
			return false
		}
	}
	return true
}

func sortFeed(videos []models.Video, sortBy string, asc bool) {
	var less func(a, b models.Video) bool
	switch sortBy {
	case "views":
		less = func(a, b models.Video) bool { return a.Views < b.Views }
	case "duration":
		less = func(a, b models.Video) bool { return a.Duration < b.Duration }
	case "title":
		less = func(a, b models.Video) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	default:
		less = func(a, b models.Video) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(videos, func(i, j int) bool {
		if asc {
			return less(videos[i], videos[j])
		}
		return less(videos[j], videos[i])
	})
}

func (s *Storage) enrichVideoLocked(video models.Video) models.FeedVideo {
	item := models.FeedVideo{
		Video:      video,
		LikesCount: s.countLikesLocked(models.LikeVideo, video.ID),
	}
	if owner, ok := s.data.Users[video.OwnerID]; ok {
		item.Owner = models.OwnerProjection(owner)
	}
	return item
}

// VideoFeed returns one page of videos matching the params plus the total
// match count across all pages.
func (s *Storage) VideoFeed(params FeedParams) ([]models.FeedVideo, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videoFeedLocked(params)
}

func (s *Storage) videoFeedLocked(params FeedParams) ([]models.FeedVideo, int, error) {
	matched := make([]models.Video, 0)
	for _, video := range s.data.Videos {
		if matchesFeed(video, params) {
			matched = append(matched, video)
		}
	}
	sortFeed(matched, params.SortBy, params.SortAsc)

	total := len(matched)
	matched = pageSlice(matched, params.Skip, params.Limit)

	items := make([]models.FeedVideo, 0, len(matched))
	for _, video := range matched {
		items = append(items, s.enrichVideoLocked(video))
	}
	return items, total, nil
}

// ChannelStats aggregates the channel rollups. An existing channel with no
// activity yields all zeros, never an error.
func (s *Storage) ChannelStats(channelID string) (models.ChannelStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return models.ChannelStats{}, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}

	videos := make([]models.Video, 0)
	for _, video := range s.data.Videos {
		if video.OwnerID == channelID {
			videos = append(videos, video)
		}
	}

	var stats models.ChannelStats
	stats.TotalVideos = len(videos)

	var group errgroup.Group
	group.Go(func() error {
		stats.TotalSubscribers = s.countSubscribersLocked(channelID)
		return nil
	})
	group.Go(func() error {
		var views int64
		for _, video := range videos {
			views += video.Views
		}
		stats.TotalViews = views
		return nil
	})
	group.Go(func() error {
		likes := 0
		for _, video := range videos {
			likes += s.countLikesLocked(models.LikeVideo, video.ID)
		}
		stats.TotalLikes = likes
		return nil
	})
	if err := group.Wait(); err != nil {
		return models.ChannelStats{}, err
	}
	return stats, nil
}

// ChannelVideos returns one page of the channel's own videos, published or
// not, for the dashboard.
func (s *Storage) ChannelVideos(channelID string, params FeedParams) ([]models.FeedVideo, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return nil, 0, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}

	params.OwnerID = channelID
	params.PublishedOnly = false
	return s.videoFeedLocked(params)
}
