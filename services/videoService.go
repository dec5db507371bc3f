package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/ChurchPortal/models"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// MaxVideos bounds how many uploads the listing shows.
const MaxVideos = 12

var ErrNoChannel = errors.New("youtube channel not found")

// PlaceholderVideos is shown when no API key is configured or YouTube fails.
var PlaceholderVideos = []models.Video{
	{
		ID:          "placeholder-sunday-service",
		Title:       "Sunday Worship Service",
		PublishedAt: time.Date(2024, time.January, 7, 10, 0, 0, 0, time.UTC),
		Thumbnail:   "/images/video-placeholder.jpg",
		Description: "Join us for worship every Sunday morning.",
		Duration:    "1:15:00",
	},
	{
		ID:          "placeholder-bible-study",
		Title:       "Midweek Bible Study",
		PublishedAt: time.Date(2024, time.January, 3, 19, 0, 0, 0, time.UTC),
		Thumbnail:   "/images/video-placeholder.jpg",
		Description: "Studying the Word together on Wednesday evenings.",
		Duration:    "45:00",
	},
	{
		ID:          "placeholder-welcome",
		Title:       "Welcome to Our Church",
		PublishedAt: time.Date(2023, time.December, 17, 10, 0, 0, 0, time.UTC),
		Thumbnail:   "/images/video-placeholder.jpg",
		Description: "A short introduction for first-time visitors.",
		Duration:    "3:20",
	},
}

type VideoService struct {
	yt     *youtube.Service
	handle string

	mu     sync.RWMutex
	videos []models.Video
}

var videoService *VideoService

// InitVideoService connects to YouTube when an API key is configured. Without
// one the service still answers with the placeholder list.
func InitVideoService(apiKey, channelHandle string, opts ...option.ClientOption) *VideoService {
	svc := &VideoService{handle: channelHandle}
	videoService = svc

	if apiKey == "" || channelHandle == "" {
		zap.S().Warn("YOUTUBE_API_KEY or YOUTUBE_CHANNEL_HANDLE not set. Video listing uses placeholders.")
		return svc
	}

	yt, err := youtube.NewService(context.Background(), append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		zap.S().Errorf("Failed to create YouTube client: %v", err)
		return svc
	}

	svc.yt = yt
	zap.S().Infof("Video service initialized for channel %s", channelHandle)
	return svc
}

// GetVideoService may return nil; Videos on a nil service returns placeholders.
func GetVideoService() *VideoService {
	return videoService
}

// Videos returns the cached listing, fetching it on first use.
func (s *VideoService) Videos(ctx context.Context) []models.Video {
	if s == nil || s.yt == nil {
		return PlaceholderVideos
	}

	s.mu.RLock()
	cached := s.videos
	s.mu.RUnlock()
	if cached != nil {
		return cached
	}

	if err := s.Refresh(ctx); err != nil {
		return PlaceholderVideos
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videos
}

// Refresh replaces the cache. A failed refresh keeps the previous listing.
func (s *VideoService) Refresh(ctx context.Context) error {
	if s == nil || s.yt == nil {
		return nil
	}

	videos, err := s.fetch(ctx)
	if err != nil {
		zap.S().Errorf("Failed to fetch videos for %s: %v", s.handle, err)
		return err
	}

	s.mu.Lock()
	s.videos = videos
	s.mu.Unlock()

	zap.S().Infof("Video cache refreshed with %d videos", len(videos))
	return nil
}

func (s *VideoService) fetch(ctx context.Context) ([]models.Video, error) {
	channels, err := s.yt.Channels.List([]string{"contentDetails"}).ForHandle(s.handle).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("channel lookup failed: %w", err)
	}
	if len(channels.Items) == 0 || channels.Items[0].ContentDetails == nil || channels.Items[0].ContentDetails.RelatedPlaylists == nil {
		return nil, ErrNoChannel
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	items, err := s.yt.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(uploads).
		MaxResults(MaxVideos).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("uploads lookup failed: %w", err)
	}

	ids := lo.FilterMap(items.Items, func(item *youtube.PlaylistItem, _ int) (string, bool) {
		if item.ContentDetails == nil {
			return "", false
		}
		return item.ContentDetails.VideoId, item.ContentDetails.VideoId != ""
	})
	if len(ids) == 0 {
		return []models.Video{}, nil
	}

	details, err := s.yt.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("video details lookup failed: %w", err)
	}

	return lo.Map(details.Items, func(v *youtube.Video, _ int) models.Video {
		return toVideo(v)
	}), nil
}

func toVideo(v *youtube.Video) models.Video {
	video := models.Video{ID: v.Id}

	if v.Snippet != nil {
		video.Title = v.Snippet.Title
		video.Description = v.Snippet.Description
		video.PublishedAt, _ = time.Parse(time.RFC3339, v.Snippet.PublishedAt)
		if t := v.Snippet.Thumbnails; t != nil {
			switch {
			case t.High != nil:
				video.Thumbnail = t.High.Url
			case t.Medium != nil:
				video.Thumbnail = t.Medium.Url
			case t.Default != nil:
				video.Thumbnail = t.Default.Url
			}
		}
	}
	if v.ContentDetails != nil {
		video.Duration = FormatDuration(v.ContentDetails.Duration)
	}
	if v.Statistics != nil {
		video.ViewCount = v.Statistics.ViewCount
	}

	return video
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// FormatDuration turns an ISO 8601 duration such as PT1H2M3S into 1:02:03.
// Unrecognised input yields "".
func FormatDuration(iso string) string {
	m := isoDuration.FindStringSubmatch(iso)
	if m == nil || iso == "PT" {
		return ""
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
