// YouTube Data API v3 implementation of [VideoService]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/shared"
)

const (
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

	musicCategoryID  = "10"
	videoMaxResults  = "5"
	videoSearchParts = "snippet"
)

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeThumbnails struct {
	High    youtubeThumbnail `json:"high"`
	Default youtubeThumbnail `json:"default"`
}

type youtubeSnippet struct {
	Title        string            `json:"title"`
	ChannelTitle string            `json:"channelTitle"`
	Thumbnails   youtubeThumbnails `json:"thumbnails"`
}

type youtubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubeSearchResponse struct {
	Items []youtubeSearchItem `json:"items"`
}

// YouTubeService implements [VideoService] for the YouTube Data API.
type YouTubeService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube video lookup service.
func NewYouTubeService(apiKey string) *YouTubeService {
	return &YouTubeService{
		apiKey:     apiKey,
		baseURL:    defaultYouTubeBaseURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Search finds the best matching video for a song.
//
// Queries embeddable music-category videos for "<title> <artist> official" and
// prefers a result whose title contains "official" or "lyrics"
// (case-insensitive), falling back to the first result. Returns (nil, nil)
// when nothing matches; only transport and provider faults return an error.
func (y *YouTubeService) Search(ctx context.Context, title, artist string) (*models.VideoReference, error) {
	params := url.Values{}
	params.Set("part", videoSearchParts)
	params.Set("q", fmt.Sprintf("%s %s official", title, artist))
	params.Set("type", "video")
	params.Set("maxResults", videoMaxResults)
	params.Set("key", y.apiKey)
	params.Set("videoEmbeddable", "true")
	params.Set("videoCategoryId", musicCategoryID)

	apiURL := fmt.Sprintf("%s/search?%s", y.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: youtube status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var response youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Items) == 0 {
		return nil, nil
	}

	best := selectBestVideo(response.Items)

	thumbnail := best.Snippet.Thumbnails.High.URL
	if thumbnail == "" {
		thumbnail = best.Snippet.Thumbnails.Default.URL
	}

	return &models.VideoReference{
		VideoID:      best.ID.VideoID,
		Title:        best.Snippet.Title,
		Thumbnail:    thumbnail,
		ChannelTitle: best.Snippet.ChannelTitle,
	}, nil
}

// selectBestVideo applies the match policy: prefer official or lyric videos,
// otherwise take the first result.
func selectBestVideo(items []youtubeSearchItem) youtubeSearchItem {
	for _, item := range items {
		title := strings.ToLower(item.Snippet.Title)
		if strings.Contains(title, "official") || strings.Contains(title, "lyrics") {
			return item
		}
	}
	return items[0]
}
