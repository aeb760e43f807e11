// Spotify API implementation of [SearchService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
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
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Artwork fallback when a track's album carries no images.
	placeholderImageURL = "https://via.placeholder.com/300"

	searchResultLimit = 10
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	PreviewURL   *string         `json:"preview_url"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifyPaginatedTracks represents the track portion of a search response.
type SpotifyPaginatedTracks struct {
	Items  []SpotifyTrack `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type searchResponse struct {
	Tracks SpotifyPaginatedTracks `json:"tracks"`
}

// SpotifyService implements [SearchService] for the Spotify Web API.
//
// Uses the client-credentials flow via an injected [TokenManager]; no user
// authorization is involved since only the public catalog is queried.
type SpotifyService struct {
	tokens     *TokenManager
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	return &SpotifyService{
		tokens:     NewTokenManager(clientID, clientSecret, spotifyTokenURL),
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}

	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search queries the Spotify catalog by free text and maps the results to [models.Track].
func (s *SpotifyService) Search(ctx context.Context, query string) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), searchResultLimit)

	var response searchResponse
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, len(response.Tracks.Items))
	for i, st := range response.Tracks.Items {
		tracks[i] = mapSpotifyTrack(st)
	}

	return tracks, nil
}

// mapSpotifyTrack converts a Spotify API track to the domain shape.
//
// All artist names are joined so fingerprints for collaborations stay stable
// across searches.
func mapSpotifyTrack(st SpotifyTrack) models.Track {
	names := make([]string, len(st.Artists))
	for i, artist := range st.Artists {
		names[i] = artist.Name
	}

	imageURL := placeholderImageURL
	if len(st.Album.Images) > 0 && st.Album.Images[0].URL != "" {
		imageURL = st.Album.Images[0].URL
	}

	return models.Track{
		ID:         st.ID,
		Title:      st.Name,
		Artist:     strings.Join(names, ", "),
		ImageURL:   imageURL,
		Album:      st.Album.Name,
		PreviewURL: st.PreviewURL,
		SpotifyURL: st.ExternalURLs.Spotify,
	}
}
