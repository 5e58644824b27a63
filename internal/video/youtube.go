// Package video searches YouTube through the Data API v3.
package video

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/fetch"
)

const (
	searchEndpoint = "https://www.googleapis.com/youtube/v3/search"
	watchURLFormat = "https://www.youtube.com/watch?v=%s"
)

// searchResponse is the subset of the Data API search response we read.
type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// Searcher finds the top YouTube video for a query.
type Searcher struct {
	client   *fetch.Client
	apiKey   string
	endpoint string
}

// NewSearcher creates a YouTube searcher backed by the shared fetch client.
func NewSearcher(client *fetch.Client, apiKey string) *Searcher {
	return &Searcher{client: client, apiKey: apiKey, endpoint: searchEndpoint}
}

// Search returns the watch URL of the best match for the query.
// Returns ErrNoData when the search yields no video.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", "1")
	params.Set("q", query)
	params.Set("key", s.apiKey)

	var resp searchResponse
	if err := s.client.GetJSON(ctx, s.endpoint+"?"+params.Encode(), &resp); err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].ID.VideoID == "" {
		return "", errors.ErrNoData
	}
	return fmt.Sprintf(watchURLFormat, resp.Items[0].ID.VideoID), nil
}
