package serper

// client for the https://serper.dev search API

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/opencurrent/opencurrent/pkg/types"
)

const (
	NAME = "serper"

	defaultEndpoint = "https://google.serper.dev/search"
)

type Client struct {
	client   *http.Client
	apiKey   string
	endpoint string
}

func New(apiKey, endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		client:   &http.Client{Timeout: time.Minute},
		apiKey:   apiKey,
		endpoint: endpoint,
	}
}

type searchRequest struct {
	Query       string `json:"q"`
	Geolocation string `json:"gl,omitempty"`
	TimeFilter  string `json:"tbs,omitempty"`
}

type searchResponse struct {
	Organic []organicItem `json:"organic"`
}

type organicItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search runs a web search and returns normalized title/link/snippet hits.
func (s *Client) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	slog.Debug("Search", slog.String("driver", NAME))

	raw, _ := json.Marshal(searchRequest{Query: query})

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	req.Header.Add("X-API-KEY", s.apiKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to request serper search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Failed to request serper search, %s", string(body))
	}

	var result searchResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("Failed to unmarshal response, %w", err)
	}

	return lo.Map(result.Organic, func(item organicItem, _ int) types.SearchResult {
		return types.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		}
	}), nil
}
