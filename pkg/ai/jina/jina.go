package jina

// provider for https://jina.ai/
// - reader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/opencurrent/opencurrent/pkg/ai"
)

type Driver struct {
	client   *http.Client
	token    string
	endpoint string
}

const (
	NAME = "jina"

	defaultReaderEndpoint = "https://r.jina.ai/"
)

func New(token, endpoint string) *Driver {
	if endpoint == "" {
		endpoint = defaultReaderEndpoint
	}
	return &Driver{
		client:   &http.Client{Timeout: time.Minute},
		token:    token,
		endpoint: endpoint,
	}
}

func (s *Driver) applyBaseHeader(req *http.Request) {
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", "Bearer "+s.token)
}

type ReaderResponse struct {
	Code   int             `json:"code"`
	Status int             `json:"status"`
	Data   ai.ReaderResult `json:"data"`
}

// Reader fetches a page through the Jina Reader API and returns its
// markdown rendition.
func (s *Driver) Reader(ctx context.Context, endpoint string) (*ai.ReaderResult, error) {
	slog.Debug("Reader", slog.String("driver", NAME))

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+endpoint, nil)
	s.applyBaseHeader(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to request jina reader: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Failed to request jina reader, %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var result ReaderResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("Failed to unmarshal response, %w", err)
	}

	return &result.Data, nil
}
