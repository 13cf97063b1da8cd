// Package sentiment reads the crypto Fear & Greed index.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// DefaultURL is the public alternative.me endpoint for the latest reading.
const DefaultURL = "https://api.alternative.me/fng/?limit=1"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNoReading = errors.New("sentiment: no index reading")

type fngResponse struct {
	Name string `json:"name"`
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

// FearGreedClient fetches the index over HTTP.
type FearGreedClient struct {
	url    string
	client *http.Client
}

func NewFearGreedClient(url string, timeout time.Duration) *FearGreedClient {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FearGreedClient{url: url, client: &http.Client{Timeout: timeout}}
}

// FearGreed returns the latest index value in 0..100.
func (c *FearGreedClient) FearGreed(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sentiment: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("sentiment: status %d: %s", resp.StatusCode, body)
	}

	var out fngResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("sentiment: decode: %w", err)
	}
	if out.Metadata.Error != nil && *out.Metadata.Error != "" {
		return 0, fmt.Errorf("sentiment: api error: %s", *out.Metadata.Error)
	}
	if len(out.Data) == 0 {
		return 0, ErrNoReading
	}

	v, err := strconv.Atoi(out.Data[0].Value)
	if err != nil {
		return 0, fmt.Errorf("sentiment: bad value %q: %w", out.Data[0].Value, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("sentiment: value %d out of range", v)
	}
	return v, nil
}

// Static always reports the same reading. Paper runs select it with
// sentiment.static in the config.
type Static int

func (s Static) FearGreed(context.Context) (int, error) { return int(s), nil }
