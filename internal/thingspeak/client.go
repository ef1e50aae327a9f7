package thingspeak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxBodySize = 8 << 20

var (
	// ErrNotConfigured is returned when the channel id or read key is missing
	ErrNotConfigured = errors.New("thingspeak channel id or read api key not configured")
	// ErrUpstream is returned when ThingSpeak answers with an error payload
	ErrUpstream = errors.New("thingspeak returned an error payload")
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("thingspeak responded %d: %s", e.StatusCode, e.Body)
}

// Config holds the channel credentials and transport settings
type Config struct {
	BaseURL    string
	ChannelID  string
	ReadAPIKey string
	Timeout    time.Duration
}

// DefaultConfig returns the public ThingSpeak endpoint without credentials
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.thingspeak.com",
		Timeout: 10 * time.Second,
	}
}

// Client reads channel feeds from ThingSpeak
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a feed client
func NewClient(config *Config) *Client {
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether credentials are present
func (c *Client) Configured() bool {
	return c.config.ChannelID != "" && c.config.ReadAPIKey != ""
}

// ChannelID returns the configured channel id
func (c *Client) ChannelID() string {
	return c.config.ChannelID
}

func (c *Client) feedsURL(results int) string {
	q := url.Values{}
	q.Set("api_key", c.config.ReadAPIKey)
	q.Set("results", strconv.Itoa(results))
	return fmt.Sprintf("%s/channels/%s/feeds.json?%s", c.config.BaseURL, url.PathEscape(c.config.ChannelID), q.Encode())
}

// Fetch requests the last results feed records of the channel
func (c *Client) Fetch(ctx context.Context, results int) (*FeedResponse, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedsURL(results), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feeds request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feeds: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return decodeFeedResponse(body)
}

// FetchFeeds is Fetch with every failure logged and turned into nil
func (c *Client) FetchFeeds(ctx context.Context, results int) *FeedResponse {
	resp, err := c.Fetch(ctx, results)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			log.Printf("ThingSpeak channel id or read api key not set, live sensor data unavailable")
		} else {
			log.Printf("ThingSpeak fetch failed: %v", err)
		}
		return nil
	}
	return resp
}

func decodeFeedResponse(body []byte) (*FeedResponse, error) {
	body = bytes.TrimSpace(body)
	if string(body) == "-1" {
		return nil, fmt.Errorf("%w: -1", ErrUpstream)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode feeds response: %w", err)
	}
	if raw, ok := probe["error"]; ok {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, string(raw))
	}

	var feedResp FeedResponse
	if err := json.Unmarshal(body, &feedResp); err != nil {
		return nil, fmt.Errorf("failed to decode feeds response: %w", err)
	}
	return &feedResp, nil
}
