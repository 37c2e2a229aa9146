// Package twitter is a minimal Twitter/X API v2 client covering the single
// endpoint the analysis pipeline needs: recent tweet search for public
// sentiment sampling.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twitter.com/2"

// ErrNotConfigured is returned when no bearer token was provided. Callers
// treat it as a degraded capability, not a fatal condition.
var ErrNotConfigured = errors.New("twitter capability not configured")

// Client talks to the v2 recent-search endpoint with app-only auth.
type Client struct {
	bearer  string
	baseURL string
	client  *http.Client
}

// NewClient builds a client. An empty token yields a client that reports
// itself unavailable instead of failing construction.
func NewClient(bearerToken string) *Client {
	return &Client{
		bearer:  strings.TrimSpace(bearerToken),
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Available reports whether the client holds a credential.
func (c *Client) Available() bool {
	return c != nil && c.bearer != ""
}

// Tweet is the slice of tweet fields the pipeline consumes.
type Tweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchRecent fetches recent English tweets about a topic with retweets
// filtered out. maxResults is clamped to the 10..100 range the endpoint
// accepts.
func (c *Client) SearchRecent(ctx context.Context, topic string, maxResults int) ([]Tweet, error) {
	if !c.Available() {
		return nil, ErrNotConfigured
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("search topic cannot be empty")
	}
	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	query := url.Values{}
	query.Set("query", fmt.Sprintf("%s -is:retweet lang:en", topic))
	query.Set("max_results", strconv.Itoa(maxResults))
	query.Set("tweet.fields", "created_at,author_id,public_metrics")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tweets/search/recent?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build tweet search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search recent tweets: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("twitter rate limit exceeded")
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("twitter credential rejected (status %d)", resp.StatusCode)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tweet search failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload struct {
		Data []Tweet `json:"data"`
		Meta struct {
			ResultCount int `json:"result_count"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tweet search response: %w", err)
	}
	return payload.Data, nil
}
