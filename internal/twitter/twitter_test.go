package twitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(srv *httptest.Server, bearer string) *Client {
	c := NewClient(bearer)
	c.baseURL = srv.URL
	return c
}

func TestSearchRecentBuildsFilteredQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{
			"data": [
				{"id":"1","text":"election results look verified","author_id":"42","created_at":"2025-08-20T10:00:00.000Z"},
				{"id":"2","text":"this is fake news","author_id":"43","created_at":"2025-08-20T10:01:00.000Z"}
			],
			"meta": {"result_count": 2}
		}`))
	}))
	defer srv.Close()

	tweets, err := testClient(srv, "token").SearchRecent(context.Background(), "election results", 3)
	if err != nil {
		t.Fatalf("search recent: %v", err)
	}

	if got.URL.Path != "/tweets/search/recent" {
		t.Fatalf("unexpected path: %s", got.URL.Path)
	}
	if got.Header.Get("Authorization") != "Bearer token" {
		t.Fatalf("unexpected auth header: %q", got.Header.Get("Authorization"))
	}
	q := got.URL.Query()
	if want := "election results -is:retweet lang:en"; q.Get("query") != want {
		t.Fatalf("expected query %q, got %q", want, q.Get("query"))
	}
	// Requested 3, endpoint minimum is 10.
	if q.Get("max_results") != "10" {
		t.Fatalf("expected clamped max_results 10, got %q", q.Get("max_results"))
	}
	if !strings.Contains(q.Get("tweet.fields"), "created_at") {
		t.Fatalf("expected created_at in tweet.fields, got %q", q.Get("tweet.fields"))
	}

	if len(tweets) != 2 {
		t.Fatalf("expected 2 tweets, got %d", len(tweets))
	}
	if tweets[0].Text != "election results look verified" || tweets[0].AuthorID != "42" {
		t.Fatalf("unexpected first tweet: %+v", tweets[0])
	}
	if tweets[0].CreatedAt.IsZero() {
		t.Fatalf("created_at not parsed")
	}
}

func TestSearchRecentClampsUpperBound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("max_results"); got != "100" {
			t.Errorf("expected max_results 100, got %q", got)
		}
		w.Write([]byte(`{"data":[],"meta":{"result_count":0}}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv, "token").SearchRecent(context.Background(), "topic", 500); err != nil {
		t.Fatalf("search recent: %v", err)
	}
}

func TestMissingTokenReportsNotConfigured(t *testing.T) {
	c := NewClient("  ")
	if c.Available() {
		t.Fatalf("blank token must not count as configured")
	}
	if _, err := c.SearchRecent(context.Background(), "topic", 10); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRateLimitAndAuthFailures(t *testing.T) {
	status := http.StatusTooManyRequests
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := testClient(srv, "token")
	if _, err := c.SearchRecent(context.Background(), "topic", 10); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	status = http.StatusUnauthorized
	if _, err := c.SearchRecent(context.Background(), "topic", 10); err == nil || !strings.Contains(err.Error(), "credential rejected") {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestEmptyResultSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	}))
	defer srv.Close()

	tweets, err := testClient(srv, "token").SearchRecent(context.Background(), "obscure topic", 10)
	if err != nil {
		t.Fatalf("search recent: %v", err)
	}
	if len(tweets) != 0 {
		t.Fatalf("expected no tweets, got %d", len(tweets))
	}
}
