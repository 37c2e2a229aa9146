// Package supabase persists chat history through a Supabase project's
// PostgREST endpoint instead of a direct SQL connection. The hosted table is
// the same chat_history relation the SQL backends migrate locally.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"truthfinder/internal/models"
)

const historyTable = "chat_history"

// Store is a chat-history backend speaking PostgREST.
type Store struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewStore builds a store for the given project URL and service key.
func NewStore(projectURL, key string) *Store {
	return &Store{
		baseURL: strings.TrimRight(projectURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type insertPayload struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Append stores one chat turn and returns the stored representation,
// including the id and created_at the database assigned.
func (s *Store) Append(ctx context.Context, userID string, role models.Role, content string) (*models.ChatMessage, error) {
	if err := models.ValidateTurn(userID, role, content); err != nil {
		return nil, err
	}

	body, err := json.Marshal(insertPayload{UserID: userID, Role: string(role), Content: content})
	if err != nil {
		return nil, fmt.Errorf("encode chat turn: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tableURL(nil), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build insert request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	// Ask PostgREST to echo the stored row so callers get id and created_at.
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insert chat turn: %w: %v", models.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("insert chat turn: %w: %s", models.ErrStoreUnavailable, restError(resp))
	}

	var rows []models.ChatMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode stored turn: %w: %v", models.ErrStoreUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert chat turn: %w: empty representation", models.ErrStoreUnavailable)
	}
	return &rows[0], nil
}

// History returns every stored turn for the user, oldest first with id as the
// tie breaker. Unknown users yield an empty slice.
func (s *Store) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", models.ErrValidation)
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", "eq."+userID)
	query.Set("order", "created_at.asc,id.asc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tableURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list chat turns: %w: %v", models.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list chat turns: %w: %s", models.ErrStoreUnavailable, restError(resp))
	}

	rows := make([]models.ChatMessage, 0, 16)
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode chat turns: %w: %v", models.ErrStoreUnavailable, err)
	}
	return rows, nil
}

// Ping probes the REST endpoint, used by the status endpoint.
func (s *Store) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tableURL(query), nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", models.ErrStoreUnavailable, restError(resp))
	}
	return nil
}

func (s *Store) tableURL(query url.Values) string {
	u := s.baseURL + "/rest/v1/" + historyTable
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
}

// restError summarizes a non-2xx PostgREST response for wrapping.
func restError(resp *http.Response) string {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	text := strings.TrimSpace(string(snippet))
	if text == "" {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, text)
}
