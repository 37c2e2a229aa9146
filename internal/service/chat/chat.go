package chat

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"truthfinder/internal/models"
	"truthfinder/internal/storage"
)

// Service persists chat turns in a SQL backend. Turns are validated before
// any statement reaches the database, and nothing here updates or deletes a
// stored row.
type Service struct {
	db     *sql.DB
	driver string
}

// NewService wraps an opened database. driver must match the name the
// database was opened with so placeholders and id retrieval work.
func NewService(db *sql.DB, driver string) *Service {
	return &Service{db: db, driver: strings.ToLower(driver)}
}

// Append stores one immutable chat turn and returns it with the assigned id.
func (s *Service) Append(ctx context.Context, userID string, role models.Role, content string) (*models.ChatMessage, error) {
	if err := models.ValidateTurn(userID, role, content); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &models.ChatMessage{UserID: userID, Role: role, Content: content, CreatedAt: now}

	if s.driver == "postgres" {
		// lib/pq has no LastInsertId; fetch the id through RETURNING.
		err := s.db.QueryRowContext(ctx,
			storage.Rebind(s.driver, `INSERT INTO chat_history (user_id, role, content, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
			userID, string(role), content, now,
		).Scan(&msg.ID)
		if err != nil {
			return nil, fmt.Errorf("insert chat turn: %w: %v", models.ErrStoreUnavailable, err)
		}
		return msg, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		userID, string(role), content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chat turn: %w: %v", models.ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("chat turn id: %w: %v", models.ErrStoreUnavailable, err)
	}
	msg.ID = id
	return msg, nil
}

// History returns every stored turn for the user, oldest first. Ties on
// created_at are broken by id so interleaving within the same instant stays
// stable. An unknown user yields an empty slice, not an error.
func (s *Service) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", models.ErrValidation)
	}

	rows, err := s.db.QueryContext(ctx,
		storage.Rebind(s.driver, `SELECT id, user_id, role, content, created_at FROM chat_history WHERE user_id = ? ORDER BY created_at ASC, id ASC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat turns: %w: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0, 16)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w: %v", models.ErrStoreUnavailable, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat turns: %w: %v", models.ErrStoreUnavailable, err)
	}
	return messages, nil
}

// Ping reports backend reachability, used by the status endpoint.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}
