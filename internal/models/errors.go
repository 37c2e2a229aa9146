package models

import (
	"errors"
	"fmt"
	"strings"
)

// The three failure kinds callers are expected to branch on. Raise sites wrap
// these with fmt.Errorf("...: %w", ...) so errors.Is keeps working through the
// chain.
var (
	// ErrValidation marks caller input rejected before any backend or model
	// call: empty content, empty user id, or a role outside user/assistant.
	ErrValidation = errors.New("validation failed")

	// ErrAnalysisUnavailable marks a missing or failed external model
	// capability. The request that triggered it may already have persisted
	// the user turn.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")

	// ErrStoreUnavailable marks an unreachable or failing chat store backend.
	ErrStoreUnavailable = errors.New("chat store unavailable")
)

// ValidateTurn checks the fields of a prospective chat turn. Every store
// backend runs this before anything reaches the wire or the database.
func ValidateTurn(userID string, role Role, content string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: role %q must be %q or %q", ErrValidation, string(role), RoleUser, RoleAssistant)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrValidation)
	}
	return nil
}
