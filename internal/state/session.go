package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// SaveSession stores the single session-state row.
func (db *DB) SaveSession(ctx context.Context, s models.SessionState) error {
	conv, err := json.Marshal(s.Conversation)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO session_state (id, mode, active_project, tier, conversation, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			active_project = excluded.active_project,
			tier = excluded.tier,
			conversation = excluded.conversation,
			updated_at = excluded.updated_at
	`, string(s.Mode), s.ActiveProject, int(s.Tier), string(conv), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session state, or nil when none was saved.
func (db *DB) LoadSession(ctx context.Context) (*models.SessionState, error) {
	row := db.QueryRowContext(ctx, `
		SELECT mode, active_project, tier, conversation FROM session_state WHERE id = 1
	`)

	var (
		s       models.SessionState
		mode    string
		project sql.NullString
		tier    int
		conv    sql.NullString
	)
	err := row.Scan(&mode, &project, &tier, &conv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.Mode = models.Mode(mode)
	s.ActiveProject = project.String
	s.Tier = models.Tier(tier)
	if conv.Valid && conv.String != "" && conv.String != "null" {
		if err := json.Unmarshal([]byte(conv.String), &s.Conversation); err != nil {
			return nil, fmt.Errorf("unmarshal conversation: %w", err)
		}
	}
	return &s, nil
}
