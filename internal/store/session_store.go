package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/htran/stitchcount/internal/model"
)

const (
	sessionKeyLastActive = "last_active_project_id"
	sessionKeyWasUnsaved = "was_unsaved"
)

// SaveSession writes the cross-session resumption flags. Called on
// every active-project swap.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess model.Session) error {
	unsaved := "0"
	if sess.WasUnsaved {
		unsaved = "1"
	}

	pairs := [][2]string{
		{sessionKeyLastActive, sess.LastActiveProjectID},
		{sessionKeyWasUnsaved, unsaved},
	}
	for _, kv := range pairs {
		_, err := s.db.ExecContext(ctx,
			"INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)",
			kv[0], kv[1],
		)
		if err != nil {
			return fmt.Errorf("saving session key %s: %w", kv[0], err)
		}
	}
	return nil
}

// LoadSession reads the resumption flags. Missing keys resolve to
// zero values so a fresh database behaves like a first run.
func (s *SQLiteStore) LoadSession(ctx context.Context) (model.Session, error) {
	var sess model.Session

	lastActive, err := s.sessionValue(ctx, sessionKeyLastActive)
	if err != nil {
		return model.Session{}, err
	}
	unsaved, err := s.sessionValue(ctx, sessionKeyWasUnsaved)
	if err != nil {
		return model.Session{}, err
	}

	sess.LastActiveProjectID = lastActive
	sess.WasUnsaved = unsaved == "1"
	return sess, nil
}

// sessionValue reads one session key, mapping a missing row to "".
func (s *SQLiteStore) sessionValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM session WHERE key = ?", key,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session key %s: %w", key, err)
	}
	return value, nil
}
