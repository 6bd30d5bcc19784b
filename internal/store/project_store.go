package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/htran/stitchcount/internal/model"
)

// PutProject inserts or replaces the full project document keyed by
// its id. The write is idempotent: replaying it with the same state
// is harmless, which is what lets a later mutation supersede a failed
// one without a queue.
func (s *SQLiteStore) PutProject(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		return fmt.Errorf("putting project: id must not be empty")
	}

	timerJSON, err := json.Marshal(p.Timer)
	if err != nil {
		return fmt.Errorf("marshaling timer for project %s: %w", p.ID, err)
	}
	mainJSON, err := json.Marshal(p.MainCounter)
	if err != nil {
		return fmt.Errorf("marshaling main counter for project %s: %w", p.ID, err)
	}
	subsJSON, err := json.Marshal(subCountersOrEmpty(p.SubCounters))
	if err != nil {
		return fmt.Errorf("marshaling sub-counters for project %s: %w", p.ID, err)
	}
	historyJSON, err := json.Marshal(historyOrEmpty(p.History))
	if err != nil {
		return fmt.Errorf("marshaling history for project %s: %w", p.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO projects (
			id, name, notes, pattern_url, last_modified,
			timer, main_counter, sub_counters, history
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Notes, p.PatternURL, p.LastModified.UTC(),
		string(timerJSON), string(mainJSON), string(subsJSON), string(historyJSON),
	)
	if err != nil {
		return fmt.Errorf("putting project %s: %w", p.ID, err)
	}
	return nil
}

// GetProject retrieves a single project by id. Returns ErrNotFound
// when the id does not exist.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM projects WHERE id = ?", id)

	p, err := scanProjectRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	return p, nil
}

// ListProjects retrieves all saved projects ordered by last_modified
// descending, most recently touched first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM projects ORDER BY last_modified DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project. Returns ErrNotFound when the id
// does not exist.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// scanProject scans a project row from a sqlx.Rows result set.
func scanProject(rows *sqlx.Rows) (*model.Project, error) {
	var (
		p            model.Project
		lastModified time.Time
		timerJSON    string
		mainJSON     string
		subsJSON     string
		historyJSON  string
	)

	err := rows.Scan(
		&p.ID, &p.Name, &p.Notes, &p.PatternURL, &lastModified,
		&timerJSON, &mainJSON, &subsJSON, &historyJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning project row: %w", err)
	}

	if err := unmarshalProjectDocs(&p, timerJSON, mainJSON, subsJSON, historyJSON); err != nil {
		return nil, err
	}
	p.LastModified = lastModified
	return &p, nil
}

// scanProjectRow scans a single project row from a sqlx.Row.
func scanProjectRow(row *sqlx.Row) (*model.Project, error) {
	var (
		p            model.Project
		lastModified time.Time
		timerJSON    string
		mainJSON     string
		subsJSON     string
		historyJSON  string
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Notes, &p.PatternURL, &lastModified,
		&timerJSON, &mainJSON, &subsJSON, &historyJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalProjectDocs(&p, timerJSON, mainJSON, subsJSON, historyJSON); err != nil {
		return nil, err
	}
	p.LastModified = lastModified
	return &p, nil
}

// unmarshalProjectDocs decodes the JSON document columns into the
// project.
func unmarshalProjectDocs(p *model.Project, timerJSON, mainJSON, subsJSON, historyJSON string) error {
	if err := json.Unmarshal([]byte(timerJSON), &p.Timer); err != nil {
		return fmt.Errorf("unmarshaling timer for project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(mainJSON), &p.MainCounter); err != nil {
		return fmt.Errorf("unmarshaling main counter for project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(subsJSON), &p.SubCounters); err != nil {
		return fmt.Errorf("unmarshaling sub-counters for project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &p.History); err != nil {
		return fmt.Errorf("unmarshaling history for project %s: %w", p.ID, err)
	}
	return nil
}

// subCountersOrEmpty keeps the stored document a JSON array even when
// the slice is nil.
func subCountersOrEmpty(cs []model.Counter) []model.Counter {
	if cs == nil {
		return []model.Counter{}
	}
	return cs
}

// historyOrEmpty keeps the stored document a JSON array even when the
// slice is nil.
func historyOrEmpty(es []model.HistoryEntry) []model.HistoryEntry {
	if es == nil {
		return []model.HistoryEntry{}
	}
	return es
}
