package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Change is one audit log entry. TemplateID or ProjectID may be 0 when
// the change touched only the other kind of record.
type Change struct {
	ID         string
	ProjectID  int64
	TemplateID int64
	Actor      string
	ChangeType string
	Details    map[string]any
	Timestamp  time.Time
}

// LogChange records an audit entry. Details are stored as JSON.
func (s *Store) LogChange(c *Change) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	details, err := json.Marshal(c.Details)
	if err != nil {
		return fmt.Errorf("encoding change details: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO changes (id, project_id, template_id, actor, change_type, details) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, nullID(c.ProjectID), nullID(c.TemplateID), c.Actor, c.ChangeType, string(details),
	)
	if err != nil {
		return fmt.Errorf("logging change: %w", err)
	}
	return nil
}

// ProjectHistory returns the audit entries for a project, newest first.
func (s *Store) ProjectHistory(projectID int64) ([]*Change, error) {
	return s.queryChanges(
		"SELECT id, project_id, template_id, actor, change_type, details, timestamp FROM changes WHERE project_id = ? ORDER BY timestamp DESC",
		projectID,
	)
}

// TemplateHistory returns the audit entries for a template, newest first.
func (s *Store) TemplateHistory(templateID int64) ([]*Change, error) {
	return s.queryChanges(
		"SELECT id, project_id, template_id, actor, change_type, details, timestamp FROM changes WHERE template_id = ? ORDER BY timestamp DESC",
		templateID,
	)
}

func (s *Store) queryChanges(query string, args ...any) ([]*Change, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var changes []*Change
	for rows.Next() {
		c := &Change{}
		var project, template sql.NullInt64
		var actor sql.NullString
		var details sql.NullString
		if err := rows.Scan(&c.ID, &project, &template, &actor, &c.ChangeType, &details, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning change: %w", err)
		}
		c.ProjectID = project.Int64
		c.TemplateID = template.Int64
		c.Actor = actor.String
		if details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &c.Details); err != nil {
				return nil, fmt.Errorf("decoding details for change %s: %w", c.ID, err)
			}
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
