// Package store persists projects, templates and their change history
// in a local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/docufab/docufab/pkg/engine/inherit"
	"github.com/docufab/docufab/pkg/engine/schema"
)

// ErrNotFound is returned when a lookup names a row that does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the document database connection.
type Store struct {
	db   *sql.DB
	path string
}

// dbSchema defines the document database tables.
const dbSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	structure TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS templates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	content TEXT NOT NULL,
	extension TEXT NOT NULL,
	parent_id INTEGER REFERENCES templates(id),
	project_id INTEGER REFERENCES projects(id),
	params TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS changes (
	id TEXT PRIMARY KEY,
	project_id INTEGER REFERENCES projects(id),
	template_id INTEGER REFERENCES templates(id),
	actor TEXT,
	change_type TEXT NOT NULL,
	details TEXT,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_templates_parent ON templates(parent_id);
CREATE INDEX IF NOT EXISTS idx_templates_project ON templates(project_id);
CREATE INDEX IF NOT EXISTS idx_changes_project ON changes(project_id);
CREATE INDEX IF NOT EXISTS idx_changes_template ON changes(template_id);
`

// Project is a named document tree with its folder structure as JSON.
type Project struct {
	ID        int64
	Name      string
	Structure map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Template is a stored template row. ParentID and ProjectID are 0 when
// unset.
type Template struct {
	ID        int64
	Name      string
	Content   string
	Extension string
	ParentID  int64
	ProjectID int64
	Params    schema.Schema
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open opens the database at path, creating the file and tables as
// needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(dbSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// --- Project operations ---

// SaveProject stores a new project and returns its id.
func (s *Store) SaveProject(name string, structure map[string]any) (int64, error) {
	raw, err := json.Marshal(structure)
	if err != nil {
		return 0, fmt.Errorf("encoding structure: %w", err)
	}
	res, err := s.db.Exec(
		"INSERT INTO projects (name, structure) VALUES (?, ?)",
		name, string(raw),
	)
	if err != nil {
		return 0, fmt.Errorf("saving project: %w", err)
	}
	return res.LastInsertId()
}

// UpdateProjectStructure replaces a project's folder structure.
func (s *Store) UpdateProjectStructure(id int64, structure map[string]any) error {
	raw, err := json.Marshal(structure)
	if err != nil {
		return fmt.Errorf("encoding structure: %w", err)
	}
	res, err := s.db.Exec(
		"UPDATE projects SET structure = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(raw), id,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetProject retrieves a project by id.
func (s *Store) GetProject(id int64) (*Project, error) {
	p := &Project{}
	var raw string
	err := s.db.QueryRow(
		"SELECT id, name, structure, created_at, updated_at FROM projects WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &p.Structure); err != nil {
		return nil, fmt.Errorf("decoding structure for project %d: %w", id, err)
	}
	return p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.db.Query(
		"SELECT id, name, structure, created_at, updated_at FROM projects ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		var raw string
		if err := rows.Scan(&p.ID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &p.Structure); err != nil {
			return nil, fmt.Errorf("decoding structure for project %d: %w", p.ID, err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project row.
func (s *Store) DeleteProject(id int64) error {
	res, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- Template operations ---

// SaveTemplate stores a new template and returns its id.
func (s *Store) SaveTemplate(t *Template) (int64, error) {
	params, err := json.Marshal(t.Params)
	if err != nil {
		return 0, fmt.Errorf("encoding params: %w", err)
	}
	res, err := s.db.Exec(
		"INSERT INTO templates (name, content, extension, parent_id, project_id, params) VALUES (?, ?, ?, ?, ?, ?)",
		t.Name, t.Content, t.Extension, nullID(t.ParentID), nullID(t.ProjectID), string(params),
	)
	if err != nil {
		return 0, fmt.Errorf("saving template: %w", err)
	}
	return res.LastInsertId()
}

// UpdateTemplate rewrites a template row in full.
func (s *Store) UpdateTemplate(t *Template) error {
	params, err := json.Marshal(t.Params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE templates SET name = ?, content = ?, extension = ?, parent_id = ?,
			project_id = ?, params = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.Name, t.Content, t.Extension, nullID(t.ParentID), nullID(t.ProjectID), string(params), t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

// GetTemplate retrieves a template by id.
func (s *Store) GetTemplate(id int64) (*Template, error) {
	return s.scanTemplate(s.db.QueryRow(
		"SELECT id, name, content, extension, parent_id, project_id, params, created_at, updated_at FROM templates WHERE id = ?",
		id,
	), fmt.Sprintf("template %d", id))
}

// GetTemplateByName retrieves a template by name. Names are not
// unique; the newest match wins.
func (s *Store) GetTemplateByName(name string) (*Template, error) {
	return s.scanTemplate(s.db.QueryRow(
		"SELECT id, name, content, extension, parent_id, project_id, params, created_at, updated_at FROM templates WHERE name = ? ORDER BY created_at DESC LIMIT 1",
		name,
	), fmt.Sprintf("template %q", name))
}

// ListTemplates returns all templates, or only those of a project when
// projectID is non-zero.
func (s *Store) ListTemplates(projectID int64) ([]*Template, error) {
	query := "SELECT id, name, content, extension, parent_id, project_id, params, created_at, updated_at FROM templates ORDER BY id"
	args := []any{}
	if projectID != 0 {
		query = "SELECT id, name, content, extension, parent_id, project_id, params, created_at, updated_at FROM templates WHERE project_id = ? ORDER BY id"
		args = append(args, projectID)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplateRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template row. Children keep their
// parent_id; resolving them afterwards reports the missing parent.
func (s *Store) DeleteTemplate(id int64) error {
	res, err := s.db.Exec("DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	return nil
}

// TemplateCount returns the total number of templates.
func (s *Store) TemplateCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&count)
	return count, err
}

// Lookup adapts the store to the inheritance resolver.
func (s *Store) Lookup() inherit.LookupFunc {
	return func(id int64) (*inherit.Template, bool) {
		t, err := s.GetTemplate(id)
		if err != nil {
			return nil, false
		}
		return &inherit.Template{
			ID:        t.ID,
			Name:      t.Name,
			Content:   t.Content,
			Extension: t.Extension,
			ParentID:  t.ParentID,
			Params:    t.Params,
			ProjectID: t.ProjectID,
		}, true
	}
}

type scanFunc func(dest ...any) error

func (s *Store) scanTemplate(row *sql.Row, what string) (*Template, error) {
	t, err := scanTemplateRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}
	return t, nil
}

func scanTemplateRow(scan scanFunc) (*Template, error) {
	t := &Template{}
	var parent, project sql.NullInt64
	var params string
	err := scan(&t.ID, &t.Name, &t.Content, &t.Extension, &parent, &project, &params, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.ParentID = parent.Int64
	t.ProjectID = project.Int64
	t.Params, err = schema.ParseJSON([]byte(params))
	if err != nil {
		return nil, fmt.Errorf("decoding params for template %d: %w", t.ID, err)
	}
	return t, nil
}

// nullID maps the zero id to NULL so foreign keys stay honest.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
