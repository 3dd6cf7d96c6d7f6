package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/docufab/docufab/pkg/engine/inherit"
	"github.com/docufab/docufab/pkg/engine/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProjectLifecycle(t *testing.T) {
	s := openTestStore(t)

	structure := map[string]any{
		"01_admin": map[string]any{".": []any{"readme.md"}},
	}
	id, err := s.SaveProject("acme", structure)
	if err != nil {
		t.Fatalf("saving project: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero id")
	}

	p, err := s.GetProject(id)
	if err != nil {
		t.Fatalf("getting project: %v", err)
	}
	if p.Name != "acme" {
		t.Errorf("expected %q, got %q", "acme", p.Name)
	}
	if _, ok := p.Structure["01_admin"]; !ok {
		t.Errorf("structure lost in round trip: %+v", p.Structure)
	}

	if err := s.UpdateProjectStructure(id, map[string]any{"02_legal": map[string]any{}}); err != nil {
		t.Fatalf("updating structure: %v", err)
	}
	p, err = s.GetProject(id)
	if err != nil {
		t.Fatalf("getting project: %v", err)
	}
	if _, ok := p.Structure["02_legal"]; !ok {
		t.Errorf("update not persisted: %+v", p.Structure)
	}

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatalf("listing projects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}

	if err := s.DeleteProject(id); err != nil {
		t.Fatalf("deleting project: %v", err)
	}
	if _, err := s.GetProject(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetProject(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteProject(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateProjectStructure(99, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplateLifecycle(t *testing.T) {
	s := openTestStore(t)

	params := schema.Schema{
		{Name: "status", Type: schema.TypeString, Options: []string{"draft", "final"}, Default: "draft"},
	}
	id, err := s.SaveTemplate(&Template{
		Name:      "report",
		Content:   "Status: {{status}}",
		Extension: "md",
		Params:    params,
	})
	if err != nil {
		t.Fatalf("saving template: %v", err)
	}

	got, err := s.GetTemplate(id)
	if err != nil {
		t.Fatalf("getting template: %v", err)
	}
	if got.Name != "report" || got.Extension != "md" {
		t.Errorf("unexpected template %+v", got)
	}
	if got.ParentID != 0 || got.ProjectID != 0 {
		t.Errorf("expected unset references to read as zero, got %d/%d", got.ParentID, got.ProjectID)
	}
	status, ok := got.Params.Get("status")
	if !ok || len(status.Options) != 2 {
		t.Errorf("params lost in round trip: %+v", got.Params)
	}

	got.Content = "Estado: {{status}}"
	if err := s.UpdateTemplate(got); err != nil {
		t.Fatalf("updating template: %v", err)
	}
	got, err = s.GetTemplate(id)
	if err != nil {
		t.Fatalf("getting template: %v", err)
	}
	if got.Content != "Estado: {{status}}" {
		t.Errorf("update not persisted: %q", got.Content)
	}

	byName, err := s.GetTemplateByName("report")
	if err != nil {
		t.Fatalf("getting by name: %v", err)
	}
	if byName.ID != id {
		t.Errorf("expected id %d, got %d", id, byName.ID)
	}

	if err := s.DeleteTemplate(id); err != nil {
		t.Fatalf("deleting template: %v", err)
	}
	if _, err := s.GetTemplate(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplateParentReference(t *testing.T) {
	s := openTestStore(t)

	parentID, err := s.SaveTemplate(&Template{Name: "base", Content: "body", Extension: "txt"})
	if err != nil {
		t.Fatalf("saving parent: %v", err)
	}
	childID, err := s.SaveTemplate(&Template{Name: "child", Content: "", Extension: "", ParentID: parentID})
	if err != nil {
		t.Fatalf("saving child: %v", err)
	}

	child, err := s.GetTemplate(childID)
	if err != nil {
		t.Fatalf("getting child: %v", err)
	}
	if child.ParentID != parentID {
		t.Errorf("expected parent %d, got %d", parentID, child.ParentID)
	}
}

func TestSaveTemplateRejectsUnknownParent(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SaveTemplate(&Template{Name: "orphan", Content: "x", Extension: "txt", ParentID: 99}); err == nil {
		t.Error("expected a foreign key error")
	}
}

func TestListTemplatesByProject(t *testing.T) {
	s := openTestStore(t)

	projectID, err := s.SaveProject("acme", map[string]any{})
	if err != nil {
		t.Fatalf("saving project: %v", err)
	}
	if _, err := s.SaveTemplate(&Template{Name: "a", Content: "x", Extension: "txt", ProjectID: projectID}); err != nil {
		t.Fatalf("saving template: %v", err)
	}
	if _, err := s.SaveTemplate(&Template{Name: "b", Content: "x", Extension: "txt"}); err != nil {
		t.Fatalf("saving template: %v", err)
	}

	all, err := s.ListTemplates(0)
	if err != nil {
		t.Fatalf("listing templates: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 templates, got %d", len(all))
	}

	scoped, err := s.ListTemplates(projectID)
	if err != nil {
		t.Fatalf("listing templates: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "a" {
		t.Errorf("unexpected scoped list %+v", scoped)
	}
}

func TestLookupFeedsResolver(t *testing.T) {
	s := openTestStore(t)

	baseID, err := s.SaveTemplate(&Template{
		Name: "base", Content: "inherited body", Extension: "txt",
		Params: schema.Schema{{Name: "greeting", Default: "Hello"}},
	})
	if err != nil {
		t.Fatalf("saving base: %v", err)
	}
	childID, err := s.SaveTemplate(&Template{Name: "child", Content: "", Extension: "", ParentID: baseID})
	if err != nil {
		t.Fatalf("saving child: %v", err)
	}

	child, err := s.GetTemplate(childID)
	if err != nil {
		t.Fatalf("getting child: %v", err)
	}
	eff, err := inherit.Resolve(&inherit.Template{
		ID:       child.ID,
		Name:     child.Name,
		Content:  child.Content,
		ParentID: child.ParentID,
		Params:   child.Params,
	}, s.Lookup())
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if eff.Content != "inherited body" || eff.Extension != "txt" {
		t.Errorf("unexpected effective template %+v", eff)
	}
	if _, ok := eff.Params.Get("greeting"); !ok {
		t.Errorf("expected the inherited parameter, got %+v", eff.Params)
	}
}

func TestChangeLog(t *testing.T) {
	s := openTestStore(t)

	projectID, err := s.SaveProject("acme", map[string]any{})
	if err != nil {
		t.Fatalf("saving project: %v", err)
	}
	templateID, err := s.SaveTemplate(&Template{Name: "letter", Content: "x", Extension: "txt"})
	if err != nil {
		t.Fatalf("saving template: %v", err)
	}

	err = s.LogChange(&Change{
		ProjectID:  projectID,
		Actor:      "ada",
		ChangeType: "project_created",
		Details:    map[string]any{"name": "acme"},
	})
	if err != nil {
		t.Fatalf("logging change: %v", err)
	}
	err = s.LogChange(&Change{
		TemplateID: templateID,
		Actor:      "ada",
		ChangeType: "template_created",
	})
	if err != nil {
		t.Fatalf("logging change: %v", err)
	}

	history, err := s.ProjectHistory(projectID)
	if err != nil {
		t.Fatalf("project history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	entry := history[0]
	if entry.ID == "" {
		t.Error("expected a generated change id")
	}
	if entry.ChangeType != "project_created" || entry.Actor != "ada" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Details["name"] != "acme" {
		t.Errorf("details lost in round trip: %+v", entry.Details)
	}

	templateHistory, err := s.TemplateHistory(templateID)
	if err != nil {
		t.Fatalf("template history: %v", err)
	}
	if len(templateHistory) != 1 || templateHistory[0].ChangeType != "template_created" {
		t.Errorf("unexpected template history %+v", templateHistory)
	}
}

func TestSeedBaseTemplates(t *testing.T) {
	s := openTestStore(t)

	n, err := s.SeedBaseTemplates()
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if n == 0 {
		t.Fatal("expected seeded templates in an empty database")
	}

	// Seeding is idempotent: a populated database is left alone.
	again, err := s.SeedBaseTemplates()
	if err != nil {
		t.Fatalf("seeding twice: %v", err)
	}
	if again != 0 {
		t.Errorf("expected no new templates, got %d", again)
	}

	count, err := s.TemplateCount()
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != n {
		t.Errorf("expected %d templates, got %d", n, count)
	}
}
