package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/docufab/docufab/pkg/engine/inherit"
	"github.com/docufab/docufab/pkg/engine/schema"
	"github.com/docufab/docufab/store"
)

// paramFlags collects repeated --param name=value flags.
type paramFlags map[string]string

func (p paramFlags) String() string { return fmt.Sprintf("%v", map[string]string(p)) }

func (p paramFlags) Set(value string) error {
	name, val, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", value)
	}
	p[name] = val
	return nil
}

func (a *app) templateCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("template: missing subcommand (create, modify, inherit, render, list, delete, history)")
	}
	switch args[0] {
	case "create":
		return a.templateCreate(args[1:])
	case "modify":
		return a.templateModify(args[1:])
	case "inherit":
		return a.templateInherit(args[1:])
	case "render":
		return a.templateRender(args[1:])
	case "list":
		return a.templateList(args[1:])
	case "delete":
		return a.templateDelete(args[1:])
	case "history":
		return a.templateHistory(args[1:])
	default:
		return fmt.Errorf("template: unknown subcommand %q", args[0])
	}
}

func (a *app) templateCreate(args []string) error {
	flags := flag.NewFlagSet("template create", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		name       = flags.String("name", "", "Template name (required)")
		contentArg = flags.String("content", "", "Template content")
		file       = flags.String("file", "", "Read content from a file")
		ext        = flags.String("extension", "txt", "Output extension")
		paramsFile = flags.String("params-file", "", "YAML file declaring parameters")
		parent     = flags.Int64("parent", 0, "Parent template id")
		project    = flags.Int64("project", 0, "Project id")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("template create: --name is required")
	}
	content, err := readContent(*contentArg, *file)
	if err != nil {
		return err
	}
	// Reject broken templates before they reach the database.
	if content != "" {
		if _, err := a.engine.Parse(content); err != nil {
			return err
		}
	}
	params, err := readParamsSchema(*paramsFile)
	if err != nil {
		return err
	}
	t := &store.Template{
		Name:      *name,
		Content:   content,
		Extension: *ext,
		ParentID:  *parent,
		ProjectID: *project,
		Params:    params,
	}
	id, err := a.store.SaveTemplate(t)
	if err != nil {
		return err
	}
	a.logTemplateChange(id, *project, "template_created", map[string]any{"name": *name})
	fmt.Fprintf(a.stdout, "created template %d (%s)\n", id, *name)
	return nil
}

func (a *app) templateModify(args []string) error {
	flags := flag.NewFlagSet("template modify", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		id         = flags.Int64("id", 0, "Template id (required)")
		name       = flags.String("name", "", "New name")
		contentArg = flags.String("content", "", "New content")
		file       = flags.String("file", "", "Read new content from a file")
		ext        = flags.String("extension", "", "New output extension")
		paramsFile = flags.String("params-file", "", "YAML file declaring parameters")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("template modify: --id is required")
	}
	t, err := a.store.GetTemplate(*id)
	if err != nil {
		return err
	}
	before := *t
	if *name != "" {
		t.Name = *name
	}
	if *contentArg != "" || *file != "" {
		content, err := readContent(*contentArg, *file)
		if err != nil {
			return err
		}
		if _, err := a.engine.Parse(content); err != nil {
			return err
		}
		t.Content = content
	}
	if *ext != "" {
		t.Extension = *ext
	}
	if *paramsFile != "" {
		params, err := readParamsSchema(*paramsFile)
		if err != nil {
			return err
		}
		t.Params = params
	}
	if err := a.store.UpdateTemplate(t); err != nil {
		return err
	}
	a.logTemplateChange(t.ID, t.ProjectID, "template_modified", modifyDetails(before, *t))
	fmt.Fprintf(a.stdout, "modified template %d (%s)\n", t.ID, t.Name)
	return nil
}

func (a *app) templateInherit(args []string) error {
	flags := flag.NewFlagSet("template inherit", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		name       = flags.String("name", "", "New template name (required)")
		parent     = flags.Int64("parent", 0, "Parent template id (required)")
		contentArg = flags.String("content", "", "Override content (empty inherits the parent's)")
		file       = flags.String("file", "", "Read override content from a file")
		ext        = flags.String("extension", "", "Override extension")
		paramsFile = flags.String("params-file", "", "YAML file with parameter overrides")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *name == "" || *parent == 0 {
		return fmt.Errorf("template inherit: --name and --parent are required")
	}
	if _, err := a.store.GetTemplate(*parent); err != nil {
		return err
	}
	content, err := readContent(*contentArg, *file)
	if err != nil {
		return err
	}
	if content != "" {
		if _, err := a.engine.Parse(content); err != nil {
			return err
		}
	}
	params, err := readParamsSchema(*paramsFile)
	if err != nil {
		return err
	}
	t := &store.Template{
		Name:      *name,
		Content:   content,
		Extension: *ext,
		ParentID:  *parent,
		Params:    params,
	}
	id, err := a.store.SaveTemplate(t)
	if err != nil {
		return err
	}
	// Prove the chain resolves while the parent is fresh in mind.
	t.ID = id
	if _, err := a.resolveStored(t); err != nil {
		return err
	}
	a.logTemplateChange(id, 0, "template_inherited", map[string]any{"name": *name, "parent": *parent})
	fmt.Fprintf(a.stdout, "created template %d (%s) extending %d\n", id, *name, *parent)
	return nil
}

func (a *app) templateRender(args []string) error {
	flags := flag.NewFlagSet("template render", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	params := paramFlags{}
	var (
		id         = flags.Int64("id", 0, "Template id")
		name       = flags.String("name", "", "Template name (alternative to --id)")
		output     = flags.String("output", "", "Output file (default: stdout)")
		paramsFile = flags.String("params", "", "YAML file with parameter values")
	)
	flags.Var(params, "param", "Parameter as name=value (repeatable)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	t, err := a.findTemplate(*id, *name)
	if err != nil {
		return err
	}
	eff, err := a.resolveStored(t)
	if err != nil {
		return err
	}
	values, err := a.collectParams(eff.Params, params, *paramsFile)
	if err != nil {
		return err
	}
	out, err := a.engine.RenderEffective(eff, values)
	if err != nil {
		return err
	}

	if *output == "" {
		fmt.Fprint(a.stdout, out)
		return nil
	}
	path := *output
	if filepath.Ext(path) == "" && eff.Extension != "" {
		path += "." + eff.Extension
	}
	r, err := a.factory.For(eff.Extension)
	if err != nil {
		return err
	}
	if err := r.Render(out, path); err != nil {
		return err
	}
	a.logTemplateChange(t.ID, t.ProjectID, "template_rendered", map[string]any{"output": path})
	fmt.Fprintf(a.stdout, "rendered %s\n", path)
	return nil
}

func (a *app) templateList(args []string) error {
	flags := flag.NewFlagSet("template list", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	project := flags.Int64("project", 0, "Only templates of this project")
	if err := flags.Parse(args); err != nil {
		return err
	}
	templates, err := a.store.ListTemplates(*project)
	if err != nil {
		return err
	}
	for _, t := range templates {
		parent := "-"
		if t.ParentID != 0 {
			parent = fmt.Sprintf("%d", t.ParentID)
		}
		fmt.Fprintf(a.stdout, "%4d  %-24s  ext=%-5s parent=%-4s params=%d\n",
			t.ID, t.Name, t.Extension, parent, len(t.Params))
	}
	return nil
}

func (a *app) templateDelete(args []string) error {
	flags := flag.NewFlagSet("template delete", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	id := flags.Int64("id", 0, "Template id (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("template delete: --id is required")
	}
	t, err := a.store.GetTemplate(*id)
	if err != nil {
		return err
	}
	if err := a.store.DeleteTemplate(*id); err != nil {
		return err
	}
	a.logTemplateChange(*id, t.ProjectID, "template_deleted", map[string]any{"name": t.Name})
	fmt.Fprintf(a.stdout, "deleted template %d (%s)\n", *id, t.Name)
	return nil
}

func (a *app) templateHistory(args []string) error {
	flags := flag.NewFlagSet("template history", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	id := flags.Int64("id", 0, "Template id (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("template history: --id is required")
	}
	changes, err := a.store.TemplateHistory(*id)
	if err != nil {
		return err
	}
	for _, c := range changes {
		fmt.Fprintf(a.stdout, "%s  %-20s %s  %v\n",
			c.Timestamp.Format("2006-01-02 15:04:05"), c.ChangeType, c.Actor, c.Details)
	}
	return nil
}

// findTemplate resolves --id/--name flags to a stored template.
func (a *app) findTemplate(id int64, name string) (*store.Template, error) {
	switch {
	case id != 0:
		return a.store.GetTemplate(id)
	case name != "":
		return a.store.GetTemplateByName(name)
	default:
		return nil, fmt.Errorf("either --id or --name is required")
	}
}

// resolveStored runs the inheritance resolver over a stored template.
func (a *app) resolveStored(t *store.Template) (*inherit.Effective, error) {
	return inherit.Resolve(&inherit.Template{
		ID:        t.ID,
		Name:      t.Name,
		Content:   t.Content,
		Extension: t.Extension,
		ParentID:  t.ParentID,
		Params:    t.Params,
		ProjectID: t.ProjectID,
	}, a.store.Lookup())
}

// collectParams merges a YAML values file with --param flags, coercing
// flag strings through the schema's declared types.
func (a *app) collectParams(s schema.Schema, flags paramFlags, paramsFile string) (map[string]any, error) {
	values := map[string]any{}
	if paramsFile != "" {
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return nil, fmt.Errorf("reading params file: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parsing params file: %w", err)
		}
	}
	for name, raw := range flags {
		if p, ok := s.Get(name); ok {
			v, err := p.Coerce(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", name, err)
			}
			values[name] = v
		} else {
			values[name] = raw
		}
	}
	return values, nil
}

// logTemplateChange records an audit entry; failures are reported but
// never break the command that triggered them.
func (a *app) logTemplateChange(templateID, projectID int64, changeType string, details map[string]any) {
	err := a.store.LogChange(&store.Change{
		TemplateID: templateID,
		ProjectID:  projectID,
		Actor:      a.actor,
		ChangeType: changeType,
		Details:    details,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "warning: recording change: %v\n", err)
	}
}

// modifyDetails builds the audit payload for a modify: the template
// name plus old and new values for every field the modify changed.
func modifyDetails(before, after store.Template) map[string]any {
	d := map[string]any{"name": after.Name}
	changes := map[string]any{}
	record := func(field string, old, new any) {
		changes[field] = map[string]any{"old": old, "new": new}
	}
	if before.Name != after.Name {
		record("name", before.Name, after.Name)
	}
	if before.Content != after.Content {
		record("content", before.Content, after.Content)
	}
	if before.Extension != after.Extension {
		record("extension", before.Extension, after.Extension)
	}
	if !reflect.DeepEqual(before.Params, after.Params) {
		record("params", before.Params, after.Params)
	}
	if len(changes) > 0 {
		d["changes"] = changes
	}
	return d
}

// readContent prefers inline content, then a file.
func readContent(inline, file string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file == "" {
		return "", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading content file: %w", err)
	}
	return string(data), nil
}

// readParamsSchema loads a parameter schema from YAML.
func readParamsSchema(file string) (schema.Schema, error) {
	if file == "" {
		return nil, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading params file: %w", err)
	}
	var s schema.Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing params file: %w", err)
	}
	return s, nil
}
