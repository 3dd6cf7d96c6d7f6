package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docufab/docufab/store"
	"github.com/docufab/docufab/structure"
)

func (a *app) projectCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("project: missing subcommand (create, list, generate, export, import, scan, archive, history)")
	}
	switch args[0] {
	case "create":
		return a.projectCreate(args[1:])
	case "list":
		return a.projectList(args[1:])
	case "generate":
		return a.projectGenerate(args[1:])
	case "export":
		return a.projectExport(args[1:])
	case "import":
		return a.projectImport(args[1:])
	case "scan":
		return a.projectScan(args[1:])
	case "archive":
		return a.projectArchive(args[1:])
	case "history":
		return a.projectHistory(args[1:])
	default:
		return fmt.Errorf("project: unknown subcommand %q", args[0])
	}
}

func (a *app) projectCreate(args []string) error {
	flags := flag.NewFlagSet("project create", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		name          = flags.String("name", "", "Project name (required)")
		structureFile = flags.String("structure", "", "JSON file with the folder structure")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("project create: --name is required")
	}
	s := structure.DefaultStructure
	if *structureFile != "" {
		data, err := os.ReadFile(*structureFile)
		if err != nil {
			return fmt.Errorf("reading structure file: %w", err)
		}
		s = map[string]any{}
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parsing structure file: %w", err)
		}
	}
	id, err := a.store.SaveProject(*name, s)
	if err != nil {
		return err
	}
	a.logProjectChange(id, "project_created", map[string]any{"name": *name})
	fmt.Fprintf(a.stdout, "created project %d (%s)\n", id, *name)
	return nil
}

func (a *app) projectList(args []string) error {
	flags := flag.NewFlagSet("project list", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}
	projects, err := a.store.ListProjects()
	if err != nil {
		return err
	}
	for _, p := range projects {
		folders, files := structureCounts(p.Structure)
		fmt.Fprintf(a.stdout, "%4d  %-24s  %d folders, %d files  (created %s)\n",
			p.ID, p.Name, folders, files, p.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (a *app) projectGenerate(args []string) error {
	flags := flag.NewFlagSet("project generate", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		id   = flags.Int64("id", 0, "Project id (required)")
		dest = flags.String("dest", "", "Destination directory (default: output dir)")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("project generate: --id is required")
	}
	p, err := a.store.GetProject(*id)
	if err != nil {
		return err
	}
	base := *dest
	if base == "" {
		base = a.cfg.OutputDir
	}
	root := filepath.Join(base, p.Name)
	if err := structure.Materialize(root, p.Structure, a.fileFromTemplate); err != nil {
		return err
	}
	a.logProjectChange(p.ID, "project_generated", map[string]any{"path": root})
	fmt.Fprintf(a.stdout, "generated %s\n", root)
	return nil
}

// fileFromTemplate fills a materialized file from the template whose
// name matches the file's base name, if one exists. Files without a
// matching template get the placeholder.
func (a *app) fileFromTemplate(dir, name string) (string, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	t, err := a.store.GetTemplateByName(base)
	if err != nil {
		return "", nil // no template, use the placeholder
	}
	eff, err := a.resolveStored(t)
	if err != nil {
		return "", err
	}
	out, err := a.engine.RenderEffective(eff, nil)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (a *app) projectExport(args []string) error {
	flags := flag.NewFlagSet("project export", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		id     = flags.Int64("id", 0, "Project id (required)")
		output = flags.String("output", "", "Output file (default: stdout)")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("project export: --id is required")
	}
	p, err := a.store.GetProject(*id)
	if err != nil {
		return err
	}
	data, err := structure.ExportJSON(p.Name, p.Structure)
	if err != nil {
		return err
	}
	if *output == "" {
		fmt.Fprintf(a.stdout, "%s\n", data)
		return nil
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(a.stdout, "exported project %d to %s\n", p.ID, *output)
	return nil
}

func (a *app) projectImport(args []string) error {
	flags := flag.NewFlagSet("project import", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	file := flags.String("file", "", "Exported JSON file (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("project import: --file is required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}
	name, s, err := structure.ImportJSON(data)
	if err != nil {
		return err
	}
	id, err := a.store.SaveProject(name, s)
	if err != nil {
		return err
	}
	a.logProjectChange(id, "project_imported", map[string]any{"name": name, "file": *file})
	fmt.Fprintf(a.stdout, "imported project %d (%s)\n", id, name)
	return nil
}

func (a *app) projectScan(args []string) error {
	flags := flag.NewFlagSet("project scan", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		name = flags.String("name", "", "Project name (required)")
		path = flags.String("path", "", "Directory to scan (required)")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *name == "" || *path == "" {
		return fmt.Errorf("project scan: --name and --path are required")
	}
	s, err := structure.Scan(*path)
	if err != nil {
		return err
	}
	id, err := a.store.SaveProject(*name, s)
	if err != nil {
		return err
	}
	a.logProjectChange(id, "project_scanned", map[string]any{"name": *name, "path": *path})
	fmt.Fprintf(a.stdout, "scanned %s into project %d (%s)\n", *path, id, *name)
	return nil
}

func (a *app) projectArchive(args []string) error {
	flags := flag.NewFlagSet("project archive", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	var (
		path   = flags.String("path", "", "Materialized project directory (required)")
		output = flags.String("output", "", "Archive file (default: <path>.tar.gz)")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("project archive: --path is required")
	}
	dest := *output
	if dest == "" {
		dest = filepath.Clean(*path) + ".tar.gz"
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()
	if err := structure.Archive(*path, f); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "archived %s to %s\n", *path, dest)
	return nil
}

func (a *app) projectHistory(args []string) error {
	flags := flag.NewFlagSet("project history", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	id := flags.Int64("id", 0, "Project id (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("project history: --id is required")
	}
	changes, err := a.store.ProjectHistory(*id)
	if err != nil {
		return err
	}
	for _, c := range changes {
		fmt.Fprintf(a.stdout, "%s  %-20s %s  %v\n",
			c.Timestamp.Format("2006-01-02 15:04:05"), c.ChangeType, c.Actor, c.Details)
	}
	return nil
}

func (a *app) logProjectChange(projectID int64, changeType string, details map[string]any) {
	err := a.store.LogChange(&store.Change{
		ProjectID:  projectID,
		Actor:      a.actor,
		ChangeType: changeType,
		Details:    details,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "warning: recording change: %v\n", err)
	}
}

func structureCounts(s map[string]any) (folders, files int) {
	for k, v := range s {
		if k != "." {
			folders++
		}
		switch contents := v.(type) {
		case map[string]any:
			f, n := structureCounts(contents)
			folders += f
			files += n
		case []any:
			files += len(contents)
		}
	}
	return folders, files
}
