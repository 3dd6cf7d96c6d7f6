// Package structure materializes a project's folder layout on disk and
// scans existing directories back into the same form. A structure is a
// nested map: a map value is a subfolder, a list value names the files
// in that folder.
package structure

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileFunc produces the content for one file being materialized. The
// returned string is written verbatim; an error aborts the walk.
type FileFunc func(dir, name string) (string, error)

// DefaultStructure is the layout installed for new projects that do
// not bring their own.
var DefaultStructure = map[string]any{
	"00_admin": map[string]any{
		"contracts": []any{},
		"legal":     []any{},
	},
	"01_strategy": map[string]any{
		"planning": []any{"business-plan.md", "roadmap.md"},
	},
	"02_operations": map[string]any{
		"manuals":   []any{},
		"processes": []any{},
	},
	"03_sales": map[string]any{
		"proposals": []any{"proposal.md"},
		"pricing":   []any{},
	},
	"04_finance": map[string]any{
		"invoices": []any{},
		"reports":  []any{"monthly-report.md"},
	},
}

// Materialize creates the project tree under root. Files are filled by
// fileFn; a nil fileFn writes a short placeholder. A STRUCTURE.md
// summary lands at the root.
func Materialize(root string, s map[string]any, fileFn FileFunc) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating project root: %w", err)
	}
	if err := createFolders(root, s, fileFn); err != nil {
		return err
	}
	summary := summaryDoc(filepath.Base(root), s)
	if err := os.WriteFile(filepath.Join(root, "STRUCTURE.md"), []byte(summary), 0644); err != nil {
		return fmt.Errorf("writing structure summary: %w", err)
	}
	return nil
}

func createFolders(base string, s map[string]any, fileFn FileFunc) error {
	for _, folder := range sortedKeys(s) {
		// "." holds files that sit directly in this folder.
		if folder == "." {
			files, ok := s[folder].([]any)
			if !ok {
				return fmt.Errorf("%s: the \".\" entry must be a file list, got %T", base, s[folder])
			}
			for _, f := range files {
				name, ok := f.(string)
				if !ok {
					return fmt.Errorf("%s: file entries must be strings, got %T", base, f)
				}
				if err := createFile(base, name, fileFn); err != nil {
					return err
				}
			}
			continue
		}
		dir := filepath.Join(base, folder)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating folder %s: %w", dir, err)
		}
		switch contents := s[folder].(type) {
		case map[string]any:
			if err := createFolders(dir, contents, fileFn); err != nil {
				return err
			}
		case []any:
			for _, f := range contents {
				name, ok := f.(string)
				if !ok {
					return fmt.Errorf("folder %s: file entries must be strings, got %T", folder, f)
				}
				if err := createFile(dir, name, fileFn); err != nil {
					return err
				}
			}
		case nil:
			// empty folder
		default:
			return fmt.Errorf("folder %s: contents must be a folder map or file list, got %T", folder, contents)
		}
	}
	return nil
}

func createFile(dir, name string, fileFn FileFunc) error {
	path := filepath.Join(dir, name)
	content := fmt.Sprintf("# %s\n\nStarter content for %s.\n", name, name)
	if fileFn != nil {
		rendered, err := fileFn(dir, name)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		if rendered != "" {
			content = rendered
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Scan walks a directory and returns its layout in structure form.
func Scan(path string) (map[string]any, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	out := map[string]any{}
	var files []any
	for _, e := range entries {
		if e.IsDir() {
			sub, err := Scan(filepath.Join(path, e.Name()))
			if err != nil {
				return nil, err
			}
			out[e.Name()] = sub
		} else {
			files = append(files, e.Name())
		}
	}
	if len(files) > 0 {
		out["."] = files
	}
	return out, nil
}

// summaryDoc renders the STRUCTURE.md content: the project name and an
// indented tree of folders and files.
func summaryDoc(name string, s map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Project structure: %s\n\n", name)
	folders, files := countItems(s)
	fmt.Fprintf(&b, "%d folders, %d files.\n\n```\n", folders, files)
	writeTree(&b, s, "")
	b.WriteString("```\n")
	return b.String()
}

func writeTree(b *strings.Builder, s map[string]any, prefix string) {
	for _, folder := range sortedKeys(s) {
		if folder == "." {
			if files, ok := s[folder].([]any); ok {
				for _, f := range files {
					fmt.Fprintf(b, "%s%v\n", prefix, f)
				}
			}
			continue
		}
		fmt.Fprintf(b, "%s%s/\n", prefix, folder)
		switch contents := s[folder].(type) {
		case map[string]any:
			writeTree(b, contents, prefix+"  ")
		case []any:
			for _, f := range contents {
				fmt.Fprintf(b, "%s  %v\n", prefix, f)
			}
		}
	}
}

func countItems(s map[string]any) (folders, files int) {
	for k, v := range s {
		if k != "." {
			folders++
		}
		switch contents := v.(type) {
		case map[string]any:
			f, n := countItems(contents)
			folders += f
			files += n
		case []any:
			files += len(contents)
		}
	}
	return folders, files
}

func sortedKeys(s map[string]any) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
