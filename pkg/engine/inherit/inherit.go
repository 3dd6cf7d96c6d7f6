// Package inherit resolves template inheritance chains. A template may
// name a parent; the effective template is the chain merged root-first,
// with each child overriding what it sets and inheriting the rest.
package inherit

import (
	terrors "github.com/docufab/docufab/pkg/engine/errors"
	"github.com/docufab/docufab/pkg/engine/schema"
)

// Template is the minimal view of a stored template the resolver needs.
type Template struct {
	ID        int64
	Name      string
	Content   string
	Extension string
	ParentID  int64 // 0 means no parent
	Params    schema.Schema
	ProjectID int64
}

// Effective is the fully resolved template: the content and extension of
// the nearest ancestor that set them, and the merged parameter schema.
type Effective struct {
	Name      string
	Content   string
	Extension string
	Params    schema.Schema
}

// LookupFunc fetches a template by id. ok is false when no such
// template exists.
type LookupFunc func(id int64) (t *Template, ok bool)

// Resolve walks the parent chain of tpl and merges it root-first.
// Cycles and missing parents are inheritance errors.
func Resolve(tpl *Template, lookup LookupFunc) (*Effective, error) {
	chain, err := collectChain(tpl, lookup)
	if err != nil {
		return nil, err
	}

	eff := &Effective{Name: tpl.Name}
	for _, t := range chain {
		if t.Content != "" {
			eff.Content = t.Content
		}
		if t.Extension != "" {
			eff.Extension = t.Extension
		}
		eff.Params = eff.Params.Merge(t.Params)
	}
	return eff, nil
}

// collectChain returns the chain ordered root first, child last.
func collectChain(tpl *Template, lookup LookupFunc) ([]*Template, error) {
	var chain []*Template
	visited := map[int64]bool{}

	cur := tpl
	for {
		if visited[cur.ID] {
			return nil, terrors.NewInheritance(
				"inheritance cycle detected: template %d appears twice in its own ancestry", cur.ID)
		}
		visited[cur.ID] = true
		chain = append(chain, cur)

		if cur.ParentID == 0 {
			break
		}
		parent, ok := lookup(cur.ParentID)
		if !ok {
			return nil, terrors.NewInheritance(
				"template %q names parent %d, which does not exist", cur.Name, cur.ParentID)
		}
		cur = parent
	}

	// Reverse in place so the root comes first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
