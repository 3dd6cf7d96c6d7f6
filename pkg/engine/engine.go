// Package engine ties the template pipeline together: parse, cache,
// evaluate. It is the front door callers use; the sub-packages under
// pkg/engine do the actual work.
package engine

import (
	"github.com/docufab/docufab/pkg/engine/ast"
	"github.com/docufab/docufab/pkg/engine/evaluator"
	"github.com/docufab/docufab/pkg/engine/inherit"
	"github.com/docufab/docufab/pkg/engine/parser"
	"github.com/docufab/docufab/pkg/engine/schema"
)

const defaultCacheSize = 128

// Engine renders templates against parameter sets. It is safe for
// concurrent use.
type Engine struct {
	registry *evaluator.Registry
	opts     evaluator.Options
	cache    *parseCache
}

// New builds an engine with the standard function namespaces.
func New(opts evaluator.Options) *Engine {
	return &Engine{
		registry: evaluator.DefaultRegistry(opts),
		opts:     opts,
		cache:    newParseCache(defaultCacheSize),
	}
}

// Registry exposes the function registry so callers can register
// extra namespaces or list names for completion.
func (e *Engine) Registry() *evaluator.Registry { return e.registry }

// Parse returns the parsed template, consulting the cache first.
func (e *Engine) Parse(content string) (*ast.Template, error) {
	key := parseKey(content)
	if tpl, ok := e.cache.get(key); ok {
		return tpl, nil
	}
	tpl, err := parser.Parse(content)
	if err != nil {
		return nil, err
	}
	e.cache.put(key, tpl)
	return tpl, nil
}

// Render parses content and evaluates it with params bound as
// variables. Either the whole document renders or an error comes
// back; no partial output.
func (e *Engine) Render(content string, params map[string]any) (string, error) {
	tpl, err := e.Parse(content)
	if err != nil {
		return "", err
	}
	return evaluator.Render(tpl, e.buildEnv(params))
}

// RenderEffective renders a resolved template, overlaying schema
// defaults onto the supplied parameters first.
func (e *Engine) RenderEffective(eff *inherit.Effective, params map[string]any) (string, error) {
	applied, err := eff.Params.Apply(params)
	if err != nil {
		return "", err
	}
	return e.Render(eff.Content, applied)
}

// EvalExpression evaluates a bare expression, for interactive use.
func (e *Engine) EvalExpression(input string, params map[string]any) (string, error) {
	expr, err := parser.ParseExpression(input)
	if err != nil {
		return "", err
	}
	return evaluator.EvalExpression(expr, e.buildEnv(params))
}

// CheckParams validates params against a schema without rendering.
func (e *Engine) CheckParams(s schema.Schema, params map[string]any) error {
	_, err := s.Apply(params)
	return err
}

// ClearCache drops all parsed templates, for use after bulk edits.
func (e *Engine) ClearCache() { e.cache.clear() }

func (e *Engine) buildEnv(params map[string]any) *evaluator.Environment {
	env := evaluator.NewEnvironment()
	env.Registry = e.registry
	// The configured user profile is visible as a plain dictionary, so
	// {{USER.name}} resolves the same way as the USER.name() builtin.
	if len(e.opts.User) > 0 {
		env.Set("USER", evaluator.FromGo(e.opts.User))
	}
	for k, v := range params {
		env.Set(k, evaluator.FromGo(v))
	}
	return env
}
