package engine

import (
	"github.com/kasterix/dyntpl/ast"
	"github.com/kasterix/dyntpl/eval"
	"github.com/kasterix/dyntpl/parser"
	"github.com/kasterix/dyntpl/value"
)

// Template owns a source string and its lazily-parsed AST. Compilation
// is guarded by a plain bool, not sync.Once: spec.md §5 pins the
// scheduling model as strictly single-threaded per Engine, so a
// Template is not expected to survive a data race on first render
// across goroutines any more than registerHelper/templ/templFile are.
type Template struct {
	engine   *Engine
	source   string
	compiled bool
	body     ast.Body
	parseErr error
}

func newTemplate(source string, e *Engine) *Template {
	return &Template{engine: e, source: source}
}

func (t *Template) ensureCompiled() {
	if t.compiled {
		return
	}
	t.compiled = true
	p := parser.New(t.source)
	body, err := p.Parse()
	if err != nil {
		t.engine.diagnoseParseError(err)
		t.body = nil
		t.parseErr = err
		return
	}
	t.body = body
}

// syntaxErrorSentinel is the distinguished error template's fixed
// render, per spec.md §4.C: "a single distinguished error template
// whose render returns the literal string `template syntax error`."
// This keeps the evaluator total - a bad template never panics, it
// just always renders this one string.
const syntaxErrorSentinel = "template syntax error"

// Render walks the template's AST under ctx, merged with the engine's
// shared data, and returns the output string. A Template whose source
// failed to parse is the distinguished error template and always
// renders syntaxErrorSentinel, regardless of ctx.
func (t *Template) Render(ctx value.Value) string {
	t.ensureCompiled()
	if t.parseErr != nil {
		return syntaxErrorSentinel
	}
	ev := eval.New(t.engine, t.engine.log)
	return ev.Render(t.body, t.engine.mergeShared(ctx))
}
