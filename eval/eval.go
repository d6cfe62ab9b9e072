// Package eval implements the tree-walking evaluator: it turns an
// ast.Body and a context Value into a rendered string, consulting the
// owning engine only through the narrow HelperLookup seam so this
// package never imports the engine package (the engine imports eval,
// not the other way around).
package eval

import (
	"log/slog"
	"strings"

	"github.com/kasterix/dyntpl/ast"
	"github.com/kasterix/dyntpl/escape"
	"github.com/kasterix/dyntpl/value"
)

// HelperLookup is the evaluator's view of an Engine: look a helper up
// by name and invoke it, or report it missing. Defined here rather than
// imported from engine to avoid an import cycle (engine.Template owns
// an Evaluator; an Evaluator must not own an Engine). Engine's public
// CallHelper (spec.md §4.G's callHelper operation) already logs and
// substitutes an empty string on a miss for direct embedder callers;
// LookupHelper is the side-channel that lets the evaluator apply its
// own position-aware diagnostic instead of duplicating Engine's.
type HelperLookup interface {
	LookupHelper(name string, ctx value.Value, args value.Value) (value.Value, bool)
}

// Evaluator walks an ast.Body against a context Value. It holds no
// per-render state of its own; Render is safe to call repeatedly with
// different bodies and contexts, matching spec.md §5's single-threaded,
// no-suspension contract (concurrent renders on the SAME Evaluator are
// still the caller's problem to serialize, same as the rest of Engine).
type Evaluator struct {
	helpers HelperLookup
	log     *slog.Logger
}

// New constructs an Evaluator bound to a helper registry and a
// diagnostics sink. A nil logger falls back to slog.Default().
func New(helpers HelperLookup, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{helpers: helpers, log: log}
}

// Render walks body under the given root context and returns the
// concatenated output, per spec.md §4.E's "top-level rendering
// concatenates the results of each root sibling" rule.
func (e *Evaluator) Render(body ast.Body, ctx value.Value) string {
	var sb strings.Builder
	e.renderBody(body, []value.Value{ctx}, &sb)
	return sb.String()
}

func (e *Evaluator) renderBody(body ast.Body, scope []value.Value, sb *strings.Builder) {
	for _, n := range body {
		e.renderNode(n, scope, sb)
	}
}

func (e *Evaluator) renderNode(n ast.Node, scope []value.Value, sb *strings.Builder) {
	switch node := n.(type) {
	case *ast.HtmlText:
		sb.WriteString(node.Text)

	case *ast.IntLiteral:
		sb.WriteString(value.Int(node.Value).ToString())

	case *ast.StringLiteral:
		// Author-supplied literals are never escaped on output.
		sb.WriteString(node.Value)

	case *ast.Variable:
		e.emit(e.evalVariable(node, scope), sb)

	case *ast.Helper:
		e.emit(e.evalHelper(node, scope), sb)

	case *ast.BinaryExpr:
		e.emit(e.evalBinaryExpr(node, scope), sb)

	case *ast.Ternary:
		e.emit(e.evalTernary(node, scope), sb)

	case *ast.If:
		e.renderIf(node, scope, sb)

	case *ast.Unless:
		e.renderUnless(node, scope, sb)

	case *ast.ForLoop:
		e.renderForLoop(node, scope, sb)

	default:
		e.diagnose("eval: unhandled node kind", node.Pos())
	}
}

// emit stringifies v into sb, HTML-escaping a String value that isn't
// flagged safe. Non-string values stringify via Value.ToString() with
// no escaping, per spec.md §4.E.
func (e *Evaluator) emit(v value.Value, sb *strings.Builder) {
	if v.IsString() && !v.IsSafe() {
		sb.WriteString(escape.Escape(v.ToString()))
		return
	}
	sb.WriteString(v.ToString())
}

func (e *Evaluator) renderIf(n *ast.If, scope []value.Value, sb *strings.Builder) {
	if n.Cond != nil && e.Eval(n.Cond, scope).ToBool() {
		e.renderBody(n.Then, scope, sb)
		return
	}
	for _, ei := range n.ElseIfs {
		if e.Eval(ei.Cond, scope).ToBool() {
			e.renderBody(ei.Body, scope, sb)
			return
		}
	}
	if n.ElseBranch != nil {
		e.renderBody(n.ElseBranch, scope, sb)
	}
}

func (e *Evaluator) renderUnless(n *ast.Unless, scope []value.Value, sb *strings.Builder) {
	if !e.Eval(n.Cond, scope).ToBool() {
		e.renderBody(n.Then, scope, sb)
		return
	}
	if n.ElseBranch != nil {
		e.renderBody(n.ElseBranch, scope, sb)
	}
}

// renderForLoop evaluates ListExpr once, then renders Body once per
// element under a child scope frame: an Object carrying the bound loop
// variable plus the index/first/last pseudo-variables, pushed onto the
// scope stack in place of spec.md's reserved parentContext key (see
// DESIGN.md's scope-stack redesign note).
func (e *Evaluator) renderForLoop(n *ast.ForLoop, scope []value.Value, sb *strings.Builder) {
	list := e.Eval(n.ListExpr, scope)
	if !list.IsArray() && !list.IsObject() {
		return
	}
	elems := collectElements(list)
	last := len(elems) - 1
	for i, el := range elems {
		child := value.NewObject()
		child.SetMember(n.VarName, el)
		child.SetMember("index", value.Int(int64(i)))
		child.SetMember("first", value.Bool(i == 0))
		child.SetMember("last", value.Bool(i == last))
		e.renderBody(n.Body, append(scope, child), sb)
	}
}

func collectElements(v value.Value) []value.Value {
	var out []value.Value
	v.Iterate(func(e value.Value) { out = append(out, e) })
	return out
}

// Eval evaluates an arbitrary expression node to a Value without
// stringifying or escaping it, for use inside conditions, operands, and
// helper arguments where the result stays a Value.
func (e *Evaluator) Eval(n ast.Node, scope []value.Value) value.Value {
	switch node := n.(type) {
	case *ast.IntLiteral:
		return value.Int(node.Value)
	case *ast.StringLiteral:
		return value.SafeString(node.Value)
	case *ast.Variable:
		return e.evalVariable(node, scope)
	case *ast.Helper:
		return e.evalHelper(node, scope)
	case *ast.BinaryExpr:
		return e.evalBinaryExpr(node, scope)
	case *ast.Ternary:
		return e.evalTernary(node, scope)
	case *ast.ObjectLit:
		return e.evalObjectLit(node, scope)
	default:
		e.diagnose("eval: unhandled expression kind", n.Pos())
		return value.Null()
	}
}

func (e *Evaluator) evalVariable(n *ast.Variable, scope []value.Value) value.Value {
	cur := e.findInScope(scope, n.Name, n.Pos())
	for m := n.Member; m != nil; m = m.Member {
		if cur.IsNull() {
			return value.Null()
		}
		cur = e.resolveMember(cur, m.Name, m.Pos())
	}
	return cur
}

func (e *Evaluator) evalHelper(n *ast.Helper, scope []value.Value) value.Value {
	args := value.NewArray()
	for _, a := range n.Args {
		args.Append(e.Eval(a, scope))
	}
	ctx := mergeScope(scope)
	result, ok := value.Null(), false
	if e.helpers != nil {
		result, ok = e.helpers.LookupHelper(n.Name, ctx, args)
	}
	if !ok {
		e.diagnose("unknown helper "+n.Name, n.Pos())
		return value.String("")
	}
	cur := result
	for m := n.Member; m != nil; m = m.Member {
		if cur.IsNull() {
			return value.Null()
		}
		cur = e.resolveMember(cur, m.Name, m.Pos())
	}
	return cur
}

// mergeScope flattens the scope stack into a single Object a helper can
// be handed as its context, root frame first so each shallower frame's
// members (the innermost loop's bound variable, index/first/last) win
// on a key collision. This is what keeps a helper called from inside a
// for-loop body - or a template it recursively renders via @include -
// able to see the root context's variables, the same transitive
// visibility the replaced parentContext chain gave (see DESIGN.md).
func mergeScope(scope []value.Value) value.Value {
	if len(scope) == 1 {
		return scope[0]
	}
	merged := value.NewObject()
	for _, frame := range scope {
		if !frame.IsObject() {
			continue
		}
		for _, k := range frame.Keys() {
			merged.SetMember(k, frame.Member(k))
		}
	}
	return merged
}

func (e *Evaluator) evalObjectLit(n *ast.ObjectLit, scope []value.Value) value.Value {
	obj := value.NewObject()
	for _, m := range n.Members {
		obj.SetMember(m.Name, e.Eval(m.Value, scope))
	}
	return obj
}

func (e *Evaluator) evalBinaryExpr(n *ast.BinaryExpr, scope []value.Value) value.Value {
	lhs := e.Eval(n.Lhs, scope)
	rhs := e.Eval(n.Rhs, scope)
	switch n.Op {
	case ast.OpAdd:
		return lhs.Add(rhs)
	case ast.OpSub:
		return lhs.Sub(rhs)
	case ast.OpMul:
		return lhs.Mul(rhs)
	case ast.OpDiv:
		return lhs.Div(rhs)
	case ast.OpEq:
		return value.Bool(lhs.Eq(rhs))
	case ast.OpNeq:
		return value.Bool(lhs.Neq(rhs))
	case ast.OpLt:
		return value.Bool(lhs.Lt(rhs))
	case ast.OpLte:
		return value.Bool(lhs.Lte(rhs))
	case ast.OpGt:
		return value.Bool(lhs.Gt(rhs))
	case ast.OpGte:
		return value.Bool(lhs.Gte(rhs))
	default:
		e.diagnose("eval: unknown binary operator", n.Pos())
		return value.Null()
	}
}

func (e *Evaluator) evalTernary(n *ast.Ternary, scope []value.Value) value.Value {
	if e.Eval(n.Cond, scope).ToBool() {
		return e.Eval(n.Then, scope)
	}
	return e.Eval(n.Else, scope)
}

// findInScope walks the scope stack top to bottom for a direct Object
// member named name; at the bottom (root) frame it falls through to
// the built-in pseudo-members (length/size/empty?/isEmpty?) before
// giving up, mirroring spec.md §4.E's findVariable with the
// parentContext chain replaced by an explicit stack (see DESIGN.md).
func (e *Evaluator) findInScope(scope []value.Value, name string, pos ast.Position) value.Value {
	for i := len(scope) - 1; i >= 0; i-- {
		frame := scope[i]
		if frame.IsObject() && frame.HasMember(name) {
			return frame.Member(name)
		}
		if i == 0 {
			if v, ok := pseudoMember(frame, name); ok {
				return v
			}
			e.diagnose("unknown variable "+name, pos)
			return value.Null()
		}
	}
	e.diagnose("unknown variable "+name, pos)
	return value.Null()
}

// resolveMember resolves a single dotted-chain step against an already
// evaluated current value: a direct Object member, else a pseudo-member
// on Array/Object, else a diagnostic and Null.
func (e *Evaluator) resolveMember(cur value.Value, name string, pos ast.Position) value.Value {
	if cur.IsObject() && cur.HasMember(name) {
		return cur.Member(name)
	}
	if v, ok := pseudoMember(cur, name); ok {
		return v
	}
	e.diagnose("unknown variable "+name, pos)
	return value.Null()
}

func pseudoMember(v value.Value, name string) (value.Value, bool) {
	if !v.IsArray() && !v.IsObject() {
		return value.Value{}, false
	}
	switch name {
	case "length", "size":
		return value.Int(int64(v.Size())), true
	case "empty?", "isEmpty?":
		return value.Bool(v.Size() == 0), true
	default:
		return value.Value{}, false
	}
}

func (e *Evaluator) diagnose(msg string, pos ast.Position) {
	e.log.Warn(msg, slog.Int("line", pos.Line), slog.Int("column", pos.Column))
}
