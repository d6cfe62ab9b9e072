// Package dyntpl is a dynamically-typed, self-escaping template engine:
// a tree-walking evaluator over a polymorphic Value model, with a
// dotted member-chain grammar, helper calls, and automatic HTML
// escaping with an explicit raw-output escape hatch.
//
// # Basic usage
//
//	eng := dyntpl.New()
//	out := eng.Templ("Hello, @name!").Render(dyntpl.Object(map[string]dyntpl.Value{
//	    "name": dyntpl.String("World"),
//	}))
//
// # Template syntax
//
//   - @name, @user.email - escaped variable/member access
//   - @helper(arg1, arg2) - helper call, args evaluated left-to-right
//   - @if(cond){ ... }else if(cond){ ... }else{ ... } - conditional
//   - @unless(cond){ ... }else{ ... } - inverted conditional
//   - @for(item in list){ ... } - iteration, binds item/index/first/last
//   - cond ? a : b - ternary
//   - @rawHtml(value) - escape hatch: emits value unescaped
//   - @include("partial.tpl") - renders a file template into the context
package dyntpl

import (
	"github.com/kasterix/dyntpl/engine"
	"github.com/kasterix/dyntpl/value"
)

// Engine, Template, Option and HelperFunc re-export the engine
// package's façade so embedders need only import this root package for
// everyday use.
type (
	Engine     = engine.Engine
	Template   = engine.Template
	Option     = engine.Option
	HelperFunc = engine.HelperFunc
	FileReader = engine.FileReader
)

// Value is the dynamic datum templates and helpers operate on.
type Value = value.Value

var (
	New             = engine.New
	WithFileReader  = engine.WithFileReader
	WithLogger      = engine.WithLogger
	WithDevelopment = engine.WithDevelopment

	Null       = value.Null
	Bool       = value.Bool
	Int        = value.Int
	Double     = value.Double
	String     = value.String
	SafeString = value.SafeString
	NewArray   = value.NewArray
	NewObject  = value.NewObject
)

// FromValue and ToValue re-export the value package's generic
// UserType round-trip, kept as functions (not vars) since a generic
// function loses its type parameter if stored in a package-level var.
func FromValue[T any](tag string, v T) Value { return value.FromValue(tag, v) }
func ToValue[T any](v Value, tag string) (T, error) { return value.ToValue[T](v, tag) }

// Object constructs an Object Value from a plain Go map, for callers
// who'd rather not build one member at a time with NewObject/SetMember.
func Object(fields map[string]Value) Value {
	obj := value.NewObject()
	for k, v := range fields {
		obj.SetMember(k, v)
	}
	return obj
}
