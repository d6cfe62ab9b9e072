package engine

import (
	"strings"

	"github.com/kasterix/dyntpl/escape"
	"github.com/kasterix/dyntpl/value"
)

// registerBuiltins installs include/rawHtml (spec.md §4.H, grounded on
// original_source/buildinhelpers.cpp) plus the supplemented catalogue
// from SPEC_FULL.md §5, adapted from the teacher's DefaultFunctions().
func registerBuiltins(e *Engine) {
	e.RegisterHelper("include", includeHelper(e))
	e.RegisterHelper("rawHtml", rawHtmlHelper)
	e.RegisterHelper("upper", upperHelper)
	e.RegisterHelper("lower", lowerHelper)
	e.RegisterHelper("trim", trimHelper)
	e.RegisterHelper("length", lengthHelper)
	e.RegisterHelper("default", defaultHelper)
	e.RegisterHelper("join", joinHelper)
}

// includeHelper closes over the owning Engine so it can recurse into
// templFile, per spec.md §4.H: args[0] names a file; no args renders
// empty.
func includeHelper(e *Engine) HelperFunc {
	return func(ctx, args value.Value) value.Value {
		if args.Size() == 0 {
			return value.String("")
		}
		name := args.At(0).ToString()
		return value.SafeString(e.TemplFile(name).Render(ctx))
	}
}

// rawHtmlHelper accepts exactly one argument. A String argument is
// unescaped and marked safe; any other Value passes through unchanged;
// zero or more than one argument yields empty string.
func rawHtmlHelper(ctx, args value.Value) value.Value {
	if args.Size() != 1 {
		return value.String("")
	}
	arg := args.At(0)
	if !arg.IsString() {
		return arg
	}
	return value.SafeString(escape.Unescape(arg.ToString()))
}

func upperHelper(ctx, args value.Value) value.Value {
	if args.Size() == 0 {
		return value.String("")
	}
	return value.String(strings.ToUpper(args.At(0).ToString()))
}

func lowerHelper(ctx, args value.Value) value.Value {
	if args.Size() == 0 {
		return value.String("")
	}
	return value.String(strings.ToLower(args.At(0).ToString()))
}

func trimHelper(ctx, args value.Value) value.Value {
	if args.Size() == 0 {
		return value.String("")
	}
	return value.String(strings.TrimSpace(args.At(0).ToString()))
}

// lengthHelper is size() callable as a helper rather than only as a
// member-chain pseudo-member, per SPEC_FULL.md §5.1.
func lengthHelper(ctx, args value.Value) value.Value {
	if args.Size() == 0 {
		return value.Int(0)
	}
	return value.Int(int64(args.At(0).Size()))
}

// defaultHelper returns the first argument that is neither Null nor
// empty (Size() == 0), or Null if every argument is.
func defaultHelper(ctx, args value.Value) value.Value {
	for _, a := range args.Elements() {
		if !a.IsNull() && a.Size() > 0 {
			return a
		}
	}
	return value.Null()
}

// joinHelper concatenates args[0]'s elements with args[1] as a
// separator (defaulting to ",").
func joinHelper(ctx, args value.Value) value.Value {
	if args.Size() == 0 || !args.At(0).IsArray() {
		return value.String("")
	}
	sep := ","
	if args.Size() > 1 {
		sep = args.At(1).ToString()
	}
	parts := make([]string, 0, args.At(0).Size())
	for _, e := range args.At(0).Elements() {
		parts = append(parts, e.ToString())
	}
	return value.String(strings.Join(parts, sep))
}
