package engine

import (
	"errors"
	"testing"

	"github.com/kasterix/dyntpl/value"
)

type memFileReader struct {
	files map[string]string
}

func (m memFileReader) ReadFile(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, errors.New("not found: " + path)
	}
	return []byte(content), nil
}

func TestTemplRendersLiteralSource(t *testing.T) {
	e := New()
	tpl := e.Templ("Hello, @name!")
	ctx := value.NewObject()
	ctx.SetMember("name", value.String("World"))
	if got := tpl.Render(ctx); got != "Hello, World!" {
		t.Fatalf("got %q", got)
	}
}

func TestTemplCachesBySource(t *testing.T) {
	e := New()
	a := e.Templ("@x")
	b := e.Templ("@x")
	if a != b {
		t.Fatal("expected identical literal sources to share a cached Template")
	}
}

func TestTemplFileMissingEmitsEmptyTemplate(t *testing.T) {
	e := New(WithFileReader(memFileReader{files: map[string]string{}}))
	tpl := e.TemplFile("missing.tpl")
	if got := tpl.Render(value.NewObject()); got != "" {
		t.Fatalf("expected empty render for unreadable file, got %q", got)
	}
}

func TestTemplFileCachesByPath(t *testing.T) {
	e := New(WithFileReader(memFileReader{files: map[string]string{"a.tpl": "A"}}))
	a := e.TemplFile("a.tpl")
	b := e.TemplFile("a.tpl")
	if a != b {
		t.Fatal("expected path-keyed cache to return the same Template")
	}
}

func TestRegisterHelperAndCallHelper(t *testing.T) {
	e := New()
	e.RegisterHelper("shout", func(ctx, args value.Value) value.Value {
		return value.String(args.At(0).ToString() + "!")
	})
	if !e.HasHelper("shout") {
		t.Fatal("expected HasHelper to find registered helper")
	}
	got := e.CallHelper("shout", value.Null(), value.NewArray(value.String("hi")))
	if got.ToString() != "hi!" {
		t.Fatalf("got %q", got.ToString())
	}
}

func TestCallHelperMissingReturnsEmptyString(t *testing.T) {
	e := New()
	got := e.CallHelper("nope", value.Null(), value.NewArray())
	if got.ToString() != "" {
		t.Fatalf("expected empty string for missing helper, got %q", got.ToString())
	}
}

func TestShareMergesIntoRenderContextWithoutOverridingUserData(t *testing.T) {
	e := New()
	e.Share("site", value.String("default"))
	e.Share("title", value.String("should not win"))

	ctx := value.NewObject()
	ctx.SetMember("title", value.String("user wins"))

	tpl := e.Templ("@site/@title")
	if got := tpl.Render(ctx); got != "default/user wins" {
		t.Fatalf("got %q", got)
	}
}

func TestBuiltinRawHtmlAndEscaping(t *testing.T) {
	e := New()
	ctx := value.NewObject()
	ctx.SetMember("markup", value.String("<b>hi</b>"))

	escaped := e.Templ("@markup")
	if got := escaped.Render(ctx); got != "&lt;b&gt;hi&lt;/b&gt;" {
		t.Fatalf("got %q", got)
	}

	raw := e.Templ(`@rawHtml(markup)`)
	if got := raw.Render(ctx); got != "<b>hi</b>" {
		t.Fatalf("got %q", got)
	}
}

func TestBuiltinIncludeRendersSubTemplate(t *testing.T) {
	e := New(WithFileReader(memFileReader{files: map[string]string{
		"partial.tpl": "partial:@name",
	}}))
	ctx := value.NewObject()
	ctx.SetMember("name", value.String("x"))

	tpl := e.Templ(`@include("partial.tpl")`)
	if got := tpl.Render(ctx); got != "partial:x" {
		t.Fatalf("got %q", got)
	}
}

func TestBuiltinIncludeInsideForLoopSeesRootContext(t *testing.T) {
	e := New(WithFileReader(memFileReader{files: map[string]string{
		"row.tpl": "@site:@item",
	}}))
	ctx := value.NewObject()
	ctx.SetMember("site", value.String("acme"))
	ctx.SetMember("items", value.NewArray(value.String("x"), value.String("y")))

	tpl := e.Templ(`@for(item in items){@include("row.tpl") }`)
	if got := tpl.Render(ctx); got != "acme:x acme:y " {
		t.Fatalf("expected the included template to see the outer root context, got %q", got)
	}
}

func TestBuiltinStringHelpers(t *testing.T) {
	e := New()
	ctx := value.NewObject()
	ctx.SetMember("name", value.String("  Bob  "))

	tpl := e.Templ(`@trim(name)`)
	if got := tpl.Render(ctx); got != "Bob" {
		t.Fatalf("got %q", got)
	}

	tpl2 := e.Templ(`@upper(trimmed)`)
	ctx2 := value.NewObject()
	ctx2.SetMember("trimmed", value.String("bob"))
	if got := tpl2.Render(ctx2); got != "BOB" {
		t.Fatalf("got %q", got)
	}
}

func TestDevelopmentModeDisablesCache(t *testing.T) {
	e := New(WithDevelopment(true))
	a := e.Templ("@x")
	b := e.Templ("@x")
	if a == b {
		t.Fatal("expected development mode to bypass the literal-source cache")
	}
}
