package dyntpl

import "testing"

func TestScenarioPlainTextAndEscapedAt(t *testing.T) {
	eng := New()
	out := eng.Templ("<p>email@@example.com</p>").Render(Null())
	if out != "<p>email@example.com</p>" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioDottedMemberLookup(t *testing.T) {
	eng := New()
	people := Object(map[string]Value{
		"firstname": String("Foo"),
		"lastname":  String("Bar"),
	})
	ctx := Object(map[string]Value{"people": people})
	out := eng.Templ("<p>@{people.firstname} - @{people.lastname}</p>").Render(ctx)
	if out != "<p>Foo - Bar</p>" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioForLoopPreservesWhitespace(t *testing.T) {
	eng := New()
	ctx := Object(map[string]Value{
		"list": NewArray(String("Adam"), String("Bert")),
	})
	src := "<ul>\n@for(item in list) { <li>@item</li>\n}</ul>"
	out := eng.Templ(src).Render(ctx)
	want := "<ul>\n <li>Adam</li>\n <li>Bert</li>\n</ul>"
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}

func TestScenarioAutoEscapeOfStringVariable(t *testing.T) {
	eng := New()
	ctx := Object(map[string]Value{"string": String("<b>Hello</b>")})
	out := eng.Templ("<p>@string</p>").Render(ctx)
	if out != "<p>&lt;b&gt;Hello&lt;/b&gt;</p>" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioNestedHelperCalls(t *testing.T) {
	eng := New()
	eng.RegisterHelper("printString", func(ctx, args Value) Value {
		out := ""
		for _, a := range args.Elements() {
			out += a.ToString()
		}
		return String(out)
	})
	eng.RegisterHelper("multiply", func(ctx, args Value) Value {
		return args.At(0).Mul(args.At(1))
	})
	out := eng.Templ(`<p>@printString( printString("10*","20="), multiply(10,20))</p>`).Render(NewObject())
	if out != "<p>10*20=200</p>" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioIfElseIfElse(t *testing.T) {
	eng := New()
	tpl := eng.Templ("@if(a){A}else if(b){B}else{C}")

	cases := []struct {
		a, b Value
		want string
	}{
		{Bool(true), Bool(false), "A"},
		{Bool(false), Bool(true), "B"},
		{Bool(false), Bool(false), "C"},
	}
	for _, c := range cases {
		ctx := Object(map[string]Value{"a": c.a, "b": c.b})
		if got := tpl.Render(ctx); got != c.want {
			t.Fatalf("a=%v b=%v: got %q want %q", c.a, c.b, got, c.want)
		}
	}
}

func TestScenarioObjectLiteralHelperArgument(t *testing.T) {
	eng := New()
	eng.RegisterHelper("returnObject", func(ctx, args Value) Value {
		obj := args.At(0)
		if !obj.IsObject() || obj.Size() != 3 {
			return String("wrong")
		}
		return String("ok")
	})
	out := eng.Templ(`@returnObject({string:"hello", empty:{}, integer:10})`).Render(NewObject())
	if out != "ok" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioInlineTernary(t *testing.T) {
	eng := New()
	tpl := eng.Templ("<p>@{c ? x : y}</p>")

	ctxTrue := Object(map[string]Value{"c": Bool(true), "x": String("T"), "y": String("F")})
	if out := tpl.Render(ctxTrue); out != "<p>T</p>" {
		t.Fatalf("got %q", out)
	}

	ctxFalse := Object(map[string]Value{"c": Bool(false), "x": String("T"), "y": String("F")})
	if out := tpl.Render(ctxFalse); out != "<p>F</p>" {
		t.Fatalf("got %q", out)
	}
}

func TestPropertyRawHtmlInvertsEscape(t *testing.T) {
	eng := New()
	ctx := Object(map[string]Value{"s": String(`&lt;p class=&quot;x&quot;&gt;A &amp; B&lt;/p&gt;`)})
	out := eng.Templ(`@rawHtml(s)`).Render(ctx)
	if out != `<p class="x">A & B</p>` {
		t.Fatalf("got %q", out)
	}
}

func TestPropertyNoDirectivesRendersSourceVerbatim(t *testing.T) {
	eng := New()
	src := "just plain text with no directives at all"
	if out := eng.Templ(src).Render(Null()); out != src {
		t.Fatalf("got %q", out)
	}
}

func TestPropertyObjectInsertionOrderPreservedInForLoop(t *testing.T) {
	eng := New()
	obj := NewObject()
	obj.SetMember("z", String("1"))
	obj.SetMember("a", String("2"))
	obj.SetMember("m", String("3"))
	ctx := Object(map[string]Value{"items": obj})

	out := eng.Templ("@for(v in items) { @v}").Render(ctx)
	if out != " 1 2 3" {
		t.Fatalf("got %q", out)
	}
}

func TestPropertyRepeatedRenderIsIdempotent(t *testing.T) {
	eng := New()
	tpl := eng.Templ("@if(a){yes}else{no}")
	ctx := Object(map[string]Value{"a": Bool(true)})
	first := tpl.Render(ctx)
	second := tpl.Render(ctx)
	if first != second || first != "yes" {
		t.Fatalf("not idempotent: %q vs %q", first, second)
	}
}

func TestSyntaxErrorSentinel(t *testing.T) {
	eng := New()
	out := eng.Templ("@if(").Render(NewObject())
	if out != "template syntax error" {
		t.Fatalf("got %q", out)
	}
}
