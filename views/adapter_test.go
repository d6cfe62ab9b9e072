package views

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kasterix/dyntpl/engine"
	"github.com/kasterix/dyntpl/value"
)

type memFileReader struct{ files map[string]string }

func (m memFileReader) ReadFile(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, errors.New("not found: " + path)
	}
	return []byte(content), nil
}

func TestAdapterRenderPlain(t *testing.T) {
	eng := engine.New(engine.WithFileReader(memFileReader{files: map[string]string{
		"views/home.tpl": "Hello, @name!",
	}}))
	a := New("views", eng)

	var buf bytes.Buffer
	if err := a.Render(&buf, "home", map[string]string{"name": "World"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "Hello, World!" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestAdapterRenderWithLayout(t *testing.T) {
	eng := engine.New(engine.WithFileReader(memFileReader{files: map[string]string{
		"views/home.tpl":   "body-text",
		"views/layout.tpl": "<wrap>@content</wrap>",
	}}))
	a := New("views", eng)

	var buf bytes.Buffer
	if err := a.Render(&buf, "home", nil, "layout"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "<wrap>body-text</wrap>" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestAdapterAcceptsValueDirectly(t *testing.T) {
	eng := engine.New(engine.WithFileReader(memFileReader{files: map[string]string{
		"views/v.tpl": "@x",
	}}))
	a := New("views", eng)

	ctx := value.NewObject()
	ctx.SetMember("x", value.Int(42))

	var buf bytes.Buffer
	if err := a.Render(&buf, "v", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "42" {
		t.Fatalf("got %q", buf.String())
	}
}
