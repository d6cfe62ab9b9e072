// Package views adapts an *engine.Engine to the directory-backed,
// Load/Render shape a host web framework's view-renderer interface
// typically expects (gofiber's fiber.Views is the shape this mirrors).
// It imports no web framework: it only duck-types the method set, the
// same way the teacher's fiber/adapter.go happened to have no hard
// gofiber dependency in its own go.mod, only the shape.
package views

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kasterix/dyntpl/engine"
	"github.com/kasterix/dyntpl/value"
)

// Adapter renders named templates from a directory root, built purely
// against engine.Engine.
type Adapter struct {
	eng       *engine.Engine
	directory string
	extension string
	reload    bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithExtension overrides the default ".tpl" file extension.
func WithExtension(ext string) Option {
	return func(a *Adapter) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		a.extension = ext
	}
}

// WithReload clears the engine's template cache before every render,
// the development-mode analogue of the teacher's fiber.Engine.Reload.
func WithReload(reload bool) Option {
	return func(a *Adapter) { a.reload = reload }
}

// New constructs an Adapter rooted at directory, rendering through eng.
func New(directory string, eng *engine.Engine, opts ...Option) *Adapter {
	a := &Adapter{eng: eng, directory: directory, extension: ".tpl"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) resolvePath(name string) string {
	name = strings.ReplaceAll(name, ".", string(filepath.Separator))
	if !strings.HasSuffix(name, a.extension) {
		name += a.extension
	}
	return filepath.Join(a.directory, name)
}

// Load walks the directory reading every template file it finds into
// the engine's path-keyed cache, so a first render doesn't include the
// file read. Templates are not parsed here; each one still parses on
// its first render.
func (a *Adapter) Load() error {
	return filepath.Walk(a.directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, a.extension) {
			return nil
		}
		a.eng.TemplFile(path)
		return nil
	})
}

// Render writes the named template's output to w. layouts, when given,
// names a wrapping template whose context receives the rendered
// content under "content".
func (a *Adapter) Render(w io.Writer, name string, data any, layouts ...string) error {
	if a.reload {
		a.eng.ClearCache()
	}
	ctx := toContext(data)
	tpl := a.eng.TemplFile(a.resolvePath(name))
	out := tpl.Render(ctx)

	if len(layouts) == 0 || layouts[0] == "" {
		_, err := io.WriteString(w, out)
		return err
	}

	ctx.SetMember("content", value.SafeString(out))
	layout := a.eng.TemplFile(a.resolvePath(layouts[0]))
	_, err := io.WriteString(w, layout.Render(ctx))
	return err
}

// toContext converts a loosely-typed host payload into a context
// Value, the same duck-typed coercion the teacher's prepareBinding did
// for map[string]interface{}/map[string]string.
func toContext(data any) value.Value {
	switch d := data.(type) {
	case value.Value:
		return d
	case map[string]value.Value:
		ctx := value.NewObject()
		for k, v := range d {
			ctx.SetMember(k, v)
		}
		return ctx
	case map[string]string:
		ctx := value.NewObject()
		for k, v := range d {
			ctx.SetMember(k, value.String(v))
		}
		return ctx
	case nil:
		return value.NewObject()
	default:
		return value.NewObject()
	}
}
