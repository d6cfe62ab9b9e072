// Package engine implements the façade spec.md §4.G/§4.H describe: a
// helper registry, an in-process template cache, and the construction
// operations (templ/templFile) that hand back a *Template ready to
// render. Engine implements the eval package's HelperLookup seam so the
// evaluator never needs a direct reference to this package.
package engine

import (
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/kasterix/dyntpl/value"
)

// HelperFunc is the uniform helper signature spec.md §4.G pins: args is
// always an Array Value, evaluated left-to-right by the evaluator.
type HelperFunc func(ctx value.Value, args value.Value) value.Value

// FileReader is the filesystem collaborator templFile reads through,
// injectable so tests and alternate hosts (embedded FS, virtual roots)
// don't need a real disk. spec.md §1 excludes a concrete filesystem
// reader from CORE; this interface is the seam that keeps it excluded.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Engine is the owning façade: helper registry, template cache, shared
// data, diagnostics sink. Not thread-safe across goroutines without the
// embedder serializing at this boundary, per spec.md §5.
type Engine struct {
	mu          sync.RWMutex
	helpers     map[string]HelperFunc
	cache       *TemplateCache
	reader      FileReader
	shared      *SharedData
	log         *slog.Logger
	development bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithFileReader overrides the default os.ReadFile-backed reader.
func WithFileReader(r FileReader) Option {
	return func(e *Engine) { e.reader = r }
}

// WithLogger overrides the default slog.Default() diagnostics sink.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithDevelopment disables the template cache, so templFile and templ
// always re-read/re-parse - the analogue of the teacher's
// WithDevelopment option over TemplateCache.Disable.
func WithDevelopment(dev bool) Option {
	return func(e *Engine) {
		e.development = dev
		if dev {
			e.cache.Disable()
		}
	}
}

// New constructs an Engine with the built-in helpers registered
// (include, rawHtml, and the supplemented catalogue in builtins.go).
func New(opts ...Option) *Engine {
	e := &Engine{
		helpers: make(map[string]HelperFunc),
		cache:   NewTemplateCache(),
		reader:  osFileReader{},
		shared:  NewSharedData(),
		log:     slog.Default(),
	}
	registerBuiltins(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterHelper installs or overwrites a named helper.
func (e *Engine) RegisterHelper(name string, fn HelperFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.helpers[name] = fn
}

// HasHelper reports whether name is registered.
func (e *Engine) HasHelper(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.helpers[name]
	return ok
}

// LookupHelper satisfies eval.HelperLookup: look name up and invoke it
// without logging, leaving the miss diagnostic to the caller (the
// evaluator has the AST position; Engine does not).
func (e *Engine) LookupHelper(name string, ctx, args value.Value) (value.Value, bool) {
	e.mu.RLock()
	fn, ok := e.helpers[name]
	e.mu.RUnlock()
	if !ok {
		return value.Null(), false
	}
	return fn(ctx, args), true
}

// CallHelper is spec.md §4.G's public callHelper operation: lookup and
// invoke, logging and substituting an empty-string Value on a miss.
func (e *Engine) CallHelper(name string, ctx, args value.Value) value.Value {
	v, ok := e.LookupHelper(name, ctx, args)
	if !ok {
		e.log.Warn("unknown helper", slog.String("name", name))
		return value.String("")
	}
	return v
}

// Share registers data merged into every subsequent render's context,
// under keys the rendered context does not already define - adapted
// from the teacher's runtime.SharedData.
func (e *Engine) Share(key string, v value.Value) {
	e.shared.Set(key, v)
}

// Templ constructs a Template from literal source text, per spec.md
// §4.G. Identical source strings share one parsed Template via the
// checksum-keyed cache.
func (e *Engine) Templ(source string) *Template {
	if t, ok := e.cache.GetBySource(source); ok {
		return t
	}
	t := newTemplate(source, e)
	e.cache.SetBySource(source, t)
	return t
}

// TemplFile constructs a Template from a file, consulting the
// path-keyed cache first; on a read failure it logs and returns a
// Template over empty source, which renders to empty string.
func (e *Engine) TemplFile(path string) *Template {
	if t, ok := e.cache.GetByPath(path); ok {
		return t
	}
	content, err := e.reader.ReadFile(path)
	if err != nil {
		e.log.Warn("template file open error", slog.String("path", path), slog.Any("error", err))
		return newTemplate("", e)
	}
	t := newTemplate(string(content), e)
	e.cache.SetByPath(path, t)
	return t
}

// ClearCache drops every cached Template, by path and by source.
func (e *Engine) ClearCache() { e.cache.Clear() }

func (e *Engine) diagnoseParseError(err error) {
	e.log.Warn("template syntax error", slog.Any("error", err))
}

// mergeShared builds the render context: shared data first, then ctx's
// own members on top so user data always wins on a key collision.
func (e *Engine) mergeShared(ctx value.Value) value.Value {
	if ctx.IsNull() {
		ctx = value.NewObject()
	}
	if !ctx.IsObject() {
		return ctx
	}
	merged := value.NewObject()
	sharedKeys := e.shared.Keys()
	sort.Strings(sharedKeys)
	for _, k := range sharedKeys {
		merged.SetMember(k, e.shared.Get(k))
	}
	for _, k := range ctx.Keys() {
		merged.SetMember(k, ctx.Member(k))
	}
	return merged
}
