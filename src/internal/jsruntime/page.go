// FILE: src/internal/jsruntime/page.go
package jsruntime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/lixenwraith/log"
)

// Options configures a Page
type Options struct {
	// Stdout receives console.log output, Stderr console.warn and console.error
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// Page hosts scripts in an embedded JS runtime with a native console.
// All runtime access is serialized; a Page behaves like a single-threaded
// browser page.
type Page struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	console *goja.Object
	json    *goja.Object
	toJSON  goja.Callable
	logger  *log.Logger

	hooks    *Interceptor
	rejected []*goja.Promise
}

// NewPage creates a runtime with `console` bound to the configured writers
func NewPage(opts Options) (*Page, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = log.NewLogger()
	}

	vm := goja.New()
	registry := require.NewRegistry()
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(&printer{
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}))
	registry.Enable(vm)
	console.Enable(vm)

	consoleObj, ok := vm.Get("console").(*goja.Object)
	if !ok {
		return nil, errors.New("runtime has no console object")
	}
	jsonObj, ok := vm.Get("JSON").(*goja.Object)
	if !ok {
		return nil, errors.New("runtime has no JSON object")
	}
	stringify, ok := goja.AssertFunction(jsonObj.Get("stringify"))
	if !ok {
		return nil, errors.New("JSON.stringify is not a function")
	}

	p := &Page{
		vm:      vm,
		console: consoleObj,
		json:    jsonObj,
		toJSON:  stringify,
		logger:  opts.Logger,
	}
	vm.SetPromiseRejectionTracker(p.trackRejection)
	return p, nil
}

// Run executes a script. An uncaught exception is reported to the installed
// interceptor and returned. Promise rejections still unhandled once the job
// queue drains are reported afterwards.
func (p *Page) Run(name, src string) (goja.Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, err := p.vm.RunScript(name, src)
	if err != nil {
		var ex *goja.Exception
		if errors.As(err, &ex) && p.hooks != nil {
			p.hooks.ReportException(name, ex)
		}
	}
	p.flushRejections()

	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return v, nil
}

// RunFile reads and runs a script file
func (p *Page) RunFile(path string) (goja.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return p.Run(path, string(src))
}

// Set exposes a Go value to scripts as a global
func (p *Page) Set(name string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vm.Set(name, value)
}

func (p *Page) trackRejection(promise *goja.Promise, op goja.PromiseRejectionOperation) {
	switch op {
	case goja.PromiseRejectionReject:
		p.rejected = append(p.rejected, promise)
	case goja.PromiseRejectionHandle:
		for i, pr := range p.rejected {
			if pr == promise {
				p.rejected = append(p.rejected[:i], p.rejected[i+1:]...)
				break
			}
		}
	}
}

func (p *Page) flushRejections() {
	pending := p.rejected
	p.rejected = nil
	if p.hooks == nil {
		return
	}
	for _, promise := range pending {
		p.hooks.ReportRejection(p.valueString(promise.Result()))
	}
}

// argText converts one console argument the way the page's console shim does:
// objects and arrays through JSON.stringify(v, null, 2), everything else
// through JS string conversion.
func (p *Page) argText(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if obj, ok := v.(*goja.Object); ok {
		if _, isFunc := goja.AssertFunction(obj); !isFunc {
			if text, ok := p.stringify(obj); ok {
				return text
			}
		}
	}
	return p.valueString(v)
}

func (p *Page) stringify(v goja.Value) (string, bool) {
	res, err := p.toJSON(p.json, v, goja.Null(), p.vm.ToValue(2))
	if err != nil || res == nil || goja.IsUndefined(res) {
		return "", false
	}
	return res.String(), true
}

// valueString converts a value with JS string semantics; a throwing toString yields a placeholder
func (p *Page) valueString(v goja.Value) (s string) {
	if v == nil {
		return "undefined"
	}
	defer func() {
		if r := recover(); r != nil {
			s = "[object]"
		}
	}()
	return v.String()
}
