// FILE: src/internal/jsruntime/printer.go
package jsruntime

import (
	"io"
	"sync"

	"github.com/dop251/goja_nodejs/console"
)

// printer is the page's native console output
type printer struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func (p *printer) Log(message string) {
	p.write(p.stdout, message)
}

func (p *printer) Warn(message string) {
	p.write(p.stderr, message)
}

func (p *printer) Error(message string) {
	p.write(p.stderr, message)
}

func (p *printer) write(w io.Writer, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	io.WriteString(w, message+"\n")
}

var _ console.Printer = (*printer)(nil)
