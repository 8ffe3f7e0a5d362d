// FILE: src/internal/intercept/stdlog.go
package intercept

import (
	"io"
	stdlog "log"
	"strings"
	"sync"

	"devconsole/src/internal/core"
)

var (
	stdLogMu    sync.Mutex
	stdLogOwner *Interceptor
)

// stdLogWriter reports each stdlib log line and forwards it to the previous output
type stdLogWriter struct {
	i    *Interceptor
	prev io.Writer
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		w.i.deliver(detectCategory(msg), msg)
	}
	return w.prev.Write(p)
}

var _ io.Writer = (*stdLogWriter)(nil)

// detectCategory maps level markers such as "ERROR" or "[warn]" to a category
func detectCategory(msg string) core.Category {
	words := strings.FieldsFunc(strings.ToUpper(msg), func(r rune) bool {
		return r < 'A' || r > 'Z'
	})

	category := core.CategoryLog
	for _, w := range words {
		switch w {
		case "ERROR", "FATAL", "PANIC":
			return core.CategoryError
		case "WARN", "WARNING":
			category = core.CategoryWarn
		}
	}
	return category
}

func (i *Interceptor) hookStdLog() error {
	stdLogMu.Lock()
	defer stdLogMu.Unlock()

	if stdLogOwner != nil {
		return ErrStdLogCaptured
	}

	i.stdLog = &stdLogWriter{i: i, prev: stdlog.Writer()}
	stdlog.SetOutput(i.stdLog)
	stdLogOwner = i
	return nil
}

func (i *Interceptor) unhookStdLog() {
	stdLogMu.Lock()
	defer stdLogMu.Unlock()

	if stdLogOwner != i {
		return
	}
	stdlog.SetOutput(i.stdLog.prev)
	stdLogOwner = nil
}
