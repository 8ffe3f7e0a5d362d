// FILE: src/internal/intercept/errors.go
package intercept

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrAlreadyInstalled is returned when a console already carries an active interceptor
	ErrAlreadyInstalled = errors.New("interceptor already installed")

	// ErrStdLogCaptured is returned when another interceptor owns the stdlib log output
	ErrStdLogCaptured = errors.New("stdlib log output already captured")
)

// ErrorEvent describes a synchronous uncaught error.
// Col is 0 when the source position carries no column.
type ErrorEvent struct {
	Message string
	File    string
	Line    int
	Col     int
}

// PanicError is returned by Guard when the guarded function panicked
type PanicError struct {
	Value any
	Event ErrorEvent
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic at %s:%d: %s", e.Event.File, e.Event.Line, e.Event.Message)
}

// panicEvent must be called from a deferred function while the panic unwinds
func panicEvent(r any) ErrorEvent {
	ev := ErrorEvent{Message: panicMessage(r), File: "unknown"}
	ev.File, ev.Line = panicSite()
	return ev
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// panicSite finds the first non-runtime frame below runtime.gopanic
func panicSite() (string, int) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	sawPanic := false
	for {
		f, more := frames.Next()
		if strings.HasPrefix(f.Function, "runtime.") {
			if f.Function == "runtime.gopanic" {
				sawPanic = true
			}
		} else if sawPanic {
			return f.File, f.Line
		}
		if !more {
			break
		}
	}
	return "unknown", 0
}
