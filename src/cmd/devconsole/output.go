// FILE: src/cmd/devconsole/output.go
package main

import (
	"fmt"
	"io"
	"os"
)

// cliOutput prints user-facing messages of the binary itself. Captured
// console records never pass through it. Quiet mode silences everything.
type cliOutput struct {
	quiet  bool
	stdout io.Writer
	stderr io.Writer
}

var output = &cliOutput{stdout: os.Stdout, stderr: os.Stderr}

// InitOutputHandler switches quiet mode on the global output
func InitOutputHandler(quiet bool) {
	output.quiet = quiet
}

func (o *cliOutput) printf(w io.Writer, format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(w, format, args...)
}

// Print writes to stdout unless quiet
func Print(format string, args ...any) {
	output.printf(output.stdout, format, args...)
}

// Error writes to stderr unless quiet
func Error(format string, args ...any) {
	output.printf(output.stderr, format, args...)
}

// FatalError writes to stderr unless quiet and exits with code
func FatalError(code int, format string, args ...any) {
	Error(format, args...)
	os.Exit(code)
}
