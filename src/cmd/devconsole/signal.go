// FILE: src/cmd/devconsole/signal.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/log"
)

// Manages OS signals
type SignalHandler struct {
	logger  *log.Logger
	sigChan chan os.Signal
	onDump  func()
}

// Creates a signal handler. onDump runs on SIGUSR1.
func NewSignalHandler(logger *log.Logger, onDump func()) *SignalHandler {
	sh := &SignalHandler{
		logger:  logger,
		sigChan: make(chan os.Signal, 1),
		onDump:  onDump,
	}

	signal.Notify(sh.sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGUSR1, // Status dump
	)

	return sh
}

// Blocks until a termination signal arrives or ctx is done
func (sh *SignalHandler) Handle(ctx context.Context) os.Signal {
	for {
		select {
		case sig := <-sh.sigChan:
			if sig == syscall.SIGUSR1 {
				sh.logger.Info("msg", "Status signal received", "signal", sig)
				if sh.onDump != nil {
					sh.onDump()
				}
				continue
			}
			return sig
		case <-ctx.Done():
			return nil
		}
	}
}

// Cleans up signal handling
func (sh *SignalHandler) Stop() {
	signal.Stop(sh.sigChan)
}
