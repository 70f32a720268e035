// Package cli holds the helpers behind the goodapi subcommands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SignalContext is cancelled by SIGINT or SIGTERM and remembers which one
// arrived, so commands can log why they stopped.
type SignalContext struct {
	context.Context
	cancel context.CancelFunc
	got    atomic.Value
}

// NewSignalContext derives a SignalContext from parent.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.got.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Cancel stops listening for signals and cancels the context.
func (sc *SignalContext) Cancel() {
	sc.cancel()
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sig, _ := sc.got.Load().(os.Signal)
	return sig
}
