package opio

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var DefaultInterruptSignals = []os.Signal{
	os.Interrupt,
	os.Kill,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// BlockOnInterruptContext blocks until an interrupt signal arrives or the
// context is done.
func BlockOnInterruptContext(ctx context.Context, signals ...os.Signal) {
	if len(signals) == 0 {
		signals = DefaultInterruptSignals
	}
	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, signals...)
	select {
	case <-interruptChannel:
	case <-ctx.Done():
	}
	signal.Stop(interruptChannel)
}

// WithSignalWaiterMain cancels the returned context on interrupt, for use
// at the top of a main function.
func WithSignalWaiterMain(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		BlockOnInterruptContext(ctx)
		cancel()
	}()
	return ctx, cancel
}
